package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transfer/internal/domain"
	"transfer/internal/service"
)

// PlaceHandler handles HTTP requests for address search.
type PlaceHandler struct {
	placeService *service.PlaceService
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(placeService *service.PlaceService) *PlaceHandler {
	return &PlaceHandler{placeService: placeService}
}

// PlaceSuggestionResponse is one autocomplete result.
type PlaceSuggestionResponse struct {
	PlaceID       string `json:"place_id"`
	Description   string `json:"description"`
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text,omitempty"`
	IsAirport     bool   `json:"is_airport"`
}

// PlaceResponse is a resolved place.
type PlaceResponse struct {
	PlaceID   string   `json:"place_id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Types     []string `json:"types,omitempty"`
	IsAirport bool     `json:"is_airport"`
}

// Autocomplete handles GET /v1/places/autocomplete?input=
func (h *PlaceHandler) Autocomplete(c *gin.Context) {
	suggestions, err := h.placeService.Autocomplete(c.Request.Context(), c.Query("input"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]PlaceSuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		resp = append(resp, PlaceSuggestionResponse(s))
	}
	respondJSON(c, http.StatusOK, resp)
}

// GetPlace handles GET /v1/places/:id
func (h *PlaceHandler) GetPlace(c *gin.Context) {
	place, err := h.placeService.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toPlaceResponse(place))
}

func toPlaceResponse(p *domain.Place) PlaceResponse {
	return PlaceResponse{
		PlaceID:   p.PlaceID,
		Name:      p.Name,
		Address:   p.Address,
		Lat:       p.Location.Lat,
		Lng:       p.Location.Lng,
		Types:     p.Types,
		IsAirport: p.IsAirport,
	}
}
