package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transfer/internal/domain"
	"transfer/internal/service"
)

// QuoteHandler handles HTTP requests for price quotes.
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// ChildSeatRequest selects a number of seats of one type.
type ChildSeatRequest struct {
	SeatID string `json:"seat_id,omitempty"`
	Count  int    `json:"count"`
}

// QuoteRequest is the HTTP request body for a transfer quote.
// Coordinates are optional; distance_km is used when they are missing.
type QuoteRequest struct {
	PickupLat         *float64           `json:"pickup_lat"`
	PickupLng         *float64           `json:"pickup_lng"`
	DropoffLat        *float64           `json:"dropoff_lat"`
	DropoffLng        *float64           `json:"dropoff_lng"`
	DistanceKm        float64            `json:"distance_km"`
	Passengers        int                `json:"passengers"`
	Luggage           int                `json:"luggage"`
	IsAirportPickup   bool               `json:"is_airport_pickup"`
	MeetGreet         bool               `json:"meet_greet"`
	ChildSeats        []ChildSeatRequest `json:"child_seats,omitempty"`
	Stops             int                `json:"stops"`
	WaitingMinutes    int                `json:"waiting_minutes"`
	PickupTime        string             `json:"pickup_time,omitempty"` // RFC 3339
	IsReturn          bool               `json:"is_return"`
	Currency          string             `json:"currency,omitempty"`
	VehicleCategoryID string             `json:"vehicle_category_id,omitempty"`
}

// HourlyQuoteRequest is the HTTP request body for a duration hire quote.
type HourlyQuoteRequest struct {
	Hours             float64            `json:"hours"`
	PickupLat         *float64           `json:"pickup_lat"`
	PickupLng         *float64           `json:"pickup_lng"`
	Passengers        int                `json:"passengers"`
	Luggage           int                `json:"luggage"`
	IsAirportPickup   bool               `json:"is_airport_pickup"`
	MeetGreet         bool               `json:"meet_greet"`
	ChildSeats        []ChildSeatRequest `json:"child_seats,omitempty"`
	PickupTime        string             `json:"pickup_time,omitempty"`
	Currency          string             `json:"currency,omitempty"`
	VehicleCategoryID string             `json:"vehicle_category_id,omitempty"`
}

// ChargeResponse is one breakdown line, in GBP.
type ChargeResponse struct {
	Kind   string  `json:"kind"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// QuoteLineResponse is the offer for one vehicle category.
type QuoteLineResponse struct {
	VehicleCategoryID string           `json:"vehicle_category_id"`
	VehicleName       string           `json:"vehicle_name"`
	MaxPassengers     int              `json:"max_passengers"`
	MaxLuggage        int              `json:"max_luggage"`
	PricingMethod     string           `json:"pricing_method"`
	FixedRouteID      string           `json:"fixed_route_id,omitempty"`
	IsReturn          bool             `json:"is_return"`
	Price             float64          `json:"price"`
	OneWayPrice       float64          `json:"one_way_price"`
	BasePrice         float64          `json:"base_price"`
	BaseOneWayPrice   float64          `json:"base_one_way_price"`
	Currency          string           `json:"currency"`
	CurrencySymbol    string           `json:"currency_symbol"`
	DistanceKm        float64          `json:"distance_km"`
	DistanceMiles     float64          `json:"distance_miles"`
	DurationMinutes   float64          `json:"duration_minutes"`
	DistanceSource    string           `json:"distance_source,omitempty"`
	Breakdown         []ChargeResponse `json:"breakdown"`
}

// QuoteResponse is the HTTP response for a quote request.
type QuoteResponse struct {
	Quotes          []QuoteLineResponse `json:"quotes"`
	Currency        string              `json:"currency"`
	CurrencySymbol  string              `json:"currency_symbol"`
	BaseCurrency    string              `json:"base_currency"`
	PickupTime      string              `json:"pickup_time"`
	IsAirportPickup bool                `json:"is_airport_pickup"`
	DistanceKm      float64             `json:"distance_km,omitempty"`
	DurationMinutes float64             `json:"duration_minutes,omitempty"`
	DistanceSource  string              `json:"distance_source,omitempty"`
}

// CreateQuote handles POST /v1/quotes
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	pickup, err := optionalPoint(req.PickupLat, req.PickupLng, service.ErrInvalidPickupLocation)
	if err != nil {
		respondError(c, err)
		return
	}
	dropoff, err := optionalPoint(req.DropoffLat, req.DropoffLng, service.ErrInvalidDropoffLocation)
	if err != nil {
		respondError(c, err)
		return
	}
	pickupTime, ok := parsePickupTime(c, req.PickupTime)
	if !ok {
		return
	}

	result, err := h.quoteService.Quote(c.Request.Context(), service.QuoteRequest{
		Pickup:            pickup,
		Dropoff:           dropoff,
		DistanceKm:        req.DistanceKm,
		Passengers:        req.Passengers,
		Luggage:           req.Luggage,
		AirportPickup:     req.IsAirportPickup,
		MeetGreet:         req.MeetGreet,
		ChildSeats:        toSeatSelections(req.ChildSeats),
		Stops:             req.Stops,
		WaitingMinutes:    req.WaitingMinutes,
		PickupTime:        pickupTime,
		IsReturn:          req.IsReturn,
		Currency:          req.Currency,
		VehicleCategoryID: req.VehicleCategoryID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := toQuoteResponse(result)
	resp.DistanceKm = roundResponse(result.Travel.DistanceKm)
	resp.DurationMinutes = roundResponse(result.Travel.DurationMinutes)
	resp.DistanceSource = string(result.Travel.Source)
	respondJSON(c, http.StatusOK, resp)
}

// CreateHourlyQuote handles POST /v1/quotes/hourly
func (h *QuoteHandler) CreateHourlyQuote(c *gin.Context) {
	var req HourlyQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	pickup, err := optionalPoint(req.PickupLat, req.PickupLng, service.ErrInvalidPickupLocation)
	if err != nil {
		respondError(c, err)
		return
	}
	pickupTime, ok := parsePickupTime(c, req.PickupTime)
	if !ok {
		return
	}

	result, err := h.quoteService.HourlyQuote(c.Request.Context(), service.HourlyQuoteRequest{
		Hours:             req.Hours,
		Pickup:            pickup,
		Passengers:        req.Passengers,
		Luggage:           req.Luggage,
		AirportPickup:     req.IsAirportPickup,
		MeetGreet:         req.MeetGreet,
		ChildSeats:        toSeatSelections(req.ChildSeats),
		PickupTime:        pickupTime,
		Currency:          req.Currency,
		VehicleCategoryID: req.VehicleCategoryID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toQuoteResponse(result))
}

// optionalPoint returns nil when both coordinates are absent and invalid
// when only one of them is given.
func optionalPoint(lat, lng *float64, invalid error) (*domain.Point, error) {
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, invalid
	}
	return &domain.Point{Lat: *lat, Lng: *lng}, nil
}

func parsePickupTime(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondBadRequest(c, "pickup_time must be RFC 3339")
		return time.Time{}, false
	}
	return t, true
}

func toSeatSelections(seats []ChildSeatRequest) []service.ChildSeatSelection {
	if len(seats) == 0 {
		return nil
	}
	out := make([]service.ChildSeatSelection, len(seats))
	for i, s := range seats {
		out[i] = service.ChildSeatSelection{SeatID: s.SeatID, Count: s.Count}
	}
	return out
}

func toQuoteResponse(result *service.QuoteResult) QuoteResponse {
	resp := QuoteResponse{
		Quotes:          make([]QuoteLineResponse, 0, len(result.Quotes)),
		Currency:        result.Currency,
		CurrencySymbol:  result.Symbol,
		BaseCurrency:    domain.BaseCurrency,
		PickupTime:      result.PickupTime.Format(time.RFC3339),
		IsAirportPickup: result.AirportPickup,
	}

	for _, q := range result.Quotes {
		line := QuoteLineResponse{
			VehicleCategoryID: q.VehicleCategoryID,
			VehicleName:       q.VehicleName,
			MaxPassengers:     q.MaxPassengers,
			MaxLuggage:        q.MaxLuggage,
			PricingMethod:     string(q.PricingMethod),
			FixedRouteID:      q.FixedRouteID,
			IsReturn:          q.IsReturn,
			Price:             q.Price,
			OneWayPrice:       q.OneWayPrice,
			BasePrice:         q.BasePrice,
			BaseOneWayPrice:   q.BaseOneWayPrice,
			Currency:          q.Currency,
			CurrencySymbol:    q.CurrencySymbol,
			DistanceKm:        q.DistanceKm,
			DistanceMiles:     q.DistanceMiles,
			DurationMinutes:   q.DurationMinutes,
			DistanceSource:    string(q.DistanceSource),
			Breakdown:         make([]ChargeResponse, 0, len(q.Breakdown)),
		}
		for _, ch := range q.Breakdown {
			line.Breakdown = append(line.Breakdown, ChargeResponse{
				Kind:   string(ch.Kind),
				Label:  ch.Label,
				Amount: ch.Amount,
			})
		}
		resp.Quotes = append(resp.Quotes, line)
	}
	return resp
}

func roundResponse(v float64) float64 {
	return math.Round(v*100) / 100
}
