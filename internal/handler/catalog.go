package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transfer/internal/service"
)

// CatalogHandler serves the public lists a booking form needs.
type CatalogHandler struct {
	currency     *service.CurrencyConverter
	adminService *service.AdminService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(currency *service.CurrencyConverter, adminService *service.AdminService) *CatalogHandler {
	return &CatalogHandler{currency: currency, adminService: adminService}
}

// ListCurrencies handles GET /v1/currencies
func (h *CatalogHandler) ListCurrencies(c *gin.Context) {
	rates := h.currency.Rates(c.Request.Context())
	resp := make([]CurrencyDTO, 0, len(rates))
	for _, r := range rates {
		resp = append(resp, toCurrencyDTO(r))
	}
	respondJSON(c, http.StatusOK, resp)
}

// ListChildSeats handles GET /v1/child-seats. Only active seats are listed.
func (h *CatalogHandler) ListChildSeats(c *gin.Context) {
	seats, err := h.adminService.ListChildSeats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]ChildSeatDTO, 0, len(seats))
	for _, s := range seats {
		if s.Active {
			resp = append(resp, toChildSeatDTO(s))
		}
	}
	respondJSON(c, http.StatusOK, resp)
}
