package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transfer/internal/domain"
	"transfer/internal/service"
)

// AdminHandler handles HTTP requests for pricing configuration.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ──── DTOs ────

// VehicleRequest is the HTTP request body for creating or replacing a vehicle category.
type VehicleRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	MaxPassengers int    `json:"max_passengers"`
	MaxLuggage    int    `json:"max_luggage"`
	SortOrder     int    `json:"sort_order"`
	ImageURL      string `json:"image_url,omitempty"`
	Active        *bool  `json:"active,omitempty"`
}

// VehicleResponse is the HTTP response for a vehicle category.
type VehicleResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	MaxPassengers int    `json:"max_passengers"`
	MaxLuggage    int    `json:"max_luggage"`
	SortOrder     int    `json:"sort_order"`
	ImageURL      string `json:"image_url,omitempty"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// BracketDTO is one mileage bracket. A missing max_distance is open-ended.
type BracketDTO struct {
	MinDistance float64  `json:"min_distance"`
	MaxDistance *float64 `json:"max_distance"`
	FixedPrice  *float64 `json:"fixed_price,omitempty"`
	PerMileRate *float64 `json:"per_mile_rate,omitempty"`
}

// TimeRatesDTO holds hourly hire rates.
type TimeRatesDTO struct {
	HourlyRate   float64 `json:"hourly_rate"`
	MinimumHours int     `json:"minimum_hours"`
	DailyRate    float64 `json:"daily_rate"`
}

// ExtraFeesDTO holds flat and percentage add-ons.
type ExtraFeesDTO struct {
	AdditionalPickupFee     float64 `json:"additional_pickup_fee"`
	WaitingPerMinute        float64 `json:"waiting_per_minute"`
	AirportPickupFee        float64 `json:"airport_pickup_fee"`
	MeetGreetFee            float64 `json:"meet_greet_fee"`
	NightSurchargePercent   float64 `json:"night_surcharge_percent"`
	WeekendSurchargePercent float64 `json:"weekend_surcharge_percent"`
	ChildSeatFee            float64 `json:"child_seat_fee"`
}

// PricingSchemeDTO is the request and response body of a pricing scheme.
type PricingSchemeDTO struct {
	VehicleCategoryID string       `json:"vehicle_category_id"`
	BaseFare          float64      `json:"base_fare"`
	MinimumFare       float64      `json:"minimum_fare"`
	Brackets          []BracketDTO `json:"brackets"`
	TimeRates         TimeRatesDTO `json:"time_rates"`
	ExtraFees         ExtraFeesDTO `json:"extra_fees"`
	UpdatedAt         string       `json:"updated_at,omitempty"`
}

// GeofenceDTO is a circular zone.
type GeofenceDTO struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	RadiusMiles float64 `json:"radius_miles"`
}

// RouteDTO is the request and response body of a fixed route.
type RouteDTO struct {
	ID                string      `json:"id,omitempty"`
	VehicleCategoryID string      `json:"vehicle_category_id,omitempty"`
	Name              string      `json:"name"`
	Start             GeofenceDTO `json:"start"`
	End               GeofenceDTO `json:"end"`
	Price             float64     `json:"price"`
	DistanceMiles     float64     `json:"distance_miles"`
	ValidReturn       bool        `json:"valid_return"`
	Priority          int         `json:"priority"`
}

// CurrencyDTO is the request and response body of a currency.
type CurrencyDTO struct {
	Code       string  `json:"code"`
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	RateToBase float64 `json:"rate_to_base"`
	Active     bool    `json:"active"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
}

// ChildSeatDTO is the request and response body of a child seat.
// A missing price means the vehicle's child_seat_fee applies.
type ChildSeatDTO struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	MinAgeMonths int      `json:"min_age_months"`
	MaxAgeMonths int      `json:"max_age_months"`
	Price        *float64 `json:"price,omitempty"`
	Active       bool     `json:"active"`
}

// ──── Vehicle categories ────

// ListVehicles handles GET /v1/admin/vehicles
func (h *AdminHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.adminService.ListVehicles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, toVehicleResponse(v))
	}
	respondJSON(c, http.StatusOK, resp)
}

// GetVehicle handles GET /v1/admin/vehicles/:id
func (h *AdminHandler) GetVehicle(c *gin.Context) {
	v, err := h.adminService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toVehicleResponse(v))
}

// CreateVehicle handles POST /v1/admin/vehicles
func (h *AdminHandler) CreateVehicle(c *gin.Context) {
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	v, err := h.adminService.CreateVehicle(c.Request.Context(), req.toDomain(""))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toVehicleResponse(v))
}

// UpdateVehicle handles PUT /v1/admin/vehicles/:id
func (h *AdminHandler) UpdateVehicle(c *gin.Context) {
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	v, err := h.adminService.UpdateVehicle(c.Request.Context(), req.toDomain(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toVehicleResponse(v))
}

// DeleteVehicle handles DELETE /v1/admin/vehicles/:id
func (h *AdminHandler) DeleteVehicle(c *gin.Context) {
	if err := h.adminService.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ──── Pricing schemes ────

// GetPricing handles GET /v1/admin/vehicles/:id/pricing
func (h *AdminHandler) GetPricing(c *gin.Context) {
	scheme, err := h.adminService.GetPricingScheme(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toPricingDTO(scheme))
}

// SavePricing handles PUT /v1/admin/vehicles/:id/pricing
func (h *AdminHandler) SavePricing(c *gin.Context) {
	var req PricingSchemeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req.VehicleCategoryID = c.Param("id")

	scheme, err := h.adminService.SavePricingScheme(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toPricingDTO(scheme))
}

// ──── Fixed routes ────

// ListRoutes handles GET /v1/admin/vehicles/:id/routes
func (h *AdminHandler) ListRoutes(c *gin.Context) {
	routes, err := h.adminService.ListRoutes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]RouteDTO, 0, len(routes))
	for _, r := range routes {
		resp = append(resp, toRouteDTO(r))
	}
	respondJSON(c, http.StatusOK, resp)
}

// CreateRoute handles POST /v1/admin/vehicles/:id/routes
func (h *AdminHandler) CreateRoute(c *gin.Context) {
	var req RouteDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req.ID = ""
	req.VehicleCategoryID = c.Param("id")

	route, err := h.adminService.CreateRoute(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toRouteDTO(route))
}

// UpdateRoute handles PUT /v1/admin/routes/:id
func (h *AdminHandler) UpdateRoute(c *gin.Context) {
	var req RouteDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req.ID = c.Param("id")

	route, err := h.adminService.UpdateRoute(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRouteDTO(route))
}

// DeleteRoute handles DELETE /v1/admin/routes/:id
func (h *AdminHandler) DeleteRoute(c *gin.Context) {
	if err := h.adminService.DeleteRoute(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ──── Currencies ────

// ListCurrencies handles GET /v1/admin/currencies
func (h *AdminHandler) ListCurrencies(c *gin.Context) {
	rates, err := h.adminService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]CurrencyDTO, 0, len(rates))
	for _, r := range rates {
		resp = append(resp, toCurrencyDTO(*r))
	}
	respondJSON(c, http.StatusOK, resp)
}

// UpsertCurrency handles PUT /v1/admin/currencies/:code
func (h *AdminHandler) UpsertCurrency(c *gin.Context) {
	var req CurrencyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	rate, err := h.adminService.UpsertCurrency(c.Request.Context(), &domain.CurrencyRate{
		Code:       c.Param("code"),
		Symbol:     req.Symbol,
		Name:       req.Name,
		RateToBase: req.RateToBase,
		Active:     req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toCurrencyDTO(*rate))
}

// DeleteCurrency handles DELETE /v1/admin/currencies/:code
func (h *AdminHandler) DeleteCurrency(c *gin.Context) {
	if err := h.adminService.DeleteCurrency(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ──── Child seats ────

// ListChildSeats handles GET /v1/admin/child-seats
func (h *AdminHandler) ListChildSeats(c *gin.Context) {
	seats, err := h.adminService.ListChildSeats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]ChildSeatDTO, 0, len(seats))
	for _, s := range seats {
		resp = append(resp, toChildSeatDTO(s))
	}
	respondJSON(c, http.StatusOK, resp)
}

// UpsertChildSeat handles PUT /v1/admin/child-seats and PUT /v1/admin/child-seats/:id
func (h *AdminHandler) UpsertChildSeat(c *gin.Context) {
	var req ChildSeatDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if id := c.Param("id"); id != "" {
		req.ID = id
	}

	seat, err := h.adminService.UpsertChildSeat(c.Request.Context(), &domain.ChildSeat{
		ID:           req.ID,
		Name:         req.Name,
		MinAgeMonths: req.MinAgeMonths,
		MaxAgeMonths: req.MaxAgeMonths,
		Price:        req.Price,
		Active:       req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toChildSeatDTO(seat))
}

// DeleteChildSeat handles DELETE /v1/admin/child-seats/:id
func (h *AdminHandler) DeleteChildSeat(c *gin.Context) {
	if err := h.adminService.DeleteChildSeat(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ──── Mapping ────

func (r VehicleRequest) toDomain(id string) *domain.VehicleCategory {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &domain.VehicleCategory{
		ID:            id,
		Name:          r.Name,
		Description:   r.Description,
		MaxPassengers: r.MaxPassengers,
		MaxLuggage:    r.MaxLuggage,
		SortOrder:     r.SortOrder,
		ImageURL:      r.ImageURL,
		Active:        active,
	}
}

func toVehicleResponse(v *domain.VehicleCategory) VehicleResponse {
	return VehicleResponse{
		ID:            v.ID,
		Name:          v.Name,
		Description:   v.Description,
		MaxPassengers: v.MaxPassengers,
		MaxLuggage:    v.MaxLuggage,
		SortOrder:     v.SortOrder,
		ImageURL:      v.ImageURL,
		Active:        v.Active,
		CreatedAt:     formatTime(v.CreatedAt),
		UpdatedAt:     formatTime(v.UpdatedAt),
	}
}

func (d PricingSchemeDTO) toDomain() *domain.PricingScheme {
	brackets := make([]domain.MileageBracket, 0, len(d.Brackets))
	for _, b := range d.Brackets {
		brackets = append(brackets, domain.MileageBracket{
			MinDistance: b.MinDistance,
			MaxDistance: b.MaxDistance,
			FixedPrice:  b.FixedPrice,
			PerMileRate: b.PerMileRate,
		})
	}
	return &domain.PricingScheme{
		VehicleCategoryID: d.VehicleCategoryID,
		Brackets:          brackets,
		TimeRates:         domain.TimeRates(d.TimeRates),
		ExtraFees:         domain.ExtraFees(d.ExtraFees),
		BaseFare:          d.BaseFare,
		MinimumFare:       d.MinimumFare,
	}
}

func toPricingDTO(s *domain.PricingScheme) PricingSchemeDTO {
	brackets := make([]BracketDTO, 0, len(s.Brackets))
	for _, b := range s.Brackets {
		brackets = append(brackets, BracketDTO(b))
	}
	return PricingSchemeDTO{
		VehicleCategoryID: s.VehicleCategoryID,
		BaseFare:          s.BaseFare,
		MinimumFare:       s.MinimumFare,
		Brackets:          brackets,
		TimeRates:         TimeRatesDTO(s.TimeRates),
		ExtraFees:         ExtraFeesDTO(s.ExtraFees),
		UpdatedAt:         formatTime(s.UpdatedAt),
	}
}

func (d RouteDTO) toDomain() *domain.FixedRoute {
	return &domain.FixedRoute{
		ID:                d.ID,
		VehicleCategoryID: d.VehicleCategoryID,
		Name:              d.Name,
		Start:             domain.Geofence{Center: domain.Point{Lat: d.Start.Lat, Lng: d.Start.Lng}, RadiusMiles: d.Start.RadiusMiles},
		End:               domain.Geofence{Center: domain.Point{Lat: d.End.Lat, Lng: d.End.Lng}, RadiusMiles: d.End.RadiusMiles},
		Price:             d.Price,
		DistanceMiles:     d.DistanceMiles,
		ValidReturn:       d.ValidReturn,
		Priority:          d.Priority,
	}
}

func toRouteDTO(r *domain.FixedRoute) RouteDTO {
	return RouteDTO{
		ID:                r.ID,
		VehicleCategoryID: r.VehicleCategoryID,
		Name:              r.Name,
		Start:             GeofenceDTO{Lat: r.Start.Center.Lat, Lng: r.Start.Center.Lng, RadiusMiles: r.Start.RadiusMiles},
		End:               GeofenceDTO{Lat: r.End.Center.Lat, Lng: r.End.Center.Lng, RadiusMiles: r.End.RadiusMiles},
		Price:             r.Price,
		DistanceMiles:     r.DistanceMiles,
		ValidReturn:       r.ValidReturn,
		Priority:          r.Priority,
	}
}

func toCurrencyDTO(r domain.CurrencyRate) CurrencyDTO {
	return CurrencyDTO{
		Code:       r.Code,
		Symbol:     r.Symbol,
		Name:       r.Name,
		RateToBase: r.RateToBase,
		Active:     r.Active,
		UpdatedAt:  formatTime(r.UpdatedAt),
	}
}

func toChildSeatDTO(s *domain.ChildSeat) ChildSeatDTO {
	return ChildSeatDTO{
		ID:           s.ID,
		Name:         s.Name,
		MinAgeMonths: s.MinAgeMonths,
		MaxAgeMonths: s.MaxAgeMonths,
		Price:        s.Price,
		Active:       s.Active,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
