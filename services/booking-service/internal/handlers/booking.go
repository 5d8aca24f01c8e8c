package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nazmul-karim/slotbook/services/booking-service/internal/availability"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/booking"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/clock"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/lifecycle"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/model"
)

type BookingHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewBookingHandler(svc *booking.Service, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

type bookingResponse struct {
	BookingID      string `json:"booking_id"`
	CompanyID      string `json:"company_id"`
	ProfessionalID string `json:"professional_id"`
	ServiceID      string `json:"service_id"`
	Date           string `json:"date"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Status         string `json:"status"`
	CustomerName   string `json:"customer_name,omitempty"`
	CustomerPhone  string `json:"customer_phone,omitempty"`
}

func toBookingResponse(b model.Booking) bookingResponse {
	start, _ := clock.ToHHMM(b.StartMin)
	end, _ := clock.ToHHMM(b.EndMin() % clock.MinutesPerDay)
	return bookingResponse{
		BookingID:      b.ID,
		CompanyID:      b.CompanyID,
		ProfessionalID: b.ProfessionalID,
		ServiceID:      b.ServiceID,
		Date:           b.Date,
		Start:          start,
		End:            end,
		Status:         string(b.Status),
		CustomerName:   b.CustomerName,
		CustomerPhone:  b.CustomerPhone,
	}
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	companyID := strings.TrimSpace(r.URL.Query().Get("company_id"))
	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if companyID == "" || professionalID == "" || serviceID == "" || date == "" {
		http.Error(w, "company_id, professional_id, service_id, and date are required", http.StatusBadRequest)
		return
	}

	list, err := h.svc.AvailableSlots(r.Context(), companyID, professionalID, serviceID, date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err := json.Marshal(list.Slots)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Availability-Version", strconv.FormatInt(list.Version, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type createOrUpdateRequest struct {
	CompanyID      string `json:"company_id"`
	ProfessionalID string `json:"professional_id"`
	ServiceID      string `json:"service_id"`
	Date           string `json:"date"`
	Start          string `json:"start"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	CustomerID     string `json:"customer_id"`
	StaffEntered   bool   `json:"staff_entered"`
	BookingID      string `json:"booking_id"`
}

func (h *BookingHandler) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createOrUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	req.CompanyID = strings.TrimSpace(req.CompanyID)
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.Date = strings.TrimSpace(req.Date)
	req.Start = strings.TrimSpace(req.Start)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.BookingID = strings.TrimSpace(req.BookingID)

	if req.CompanyID == "" || req.ProfessionalID == "" || req.ServiceID == "" || req.Date == "" || req.Start == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if req.BookingID == "" && req.CustomerName == "" {
		http.Error(w, "customer_name is required", http.StatusBadRequest)
		return
	}

	b, err := h.svc.CreateOrUpdate(r.Context(), booking.CreateOrUpdateParams{
		CompanyID:      req.CompanyID,
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		Date:           req.Date,
		Start:          req.Start,
		CustomerName:   req.CustomerName,
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		CustomerID:     strings.TrimSpace(req.CustomerID),
		StaffEntered:   req.StaffEntered,
		BookingID:      req.BookingID,
		IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusCreated
	if req.BookingID != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, toBookingResponse(b))
}

type transitionRequest struct {
	CompanyID    string `json:"company_id"`
	BookingID    string `json:"booking_id"`
	TargetStatus string `json:"target_status"`
}

func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.CompanyID = strings.TrimSpace(req.CompanyID)
	req.BookingID = strings.TrimSpace(req.BookingID)
	req.TargetStatus = strings.TrimSpace(req.TargetStatus)
	if req.CompanyID == "" || req.BookingID == "" || req.TargetStatus == "" {
		http.Error(w, "company_id, booking_id, and target_status are required", http.StatusBadRequest)
		return
	}

	b, err := h.svc.Transition(r.Context(), req.CompanyID, req.BookingID, req.TargetStatus)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	companyID := companyIDFromRequest(r)
	if companyID == "" {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	bookings, err := h.svc.ListByCompany(r.Context(), companyID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, items)
}

type dayViewItem struct {
	bookingResponse
	ColumnIndex int `json:"column_index"`
	ColumnCount int `json:"column_count"`
}

func (h *BookingHandler) DayView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	companyID := companyIDFromRequest(r)
	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if companyID == "" || professionalID == "" || date == "" {
		http.Error(w, "company_id, professional_id, and date are required", http.StatusBadRequest)
		return
	}
	includeCancelled := r.URL.Query().Get("include_cancelled") == "true"

	placed, err := h.svc.DayView(r.Context(), companyID, professionalID, date, includeCancelled)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]dayViewItem, 0, len(placed))
	for _, p := range placed {
		items = append(items, dayViewItem{
			bookingResponse: toBookingResponse(p.Booking),
			ColumnIndex:     p.Column,
			ColumnCount:     p.Columns,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrSlotConflict):
		http.Error(w, "this time is no longer available", http.StatusConflict)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, booking.ErrPastDate):
		http.Error(w, "requested start has already passed", http.StatusBadRequest)
	case errors.Is(err, clock.ErrInvalidTimeFormat), errors.Is(err, clock.ErrOutOfRange):
		http.Error(w, "invalid time or date format", http.StatusBadRequest)
	case errors.Is(err, availability.ErrInvalidParameters):
		http.Error(w, "invalid slot interval or duration", http.StatusBadRequest)
	case errors.Is(err, booking.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		h.logger.Error("booking request failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func companyIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Company-Id")); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("company_id"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
