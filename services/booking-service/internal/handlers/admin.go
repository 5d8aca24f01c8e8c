package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nazmul-karim/slotbook/services/booking-service/internal/clock"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/schedule"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/storage"
)

// AdminHandler exposes company configuration: weekly schedule, service
// catalog, and professional roster. Configuration is the only mutation path
// for these; the scheduling engine just reads them.
type AdminHandler struct {
	repo   *storage.CompanyRepository
	logger *slog.Logger
}

func NewAdminHandler(repo *storage.CompanyRepository, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{repo: repo, logger: logger}
}

type scheduleBody struct {
	Timezone            string `json:"timezone"`
	OpenTime            string `json:"open_time"`
	CloseTime           string `json:"close_time"`
	BreakStart          string `json:"break_start"`
	BreakEnd            string `json:"break_end"`
	SlotIntervalMinutes int    `json:"slot_interval_minutes"`
	WorkDays            []int  `json:"work_days"`
}

func (h *AdminHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getSchedule(w, r)
	case http.MethodPut:
		h.putSchedule(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) getSchedule(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFromRequest(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}

	cfg, err := h.repo.GetConfig(r.Context(), companyID)
	if err != nil {
		h.logger.Error("schedule load failed", "err", err)
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}

	body := scheduleBody{
		Timezone:            cfg.Timezone,
		SlotIntervalMinutes: cfg.Schedule.SlotIntervalMin,
	}
	body.OpenTime, _ = clock.ToHHMM(cfg.Schedule.OpenMin)
	body.CloseTime, _ = clock.ToHHMM(cfg.Schedule.CloseMin)
	body.BreakStart, _ = clock.ToHHMM(cfg.Schedule.BreakStartMin)
	body.BreakEnd, _ = clock.ToHHMM(cfg.Schedule.BreakEndMin)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if cfg.Schedule.WorkDays[wd] {
			body.WorkDays = append(body.WorkDays, int(wd))
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *AdminHandler) putSchedule(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFromRequest(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}

	var req scheduleBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		http.Error(w, "unknown timezone", http.StatusBadRequest)
		return
	}

	cs := schedule.CompanySchedule{
		SlotIntervalMin: req.SlotIntervalMinutes,
		WorkDays:        make(map[time.Weekday]bool, len(req.WorkDays)),
	}
	var err error
	if cs.OpenMin, err = clock.ToMinutes(req.OpenTime); err != nil {
		http.Error(w, "invalid open_time", http.StatusBadRequest)
		return
	}
	if cs.CloseMin, err = clock.ToMinutes(req.CloseTime); err != nil {
		http.Error(w, "invalid close_time", http.StatusBadRequest)
		return
	}
	if cs.BreakStartMin, err = clock.ToMinutes(req.BreakStart); err != nil {
		http.Error(w, "invalid break_start", http.StatusBadRequest)
		return
	}
	if cs.BreakEndMin, err = clock.ToMinutes(req.BreakEnd); err != nil {
		http.Error(w, "invalid break_end", http.StatusBadRequest)
		return
	}
	for _, wd := range req.WorkDays {
		if wd < 0 || wd > 6 {
			http.Error(w, "work_days entries must be 0-6", http.StatusBadRequest)
			return
		}
		cs.WorkDays[time.Weekday(wd)] = true
	}
	if err := cs.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.UpsertConfig(r.Context(), storage.CompanyConfig{
		CompanyID: companyID,
		Timezone:  req.Timezone,
		Schedule:  cs,
	}); err != nil {
		h.logger.Error("schedule update failed", "err", err)
		http.Error(w, "failed to update schedule", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Services(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFromRequest(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		services, err := h.repo.ListServices(r.Context(), companyID, listLimit(r))
		if err != nil {
			h.logger.Error("service list failed", "err", err)
			http.Error(w, "failed to list services", http.StatusInternalServerError)
			return
		}
		items := make([]map[string]any, 0, len(services))
		for _, s := range services {
			items = append(items, map[string]any{
				"service_id":       s.ID,
				"name":             s.Name,
				"duration_minutes": s.DurationMin,
				"price":            s.Price,
			})
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var req struct {
			Name            string `json:"name"`
			DurationMinutes int    `json:"duration_minutes"`
			Price           string `json:"price"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.DurationMinutes <= 0 {
			http.Error(w, "name and a positive duration_minutes are required", http.StatusBadRequest)
			return
		}
		id, err := h.repo.CreateService(r.Context(), companyID, req.Name, req.DurationMinutes, strings.TrimSpace(req.Price))
		if err != nil {
			h.logger.Error("service create failed", "err", err)
			http.Error(w, "failed to create service", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"service_id": id})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) Professionals(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFromRequest(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		pros, err := h.repo.ListProfessionals(r.Context(), companyID, listLimit(r))
		if err != nil {
			h.logger.Error("professional list failed", "err", err)
			http.Error(w, "failed to list professionals", http.StatusInternalServerError)
			return
		}
		items := make([]map[string]any, 0, len(pros))
		for _, p := range pros {
			items = append(items, map[string]any{
				"professional_id": p.ID,
				"name":            p.Name,
				"is_active":       p.IsActive,
			})
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var req struct {
			Name     string `json:"name"`
			IsActive *bool  `json:"is_active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}
		id, err := h.repo.CreateProfessional(r.Context(), companyID, req.Name, isActive)
		if err != nil {
			h.logger.Error("professional create failed", "err", err)
			http.Error(w, "failed to create professional", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"professional_id": id})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func listLimit(r *http.Request) int {
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			return n
		}
	}
	return 100
}
