package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/nazmul-karim/slotbook/services/booking-service/internal/lifecycle"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/model"
)

func TestToBookingResponse(t *testing.T) {
	resp := toBookingResponse(model.Booking{
		ID:          "b1",
		CompanyID:   "c1",
		Date:        "2026-03-02",
		StartMin:    615,
		DurationMin: 45,
		Status:      lifecycle.StatusConfirmed,
	})
	if resp.Start != "10:15" {
		t.Fatalf("start = %q, want 10:15", resp.Start)
	}
	if resp.End != "11:00" {
		t.Fatalf("end = %q, want 11:00", resp.End)
	}
	if resp.Status != "confirmed" {
		t.Fatalf("status = %q, want confirmed", resp.Status)
	}
}

func TestToBookingResponseMidnightEnd(t *testing.T) {
	resp := toBookingResponse(model.Booking{StartMin: 1410, DurationMin: 30})
	if resp.End != "00:00" {
		t.Fatalf("end = %q, want 00:00", resp.End)
	}
}

func TestCompanyIDFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/appointments?company_id=query-id", nil)
	if got := companyIDFromRequest(r); got != "query-id" {
		t.Fatalf("company id = %q, want query-id", got)
	}

	r.Header.Set("X-Company-Id", "header-id")
	if got := companyIDFromRequest(r); got != "header-id" {
		t.Fatalf("company id = %q, want header-id (header wins)", got)
	}
}
