package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/availability"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/lifecycle"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/model"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/outbox"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/schedule"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/storage"
)

type fakeTx struct{ pgx.Tx }

func (fakeTx) Commit(ctx context.Context) error   { return nil }
func (fakeTx) Rollback(ctx context.Context) error { return nil }

type fakeBookingStore struct {
	busy            []availability.BusyInterval
	intervalsCalled bool
	inserted        *model.Booking
}

func (f *fakeBookingStore) Begin(ctx context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

func (f *fakeBookingStore) Insert(ctx context.Context, tx pgx.Tx, b *model.Booking) (string, error) {
	f.inserted = b
	return "bk-1", nil
}

func (f *fakeBookingStore) UpdateSchedule(ctx context.Context, tx pgx.Tx, b *model.Booking) error {
	return nil
}

func (f *fakeBookingStore) UpdateStatus(ctx context.Context, tx pgx.Tx, companyID, bookingID string, status lifecycle.Status) error {
	return nil
}

func (f *fakeBookingStore) Get(ctx context.Context, companyID, bookingID string) (model.Booking, error) {
	return model.Booking{}, pgx.ErrNoRows
}

func (f *fakeBookingStore) GetForUpdate(ctx context.Context, tx pgx.Tx, companyID, bookingID string) (model.Booking, error) {
	return model.Booking{}, pgx.ErrNoRows
}

func (f *fakeBookingStore) ListActiveIntervals(ctx context.Context, tx pgx.Tx, companyID, professionalID, date string) ([]availability.BusyInterval, error) {
	f.intervalsCalled = true
	return f.busy, nil
}

func (f *fakeBookingStore) ListForDay(ctx context.Context, companyID, professionalID, date string, includeCancelled bool) ([]model.Booking, error) {
	return nil, nil
}

func (f *fakeBookingStore) ListByCompany(ctx context.Context, companyID string, limit int) ([]model.Booking, error) {
	return nil, nil
}

func (f *fakeBookingStore) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, companyID, key string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeBookingStore) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, companyID, key, bookingID string) error {
	return nil
}

type fakeCompanyStore struct {
	cfg       storage.CompanyConfig
	durations map[string]int
}

func (f *fakeCompanyStore) GetConfig(ctx context.Context, companyID string) (storage.CompanyConfig, error) {
	return f.cfg, nil
}

func (f *fakeCompanyStore) GetServiceDuration(ctx context.Context, companyID, serviceID string) (int, error) {
	d, ok := f.durations[serviceID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return d, nil
}

func (f *fakeCompanyStore) ProfessionalExists(ctx context.Context, companyID, professionalID string) (bool, error) {
	return true, nil
}

type fakeEventStore struct{ types []string }

func (f *fakeEventStore) Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error {
	f.types = append(f.types, evt.EventType)
	return nil
}

type fakeVersionCache struct {
	version int64
	bumps   int
}

func (f *fakeVersionCache) Bump(ctx context.Context, companyID string) { f.bumps++ }

func (f *fakeVersionCache) Current(ctx context.Context, companyID string) (int64, error) {
	return f.version, nil
}

func weekdayConfig(breakStart, breakEnd int) storage.CompanyConfig {
	return storage.CompanyConfig{
		CompanyID: "c1",
		Timezone:  "UTC",
		Schedule: schedule.CompanySchedule{
			OpenMin:         540,
			CloseMin:        1080,
			BreakStartMin:   breakStart,
			BreakEndMin:     breakEnd,
			SlotIntervalMin: 30,
			WorkDays: map[time.Weekday]bool{
				time.Monday: true, time.Tuesday: true, time.Wednesday: true,
				time.Thursday: true, time.Friday: true,
			},
		},
	}
}

func newTestService(bookings *fakeBookingStore, companies *fakeCompanyStore) (*Service, *fakeEventStore, *fakeVersionCache) {
	events := &fakeEventStore{}
	versions := &fakeVersionCache{version: 7}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(bookings, companies, events, versions, logger, 10)
	// Fixed clock well before the test dates keeps the past check inert.
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC) }
	return svc, events, versions
}

func TestAvailableSlots_NonWorkingDay(t *testing.T) {
	bookings := &fakeBookingStore{}
	companies := &fakeCompanyStore{cfg: weekdayConfig(720, 780), durations: map[string]int{"s1": 30}}
	svc, _, _ := newTestService(bookings, companies)

	// 2026-03-01 is a Sunday.
	list, err := svc.AvailableSlots(context.Background(), "c1", "p1", "s1", "2026-03-01")
	if err != nil {
		t.Fatalf("AvailableSlots failed: %v", err)
	}
	if len(list.Slots) != 0 {
		t.Fatalf("closed day should offer no slots, got %v", list.Slots)
	}
	if list.Version != 7 {
		t.Fatalf("version = %d, want 7", list.Version)
	}
	if bookings.intervalsCalled {
		t.Fatal("closed day must not scan bookings")
	}
}

func TestAvailableSlots_WorkingDayComposition(t *testing.T) {
	bookings := &fakeBookingStore{
		busy: []availability.BusyInterval{{BookingID: "b1", StartMin: 600, EndMin: 660}},
	}
	companies := &fakeCompanyStore{cfg: weekdayConfig(720, 780), durations: map[string]int{"s1": 60}}
	svc, _, _ := newTestService(bookings, companies)

	// 2026-03-02 is a Monday.
	list, err := svc.AvailableSlots(context.Background(), "c1", "p1", "s1", "2026-03-02")
	if err != nil {
		t.Fatalf("AvailableSlots failed: %v", err)
	}
	for _, s := range list.Slots {
		switch s {
		case "10:00", "10:30", "12:00", "12:30":
			t.Fatalf("slot %s should be excluded, got %v", s, list.Slots)
		}
	}
	has := func(want string) bool {
		for _, s := range list.Slots {
			if s == want {
				return true
			}
		}
		return false
	}
	if !has("09:00") || !has("11:00") || !has("13:00") {
		t.Fatalf("expected 09:00, 11:00, and 13:00 offered, got %v", list.Slots)
	}
}

func TestCreateOrUpdate_UnusedBreakDoesNotBlock(t *testing.T) {
	bookings := &fakeBookingStore{}
	companies := &fakeCompanyStore{cfg: weekdayConfig(720, 720), durations: map[string]int{"s1": 60}}
	svc, events, versions := newTestService(bookings, companies)

	b, err := svc.CreateOrUpdate(context.Background(), CreateOrUpdateParams{
		CompanyID:      "c1",
		ProfessionalID: "p1",
		ServiceID:      "s1",
		Date:           "2026-03-02",
		Start:          "11:30", // spans the 12:00 instant of the unused break
		CustomerName:   "Ana",
	})
	if err != nil {
		t.Fatalf("booking across an unused break should succeed: %v", err)
	}
	if b.ID != "bk-1" || b.StartMin != 690 || b.DurationMin != 60 {
		t.Fatalf("unexpected booking: %+v", b)
	}
	if len(events.types) != 1 || events.types[0] != outbox.EventBooked {
		t.Fatalf("expected one booked event, got %v", events.types)
	}
	if versions.bumps != 1 {
		t.Fatalf("expected one version bump, got %d", versions.bumps)
	}
}

func TestCreateOrUpdate_BreakOverlapRejected(t *testing.T) {
	bookings := &fakeBookingStore{}
	companies := &fakeCompanyStore{cfg: weekdayConfig(720, 780), durations: map[string]int{"s1": 60}}
	svc, _, _ := newTestService(bookings, companies)

	_, err := svc.CreateOrUpdate(context.Background(), CreateOrUpdateParams{
		CompanyID:      "c1",
		ProfessionalID: "p1",
		ServiceID:      "s1",
		Date:           "2026-03-02",
		Start:          "11:30", // 11:30-12:30 runs into the 12:00-13:00 break
		CustomerName:   "Ana",
	})
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
}
