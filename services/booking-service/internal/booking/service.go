package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/availability"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/clock"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/layout"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/lifecycle"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/model"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/outbox"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/schedule"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/storage"
)

const dateLayout = "2006-01-02"

// BookingStore is the persistence surface the façade needs for bookings.
// *storage.BookingRepository is the production implementation.
type BookingStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Insert(ctx context.Context, tx pgx.Tx, b *model.Booking) (string, error)
	UpdateSchedule(ctx context.Context, tx pgx.Tx, b *model.Booking) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, companyID, bookingID string, status lifecycle.Status) error
	Get(ctx context.Context, companyID, bookingID string) (model.Booking, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, companyID, bookingID string) (model.Booking, error)
	ListActiveIntervals(ctx context.Context, tx pgx.Tx, companyID, professionalID, date string) ([]availability.BusyInterval, error)
	ListForDay(ctx context.Context, companyID, professionalID, date string, includeCancelled bool) ([]model.Booking, error)
	ListByCompany(ctx context.Context, companyID string, limit int) ([]model.Booking, error)
	LockIdempotencyKey(ctx context.Context, tx pgx.Tx, companyID, key string) (string, bool, error)
	FinalizeIdempotency(ctx context.Context, tx pgx.Tx, companyID, key, bookingID string) error
}

// CompanyStore serves company configuration reads.
type CompanyStore interface {
	GetConfig(ctx context.Context, companyID string) (storage.CompanyConfig, error)
	GetServiceDuration(ctx context.Context, companyID, serviceID string) (int, error)
	ProfessionalExists(ctx context.Context, companyID, professionalID string) (bool, error)
}

// EventStore writes domain events inside the booking transaction.
type EventStore interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error
}

// VersionCache tracks the per-company availability version.
type VersionCache interface {
	Bump(ctx context.Context, companyID string)
	Current(ctx context.Context, companyID string) (int64, error)
}

// Service composes the pure scheduling engine with storage, the outbox, and
// the availability version cache. The engine stays stateless: every decision
// is made against a snapshot read inside the current call, and commit-time
// validation always re-reads inside the transaction. Slot lists handed out
// earlier are advisory only.
type Service struct {
	bookings  BookingStore
	companies CompanyStore
	outboxes  EventStore
	versions  VersionCache
	logger    *slog.Logger
	graceMin  int
	now       func() time.Time
}

// NewService wires the façade. A negative graceMin selects
// availability.DefaultGraceMin; zero disables the same-day grace cutoff.
func NewService(bookings BookingStore, companies CompanyStore, outboxes EventStore, versions VersionCache, logger *slog.Logger, graceMin int) *Service {
	if graceMin < 0 {
		graceMin = availability.DefaultGraceMin
	}
	return &Service{
		bookings:  bookings,
		companies: companies,
		outboxes:  outboxes,
		versions:  versions,
		logger:    logger,
		graceMin:  graceMin,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type SlotList struct {
	Slots   []string
	Version int64
}

// AvailableSlots returns the offerable "HH:MM" starts for one professional,
// service, and date. An empty list is a valid answer: closed day, fully
// booked day, or a service too long for the window.
func (s *Service) AvailableSlots(ctx context.Context, companyID, professionalID, serviceID, date string) (SlotList, error) {
	cfg, loc, err := s.loadConfig(ctx, companyID)
	if err != nil {
		return SlotList{}, err
	}
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return SlotList{}, fmt.Errorf("%w: date %q", clock.ErrInvalidTimeFormat, date)
	}

	version, err := s.versions.Current(ctx, companyID)
	if err != nil {
		s.logger.Warn("availability version read failed", "company_id", companyID, "err", err)
	}
	list := SlotList{Slots: []string{}, Version: version}

	win := schedule.Resolve(cfg.Schedule, day)
	if !win.IsWorkingDay {
		return list, nil
	}

	durationMin, err := s.companies.GetServiceDuration(ctx, companyID, serviceID)
	if err != nil {
		if storage.IsNotFound(err) {
			return SlotList{}, fmt.Errorf("%w: service %s", ErrNotFound, serviceID)
		}
		return SlotList{}, err
	}

	candidates, err := availability.Candidates(win.OpenMin, win.CloseMin, cfg.Schedule.SlotIntervalMin, durationMin)
	if err != nil {
		return SlotList{}, err
	}

	busy, err := s.bookings.ListActiveIntervals(ctx, nil, companyID, professionalID, date)
	if err != nil {
		return SlotList{}, err
	}

	starts := availability.Filter(candidates, availability.FilterOptions{
		BreakStartMin: win.BreakStartMin,
		BreakEndMin:   win.BreakEndMin,
		DurationMin:   durationMin,
		Busy:          busy,
		NowMin:        s.nowMinutesIfToday(day, loc),
		GraceMin:      s.graceMin,
	})

	for _, start := range starts {
		hhmm, err := clock.ToHHMM(start)
		if err != nil {
			return SlotList{}, err
		}
		list.Slots = append(list.Slots, hhmm)
	}
	return list, nil
}

type CreateOrUpdateParams struct {
	CompanyID      string
	ProfessionalID string
	ServiceID      string
	Date           string
	Start          string // HH:MM
	CustomerName   string
	CustomerPhone  string
	CustomerID     string
	StaffEntered   bool
	BookingID      string // set when rescheduling an existing booking
	IdempotencyKey string
}

// CreateOrUpdate books a new appointment or reschedules an existing one. The
// conflict scan runs inside the insert/update transaction against freshly
// read bookings; a Postgres exclusion constraint backstops the race where two
// transactions pass the scan concurrently.
func (s *Service) CreateOrUpdate(ctx context.Context, p CreateOrUpdateParams) (model.Booking, error) {
	startMin, err := clock.ToMinutes(p.Start)
	if err != nil {
		return model.Booking{}, err
	}

	cfg, loc, err := s.loadConfig(ctx, p.CompanyID)
	if err != nil {
		return model.Booking{}, err
	}
	day, err := time.ParseInLocation(dateLayout, p.Date, loc)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: date %q", clock.ErrInvalidTimeFormat, p.Date)
	}

	if start := day.Add(time.Duration(startMin) * time.Minute); !start.After(s.now().In(loc).Add(time.Duration(s.graceMin) * time.Minute)) {
		return model.Booking{}, fmt.Errorf("%w: %s %s", ErrPastDate, p.Date, p.Start)
	}

	exists, err := s.companies.ProfessionalExists(ctx, p.CompanyID, p.ProfessionalID)
	if err != nil {
		return model.Booking{}, err
	}
	if !exists {
		return model.Booking{}, fmt.Errorf("%w: professional %s", ErrNotFound, p.ProfessionalID)
	}

	durationMin, err := s.companies.GetServiceDuration(ctx, p.CompanyID, p.ServiceID)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Booking{}, fmt.Errorf("%w: service %s", ErrNotFound, p.ServiceID)
		}
		return model.Booking{}, err
	}

	win := schedule.Resolve(cfg.Schedule, day)
	endMin := startMin + durationMin
	if !win.IsWorkingDay || startMin < win.OpenMin || endMin > win.CloseMin {
		return model.Booking{}, fmt.Errorf("%w: outside operating hours", ErrSlotConflict)
	}
	if win.BreakStartMin < win.BreakEndMin && availability.Overlaps(startMin, endMin, win.BreakStartMin, win.BreakEndMin) {
		return model.Booking{}, fmt.Errorf("%w: overlaps the break", ErrSlotConflict)
	}

	tx, err := s.bookings.Begin(ctx)
	if err != nil {
		return model.Booking{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if p.BookingID == "" && p.IdempotencyKey != "" {
		priorID, done, err := s.bookings.LockIdempotencyKey(ctx, tx, p.CompanyID, p.IdempotencyKey)
		if err != nil {
			return model.Booking{}, err
		}
		if done {
			// Replay: the earlier attempt already committed this booking.
			return s.bookings.Get(ctx, p.CompanyID, priorID)
		}
	}

	proposed := availability.BusyInterval{BookingID: p.BookingID, StartMin: startMin, EndMin: endMin}
	busy, err := s.bookings.ListActiveIntervals(ctx, tx, p.CompanyID, p.ProfessionalID, p.Date)
	if err != nil {
		return model.Booking{}, err
	}
	if hit, conflict := availability.WouldConflict(proposed, busy); conflict {
		return model.Booking{}, fmt.Errorf("%w: overlaps booking %s", ErrSlotConflict, hit.BookingID)
	}

	var booked model.Booking
	eventType := outbox.EventBooked
	if p.BookingID == "" {
		status := lifecycle.StatusPending
		if p.StaffEntered {
			status = lifecycle.StatusConfirmed
		}
		booked = model.Booking{
			CompanyID:      p.CompanyID,
			ProfessionalID: p.ProfessionalID,
			ServiceID:      p.ServiceID,
			Date:           p.Date,
			StartMin:       startMin,
			DurationMin:    durationMin,
			Status:         status,
			CustomerName:   p.CustomerName,
			CustomerPhone:  p.CustomerPhone,
			CustomerID:     p.CustomerID,
			StaffEntered:   p.StaffEntered,
		}
		id, err := s.bookings.Insert(ctx, tx, &booked)
		if err != nil {
			if storage.IsConflict(err) {
				return model.Booking{}, fmt.Errorf("%w: lost commit race", ErrSlotConflict)
			}
			return model.Booking{}, err
		}
		booked.ID = id
	} else {
		eventType = outbox.EventRescheduled
		prior, err := s.bookings.GetForUpdate(ctx, tx, p.CompanyID, p.BookingID)
		if err != nil {
			if storage.IsNotFound(err) {
				return model.Booking{}, fmt.Errorf("%w: booking %s", ErrNotFound, p.BookingID)
			}
			return model.Booking{}, err
		}
		if !lifecycle.Active(prior.Status) {
			return model.Booking{}, fmt.Errorf("%w: cancelled booking cannot be rescheduled", lifecycle.ErrInvalidTransition)
		}
		booked = prior
		booked.ProfessionalID = p.ProfessionalID
		booked.ServiceID = p.ServiceID
		booked.Date = p.Date
		booked.StartMin = startMin
		booked.DurationMin = durationMin
		if err := s.bookings.UpdateSchedule(ctx, tx, &booked); err != nil {
			if storage.IsConflict(err) {
				return model.Booking{}, fmt.Errorf("%w: lost commit race", ErrSlotConflict)
			}
			return model.Booking{}, err
		}
	}

	if err := s.writeBookingEvent(ctx, tx, eventType, booked); err != nil {
		return model.Booking{}, err
	}

	if p.BookingID == "" && p.IdempotencyKey != "" {
		if err := s.bookings.FinalizeIdempotency(ctx, tx, p.CompanyID, p.IdempotencyKey, booked.ID); err != nil {
			return model.Booking{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Booking{}, err
	}
	s.versions.Bump(ctx, p.CompanyID)
	return booked, nil
}

// Transition moves a booking through its lifecycle. The slot itself is
// untouched; only cancellation releases it for other bookings.
func (s *Service) Transition(ctx context.Context, companyID, bookingID, target string) (model.Booking, error) {
	to, err := lifecycle.ParseStatus(target)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: %v", lifecycle.ErrInvalidTransition, err)
	}

	tx, err := s.bookings.Begin(ctx)
	if err != nil {
		return model.Booking{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b, err := s.bookings.GetForUpdate(ctx, tx, companyID, bookingID)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Booking{}, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
		}
		return model.Booking{}, err
	}

	if err := lifecycle.Transition(b.Status, to); err != nil {
		return model.Booking{}, err
	}
	if err := s.bookings.UpdateStatus(ctx, tx, companyID, bookingID, to); err != nil {
		return model.Booking{}, err
	}
	b.Status = to
	if to == lifecycle.StatusCancelled {
		now := s.now()
		b.CancelledAt = &now
	}

	if err := s.writeBookingEvent(ctx, tx, outbox.EventStatusChanged, b); err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Booking{}, err
	}
	s.versions.Bump(ctx, companyID)
	return b, nil
}

func (s *Service) ListByCompany(ctx context.Context, companyID string, limit int) ([]model.Booking, error) {
	return s.bookings.ListByCompany(ctx, companyID, limit)
}

type DayViewItem struct {
	Booking model.Booking
	Column  int
	Columns int
}

// DayView lays out one professional's bookings for a date as side-by-side
// columns. Cancelled bookings are omitted unless asked for; either way the
// packing is display geometry, not a conflict verdict.
func (s *Service) DayView(ctx context.Context, companyID, professionalID, date string, includeCancelled bool) ([]DayViewItem, error) {
	bookings, err := s.bookings.ListForDay(ctx, companyID, professionalID, date, includeCancelled)
	if err != nil {
		return nil, err
	}

	boxes := make([]layout.Box, 0, len(bookings))
	byID := make(map[string]model.Booking, len(bookings))
	for _, b := range bookings {
		boxes = append(boxes, layout.Box{ID: b.ID, StartMin: b.StartMin, EndMin: b.EndMin()})
		byID[b.ID] = b
	}

	items := make([]DayViewItem, 0, len(bookings))
	for _, p := range layout.Pack(boxes) {
		items = append(items, DayViewItem{
			Booking: byID[p.ID],
			Column:  p.Column,
			Columns: p.Columns,
		})
	}
	return items, nil
}

func (s *Service) loadConfig(ctx context.Context, companyID string) (storage.CompanyConfig, *time.Location, error) {
	cfg, err := s.companies.GetConfig(ctx, companyID)
	if err != nil {
		return storage.CompanyConfig{}, nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		s.logger.Warn("invalid company timezone, using UTC", "company_id", companyID, "tz", cfg.Timezone)
		loc = time.UTC
	}
	return cfg, loc, nil
}

// nowMinutesIfToday returns the current minute of day in company-local time
// when day is today, and -1 otherwise so the past filter stays off.
func (s *Service) nowMinutesIfToday(day time.Time, loc *time.Location) int {
	now := s.now().In(loc)
	if now.Year() != day.Year() || now.YearDay() != day.YearDay() {
		return -1
	}
	return now.Hour()*60 + now.Minute()
}

func (s *Service) writeBookingEvent(ctx context.Context, tx pgx.Tx, eventType string, b model.Booking) error {
	payload, err := json.Marshal(map[string]any{
		"booking_id":      b.ID,
		"company_id":      b.CompanyID,
		"professional_id": b.ProfessionalID,
		"service_id":      b.ServiceID,
		"date":            b.Date,
		"start_min":       b.StartMin,
		"duration_min":    b.DurationMin,
		"status":          string(b.Status),
	})
	if err != nil {
		return err
	}
	return s.outboxes.Insert(ctx, tx, outbox.Event{
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     eventType,
		Payload:       payload,
	})
}
