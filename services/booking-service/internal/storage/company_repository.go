package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nazmul-karim/slotbook/libs/db"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/model"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/schedule"
)

type CompanyRepository struct {
	pool *db.Pool
}

func NewCompanyRepository(pool *db.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// CompanyConfig is the persisted form of a company's weekly schedule plus its
// local time reference.
type CompanyConfig struct {
	CompanyID string
	Timezone  string
	Schedule  schedule.CompanySchedule
}

// GetConfig loads the schedule, seeding a default Mon-Fri 09:00-18:00 row
// with a 12:00-13:00 break when the company has none yet.
func (r *CompanyRepository) GetConfig(ctx context.Context, companyID string) (CompanyConfig, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO company_schedules (company_id)
		VALUES ($1)
		ON CONFLICT (company_id) DO NOTHING
	`, companyID)
	if err != nil {
		return CompanyConfig{}, err
	}

	cfg := CompanyConfig{CompanyID: companyID}
	var workDays []int
	err = r.pool.QueryRow(ctx, `
		SELECT timezone, open_min, close_min, break_start_min, break_end_min,
			slot_interval_min, work_days
		FROM company_schedules
		WHERE company_id = $1
	`, companyID).Scan(
		&cfg.Timezone,
		&cfg.Schedule.OpenMin,
		&cfg.Schedule.CloseMin,
		&cfg.Schedule.BreakStartMin,
		&cfg.Schedule.BreakEndMin,
		&cfg.Schedule.SlotIntervalMin,
		&workDays,
	)
	if err != nil {
		return CompanyConfig{}, err
	}

	cfg.Schedule.WorkDays = make(map[time.Weekday]bool, len(workDays))
	for _, wd := range workDays {
		if wd >= 0 && wd <= 6 {
			cfg.Schedule.WorkDays[time.Weekday(wd)] = true
		}
	}
	return cfg, nil
}

func (r *CompanyRepository) UpsertConfig(ctx context.Context, cfg CompanyConfig) error {
	workDays := make([]int, 0, len(cfg.Schedule.WorkDays))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if cfg.Schedule.WorkDays[wd] {
			workDays = append(workDays, int(wd))
		}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO company_schedules
			(company_id, timezone, open_min, close_min, break_start_min, break_end_min,
			 slot_interval_min, work_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
			open_min = EXCLUDED.open_min,
			close_min = EXCLUDED.close_min,
			break_start_min = EXCLUDED.break_start_min,
			break_end_min = EXCLUDED.break_end_min,
			slot_interval_min = EXCLUDED.slot_interval_min,
			work_days = EXCLUDED.work_days,
			updated_at = now()
	`, cfg.CompanyID, cfg.Timezone, cfg.Schedule.OpenMin, cfg.Schedule.CloseMin,
		cfg.Schedule.BreakStartMin, cfg.Schedule.BreakEndMin, cfg.Schedule.SlotIntervalMin, workDays)
	return err
}

func (r *CompanyRepository) CreateService(ctx context.Context, companyID, name string, durationMin int, price string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, company_id, name, duration_minutes, price)
		VALUES ($1, $2, $3, $4, $5)
	`, id, companyID, name, durationMin, price)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *CompanyRepository) ListServices(ctx context.Context, companyID string, limit int) ([]model.Service, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, company_id::text, name, duration_minutes, price::text, created_at
		FROM services
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.DurationMin, &s.Price, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *CompanyRepository) GetServiceDuration(ctx context.Context, companyID, serviceID string) (int, error) {
	var mins int
	err := r.pool.QueryRow(ctx, `
		SELECT duration_minutes
		FROM services
		WHERE company_id = $1 AND id = $2
	`, companyID, serviceID).Scan(&mins)
	return mins, err
}

func (r *CompanyRepository) CreateProfessional(ctx context.Context, companyID, name string, isActive bool) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO professionals (company_id, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`, companyID, name, isActive).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *CompanyRepository) ListProfessionals(ctx context.Context, companyID string, limit int) ([]model.Professional, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, company_id::text, name, is_active, created_at
		FROM professionals
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Professional
	for rows.Next() {
		var p model.Professional
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *CompanyRepository) ProfessionalExists(ctx context.Context, companyID, professionalID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM professionals WHERE id = $1 AND company_id = $2 AND is_active
		)
	`, professionalID, companyID).Scan(&exists)
	return exists, err
}
