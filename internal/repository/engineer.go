package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/domain"
)

// EngineerRepo represents engineer reference-data repository.
type EngineerRepo struct{ db *pgxpool.Pool }

// NewEngineerRepo creates a new EngineerRepo.
func NewEngineerRepo(db *pgxpool.Pool) *EngineerRepo { return &EngineerRepo{db: db} }

// Get - returns an engineer with working hours, time off and service areas.
func (r *EngineerRepo) Get(ctx context.Context, id int64) (*domain.Engineer, error) {
	return getEngineer(ctx, r.db, id)
}

// ListAvailable returns all engineers whose global availability flag is set,
// fully loaded, ordered by id.
func (r *EngineerRepo) ListAvailable(ctx context.Context) ([]domain.Engineer, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, available, base_postcode, daily_job_cap
        FROM engineers
        WHERE available
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("list available engineers: %w", err)
	}
	defer rows.Close()

	var out []domain.Engineer
	ids := make([]int64, 0, 8)
	byID := map[int64]int{}
	for rows.Next() {
		var e domain.Engineer
		if err := rows.Scan(&e.ID, &e.Name, &e.Available, &e.BasePostcode, &e.DailyJobCap); err != nil {
			return nil, err
		}
		byID[e.ID] = len(out)
		out = append(out, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	if err := r.loadDetails(ctx, ids, func(id int64) *domain.Engineer { return &out[byID[id]] }); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EngineerRepo) loadDetails(ctx context.Context, ids []int64, target func(int64) *domain.Engineer) error {
	rows, err := r.db.Query(ctx, `
        SELECT engineer_id, weekday, start_minutes, end_minutes, available
        FROM engineer_working_hours
        WHERE engineer_id = ANY($1)
        ORDER BY engineer_id, weekday
    `, ids)
	if err != nil {
		return fmt.Errorf("load working hours: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id      int64
			weekday int
			wh      domain.WorkingHours
			start   int
			end     int
		)
		if err := rows.Scan(&id, &weekday, &start, &end, &wh.Available); err != nil {
			return err
		}
		wh.Weekday = time.Weekday(weekday)
		wh.Start = domain.ClockTime(start)
		wh.End = domain.ClockTime(end)
		e := target(id)
		e.WorkingHours = append(e.WorkingHours, wh)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	toRows, err := r.db.Query(ctx, `
        SELECT engineer_id, start_date, end_date
        FROM engineer_time_off
        WHERE engineer_id = ANY($1)
        ORDER BY engineer_id, start_date
    `, ids)
	if err != nil {
		return fmt.Errorf("load time off: %w", err)
	}
	defer toRows.Close()
	for toRows.Next() {
		var (
			id int64
			iv domain.TimeOffInterval
		)
		if err := toRows.Scan(&id, &iv.Start, &iv.End); err != nil {
			return err
		}
		e := target(id)
		e.TimeOff = append(e.TimeOff, iv)
	}
	if err := toRows.Err(); err != nil {
		return err
	}

	saRows, err := r.db.Query(ctx, `
        SELECT engineer_id, area_key, max_travel_minutes, unbounded
        FROM engineer_service_areas
        WHERE engineer_id = ANY($1)
        ORDER BY engineer_id, area_key
    `, ids)
	if err != nil {
		return fmt.Errorf("load service areas: %w", err)
	}
	defer saRows.Close()
	for saRows.Next() {
		var (
			id int64
			a  domain.ServiceArea
		)
		if err := saRows.Scan(&id, &a.AreaKey, &a.MaxTravelMinutes, &a.Unbounded); err != nil {
			return err
		}
		e := target(id)
		e.ServiceAreas = append(e.ServiceAreas, a)
	}
	return saRows.Err()
}

// Create - creates an engineer with its working hours, time off and service
// areas. Reference data is owned by the admin screens; this exists for
// seeding and tests.
func (r *EngineerRepo) Create(ctx context.Context, e *domain.Engineer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO engineers(name, available, base_postcode, daily_job_cap)
        VALUES($1, $2, $3, $4)
        RETURNING id
    `, e.Name, e.Available, e.BasePostcode, e.DailyJobCap).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, fmt.Errorf("create engineer: %w", err)
	}
	for _, wh := range e.WorkingHours {
		_, err := r.db.Exec(ctx, `
            INSERT INTO engineer_working_hours(engineer_id, weekday, start_minutes, end_minutes, available)
            VALUES($1, $2, $3, $4, $5)
        `, id, int(wh.Weekday), wh.Start.Minutes(), wh.End.Minutes(), wh.Available)
		if err != nil {
			return 0, fmt.Errorf("create working hours: %w", err)
		}
	}
	for _, iv := range e.TimeOff {
		_, err := r.db.Exec(ctx, `
            INSERT INTO engineer_time_off(engineer_id, start_date, end_date)
            VALUES($1, $2, $3)
        `, id, domain.DateOnly(iv.Start), domain.DateOnly(iv.End))
		if err != nil {
			return 0, fmt.Errorf("create time off: %w", err)
		}
	}
	for _, a := range e.ServiceAreas {
		_, err := r.db.Exec(ctx, `
            INSERT INTO engineer_service_areas(engineer_id, area_key, max_travel_minutes, unbounded)
            VALUES($1, $2, $3, $4)
        `, id, a.AreaKey, a.MaxTravelMinutes, a.Unbounded)
		if err != nil {
			return 0, fmt.Errorf("create service area: %w", err)
		}
	}
	e.ID = id
	return id, nil
}

// getEngineer loads a full engineer through any querier (pool or tx).
func getEngineer(ctx context.Context, q querier, id int64) (*domain.Engineer, error) {
	var e domain.Engineer
	err := q.QueryRow(ctx, `
        SELECT id, name, available, base_postcode, daily_job_cap
        FROM engineers WHERE id = $1
    `, id).Scan(&e.ID, &e.Name, &e.Available, &e.BasePostcode, &e.DailyJobCap)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get engineer %d: %w", id, err)
	}

	whRows, err := q.Query(ctx, `
        SELECT weekday, start_minutes, end_minutes, available
        FROM engineer_working_hours WHERE engineer_id = $1 ORDER BY weekday
    `, id)
	if err != nil {
		return nil, fmt.Errorf("get working hours %d: %w", id, err)
	}
	defer whRows.Close()
	for whRows.Next() {
		var (
			weekday, start, end int
			wh                  domain.WorkingHours
		)
		if err := whRows.Scan(&weekday, &start, &end, &wh.Available); err != nil {
			return nil, err
		}
		wh.Weekday = time.Weekday(weekday)
		wh.Start = domain.ClockTime(start)
		wh.End = domain.ClockTime(end)
		e.WorkingHours = append(e.WorkingHours, wh)
	}
	if err := whRows.Err(); err != nil {
		return nil, err
	}

	toRows, err := q.Query(ctx, `
        SELECT start_date, end_date
        FROM engineer_time_off WHERE engineer_id = $1 ORDER BY start_date
    `, id)
	if err != nil {
		return nil, fmt.Errorf("get time off %d: %w", id, err)
	}
	defer toRows.Close()
	for toRows.Next() {
		var iv domain.TimeOffInterval
		if err := toRows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		e.TimeOff = append(e.TimeOff, iv)
	}
	if err := toRows.Err(); err != nil {
		return nil, err
	}

	saRows, err := q.Query(ctx, `
        SELECT area_key, max_travel_minutes, unbounded
        FROM engineer_service_areas WHERE engineer_id = $1 ORDER BY area_key
    `, id)
	if err != nil {
		return nil, fmt.Errorf("get service areas %d: %w", id, err)
	}
	defer saRows.Close()
	for saRows.Next() {
		var a domain.ServiceArea
		if err := saRows.Scan(&a.AreaKey, &a.MaxTravelMinutes, &a.Unbounded); err != nil {
			return nil, err
		}
		e.ServiceAreas = append(e.ServiceAreas, a)
	}
	if err := saRows.Err(); err != nil {
		return nil, err
	}
	return &e, nil
}
