package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/domain"
)

// JobRepo represents job repository.
type JobRepo struct{ db *pgxpool.Pool }

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *pgxpool.Pool) *JobRepo { return &JobRepo{db: db} }

const jobColumns = `id, ref, client_id, postcode, address, duration_minutes, job_type, status, engineer_id, scheduled_date, suppressed`

func scanJob(row interface{ Scan(...any) error }) (*domain.Job, error) {
	var (
		j       domain.Job
		minutes int
	)
	err := row.Scan(&j.ID, &j.Ref, &j.ClientID, &j.Postcode, &j.Address,
		&minutes, &j.Type, &j.Status, &j.EngineerID, &j.ScheduledDate, &j.Suppressed)
	if err != nil {
		return nil, err
	}
	j.Duration = time.Duration(minutes) * time.Minute
	return &j, nil
}

// Get - returns job by its ID.
func (r *JobRepo) Get(ctx context.Context, id int64) (*domain.Job, error) {
	return getJob(ctx, r.db, id)
}

// GetByRef - returns job by its external reference.
func (r *JobRepo) GetByRef(ctx context.Context, ref string) (*domain.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE ref = $1`, ref))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job by ref %q: %w", ref, err)
	}
	return j, nil
}

// Create - creates a new job entering the scheduling pool.
func (r *JobRepo) Create(ctx context.Context, j *domain.Job) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO jobs(ref, client_id, postcode, address, duration_minutes, job_type, status, suppressed)
        VALUES($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `, j.Ref, j.ClientID, j.Postcode, j.Address, int(j.Duration.Minutes()),
		string(j.Type), string(j.Status), j.Suppressed).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, fmt.Errorf("create job: %w", err)
	}
	j.ID = id
	return id, nil
}

// UpdatePartial applies a partial update to a job and returns true if a row was affected.
func (r *JobRepo) UpdatePartial(ctx context.Context, u domain.PartialJobUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE jobs
        SET
            status         = COALESCE($2, status),
            engineer_id    = COALESCE($3, engineer_id),
            scheduled_date = COALESCE($4, scheduled_date),
            suppressed     = COALESCE($5, suppressed),
            updated_at     = now()
        WHERE id = $1
    `, u.ID, u.Status, u.EngineerID, u.ScheduledDate, u.Suppressed)
	if err != nil {
		return false, fmt.Errorf("update job %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// LatestBlockedDate returns the most recent date the client is known to be
// unavailable, or nil when none is recorded.
func (r *JobRepo) LatestBlockedDate(ctx context.Context, clientID int64) (*time.Time, error) {
	var d *time.Time
	err := r.db.QueryRow(ctx, `
        SELECT MAX(blocked_date) FROM client_blocked_dates WHERE client_id = $1
    `, clientID).Scan(&d)
	if err != nil {
		return nil, fmt.Errorf("latest blocked date for client %d: %w", clientID, err)
	}
	return d, nil
}

// AddBlockedDate records a client-unavailable date.
func (r *JobRepo) AddBlockedDate(ctx context.Context, clientID int64, date time.Time) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO client_blocked_dates(client_id, blocked_date)
        VALUES($1, $2)
        ON CONFLICT DO NOTHING
    `, clientID, domain.DateOnly(date))
	if err != nil {
		return fmt.Errorf("add blocked date: %w", err)
	}
	return nil
}

// ScheduledCounts returns, for every engineer, the number of scheduled jobs
// per day in [from, to]. Days with zero bookings are absent from the map.
func (r *JobRepo) ScheduledCounts(ctx context.Context, from, to time.Time) (map[int64]map[time.Time]int, error) {
	rows, err := r.db.Query(ctx, `
        SELECT engineer_id, scheduled_date, COUNT(*)
        FROM jobs
        WHERE status = $1
          AND engineer_id IS NOT NULL
          AND scheduled_date BETWEEN $2 AND $3
        GROUP BY engineer_id, scheduled_date
    `, string(domain.JobStatusScheduled), domain.DateOnly(from), domain.DateOnly(to))
	if err != nil {
		return nil, fmt.Errorf("scheduled counts: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]map[time.Time]int)
	for rows.Next() {
		var (
			engineerID int64
			date       time.Time
			n          int
		)
		if err := rows.Scan(&engineerID, &date, &n); err != nil {
			return nil, err
		}
		byDay := out[engineerID]
		if byDay == nil {
			byDay = make(map[time.Time]int)
			out[engineerID] = byDay
		}
		byDay[domain.DateOnly(date)] = n
	}
	return out, rows.Err()
}

// getJob loads a job through any querier (pool or tx).
func getJob(ctx context.Context, q querier, id int64) (*domain.Job, error) {
	j, err := scanJob(q.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return j, nil
}
