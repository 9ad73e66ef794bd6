package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldworks/service-scheduling/internal/domain"
)

// StatusRepo computes the read-only dashboard aggregates.
type StatusRepo struct{ db *pgxpool.Pool }

// NewStatusRepo creates a new StatusRepo.
func NewStatusRepo(db *pgxpool.Pool) *StatusRepo { return &StatusRepo{db: db} }

// Counts computes all dashboard buckets from current Job/JobOffer state.
// "This week" is Monday through Sunday containing today.
func (r *StatusRepo) Counts(ctx context.Context, now time.Time) (domain.StatusCounts, error) {
	var c domain.StatusCounts

	today := domain.DateOnly(now)
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7 // ISO: Sunday closes the week
	}
	weekStart := today.AddDate(0, 0, 1-weekday)
	weekEnd := weekStart.AddDate(0, 0, 6)

	err := r.db.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (
                WHERE j.status = $1 AND NOT j.suppressed
                  AND NOT EXISTS (
                      SELECT 1 FROM job_offers o
                      WHERE o.job_id = j.id AND o.status = $2 AND o.expires_at > $3
                  )
            ),
            COUNT(*) FILTER (
                WHERE EXISTS (
                    SELECT 1 FROM job_offers o
                    WHERE o.job_id = j.id AND o.status = $2 AND o.expires_at > $3
                )
            ),
            COUNT(*) FILTER (
                WHERE j.status <> $4 AND NOT j.suppressed
                  AND (
                      SELECT o.status FROM job_offers o
                      WHERE o.job_id = j.id
                      ORDER BY o.created_at DESC, o.id DESC
                      LIMIT 1
                  ) = $5
            ),
            COUNT(*) FILTER (WHERE j.status = $4 AND j.scheduled_date = $6),
            COUNT(*) FILTER (WHERE j.status = $4 AND j.scheduled_date BETWEEN $7 AND $8),
            COUNT(*) FILTER (WHERE j.status = $9),
            COUNT(*) FILTER (WHERE j.status = $10)
        FROM jobs j
    `,
		string(domain.JobStatusAwaitingBooking),
		string(domain.OfferStatusPending),
		now,
		string(domain.JobStatusScheduled),
		string(domain.OfferStatusAccepted),
		today,
		weekStart,
		weekEnd,
		string(domain.JobStatusInProgress),
		string(domain.JobStatusOnHold),
	).Scan(
		&c.NeedsScheduling,
		&c.OfferOutstanding,
		&c.ReadyToBook,
		&c.ScheduledToday,
		&c.ScheduledThisWeek,
		&c.CompletionPending,
		&c.OnHold,
	)
	if err != nil {
		return domain.StatusCounts{}, fmt.Errorf("job status counts: %w", err)
	}

	err = r.db.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM engineers e
        WHERE NOT e.available
           OR EXISTS (
               SELECT 1 FROM engineer_time_off t
               WHERE t.engineer_id = e.id
                 AND $1 BETWEEN t.start_date AND t.end_date
           )
           OR NOT EXISTS (
               SELECT 1 FROM engineer_working_hours w
               WHERE w.engineer_id = e.id AND w.weekday = $2 AND w.available
           )
    `, today, int(today.Weekday())).Scan(&c.EngineersUnavailable)
	if err != nil {
		return domain.StatusCounts{}, fmt.Errorf("engineer availability counts: %w", err)
	}

	return c, nil
}
