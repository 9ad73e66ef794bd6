package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/config"
	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/logx"
	"github.com/fieldworks/service-scheduling/internal/service/availability"
)

// Service ranks (engineer, candidate date) pairs for a job. All reads, no
// writes: suggestions are recomputed per request and never persisted.
type Service struct {
	jobs             jobRepository
	engineers        engineerRepository
	travel           travelEstimator
	policy           config.Policy
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// Options override the policy defaults for one request. Zero values keep
// the policy setting.
type Options struct {
	HorizonDays int
	TopN        int
	// AdvanceNotice overrides the policy's minimum-notice floor.
	AdvanceNotice time.Duration
	// AllowNoDate keeps engineers with no free day inside the horizon in
	// the list instead of excluding them; such suggestions carry a zero
	// candidate date.
	AllowNoDate bool
}

// NewService creates the recommendation scorer.
func NewService(jobs jobRepository, engineers engineerRepository, travel travelEstimator, pol config.Policy, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		jobs:             jobs,
		engineers:        engineers,
		travel:           travel,
		policy:           pol,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Recommend builds the ranked suggestion list for a job. An empty origin
// postcode falls back to the job's own postcode. Zero qualifying engineers
// yields an empty list, not an error.
func (s *Service) Recommend(ctx context.Context, jobID int64, originPostcode string, opts Options) ([]domain.EngineerSuggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperr.ErrNotFound
	}
	if !job.Type.Schedulable() {
		return nil, fmt.Errorf("job type %q: %w", job.Type, apperr.ErrInvalid)
	}

	origin := originPostcode
	if origin == "" {
		origin = job.Postcode
	}
	outward := domain.OutwardCode(origin)
	if outward == "" {
		return nil, fmt.Errorf("origin postcode %q: %w", origin, apperr.ErrInvalid)
	}

	horizon := s.policy.SearchHorizonDays
	if opts.HorizonDays > 0 {
		horizon = opts.HorizonDays
	}
	topN := s.policy.TopN
	if opts.TopN > 0 {
		topN = opts.TopN
	}
	notice := s.policy.AdvanceNotice()
	if opts.AdvanceNotice > 0 {
		notice = opts.AdvanceNotice
	}

	earliest, err := s.earliestDate(ctx, job.ClientID, notice)
	if err != nil {
		return nil, err
	}

	engineers, err := s.engineers.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	booked, err := s.jobs.ScheduledCounts(ctx, earliest, earliest.AddDate(0, 0, horizon))
	if err != nil {
		return nil, err
	}

	suggestions := make([]domain.EngineerSuggestion, 0, len(engineers))
	for i := range engineers {
		e := &engineers[i]
		sug, ok := s.scoreEngineer(ctx, e, job, origin, outward, earliest, horizon, booked[e.ID], opts.AllowNoDate)
		if ok {
			suggestions = append(suggestions, sug)
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].EngineerID < suggestions[j].EngineerID
	})
	if len(suggestions) > topN {
		suggestions = suggestions[:topN]
	}

	s.logger.Info("recommendations built",
		logx.String("event", "recommendations_built"),
		logx.Int64("job_id", job.ID),
		logx.String("outward", outward),
		logx.Int("candidates", len(suggestions)),
	)

	return suggestions, nil
}

// earliestDate is max(now + advance notice, day after the client's latest
// blocked date), truncated to a date.
func (s *Service) earliestDate(ctx context.Context, clientID int64, notice time.Duration) (time.Time, error) {
	earliest := domain.DateOnly(s.now().Add(notice))

	blocked, err := s.jobs.LatestBlockedDate(ctx, clientID)
	if err != nil {
		return time.Time{}, err
	}
	if blocked != nil {
		if after := domain.DateOnly(*blocked).AddDate(0, 0, 1); after.After(earliest) {
			earliest = after
		}
	}
	return earliest, nil
}

// scoreEngineer resolves eligibility, candidate date and score for one
// engineer. The second return is false when the engineer does not qualify.
func (s *Service) scoreEngineer(ctx context.Context, e *domain.Engineer, job *domain.Job, origin, outward string, earliest time.Time, horizon int, bookedByDay map[time.Time]int, allowNoDate bool) (domain.EngineerSuggestion, bool) {
	tolerance := s.policy.DefaultTravelTolerance()
	unbounded := false
	areaMatched := false
	if area, ok := e.AreaFor(outward); ok {
		tolerance = time.Duration(area.MaxTravelMinutes) * time.Minute
		unbounded = area.Unbounded
		areaMatched = true
	} else if s.policy.StrictServiceAreaMatch {
		return domain.EngineerSuggestion{}, false
	}

	est, err := s.travel.Estimate(ctx, e.BasePostcode, origin)
	if err != nil {
		s.logger.Warn("travel estimate unavailable, engineer skipped",
			logx.Int64("engineer_id", e.ID),
			logx.String("outward", outward),
			logx.Err(err),
		)
		return domain.EngineerSuggestion{}, false
	}
	if !unbounded && est.Duration > tolerance {
		return domain.EngineerSuggestion{}, false
	}

	date, sameDay, ok := s.candidateDate(e, job.Duration, earliest, horizon, bookedByDay)
	if !ok && !allowNoDate {
		return domain.EngineerSuggestion{}, false
	}

	score := 100.0
	score -= est.Duration.Minutes() / 2
	score -= float64(sameDay) * 10
	preferred := false
	for _, id := range s.policy.PreferredEngineers {
		if id == e.ID {
			score += 5
			preferred = true
			break
		}
	}

	reasons := make([]string, 0, 3)
	reasons = append(reasons, fmt.Sprintf("%d min travel (%s estimate)", int(est.Duration.Minutes()), est.Tier))
	switch {
	case !ok:
		reasons = append(reasons, fmt.Sprintf("no free day within %d days", horizon))
	case sameDay == 0:
		reasons = append(reasons, fmt.Sprintf("no jobs booked on %s", date.Format("2006-01-02")))
	default:
		reasons = append(reasons, fmt.Sprintf("%d job(s) already booked that day", sameDay))
	}
	switch {
	case preferred:
		reasons = append(reasons, "preferred engineer")
	case areaMatched && unbounded:
		reasons = append(reasons, fmt.Sprintf("covers %s with no travel limit", outward))
	case areaMatched:
		reasons = append(reasons, fmt.Sprintf("declared service area %s", outward))
	}

	return domain.EngineerSuggestion{
		EngineerID:    e.ID,
		EngineerName:  e.Name,
		CandidateDate: date,
		DistanceKm:    est.DistanceKm,
		TravelTime:    est.Duration,
		TravelTier:    est.Tier,
		Score:         score,
		Reasons:       reasons,
	}, true
}

// candidateDate walks forward from earliest until a day the engineer can
// take the job, or the horizon runs out. Also returns that day's existing
// load for scoring.
func (s *Service) candidateDate(e *domain.Engineer, duration time.Duration, earliest time.Time, horizon int, bookedByDay map[time.Time]int) (time.Time, int, bool) {
	for i := 0; i < horizon; i++ {
		d := earliest.AddDate(0, 0, i)
		if s.policy.SkipWeekends && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		booked := bookedByDay[d]
		if availability.CheckDay(s.policy, e, d, booked, duration) == nil {
			return d, booked, true
		}
	}
	return time.Time{}, 0, false
}
