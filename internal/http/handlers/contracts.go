package handlers

import (
	"context"
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/service/booking"
	"github.com/fieldworks/service-scheduling/internal/service/offer"
	"github.com/fieldworks/service-scheduling/internal/service/recommend"
	"github.com/fieldworks/service-scheduling/internal/service/status"
)

type recommendUsecase interface {
	Recommend(ctx context.Context, jobID int64, originPostcode string, opts recommend.Options) ([]domain.EngineerSuggestion, error)
}

// NewRecommendUsecase wires the scorer into a recommendUsecase.
func NewRecommendUsecase(svc *recommend.Service) recommendUsecase {
	return svc
}

type offerUsecase interface {
	Create(ctx context.Context, in offer.CreateInput) (*domain.JobOffer, error)
	Respond(ctx context.Context, token string, decision offer.Decision, reason string) (*domain.JobOffer, error)
	Resend(ctx context.Context, offerID int64) (*domain.JobOffer, error)
}

// NewOfferUsecase wires the offer state machine into an offerUsecase.
func NewOfferUsecase(svc *offer.Service) offerUsecase {
	return svc
}

type bookingUsecase interface {
	Confirm(ctx context.Context, jobID, engineerID int64, date time.Time, source booking.Source) error
}

// NewBookingUsecase wires the booking validator into a bookingUsecase.
func NewBookingUsecase(v *booking.Validator) bookingUsecase {
	return v
}

type statusUsecase interface {
	Counts(ctx context.Context) (domain.StatusCounts, error)
}

// NewStatusUsecase wires the status aggregator into a statusUsecase.
func NewStatusUsecase(svc *status.Service) statusUsecase {
	return svc
}
