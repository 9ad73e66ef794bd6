package handlers

import (
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
)

type recommendRequest struct {
	OriginPostcode     string `json:"origin_postcode,omitempty"`
	HorizonDays        int    `json:"horizon_days,omitempty"`
	TopN               int    `json:"top_n,omitempty"`
	AdvanceNoticeHours int    `json:"advance_notice_hours,omitempty"`
	AllowNoDate        bool   `json:"allow_no_date,omitempty"`
}

type suggestionDTO struct {
	EngineerID    int64    `json:"engineer_id"`
	EngineerName  string   `json:"engineer_name"`
	CandidateDate string   `json:"candidate_date"`
	DistanceKm    float64  `json:"distance_km"`
	TravelMinutes int      `json:"travel_minutes"`
	TravelTier    string   `json:"travel_tier"`
	Score         float64  `json:"score"`
	Reasons       []string `json:"reasons"`
}

type createOfferRequest struct {
	JobID      int64  `json:"job_id"`
	EngineerID int64  `json:"engineer_id"`
	Date       string `json:"date"`
	Window     string `json:"window,omitempty"`
	Channel    string `json:"channel,omitempty"`
}

// offerDTO is the staff-facing offer view. The full token is deliberately
// absent; only the recipient channel ever carries it.
type offerDTO struct {
	ID          int64      `json:"id"`
	JobID       int64      `json:"job_id"`
	EngineerID  int64      `json:"engineer_id"`
	OfferedDate string     `json:"offered_date"`
	Window      string     `json:"window,omitempty"`
	Status      string     `json:"status"`
	TokenHint   string     `json:"token_hint"`
	Channel     string     `json:"channel"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type respondOfferRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

type respondOfferResponse struct {
	OfferStatus string `json:"offer_status"`
	OfferedDate string `json:"offered_date"`
}

type confirmBookingRequest struct {
	JobID      int64  `json:"job_id"`
	EngineerID int64  `json:"engineer_id"`
	Date       string `json:"date"`
}

type confirmBookingResponse struct {
	JobID      int64  `json:"job_id"`
	EngineerID int64  `json:"engineer_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, bool) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return domain.DateOnly(d), true
}
