package handlers

import "github.com/fieldworks/service-scheduling/internal/domain"

func suggestionToResponse(s domain.EngineerSuggestion) suggestionDTO {
	// a zero candidate date means "no free day yet" and serializes as empty
	date := ""
	if !s.CandidateDate.IsZero() {
		date = s.CandidateDate.Format(dateLayout)
	}
	return suggestionDTO{
		EngineerID:    s.EngineerID,
		EngineerName:  s.EngineerName,
		CandidateDate: date,
		DistanceKm:    s.DistanceKm,
		TravelMinutes: int(s.TravelTime.Minutes()),
		TravelTier:    string(s.TravelTier),
		Score:         s.Score,
		Reasons:       s.Reasons,
	}
}

func suggestionsToResponse(list []domain.EngineerSuggestion) []suggestionDTO {
	out := make([]suggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, suggestionToResponse(s))
	}
	return out
}

func offerToResponse(o *domain.JobOffer) offerDTO {
	return offerDTO{
		ID:          o.ID,
		JobID:       o.JobID,
		EngineerID:  o.EngineerID,
		OfferedDate: o.OfferedDate.Format(dateLayout),
		Window:      o.Window,
		Status:      string(o.Status),
		TokenHint:   o.TokenHint(),
		Channel:     string(o.Channel),
		ExpiresAt:   o.ExpiresAt,
		RespondedAt: o.RespondedAt,
	}
}
