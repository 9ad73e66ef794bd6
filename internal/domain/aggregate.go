package domain

// StatusCounts is the dashboard projection over current Job/JobOffer state.
// A pure function of row state; recomputed per read, never stored.
type StatusCounts struct {
	NeedsScheduling      int `json:"needs_scheduling"`
	OfferOutstanding     int `json:"offer_outstanding"`
	ReadyToBook          int `json:"ready_to_book"`
	ScheduledToday       int `json:"scheduled_today"`
	ScheduledThisWeek    int `json:"scheduled_this_week"`
	CompletionPending    int `json:"completion_pending"`
	OnHold               int `json:"on_hold"`
	EngineersUnavailable int `json:"engineers_unavailable_today"`
}
