package kafka

import (
	"strings"
	"time"

	"github.com/fieldworks/service-scheduling/internal/service/jobs"
)

// EventDTO is a data transfer object for jobs.Event
type EventDTO struct {
	JobRef          string    `json:"job_ref"`
	Status          string    `json:"status"`
	Postcode        string    `json:"postcode"`
	Address         string    `json:"address"`
	DurationMinutes int       `json:"duration_minutes"`
	JobType         string    `json:"job_type"`
	ClientID        int64     `json:"client_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToDomain converts EventDTO to jobs.Event
func ToDomain(dto EventDTO) jobs.Event {
	return jobs.Event{
		JobRef:          strings.TrimSpace(dto.JobRef),
		Status:          strings.TrimSpace(dto.Status),
		Postcode:        strings.TrimSpace(dto.Postcode),
		Address:         strings.TrimSpace(dto.Address),
		DurationMinutes: dto.DurationMinutes,
		JobType:         strings.TrimSpace(dto.JobType),
		ClientID:        dto.ClientID,
		CreatedAt:       dto.CreatedAt,
	}
}
