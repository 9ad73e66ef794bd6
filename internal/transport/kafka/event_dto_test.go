package kafka_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/service-scheduling/internal/service/jobs"
	"github.com/fieldworks/service-scheduling/internal/transport/kafka"
)

func TestToDomain_TrimsAndCopiesFields(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	dto := kafka.EventDTO{
		JobRef:          "  6f1f6e2a-7d7b-4a6f-9a75-2f50c5da8f01  ",
		Status:          "  created  ",
		Postcode:        " sw1a 1aa ",
		Address:         " 10 Downing St",
		DurationMinutes: 120,
		JobType:         " installation ",
		ClientID:        3,
		CreatedAt:       ts,
	}

	got := kafka.ToDomain(dto)

	require.Equal(t, jobs.Event{
		JobRef:          "6f1f6e2a-7d7b-4a6f-9a75-2f50c5da8f01",
		Status:          "created",
		Postcode:        "sw1a 1aa",
		Address:         "10 Downing St",
		DurationMinutes: 120,
		JobType:         "installation",
		ClientID:        3,
		CreatedAt:       ts,
	}, got)
}
