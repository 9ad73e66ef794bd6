package app

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// server and sweep goroutines must wind down with the test contexts
	goleak.VerifyTestMain(m)
}
