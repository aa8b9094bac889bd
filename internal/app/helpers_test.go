package app

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func listeningGauge(t *testing.T, a *App) float64 {
	t.Helper()
	return testutil.ToFloat64(a.startup.Listening)
}

func bootstrapDuration(t *testing.T, a *App) float64 {
	t.Helper()
	return testutil.ToFloat64(a.startup.Duration)
}
