package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		// Return disabled app
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr.enabled
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.Shutdown(timeout)
}

// Custom event helpers

// RecordRideCreated records ride creation
func (nr *NewRelicApp) RecordRideCreated(rideID int64, seats int) {
	nr.RecordCustomEvent("RideCreated", map[string]interface{}{
		"ride_id":   rideID,
		"seats":     seats,
		"timestamp": time.Now().Unix(),
	})
}

// RecordRequestDecision records an accept or reject transition
func (nr *NewRelicApp) RecordRequestDecision(requestID int64, decision string) {
	nr.RecordCustomEvent("RequestDecision", map[string]interface{}{
		"request_id": requestID,
		"decision":   decision,
	})
}

// RecordMessageSent records a persisted chat message
func (nr *NewRelicApp) RecordMessageSent(rideID int64) {
	nr.RecordCustomEvent("MessageSent", map[string]interface{}{
		"ride_id": rideID,
	})
}
