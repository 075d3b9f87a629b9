package models

import "time"

// Session status values.
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
)

// Session represents one experiment run of the dryer.
type Session struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Status          string     `db:"status" json:"status"`
	DeviceID        string     `db:"device_id" json:"device_id"`
	CreatedAt       *time.Time `db:"created_at" json:"created_at,omitempty"`
	CreatedAtClient int64      `db:"created_at_client" json:"created_at_client,omitempty"`
	EndedAt         *time.Time `db:"ended_at" json:"ended_at,omitempty"`
}

// Sample is one telemetry reading attributed to a session. Readings are
// written once by the sample logger and never mutated.
type Sample struct {
	ID             int64     `db:"id" json:"id"`
	SessionID      string    `db:"session_id" json:"session_id"`
	DryerTempC     *float64  `db:"dryer_temp_c" json:"dryer_temp_c"`
	CollectorTempC *float64  `db:"collector_temp_c" json:"collector_temp_c"`
	HumidityPct    *float64  `db:"humidity_pct" json:"humidity_pct"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	TimestampMs    *int64    `db:"timestamp_ms" json:"timestamp_ms"`
}

// ActiveSession is the reconciled view of the currently running session
// consumed by the dashboard. It is derived state, never stored server-side.
type ActiveSession struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	StartTimestamp int64  `json:"start_timestamp"`
}
