package repository

import (
	"context"
	"database/sql"

	"solardryer/internal/models"
)

// SampleRepository persists telemetry samples under their session.
type SampleRepository struct {
	db *sql.DB
}

// NewSampleRepository returns repository.
func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// Insert appends one sample. Both the server timestamp (assigned here) and
// the client capture time are kept; server timestamp latency makes neither
// reliable alone for ordering right after a write.
func (r *SampleRepository) Insert(ctx context.Context, sample *models.Sample) error {
	const query = `
		INSERT INTO session_samples (session_id, dryer_temp_c, collector_temp_c, humidity_pct, created_at, timestamp_ms)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		sample.SessionID,
		sample.DryerTempC,
		sample.CollectorTempC,
		sample.HumidityPct,
		sample.TimestampMs,
	).Scan(&sample.ID, &sample.CreatedAt)
}

// ListBySession returns a session's samples in capture order.
func (r *SampleRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Sample, error) {
	const query = `
		SELECT id, session_id, dryer_temp_c, collector_temp_c, humidity_pct, created_at, timestamp_ms
		FROM session_samples
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.Sample
	for rows.Next() {
		var (
			s           models.Sample
			dryer       sql.NullFloat64
			collector   sql.NullFloat64
			humidity    sql.NullFloat64
			timestampMs sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.SessionID, &dryer, &collector, &humidity, &s.CreatedAt, &timestampMs); err != nil {
			return nil, err
		}
		if dryer.Valid {
			v := dryer.Float64
			s.DryerTempC = &v
		}
		if collector.Valid {
			v := collector.Float64
			s.CollectorTempC = &v
		}
		if humidity.Valid {
			v := humidity.Float64
			s.HumidityPct = &v
		}
		if timestampMs.Valid {
			v := timestampMs.Int64
			s.TimestampMs = &v
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
