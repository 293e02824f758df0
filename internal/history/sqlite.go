package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// ErrSiteRequired is returned when a record has no site ID.
var ErrSiteRequired = errors.New("history: site id is required")

// SQLiteRepository implements Repository on the readings and
// camera_frames tables.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordReading inserts one sample. A zero timestamp is replaced by now.
func (r *SQLiteRepository) RecordReading(ctx context.Context, siteID string, sample telemetry.Sample) error {
	if siteID == "" {
		return ErrSiteRequired
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now()
	}
	values := sample.Values
	if values == nil {
		values = map[string]float64{}
	}

	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshalling reading values: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO readings (site_id, recorded_at, values_json) VALUES (?, ?, ?)",
		siteID,
		formatTime(sample.Timestamp),
		string(valuesJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}
	return nil
}

// RecordFrame inserts camera frame metadata.
func (r *SQLiteRepository) RecordFrame(ctx context.Context, frame Frame) error {
	if frame.SiteID == "" {
		return ErrSiteRequired
	}
	if frame.ReceivedAt.IsZero() {
		frame.ReceivedAt = time.Now()
	}
	names := frame.Names
	if names == nil {
		names = []string{}
	}

	namesJSON, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshalling frame names: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO camera_frames (site_id, received_at, size_bytes, names_json) VALUES (?, ?, ?, ?)",
		frame.SiteID,
		formatTime(frame.ReceivedAt),
		frame.SizeBytes,
		string(namesJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting camera frame: %w", err)
	}
	return nil
}

// ListReadings returns a page of readings matching filter, newest first.
func (r *SQLiteRepository) ListReadings(ctx context.Context, filter Filter) (*ReadingList, error) {
	filter.Limit = clampLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.SiteID != "" {
		conditions = append(conditions, "site_id = ?")
		args = append(args, filter.SiteID)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, formatTime(filter.Since))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM readings " + where //nolint:gosec // conditions are placeholders only
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting readings: %w", err)
	}

	query := "SELECT id, site_id, recorded_at, values_json FROM readings " + where + //nolint:gosec // conditions are placeholders only
		" ORDER BY recorded_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	readings := make([]Reading, 0, filter.Limit)
	for rows.Next() {
		var rd Reading
		var recordedAt, valuesJSON string
		if err := rows.Scan(&rd.ID, &rd.SiteID, &recordedAt, &valuesJSON); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		if rd.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(valuesJSON), &rd.Values); err != nil {
			return nil, fmt.Errorf("unmarshalling reading values: %w", err)
		}
		readings = append(readings, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}

	return &ReadingList{
		Readings: readings,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}

// RecentFrames returns the newest camera frame records.
func (r *SQLiteRepository) RecentFrames(ctx context.Context, limit int) ([]Frame, error) {
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, site_id, received_at, size_bytes, names_json
		 FROM camera_frames
		 ORDER BY received_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying camera frames: %w", err)
	}
	defer rows.Close()

	frames := make([]Frame, 0, limit)
	for rows.Next() {
		var f Frame
		var receivedAt, namesJSON string
		if err := rows.Scan(&f.ID, &f.SiteID, &receivedAt, &f.SizeBytes, &namesJSON); err != nil {
			return nil, fmt.Errorf("scanning camera frame: %w", err)
		}
		if f.ReceivedAt, err = parseTime(receivedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(namesJSON), &f.Names); err != nil {
			return nil, fmt.Errorf("unmarshalling frame names: %w", err)
		}
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating camera frames: %w", err)
	}
	return frames, nil
}

// Prune deletes readings and frames older than now-olderThan and returns
// the number of rows removed.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("history: olderThan must be positive")
	}
	cutoff := formatTime(time.Now().Add(-olderThan))

	var removed int64
	for _, stmt := range []string{
		"DELETE FROM readings WHERE recorded_at < ?",
		"DELETE FROM camera_frames WHERE received_at < ?",
	} {
		result, err := r.db.ExecContext(ctx, stmt, cutoff)
		if err != nil {
			return removed, fmt.Errorf("pruning history: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return removed, fmt.Errorf("checking rows affected: %w", err)
		}
		removed += n
	}
	return removed, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err == nil {
		return t, nil
	}
	if t, fallbackErr := time.Parse(time.RFC3339Nano, value); fallbackErr == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", value, err)
}
