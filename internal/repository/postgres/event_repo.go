package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = "id, title, description, people, date, address, longitude, latitude, tags, images, created_at"

func (r *eventRepository) Insert(ctx context.Context, e *domain.Event) error {
	if !e.Location.HasValidCoordinates() {
		return fmt.Errorf("%w: coordinates must be a finite [longitude, latitude] pair", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Location.Address) == "" || e.Date.IsZero() {
		return fmt.Errorf("%w: title, date and address are required", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO events (title, description, people, date, address, longitude, latitude, tags, images, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title,
		e.Description,
		pq.Array(e.People),
		e.Date,
		e.Location.Address,
		e.Location.Coordinates[0],
		e.Location.Coordinates[1],
		pq.Array(e.Tags),
		pq.Array(e.Images),
		e.CreatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) Find(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	query := "SELECT " + eventColumns + " FROM events"
	var conds []string
	var args []interface{}
	n := 1

	if f.Search != "" {
		conds = append(conds, fmt.Sprintf(`(
			title ILIKE $%d
			OR description ILIKE $%d
			OR address ILIKE $%d
			OR EXISTS (SELECT 1 FROM unnest(people) AS p WHERE p ILIKE $%d)
			OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE $%d)
		)`, n, n, n, n, n))
		args = append(args, "%"+f.Search+"%")
		n++
	}
	if f.Day != nil {
		start := f.Day.UTC().Truncate(24 * time.Hour)
		end := start.AddDate(0, 0, 1)
		conds = append(conds, fmt.Sprintf("date >= $%d AND date < $%d", n, n+1))
		args = append(args, start, end)
		n += 2
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var descNull sql.NullString
		var lon, lat float64
		var people, tags, images pq.StringArray
		if err := rows.Scan(&e.ID, &e.Title, &descNull, &people, &e.Date, &e.Location.Address, &lon, &lat, &tags, &images, &e.CreatedAt); err != nil {
			return nil, err
		}
		if descNull.Valid {
			e.Description = descNull.String
		}
		e.Location.Coordinates = []float64{lon, lat}
		e.People = emptyIfNil(people)
		e.Tags = emptyIfNil(tags)
		e.Images = emptyIfNil(images)
		events = append(events, e)
	}
	return events, rows.Err()
}

func emptyIfNil(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}
