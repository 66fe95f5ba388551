package domain

import (
	"context"
	"io"
	"math"
	"time"
)

// Upload limits enforced by the ingestion pipeline and the image store.
const (
	MaxImagesPerEvent = 5
	MaxImageBytes     = 5 << 20
)

// Location pairs the verbatim address a user submitted with the coordinates
// the geocoder resolved it to. Coordinates are [longitude, latitude],
// GeoJSON order.
type Location struct {
	Address     string    `json:"address"`
	Coordinates []float64 `json:"coordinates"`
}

// HasValidCoordinates reports whether Coordinates is exactly [lon, lat] with
// both values finite and within geographic bounds.
func (l Location) HasValidCoordinates() bool {
	if len(l.Coordinates) != 2 {
		return false
	}
	for _, v := range l.Coordinates {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	lon, lat := l.Coordinates[0], l.Coordinates[1]
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// Event is a single entry on the map and timeline.
// swagger:model Event
type Event struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	People      []string  `json:"people"`
	Date        time.Time `json:"date"`
	Location    Location  `json:"location"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the
// repository on insert. Slice fields are normalized to empty slices so the
// JSON encoding never carries null.
func NewEvent(title, description string, people []string, date time.Time, loc Location, tags, images []string, createdAt time.Time) *Event {
	if people == nil {
		people = []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	if images == nil {
		images = []string{}
	}
	return &Event{
		Title:       title,
		Description: description,
		People:      people,
		Date:        date,
		Location:    loc,
		Tags:        tags,
		Images:      images,
		CreatedAt:   createdAt,
	}
}

// EventFilter narrows a repository Find. Search matches case-insensitively
// across title, description, address, people and tags. Day, when set,
// restricts to events within that UTC calendar day.
type EventFilter struct {
	Search string
	Day    *time.Time
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Insert(ctx context.Context, event *Event) error
	Find(ctx context.Context, filter EventFilter) ([]*Event, error)
}

// ImageUpload is a pending uploaded file, decoupled from the multipart
// request that carried it.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// ImageStore persists uploaded images and returns relative reference paths.
type ImageStore interface {
	Save(ctx context.Context, upload ImageUpload) (string, error)
	Remove(ctx context.Context, relPath string) error
}

// CreateEventInput is the raw submission accepted by the ingestion pipeline.
// People and Tags arrive as comma-separated text; Date as RFC 3339 or
// YYYY-MM-DD.
type CreateEventInput struct {
	Title       string
	Description string
	People      string
	Date        string
	Address     string
	Tags        string
	Images      []ImageUpload
}

// EventQuery selects events on the read path. Search and Day are applied by
// the store; Person and Tag are exact matches applied in memory.
type EventQuery struct {
	Search string
	Day    *time.Time
	Person string
	Tag    string
}

// EventFacets holds the distinct filter values derived from the event set.
// swagger:model EventFacets
type EventFacets struct {
	People []string    `json:"people"`
	Tags   []string    `json:"tags"`
	Dates  []time.Time `json:"dates"`
}

// EventService defines the business operations over events.
type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*Event, error)
	ListEvents(ctx context.Context, q EventQuery) ([]*Event, error)
	Facets(ctx context.Context) (*EventFacets, error)
}
