package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/domain"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/facets"
)

// Accepted formats for the date form field and the date query parameter.
var dateFormats = []string{time.RFC3339, "2006-01-02"}

type eventService struct {
	repo           domain.EventRepository
	geocoder       domain.Geocoder
	images         domain.ImageStore
	contextTimeout time.Duration
}

func NewEventService(repo domain.EventRepository, geocoder domain.Geocoder, images domain.ImageStore, timeout time.Duration) domain.EventService {
	return &eventService{
		repo:           repo,
		geocoder:       geocoder,
		images:         images,
		contextTimeout: timeout,
	}
}

// CreateEvent runs the ingestion pipeline: validate, parse list fields,
// geocode, persist uploads, insert. Any failure aborts the whole creation;
// files written for a failed request are removed again.
func (s *eventService) CreateEvent(ctx context.Context, input domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title := strings.TrimSpace(input.Title)
	address := strings.TrimSpace(input.Address)

	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	date, dateOK := parseDate(input.Date)
	if !dateOK {
		missing = append(missing, "date")
	}
	if address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing}
	}

	if len(input.Images) > domain.MaxImagesPerEvent {
		return nil, &domain.UploadRejectedError{
			Reason: fmt.Sprintf("at most %d images per event", domain.MaxImagesPerEvent),
		}
	}

	people := splitList(input.People)
	tags := splitList(input.Tags)

	// Geocode before touching the disk so a failed resolution never leaves
	// orphaned files behind.
	places, err := s.geocoder.Resolve(ctx, address, 1)
	if err != nil {
		return nil, &domain.GeocodingFailedError{Query: address, Err: err}
	}
	if len(places) == 0 {
		return nil, &domain.GeocodingFailedError{Query: address}
	}
	place := places[0]

	imagePaths := []string{}
	for _, up := range input.Images {
		path, err := s.images.Save(ctx, up)
		if err != nil {
			s.removeAll(ctx, imagePaths)
			return nil, err
		}
		imagePaths = append(imagePaths, path)
	}

	loc := domain.Location{
		Address:     address,
		Coordinates: []float64{place.Lon, place.Lat},
	}
	event := domain.NewEvent(title, strings.TrimSpace(input.Description), people, date, loc, tags, imagePaths, time.Now().UTC())

	if err := s.repo.Insert(ctx, event); err != nil {
		s.removeAll(ctx, imagePaths)
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// ListEvents applies search and day filtering in the store, then exact
// person/tag selection in memory.
func (s *eventService) ListEvents(ctx context.Context, q domain.EventQuery) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.repo.Find(ctx, domain.EventFilter{Search: q.Search, Day: q.Day})
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	if q.Person != "" || q.Tag != "" {
		events = facets.Apply(events, facets.Filter{Person: q.Person, Tag: q.Tag})
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// Facets derives the distinct people, tags, and days over the full event set.
func (s *eventService) Facets(ctx context.Context) (*domain.EventFacets, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.repo.Find(ctx, domain.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	return &domain.EventFacets{
		People: facets.UniquePeople(events),
		Tags:   facets.UniqueTags(events),
		Dates:  facets.UniqueDates(events),
	}, nil
}

func (s *eventService) removeAll(ctx context.Context, paths []string) {
	for _, p := range paths {
		// Best effort; a leftover file is preferable to masking the original
		// failure.
		_ = s.images.Remove(ctx, p)
	}
}

// splitList turns comma-separated text into trimmed entries, dropping
// empties, preserving order, and keeping duplicates.
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDay interprets raw as a calendar day for read-path filtering. The
// second return is false for anything unparsable, which callers treat as
// "no date filter" rather than an error.
func ParseDay(raw string) (time.Time, bool) {
	t, ok := parseDate(raw)
	if !ok {
		return time.Time{}, false
	}
	return facets.Day(t), true
}
