package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	events  []*domain.Event
	nextID  int
	insErr  error
	findErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{nextID: 1}
}

func (f *fakeEventRepo) Insert(ctx context.Context, e *domain.Event) error {
	if f.insErr != nil {
		return f.insErr
	}
	if !e.Location.HasValidCoordinates() {
		return fmt.Errorf("%w: bad coordinates", domain.ErrInvalidInput)
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEventRepo) Find(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]*domain.Event, len(f.events))
	copy(out, f.events)
	// Date DESC to match the real store.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Date.After(out[i].Date) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// fakeGeocoder serves canned places and records the queries it saw.
type fakeGeocoder struct {
	places  []domain.Place
	err     error
	queries []string
	limits  []int
}

func (f *fakeGeocoder) Resolve(ctx context.Context, query string, limit int) ([]domain.Place, error) {
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.places, nil
}

// fakeImageStore records saves and removals.
type fakeImageStore struct {
	saved   []string
	removed []string
	failOn  int // 1-based index of the Save call that fails; 0 means never
	saveErr error
	calls   int
}

func (f *fakeImageStore) Save(ctx context.Context, up domain.ImageUpload) (string, error) {
	f.calls++
	if f.failOn != 0 && f.calls >= f.failOn {
		return "", f.saveErr
	}
	name := fmt.Sprintf("img-%d-%s", f.calls, up.Filename)
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeImageStore) Remove(ctx context.Context, relPath string) error {
	f.removed = append(f.removed, relPath)
	return nil
}

func upload(name string) domain.ImageUpload {
	return domain.ImageUpload{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        100,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("data")), nil
		},
	}
}

func newService(repo *fakeEventRepo, geo *fakeGeocoder, imgs *fakeImageStore) domain.EventService {
	return NewEventService(repo, geo, imgs, 5*time.Second)
}

func validInput() domain.CreateEventInput {
	return domain.CreateEventInput{
		Title:   "Standup",
		Date:    "2024-07-15",
		Address: "1 Infinite Loop, Cupertino",
	}
}

func TestCreateEvent_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CreateEventInput)
		fields []string
	}{
		{"missing title", func(in *domain.CreateEventInput) { in.Title = "  " }, []string{"title"}},
		{"missing date", func(in *domain.CreateEventInput) { in.Date = "" }, []string{"date"}},
		{"malformed date", func(in *domain.CreateEventInput) { in.Date = "not-a-date" }, []string{"date"}},
		{"missing address", func(in *domain.CreateEventInput) { in.Address = "" }, []string{"address"}},
		{"everything missing", func(in *domain.CreateEventInput) {
			in.Title, in.Date, in.Address = "", "", ""
		}, []string{"title", "date", "address"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
			svc := newService(repo, geo, &fakeImageStore{})

			in := validInput()
			tt.mutate(&in)
			_, err := svc.CreateEvent(context.Background(), in)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.fields, ve.Fields)
			assert.Empty(t, repo.events, "no store write on validation failure")
			assert.Empty(t, geo.queries, "geocoder must not be called")
		})
	}
}

func TestCreateEvent_GeocoderZeroCandidates(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{}}
	imgs := &fakeImageStore{}
	svc := newService(repo, geo, imgs)

	_, err := svc.CreateEvent(context.Background(), validInput())

	var ge *domain.GeocodingFailedError
	require.ErrorAs(t, err, &ge)
	assert.NoError(t, ge.Err)
	assert.Empty(t, repo.events, "no store write on geocoding failure")
	assert.Empty(t, imgs.saved, "no files written on geocoding failure")
}

func TestCreateEvent_GeocoderUnreachable(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{err: domain.ErrGeocoderUnreachable}
	svc := newService(repo, geo, &fakeImageStore{})

	_, err := svc.CreateEvent(context.Background(), validInput())

	var ge *domain.GeocodingFailedError
	require.ErrorAs(t, err, &ge)
	assert.ErrorIs(t, err, domain.ErrGeocoderUnreachable)
	assert.Empty(t, repo.events)
}

func TestCreateEvent_StoresLonLatOrder(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{DisplayName: "Cupertino", Lat: 37.33, Lon: -122.03}}}
	svc := newService(repo, geo, &fakeImageStore{})

	event, err := svc.CreateEvent(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, []float64{-122.03, 37.33}, event.Location.Coordinates)
	assert.Equal(t, "1 Infinite Loop, Cupertino", event.Location.Address, "address preserved verbatim")
	assert.Equal(t, []int{1}, geo.limits, "authoritative resolution uses limit 1")
	require.Len(t, repo.events, 1)
	assert.Equal(t, "ev-1", event.ID)
}

func TestCreateEvent_ParsesPeopleAndTags(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
	svc := newService(repo, geo, &fakeImageStore{})

	in := validInput()
	in.People = " Alice , Bob ,, Alice ,"
	in.Tags = "work,  ,fun"
	event, err := svc.CreateEvent(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob", "Alice"}, event.People, "order and duplicates preserved")
	assert.Equal(t, []string{"work", "fun"}, event.Tags)
}

func TestCreateEvent_EmptyListsEncodeAsEmptySlices(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
	svc := newService(repo, geo, &fakeImageStore{})

	event, err := svc.CreateEvent(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotNil(t, event.People)
	assert.NotNil(t, event.Tags)
	assert.NotNil(t, event.Images)
	assert.Empty(t, event.Images)
}

func TestCreateEvent_AcceptsRFC3339Date(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
	svc := newService(repo, geo, &fakeImageStore{})

	in := validInput()
	in.Date = "2024-07-15T10:00:00Z"
	event, err := svc.CreateEvent(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC), event.Date.UTC())
}

func TestCreateEvent_TooManyImages(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
	imgs := &fakeImageStore{}
	svc := newService(repo, geo, imgs)

	in := validInput()
	for i := 0; i < domain.MaxImagesPerEvent+1; i++ {
		in.Images = append(in.Images, upload(fmt.Sprintf("p%d.jpg", i)))
	}
	_, err := svc.CreateEvent(context.Background(), in)

	var ue *domain.UploadRejectedError
	require.ErrorAs(t, err, &ue)
	assert.Empty(t, geo.queries, "rejected before geocoding")
	assert.Empty(t, imgs.saved)
	assert.Empty(t, repo.events)
}

func TestCreateEvent_SavesImagesAndStoresPaths(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
	imgs := &fakeImageStore{}
	svc := newService(repo, geo, imgs)

	in := validInput()
	in.Images = []domain.ImageUpload{upload("a.jpg"), upload("b.png")}
	event, err := svc.CreateEvent(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"img-1-a.jpg", "img-2-b.png"}, event.Images)
}

func TestCreateEvent_UploadFailureRemovesEarlierFiles(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
	imgs := &fakeImageStore{failOn: 2, saveErr: &domain.UploadRejectedError{Filename: "b.exe", Reason: "only image files are accepted"}}
	svc := newService(repo, geo, imgs)

	in := validInput()
	in.Images = []domain.ImageUpload{upload("a.jpg"), upload("b.exe")}
	_, err := svc.CreateEvent(context.Background(), in)

	var ue *domain.UploadRejectedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"img-1-a.jpg"}, imgs.removed, "earlier files cleaned up")
	assert.Empty(t, repo.events)
}

func TestCreateEvent_InsertFailureRemovesFiles(t *testing.T) {
	repo := newFakeEventRepo()
	repo.insErr = errors.New("connection reset")
	geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
	imgs := &fakeImageStore{}
	svc := newService(repo, geo, imgs)

	in := validInput()
	in.Images = []domain.ImageUpload{upload("a.jpg")}
	_, err := svc.CreateEvent(context.Background(), in)

	require.Error(t, err)
	assert.Equal(t, []string{"img-1-a.jpg"}, imgs.removed)
	assert.Empty(t, repo.events)
}

func TestCreateEvent_RoundTripThroughFind(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{Lat: 37.33, Lon: -122.03}}}
	svc := newService(repo, geo, &fakeImageStore{})

	in := validInput()
	in.Description = "daily sync"
	in.People = "Alice,Bob"
	in.Tags = "work"
	created, err := svc.CreateEvent(context.Background(), in)
	require.NoError(t, err)

	listed, err := svc.ListEvents(context.Background(), domain.EventQuery{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created, listed[0])
}

func TestListEvents_PersonAndTagFilters(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
	svc := newService(repo, geo, &fakeImageStore{})

	for _, tc := range []struct{ title, people string }{
		{"one", "Alice,Bob"},
		{"two", "Carol"},
		{"three", "Alice"},
	} {
		in := validInput()
		in.Title = tc.title
		in.People = tc.people
		_, err := svc.CreateEvent(context.Background(), in)
		require.NoError(t, err)
	}

	got, err := svc.ListEvents(context.Background(), domain.EventQuery{Person: "Alice"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.ListEvents(context.Background(), domain.EventQuery{Person: "Dave"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFacets(t *testing.T) {
	repo := newFakeEventRepo()
	geo := &fakeGeocoder{places: []domain.Place{{Lon: 1, Lat: 2}}}
	svc := newService(repo, geo, &fakeImageStore{})

	for _, tc := range []struct{ date, people, tags string }{
		{"2024-07-15", "Bob,Alice", "work"},
		{"2024-07-15T18:00:00Z", "Alice", "fun,work"},
		{"2024-07-16", "", ""},
	} {
		in := validInput()
		in.Date = tc.date
		in.People = tc.people
		in.Tags = tc.tags
		_, err := svc.CreateEvent(context.Background(), in)
		require.NoError(t, err)
	}

	f, err := svc.Facets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, f.People)
	assert.Equal(t, []string{"fun", "work"}, f.Tags)
	require.Len(t, f.Dates, 2)
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), f.Dates[0])
	assert.Equal(t, time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC), f.Dates[1])
}

func TestFacets_FindError(t *testing.T) {
	repo := newFakeEventRepo()
	repo.findErr = errors.New("store down")
	svc := newService(repo, &fakeGeocoder{}, &fakeImageStore{})

	_, err := svc.Facets(context.Background())
	require.Error(t, err)
}

func TestParseDay(t *testing.T) {
	d, ok := ParseDay("2024-07-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDay("2024-07-15T22:45:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), d)

	_, ok = ParseDay("soon")
	assert.False(t, ok)
	_, ok = ParseDay("")
	assert.False(t, ok)
}
