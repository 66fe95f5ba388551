// Package geosuggest drives interactive address autocomplete against a
// Geocoder. It debounces the query stream and guarantees that results for a
// superseded query are never delivered: the newest query cancels any earlier
// in-flight request.
package geosuggest

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/domain"
)

// Defaults for interactive use.
const (
	DefaultQuietWindow = 500 * time.Millisecond
	MinQueryLen        = 3
	SuggestLimit       = 5
)

// Suggestion carries the candidates for the query that produced them, so a
// consumer can tell which input the places belong to.
type Suggestion struct {
	Query  string
	Places []domain.Place
	Err    error
}

// Suggester coalesces a stream of typed queries into at most one upstream
// geocoder call per quiet window. Queries shorter than MinQueryLen runes are
// dropped and also clear any pending request.
type Suggester struct {
	geocoder domain.Geocoder
	quiet    time.Duration

	queries chan string
	results chan Suggestion
	done    chan struct{}
}

// New starts a Suggester with the given quiet window (0 means
// DefaultQuietWindow). Close must be called to release its goroutine.
func New(geocoder domain.Geocoder, quiet time.Duration) *Suggester {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	s := &Suggester{
		geocoder: geocoder,
		quiet:    quiet,
		queries:  make(chan string, 16),
		results:  make(chan Suggestion, 16),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

// Query submits the current input text. Calls never block; if the internal
// buffer is full the query is dropped, which is safe because a newer call
// always follows while the user is typing.
func (s *Suggester) Query(q string) {
	select {
	case s.queries <- q:
	case <-s.done:
	default:
	}
}

// Results delivers suggestions for queries that survived the quiet window
// and were not superseded.
func (s *Suggester) Results() <-chan Suggestion {
	return s.results
}

// Close stops the Suggester and cancels any in-flight request.
func (s *Suggester) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Suggester) loop() {
	var (
		pending string
		quiet   <-chan time.Time
		cancel  context.CancelFunc
	)
	defer func() {
		if cancel != nil {
			cancel()
		}
	}()
	for {
		select {
		case q := <-s.queries:
			q = strings.TrimSpace(q)
			if utf8.RuneCountInString(q) < MinQueryLen {
				pending = ""
				quiet = nil
				continue
			}
			pending = q
			quiet = time.After(s.quiet)
		case <-quiet:
			quiet = nil
			if cancel != nil {
				cancel()
			}
			ctx, c := context.WithCancel(context.Background())
			cancel = c
			go s.fetch(ctx, pending)
		case <-s.done:
			return
		}
	}
}

func (s *Suggester) fetch(ctx context.Context, query string) {
	places, err := s.geocoder.Resolve(ctx, query, SuggestLimit)
	if ctx.Err() != nil {
		// Superseded or shut down; discard whatever arrived.
		return
	}
	select {
	case s.results <- Suggestion{Query: query, Places: places, Err: err}:
	case <-ctx.Done():
	case <-s.done:
	}
}
