package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/delivery/http/helpers"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/domain"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/services"
)

// maxMultipartMemory bounds the in-memory portion of a multipart parse;
// larger file parts spill to temp files.
const maxMultipartMemory = 8 << 20

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a new event
// @Description Submit an event as a multipart form. The address is geocoded before anything is stored; a failed resolution rejects the whole submission. Up to 5 image files are accepted under "images", each at most 5 MB.
// @Tags events
// @Accept mpfd
// @Produce json
// @Param title formData string true "Event title"
// @Param description formData string false "Free-text description"
// @Param people formData string false "Comma-separated names"
// @Param date formData string true "RFC 3339 timestamp or YYYY-MM-DD"
// @Param address formData string true "Free-text address to geocode"
// @Param tags formData string false "Comma-separated tags"
// @Param images formData file false "Up to 5 image files"
// @Success 201 {object} domain.Event
// @Failure 400 {object} helpers.ErrorResponse "validation or upload rejection"
// @Failure 500 {object} helpers.ErrorResponse "geocoding or storage failure"
// @Router /api/events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}

	input := domain.CreateEventInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		People:      r.FormValue("people"),
		Date:        r.FormValue("date"),
		Address:     r.FormValue("address"),
		Tags:        r.FormValue("tags"),
	}
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			fh := fh
			input.Images = append(input.Images, domain.ImageUpload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					f, err := fh.Open()
					return f, err
				},
			})
		}
	}

	event, err := c.Service.CreateEvent(r.Context(), input)
	if err != nil {
		c.writeCreateError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, event)
}

func (c *EventController) writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		helpers.WriteFieldErrors(w, http.StatusBadRequest, "validation failed", ve.Messages())
		return
	}
	var ue *domain.UploadRejectedError
	if errors.As(err, &ue) {
		helpers.WriteError(w, http.StatusBadRequest, ue.Error())
		return
	}
	var ge *domain.GeocodingFailedError
	if errors.As(err, &ge) {
		c.Logger.ErrorContext(r.Context(), "geocoding failed", "path", r.URL.Path, "err", err)
		helpers.WriteErrorDetail(w, http.StatusInternalServerError, "could not geocode address", ge.Error())
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteErrorDetail(w, http.StatusInternalServerError, "failed to create event", "internal error")
}

// List godoc
// @Summary List events
// @Description Returns events sorted by date descending. search matches case-insensitively across title, description, people, tags, and address. date restricts to one calendar day (UTC); malformed dates are ignored. person and tag select exact entries.
// @Tags events
// @Produce json
// @Param search query string false "Free-text substring filter"
// @Param date query string false "Calendar day (RFC 3339 or YYYY-MM-DD)"
// @Param person query string false "Exact person name"
// @Param tag query string false "Exact tag"
// @Success 200 {array} domain.Event
// @Failure 500 {object} helpers.ErrorResponse
// @Router /api/events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	q := domain.EventQuery{
		Search: r.URL.Query().Get("search"),
		Person: r.URL.Query().Get("person"),
		Tag:    r.URL.Query().Get("tag"),
	}
	if day, ok := services.ParseDay(r.URL.Query().Get("date")); ok {
		q.Day = &day
	}

	events, err := c.Service.ListEvents(r.Context(), q)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, events)
}

// Facets godoc
// @Summary Derive filter facets
// @Description Returns the distinct people and tags (sorted lexicographically) and the distinct event days (UTC start of day, ascending) across all events.
// @Tags events
// @Produce json
// @Success 200 {object} domain.EventFacets
// @Failure 500 {object} helpers.ErrorResponse
// @Router /api/events/facets [get]
func (c *EventController) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := c.Service.Facets(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteError(w, http.StatusInternalServerError, "failed to derive facets")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, facets)
}
