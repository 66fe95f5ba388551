package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/delivery/http/helpers"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/domain"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/geosuggest"
)

type GeocodeController struct {
	Logger   *slog.Logger
	Geocoder domain.Geocoder
}

func NewGeocodeController(logger *slog.Logger, geocoder domain.Geocoder) *GeocodeController {
	return &GeocodeController{
		Logger:   logger,
		Geocoder: geocoder,
	}
}

// Suggest godoc
// @Summary Address autocomplete candidates
// @Description Returns up to 5 geocoding candidates for the query, ranked by upstream relevance. Queries shorter than 3 characters return an empty list without calling the upstream service.
// @Tags geocode
// @Produce json
// @Param q query string true "Free-text address query"
// @Success 200 {array} domain.Place
// @Failure 500 {object} helpers.ErrorResponse
// @Router /api/geocode [get]
func (c *GeocodeController) Suggest(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(q) < geosuggest.MinQueryLen {
		helpers.WriteJSON(w, http.StatusOK, []domain.Place{})
		return
	}

	places, err := c.Geocoder.Resolve(r.Context(), q, geosuggest.SuggestLimit)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "geocode suggest failed", "query", q, "err", err)
		helpers.WriteErrorDetail(w, http.StatusInternalServerError, "address search failed", "geocoder unavailable")
		return
	}
	if places == nil {
		places = []domain.Place{}
	}
	helpers.WriteJSON(w, http.StatusOK, places)
}
