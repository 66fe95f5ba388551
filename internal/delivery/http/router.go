package http

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes.
// uploadDir is served read-only under /uploads/; staticDir holds the SPA
// build and backs the catch-all route.
func NewRouter(eventController *controllers.EventController, geocodeController *controllers.GeocodeController, uploadDir, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	// API Routes
	mux.HandleFunc("POST /api/events", eventController.Create)
	mux.HandleFunc("GET /api/events", eventController.List)
	mux.HandleFunc("GET /api/events/facets", eventController.Facets)
	mux.HandleFunc("GET /api/geocode", geocodeController.Suggest)

	// Uploaded images
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	// Metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Everything else serves the single-page app.
	mux.Handle("/", SPAHandler(staticDir))

	return mux
}

// SPAHandler serves files from staticDir when they exist and falls back to
// index.html for any other GET so client-side routes resolve after a reload.
func SPAHandler(staticDir string) http.Handler {
	fs := http.FileServer(http.Dir(staticDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		path := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	})
}
