package httphandler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/niksmo/storefront/internal/core/port"
)

// GET / text/html (200 OK, 500 Internal Server Error if the page template is broken)
// GET /healthz (200 OK)

type StorefrontHandler struct {
	fetcher port.ProductsFetcher
	newPage port.PageFactory
}

func NewRouter(fetcher port.ProductsFetcher, newPage port.PageFactory) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LogRequests)

	RegisterStorefront(r, fetcher, newPage)
	r.Get("/healthz", Health)
	return r
}

func RegisterStorefront(
	r chi.Router, fetcher port.ProductsFetcher, newPage port.PageFactory,
) {
	h := StorefrontHandler{fetcher, newPage}
	r.Get("/", h.GetIndex)
}

func (h StorefrontHandler) GetIndex(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.GetIndex"
	log := slog.With("op", op, "requestID", middleware.GetReqID(r.Context()))

	page, err := h.newPage()
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		log.Error("failed to create page", "err", err)
		return
	}

	h.fetcher.FetchProducts(r.Context(), page)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		log.Error("failed to render page", "err", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
