package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"procurement-console/internal/app"
	"procurement-console/internal/core"
	"procurement-console/internal/metrics"

	"github.com/go-chi/chi/v5"
)

const (
	jsonBodyLimit      = 1 << 20  // 1 MB
	multipartBodyLimit = 10 << 20 // 10 MB, room for one attachment
)

// Idempotency guards POST /purchase-orders against client retries.
type Idempotency interface {
	Claim(ctx context.Context, key string) (int, error)
	Complete(ctx context.Context, key string, poID int) error
	Release(ctx context.Context, key string) error
}

// Config carries the optional collaborators of the HTTP adapter.
type Config struct {
	AllowedOrigins string
	JWTSecret      string
	UploadDir      string // attachments are stored here; defaults to os.TempDir()
	Idempotency    Idempotency
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	uploadDir string
	idem      Idempotency
	log       *slog.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, cfg Config) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: cfg.JWTSecret,
		uploadDir: cfg.UploadDir,
		idem:      cfg.Idempotency,
		log:       cfg.Logger,
	}
	if h.uploadDir == "" {
		h.uploadDir = os.TempDir()
	}
	if h.log == nil {
		h.log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.log))
	if cfg.Metrics != nil {
		r.Use(Instrument(cfg.Metrics))
	}
	r.Use(Recoverer(h.log))
	r.Use(CORS(cfg.AllowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/healthz", h.health)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Get("/", h.listPurchaseOrders)
			r.Get("/next-po-number", h.nextPONumber)
			r.Get("/export", h.exportPurchaseOrders)
			r.With(RequestBodyLimit(multipartBodyLimit)).Post("/", h.createPurchaseOrder)
			r.Get("/{id}", h.getPurchaseOrder)
			r.With(RequestBodyLimit(multipartBodyLimit)).Put("/{id}", h.updatePurchaseOrder)
			r.Delete("/{id}", h.deletePurchaseOrder)
			r.With(RequestBodyLimit(jsonBodyLimit)).Patch("/{id}/status", h.changeStatus)
			r.Get("/{id}/affordances", h.affordances)
		})

		r.Get("/get-pending-po-demand", h.pendingDemands)
		r.Get("/vendors", h.listVendors)
		r.Get("/locations", h.listLocations)
		r.Get("/units", h.listUnits)
		r.Get("/items", h.listItems)
		r.Get("/users", h.listUsers)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid purchase order ID", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryParams reads optional query values, collecting a field error for every
// malformed integer.
type queryParams struct {
	q    url.Values
	errs core.ValidationErrors
}

// str returns the trimmed value of key; the "all" sentinel reads as empty.
func (p *queryParams) str(key string) string {
	v := strings.TrimSpace(p.q.Get(key))
	if v == "all" {
		return ""
	}
	return v
}

func (p *queryParams) integer(key string) int {
	v := p.str(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		p.errs.Add(key, "must be a non-negative integer")
		return 0
	}
	return n
}
