package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SurakshaKumari/gt-3D-backend/internal/assets"
	"github.com/SurakshaKumari/gt-3D-backend/internal/metrics"
	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
	"github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"
	"github.com/SurakshaKumari/gt-3D-backend/internal/relay"
	"github.com/SurakshaKumari/gt-3D-backend/internal/room"
	"github.com/SurakshaKumari/gt-3D-backend/internal/store"
)

// Config configures the Handler.
type Config struct {
	InstanceID     string
	MaxUploadBytes int64
	AllowedOrigins []string // Empty = allow all
}

// Handler serves the project REST surface.
type Handler struct {
	cfg        Config
	store      store.Store
	assets     assets.Store
	reconciler *reconcile.Reconciler
	fanout     *relay.Fanout
	registry   room.Registry
	logger     *slog.Logger
	metrics    *metrics.Metrics

	now func() time.Time
}

// NewHandler creates a Handler. fanout and m may be nil.
func NewHandler(cfg Config, s store.Store, a assets.Store, rec *reconcile.Reconciler, fanout *relay.Fanout, registry room.Registry, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		cfg:        cfg,
		store:      s,
		assets:     a,
		reconciler: rec,
		fanout:     fanout,
		registry:   registry,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// Router returns a chi router with the middleware stack, /healthz and
// /api/projects. Callers may mount more routes on it.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(h.logger, h.metrics))
	r.Use(CORS(h.cfg.AllowedOrigins))

	r.Get("/healthz", h.health)
	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", h.listProjects)
		r.Get("/filter", h.filterProjects)
		r.Post("/", h.createProject)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getProject)
			r.Put("/", h.updateProject)
			r.Delete("/", h.deleteProject)

			r.Post("/model", h.uploadModel)
			r.Get("/model", h.downloadModel)
			r.Post("/annotation", h.addAnnotation)
			r.Put("/scene", h.replaceScene)

			r.Get("/chat", h.getChat)
			r.Post("/chat", h.postChat)
			r.Delete("/chat", h.clearChat)
			r.Delete("/chat/{messageId}", h.deleteChatMessage)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	st := h.registry.Stats()
	health := Health{
		Status:       "ok",
		Instance:     h.cfg.InstanceID,
		Rooms:        st.Rooms,
		Memberships:  st.Memberships,
		Participants: st.Participants,
	}

	if err := h.store.Ping(ctx); err != nil {
		health.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, Response{Success: false, Data: health, Error: err.Error()})
		return
	}
	ok(w, health)
}

// publish forwards a REST mutation to the live room. No participant is
// excluded since the caller is not a room member.
func (h *Handler) publish(ctx context.Context, projectID string, res reconcile.Result) {
	if h.fanout == nil {
		return
	}
	if _, err := h.fanout.Publish(ctx, projectID, res.Event, res.Data, ""); err != nil {
		h.logger.Warn("publish failed",
			"project_id", projectID,
			"event", res.Event,
			"error", err,
		)
	}
}

func (h *Handler) publishTransform(ctx context.Context, p *model.Project) {
	h.publish(ctx, p.ID, reconcile.Result{
		Event: reconcile.EventTransformUpdated,
		Data:  p.TransformState,
	})
}
