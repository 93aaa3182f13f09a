package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SurakshaKumari/gt-3D-backend/internal/metrics"
	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
	"github.com/SurakshaKumari/gt-3D-backend/internal/store"
)

const tracerName = "github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"

// Config holds Reconciler configuration.
type Config struct {
	// StoreTimeout bounds each store call. Zero means no timeout.
	StoreTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{}
}

// Reconciler validates and persists scene mutations.
type Reconciler struct {
	store   store.Gateway
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	now       func() time.Time
	newID     func() string
	newChatID func() string
}

// New creates a Reconciler. m may be nil.
func New(gw store.Gateway, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		store:     gw,
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
		newID:     uuid.NewString,
		newChatID: newV7,
	}
}

// newV7 returns a time-ordered ID, falling back to a random one.
func newV7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// TransformUpdate replaces the project's transform wholesale.
func (r *Reconciler) TransformUpdate(ctx context.Context, projectID string, in TransformInput, originatorID string) (Result, error) {
	state, err := validateTransform(projectID, in)
	if err != nil {
		return r.reject(KindTransformUpdate, projectID, originatorID, err)
	}

	err = r.persist(ctx, KindTransformUpdate, projectID, originatorID, func(ctx context.Context) error {
		_, err := r.store.Update(ctx, projectID, model.ProjectPatch{TransformState: &state})
		return err
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Event: EventTransformUpdated, Data: state, ExcludeOriginator: true}, nil
}

// AddAnnotation appends an annotation to the project.
func (r *Reconciler) AddAnnotation(ctx context.Context, projectID string, in AnnotationInput, originatorID string) (Result, error) {
	if err := requireProject(projectID); err != nil {
		return r.reject(KindAnnotationAdd, projectID, originatorID, err)
	}
	if in.Position == nil {
		return r.reject(KindAnnotationAdd, projectID, originatorID, invalid("position", "is required"))
	}
	if strings.TrimSpace(in.Text) == "" {
		return r.reject(KindAnnotationAdd, projectID, originatorID, invalid("text", "is required"))
	}

	a := model.Annotation{
		ID:         in.ID,
		Position:   *in.Position,
		Text:       in.Text,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
	}
	if a.ID == "" {
		a.ID = r.newID()
	}
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		a.CreatedAt = in.CreatedAt.UTC()
	} else {
		a.CreatedAt = r.now().UTC()
	}

	err := r.persist(ctx, KindAnnotationAdd, projectID, originatorID, func(ctx context.Context) error {
		return r.store.AppendToList(ctx, projectID, model.FieldAnnotations, a)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Event: EventAnnotationAdded, Data: a, ExcludeOriginator: true}, nil
}

// PostChat appends a chat message with a server-assigned ID and timestamp.
// The broadcast includes the originator so every member sees the canonical
// message.
func (r *Reconciler) PostChat(ctx context.Context, projectID string, in ChatInput, originatorID string) (Result, error) {
	if err := requireProject(projectID); err != nil {
		return r.reject(KindChatPost, projectID, originatorID, err)
	}
	if strings.TrimSpace(in.Text) == "" {
		return r.reject(KindChatPost, projectID, originatorID, invalid("text", "is required"))
	}
	if in.AuthorID == "" {
		return r.reject(KindChatPost, projectID, originatorID, invalid("authorId", "is required"))
	}

	msg := model.ChatMessage{
		ID:         r.newChatID(),
		Text:       in.Text,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		Timestamp:  r.now().UTC(),
	}
	if msg.AuthorName == "" {
		msg.AuthorName = DefaultAuthorName
	}

	err := r.persist(ctx, KindChatPost, projectID, originatorID, func(ctx context.Context) error {
		return r.store.AppendToList(ctx, projectID, model.FieldChat, msg)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Event: EventChatPosted, Data: msg}, nil
}

// ClearChat empties the project's chat log.
func (r *Reconciler) ClearChat(ctx context.Context, projectID string, originatorID string) (Result, error) {
	if err := requireProject(projectID); err != nil {
		return r.reject(KindChatClear, projectID, originatorID, err)
	}

	err := r.persist(ctx, KindChatClear, projectID, originatorID, func(ctx context.Context) error {
		return r.store.ClearList(ctx, projectID, model.FieldChat)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Event: EventChatCleared, Data: ChatCleared{ProjectID: projectID}}, nil
}

// DeleteChat removes one chat message by ID.
func (r *Reconciler) DeleteChat(ctx context.Context, projectID, messageID string, originatorID string) (Result, error) {
	if err := requireProject(projectID); err != nil {
		return r.reject(KindChatDelete, projectID, originatorID, err)
	}
	if messageID == "" {
		return r.reject(KindChatDelete, projectID, originatorID, invalid("messageId", "is required"))
	}

	err := r.persist(ctx, KindChatDelete, projectID, originatorID, func(ctx context.Context) error {
		return r.store.RemoveFromList(ctx, projectID, model.FieldChat, messageID)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Event: EventChatDeleted,
		Data:  ChatDeleted{ProjectID: projectID, MessageID: messageID},
	}, nil
}

func (r *Reconciler) reject(kind Kind, projectID, originatorID string, err error) (Result, error) {
	r.metrics.Mutation(string(kind), CodeValidation, 0)
	r.logger.Debug("mutation rejected",
		"kind", kind,
		"project_id", projectID,
		"participant", originatorID,
		"error", err,
	)
	return Result{}, err
}

// persist runs apply under a span on a context that survives cancellation
// of ctx.
func (r *Reconciler) persist(ctx context.Context, kind Kind, projectID, originatorID string, apply func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, "reconcile."+string(kind),
		trace.WithAttributes(
			attribute.String("scenesync.project_id", projectID),
			attribute.String("scenesync.participant", originatorID),
		),
	)
	defer span.End()

	storeCtx := context.WithoutCancel(ctx)
	if r.cfg.StoreTimeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(storeCtx, r.cfg.StoreTimeout)
		defer cancel()
	}

	start := time.Now()
	err := apply(storeCtx)
	elapsed := time.Since(start)

	// A store timeout is a backend failure, not a caller error.
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, store.ErrUnavailable) {
		err = errors.Join(store.ErrUnavailable, err)
	}

	code := Code(err)
	r.metrics.Mutation(string(kind), code, elapsed)
	span.SetAttributes(attribute.String("scenesync.result", code))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if code == CodeNotFound {
			r.logger.Debug("mutation target missing",
				"kind", kind,
				"project_id", projectID,
				"participant", originatorID,
			)
		} else {
			r.logger.Error("mutation persist failed",
				"kind", kind,
				"project_id", projectID,
				"participant", originatorID,
				"duration", elapsed,
				"error", err,
			)
		}
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func requireProject(projectID string) error {
	if projectID == "" {
		return invalid("projectId", "is required")
	}
	return nil
}

func validateTransform(projectID string, in TransformInput) (model.TransformState, error) {
	if err := requireProject(projectID); err != nil {
		return model.TransformState{}, err
	}
	switch {
	case in.Position == nil:
		return model.TransformState{}, invalid("position", "is required")
	case in.Rotation == nil:
		return model.TransformState{}, invalid("rotation", "is required")
	case in.Scale == nil:
		return model.TransformState{}, invalid("scale", "is required")
	}

	return NormalizeTransform(model.TransformState{
		Position: *in.Position,
		Rotation: *in.Rotation,
		Scale:    *in.Scale,
		Mode:     in.Mode,
	})
}

// NormalizeTransform defaults an empty mode to translate and rejects unknown
// modes. Every transform write goes through it, whatever the transport.
func NormalizeTransform(state model.TransformState) (model.TransformState, error) {
	if state.Mode == "" {
		state.Mode = model.ModeTranslate
	}
	if !state.Mode.Valid() {
		return model.TransformState{}, invalid("mode", "must be translate, rotate or scale")
	}
	return state, nil
}
