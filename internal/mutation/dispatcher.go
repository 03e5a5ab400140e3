// Package mutation runs write operations against the backend and applies
// their side effects: cache invalidation and visitor notifications.
package mutation

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/metrics"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/querycache"
	"github.com/studioleflow/portal/internal/validation"
)

// Notifier queues a toast for a visitor
type Notifier interface {
	PushToast(ctx context.Context, scope string, t models.Toast) error
}

// Mutation describes one write intent
type Mutation[In any] struct {
	Name string
	// Validate runs before any network call; nil means no schema
	Validate func(In) validation.FieldErrors
	Do       func(ctx context.Context, in In) error
	// Invalidates lists resource keys refetched after success
	Invalidates []string
	Success     *models.Toast
	Failure     func(err error) models.Toast
}

// Outcome tells the handler how to render the result
type Outcome struct {
	OK          bool
	FieldErrors validation.FieldErrors
	Toast       *models.Toast
	Err         error
}

// Invalid reports a client-side rejection (nothing was sent)
func (o Outcome) Invalid() bool { return !o.OK && o.Err == nil && len(o.FieldErrors) > 0 }

type Dispatcher struct {
	cache *querycache.Cache
	notes Notifier
	log   *zap.Logger
}

func NewDispatcher(cache *querycache.Cache, notes Notifier, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{cache: cache, notes: notes, log: log}
}

// Run validates, performs and settles one mutation for the visitor scope.
// No retry and no optimistic update: on success only the invalidated keys change.
func Run[In any](ctx context.Context, d *Dispatcher, scope string, m Mutation[In], in In) Outcome {
	log := d.log.With(zap.String("mutation", m.Name))

	if m.Validate != nil {
		if errs := m.Validate(in); len(errs) > 0 {
			metrics.MutationResults.WithLabelValues(m.Name, "invalid").Inc()
			return Outcome{FieldErrors: errs}
		}
	}

	if err := m.Do(ctx, in); err != nil {
		metrics.MutationResults.WithLabelValues(m.Name, "rejected").Inc()
		log.Info("mutation rejected", zap.Error(err))

		out := Outcome{Err: err}
		if apiErr, ok := api.AsError(err); ok && apiErr.Kind == api.KindValidation {
			out.FieldErrors = validation.FieldErrors(apiErr.Fields)
		}
		if m.Failure != nil {
			t := m.Failure(err)
			out.Toast = d.notify(ctx, scope, t)
		}
		return out
	}

	for _, path := range m.Invalidates {
		d.cache.Invalidate(querycache.Key{Scope: scope, Path: path})
	}
	metrics.MutationResults.WithLabelValues(m.Name, "ok").Inc()

	out := Outcome{OK: true}
	if m.Success != nil {
		out.Toast = d.notify(ctx, scope, *m.Success)
	}
	return out
}

func (d *Dispatcher) notify(ctx context.Context, scope string, t models.Toast) *models.Toast {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Variant == "" {
		t.Variant = models.ToastDefault
	}
	if d.notes != nil {
		if err := d.notes.PushToast(ctx, scope, t); err != nil {
			d.log.Warn("queue toast", zap.Error(err))
		}
	}
	return &t
}
