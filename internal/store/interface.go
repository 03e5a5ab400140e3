// store/interface.go - Session store interface for testability
package store

import (
	"context"

	"github.com/studioleflow/portal/internal/models"
)

// Store keeps per-visitor portal state. Scope is the visitor id.
type Store interface {
	// Maintenance gate
	MarkBypassed(ctx context.Context, scope, username string) error
	IsBypassed(ctx context.Context, scope string) (bool, error)

	// Flash notifications, returned oldest first and removed on read
	PushToast(ctx context.Context, scope string, t models.Toast) error
	PopToasts(ctx context.Context, scope string) ([]models.Toast, error)

	Close() error
}
