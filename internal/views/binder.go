// views/binder.go - Maps resource keys to typed, derived view state
package views

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/querycache"
)

// Source is the read side of the backend
type Source interface {
	Overview(ctx context.Context, s api.Session) (models.DashboardOverview, error)
	Projects(ctx context.Context, s api.Session) ([]models.Project, error)
	Contracts(ctx context.Context, s api.Session) ([]models.Contract, error)
	Invoices(ctx context.Context, s api.Session) ([]models.Invoice, error)
	Songs(ctx context.Context, s api.Session) ([]models.UserSong, error)
	Conversations(ctx context.Context, s api.Session) ([]models.Conversation, error)
	Conversation(ctx context.Context, s api.Session, userID int64) ([]models.Message, error)
}

// Binder reads resources for one request
type Binder struct {
	Cache    *querycache.Cache
	Src      Source
	Wait     time.Duration
	Now      func() time.Time
	Payments bool
}

// Request scopes the binder to one visitor
type Request struct {
	Scope   string
	Session api.Session
}

func (r Request) key(path string) querycache.Key {
	return querycache.Key{Scope: r.Scope, Path: path}
}

func (b *Binder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Binder) Overview(ctx context.Context, r Request) querycache.Result[OverviewCard] {
	res := querycache.Load(ctx, b.Cache, r.key(api.KeyOverview), b.Wait,
		func(ctx context.Context) (models.DashboardOverview, error) { return b.Src.Overview(ctx, r.Session) })
	return querycache.Map(res, NewOverviewCard)
}

func (b *Binder) Projects(ctx context.Context, r Request) querycache.Result[[]ProjectRow] {
	res := querycache.LoadList(ctx, b.Cache, r.key(api.KeyProjects), b.Wait,
		func(ctx context.Context) ([]models.Project, error) { return b.Src.Projects(ctx, r.Session) })
	return querycache.Map(res, ProjectRows)
}

func (b *Binder) Contracts(ctx context.Context, r Request) querycache.Result[[]ContractRow] {
	res := querycache.LoadList(ctx, b.Cache, r.key(api.KeyContracts), b.Wait,
		func(ctx context.Context) ([]models.Contract, error) { return b.Src.Contracts(ctx, r.Session) })
	return querycache.Map(res, ContractRows)
}

func (b *Binder) Invoices(ctx context.Context, r Request) querycache.Result[[]InvoiceRow] {
	res := querycache.LoadList(ctx, b.Cache, r.key(api.KeyInvoices), b.Wait,
		func(ctx context.Context) ([]models.Invoice, error) { return b.Src.Invoices(ctx, r.Session) })
	now := b.now()
	return querycache.Map(res, func(inv []models.Invoice) []InvoiceRow {
		return InvoiceRows(inv, now, b.Payments)
	})
}

// Invoice finds one invoice by id in the visitor's list
func (b *Binder) Invoice(ctx context.Context, r Request, id int64) (*models.Invoice, error) {
	res := querycache.LoadList(ctx, b.Cache, r.key(api.KeyInvoices), b.Wait,
		func(ctx context.Context) ([]models.Invoice, error) { return b.Src.Invoices(ctx, r.Session) })
	if res.IsFailed() {
		return nil, res.Err
	}
	for _, inv := range res.Data {
		if inv.ID == id {
			return &inv, nil
		}
	}
	return nil, nil
}

// Dashboard loads all four sections side by side so the render waits once.
// A section that fails still renders; only an abandoned request is an error.
func (b *Binder) Dashboard(ctx context.Context, r Request, user models.User) (Dashboard, error) {
	d := Dashboard{User: user}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { d.Overview = b.Overview(gctx, r); return gctx.Err() })
	g.Go(func() error { d.Projects = b.Projects(gctx, r); return gctx.Err() })
	g.Go(func() error { d.Contracts = b.Contracts(gctx, r); return gctx.Err() })
	g.Go(func() error { d.Invoices = b.Invoices(gctx, r); return gctx.Err() })
	if err := g.Wait(); err != nil {
		return d, fmt.Errorf("load dashboard: %w", err)
	}
	return d, nil
}
