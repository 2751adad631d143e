package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.ProductsFetcher = (*Service)(nil)
var _ port.ProductsDisplayer = (*Service)(nil)

type Service struct {
	catalog port.CatalogFetcher
	prices  port.PriceFormatter
	views   port.CatalogViewProducer
	now     func() time.Time
}

// New returns the storefront service. views may be nil, then runs are not
// reported.
func New(
	catalog port.CatalogFetcher,
	prices port.PriceFormatter,
	views port.CatalogViewProducer,
) Service {
	return Service{
		catalog: catalog,
		prices:  prices,
		views:   views,
		now:     time.Now,
	}
}

// FetchProducts runs one fetch-and-render pass against d.
//
// Any failure replaces the product list with
// [domain.CatalogUnavailableMessage]. The loading indicator is shown
// before the catalog request and hidden on every exit path.
func (s Service) FetchProducts(ctx context.Context, d port.Display) {
	const op = "Service.FetchProducts"
	runID := uuid.NewString()
	log := slog.With("op", op, "runID", runID)

	start := s.now()
	n, err := s.loadProducts(ctx, d)

	view := domain.CatalogView{
		RunID:    runID,
		Outcome:  domain.ViewRendered,
		Products: n,
		Duration: s.now().Sub(start),
		ViewedAt: start,
	}

	if err != nil {
		view.Outcome = domain.ViewFailed
		view.Error = err.Error()
		log.Error("failed to fetch products", "err", err)
	} else {
		log.Info("products displayed", "nProducts", n)
	}

	s.reportView(ctx, view)
}

func (s Service) loadProducts(
	ctx context.Context, d port.Display,
) (int, error) {
	const op = "Service.loadProducts"

	d.ShowLoading()
	defer d.HideLoading()

	if err := ctx.Err(); err != nil {
		d.ShowError(domain.CatalogUnavailableMessage)
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	ps, err := s.catalog.FetchCatalog(ctx)
	if err != nil {
		d.ShowError(domain.CatalogUnavailableMessage)
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.DisplayProducts(d, ps)
	return len(ps), nil
}

// DisplayProducts replaces the product list of d with one card per
// product, keeping the input order.
func (s Service) DisplayProducts(d port.Display, ps []domain.Product) {
	d.Clear()
	for _, p := range ps {
		d.Append(s.toCard(p))
	}
}

func (s Service) toCard(p domain.Product) domain.Card {
	return domain.Card{
		Image:       p.Image,
		Title:       p.Title,
		Price:       s.prices.FormatPrice(p.Price),
		Description: p.Description,
		Action:      domain.AddToCartLabel,
	}
}

func (s Service) reportView(ctx context.Context, v domain.CatalogView) {
	const op = "Service.reportView"

	if s.views == nil {
		return
	}

	if err := s.views.ProduceView(context.WithoutCancel(ctx), v); err != nil {
		slog.Warn("failed to produce catalog view",
			"op", op, "runID", v.RunID, "err", err)
	}
}
