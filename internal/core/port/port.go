package port

import (
	"context"
	"io"

	"github.com/niksmo/storefront/internal/core/domain"
)

type (
	closer interface {
		Close()
	}
)

// Display is the pair of page regions a run mutates: the loading
// indicator and the product list.
type Display interface {
	ShowLoading()
	HideLoading()
	Clear()
	Append(domain.Card)
	ShowError(msg string)
}

type Page interface {
	Display
	Render(io.Writer) error
}

type PageFactory func() (Page, error)

type ProductsFetcher interface {
	FetchProducts(context.Context, Display)
}

type ProductsDisplayer interface {
	DisplayProducts(Display, []domain.Product)
}

type CatalogFetcher interface {
	FetchCatalog(context.Context) ([]domain.Product, error)
}

type PriceFormatter interface {
	FormatPrice(amount float64) string
}

type CatalogViewProducer interface {
	ProduceView(context.Context, domain.CatalogView) error
	closer
}

type PagePublisher interface {
	PublishPage(ctx context.Context, key string, body []byte) error
}
