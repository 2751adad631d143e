package domain

const (
	// CatalogUnavailableMessage replaces the product list when a run fails.
	CatalogUnavailableMessage = "Não foi possível carregar os produtos. Tente novamente mais tarde."

	AddToCartLabel = "Adicionar ao Carrinho"
)

type Product struct {
	ID          string
	Title       string
	Price       float64
	Description string
	Image       string
}

// A Card is the display form of one [Product].
type Card struct {
	Image       string
	Title       string
	Price       string
	Description string
	Action      string
}
