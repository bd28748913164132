package product

// Product is one catalog entry: a retail item or bookable treatment sold by
// the salon. IDs are opaque strings assigned by the catalog. Prices are in
// integer minor units of Currency.
type Product struct {
	ID          string
	Name        string
	Slug        string
	Description string
	PriceCents  int64
	Currency    string
	Image       string
	Category    string
	IsActive    bool
}

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

func (s SortOrder) IsValid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc:
		return true
	default:
		return false
	}
}

type ListFilter struct {
	Category   string
	Search     string
	OnlyActive bool
	Sort       SortOrder
}
