package checkout

// ResolvedProduct is a catalog product joined with the quantity the client
// asked for, priced from the current catalog record.
type ResolvedProduct struct {
	ProductID      string
	Name           string
	Slug           string
	Image          string
	Category       string
	PriceCents     int64
	Currency       string
	Quantity       int64
	LineTotalCents int64
}

// Quote is the authoritative re-resolution of a client cart snapshot. Docs
// holds only products that still exist in the catalog; a client that sent
// more items than TotalDocs must prune its own cart.
type Quote struct {
	Docs            []ResolvedProduct
	TotalDocs       int
	TotalPriceCents int64
}

// Keep reports which requested product IDs survived resolution, in the shape
// Cart.Retain expects.
func (q *Quote) Keep() map[string]bool {
	keep := make(map[string]bool, len(q.Docs))
	for _, doc := range q.Docs {
		keep[doc.ProductID] = true
	}
	return keep
}

// Session is the application's view of a provider checkout session: an opaque
// ID and the page to redirect the buyer to. Everything else about the session
// lives at the provider.
type Session struct {
	ID  string
	URL string
}

// ReturnState is what the post-payment return URL decodes to, plus what the
// return flow did with it.
type ReturnState struct {
	Success   bool
	Cancel    bool
	SessionID string

	// Consumed is true only for the request that claimed the session first;
	// replays of the same URL see false and trigger no side effects.
	Consumed    bool
	CartCleared bool
}
