package cart

// Item is one cart line: an opaque catalog product ID and how many of it.
// Quantity is always >= 1; setting it to zero removes the line instead.
type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Cart is the snapshot persisted for one browser. Items is the single source
// of truth; the product-ID projection is computed on demand and never stored.
type Cart struct {
	Items []Item `json:"items"`
}

func New() *Cart {
	return &Cart{Items: []Item{}}
}

// Add increments the quantity of an existing line or appends a new one.
// Non-positive quantities are ignored.
func (c *Cart) Add(productID string, quantity int64) {
	if quantity <= 0 {
		return
	}
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items[i].Quantity += quantity
			return
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
}

// Remove deletes the line for productID. No-op if absent.
func (c *Cart) Remove(productID string) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the line's quantity exactly. Zero or negative removes the
// line entirely, same as Remove.
func (c *Cart) SetQuantity(productID string, quantity int64) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
}

// Toggle flips membership: present at any quantity removes the line, absent
// adds it with quantity 1.
func (c *Cart) Toggle(productID string) {
	if c.Contains(productID) {
		c.Remove(productID)
		return
	}
	c.Add(productID, 1)
}

func (c *Cart) Contains(productID string) bool {
	return c.Quantity(productID) > 0
}

// Quantity returns 0 when the product is not in the cart.
func (c *Cart) Quantity(productID string) int64 {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// TotalItems is the sum of all line quantities.
func (c *Cart) TotalItems() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// UniqueItems is the number of distinct product lines.
func (c *Cart) UniqueItems() int {
	return len(c.Items)
}

// ProductIDs is the order-preserving projection of distinct product IDs.
func (c *Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func (c *Cart) Clear() {
	c.Items = []Item{}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Retain drops every line whose product ID is not in keep, preserving order.
// Used to prune lines the catalog no longer resolves.
func (c *Cart) Retain(keep map[string]bool) {
	items := c.Items[:0]
	for _, item := range c.Items {
		if keep[item.ProductID] {
			items = append(items, item)
		}
	}
	c.Items = items
}
