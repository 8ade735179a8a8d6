// Package cart holds the in-memory shopping cart of a user session and the
// per-store views derived from it.
package cart

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product or service in the cart with its quantity.
// ID identifies the offer inside its store catalog.
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	StoreID   string          `json:"store_id"`
	StoreName string          `json:"store_name"`
	ImageRef  string          `json:"image_ref"`
}

// Total returns UnitPrice * Quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Candidate is what callers hand to AddItem. Quantity is owned by the cart.
type Candidate struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	StoreID   string
	StoreName string
	ImageRef  string
}

// StoreGroup is a read-only projection of the items that belong to one store.
type StoreGroup struct {
	StoreID   string          `json:"store_id"`
	StoreName string          `json:"store_name"`
	Items     []LineItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Cart keeps line items in insertion order, at most one per item id.
// A Cart is not safe for concurrent use; see Store.
type Cart struct {
	items []LineItem
	index map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// AddItem increments the quantity of an existing item or appends a new one
// with quantity 1. Name, price and store of an existing item are never
// overwritten.
func (c *Cart) AddItem(candidate Candidate) {
	if i, ok := c.index[candidate.ID]; ok {
		c.items[i].Quantity++
		return
	}

	c.index[candidate.ID] = len(c.items)
	c.items = append(c.items, LineItem{
		ID:        candidate.ID,
		Name:      candidate.Name,
		UnitPrice: candidate.UnitPrice,
		Quantity:  1,
		StoreID:   candidate.StoreID,
		StoreName: candidate.StoreName,
		ImageRef:  candidate.ImageRef,
	})
}

// RemoveItem deletes the item if present.
func (c *Cart) RemoveItem(id string) {
	i, ok := c.index[id]
	if !ok {
		return
	}

	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].ID] = j
	}
}

// SetQuantity sets the quantity of an existing item. A quantity of zero or
// less removes the item. Unknown ids are ignored.
func (c *Cart) SetQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(id)
		return
	}

	if i, ok := c.index[id]; ok {
		c.items[i].Quantity = quantity
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[string]int)
}

// StoreGroups groups the items by store, ordered by the first appearance of
// each store in the cart.
func (c *Cart) StoreGroups() []StoreGroup {
	groups := make([]StoreGroup, 0)
	byStore := make(map[string]int)

	for _, item := range c.items {
		g, ok := byStore[item.StoreID]
		if !ok {
			g = len(groups)
			byStore[item.StoreID] = g
			groups = append(groups, StoreGroup{
				StoreID:   item.StoreID,
				StoreName: item.StoreName,
				Subtotal:  decimal.Zero,
			})
		}
		groups[g].Items = append(groups[g].Items, item)
		groups[g].Subtotal = groups[g].Subtotal.Add(item.Total())
	}

	return groups
}

// TotalAmount is the sum of UnitPrice * Quantity over all items.
func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Total())
	}
	return total
}

// TotalItemCount is the sum of quantities.
func (c *Cart) TotalItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the line item with the given id.
func (c *Cart) Item(id string) (LineItem, bool) {
	i, ok := c.index[id]
	if !ok {
		return LineItem{}, false
	}
	return c.items[i], true
}

// Len returns the number of distinct line items.
func (c *Cart) Len() int {
	return len(c.items)
}
