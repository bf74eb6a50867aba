package ordering

import (
	"sort"

	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
)

// CartItem is one line of the order. The embedded product's Price is the
// resolved unit price captured when the line was added, so later catalog
// edits never reprice items already in the cart.
type CartItem struct {
	models.Product
	Quantity int      `json:"quantity"`
	Options  []string `json:"options,omitempty"`
}

// Cart is an ordered sequence of lines; order is insertion order.
type Cart []CartItem

// Add returns a new cart with the product added. When editIndex points
// at an existing line, that line is removed first so the edit can
// re-merge cleanly. A line with the same product id and the same
// option-label set (order-insensitive) absorbs the quantity instead of
// duplicating; the existing line keeps its stored unit price.
func Add(cart Cart, product models.Product, quantity int, options []string, editIndex *int) Cart {
	next := make(Cart, 0, len(cart)+1)
	for i, item := range cart {
		if editIndex != nil && i == *editIndex {
			continue
		}
		next = append(next, item)
	}

	for i, item := range next {
		if item.ID == product.ID && sameOptionSet(item.Options, options) {
			next[i].Quantity += quantity
			return next
		}
	}

	return append(next, CartItem{Product: product, Quantity: quantity, Options: options})
}

// UpdateQuantity returns a new cart with the line's quantity replaced.
// A quantity of zero or less removes the line. An out-of-range index
// leaves the cart unchanged.
func UpdateQuantity(cart Cart, index, newQuantity int) Cart {
	if index < 0 || index >= len(cart) {
		return cart
	}
	next := make(Cart, 0, len(cart))
	for i, item := range cart {
		if i == index {
			if newQuantity <= 0 {
				continue
			}
			item.Quantity = newQuantity
		}
		next = append(next, item)
	}
	return next
}

// sameOptionSet compares option labels order-insensitively but
// duplicate-sensitively: both lists sorted must match element-wise.
func sameOptionSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sortedA := append([]string{}, a...)
	sortedB := append([]string{}, b...)
	sort.Strings(sortedA)
	sort.Strings(sortedB)
	for i := range sortedA {
		if sortedA[i] != sortedB[i] {
			return false
		}
	}
	return true
}
