package domain

import "github.com/aussiebroadwan/washpay/pkg/ipg"

// Product is an item the backend offers on the customer portal.
type Product struct {
	Kind  ipg.ProductKind `json:"kind"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price float64         `json:"price"`
}
