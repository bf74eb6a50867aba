package models

import "github.com/shopspring/decimal"

// Category identifies one menu section. Slice order is display order.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// ModifierOption is a selectable add-on whose price is an additive delta.
type ModifierOption struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ModifierGroup is a named choice set with selection-count bounds.
// MaxSelection == 1 means radio semantics; greater values cap a
// multi-select. MinSelection is advisory unless strict validation is
// switched on.
type ModifierGroup struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	MinSelection int              `json:"minSelection"`
	MaxSelection int              `json:"maxSelection"`
	Options      []ModifierOption `json:"options"`
}

// Upsell pairs a product with a suggested add-on at a special price.
type Upsell struct {
	ProductID  string          `json:"productId"`
	OfferPrice decimal.Decimal `json:"offerPrice"`
}

// Product is one orderable catalog entry. Field names follow the
// persisted library record format, so older on-device snapshots load
// unchanged.
type Product struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Price          decimal.Decimal  `json:"price"`
	Description    string           `json:"description,omitempty"`
	ImageURL       string           `json:"imageUrl"`
	CategoryID     string           `json:"categoryId"`
	Calories       *int             `json:"calories,omitempty"`
	ModifierGroups []ModifierGroup  `json:"modifierGroups,omitempty"`
	Allergens      []string         `json:"allergens,omitempty"`
	DiscountPrice  *decimal.Decimal `json:"discountPrice,omitempty"`
	Upsell         *Upsell          `json:"upsell,omitempty"`
}

// EffectivePrice returns the price a single unit is charged at before
// modifiers: the discount price when one is present and strictly below
// the base price, otherwise the base price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}

// FindGroup returns the modifier group with the given id, or nil.
func (p Product) FindGroup(groupID string) *ModifierGroup {
	for i := range p.ModifierGroups {
		if p.ModifierGroups[i].ID == groupID {
			return &p.ModifierGroups[i]
		}
	}
	return nil
}

// FindOption returns the option with the given id, or nil.
func (g ModifierGroup) FindOption(optionID string) *ModifierOption {
	for i := range g.Options {
		if g.Options[i].ID == optionID {
			return &g.Options[i]
		}
	}
	return nil
}
