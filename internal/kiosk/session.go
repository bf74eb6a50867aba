package kiosk

import (
	"time"

	"github.com/angelmondragon/kioskeats-backend/internal/ordering"
)

// State is the kiosk's customer-facing screen state.
type State string

const (
	// StateAttract is the idle touch-to-start screen.
	StateAttract State = "ATTRACT"
	// StateOrdering is active menu browsing with a live cart.
	StateOrdering State = "ORDERING"
	// StateCheckout is the review screen with tip selection.
	StateCheckout State = "CHECKOUT"
)

// Session is the per-kiosk order state held in redis. MenuConfigID pins
// the cart to the menu it was built from; a publish of a different menu
// invalidates the cart on next load.
type Session struct {
	KioskID      string        `json:"kioskId"`
	State        State         `json:"state"`
	Cart         ordering.Cart `json:"cart"`
	TipPercent   int           `json:"tipPercent"`
	MenuConfigID string        `json:"menuConfigId"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func newSession(kioskID, menuConfigID string) *Session {
	return &Session{
		KioskID:      kioskID,
		State:        StateAttract,
		Cart:         ordering.Cart{},
		MenuConfigID: menuConfigID,
	}
}

// Receipt is the immutable record produced by a successful payment.
type Receipt struct {
	OrderID      string          `json:"orderId"`
	KioskID      string          `json:"kioskId"`
	MenuConfigID string          `json:"menuConfigId"`
	Lines        ordering.Cart   `json:"lines"`
	Totals       ordering.Totals `json:"totals"`
	PaidAt       time.Time       `json:"paidAt"`
	Replayed     bool            `json:"replayed,omitempty"`
}
