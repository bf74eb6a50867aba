package kiosk

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/kioskeats-backend/internal/catalog"
	"github.com/angelmondragon/kioskeats-backend/internal/ordering"
	"github.com/angelmondragon/kioskeats-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
	"github.com/angelmondragon/kioskeats-backend/pkg/metrics"
	keredis "github.com/angelmondragon/kioskeats-backend/pkg/redis"
)

// receiptRetention keeps paid-order receipts around long enough for a
// duplicated pay request to be answered with the original.
const receiptRetention = 24 * time.Hour

// Store is the redis surface the manager needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(kioskID string) string
	IdempotencyKey(scope, id string) string
}

// AddItemInput describes one add-to-cart request. AcceptUpsell also
// attaches the product's suggested pairing as its own line.
type AddItemInput struct {
	ProductID    string             `json:"productId" validate:"required"`
	Quantity     int                `json:"quantity" validate:"required,min=1,max=99"`
	Selection    ordering.Selection `json:"selection"`
	EditIndex    *int               `json:"editIndex"`
	AcceptUpsell bool               `json:"acceptUpsell"`
}

// Manager drives the per-kiosk session state machine.
type Manager struct {
	store      Store
	catalog    *catalog.Store
	sessionTTL time.Duration
	enforceMin bool
	logg       *logger.Logger
	metrics    *metrics.KioskMetrics
}

func NewManager(store Store, catalogStore *catalog.Store, cfg config.SessionConfig, enforceMin bool, logg *logger.Logger, m *metrics.KioskMetrics) (*Manager, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session store is required")
	}
	if catalogStore == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog store is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Manager{
		store:      store,
		catalog:    catalogStore,
		sessionTTL: cfg.TTL,
		enforceMin: enforceMin,
		logg:       logg,
		metrics:    m,
	}, nil
}

// Get loads the kiosk's session, creating an idle one when none exists.
func (m *Manager) Get(ctx context.Context, kioskID string) (*Session, error) {
	return m.load(ctx, kioskID)
}

// Start begins a fresh order: empty cart, ordering screen, pinned to
// the currently published menu.
func (m *Manager) Start(ctx context.Context, kioskID string) (*Session, error) {
	activeMenu := m.catalog.ActiveMenuID()
	if activeMenu == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no menu is published")
	}

	session := newSession(kioskID, activeMenu)
	session.State = StateOrdering
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}

	m.logg.Info(m.logg.WithKioskID(ctx, kioskID), "order started")
	return session, nil
}

// AddItem prices the customization and puts it in the cart. EditIndex
// replaces an existing line instead of stacking a new one.
func (m *Manager) AddItem(ctx context.Context, kioskID string, input AddItemInput) (*Session, error) {
	session, err := m.load(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	if session.State != StateOrdering {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no order in progress")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	snap := m.catalog.Current()
	product, ok := snap.ProductByID(input.ProductID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if m.enforceMin {
		if err := ordering.ValidateMinSelections(product, input.Selection); err != nil {
			return nil, err
		}
	}

	// The line carries its resolved unit price; the cart never reprices.
	priced := product
	priced.Price = ordering.UnitPrice(product, input.Selection)
	priced.DiscountPrice = nil

	session.Cart = ordering.Add(session.Cart, priced, input.Quantity, input.Selection.Labels(product), input.EditIndex)

	// An accepted upsell is an independent line at the offer price,
	// quantity one, no options. An unresolvable target is inert.
	if input.AcceptUpsell {
		if offered, offerPrice, ok := snap.ResolveUpsell(product.ID); ok {
			offered.Price = offerPrice
			offered.DiscountPrice = nil
			session.Cart = ordering.Add(session.Cart, offered, 1, nil, nil)
		}
	}

	if err := m.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateQuantity sets a cart line's quantity; zero removes the line.
func (m *Manager) UpdateQuantity(ctx context.Context, kioskID string, index, quantity int) (*Session, error) {
	session, err := m.load(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	if session.State == StateAttract {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no order in progress")
	}

	session.Cart = ordering.UpdateQuantity(session.Cart, index, quantity)
	if len(session.Cart) == 0 && session.State == StateCheckout {
		session.State = StateOrdering
	}
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SetTip records the tip choice made on the checkout screen.
func (m *Manager) SetTip(ctx context.Context, kioskID string, percent int) (*Session, error) {
	if !ordering.ValidTipPercent(percent) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tip percentage not offered").
			WithDetails(map[string]any{"offered": ordering.TipOptions})
	}

	session, err := m.load(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	if session.State != StateCheckout {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "not at checkout")
	}

	session.TipPercent = percent
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Checkout moves a non-empty order to the review screen.
func (m *Manager) Checkout(ctx context.Context, kioskID string) (*Session, error) {
	session, err := m.load(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	if session.State != StateOrdering {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no order in progress")
	}
	if len(session.Cart) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	session.State = StateCheckout
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Back steps from checkout to ordering, keeping the cart.
func (m *Manager) Back(ctx context.Context, kioskID string) (*Session, error) {
	session, err := m.load(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	if session.State != StateCheckout {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "not at checkout")
	}

	session.State = StateOrdering
	session.TipPercent = 0
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ClearCart empties the cart but keeps the order open.
func (m *Manager) ClearCart(ctx context.Context, kioskID string) (*Session, error) {
	session, err := m.load(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	if session.State == StateAttract {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no order in progress")
	}

	session.Cart = ordering.Cart{}
	session.TipPercent = 0
	session.State = StateOrdering
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Cancel abandons the order and returns the kiosk to the idle screen.
func (m *Manager) Cancel(ctx context.Context, kioskID string) (*Session, error) {
	session, err := m.load(ctx, kioskID)
	if err != nil {
		return nil, err
	}

	reset := newSession(kioskID, session.MenuConfigID)
	if err := m.save(ctx, reset); err != nil {
		return nil, err
	}

	m.logg.Info(m.logg.WithKioskID(ctx, kioskID), "order cancelled")
	return reset, nil
}

// Pay finalizes the order at checkout. The idempotency key makes a
// double-tapped pay button return the original receipt instead of
// recording a second order.
func (m *Manager) Pay(ctx context.Context, kioskID, idempotencyKey string) (*Receipt, error) {
	if idempotencyKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}

	// A second tap may land after the first payment already reset the
	// session, so the stored receipt is checked before any state checks.
	idemKey := m.store.IdempotencyKey("pay", kioskID+":"+idempotencyKey)
	if stored, err := m.store.Get(ctx, idemKey); err == nil {
		return m.decodeReceipt(stored)
	} else if !errors.Is(err, keredis.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking idempotency key")
	}

	session, err := m.load(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	if session.State != StateCheckout {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "not at checkout")
	}
	if len(session.Cart) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	receipt := &Receipt{
		OrderID:      uuid.NewString(),
		KioskID:      kioskID,
		MenuConfigID: session.MenuConfigID,
		Lines:        session.Cart,
		Totals:       ordering.ComputeTotals(session.Cart, session.TipPercent),
		PaidAt:       time.Now().UTC(),
	}
	encoded, err := json.Marshal(receipt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding receipt")
	}

	fresh, err := m.store.SetNX(ctx, idemKey, string(encoded), receiptRetention)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserving idempotency key")
	}
	if !fresh {
		return m.replayReceipt(ctx, idemKey)
	}

	reset := newSession(kioskID, session.MenuConfigID)
	if err := m.save(ctx, reset); err != nil {
		return nil, err
	}

	m.metrics.IncOrderPaid()
	ctx = m.logg.WithFields(m.logg.WithKioskID(ctx, kioskID), map[string]any{
		"order_id": receipt.OrderID,
		"total":    receipt.Totals.Total.String(),
	})
	m.logg.Info(ctx, "order paid")
	return receipt, nil
}

func (m *Manager) replayReceipt(ctx context.Context, idemKey string) (*Receipt, error) {
	stored, err := m.store.Get(ctx, idemKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stored receipt")
	}
	return m.decodeReceipt(stored)
}

func (m *Manager) decodeReceipt(stored string) (*Receipt, error) {
	var receipt Receipt
	if err := json.Unmarshal([]byte(stored), &receipt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding stored receipt")
	}
	receipt.Replayed = true
	return &receipt, nil
}

func (m *Manager) load(ctx context.Context, kioskID string) (*Session, error) {
	raw, err := m.store.Get(ctx, m.store.SessionKey(kioskID))
	if errors.Is(err, keredis.ErrNotFound) {
		return newSession(kioskID, m.catalog.ActiveMenuID()), nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading session")
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		m.logg.Warn(m.logg.WithKioskID(ctx, kioskID), "discarding unreadable session record")
		return newSession(kioskID, m.catalog.ActiveMenuID()), nil
	}

	m.syncWithCatalog(ctx, &session)
	return &session, nil
}

// syncWithCatalog clears the cart when the published menu changed out
// from under the session; stale line items must never be paid for.
func (m *Manager) syncWithCatalog(ctx context.Context, session *Session) {
	activeMenu := m.catalog.ActiveMenuID()
	if session.MenuConfigID == activeMenu {
		return
	}

	session.MenuConfigID = activeMenu
	session.Cart = ordering.Cart{}
	session.TipPercent = 0
	if session.State == StateCheckout {
		session.State = StateOrdering
	}
	m.logg.Info(m.logg.WithKioskID(ctx, session.KioskID), "published menu changed, cart cleared")
}

func (m *Manager) save(ctx context.Context, session *Session) error {
	session.UpdatedAt = time.Now().UTC()
	encoded, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding session")
	}
	if err := m.store.Set(ctx, m.store.SessionKey(session.KioskID), string(encoded), m.sessionTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving session")
	}
	return nil
}
