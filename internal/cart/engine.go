package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/efarmaplus/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// Recorder receives cart activity counters.
type Recorder interface {
	CartMutation(op string)
	CartPersistFailure()
}

type nopRecorder struct{}

func (nopRecorder) CartMutation(string) {}
func (nopRecorder) CartPersistFailure() {}

// Engine owns one quantity-merged cart. Every mutation writes the full line
// array back to the store before returning. Persistence failures are logged
// and never returned: the in-memory cart stays authoritative for the request.
type Engine struct {
	mu      sync.Mutex
	store   Store
	key     string
	lines   []Line
	logg    *logger.Logger
	metrics Recorder
}

// Option customises an Engine.
type Option func(*Engine)

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logg = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.metrics = r
		}
	}
}

// New builds an engine and hydrates it from store under key. A missing,
// unreadable or malformed payload yields an empty cart.
func New(ctx context.Context, store Store, key string, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		key:     key,
		logg:    logger.Nop(),
		metrics: nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.hydrate(ctx)
	return e
}

func (e *Engine) hydrate(ctx context.Context) {
	ctx = e.logg.WithField(ctx, "cart_key", e.key)
	payload, found, err := e.store.Load(ctx, e.key)
	if err != nil {
		e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), "cart load failed, starting empty")
		return
	}
	if !found || payload == "" {
		return
	}
	lines, ok := decodeLines(payload)
	if !ok {
		e.logg.Warn(ctx, "cart payload malformed, starting empty")
		return
	}
	e.lines = lines
}

func decodeLines(payload string) ([]Line, bool) {
	var lines []Line
	if err := json.Unmarshal([]byte(payload), &lines); err != nil {
		return nil, false
	}
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if !l.valid() {
			return nil, false
		}
		if _, dup := seen[l.ID]; dup {
			return nil, false
		}
		seen[l.ID] = struct{}{}
	}
	return lines, true
}

// Key reports the store key this engine persists under.
func (e *Engine) Key() string { return e.key }

// Add increments the quantity of an existing line or appends a new line with
// quantity 1. Attributes of an existing line are kept as first added. A
// discount outside 0..100 is stored as zero.
func (e *Engine) Add(ctx context.Context, item Item) {
	if item.ID == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.indexOf(item.ID); i >= 0 {
		e.lines[i].Quantity++
	} else {
		if !item.discountInRange() {
			item.DiscountPercent = decimal.Zero
		}
		e.lines = append(e.lines, Line{Item: item, Quantity: 1})
	}
	e.commit(ctx, "add")
}

// Remove deletes the line for itemID if present.
func (e *Engine) Remove(ctx context.Context, itemID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.remove(itemID) {
		e.commit(ctx, "remove")
	}
}

// UpdateQuantity sets the quantity of itemID. A quantity of zero or less
// removes the line. Unknown ids are left alone.
func (e *Engine) UpdateQuantity(ctx context.Context, itemID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		if e.remove(itemID) {
			e.commit(ctx, "remove")
		}
		return
	}
	i := e.indexOf(itemID)
	if i < 0 {
		return
	}
	e.lines[i].Quantity = quantity
	e.commit(ctx, "update")
}

// Clear empties the cart.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = nil
	e.commit(ctx, "clear")
}

// TotalItems sums quantities across all lines.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, l := range e.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice sums effective unit price times quantity with no rounding.
func (e *Engine) TotalPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := decimal.Zero
	for _, l := range e.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}

// Line returns a copy of the line for itemID.
func (e *Engine) Line(itemID string) (Line, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexOf(itemID); i >= 0 {
		return e.lines[i], true
	}
	return Line{}, false
}

func (e *Engine) indexOf(itemID string) int {
	for i, l := range e.lines {
		if l.ID == itemID {
			return i
		}
	}
	return -1
}

func (e *Engine) remove(itemID string) bool {
	i := e.indexOf(itemID)
	if i < 0 {
		return false
	}
	e.lines = append(e.lines[:i], e.lines[i+1:]...)
	return true
}

// commit must be called with mu held.
func (e *Engine) commit(ctx context.Context, op string) {
	e.metrics.CartMutation(op)

	lines := e.lines
	if lines == nil {
		lines = []Line{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		e.metrics.CartPersistFailure()
		e.logg.Error(e.logg.WithField(ctx, "cart_key", e.key), "encode cart", err)
		return
	}
	if err := e.store.Save(ctx, e.key, string(payload)); err != nil {
		e.metrics.CartPersistFailure()
		e.logg.Error(e.logg.WithField(ctx, "cart_key", e.key), "persist cart", err)
	}
}
