package service

import (
	"context"
	"encoding/json"
	"image"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CartStore owns the cart. Every mutation persists the whole cart and
// broadcasts a change to all subscribers. Persistence failures are logged
// and never returned; the in-memory cart stays authoritative.
type CartStore struct {
	storage        domain.BlobStore
	codec          domain.ThumbnailCodec
	tracer         trace.Tracer
	logger         *slog.Logger
	cartOperations metric.Int64Counter

	mu      sync.RWMutex
	items   []domain.CartItem
	version uint64

	// persistMu orders writes to storage; savedVersion is the newest
	// snapshot handed to storage.
	persistMu    sync.Mutex
	savedVersion uint64

	subsMu      sync.Mutex
	subscribers map[uuid.UUID]func()
}

// Subscription is a registered cart change listener.
type Subscription struct {
	ID    uuid.UUID
	store *CartStore
}

// Unsubscribe stops delivery to the listener. Calling it twice is harmless.
func (s *Subscription) Unsubscribe() {
	s.store.subsMu.Lock()
	defer s.store.subsMu.Unlock()
	delete(s.store.subscribers, s.ID)
}

// CheckoutSummary describes a checkout request. Checkout does not place
// an order; the summary is informational.
type CheckoutSummary struct {
	OrderID     uuid.UUID
	Items       []domain.CartItem
	ItemCount   int
	Total       decimal.Decimal
	RequestedAt time.Time
}

// NewCartStore creates a cart store and loads the persisted cart once.
// A missing or unreadable cart leaves the store empty.
func NewCartStore(
	ctx context.Context,
	storage domain.BlobStore,
	codec domain.ThumbnailCodec,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CartStore {
	cartOperations, _ := meter.Int64Counter(
		"cart.operations",
		metric.WithDescription("Total number of cart operations"),
	)

	s := &CartStore{
		storage:        storage,
		codec:          codec,
		tracer:         tracer,
		logger:         logger,
		cartOperations: cartOperations,
		items:          []domain.CartItem{},
		subscribers:    make(map[uuid.UUID]func()),
	}
	s.load(ctx)
	return s
}

// AddProduct increments the quantity of product's line, or appends a new
// line with quantity 1 and image compressed as its thumbnail.
func (s *CartStore) AddProduct(ctx context.Context, product domain.Product, image []byte) {
	ctx, span := s.tracer.Start(ctx, "CartStore.AddProduct")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", product.ID))

	s.mu.Lock()
	if i := s.indexOf(product.ID); i >= 0 {
		s.items[i].Quantity++
		span.SetAttributes(attribute.Int("cart.quantity", s.items[i].Quantity))
	} else {
		s.items = append(s.items, domain.CartItem{
			Product:   product,
			Quantity:  1,
			ImageData: s.compress(ctx, product, image),
		})
		span.SetAttributes(attribute.Int("cart.quantity", 1))
	}
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Product added to cart",
		slog.Int("product_id", product.ID),
		slog.String("product_title", product.Title),
	)

	s.commit(ctx, "add", snap)
	span.SetStatus(codes.Ok, "Product added")
}

// RemoveProduct decrements the quantity of product's line and removes the
// line when it was 1. It does nothing when product is not in the cart.
func (s *CartStore) RemoveProduct(ctx context.Context, product domain.Product) {
	ctx, span := s.tracer.Start(ctx, "CartStore.RemoveProduct")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", product.ID))

	s.mu.Lock()
	i := s.indexOf(product.ID)
	if i < 0 {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Product not in cart, nothing to remove",
			slog.Int("product_id", product.ID),
		)
		s.recordOperation(ctx, "remove", "noop")
		span.SetStatus(codes.Ok, "Product not in cart")
		return
	}
	if s.items[i].Quantity > 1 {
		s.items[i].Quantity--
	} else {
		s.items = slices.Delete(s.items, i, i+1)
	}
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Product removed from cart",
		slog.Int("product_id", product.ID),
	)

	s.commit(ctx, "remove", snap)
	span.SetStatus(codes.Ok, "Product removed")
}

// RemoveAllOfProduct removes product's line regardless of quantity.
func (s *CartStore) RemoveAllOfProduct(ctx context.Context, product domain.Product) {
	ctx, span := s.tracer.Start(ctx, "CartStore.RemoveAllOfProduct")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", product.ID))

	s.mu.Lock()
	s.items = slices.DeleteFunc(s.items, func(item domain.CartItem) bool {
		return item.Product.ID == product.ID
	})
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Product line removed from cart",
		slog.Int("product_id", product.ID),
	)

	s.commit(ctx, "remove_all", snap)
	span.SetStatus(codes.Ok, "Product line removed")
}

// ClearCart empties the cart.
func (s *CartStore) ClearCart(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "CartStore.ClearCart")
	defer span.End()

	s.mu.Lock()
	s.items = []domain.CartItem{}
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Cart cleared")

	s.commit(ctx, "clear", snap)
	span.SetStatus(codes.Ok, "Cart cleared")
}

// Items returns the cart lines in insertion order. The result must be
// treated as read-only.
func (s *CartStore) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// TotalPrice returns the sum of price * quantity over all lines.
func (s *CartStore) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CartTotal(s.items)
}

// ItemCount returns the total quantity across all lines.
func (s *CartStore) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// ShareText renders the cart as plain text for sharing.
func (s *CartStore) ShareText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CartShareText(s.items)
}

// Thumbnail decodes the stored thumbnail of the line for productID.
func (s *CartStore) Thumbnail(productID int) (image.Image, error) {
	s.mu.RLock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.RUnlock()
		return nil, domain.ErrProductNotFound
	}
	data := s.items[i].ImageData
	s.mu.RUnlock()

	if len(data) == 0 || s.codec == nil {
		return nil, domain.ErrNoThumbnail
	}
	return s.codec.Decode(data)
}

// Checkout reports what would be ordered. The cart is left untouched.
func (s *CartStore) Checkout(ctx context.Context) CheckoutSummary {
	ctx, span := s.tracer.Start(ctx, "CartStore.Checkout")
	defer span.End()

	s.mu.RLock()
	summary := CheckoutSummary{
		OrderID:     uuid.New(),
		Items:       slices.Clone(s.items),
		Total:       domain.CartTotal(s.items),
		RequestedAt: time.Now(),
	}
	s.mu.RUnlock()

	for _, item := range summary.Items {
		summary.ItemCount += item.Quantity
	}

	span.SetAttributes(
		attribute.String("order.id", summary.OrderID.String()),
		attribute.Int("cart.item_count", summary.ItemCount),
	)

	s.logger.InfoContext(ctx, "Checkout requested",
		slog.String("order_id", summary.OrderID.String()),
		slog.Int("item_count", summary.ItemCount),
		slog.String("total", summary.Total.String()),
	)
	s.recordOperation(ctx, "checkout", "success")

	span.SetStatus(codes.Ok, "Checkout summarised")
	return summary
}

// Subscribe registers fn to be called after every cart change.
func (s *CartStore) Subscribe(fn func()) *Subscription {
	id := uuid.New()

	s.subsMu.Lock()
	s.subscribers[id] = fn
	s.subsMu.Unlock()

	return &Subscription{ID: id, store: s}
}

// cartSnapshot is the cart as it was right after one mutation.
type cartSnapshot struct {
	items   []domain.CartItem
	version uint64
}

// snapshot must be called with mu held for writing.
func (s *CartStore) snapshot() cartSnapshot {
	s.version++
	return cartSnapshot{items: slices.Clone(s.items), version: s.version}
}

// commit persists snap and notifies subscribers.
func (s *CartStore) commit(ctx context.Context, operation string, snap cartSnapshot) {
	result := "success"
	if err := s.save(ctx, snap); err != nil {
		result = "persist_failed"
	}
	s.recordOperation(ctx, operation, result)
	s.notify()
}

func (s *CartStore) notify() {
	s.subsMu.Lock()
	listeners := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		listeners = append(listeners, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// save writes snap unless a newer snapshot already reached storage.
func (s *CartStore) save(ctx context.Context, snap cartSnapshot) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if snap.version <= s.savedVersion {
		s.logger.DebugContext(ctx, "Skipping outdated cart snapshot",
			slog.Uint64("version", snap.version),
			slog.Uint64("saved_version", s.savedVersion),
		)
		return nil
	}
	s.savedVersion = snap.version

	data, err := json.Marshal(snap.items)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode cart",
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := s.storage.Set(ctx, domain.CartStorageKey, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save cart",
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (s *CartStore) load(ctx context.Context) {
	data, found, err := s.storage.Get(ctx, domain.CartStorageKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load cart, starting empty",
			slog.String("error", err.Error()),
		)
		return
	}
	if !found {
		return
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.WarnContext(ctx, "Stored cart is unreadable, starting empty",
			slog.String("error", err.Error()),
		)
		return
	}

	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.Product.ID]; dup || item.Quantity < 1 {
			s.logger.WarnContext(ctx, "Skipping invalid stored cart line",
				slog.Int("product_id", item.Product.ID),
				slog.Int("quantity", item.Quantity),
			)
			continue
		}
		seen[item.Product.ID] = struct{}{}
		s.items = append(s.items, item)
	}

	s.logger.InfoContext(ctx, "Cart loaded", slog.Int("lines", len(s.items)))
}

func (s *CartStore) compress(ctx context.Context, product domain.Product, raw []byte) []byte {
	if len(raw) == 0 || s.codec == nil {
		return nil
	}
	data, err := s.codec.Encode(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to compress thumbnail, storing line without it",
			slog.Int("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return data
}

func (s *CartStore) recordOperation(ctx context.Context, operation, result string) {
	s.cartOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

// indexOf must be called with mu held.
func (s *CartStore) indexOf(productID int) int {
	return slices.IndexFunc(s.items, func(item domain.CartItem) bool {
		return item.Product.ID == productID
	})
}
