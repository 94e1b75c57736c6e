package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"log/slog"
	"net/http"

	"github.com/mrops-br/shopping-browser-api/internal/app/dto"
	"github.com/mrops-br/shopping-browser-api/internal/app/service"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/http/response"
)

// CartEvent is the server-sent event name emitted on every cart change.
const CartEvent = "cart-updated"

// CartHandler handles HTTP requests for the cart
type CartHandler struct {
	cart    *service.CartStore
	catalog *service.CatalogStore
	images  *service.ImageLoader
	logger  *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(
	cart *service.CartStore,
	catalog *service.CatalogStore,
	images *service.ImageLoader,
	logger *slog.Logger,
) *CartHandler {
	return &CartHandler{
		cart:    cart,
		catalog: catalog,
		images:  images,
		logger:  logger,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, dto.ToCartResponse(h.cart.Items()))
}

// AddItem handles POST /cart/items. The product must have been fetched
// into the catalog. A thumbnail that cannot be downloaded does not block
// the add.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if req.ProductID <= 0 {
		writeError(w, r, h.logger, errInvalidID)
		return
	}

	product, err := h.catalog.FindProduct(req.ProductID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	image, err := h.images.Load(r.Context(), product).Await(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Thumbnail unavailable, adding product without it",
			slog.Int("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		image = nil
	}

	h.cart.AddProduct(r.Context(), product, image)

	response.JSON(w, http.StatusOK, dto.ToCartResponse(h.cart.Items()))
}

// RemoveItem handles DELETE /cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.cart.RemoveProduct(r.Context(), domain.Product{ID: id})

	response.JSON(w, http.StatusOK, dto.ToCartResponse(h.cart.Items()))
}

// RemoveAllOfItem handles DELETE /cart/items/{id}/all
func (h *CartHandler) RemoveAllOfItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.cart.RemoveAllOfProduct(r.Context(), domain.Product{ID: id})

	response.JSON(w, http.StatusOK, dto.ToCartResponse(h.cart.Items()))
}

// GetItemThumbnail handles GET /cart/items/{id}/thumbnail
func (h *CartHandler) GetItemThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	img, err := h.cart.Thumbnail(id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Binary(w, "image/jpeg", buf.Bytes())
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// ShareCart handles GET /cart/share
func (h *CartHandler) ShareCart(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, dto.ShareResponse{Text: h.cart.ShareText()})
}

// Checkout handles POST /cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	summary := h.cart.Checkout(r.Context())

	response.JSON(w, http.StatusOK, dto.ToCheckoutResponse(summary))
}

// Events handles GET /cart/events. The current cart is sent on connect and
// again after every change until the client goes away. Changes that arrive
// while an event is being written are coalesced.
func (h *CartHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	changed := make(chan struct{}, 1)
	sub := h.cart.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.logger.DebugContext(ctx, "Cart event stream opened", slog.String("subscription_id", sub.ID.String()))

	for {
		if err := h.writeCartEvent(w, rc); err != nil {
			h.logger.WarnContext(ctx, "Cart event stream closed",
				slog.String("subscription_id", sub.ID.String()),
				slog.String("error", err.Error()),
			)
			return
		}

		select {
		case <-ctx.Done():
			h.logger.DebugContext(ctx, "Cart event stream closed by client",
				slog.String("subscription_id", sub.ID.String()),
			)
			return
		case <-changed:
		}
	}
}

func (h *CartHandler) writeCartEvent(w http.ResponseWriter, rc *http.ResponseController) error {
	data, err := json.Marshal(dto.ToCartResponse(h.cart.Items()))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", CartEvent, data); err != nil {
		return err
	}
	return rc.Flush()
}
