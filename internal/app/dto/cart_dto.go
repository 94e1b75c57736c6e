package dto

import (
	"time"

	"github.com/mrops-br/shopping-browser-api/internal/app/service"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/shopspring/decimal"
)

// AddCartItemRequest represents the request to add a product to the cart
type AddCartItemRequest struct {
	ProductID int `json:"product_id"`
}

// CartItemResponse represents a cart line
type CartItemResponse struct {
	Product      ProductResponse `json:"product"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	HasThumbnail bool            `json:"has_thumbnail"`
}

// CartResponse represents the whole cart
type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
}

// ShareResponse carries plain text meant for a share sheet
type ShareResponse struct {
	Text string `json:"text"`
}

// CheckoutResponse represents a checkout summary
type CheckoutResponse struct {
	OrderID     string             `json:"order_id"`
	Items       []CartItemResponse `json:"items"`
	ItemCount   int                `json:"item_count"`
	Total       decimal.Decimal    `json:"total"`
	RequestedAt time.Time          `json:"requested_at"`
}

func toCartItemResponseList(items []domain.CartItem) []CartItemResponse {
	responses := make([]CartItemResponse, len(items))
	for i, item := range items {
		responses[i] = CartItemResponse{
			Product:      ToProductResponse(item.Product),
			Quantity:     item.Quantity,
			Subtotal:     item.Subtotal(),
			HasThumbnail: len(item.ImageData) > 0,
		}
	}
	return responses
}

// ToCartResponse converts cart lines to CartResponse
func ToCartResponse(items []domain.CartItem) CartResponse {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return CartResponse{
		Items:     toCartItemResponseList(items),
		ItemCount: count,
		Total:     domain.CartTotal(items),
	}
}

// ToCheckoutResponse converts a checkout summary to CheckoutResponse
func ToCheckoutResponse(s service.CheckoutSummary) CheckoutResponse {
	return CheckoutResponse{
		OrderID:     s.OrderID.String(),
		Items:       toCartItemResponseList(s.Items),
		ItemCount:   s.ItemCount,
		Total:       s.Total,
		RequestedAt: s.RequestedAt,
	}
}
