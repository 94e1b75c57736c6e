package dto

import (
	"github.com/go-faster/errors"
	"github.com/mrops-br/shopping-browser-api/internal/app/service"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ApplyFiltersRequest represents the request to enter filter mode
type ApplyFiltersRequest struct {
	CategoryIDs []int            `json:"category_ids"`
	MinPrice    *decimal.Decimal `json:"min_price"`
	MaxPrice    *decimal.Decimal `json:"max_price"`
}

// PriceRange returns the requested bounds. A missing min_price means zero;
// max_price has to be given.
func (r ApplyFiltersRequest) PriceRange() (min, max decimal.Decimal, err error) {
	if r.MaxPrice == nil {
		return decimal.Zero, decimal.Zero, errors.Wrap(domain.ErrInvalidPriceSpan, "max_price is required")
	}
	if r.MinPrice != nil {
		min = *r.MinPrice
	}
	return min, *r.MaxPrice, nil
}

// CategoryResponse represents a product category
type CategoryResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Price       decimal.Decimal  `json:"price"`
	Description string           `json:"description,omitempty"`
	Category    CategoryResponse `json:"category"`
	Images      []string         `json:"images"`
}

// ProductDetailResponse adds the share text to a product
type ProductDetailResponse struct {
	ProductResponse
	ShareText string `json:"share_text"`
}

// ProductListResponse is the list the user is looking at plus the session flags
type ProductListResponse struct {
	Products    []ProductResponse `json:"products"`
	Count       int               `json:"count"`
	HasMore     bool              `json:"has_more"`
	IsFiltering bool              `json:"is_filtering"`
	IsSearching bool              `json:"is_searching"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:    c.ID,
		Name:  c.Name,
		Image: c.Image,
	}
}

// ToCategoryResponseList converts a list of domain Categories
func ToCategoryResponseList(categories []domain.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = ToCategoryResponse(c)
	}
	return responses
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p domain.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Category:    ToCategoryResponse(p.Category),
		Images:      images,
	}
}

// ToProductDetailResponse converts a domain Product to ProductDetailResponse
func ToProductDetailResponse(p domain.Product) ProductDetailResponse {
	return ProductDetailResponse{
		ProductResponse: ToProductResponse(p),
		ShareText:       p.ShareText(),
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []domain.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

// ToProductListResponse pairs products with the session state. Count is
// the number of products returned, which differs from the session count
// while a search is active.
func ToProductListResponse(products []domain.Product, state service.SessionState) ProductListResponse {
	return ProductListResponse{
		Products:    ToProductResponseList(products),
		Count:       len(products),
		HasMore:     state.HasMoreData,
		IsFiltering: state.IsFiltering,
		IsSearching: state.IsSearching,
	}
}
