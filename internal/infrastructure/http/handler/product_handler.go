package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mrops-br/shopping-browser-api/internal/app/dto"
	"github.com/mrops-br/shopping-browser-api/internal/app/service"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/http/response"
)

// ProductHandler handles HTTP requests for products, categories and filters
type ProductHandler struct {
	session *service.BrowseSession
	catalog *service.CatalogStore
	images  *service.ImageLoader
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(
	session *service.BrowseSession,
	catalog *service.CatalogStore,
	images *service.ImageLoader,
	logger *slog.Logger,
) *ProductHandler {
	return &ProductHandler{
		session: session,
		catalog: catalog,
		images:  images,
		logger:  logger,
	}
}

// ListProducts handles GET /products. A q parameter runs a title search;
// an empty q ends the search.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.session.Visible()
	if query := r.URL.Query(); query.Has("q") {
		products = h.session.Search(query.Get("q"))
	}

	response.JSON(w, http.StatusOK, dto.ToProductListResponse(products, h.session.State()))
}

// LoadProducts handles POST /products/load
func (h *ProductHandler) LoadProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.session.Load(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductListResponse(products, h.session.State()))
}

// LoadMoreProducts handles POST /products/more
func (h *ProductHandler) LoadMoreProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.session.LoadMore(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductListResponse(products, h.session.State()))
}

// RefreshProducts handles POST /products/refresh
func (h *ProductHandler) RefreshProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.session.Refresh(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductListResponse(products, h.session.State()))
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	product, err := h.catalog.FindProduct(id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductDetailResponse(product))
}

// GetProductThumbnail handles GET /products/{id}/thumbnail
func (h *ProductHandler) GetProductThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	product, err := h.catalog.FindProduct(id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	data, err := h.images.Load(r.Context(), product).Await(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Binary(w, "", data)
}

// ListCategories handles GET /categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, dto.ToCategoryResponseList(h.session.Categories()))
}

// ListAllCategories handles GET /categories/all
func (h *ProductHandler) ListAllCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.FetchRemoteCategories(r.Context()).Await(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToCategoryResponseList(categories))
}

// ApplyFilters handles POST /filters
func (h *ProductHandler) ApplyFilters(w http.ResponseWriter, r *http.Request) {
	var req dto.ApplyFiltersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	min, max, err := req.PriceRange()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	products, err := h.session.ApplyFilters(r.Context(), req.CategoryIDs, min, max)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductListResponse(products, h.session.State()))
}

// ResetFilters handles DELETE /filters
func (h *ProductHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	products := h.session.ResetFilterMode(r.Context())

	response.JSON(w, http.StatusOK, dto.ToProductListResponse(products, h.session.State()))
}
