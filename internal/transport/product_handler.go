package transport

import (
	"fmt"
	"net/http"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/middleware"
	"catalog-api/internal/pagination"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest represents a product create payload. Categories may be
// supplied as ids (which must exist) or as names (which are created on
// first use); when both are present the names take precedence.
type ProductRequest struct {
	Name          string           `json:"name" validate:"required,max=255"`
	Description   string           `json:"description" validate:"required"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	ImageURL      string           `json:"image_url" validate:"omitempty,url,max=500"`
	Date          *time.Time       `json:"date"`
	CategoryIDs   []int64          `json:"category_ids"`
	CategoryNames []string         `json:"category_names"`
}

// UpdateProductRequest represents a partial product update. Absent scalar
// fields keep their stored values; category_ids replaces the whole
// association set when present, including when it is explicitly empty.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url,max=500"`
	Date        *time.Time       `json:"date"`
	CategoryIDs *[]int64         `json:"category_ids"`
}

// ProductResponse represents product data returned to clients
type ProductResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Price       decimal.Decimal    `json:"price"`
	ImageURL    string             `json:"image_url,omitempty"`
	Date        time.Time          `json:"date"`
	Categories  []CategoryResponse `json:"categories"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Reads are public;
// mutations require an authenticated admin.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles paginated product reads
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := h.catalogService.ListProducts(r.Context(), page, size)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		respondServiceError(w, h.logger, err)
		return
	}

	responses := make([]ProductResponse, 0, len(result.Items))
	for i := range result.Items {
		responses = append(responses, toProductResponse(&result.Items[i]))
	}

	pagination.SetHeaders(w, result, r.URL)
	middleware.RespondWithJSON(w, http.StatusOK, responses)
}

// Get handles a single product read
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// Create handles product creation, routing to the by-name or by-id
// association path depending on the request shape.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Price.IsPositive() {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{priceMustBePositive()})
		return
	}

	fields := service.ProductFields{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
		Date:        req.Date,
	}

	var product *domain.Product
	var err error
	if len(req.CategoryNames) > 0 {
		product, err = h.catalogService.CreateProductByNames(r.Context(), fields, req.CategoryNames)
	} else {
		product, err = h.catalogService.CreateProduct(r.Context(), fields, req.CategoryIDs)
	}
	if err != nil {
		h.logger.Debug("Product creation failed", zap.Error(err))
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID))
	w.Header().Set("Location", fmt.Sprintf("/api/products/%d", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update handles a partial product update
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Price != nil && !req.Price.IsPositive() {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{priceMustBePositive()})
		return
	}

	fields := service.UpdateProductFields{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Date:        req.Date,
		CategoryIDs: req.CategoryIDs,
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, fields)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Date:        p.Date,
		Categories:  toCategoryResponses(p.Categories),
	}
}

func priceMustBePositive() middleware.ValidationError {
	return middleware.ValidationError{Field: "price", Message: "Value must be greater than 0"}
}
