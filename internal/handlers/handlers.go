package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/gemcart/internal/logging"
	"github.com/gitshopapp/gemcart/internal/models"
	"github.com/gitshopapp/gemcart/internal/services"
	"github.com/gitshopapp/gemcart/internal/variant"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

type pinger interface {
	Ping(ctx context.Context) error
}

type catalogReader interface {
	Catalog(ctx context.Context) (variant.Catalog, error)
}

type variantService interface {
	BuildVariants(ctx context.Context, productID uuid.UUID, sets []variant.AttributeSet) (*services.BuildResult, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]variant.Variant, error)
	SaveVariants(ctx context.Context, productID uuid.UUID, variants []variant.Variant) ([]variant.Variant, error)
	UpdatePricing(ctx context.Context, productID uuid.UUID, sku string, mrp decimal.Decimal, discount variant.DiscountRule) (*services.PricingUpdate, error)
	UpdateStock(ctx context.Context, productID uuid.UUID, sku string, stock int) (*variant.Variant, error)
	Resolve(ctx context.Context, productID uuid.UUID, selection variant.Selection) (*services.SelectionResult, error)
	DefaultSelection(ctx context.Context, productID uuid.UUID) (*services.SelectionResult, error)
}

type productWizard interface {
	CreateProduct(ctx context.Context, sellerID string, input services.CreateProductInput) (*models.Product, error)
	EditableProduct(ctx context.Context, sellerID string, productID uuid.UUID) (*models.Product, error)
	PublishedProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	Advance(ctx context.Context, sellerID string, productID uuid.UUID) (*models.Product, error)
}

// Handlers provides HTTP request handlers for the storefront and seller APIs.
type Handlers struct {
	db        pinger
	catalog   catalogReader
	variants  variantService
	wizard    productWizard
	sellerJWT SellerAuthConfig
	validate  *validator.Validate
	logger    *slog.Logger
}

type Dependencies struct {
	DB             pinger
	Catalog        catalogReader
	VariantService variantService
	ProductWizard  productWizard
	SellerAuth     SellerAuthConfig
	Logger         *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("handlers dependencies: catalog is required")
	}
	if deps.VariantService == nil {
		return nil, fmt.Errorf("handlers dependencies: variantService is required")
	}
	if deps.ProductWizard == nil {
		return nil, fmt.Errorf("handlers dependencies: productWizard is required")
	}
	if len(deps.SellerAuth.Secret) == 0 {
		return nil, fmt.Errorf("handlers dependencies: seller auth secret is required")
	}

	return &Handlers{
		db:        deps.DB,
		catalog:   deps.Catalog,
		variants:  deps.VariantService,
		wizard:    deps.ProductWizard,
		sellerJWT: deps.SellerAuth,
		validate:  validator.New(),
		logger:    logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged and reported without detail.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.loggerFromContext(r.Context()).Error("request failed", "error", err)
	} else {
		h.loggerFromContext(r.Context()).Info("request rejected", "status", status, "reason", err.Error())
	}
	h.writeJSON(w, r, status, errorResponse{Error: message})
}

func errorStatus(err error) (int, string) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, validationMessage(validationErrs)
	case errors.Is(err, variant.ErrEmptyAttributeSet):
		return http.StatusBadRequest, "add at least one attribute"
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, variant.ErrInvalidDiscount),
		errors.Is(err, variant.ErrInvalidAmount),
		errors.Is(err, variant.ErrNegativeStock),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, services.ErrVariantNotFound):
		return http.StatusNotFound, "variant not found"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrPreconditionFailed):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrStepConflict),
		errors.Is(err, services.ErrFinalStep),
		errors.Is(err, services.ErrProductPublished):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

var errBadRequest = errors.New("bad request")

// decodeJSON reads a size-limited JSON body into dst and runs struct
// validation on it.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	return h.validate.Struct(dst)
}

func productIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(mux.Vars(r)["id"])
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid product id %q", errBadRequest, raw)
	}
	return id, nil
}
