package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/gemcart/internal/db"
	"github.com/gitshopapp/gemcart/internal/logging"
	"github.com/gitshopapp/gemcart/internal/models"
	"github.com/gitshopapp/gemcart/internal/variant"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrInvalidInput    = errors.New("invalid input")
)

type variantRepository interface {
	List(ctx context.Context, productID uuid.UUID) ([]variant.Variant, error)
	ReplaceAll(ctx context.Context, productID uuid.UUID, variants []variant.Variant) ([]variant.Variant, error)
}

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SaveAttributeSets(ctx context.Context, id uuid.UUID, sets []variant.AttributeSet) error
	AdvanceStep(ctx context.Context, id uuid.UUID, from, to models.WizardStep) (time.Time, error)
}

type setValidator interface {
	ValidateSets(sets []variant.AttributeSet, catalog variant.Catalog) error
}

// VariantService applies the variant engine to stored products. Every write
// replaces a product's whole variant list, and writes to one product are
// serialized within the process.
type VariantService struct {
	catalog   catalogSource
	products  productRepository
	variants  variantRepository
	validator setValidator
	builder   *variant.Builder
	locks     *keyedMutex
	logger    *slog.Logger
}

func NewVariantService(catalog catalogSource, products productRepository, variants variantRepository, validator setValidator, builder *variant.Builder, logger *slog.Logger) *VariantService {
	if builder == nil {
		builder = variant.NewBuilder(nil)
	}
	return &VariantService{
		catalog:   catalog,
		products:  products,
		variants:  variants,
		validator: validator,
		builder:   builder,
		locks:     newKeyedMutex(),
		logger:    logger,
	}
}

func (s *VariantService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type BuildResult struct {
	Groups     []variant.DraftGroup    `json:"groups"`
	Reconciled variant.ReconcileResult `json:"reconciled"`
}

// BuildVariants expands the seller's attribute sets and merges the drafts
// with the product's saved variants. Nothing is persisted except the sets
// themselves; the seller confirms the list with SaveVariants.
func (s *VariantService) BuildVariants(ctx context.Context, productID uuid.UUID, sets []variant.AttributeSet) (*BuildResult, error) {
	ctx = logging.WithAttrs(ctx, s.logger, "product_id", productID)
	logger := s.loggerFromContext(ctx)

	if _, err := s.product(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.builder.Validate(sets); err != nil {
		return nil, err
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateSets(sets, catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	persisted, err := s.variants.List(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	groups := s.builder.Rebuild(sets, catalog, persisted)
	reconciled := variant.Reconcile(persisted, variant.Flatten(groups))

	if err := s.products.SaveAttributeSets(ctx, productID, sets); err != nil {
		return nil, fmt.Errorf("failed to save attribute sets: %w", err)
	}

	logger.Info("built variants",
		"sets", len(sets),
		"added", len(reconciled.Added),
		"kept", len(reconciled.Kept),
		"orphaned", len(reconciled.Orphaned),
	)

	return &BuildResult{Groups: groups, Reconciled: reconciled}, nil
}

func (s *VariantService) ListVariants(ctx context.Context, productID uuid.UUID) ([]variant.Variant, error) {
	if _, err := s.product(ctx, productID); err != nil {
		return nil, err
	}
	variants, err := s.variants.List(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	return variants, nil
}

// SaveVariants replaces the product's variant list with variants.
func (s *VariantService) SaveVariants(ctx context.Context, productID uuid.UUID, variants []variant.Variant) ([]variant.Variant, error) {
	ctx = logging.WithAttrs(ctx, s.logger, "product_id", productID)

	if _, err := s.product(ctx, productID); err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, variant.ErrEmptyAttributeSet
	}

	seen := make(map[string]struct{}, len(variants))
	normalized := make([]variant.Variant, 0, len(variants))
	for _, v := range variants {
		v.SKU = strings.TrimSpace(v.SKU)
		if v.SKU == "" {
			return nil, fmt.Errorf("%w: every variant needs a SKU", ErrInvalidInput)
		}
		if _, dup := seen[v.SKU]; dup {
			return nil, fmt.Errorf("%w: duplicate SKU %s", ErrInvalidInput, v.SKU)
		}
		seen[v.SKU] = struct{}{}

		if err := validateVariant(v); err != nil {
			return nil, err
		}
		v.Normalize()
		normalized = append(normalized, v)
	}

	unlock := s.locks.Lock(productID)
	defer unlock()

	saved, err := s.variants.ReplaceAll(ctx, productID, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to save variants: %w", err)
	}

	s.loggerFromContext(ctx).Info("saved variants", "count", len(saved))
	return saved, nil
}

type PricingUpdate struct {
	Variant variant.Variant     `json:"variant"`
	Result  variant.PriceResult `json:"result"`
}

// UpdatePricing reprices one variant and stores the list. Result.Clamped
// tells the caller the discount exceeded the MRP.
func (s *VariantService) UpdatePricing(ctx context.Context, productID uuid.UUID, sku string, mrp decimal.Decimal, discount variant.DiscountRule) (*PricingUpdate, error) {
	ctx = logging.WithAttrs(ctx, s.logger, "product_id", productID, "sku", sku)

	if err := variant.ValidateAmount(mrp); err != nil {
		return nil, fmt.Errorf("%w: mrp %v", ErrInvalidInput, err)
	}
	if err := discount.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var result variant.PriceResult
	updated, err := s.mutateVariant(ctx, productID, sku, func(v *variant.Variant) error {
		result = v.Reprice(mrp, discount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Clamped {
		s.loggerFromContext(ctx).Warn("discount exceeds mrp, selling price clamped to zero", "mrp", mrp.String(), "discount", discount.Value.String())
	}
	return &PricingUpdate{Variant: updated, Result: result}, nil
}

func (s *VariantService) UpdateStock(ctx context.Context, productID uuid.UUID, sku string, stock int) (*variant.Variant, error) {
	ctx = logging.WithAttrs(ctx, s.logger, "product_id", productID, "sku", sku)

	updated, err := s.mutateVariant(ctx, productID, sku, func(v *variant.Variant) error {
		if err := v.SetStock(stock); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *VariantService) mutateVariant(ctx context.Context, productID uuid.UUID, sku string, mutate func(v *variant.Variant) error) (variant.Variant, error) {
	if _, err := s.product(ctx, productID); err != nil {
		return variant.Variant{}, err
	}

	unlock := s.locks.Lock(productID)
	defer unlock()

	list, err := s.variants.List(ctx, productID)
	if err != nil {
		return variant.Variant{}, fmt.Errorf("failed to list variants: %w", err)
	}

	idx, ok := variant.FindBySKU(list, sku)
	if !ok {
		return variant.Variant{}, fmt.Errorf("%w: %s", ErrVariantNotFound, sku)
	}

	target := list[idx]
	if err := mutate(&target); err != nil {
		return variant.Variant{}, err
	}

	saved, err := s.variants.ReplaceAll(ctx, productID, variant.Upsert(list, target))
	if err != nil {
		return variant.Variant{}, fmt.Errorf("failed to save variants: %w", err)
	}

	idx, ok = variant.FindBySKU(saved, sku)
	if !ok {
		return variant.Variant{}, fmt.Errorf("%w: %s", ErrVariantNotFound, sku)
	}

	s.loggerFromContext(ctx).Info("updated variant",
		"stock", saved[idx].Stock,
		"selling_price", variant.FormatPrice(saved[idx].Price.SellingPrice),
	)
	return saved[idx], nil
}

type SelectionResult struct {
	Resolution variant.Resolution `json:"resolution"`
	Selection  variant.Selection  `json:"selection"`
	Axes       []int              `json:"axes"`
	Available  map[int][]int      `json:"available"`
}

// Resolve answers a shopper's selection against the product's variants.
func (s *VariantService) Resolve(ctx context.Context, productID uuid.UUID, selection variant.Selection) (*SelectionResult, error) {
	variants, err := s.ListVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	return resolveSelection(variants, selection), nil
}

// DefaultSelection is the selection a product page opens with.
func (s *VariantService) DefaultSelection(ctx context.Context, productID uuid.UUID) (*SelectionResult, error) {
	variants, err := s.ListVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	return resolveSelection(variants, variant.SeedSelection(variants)), nil
}

func resolveSelection(variants []variant.Variant, selection variant.Selection) *SelectionResult {
	if selection == nil {
		selection = variant.Selection{}
	}
	axes := variant.RequiredAxes(variants)
	available := make(map[int][]int, len(axes))
	for _, axis := range axes {
		available[axis] = variant.AvailableValues(variants, selection, axis)
	}

	return &SelectionResult{
		Resolution: variant.Select(variants, selection, axes),
		Selection:  selection,
		Axes:       axes,
		Available:  available,
	}
}

func (s *VariantService) product(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func validateVariant(v variant.Variant) error {
	if v.Stock < 0 {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, v.SKU, variant.ErrNegativeStock)
	}
	if err := variant.ValidateAmount(v.Price.MRP); err != nil {
		return fmt.Errorf("%w: %s: mrp %v", ErrInvalidInput, v.SKU, err)
	}
	if err := v.Discount.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, v.SKU, err)
	}
	if len(v.Combination) == 0 {
		return fmt.Errorf("%w: %s: combination is required", ErrInvalidInput, v.SKU)
	}
	return nil
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[uuid.UUID]*keyedLock{}}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *keyedMutex) Lock(key uuid.UUID) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &keyedLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		k.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
