package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/gitshopapp/gemcart/internal/db"
	"github.com/gitshopapp/gemcart/internal/logging"
	"github.com/gitshopapp/gemcart/internal/models"
	"github.com/gitshopapp/gemcart/internal/variant"
)

var (
	ErrPreconditionFailed = errors.New("wizard precondition failed")
	ErrStepConflict       = errors.New("product moved to another step")
	ErrFinalStep          = errors.New("product is already published")
	ErrForbidden          = errors.New("product belongs to another seller")
	ErrProductPublished   = errors.New("product is published and can no longer be edited")
)

type precondition struct {
	name  string
	check func(product *models.Product, variants []variant.Variant) error
}

// transitions maps a step to the checks that must pass before leaving it.
var transitions = map[models.WizardStep][]precondition{
	models.StepDetails: {
		{name: "product_identity", check: requireIdentity},
	},
	models.StepAttributes: {
		{name: "attribute_sets", check: requireAttributeSets},
	},
	models.StepVariants: {
		{name: "variants", check: requireVariants},
	},
	models.StepPricing: {
		{name: "priced", check: requirePricing},
	},
	models.StepReview: {
		{name: "variants", check: requireVariants},
		{name: "priced", check: requirePricing},
		{name: "no_orphans", check: requireNoOrphans},
	},
}

// ProductWizard walks a seller's product through the creation flow.
type ProductWizard struct {
	products productRepository
	variants variantRepository
	logger   *slog.Logger
}

func NewProductWizard(products productRepository, variants variantRepository, logger *slog.Logger) *ProductWizard {
	return &ProductWizard{
		products: products,
		variants: variants,
		logger:   logger,
	}
}

type CreateProductInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

func (w *ProductWizard) CreateProduct(ctx context.Context, sellerID string, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(sellerID) == "" {
		return nil, fmt.Errorf("%w: seller is required", ErrInvalidInput)
	}

	product := &models.Product{
		SellerID:    sellerID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Step:        models.StepDetails,
	}
	if err := w.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logging.FromContext(ctx, w.logger).Info("created product", "product_id", product.ID, "seller_id", sellerID)
	return product, nil
}

// Product returns the product when sellerID owns it.
func (w *ProductWizard) Product(ctx context.Context, sellerID string, productID uuid.UUID) (*models.Product, error) {
	product, err := w.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product.SellerID != sellerID {
		return nil, ErrForbidden
	}
	return product, nil
}

// EditableProduct is Product for variant edits, which stop once the
// product is published.
func (w *ProductWizard) EditableProduct(ctx context.Context, sellerID string, productID uuid.UUID) (*models.Product, error) {
	product, err := w.Product(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}
	if product.IsPublished() {
		return nil, ErrProductPublished
	}
	return product, nil
}

// PublishedProduct returns the product when shoppers may see it. Drafts are
// reported as not found.
func (w *ProductWizard) PublishedProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := w.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.IsPublished() {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return product, nil
}

// Advance moves the product one step forward once every precondition of
// its current step holds.
func (w *ProductWizard) Advance(ctx context.Context, sellerID string, productID uuid.UUID) (*models.Product, error) {
	ctx = logging.WithAttrs(ctx, w.logger, "product_id", productID)
	logger := logging.FromContext(ctx, w.logger)

	product, err := w.Product(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	next, ok := product.Step.Next()
	if !ok {
		return nil, ErrFinalStep
	}

	variants, err := w.variants.List(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	for _, pre := range transitions[product.Step] {
		if err := pre.check(product, variants); err != nil {
			logger.Info("wizard transition refused", "from", product.Step, "precondition", pre.name, "reason", err.Error())
			return nil, fmt.Errorf("%w: %s: %v", ErrPreconditionFailed, pre.name, err)
		}
	}

	updatedAt, err := w.products.AdvanceStep(ctx, productID, product.Step, next)
	if err != nil {
		if errors.Is(err, db.ErrInvalidStepTransition) {
			return nil, ErrStepConflict
		}
		return nil, fmt.Errorf("failed to advance product: %w", err)
	}

	logger.Info("wizard step advanced", "from", product.Step, "to", next)
	product.Step = next
	product.UpdatedAt = updatedAt
	return product, nil
}

func requireIdentity(product *models.Product, _ []variant.Variant) error {
	if !product.HasIdentity() {
		return errors.New("product has no ID yet")
	}
	if strings.TrimSpace(product.Name) == "" {
		return errors.New("product needs a name")
	}
	return nil
}

func requireAttributeSets(product *models.Product, _ []variant.Variant) error {
	for _, set := range product.AttributeSets {
		if set.Size() > 0 {
			return nil
		}
	}
	return variant.ErrEmptyAttributeSet
}

func requireVariants(_ *models.Product, variants []variant.Variant) error {
	if len(variants) == 0 {
		return errors.New("save at least one variant")
	}
	return nil
}

func requirePricing(_ *models.Product, variants []variant.Variant) error {
	var unpriced []string
	for _, v := range variants {
		if !v.Price.MRP.IsPositive() {
			unpriced = append(unpriced, v.SKU)
		}
	}
	if len(unpriced) > 0 {
		return fmt.Errorf("set an MRP for %s", strings.Join(unpriced, ", "))
	}
	return nil
}

// requireNoOrphans rejects variants whose combination the current attribute
// sets no longer produce.
func requireNoOrphans(product *models.Product, variants []variant.Variant) error {
	produced := map[string]struct{}{}
	for _, set := range product.AttributeSets {
		for _, combination := range variant.Combinations(set) {
			produced[combination.Key()] = struct{}{}
		}
	}

	var orphans []string
	for _, v := range variants {
		if _, ok := produced[v.Combination.Key()]; !ok {
			orphans = append(orphans, v.SKU)
		}
	}
	if len(orphans) > 0 {
		return fmt.Errorf("remove orphaned variants %s", strings.Join(orphans, ", "))
	}
	return nil
}
