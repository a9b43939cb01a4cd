package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gitshopapp/gemcart/internal/db"
	"github.com/gitshopapp/gemcart/internal/models"
	"github.com/gitshopapp/gemcart/internal/variant"
)

const (
	attrColor  = 1
	attrPurity = 2

	valueYellow = 101
	valueWhite  = 102
	value14K    = 201
	value18K    = 202
)

func testCatalog() variant.Catalog {
	return variant.NewCatalog(
		variant.Attribute{ID: attrColor, Name: "Color", Values: []variant.AttributeValue{
			{ID: valueYellow, Name: "Yellow"},
			{ID: valueWhite, Name: "White"},
		}},
		variant.Attribute{ID: attrPurity, Name: "Purity", Values: []variant.AttributeValue{
			{ID: value14K, Name: "14K"},
			{ID: value18K, Name: "18K"},
		}},
	)
}

func ringSet() variant.AttributeSet {
	return variant.AttributeSet{
		{AttributeID: attrColor, ValueIDs: []int{valueYellow, valueWhite}},
		{AttributeID: attrPurity, ValueIDs: []int{value14K, value18K}},
	}
}

type staticCatalog struct {
	catalog variant.Catalog
	err     error
	calls   int
}

func (s *staticCatalog) Catalog(context.Context) (variant.Catalog, error) {
	s.calls++
	return s.catalog, s.err
}

type memoryProducts struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
}

func newMemoryProducts(products ...models.Product) *memoryProducts {
	store := &memoryProducts{products: map[uuid.UUID]models.Product{}}
	for _, p := range products {
		store.products[p.ID] = p
	}
	return store
}

func (m *memoryProducts) Create(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	m.products[product.ID] = *product
	return nil
}

func (m *memoryProducts) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &product, nil
}

func (m *memoryProducts) SaveAttributeSets(_ context.Context, id uuid.UUID, sets []variant.AttributeSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return db.ErrNotFound
	}
	product.AttributeSets = sets
	m.products[id] = product
	return nil
}

func (m *memoryProducts) AdvanceStep(_ context.Context, id uuid.UUID, from, to models.WizardStep) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok || product.Step != from {
		return time.Time{}, db.ErrInvalidStepTransition
	}
	product.Step = to
	product.UpdatedAt = time.Now()
	m.products[id] = product
	return product.UpdatedAt, nil
}

type memoryVariants struct {
	mu       sync.Mutex
	variants map[uuid.UUID][]variant.Variant
	failSave error
}

func newMemoryVariants() *memoryVariants {
	return &memoryVariants{variants: map[uuid.UUID][]variant.Variant{}}
}

func (m *memoryVariants) List(_ context.Context, productID uuid.UUID) ([]variant.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.variants[productID]), nil
}

// ReplaceAll mirrors the store: existing SKUs keep their ID, new ones get one.
func (m *memoryVariants) ReplaceAll(_ context.Context, productID uuid.UUID, variants []variant.Variant) ([]variant.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return nil, m.failSave
	}

	existing := m.variants[productID]
	saved := make([]variant.Variant, 0, len(variants))
	for _, v := range variants {
		if idx, ok := variant.FindBySKU(existing, v.SKU); ok {
			v.ID = existing[idx].ID
		} else if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		saved = append(saved, v)
	}
	m.variants[productID] = saved
	return slices.Clone(saved), nil
}

var errStoreDown = errors.New("store down")
