package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/gemcart/internal/models"
	"github.com/gitshopapp/gemcart/internal/variant"
)

type ProductStore struct {
	pool *pgxpool.Pool
}

var ErrInvalidStepTransition = errors.New("invalid wizard step transition")

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// Create assigns the product its backend identity.
func (s *ProductStore) Create(ctx context.Context, product *Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Step == "" {
		product.Step = models.StepDetails
	}

	setsJSON, err := marshalSets(product.AttributeSets)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, seller_id, name, description, step, attribute_sets)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return s.pool.QueryRow(ctx, query,
		product.ID, product.SellerID, product.Name, product.Description, string(product.Step), setsJSON,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (s *ProductStore) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT id, seller_id, name, description, step, attribute_sets, created_at, updated_at
		FROM products WHERE id = $1
	`
	var (
		product  Product
		step     string
		setsJSON []byte
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&product.ID, &product.SellerID, &product.Name, &product.Description,
		&step, &setsJSON, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	product.Step = models.WizardStep(step)

	if len(setsJSON) > 0 {
		if err := json.Unmarshal(setsJSON, &product.AttributeSets); err != nil {
			return nil, fmt.Errorf("failed to decode attribute sets: %w", err)
		}
	}

	return &product, nil
}

func (s *ProductStore) SaveAttributeSets(ctx context.Context, id uuid.UUID, sets []variant.AttributeSet) error {
	setsJSON, err := marshalSets(sets)
	if err != nil {
		return err
	}

	cmdTag, err := s.pool.Exec(ctx, `UPDATE products SET attribute_sets = $1, updated_at = NOW() WHERE id = $2`, setsJSON, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdvanceStep moves the product from one step to the next. It fails with
// ErrInvalidStepTransition when the stored step is no longer from.
func (s *ProductStore) AdvanceStep(ctx context.Context, id uuid.UUID, from, to models.WizardStep) (time.Time, error) {
	query := `
		UPDATE products
		SET step = $1, updated_at = NOW()
		WHERE id = $2 AND step = $3
		RETURNING updated_at
	`
	var updatedAt time.Time
	if err := s.pool.QueryRow(ctx, query, string(to), id, string(from)).Scan(&updatedAt); err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return time.Time{}, fmt.Errorf("%w: expected %s", ErrInvalidStepTransition, from)
		}
		return time.Time{}, err
	}
	return updatedAt, nil
}

func marshalSets(sets []variant.AttributeSet) ([]byte, error) {
	if sets == nil {
		sets = []variant.AttributeSet{}
	}
	setsJSON, err := json.Marshal(sets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attribute sets: %w", err)
	}
	return setsJSON, nil
}
