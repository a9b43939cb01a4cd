package db

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/gemcart/internal/variant"
)

// VariantStore persists a product's authoritative variant list.
type VariantStore struct {
	pool *pgxpool.Pool
}

func NewVariantStore(pool *pgxpool.Pool) *VariantStore {
	return &VariantStore{pool: pool}
}

type variantRow struct {
	ID            uuid.UUID
	SKU           string
	Combination   []byte
	Stock         int32
	MRP           string
	DiscountType  string
	DiscountValue string
}

func (s *VariantStore) List(ctx context.Context, productID uuid.UUID) ([]variant.Variant, error) {
	query := `
		SELECT id, sku, combination, stock, mrp::text, discount_type, discount_value::text
		FROM product_variants
		WHERE product_id = $1
		ORDER BY position, created_at
	`
	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	variants := []variant.Variant{}
	for rows.Next() {
		var row variantRow
		if err := rows.Scan(&row.ID, &row.SKU, &row.Combination, &row.Stock, &row.MRP, &row.DiscountType, &row.DiscountValue); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		v, err := rowToVariant(row)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read variants: %w", err)
	}

	return variants, nil
}

// ReplaceAll makes variants the product's complete variant list in a single
// transaction. Incoming records are matched to stored rows by backend ID,
// then by SKU, so a kept ID with a new SKU renames its row. Unmatched
// records get a new ID and stored rows nobody matched are deleted. The
// (product_id, sku) constraint is checked at commit, which lets SKUs swap
// between rows. The returned list carries backend IDs.
func (s *VariantStore) ReplaceAll(ctx context.Context, productID uuid.UUID, variants []variant.Variant) ([]variant.Variant, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT id, sku FROM product_variants WHERE product_id = $1 FOR UPDATE`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock variants: %w", err)
	}
	var stored []storedVariant
	for rows.Next() {
		var row storedVariant
		if err := rows.Scan(&row.ID, &row.SKU); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		stored = append(stored, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read variants: %w", err)
	}

	variants = assignVariantIDs(stored, variants, uuid.New)
	ids := make([]uuid.UUID, 0, len(variants))
	for _, v := range variants {
		ids = append(ids, v.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1 AND NOT (id = ANY($2))`, productID, ids); err != nil {
		return nil, fmt.Errorf("failed to remove stale variants: %w", err)
	}

	query := `
		INSERT INTO product_variants (
			id, product_id, sku, combination, stock, mrp, selling_price, discount_type, discount_value, position
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8, $9::numeric, $10)
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku,
			combination = EXCLUDED.combination,
			stock = EXCLUDED.stock,
			mrp = EXCLUDED.mrp,
			selling_price = EXCLUDED.selling_price,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			position = EXCLUDED.position,
			updated_at = NOW()
		WHERE product_variants.product_id = EXCLUDED.product_id
		RETURNING id
	`

	saved := make([]variant.Variant, 0, len(variants))
	for i, v := range variants {
		v.Normalize()

		combinationJSON, err := json.Marshal(v.Combination)
		if err != nil {
			return nil, fmt.Errorf("failed to encode combination for %s: %w", v.SKU, err)
		}
		stock, err := intToInt32(v.Stock, "stock")
		if err != nil {
			return nil, err
		}

		if err := tx.QueryRow(ctx, query,
			v.ID, productID, v.SKU, combinationJSON, stock,
			v.Price.MRP.String(), v.Price.SellingPrice.String(),
			string(v.Discount.Type), v.Discount.Value.String(), i,
		).Scan(&v.ID); err != nil {
			return nil, fmt.Errorf("failed to save variant %s: %w", v.SKU, err)
		}

		saved = append(saved, v)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit variants: %w", err)
	}

	return saved, nil
}

type storedVariant struct {
	ID  uuid.UUID
	SKU string
}

// assignVariantIDs gives every incoming record the ID of the stored row it
// replaces. A record keeps its ID when that ID is one of the product's
// rows; otherwise it takes over an unclaimed row with the same SKU. The
// rest get a fresh ID, so an ID from another product is never reused.
func assignVariantIDs(stored []storedVariant, incoming []variant.Variant, newID func() uuid.UUID) []variant.Variant {
	out := slices.Clone(incoming)

	owned := make(map[uuid.UUID]bool, len(stored))
	bySKU := make(map[string]uuid.UUID, len(stored))
	for _, row := range stored {
		owned[row.ID] = true
		bySKU[row.SKU] = row.ID
	}

	claimed := make(map[uuid.UUID]bool, len(out))
	resolved := make([]bool, len(out))
	for i := range out {
		if owned[out[i].ID] && !claimed[out[i].ID] {
			claimed[out[i].ID] = true
			resolved[i] = true
		}
	}

	for i := range out {
		if resolved[i] {
			continue
		}
		if id, ok := bySKU[out[i].SKU]; ok && !claimed[id] {
			out[i].ID = id
		} else {
			out[i].ID = newID()
		}
		claimed[out[i].ID] = true
	}

	return out
}

func rowToVariant(row variantRow) (variant.Variant, error) {
	v := variant.Variant{
		ID:    row.ID,
		SKU:   row.SKU,
		Stock: int(row.Stock),
	}

	if err := json.Unmarshal(row.Combination, &v.Combination); err != nil {
		return variant.Variant{}, fmt.Errorf("failed to decode combination for %s: %w", row.SKU, err)
	}

	mrp, err := decimal.NewFromString(row.MRP)
	if err != nil {
		return variant.Variant{}, fmt.Errorf("invalid mrp for %s: %w", row.SKU, err)
	}
	discountValue, err := decimal.NewFromString(row.DiscountValue)
	if err != nil {
		return variant.Variant{}, fmt.Errorf("invalid discount for %s: %w", row.SKU, err)
	}

	v.Price.MRP = mrp
	v.Discount = variant.DiscountRule{Type: variant.DiscountType(row.DiscountType), Value: discountValue}
	v.Normalize()
	return v, nil
}

func intToInt32(value int, name string) (int32, error) {
	if value < math.MinInt32 || value > math.MaxInt32 {
		return 0, fmt.Errorf("%s out of int32 range: %d", name, value)
	}
	return int32(value), nil
}
