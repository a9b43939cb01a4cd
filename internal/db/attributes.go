package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/gemcart/internal/variant"
)

type AttributeStore struct {
	pool *pgxpool.Pool
}

func NewAttributeStore(pool *pgxpool.Pool) *AttributeStore {
	return &AttributeStore{pool: pool}
}

// Catalog loads every attribute with its values, both in display order.
func (s *AttributeStore) Catalog(ctx context.Context) (variant.Catalog, error) {
	query := `
		SELECT a.id, a.name, v.id, v.name
		FROM attributes a
		JOIN attribute_values v ON v.attribute_id = a.id
		ORDER BY a.position, a.id, v.position, v.id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return variant.Catalog{}, fmt.Errorf("failed to query attributes: %w", err)
	}
	defer rows.Close()

	var attributes []variant.Attribute
	for rows.Next() {
		var (
			attributeID   int32
			attributeName string
			value         variant.AttributeValue
			valueID       int32
		)
		if err := rows.Scan(&attributeID, &attributeName, &valueID, &value.Name); err != nil {
			return variant.Catalog{}, fmt.Errorf("failed to scan attribute: %w", err)
		}
		value.ID = int(valueID)

		last := len(attributes) - 1
		if last < 0 || attributes[last].ID != int(attributeID) {
			attributes = append(attributes, variant.Attribute{ID: int(attributeID), Name: attributeName})
			last++
		}
		attributes[last].Values = append(attributes[last].Values, value)
	}
	if err := rows.Err(); err != nil {
		return variant.Catalog{}, fmt.Errorf("failed to read attributes: %w", err)
	}

	return variant.NewCatalog(attributes...), nil
}

// Import makes catalog the stored attribute catalog, keeping the given order
// as display order. Attributes and values missing from catalog are deleted
// in the same transaction.
func (s *AttributeStore) Import(ctx context.Context, catalog variant.Catalog) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, attribute := range catalog.Attributes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO attributes (id, name, position) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position
		`, attribute.ID, attribute.Name, i); err != nil {
			return fmt.Errorf("failed to upsert attribute %d: %w", attribute.ID, err)
		}

		for j, value := range attribute.Values {
			if _, err := tx.Exec(ctx, `
				INSERT INTO attribute_values (attribute_id, id, name, position) VALUES ($1, $2, $3, $4)
				ON CONFLICT (attribute_id, id) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position
			`, attribute.ID, value.ID, value.Name, j); err != nil {
				return fmt.Errorf("failed to upsert value %d of attribute %d: %w", value.ID, attribute.ID, err)
			}
		}
	}

	attributeIDs, valueIDs := catalogIDs(catalog)
	for _, attributeID := range attributeIDs {
		if _, err := tx.Exec(ctx, `DELETE FROM attribute_values WHERE attribute_id = $1 AND NOT (id = ANY($2))`, attributeID, valueIDs[attributeID]); err != nil {
			return fmt.Errorf("failed to remove values of attribute %d: %w", attributeID, err)
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM attributes WHERE NOT (id = ANY($1))`, attributeIDs); err != nil {
		return fmt.Errorf("failed to remove attributes: %w", err)
	}

	return tx.Commit(ctx)
}

// catalogIDs lists the attribute IDs of catalog and the value IDs of each.
// Slices are never nil so they encode as empty arrays.
func catalogIDs(catalog variant.Catalog) ([]int32, map[int32][]int32) {
	attributeIDs := make([]int32, 0, len(catalog.Attributes))
	valueIDs := make(map[int32][]int32, len(catalog.Attributes))
	for _, attribute := range catalog.Attributes {
		id := int32(attribute.ID)
		attributeIDs = append(attributeIDs, id)
		values := make([]int32, 0, len(attribute.Values))
		for _, value := range attribute.Values {
			values = append(values, int32(value.ID))
		}
		valueIDs[id] = values
	}
	return attributeIDs, valueIDs
}
