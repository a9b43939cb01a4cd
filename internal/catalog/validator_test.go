package catalog

import (
	"testing"

	"github.com/gitshopapp/gemcart/internal/variant"
)

func testCatalogFile() *CatalogFile {
	return &CatalogFile{
		Attributes: []variant.Attribute{
			{ID: 1, Name: "Color", Values: []variant.AttributeValue{{ID: 101, Name: "Yellow"}, {ID: 102, Name: "White"}}},
			{ID: 2, Name: "Purity", Values: []variant.AttributeValue{{ID: 201, Name: "14K"}, {ID: 202, Name: "18K"}}},
		},
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    *CatalogFile
		wantErr bool
	}{
		{
			name:    "valid catalog",
			file:    testCatalogFile(),
			wantErr: false,
		},
		{
			name:    "nil catalog",
			file:    nil,
			wantErr: true,
		},
		{
			name:    "no attributes",
			file:    &CatalogFile{},
			wantErr: true,
		},
		{
			name: "duplicate attribute id",
			file: &CatalogFile{Attributes: []variant.Attribute{
				{ID: 1, Name: "Color", Values: []variant.AttributeValue{{ID: 1, Name: "Yellow"}}},
				{ID: 1, Name: "Metal", Values: []variant.AttributeValue{{ID: 2, Name: "Gold"}}},
			}},
			wantErr: true,
		},
		{
			name: "duplicate value name ignores case",
			file: &CatalogFile{Attributes: []variant.Attribute{
				{ID: 1, Name: "Purity", Values: []variant.AttributeValue{{ID: 1, Name: "14K"}, {ID: 2, Name: "14k"}}},
			}},
			wantErr: true,
		},
		{
			name: "blank value name",
			file: &CatalogFile{Attributes: []variant.Attribute{
				{ID: 1, Name: "Purity", Values: []variant.AttributeValue{{ID: 1, Name: "  "}}},
			}},
			wantErr: true,
		},
	}

	validator := NewValidator()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := validator.Validate(tc.file)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidator_ValidateSets(t *testing.T) {
	t.Parallel()

	catalog := testCatalogFile().Catalog()

	tests := []struct {
		name    string
		sets    []variant.AttributeSet
		wantErr bool
	}{
		{
			name: "valid sets",
			sets: []variant.AttributeSet{
				{{AttributeID: 1, ValueIDs: []int{101, 102}}, {AttributeID: 2, ValueIDs: []int{201}}},
			},
		},
		{
			name:    "empty set",
			sets:    []variant.AttributeSet{{}},
			wantErr: true,
		},
		{
			name:    "unknown attribute",
			sets:    []variant.AttributeSet{{{AttributeID: 9, ValueIDs: []int{1}}}},
			wantErr: true,
		},
		{
			name:    "unknown value",
			sets:    []variant.AttributeSet{{{AttributeID: 1, ValueIDs: []int{201}}}},
			wantErr: true,
		},
		{
			name:    "duplicate value",
			sets:    []variant.AttributeSet{{{AttributeID: 1, ValueIDs: []int{101, 101}}}},
			wantErr: true,
		},
		{
			name:    "attribute listed twice",
			sets:    []variant.AttributeSet{{{AttributeID: 1, ValueIDs: []int{101}}, {AttributeID: 1, ValueIDs: []int{102}}}},
			wantErr: true,
		},
		{
			name:    "no values",
			sets:    []variant.AttributeSet{{{AttributeID: 1}}},
			wantErr: true,
		},
	}

	validator := NewValidator()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := validator.ValidateSets(tc.sets, catalog)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}
