package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid catalog",
			yaml: `
attributes:
  - id: 1
    name: "Color"
    values:
      - id: 101
        name: "Yellow"
      - id: 102
        name: "White"
  - id: 2
    name: "Purity"
    values:
      - id: 201
        name: 14K
`,
			wantErr: false,
		},
		{
			name:    "invalid yaml",
			yaml:    "invalid: yaml: content:",
			wantErr: true,
		},
	}

	parser := NewParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parser.ParseFromString(tt.yaml)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if file == nil {
				t.Error("expected catalog but got nil")
				return
			}

			if len(file.Attributes) != 2 {
				t.Fatalf("expected 2 attributes, got %d", len(file.Attributes))
			}

			name, ok := file.Catalog().ValueName(2, 201)
			if !ok || name != "14K" {
				t.Errorf("expected value name '14K', got '%s'", name)
			}
		})
	}
}

func TestFileSource_Catalog(t *testing.T) {
	t.Parallel()

	source := NewFileSource(filepath.Join("testdata", "catalog.yaml"))
	catalog, err := source.Catalog(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(catalog.Attributes) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(catalog.Attributes))
	}
	if name, ok := catalog.ValueName(3, 302); !ok || name != "7" {
		t.Fatalf("expected ring size 7, got %q", name)
	}
}

func TestFileSource_RejectsInvalidCatalog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := "attributes:\n  - id: 1\n    name: Color\n    values: []\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	if _, err := NewFileSource(path).Catalog(context.Background()); err == nil {
		t.Fatalf("expected validation error, got nil")
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := NewFileSource(filepath.Join(t.TempDir(), "missing.yaml")).Catalog(context.Background()); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
