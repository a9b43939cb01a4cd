package catalog

// Package catalog provides attribute catalog file parsing functionality.

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gitshopapp/gemcart/internal/variant"
)

type CatalogFile struct {
	Attributes []variant.Attribute `yaml:"attributes"`
}

func (f *CatalogFile) Catalog() variant.Catalog {
	return variant.NewCatalog(f.Attributes...)
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*CatalogFile, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &file, nil
}

func (p *Parser) ParseFromString(content string) (*CatalogFile, error) {
	return p.Parse([]byte(content))
}

// FileSource serves a catalog loaded from a YAML file on disk.
type FileSource struct {
	path      string
	parser    *Parser
	validator *Validator
}

func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:      path,
		parser:    NewParser(),
		validator: NewValidator(),
	}
}

// Catalog re-reads the file on every call; wrap it in a cache for hot paths.
func (s *FileSource) Catalog(_ context.Context) (variant.Catalog, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return variant.Catalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	file, err := s.parser.Parse(content)
	if err != nil {
		return variant.Catalog{}, err
	}
	if err := s.validator.Validate(file); err != nil {
		return variant.Catalog{}, fmt.Errorf("catalog file %s is invalid: %w", s.path, err)
	}

	return file.Catalog(), nil
}
