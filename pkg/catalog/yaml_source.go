package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the on-disk layout:
//
//	plans:
//	  - id: pro
//	    name: Pro
//	    features: [api, sso]
//	    prices:
//	      - id: pri_pro_monthly
//	        amount: 1900
//	        currency: USD
//	        billing_cycle: monthly
type yamlDocument struct {
	Plans []Plan `yaml:"plans"`
}

type yamlFileSource struct {
	path string
}

// NewYAMLFileSource returns a Source reading plans from a YAML file.
// The file is read on every Load call; the catalog itself loads only once.
func NewYAMLFileSource(path string) Source {
	return &yamlFileSource{path: path}
}

func (s *yamlFileSource) Load(ctx context.Context) ([]Plan, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return DecodeYAML(f)
}

// DecodeYAML parses a catalog document from r.
// Unknown fields are rejected to catch typos in hand-edited files.
func DecodeYAML(r io.Reader) ([]Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return doc.Plans, nil
}
