package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/apperrors"
)

// SourceKind selects the entity-extraction rules applied to a data source.
type SourceKind string

const (
	SourceKindCommerce SourceKind = "commerce" // e-commerce platform exports (products/customers/orders)
	SourceKindPayments SourceKind = "payments" // payment processor exports (customers/payments/subscriptions)
	SourceKindPostgres SourceKind = "postgres" // relational samples keyed by table name
	SourceKindMySQL    SourceKind = "mysql"    // relational samples keyed by table name
	SourceKindGeneric  SourceKind = "generic"  // arbitrary JSON feeds
)

// ValidSourceKinds contains all source kinds with extraction rules.
// An unlisted kind contributes zero entities; it is not an error.
var ValidSourceKinds = []SourceKind{
	SourceKindCommerce,
	SourceKindPayments,
	SourceKindPostgres,
	SourceKindMySQL,
	SourceKindGeneric,
}

// DataSource is one named, kind-tagged bundle of sample records pulled from
// an external system. The payload is either a flat array of records or a
// nested object whose values may themselves be arrays of records. Inputs are
// never mutated by the pipeline.
type DataSource struct {
	Name     string         `json:"name" yaml:"name"`
	Kind     SourceKind     `json:"kind" yaml:"kind"`
	Payload  any            `json:"payload" yaml:"payload"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// SourceBundle is the wire format accepted by the generate endpoint and the
// fixture loader: an ordered list of data sources.
type SourceBundle struct {
	Sources []DataSource `json:"sources" yaml:"sources"`
}

// DecodeSourceBundle parses a source bundle from JSON or YAML bytes.
// JSON is tried first since most connector exports are JSON.
func DecodeSourceBundle(data []byte) (*SourceBundle, error) {
	var bundle SourceBundle
	if err := json.Unmarshal(data, &bundle); err == nil && bundle.Sources != nil {
		return &bundle, nil
	}
	if err := yaml.Unmarshal(data, &bundle); err == nil && bundle.Sources != nil {
		return &bundle, nil
	}
	return nil, fmt.Errorf("decode source bundle: %w", apperrors.ErrUnknownSourceBundle)
}

// RecordList coerces a payload value into a list of records. Returns nil
// when the value is not an array of objects.
func RecordList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		// Already-typed record lists appear when sources are built in Go
		// rather than decoded from JSON.
		if records, ok := v.([]map[string]any); ok {
			return records
		}
		return nil
	}

	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		records = append(records, record)
	}
	return records
}

// SubCollection returns the record list stored under key in an object
// payload, or nil when the payload is not an object or the key is absent.
func (s *DataSource) SubCollection(key string) []map[string]any {
	obj, ok := s.Payload.(map[string]any)
	if !ok {
		return nil
	}
	return RecordList(obj[key])
}
