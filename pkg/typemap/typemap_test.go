package typemap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

func TestMapDeclaredType(t *testing.T) {
	tests := []struct {
		name       string
		sourceType string
		kind       models.SourceKind
		want       string
	}{
		{"postgres varchar", "varchar", models.SourceKindPostgres, models.FieldTypeString},
		{"postgres varchar with length", "varchar(255)", models.SourceKindPostgres, models.FieldTypeString},
		{"postgres numeric with precision", "numeric(10,2)", models.SourceKindPostgres, models.FieldTypeDecimal},
		{"postgres timestamptz", "timestamptz", models.SourceKindPostgres, models.FieldTypeDateTime},
		{"postgres jsonb", "jsonb", models.SourceKindPostgres, models.FieldTypeJSON},
		{"mysql bigint", "bigint", models.SourceKindMySQL, models.FieldTypeBigInt},
		{"mysql tinyint", "tinyint(1)", models.SourceKindMySQL, models.FieldTypeBoolean},
		{"uppercase engine type", "INTEGER", models.SourceKindPostgres, models.FieldTypeInt},
		{"semantic email", "email", models.SourceKindGeneric, models.FieldTypeString},
		{"semantic money", "money", models.SourceKindPayments, models.FieldTypeDecimal},
		{"semantic timestamp", "timestamp", models.SourceKindCommerce, models.FieldTypeDateTime},
		{"unknown relational type defaults to String", "hstore", models.SourceKindPostgres, models.FieldTypeString},
		{"unknown semantic hint defaults to String", "widget", models.SourceKindGeneric, models.FieldTypeString},
		{"empty type defaults to String", "", models.SourceKindGeneric, models.FieldTypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapDeclaredType(tt.sourceType, tt.kind))
		})
	}
}

func TestInferTypeFromValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, models.FieldTypeString},
		{"date-prefixed string", "2023-01-01", models.FieldTypeDateTime},
		{"full timestamp string", "2023-01-01T10:30:00Z", models.FieldTypeDateTime},
		{"uuid string stays String", "550e8400-e29b-41d4-a716-446655440000", models.FieldTypeString},
		{"email string stays String", "jo@example.com", models.FieldTypeString},
		{"url string stays String", "https://example.com/p/1", models.FieldTypeString},
		{"plain string", "hello", models.FieldTypeString},
		{"whole number", float64(42), models.FieldTypeInt},
		{"native int", 42, models.FieldTypeInt},
		{"fractional number", 3.14, models.FieldTypeFloat},
		{"boolean", true, models.FieldTypeBoolean},
		{"string array", []any{"a", "b"}, "String[]"},
		{"number array", []any{float64(1), float64(2)}, "Int[]"},
		{"empty array", []any{}, models.FieldTypeJSON},
		{"object", map[string]any{"k": "v"}, models.FieldTypeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferTypeFromValue(tt.value))
		})
	}
}

func TestIsRequired(t *testing.T) {
	// 95 of 100 samples present: 0.95 > 0.9 threshold
	samples := make([]map[string]any, 0, 100)
	for i := 0; i < 95; i++ {
		samples = append(samples, map[string]any{"status": "active"})
	}
	for i := 0; i < 5; i++ {
		samples = append(samples, map[string]any{})
	}
	assert.True(t, IsRequired(samples, "status"))

	// Exactly at the threshold is not enough: 90 of 100 is not > 0.9
	atThreshold := make([]map[string]any, 0, 100)
	for i := 0; i < 90; i++ {
		atThreshold = append(atThreshold, map[string]any{"status": "active"})
	}
	for i := 0; i < 10; i++ {
		atThreshold = append(atThreshold, map[string]any{})
	}
	assert.False(t, IsRequired(atThreshold, "status"))
}

func TestIsRequiredTreatsNullAndEmptyAsAbsent(t *testing.T) {
	samples := []map[string]any{
		{"name": "a"},
		{"name": nil},
		{"name": ""},
	}
	assert.False(t, IsRequired(samples, "name"))
	assert.False(t, IsRequired(nil, "name"))
}

func TestIsUnique(t *testing.T) {
	distinct := make([]map[string]any, 0, 10)
	for i := 0; i < 10; i++ {
		distinct = append(distinct, map[string]any{
			"sku":   fmt.Sprintf("SKU-%d", i),
			"notes": fmt.Sprintf("note %d", i),
		})
	}

	// Distinct values under an identifier-like name
	assert.True(t, IsUnique(distinct, "sku"))

	// The same distinct values under a generic name are not unique
	assert.False(t, IsUnique(distinct, "notes"))

	// Identifier-like name with a duplicate value
	withDupe := append(distinct, map[string]any{"sku": "SKU-0"})
	assert.False(t, IsUnique(withDupe, "sku"))

	// No non-null samples at all
	assert.False(t, IsUnique([]map[string]any{{"sku": nil}}, "sku"))
}

func TestHasIdentifierSuffix(t *testing.T) {
	tests := []struct {
		fieldName string
		want      bool
	}{
		{"customer_id", true},
		{"customerId", true},
		{"account_uuid", true},
		{"tenant_key", true},
		{"id", false},
		{"uuid", false},
		{"paid", false},
		{"status", false},
	}

	for _, tt := range tests {
		t.Run(tt.fieldName, func(t *testing.T) {
			assert.Equal(t, tt.want, HasIdentifierSuffix(tt.fieldName))
		})
	}
}

func TestAttributesFor(t *testing.T) {
	tests := []struct {
		name          string
		fieldName     string
		canonicalType string
		want          []string
	}{
		{"created timestamp", "created_at", models.FieldTypeDateTime, []string{"@default(now())", `@map("created_at")`}},
		{"updated timestamp", "updated_at", models.FieldTypeDateTime, []string{"@updatedAt", `@map("updated_at")`}},
		{"camel created timestamp", "createdAt", models.FieldTypeDateTime, []string{"@default(now())"}},
		{"separator name", "unit_price", models.FieldTypeFloat, []string{`@map("unit_price")`}},
		{"plain name", "status", models.FieldTypeString, nil},
		{"created but not datetime", "created_by", models.FieldTypeString, []string{`@map("created_by")`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AttributesFor(tt.fieldName, tt.canonicalType))
		})
	}
}
