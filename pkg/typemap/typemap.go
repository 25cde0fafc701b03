// Package typemap maps source-declared types and raw sample values onto the
// canonical field types of the generated schema, and provides the
// field-level required/unique/attribute heuristics used by model analysis.
package typemap

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// RequiredThreshold is the fraction of samples that must carry a present,
// non-null, non-empty value for a field to be marked required.
const RequiredThreshold = 0.9

var (
	datePrefixPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	uuidPattern       = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// relationalTypes maps engine-native type names (postgres and mysql share
// one table; their overlapping names agree) to canonical types.
var relationalTypes = map[string]string{
	"varchar":           models.FieldTypeString,
	"character varying": models.FieldTypeString,
	"char":              models.FieldTypeString,
	"text":              models.FieldTypeString,
	"uuid":              models.FieldTypeString,
	"citext":            models.FieldTypeString,
	"smallint":          models.FieldTypeInt,
	"int":               models.FieldTypeInt,
	"integer":           models.FieldTypeInt,
	"serial":            models.FieldTypeInt,
	"bigint":            models.FieldTypeBigInt,
	"bigserial":         models.FieldTypeBigInt,
	"real":              models.FieldTypeFloat,
	"float":             models.FieldTypeFloat,
	"double":            models.FieldTypeFloat,
	"double precision":  models.FieldTypeFloat,
	"numeric":           models.FieldTypeDecimal,
	"decimal":           models.FieldTypeDecimal,
	"money":             models.FieldTypeDecimal,
	"bool":              models.FieldTypeBoolean,
	"boolean":           models.FieldTypeBoolean,
	"tinyint":           models.FieldTypeBoolean,
	"date":              models.FieldTypeDateTime,
	"timestamp":         models.FieldTypeDateTime,
	"timestamptz":       models.FieldTypeDateTime,
	"datetime":          models.FieldTypeDateTime,
	"json":              models.FieldTypeJSON,
	"jsonb":             models.FieldTypeJSON,
}

// semanticTypes maps the semantic hints that payment, commerce, and generic
// JSON sources declare on their fields.
var semanticTypes = map[string]string{
	"email":     models.FieldTypeString,
	"url":       models.FieldTypeString,
	"phone":     models.FieldTypeString,
	"slug":      models.FieldTypeString,
	"sku":       models.FieldTypeString,
	"currency":  models.FieldTypeString,
	"money":     models.FieldTypeDecimal,
	"price":     models.FieldTypeDecimal,
	"amount":    models.FieldTypeDecimal,
	"quantity":  models.FieldTypeInt,
	"count":     models.FieldTypeInt,
	"rating":    models.FieldTypeFloat,
	"flag":      models.FieldTypeBoolean,
	"timestamp": models.FieldTypeDateTime,
	"date":      models.FieldTypeDateTime,
	"json":      models.FieldTypeJSON,
}

// MapDeclaredType resolves a source-declared type name to a canonical type
// using the lookup table for the source kind. Unknown type names always fall
// back to String; a declared type is never an error.
func MapDeclaredType(sourceType string, kind models.SourceKind) string {
	name := strings.ToLower(strings.TrimSpace(sourceType))
	// Strip length/precision, e.g. varchar(255), numeric(10,2)
	if idx := strings.Index(name, "("); idx > 0 {
		name = strings.TrimSpace(name[:idx])
	}

	var table map[string]string
	switch kind {
	case models.SourceKindPostgres, models.SourceKindMySQL:
		table = relationalTypes
	default:
		table = semanticTypes
	}

	if canonical, ok := table[name]; ok {
		return canonical
	}
	return models.FieldTypeString
}

// InferTypeFromValue infers a canonical type from one raw sample value.
// Inference order is fixed: nulls become nullable String, date-prefixed
// strings become DateTime, all other strings stay String, whole numbers
// become Int, fractional numbers Float, booleans Boolean, non-empty arrays
// become lists of their first element's type, and anything structured is an
// opaque Json blob.
func InferTypeFromValue(value any) string {
	switch v := value.(type) {
	case nil:
		return models.FieldTypeString
	case string:
		if datePrefixPattern.MatchString(v) {
			return models.FieldTypeDateTime
		}
		// UUID, email, and URL shapes all stay String; the shape only
		// informs uniqueness and attribute heuristics downstream.
		return models.FieldTypeString
	case bool:
		return models.FieldTypeBoolean
	case int, int32, int64:
		return models.FieldTypeInt
	case float32:
		return inferNumeric(float64(v))
	case float64:
		return inferNumeric(v)
	case []any:
		if len(v) == 0 {
			return models.FieldTypeJSON
		}
		return InferTypeFromValue(v[0]) + "[]"
	default:
		return models.FieldTypeJSON
	}
}

// inferNumeric distinguishes whole-number samples from fractional ones.
// JSON decoding turns every number into float64, so 42 arrives as 42.0.
func inferNumeric(v float64) string {
	if v == float64(int64(v)) {
		return models.FieldTypeInt
	}
	return models.FieldTypeFloat
}

// IsUUIDShaped reports whether a string sample looks like a UUID.
func IsUUIDShaped(s string) bool {
	return uuidPattern.MatchString(s)
}

// IsEmailShaped reports whether a string sample looks like an email address.
func IsEmailShaped(s string) bool {
	return emailPattern.MatchString(s)
}

// IsURLShaped reports whether a string sample looks like a URL.
func IsURLShaped(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsRequired reports whether the fraction of samples with a present,
// non-null, non-empty value for the field exceeds RequiredThreshold.
func IsRequired(samples []map[string]any, fieldName string) bool {
	if len(samples) == 0 {
		return false
	}

	present := 0
	for _, sample := range samples {
		value, ok := sample[fieldName]
		if !ok || value == nil {
			continue
		}
		if s, isString := value.(string); isString && s == "" {
			continue
		}
		present++
	}

	return float64(present)/float64(len(samples)) > RequiredThreshold
}

// identifierLikeNames is the curated set of names that may carry a
// uniqueness constraint. Matching is case-insensitive substring.
var identifierLikeNames = []string{"id", "email", "username", "slug", "sku", "code"}

// IsUnique reports whether a field should carry a uniqueness constraint.
// Both conditions are necessary: all non-null sampled values must be
// pairwise distinct, and the field name must match the curated
// identifier-like name set. Distinct values under a generic name (notes,
// description) are coincidence, not a constraint.
func IsUnique(samples []map[string]any, fieldName string) bool {
	if !isIdentifierLikeName(fieldName) {
		return false
	}

	seen := make(map[string]bool)
	found := false
	for _, sample := range samples {
		value, ok := sample[fieldName]
		if !ok || value == nil {
			continue
		}
		key := fmt.Sprint(value)
		if seen[key] {
			return false
		}
		seen[key] = true
		found = true
	}
	return found
}

func isIdentifierLikeName(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, name := range identifierLikeNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

// HasIdentifierSuffix reports whether a field name looks like a reference
// to another entity: order_id, customerId, product_uuid, account_key.
func HasIdentifierSuffix(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	if lower == "id" || lower == "uuid" {
		return false // the row's own identifier, not a reference
	}
	return strings.HasSuffix(lower, "_id") ||
		strings.HasSuffix(lower, "_uuid") ||
		strings.HasSuffix(lower, "_key") ||
		(strings.HasSuffix(fieldName, "Id") && len(fieldName) > 2)
}

// AttributesFor returns the schema attributes implied by a field's name and
// canonical type: creation-timestamp naming defaults to the current time,
// update-timestamp naming auto-updates on write, and separator-containing
// names get an explicit column-name mapping.
func AttributesFor(fieldName, canonicalType string) []string {
	var attrs []string
	lower := strings.ToLower(fieldName)

	if canonicalType == models.FieldTypeDateTime {
		switch {
		case strings.Contains(lower, "created"):
			attrs = append(attrs, "@default(now())")
		case strings.Contains(lower, "updated"), strings.Contains(lower, "modified"):
			attrs = append(attrs, "@updatedAt")
		}
	}

	if strings.ContainsAny(fieldName, "_- ") {
		attrs = append(attrs, fmt.Sprintf("@map(%q)", fieldName))
	}

	return attrs
}
