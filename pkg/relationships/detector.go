// Package relationships infers foreign-key, array-based, and junction-table
// relationships between canonical models using naming-convention and
// value-shape heuristics. Inference is deterministic and explainable, not
// sound: it can over- and under-match, and downstream consumers treat the
// result as a proposal.
package relationships

import (
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/typemap"
)

// ModelSamples pairs one analyzed model with the raw sample records it was
// analyzed from. The detector depends only on this shape, not on the
// analyzer itself.
type ModelSamples struct {
	Model   *models.AnalyzedModel
	Samples []map[string]any
}

// DetectionResult is the outcome of one detector run.
type DetectionResult struct {
	Relationships []models.Relationship
	// JunctionModels names the models collapsed into many-to-many
	// relationships. They carry no information beyond their two foreign
	// keys and are dropped from the final model set.
	JunctionModels []string
}

// Detector infers relationships across a set of canonical models.
type Detector interface {
	// Detect runs every strategy in order and returns the deduplicated
	// relationship list plus the junction models to collapse.
	Detect(inputs []ModelSamples) *DetectionResult

	// RenderRelationClause renders the schema clause pair for one
	// relationship: the text for the from-model side and the to-model side.
	RenderRelationClause(rel models.Relationship) (string, string)
}

type detector struct {
	logger *zap.Logger
}

// NewDetector creates a new relationship detector.
func NewDetector(logger *zap.Logger) Detector {
	return &detector{logger: logger.Named("relationship-detector")}
}

var _ Detector = (*detector)(nil)

// strategy is one independent detection heuristic. Strategies return
// candidate relationships; merging and deduplication live outside them, so
// heuristics can be added or removed without touching that logic.
type strategy struct {
	name   string
	detect func(d *detector, inputs []ModelSamples, result *DetectionResult)
}

// strategies run in a fixed order; the dedupe rule is first occurrence wins,
// so order is part of the contract.
var strategies = []strategy{
	{name: "foreign_key", detect: (*detector).detectForeignKeys},
	{name: "array_value", detect: (*detector).detectArrays},
	{name: "junction_table", detect: (*detector).detectJunctions},
}

func (d *detector) Detect(inputs []ModelSamples) *DetectionResult {
	raw := &DetectionResult{}
	for _, s := range strategies {
		before := len(raw.Relationships)
		s.detect(d, inputs, raw)
		d.logger.Debug("Detection strategy complete",
			zap.String("strategy", s.name),
			zap.Int("candidates", len(raw.Relationships)-before))
	}

	// Deduplicate by (from, to, fromField, toField); first occurrence wins.
	seen := make(map[string]bool)
	result := &DetectionResult{JunctionModels: raw.JunctionModels}
	for _, rel := range raw.Relationships {
		key := rel.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		result.Relationships = append(result.Relationships, rel)
	}

	return result
}

// detectForeignKeys matches identifier-suffix field names against every
// other model's normalized name. A match on a different model emits a
// one-to-many with the scalar foreign key on the current model and
// cascade-delete by default.
func (d *detector) detectForeignKeys(inputs []ModelSamples, result *DetectionResult) {
	for _, input := range inputs {
		for _, field := range input.Model.NaturalFields() {
			if !typemap.HasIdentifierSuffix(field.Name) {
				continue
			}
			base := stripIdentifierSuffix(field.Name)

			var matches []string
			for _, other := range inputs {
				if other.Model.Name == input.Model.Name {
					continue // direct FKs require distinct models
				}
				if normalizeName(base) == normalizeName(other.Model.Name) {
					matches = append(matches, other.Model.Name)
				}
			}
			if len(matches) == 0 {
				continue
			}

			confidence := 0.9
			if len(matches) > 1 {
				// Non-canonical tie-break: first match by iteration order.
				confidence = 0.6
				d.logger.Warn("Ambiguous foreign-key reference, keeping first match",
					zap.String("model", input.Model.Name),
					zap.String("field", field.Name),
					zap.Strings("candidates", matches))
			}

			result.Relationships = append(result.Relationships, models.Relationship{
				FromModel:       input.Model.Name,
				ToModel:         matches[0],
				Cardinality:     models.CardinalityOneToMany,
				FromField:       field.Name,
				ToField:         models.PrimaryKeyFieldName,
				OnDelete:        models.OnDeleteCascade,
				DetectionMethod: models.DetectionMethodForeignKey,
				Confidence:      confidence,
			})
		}
	}
}

// detectArrays emits a many-to-many for any field whose first sample is a
// non-empty array of primitives. The target model is the singularized,
// capitalized field name, whether or not that model exists.
func (d *detector) detectArrays(inputs []ModelSamples, result *DetectionResult) {
	for _, input := range inputs {
		for _, field := range input.Model.NaturalFields() {
			value, ok := firstSampleValue(input.Samples, field.Name)
			if !ok {
				continue
			}
			items, ok := value.([]any)
			if !ok || len(items) == 0 || !isPrimitive(items[0]) {
				continue
			}

			target := capitalizedSingular(field.Name)
			result.Relationships = append(result.Relationships, models.Relationship{
				FromModel:       input.Model.Name,
				ToModel:         target,
				Cardinality:     models.CardinalityManyToMany,
				FromField:       field.Name,
				ToField:         models.PrimaryKeyFieldName,
				DetectionMethod: models.DetectionMethodArray,
				Confidence:      0.5,
			})
		}
	}
}

// detectJunctions collapses pure join tables: a model whose natural fields
// are exactly two identifier-suffix fields, both resolving to other models,
// becomes one many-to-many between the two referenced models. The junction
// itself is dropped from the output set, which loses any attributes it
// carried; a junction with extra attributes is left alone for that reason.
func (d *detector) detectJunctions(inputs []ModelSamples, result *DetectionResult) {
	for _, input := range inputs {
		natural := input.Model.NaturalFields()
		if len(natural) != 2 {
			continue
		}
		if !typemap.HasIdentifierSuffix(natural[0].Name) || !typemap.HasIdentifierSuffix(natural[1].Name) {
			continue
		}

		left := resolveModel(inputs, input.Model.Name, stripIdentifierSuffix(natural[0].Name))
		right := resolveModel(inputs, input.Model.Name, stripIdentifierSuffix(natural[1].Name))
		if left == "" || right == "" {
			continue
		}

		result.JunctionModels = append(result.JunctionModels, input.Model.Name)
		result.Relationships = append(result.Relationships, models.Relationship{
			FromModel:       left,
			ToModel:         right,
			Cardinality:     models.CardinalityManyToMany,
			FromField:       natural[0].Name,
			ToField:         natural[1].Name,
			DetectionMethod: models.DetectionMethodJunction,
			Confidence:      0.8,
		})

		d.logger.Debug("Collapsed junction model",
			zap.String("junction", input.Model.Name),
			zap.String("left", left),
			zap.String("right", right))
	}
}

// resolveModel finds the model whose normalized name matches a stripped
// reference base, excluding the referencing model itself.
func resolveModel(inputs []ModelSamples, self, base string) string {
	for _, input := range inputs {
		if input.Model.Name == self {
			continue
		}
		if normalizeName(base) == normalizeName(input.Model.Name) {
			return input.Model.Name
		}
	}
	return ""
}

// firstSampleValue returns the field value from the first sample record
// that carries the field.
func firstSampleValue(samples []map[string]any, fieldName string) (any, bool) {
	for _, sample := range samples {
		if value, ok := sample[fieldName]; ok {
			return value, true
		}
	}
	return nil, false
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int32, int64:
		return true
	}
	return false
}

// stripIdentifierSuffix removes the reference suffix from a field name:
// customer_id and customerId both become customer.
func stripIdentifierSuffix(fieldName string) string {
	lower := strings.ToLower(fieldName)
	switch {
	case strings.HasSuffix(lower, "_id"):
		return fieldName[:len(fieldName)-3]
	case strings.HasSuffix(lower, "_uuid"):
		return fieldName[:len(fieldName)-5]
	case strings.HasSuffix(lower, "_key"):
		return fieldName[:len(fieldName)-4]
	case strings.HasSuffix(fieldName, "Id"):
		return fieldName[:len(fieldName)-2]
	}
	return fieldName
}

// normalizeName lowers case, removes separators, and singularizes, so
// customer_id matches Customer and order_item_id matches OrderItem.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return inflection.Singular(b.String())
}

// capitalizedSingular turns an array field name into its target model name:
// "tags" becomes "Tag", "line_items" becomes "LineItem".
func capitalizedSingular(fieldName string) string {
	parts := strings.FieldsFunc(fieldName, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	var b strings.Builder
	for i, part := range parts {
		if i == len(parts)-1 {
			part = inflection.Singular(part)
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
