package generator

import (
	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// computedPattern adds a rollup model when a known model co-occurrence is
// present. Apply returns nil when the pattern does not fire.
type computedPattern struct {
	name     string
	requires []string
	apply    func() (*models.AnalyzedModel, []models.Relationship)
}

// computedPatterns run in a fixed order after relationship detection.
var computedPatterns = []computedPattern{
	{
		name:     "customer_metrics",
		requires: []string{"Order", "Customer"},
		apply:    customerMetricPattern,
	},
	{
		name:     "product_performance",
		requires: []string{"Order", "Product"},
		apply:    productPerformancePattern,
	},
}

// enrichWithPatterns appends a rollup model and its relationships for every
// pattern whose required models are all present and whose rollup model is
// not already taken. Relationships duplicating an existing tuple are
// dropped, existing one wins.
func enrichWithPatterns(analyzed []*models.AnalyzedModel, rels []models.Relationship, logger *zap.Logger) ([]*models.AnalyzedModel, []models.Relationship) {
	present := make(map[string]bool, len(analyzed))
	for _, model := range analyzed {
		present[model.Name] = true
	}
	seen := make(map[string]bool, len(rels))
	for i := range rels {
		seen[rels[i].Key()] = true
	}

	for _, pattern := range computedPatterns {
		if !requirementsMet(present, pattern.requires) {
			continue
		}

		model, patternRels := pattern.apply()
		if present[model.Name] {
			continue // a source already claimed the rollup name
		}
		present[model.Name] = true
		analyzed = append(analyzed, model)

		for _, rel := range patternRels {
			if seen[rel.Key()] {
				continue
			}
			seen[rel.Key()] = true
			rels = append(rels, rel)
		}

		logger.Debug("Applied computed pattern",
			zap.String("pattern", pattern.name),
			zap.String("model", model.Name))
	}

	return analyzed, rels
}

func requirementsMet(present map[string]bool, requires []string) bool {
	for _, name := range requires {
		if !present[name] {
			return false
		}
	}
	return true
}

// customerMetricPattern rolls order activity up per customer: one metric
// row per customer, cascade-deleted with it.
func customerMetricPattern() (*models.AnalyzedModel, []models.Relationship) {
	model := &models.AnalyzedModel{
		Name:      "CustomerMetric",
		TableName: "customer_metrics",
		Fields: []models.AnalyzedField{
			identifierField(),
			{
				Name:          "customer_id",
				CanonicalType: models.FieldTypeString,
				Required:      true,
				Unique:        true,
				Attributes:    []string{`@map("customer_id")`},
			},
			{
				Name:          "order_count",
				CanonicalType: models.FieldTypeInt,
				Required:      true,
				Attributes:    []string{"@default(0)", `@map("order_count")`},
			},
			{
				Name:          "lifetime_value",
				CanonicalType: models.FieldTypeDecimal,
				Required:      true,
				Attributes:    []string{"@default(0)", `@map("lifetime_value")`},
			},
			{
				Name:          "last_order_at",
				CanonicalType: models.FieldTypeDateTime,
				Attributes:    []string{`@map("last_order_at")`},
			},
			createdAtField(),
			updatedAtField(),
		},
		Indexes:         []string{"customer_id"},
		BusinessPurpose: "Per-customer order rollup computed from order activity",
	}

	rels := []models.Relationship{{
		FromModel:       "CustomerMetric",
		ToModel:         "Customer",
		Cardinality:     models.CardinalityOneToOne,
		FromField:       "customer_id",
		ToField:         models.PrimaryKeyFieldName,
		OnDelete:        models.OnDeleteCascade,
		DetectionMethod: models.DetectionMethodPattern,
		Confidence:      1.0,
	}}

	return model, rels
}

// productPerformancePattern rolls order activity up per product.
func productPerformancePattern() (*models.AnalyzedModel, []models.Relationship) {
	model := &models.AnalyzedModel{
		Name:      "ProductPerformance",
		TableName: "product_performances",
		Fields: []models.AnalyzedField{
			identifierField(),
			{
				Name:          "product_id",
				CanonicalType: models.FieldTypeString,
				Required:      true,
				Unique:        true,
				Attributes:    []string{`@map("product_id")`},
			},
			{
				Name:          "units_sold",
				CanonicalType: models.FieldTypeInt,
				Required:      true,
				Attributes:    []string{"@default(0)", `@map("units_sold")`},
			},
			{
				Name:          "revenue",
				CanonicalType: models.FieldTypeDecimal,
				Required:      true,
				Attributes:    []string{"@default(0)"},
			},
			{
				Name:          "last_sold_at",
				CanonicalType: models.FieldTypeDateTime,
				Attributes:    []string{`@map("last_sold_at")`},
			},
			createdAtField(),
			updatedAtField(),
		},
		Indexes:         []string{"product_id"},
		BusinessPurpose: "Per-product sales rollup computed from order activity",
	}

	rels := []models.Relationship{{
		FromModel:       "ProductPerformance",
		ToModel:         "Product",
		Cardinality:     models.CardinalityOneToOne,
		FromField:       "product_id",
		ToField:         models.PrimaryKeyFieldName,
		OnDelete:        models.OnDeleteCascade,
		DetectionMethod: models.DetectionMethodPattern,
		Confidence:      1.0,
	}}

	return model, rels
}

func identifierField() models.AnalyzedField {
	return models.AnalyzedField{
		Name:          models.PrimaryKeyFieldName,
		CanonicalType: models.FieldTypeString,
		Required:      true,
		Unique:        true,
		Attributes:    []string{"@id", "@default(cuid())"},
	}
}

func createdAtField() models.AnalyzedField {
	return models.AnalyzedField{
		Name:          models.CreatedAtFieldName,
		CanonicalType: models.FieldTypeDateTime,
		Required:      true,
		Attributes:    []string{"@default(now())"},
	}
}

func updatedAtField() models.AnalyzedField {
	return models.AnalyzedField{
		Name:          models.UpdatedAtFieldName,
		CanonicalType: models.FieldTypeDateTime,
		Required:      true,
		Attributes:    []string{"@updatedAt"},
	}
}
