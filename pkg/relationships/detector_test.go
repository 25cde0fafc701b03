package relationships

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

func newTestDetector() Detector {
	return NewDetector(zap.NewNop())
}

// testModel builds an analyzed model in the shape the analyzer produces:
// synthetic identifier first, timestamps last, natural fields between.
func testModel(name, tableName string, naturalFields ...models.AnalyzedField) *models.AnalyzedModel {
	fields := []models.AnalyzedField{
		{Name: models.PrimaryKeyFieldName, CanonicalType: models.FieldTypeString, Required: true, Unique: true, Attributes: []string{"@id", "@default(cuid())"}},
	}
	fields = append(fields, naturalFields...)
	fields = append(fields,
		models.AnalyzedField{Name: models.CreatedAtFieldName, CanonicalType: models.FieldTypeDateTime, Required: true, Attributes: []string{"@default(now())"}},
		models.AnalyzedField{Name: models.UpdatedAtFieldName, CanonicalType: models.FieldTypeDateTime, Required: true, Attributes: []string{"@updatedAt"}},
	)
	return &models.AnalyzedModel{Name: name, TableName: tableName, Fields: fields}
}

func TestDetectForeignKey(t *testing.T) {
	inputs := []ModelSamples{
		{
			Model:   testModel("Order", "orders", models.AnalyzedField{Name: "customer_id", CanonicalType: models.FieldTypeString}),
			Samples: []map[string]any{{"customer_id": "c1"}},
		},
		{
			Model:   testModel("Customer", "customers"),
			Samples: []map[string]any{{"id": "c1"}},
		},
	}

	result := newTestDetector().Detect(inputs)

	require.Len(t, result.Relationships, 1)
	rel := result.Relationships[0]
	assert.Equal(t, "Order", rel.FromModel)
	assert.Equal(t, "Customer", rel.ToModel)
	assert.Equal(t, models.CardinalityOneToMany, rel.Cardinality)
	assert.Equal(t, "customer_id", rel.FromField)
	assert.Equal(t, "id", rel.ToField)
	assert.Equal(t, models.OnDeleteCascade, rel.OnDelete)
	assert.Empty(t, result.JunctionModels)
}

func TestDetectForeignKeySkipsSelfReference(t *testing.T) {
	inputs := []ModelSamples{
		{
			Model:   testModel("Category", "categories", models.AnalyzedField{Name: "category_id", CanonicalType: models.FieldTypeString}),
			Samples: []map[string]any{{"category_id": "x"}},
		},
	}

	result := newTestDetector().Detect(inputs)
	assert.Empty(t, result.Relationships)
}

func TestDetectForeignKeyCamelSuffix(t *testing.T) {
	inputs := []ModelSamples{
		{
			Model:   testModel("Invoice", "invoices", models.AnalyzedField{Name: "accountId", CanonicalType: models.FieldTypeString}),
			Samples: []map[string]any{{"accountId": "a1"}},
		},
		{
			Model:   testModel("Account", "accounts"),
			Samples: []map[string]any{{"id": "a1"}},
		},
	}

	result := newTestDetector().Detect(inputs)
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "Account", result.Relationships[0].ToModel)
}

func TestDetectForeignKeyAmbiguousKeepsFirst(t *testing.T) {
	inputs := []ModelSamples{
		{
			Model:   testModel("Order", "orders", models.AnalyzedField{Name: "customer_id", CanonicalType: models.FieldTypeString}),
			Samples: []map[string]any{{"customer_id": "c1"}},
		},
		{Model: testModel("Customer", "customers")},
		{Model: testModel("Customers", "customers_legacy")}, // normalizes to the same name
	}

	result := newTestDetector().Detect(inputs)
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "Customer", result.Relationships[0].ToModel)
	assert.InDelta(t, 0.6, result.Relationships[0].Confidence, 0.001)
}

func TestDetectArray(t *testing.T) {
	inputs := []ModelSamples{
		{
			Model:   testModel("Product", "products", models.AnalyzedField{Name: "tags", CanonicalType: "String[]"}),
			Samples: []map[string]any{{"tags": []any{"new", "sale"}}},
		},
	}

	result := newTestDetector().Detect(inputs)

	require.Len(t, result.Relationships, 1)
	rel := result.Relationships[0]
	assert.Equal(t, "Product", rel.FromModel)
	assert.Equal(t, "Tag", rel.ToModel) // target model need not exist
	assert.Equal(t, models.CardinalityManyToMany, rel.Cardinality)
}

func TestDetectArrayIgnoresObjectArraysAndEmpty(t *testing.T) {
	inputs := []ModelSamples{
		{
			Model: testModel("Order", "orders",
				models.AnalyzedField{Name: "line_items", CanonicalType: models.FieldTypeJSON},
				models.AnalyzedField{Name: "labels", CanonicalType: models.FieldTypeJSON},
			),
			Samples: []map[string]any{{
				"line_items": []any{map[string]any{"sku": "s"}},
				"labels":     []any{},
			}},
		},
	}

	result := newTestDetector().Detect(inputs)
	assert.Empty(t, result.Relationships)
}

func TestDetectJunction(t *testing.T) {
	inputs := []ModelSamples{
		{Model: testModel("Order", "orders")},
		{Model: testModel("Product", "products")},
		{
			Model: testModel("OrderItem", "order_items",
				models.AnalyzedField{Name: "order_id", CanonicalType: models.FieldTypeString},
				models.AnalyzedField{Name: "product_id", CanonicalType: models.FieldTypeString},
			),
			Samples: []map[string]any{{"order_id": "o1", "product_id": "p1"}},
		},
	}

	result := newTestDetector().Detect(inputs)

	assert.Equal(t, []string{"OrderItem"}, result.JunctionModels)

	// The junction's own FKs surface as one-to-many candidates first; the
	// junction strategy adds the direct many-to-many.
	var junction *models.Relationship
	for i := range result.Relationships {
		if result.Relationships[i].DetectionMethod == models.DetectionMethodJunction {
			require.Nil(t, junction, "expected exactly one junction relationship")
			junction = &result.Relationships[i]
		}
	}
	require.NotNil(t, junction)
	assert.Equal(t, "Order", junction.FromModel)
	assert.Equal(t, "Product", junction.ToModel)
	assert.Equal(t, models.CardinalityManyToMany, junction.Cardinality)
}

func TestDetectJunctionWithExtraAttributesIsKept(t *testing.T) {
	inputs := []ModelSamples{
		{Model: testModel("Order", "orders")},
		{Model: testModel("Product", "products")},
		{
			Model: testModel("OrderItem", "order_items",
				models.AnalyzedField{Name: "order_id", CanonicalType: models.FieldTypeString},
				models.AnalyzedField{Name: "product_id", CanonicalType: models.FieldTypeString},
				models.AnalyzedField{Name: "quantity", CanonicalType: models.FieldTypeInt},
			),
			Samples: []map[string]any{{"order_id": "o1", "product_id": "p1", "quantity": float64(2)}},
		},
	}

	result := newTestDetector().Detect(inputs)
	assert.Empty(t, result.JunctionModels)
	for _, rel := range result.Relationships {
		assert.NotEqual(t, models.DetectionMethodJunction, rel.DetectionMethod)
	}
}

func TestDetectDeduplicates(t *testing.T) {
	order := testModel("Order", "orders", models.AnalyzedField{Name: "customer_id", CanonicalType: models.FieldTypeString})
	inputs := []ModelSamples{
		{Model: order, Samples: []map[string]any{{"customer_id": "c1"}}},
		{Model: testModel("Customer", "customers")},
	}

	result := newTestDetector().Detect(inputs)
	seen := make(map[string]bool)
	for _, rel := range result.Relationships {
		key := rel.Key()
		assert.False(t, seen[key], "duplicate relationship %s", key)
		seen[key] = true
	}
}

func TestRenderRelationClause(t *testing.T) {
	d := newTestDetector()

	fromSide, toSide := d.RenderRelationClause(models.Relationship{
		FromModel:   "Order",
		ToModel:     "Customer",
		Cardinality: models.CardinalityOneToMany,
		FromField:   "customer_id",
		ToField:     "id",
		OnDelete:    models.OnDeleteCascade,
	})
	assert.Equal(t, "customer Customer @relation(fields: [customerId], references: [id], onDelete: Cascade)", fromSide)
	assert.Equal(t, "orders Order[]", toSide)

	fromSide, toSide = d.RenderRelationClause(models.Relationship{
		FromModel:   "Profile",
		ToModel:     "User",
		Cardinality: models.CardinalityOneToOne,
		FromField:   "user_id",
		ToField:     "id",
	})
	assert.Equal(t, "user User @relation(fields: [userId], references: [id])", fromSide)
	assert.Equal(t, "profile Profile?", toSide)

	fromSide, toSide = d.RenderRelationClause(models.Relationship{
		FromModel:   "Order",
		ToModel:     "Product",
		Cardinality: models.CardinalityManyToMany,
		FromField:   "order_id",
		ToField:     "product_id",
	})
	assert.Equal(t, "products Product[]", fromSide)
	assert.Equal(t, "orders Order[]", toSide)
}
