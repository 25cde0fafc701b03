package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/llm"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

func TestRuleBasedInsights(t *testing.T) {
	analyzed := []*models.AnalyzedModel{
		{Name: "Customer", Fields: []models.AnalyzedField{{Name: "metadata", CanonicalType: models.FieldTypeJSON}}},
		{Name: "Order"},
	}
	rels := []models.Relationship{
		{FromModel: "Order", ToModel: "Customer", Cardinality: models.CardinalityOneToMany, FromField: "customer_id", Confidence: 0.6},
		{FromModel: "Order", ToModel: "Product", Cardinality: models.CardinalityManyToMany},
	}

	insights, err := NewRuleBasedProvider().ProduceInsights(context.Background(), analyzed, rels, []string{"storefront"})
	require.NoError(t, err)

	assert.Equal(t, models.InsightSourceRules, insights.Source)
	assert.Equal(t, "Synthesized 2 models and 2 relationships from 1 data sources.", insights.Summary)
	assert.Contains(t, insights.Observations, "Order references Customer through customer_id.")
	assert.Contains(t, insights.Observations, "Order and Product are linked many-to-many.")

	var jsonRec, confidenceRec bool
	for _, rec := range insights.Recommendations {
		switch rec {
		case "Fields typed Json may hide nested structure worth modeling explicitly.":
			jsonRec = true
		case "At least one relationship was matched with low confidence; check the generation logs for candidates.":
			confidenceRec = true
		}
	}
	assert.True(t, jsonRec, "expected a Json-field recommendation")
	assert.True(t, confidenceRec, "expected a low-confidence recommendation")
}

func TestLLMProviderCoercesLooseResponseTypes(t *testing.T) {
	client := llm.NewMockClient()
	client.CompleteFunc = func(context.Context, string, string, float64) (string, error) {
		return `{"summary": 42, "observations": "orders reference customers", "recommendations": ["add currency", 7]}`, nil
	}
	provider := NewLLMProvider(client, zap.NewNop())

	insights, err := provider.ProduceInsights(context.Background(),
		[]*models.AnalyzedModel{{Name: "Order"}}, nil, []string{"storefront"})
	require.NoError(t, err)

	assert.Equal(t, models.InsightSourceLLM, insights.Source)
	assert.Equal(t, "42", insights.Summary)
	assert.Equal(t, []string{"orders reference customers"}, insights.Observations)
	assert.Equal(t, []string{"add currency", "7"}, insights.Recommendations)
}

func TestDefaultInsights(t *testing.T) {
	insights := DefaultInsights([]*models.AnalyzedModel{{Name: "Customer"}}, nil)

	assert.Equal(t, models.InsightSourceDefault, insights.Source)
	assert.Equal(t, "Synthesized 1 models and 0 relationships from the sampled sources.", insights.Summary)
	assert.NotEmpty(t, insights.Recommendations)
}
