package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/jsonutil"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/llm"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// InsightsProvider annotates a generated schema with prose observations.
// Providers are enrichment only: the generator substitutes DefaultInsights
// on any error, so no provider failure can abort generation.
type InsightsProvider interface {
	ProduceInsights(ctx context.Context, analyzed []*models.AnalyzedModel, rels []models.Relationship, sourceNames []string) (*models.SchemaInsights, error)
}

// DefaultInsights is the fixed fallback set substituted when the
// configured provider fails.
func DefaultInsights(analyzed []*models.AnalyzedModel, rels []models.Relationship) *models.SchemaInsights {
	return &models.SchemaInsights{
		Summary: fmt.Sprintf("Synthesized %d models and %d relationships from the sampled sources.",
			len(analyzed), len(rels)),
		Observations: []string{
			"Insights enrichment was unavailable for this run.",
		},
		Recommendations: []string{
			"Review inferred relationships before applying the schema.",
		},
		Source: models.InsightSourceDefault,
	}
}

// ruleBasedProvider derives insights from the structure alone. It never
// fails and ships as the zero-dependency default.
type ruleBasedProvider struct{}

// NewRuleBasedProvider creates the rule-based insights provider.
func NewRuleBasedProvider() InsightsProvider {
	return &ruleBasedProvider{}
}

var _ InsightsProvider = (*ruleBasedProvider)(nil)

func (p *ruleBasedProvider) ProduceInsights(_ context.Context, analyzed []*models.AnalyzedModel, rels []models.Relationship, sourceNames []string) (*models.SchemaInsights, error) {
	insights := &models.SchemaInsights{
		Summary: fmt.Sprintf("Synthesized %d models and %d relationships from %d data sources.",
			len(analyzed), len(rels), len(sourceNames)),
		Source: models.InsightSourceRules,
	}

	for _, rel := range rels {
		switch rel.Cardinality {
		case models.CardinalityManyToMany:
			insights.Observations = append(insights.Observations,
				fmt.Sprintf("%s and %s are linked many-to-many.", rel.FromModel, rel.ToModel))
		default:
			insights.Observations = append(insights.Observations,
				fmt.Sprintf("%s references %s through %s.", rel.FromModel, rel.ToModel, rel.FromField))
		}
	}

	insights.Recommendations = append(insights.Recommendations,
		"Relationships were inferred from naming conventions and value shapes; confirm them against the upstream systems.")
	if modelsCarryType(analyzed, models.FieldTypeJSON) {
		insights.Recommendations = append(insights.Recommendations,
			"Fields typed Json may hide nested structure worth modeling explicitly.")
	}
	if lowConfidence(rels) {
		insights.Recommendations = append(insights.Recommendations,
			"At least one relationship was matched with low confidence; check the generation logs for candidates.")
	}

	return insights, nil
}

func modelsCarryType(analyzed []*models.AnalyzedModel, canonicalType string) bool {
	for _, model := range analyzed {
		for _, field := range model.Fields {
			if field.CanonicalType == canonicalType {
				return true
			}
		}
	}
	return false
}

func lowConfidence(rels []models.Relationship) bool {
	for _, rel := range rels {
		if rel.Confidence > 0 && rel.Confidence < 0.7 {
			return true
		}
	}
	return false
}

const insightsSystemMessage = "You are a data architect reviewing a relational schema synthesized " +
	"from sampled business data. Respond with JSON only."

const insightsPromptTemplate = `A unified relational schema was synthesized from these data sources: %s.

Models:
%s

Relationships:
%s

Return a JSON object with this shape:
{
  "summary": "one paragraph describing the unified data model",
  "observations": ["notable structural facts"],
  "recommendations": ["concrete next steps for the schema owner"]
}`

// insightsPayload is the JSON shape expected back from the model. Raw
// messages tolerate models returning scalars where arrays were asked for.
type insightsPayload struct {
	Summary         json.RawMessage `json:"summary"`
	Observations    json.RawMessage `json:"observations"`
	Recommendations json.RawMessage `json:"recommendations"`
}

// llmProvider asks a chat model to annotate the schema. Any transport or
// parse failure is returned to the caller, which substitutes defaults.
type llmProvider struct {
	client llm.Client
	logger *zap.Logger
}

// NewLLMProvider creates an insights provider backed by a chat model.
func NewLLMProvider(client llm.Client, logger *zap.Logger) InsightsProvider {
	return &llmProvider{
		client: client,
		logger: logger.Named("insights-provider"),
	}
}

var _ InsightsProvider = (*llmProvider)(nil)

func (p *llmProvider) ProduceInsights(ctx context.Context, analyzed []*models.AnalyzedModel, rels []models.Relationship, sourceNames []string) (*models.SchemaInsights, error) {
	modelsJSON, err := json.MarshalIndent(modelSummaries(analyzed), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal models for prompt: %w", err)
	}
	relsJSON, err := json.MarshalIndent(rels, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal relationships for prompt: %w", err)
	}

	prompt := fmt.Sprintf(insightsPromptTemplate,
		strings.Join(sourceNames, ", "), modelsJSON, relsJSON)

	response, err := p.client.Complete(ctx, prompt, insightsSystemMessage, 0.2)
	if err != nil {
		return nil, fmt.Errorf("complete insights prompt: %w", err)
	}

	payload, err := llm.ParseJSONResponse[insightsPayload](response)
	if err != nil {
		return nil, fmt.Errorf("parse insights response: %w", err)
	}

	insights := &models.SchemaInsights{
		Summary:         jsonutil.FlexibleStringValue(payload.Summary),
		Observations:    jsonutil.FlexibleStringSlice(payload.Observations),
		Recommendations: jsonutil.FlexibleStringSlice(payload.Recommendations),
		Source:          models.InsightSourceLLM,
	}

	p.logger.Debug("Produced LLM insights",
		zap.Int("observations", len(insights.Observations)),
		zap.Int("recommendations", len(insights.Recommendations)))

	return insights, nil
}

// modelSummary is the compact model view sent in the prompt; raw sample
// values never leave the process.
type modelSummary struct {
	Name   string   `json:"name"`
	Table  string   `json:"table"`
	Fields []string `json:"fields"`
}

func modelSummaries(analyzed []*models.AnalyzedModel) []modelSummary {
	summaries := make([]modelSummary, 0, len(analyzed))
	for _, model := range analyzed {
		fields := make([]string, 0, len(model.Fields))
		for _, field := range model.Fields {
			fields = append(fields, field.Name+" "+field.CanonicalType)
		}
		summaries = append(summaries, modelSummary{
			Name:   model.Name,
			Table:  model.TableName,
			Fields: fields,
		})
	}
	return summaries
}
