// Package generator orchestrates the schema synthesis pipeline: entity
// grouping, model analysis, relationship detection, junction pruning,
// pattern enrichment, schema rendering, seed emission, and the two optional
// network collaborators (insights enrichment and external validation).
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/analyzer"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/apperrors"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/relationships"
)

// Service runs the full schema synthesis pipeline.
type Service interface {
	// Generate synthesizes one unified schema from the given sources and
	// writes the text artifacts under the output root. Only configuration
	// errors fail the call; downstream degradation is recovered locally
	// and surfaced through logs and the returned insights.
	Generate(ctx context.Context, sources []models.DataSource, options models.SchemaGenerationOptions) (*models.GeneratedSchema, error)
}

type service struct {
	logger     *zap.Logger
	analyzer   analyzer.Service
	detector   relationships.Detector
	insights   InsightsProvider
	validator  SchemaValidator
	outputRoot string
}

// NewService creates a generator service. A nil insights provider falls
// back to the rule-based provider; a nil validator disables validation.
func NewService(logger *zap.Logger, analyzerSvc analyzer.Service, detector relationships.Detector, insights InsightsProvider, validator SchemaValidator, outputRoot string) Service {
	if insights == nil {
		insights = NewRuleBasedProvider()
	}
	if validator == nil {
		validator = NewNoopValidator()
	}
	return &service{
		logger:     logger.Named("schema-generator"),
		analyzer:   analyzerSvc,
		detector:   detector,
		insights:   insights,
		validator:  validator,
		outputRoot: outputRoot,
	}
}

var _ Service = (*service)(nil)

func (s *service) Generate(ctx context.Context, sources []models.DataSource, options models.SchemaGenerationOptions) (*models.GeneratedSchema, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("validate generation options: %w", err)
	}
	if len(sources) == 0 {
		return nil, apperrors.ErrNoDataSources
	}

	runID := uuid.New()
	logger := s.logger.With(zap.String("run_id", runID.String()))
	logger.Info("Starting schema generation",
		zap.Int("sources", len(sources)),
		zap.String("provider", string(options.Provider)),
		zap.Bool("multi_tenant", options.MultiTenant))

	groups := s.analyzer.GroupByEntity(sources)
	analyzed := s.analyzer.AnalyzeAll(groups)

	// AnalyzeAll preserves discovery order, so models pair with their
	// entity's sample records by position.
	inputs := make([]relationships.ModelSamples, len(analyzed))
	samplesByModel := make(map[string][]map[string]any, len(analyzed))
	for i, model := range analyzed {
		samples := groups.Get(groups.Names()[i]).SampleRecords
		inputs[i] = relationships.ModelSamples{Model: model, Samples: samples}
		samplesByModel[model.Name] = samples
	}

	detection := s.detector.Detect(inputs)
	finalModels, finalRels := pruneJunctions(analyzed, detection, logger)
	finalModels, finalRels = enrichWithPatterns(finalModels, finalRels, logger)

	result := &models.GeneratedSchema{
		RunID:         runID,
		SchemaText:    s.renderSchema(finalModels, finalRels, options),
		Models:        finalModels,
		Relationships: finalRels,
	}

	if options.IncludeSeeds {
		result.SeedScript = renderSeedScript(finalModels, samplesByModel)
	}

	sourceNames := make([]string, 0, len(sources))
	for _, src := range sources {
		sourceNames = append(sourceNames, src.Name)
	}
	insights, err := s.insights.ProduceInsights(ctx, finalModels, finalRels, sourceNames)
	if err != nil {
		logger.Warn("Insights provider failed, substituting defaults", zap.Error(err))
		insights = DefaultInsights(finalModels, finalRels)
	}
	result.Insights = insights

	result.Validation = s.validator.Validate(ctx, result.SchemaText)

	if err := s.writeArtifacts(result, options); err != nil {
		return nil, err
	}

	logger.Info("Schema generation complete",
		zap.Int("models", len(finalModels)),
		zap.Int("relationships", len(finalRels)),
		zap.Int("junctions_collapsed", len(detection.JunctionModels)),
		zap.Bool("validation_attempted", result.Validation.Attempted))

	return result, nil
}

// pruneJunctions removes collapsed junction models and every relationship
// that still references one of them. The many-to-many emitted by the
// junction strategy references the two outer models, so it survives.
func pruneJunctions(analyzed []*models.AnalyzedModel, detection *relationships.DetectionResult, logger *zap.Logger) ([]*models.AnalyzedModel, []models.Relationship) {
	junctions := make(map[string]bool, len(detection.JunctionModels))
	for _, name := range detection.JunctionModels {
		junctions[name] = true
	}

	kept := make([]*models.AnalyzedModel, 0, len(analyzed))
	for _, model := range analyzed {
		if junctions[model.Name] {
			logger.Debug("Dropping collapsed junction model", zap.String("model", model.Name))
			continue
		}
		kept = append(kept, model)
	}

	rels := make([]models.Relationship, 0, len(detection.Relationships))
	for _, rel := range detection.Relationships {
		if junctions[rel.FromModel] || junctions[rel.ToModel] {
			continue
		}
		rels = append(rels, rel)
	}
	return kept, rels
}

// writeArtifacts writes the schema text to the output target under the
// output root, and the seed script next to it when present.
func (s *service) writeArtifacts(result *models.GeneratedSchema, options models.SchemaGenerationOptions) error {
	schemaPath := filepath.Join(s.outputRoot, options.OutputTarget)
	if err := os.MkdirAll(filepath.Dir(schemaPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(schemaPath, []byte(result.SchemaText), 0o644); err != nil {
		return fmt.Errorf("write schema artifact: %w", err)
	}
	if result.SeedScript != "" {
		seedPath := filepath.Join(filepath.Dir(schemaPath), "seed.ts")
		if err := os.WriteFile(seedPath, []byte(result.SeedScript), 0o644); err != nil {
			return fmt.Errorf("write seed artifact: %w", err)
		}
	}
	return nil
}
