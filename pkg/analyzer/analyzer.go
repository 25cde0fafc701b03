// Package analyzer groups sample records from heterogeneous data sources
// into named entities and produces one canonical model per entity.
package analyzer

import (
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/typemap"
)

// Service groups data sources into entities and analyzes each entity into
// a canonical model.
type Service interface {
	// GroupByEntity folds sources into per-entity accumulators, in input order.
	GroupByEntity(sources []models.DataSource) *EntityGroups

	// Analyze produces the canonical model for one accumulated entity.
	Analyze(entityName string, acc *EntityAccumulator) *models.AnalyzedModel

	// AnalyzeAll analyzes every entity in discovery order.
	AnalyzeAll(groups *EntityGroups) []*models.AnalyzedModel
}

type service struct {
	logger *zap.Logger
}

// NewService creates a new analyzer service.
func NewService(logger *zap.Logger) Service {
	return &service{logger: logger.Named("model-analyzer")}
}

var _ Service = (*service)(nil)

// commonlyFilteredNames is the curated set of field names that typically
// back WHERE clauses and therefore get an index when not already unique.
var commonlyFilteredNames = map[string]bool{
	"status":     true,
	"email":      true,
	"type":       true,
	"category":   true,
	"date":       true,
	"created_at": true,
}

// Analyze produces the canonical model for one entity: a synthetic primary
// identifier first, the surviving natural fields in first-seen order, and
// creation/update timestamps last unless the entity already carries them
// under their exact canonical names.
func (s *service) Analyze(entityName string, acc *EntityAccumulator) *models.AnalyzedModel {
	model := &models.AnalyzedModel{
		Name:      PascalCase(entityName),
		TableName: inflection.Plural(toSnakeCase(entityName)),
	}

	model.Fields = append(model.Fields, s.primaryIdentifier(acc))

	samples := acc.SampleRecords
	dropped := 0
	for _, field := range acc.Fields() {
		if strings.EqualFold(field.Name, models.PrimaryKeyFieldName) {
			continue // absorbed by the synthetic identifier
		}
		if !hasNonNullSample(field.RawSamples) {
			dropped++
			continue // nothing to type
		}

		canonicalType := s.canonicalType(field)
		model.Fields = append(model.Fields, models.AnalyzedField{
			Name:          field.Name,
			CanonicalType: canonicalType,
			Required:      typemap.IsRequired(samples, field.Name),
			Unique:        typemap.IsUnique(samples, field.Name),
			Attributes:    typemap.AttributesFor(field.Name, canonicalType),
		})
	}

	s.appendTimestamps(model)
	model.Indexes = synthesizeIndexes(model)

	s.logger.Debug("Analyzed entity",
		zap.String("entity", entityName),
		zap.String("model", model.Name),
		zap.Int("fields", len(model.Fields)),
		zap.Int("dropped_fields", dropped),
		zap.Int("sources", len(acc.ContributingSources)))

	return model
}

// AnalyzeAll analyzes every entity in discovery order. Model names are
// unique by construction: the same logical entity discovered from multiple
// sources shares one accumulator.
func (s *service) AnalyzeAll(groups *EntityGroups) []*models.AnalyzedModel {
	analyzed := make([]*models.AnalyzedModel, 0, groups.Len())
	for _, name := range groups.Names() {
		analyzed = append(analyzed, s.Analyze(name, groups.Get(name)))
	}
	return analyzed
}

// canonicalType resolves a field's type, preferring the source-declared
// type over value inference. Inference uses the first non-null sample.
func (s *service) canonicalType(field *FieldAccumulator) string {
	if field.DeclaredType != "" {
		return typemap.MapDeclaredType(field.DeclaredType, field.DeclaredKind)
	}
	for _, sample := range field.RawSamples {
		if sample != nil {
			return typemap.InferTypeFromValue(sample)
		}
	}
	return models.FieldTypeString
}

// primaryIdentifier builds the synthetic primary identifier field. When the
// entity's own id samples are UUID-shaped the default generator is uuid(),
// otherwise cuid().
func (s *service) primaryIdentifier(acc *EntityAccumulator) models.AnalyzedField {
	idDefault := "@default(cuid())"
	if field := acc.Field(models.PrimaryKeyFieldName); field != nil {
		for _, sample := range field.RawSamples {
			str, ok := sample.(string)
			if !ok {
				continue
			}
			if typemap.IsUUIDShaped(str) {
				idDefault = "@default(uuid())"
			}
			break
		}
	}

	return models.AnalyzedField{
		Name:          models.PrimaryKeyFieldName,
		CanonicalType: models.FieldTypeString,
		Required:      true,
		Unique:        true,
		Attributes:    []string{"@id", idDefault},
	}
}

// appendTimestamps appends creation/update timestamp fields unless the
// model already carries a field that renders under the canonical name.
// Source spellings like created_at camelize to createdAt, so they absorb
// the synthetic timestamp the way a natural id absorbs the identifier;
// the raw spelling survives through the field's column mapping.
func (s *service) appendTimestamps(model *models.AnalyzedModel) {
	if timestampField(model, models.CreatedAtFieldName) == nil {
		model.Fields = append(model.Fields, models.AnalyzedField{
			Name:          models.CreatedAtFieldName,
			CanonicalType: models.FieldTypeDateTime,
			Required:      true,
			Attributes:    []string{"@default(now())"},
		})
	}
	if timestampField(model, models.UpdatedAtFieldName) == nil {
		model.Fields = append(model.Fields, models.AnalyzedField{
			Name:          models.UpdatedAtFieldName,
			CanonicalType: models.FieldTypeDateTime,
			Required:      true,
			Attributes:    []string{"@updatedAt"},
		})
	}
}

// timestampField returns the field whose camelized name equals the given
// canonical timestamp name, or nil.
func timestampField(model *models.AnalyzedModel, canonical string) *models.AnalyzedField {
	for i := range model.Fields {
		if camelCase(model.Fields[i].Name) == canonical {
			return &model.Fields[i]
		}
	}
	return nil
}

// synthesizeIndexes proposes indexes: any non-identifier field whose name
// has an identifier suffix, and any commonly filtered field that is not
// already unique.
func synthesizeIndexes(model *models.AnalyzedModel) []string {
	var indexes []string
	for _, field := range model.Fields {
		if field.Name == models.PrimaryKeyFieldName {
			continue
		}
		switch {
		case typemap.HasIdentifierSuffix(field.Name):
			indexes = append(indexes, field.Name)
		case commonlyFilteredNames[field.Name] && !field.Unique:
			indexes = append(indexes, field.Name)
		}
	}
	return indexes
}

// hasNonNullSample reports whether at least one sampled value is non-null.
func hasNonNullSample(samples []any) bool {
	for _, s := range samples {
		if s != nil {
			return true
		}
	}
	return false
}

// PascalCase converts a snake_case entity key to a PascalCase model name.
func PascalCase(s string) string {
	parts := strings.Split(toSnakeCase(s), "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// camelCase lowercases the first rune of the PascalCase form.
func camelCase(s string) string {
	name := PascalCase(s)
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
