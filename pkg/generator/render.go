package generator

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// schemaHeader opens every generated schema file. It carries no run
// metadata so the rendered text is byte-identical across runs.
const schemaHeader = `// Unified data model synthesized from sampled source records.
// Review inferred relationships before applying this schema.
`

// renderSchema renders the full schema text: header, generator and
// datasource blocks, then one block per model with its fields, relation
// clauses, indexes, and table mapping.
func (s *service) renderSchema(analyzed []*models.AnalyzedModel, rels []models.Relationship, options models.SchemaGenerationOptions) string {
	multiSchema := options.MultiTenant && options.Provider.SupportsMultiSchema()

	var b strings.Builder
	b.WriteString(schemaHeader)
	b.WriteString("\n")
	b.WriteString(renderGeneratorBlock(multiSchema))
	b.WriteString("\n")
	b.WriteString(renderDatasourceBlock(options, multiSchema))

	for _, model := range analyzed {
		b.WriteString("\n")
		b.WriteString(s.renderModel(model, rels, options, multiSchema))
	}

	return b.String()
}

func renderGeneratorBlock(multiSchema bool) string {
	if multiSchema {
		return "generator client {\n" +
			"  provider        = \"prisma-client-js\"\n" +
			"  previewFeatures = [\"multiSchema\"]\n" +
			"}\n"
	}
	return "generator client {\n" +
		"  provider = \"prisma-client-js\"\n" +
		"}\n"
}

func renderDatasourceBlock(options models.SchemaGenerationOptions, multiSchema bool) string {
	var b strings.Builder
	b.WriteString("datasource db {\n")
	b.WriteString(fmt.Sprintf("  provider = %q\n", string(options.Provider)))
	b.WriteString("  url      = env(\"DATABASE_URL\")\n")
	if multiSchema {
		b.WriteString(fmt.Sprintf("  schemas  = [%q]\n", options.TenantID))
	}
	b.WriteString("}\n")
	return b.String()
}

// fieldLine is one aligned "name type attributes" line inside a model block.
type fieldLine struct {
	name  string
	typ   string
	attrs string
}

func (s *service) renderModel(model *models.AnalyzedModel, rels []models.Relationship, options models.SchemaGenerationOptions, multiSchema bool) string {
	var lines []fieldLine

	// Scalar fields that anchor a one-to-one relation carry the relation's
	// uniqueness constraint, since @unique cannot sit on the clause itself.
	uniqueFKs := oneToOneForeignKeys(model.Name, rels)

	// Identifier and natural fields in analysis order; timestamps are held
	// back so relation clauses land above them.
	var timestamps []fieldLine
	for _, field := range model.Fields {
		line := renderField(field, uniqueFKs[field.Name])
		if line.name == models.CreatedAtFieldName || line.name == models.UpdatedAtFieldName {
			timestamps = append(timestamps, line)
			continue
		}
		lines = append(lines, line)
		if field.Name == models.PrimaryKeyFieldName && options.MultiTenant {
			lines = append(lines, fieldLine{name: "tenantId", typ: models.FieldTypeString})
		}
	}

	for _, rel := range rels {
		if rel.FromModel == model.Name {
			clause, _ := s.detector.RenderRelationClause(rel)
			lines = append(lines, splitClause(clause))
		}
		if rel.ToModel == model.Name {
			_, clause := s.detector.RenderRelationClause(rel)
			lines = append(lines, splitClause(clause))
		}
	}
	lines = append(lines, timestamps...)

	nameWidth, typeWidth := 0, 0
	for _, line := range lines {
		if len(line.name) > nameWidth {
			nameWidth = len(line.name)
		}
		if len(line.typ) > typeWidth {
			typeWidth = len(line.typ)
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("model %s {\n", model.Name))
	for _, line := range lines {
		text := fmt.Sprintf("  %-*s %-*s %s", nameWidth, line.name, typeWidth, line.typ, line.attrs)
		b.WriteString(strings.TrimRight(text, " "))
		b.WriteString("\n")
	}

	blockAttrs := blockAttributes(model, options, multiSchema)
	if len(blockAttrs) > 0 {
		b.WriteString("\n")
		for _, attr := range blockAttrs {
			b.WriteString("  " + attr + "\n")
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// oneToOneForeignKeys returns the names of the model's scalar fields that
// anchor a one-to-one relationship from this model.
func oneToOneForeignKeys(modelName string, rels []models.Relationship) map[string]bool {
	out := make(map[string]bool)
	for _, rel := range rels {
		if rel.Cardinality == models.CardinalityOneToOne && rel.FromModel == modelName {
			out[rel.FromField] = true
		}
	}
	return out
}

// renderField renders one analyzed field: camelized name, optional marker
// on non-required scalars, uniqueness, then the field's own attributes
// (defaults, update markers, column mapping). forceUnique marks the field
// @unique regardless of its own flag, for one-to-one foreign keys.
func renderField(field models.AnalyzedField, forceUnique bool) fieldLine {
	typ := field.CanonicalType
	if !field.Required && !strings.HasSuffix(typ, "[]") {
		typ += "?"
	}

	var attrs []string
	if (field.Unique || forceUnique) && field.Name != models.PrimaryKeyFieldName {
		attrs = append(attrs, "@unique")
	}
	attrs = append(attrs, field.Attributes...)

	return fieldLine{
		name:  camelCase(field.Name),
		typ:   typ,
		attrs: strings.Join(attrs, " "),
	}
}

// blockAttributes renders the @@-level lines: one index per synthesized
// index, the tenant-scope index, the table mapping when the table name
// differs from the default pluralization, and the tenant schema.
func blockAttributes(model *models.AnalyzedModel, options models.SchemaGenerationOptions, multiSchema bool) []string {
	var attrs []string
	for _, index := range model.Indexes {
		attrs = append(attrs, fmt.Sprintf("@@index([%s])", camelCase(index)))
	}
	if options.MultiTenant {
		attrs = append(attrs, "@@index([tenantId])")
	}
	if model.TableName != defaultTableName(model.Name) {
		attrs = append(attrs, fmt.Sprintf("@@map(%q)", model.TableName))
	}
	if multiSchema {
		attrs = append(attrs, fmt.Sprintf("@@schema(%q)", options.TenantID))
	}
	return attrs
}

// defaultTableName is the table name a model gets when nothing overrides
// it: pluralized snake_case of the model name.
func defaultTableName(modelName string) string {
	return inflection.Plural(toSnakeCase(modelName))
}

// splitClause breaks a pre-rendered relation clause into its name, type,
// and attribute columns so it aligns with the field lines around it.
func splitClause(clause string) fieldLine {
	parts := strings.SplitN(clause, " ", 3)
	line := fieldLine{name: parts[0]}
	if len(parts) > 1 {
		line.typ = parts[1]
	}
	if len(parts) > 2 {
		line.attrs = parts[2]
	}
	return line
}

// camelCase converts snake_case and kebab-case to camelCase, leaving
// already-camel names alone.
func camelCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(parts) == 0 {
		return s
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 && s[i-1] != '_' && s[i-1] != '-' && s[i-1] != ' ' && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
