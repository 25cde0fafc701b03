package generator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// MaxSeedRecords bounds how many representative records are emitted per
// model.
const MaxSeedRecords = 1

const seedScriptHeader = `import { PrismaClient } from '@prisma/client'

const prisma = new PrismaClient()

async function main() {
`

const seedScriptFooter = `}

main()
  .catch((e) => {
    console.error(e)
    process.exit(1)
  })
  .finally(async () => {
    await prisma.$disconnect()
  })
`

// renderSeedScript emits a Prisma seed script that inserts representative
// records located in the original samples. Models without samples, such as
// computed rollups, are skipped.
func renderSeedScript(analyzed []*models.AnalyzedModel, samplesByModel map[string][]map[string]any) string {
	var b strings.Builder
	b.WriteString(seedScriptHeader)

	for _, model := range analyzed {
		samples := samplesByModel[model.Name]
		if len(samples) == 0 {
			continue
		}
		for i, sample := range samples {
			if i >= MaxSeedRecords {
				break
			}
			b.WriteString(renderSeedCreate(model, sample))
		}
	}

	b.WriteString(seedScriptFooter)
	return b.String()
}

// renderSeedCreate renders one create call. Synthesized identifier and
// timestamp fields rely on their schema defaults; natural fields carry the
// sampled value formatted by canonical type.
func renderSeedCreate(model *models.AnalyzedModel, sample map[string]any) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  await prisma.%s.create({\n", lowerFirst(model.Name)))
	b.WriteString("    data: {\n")

	for _, field := range model.NaturalFields() {
		value, ok := sample[field.Name]
		if !ok || value == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("      %s: %s,\n", camelCase(field.Name), seedLiteral(value, field.CanonicalType)))
	}

	b.WriteString("    },\n")
	b.WriteString("  })\n")
	return b.String()
}

// seedLiteral formats one sampled value as a script literal according to
// the field's canonical type: quoted text, bare numerics, boolean
// literals, a date construction call for datetimes, and serialized JSON
// for structured blobs.
func seedLiteral(value any, canonicalType string) string {
	switch canonicalType {
	case models.FieldTypeString:
		return quoteString(value)
	case models.FieldTypeInt, models.FieldTypeBigInt:
		return formatNumber(value, true)
	case models.FieldTypeFloat, models.FieldTypeDecimal:
		return formatNumber(value, false)
	case models.FieldTypeBoolean:
		if v, ok := value.(bool); ok {
			return strconv.FormatBool(v)
		}
		return "false"
	case models.FieldTypeDateTime:
		return fmt.Sprintf("new Date(%s)", quoteString(value))
	default:
		// Json and list types serialize as-is.
		data, err := json.Marshal(value)
		if err != nil {
			return "null"
		}
		return string(data)
	}
}

func quoteString(value any) string {
	if s, ok := value.(string); ok {
		return strconv.Quote(s)
	}
	return strconv.Quote(fmt.Sprintf("%v", value))
}

// formatNumber renders a numeric sample without an exponent; integral
// values drop the decimal part when the field is integer-typed.
func formatNumber(value any, integral bool) string {
	switch v := value.(type) {
	case float64:
		if integral && v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		// Declared-numeric columns can sample as strings.
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
