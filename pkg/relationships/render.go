package relationships

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// RenderRelationClause renders the schema clause pair for a relationship.
// The first return value belongs in the from-model's block, the second in
// the to-model's block.
//
// one-to-many puts the scalar foreign key and relation annotation on the
// many side with an implicit back-collection on the one side; one-to-one is
// the same with an optional back reference, and its uniqueness constraint
// lives on the scalar foreign-key field rather than on either clause, since
// the clause names a relation field that cannot carry @unique. The model
// renderer marks that scalar @unique for every one-to-one relationship;
// many-to-many renders implicit named collections on both sides.
func (d *detector) RenderRelationClause(rel models.Relationship) (string, string) {
	switch rel.Cardinality {
	case models.CardinalityManyToMany:
		fromSide := fmt.Sprintf("%s %s[]", collectionName(rel.ToModel), rel.ToModel)
		toSide := fmt.Sprintf("%s %s[]", collectionName(rel.FromModel), rel.FromModel)
		return fromSide, toSide

	case models.CardinalityOneToOne:
		fromSide := fmt.Sprintf("%s %s @relation(fields: [%s], references: [%s]%s)",
			referenceName(rel.FromField), rel.ToModel,
			camelCase(rel.FromField), rel.ToField, onDeleteArg(rel.OnDelete))
		toSide := fmt.Sprintf("%s %s?", referenceName(rel.FromModel), rel.FromModel)
		return fromSide, toSide

	default: // one-to-many
		fromSide := fmt.Sprintf("%s %s @relation(fields: [%s], references: [%s]%s)",
			referenceName(rel.FromField), rel.ToModel,
			camelCase(rel.FromField), rel.ToField, onDeleteArg(rel.OnDelete))
		toSide := fmt.Sprintf("%s %s[]", collectionName(rel.FromModel), rel.FromModel)
		return fromSide, toSide
	}
}

func onDeleteArg(onDelete string) string {
	if onDelete == "" {
		return ""
	}
	return ", onDelete: " + onDelete
}

// referenceName derives the relation field name from a foreign-key field
// or model name: customer_id and Customer both become customer.
func referenceName(s string) string {
	return lowerFirst(camelCase(stripIdentifierSuffix(s)))
}

// collectionName derives the implicit back-collection name from a model
// name: Order becomes orders, OrderItem becomes orderItems.
func collectionName(modelName string) string {
	return inflection.Plural(lowerFirst(modelName))
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

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
