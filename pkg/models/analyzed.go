package models

// Canonical field types emitted by the type mapper. These are the scalar
// type names of the generated schema language; list types append "[]".
const (
	FieldTypeString   = "String"
	FieldTypeInt      = "Int"
	FieldTypeBigInt   = "BigInt"
	FieldTypeFloat    = "Float"
	FieldTypeDecimal  = "Decimal"
	FieldTypeBoolean  = "Boolean"
	FieldTypeDateTime = "DateTime"
	FieldTypeJSON     = "Json"
)

// Canonical names of the synthesized fields every model carries.
const (
	PrimaryKeyFieldName = "id"
	CreatedAtFieldName  = "createdAt"
	UpdatedAtFieldName  = "updatedAt"
)

// AnalyzedField is one typed field of a canonical model.
type AnalyzedField struct {
	Name            string   `json:"name"`
	CanonicalType   string   `json:"canonical_type"`
	Required        bool     `json:"required"`
	Unique          bool     `json:"unique"`
	Attributes      []string `json:"attributes,omitempty"`
	BusinessPurpose string   `json:"business_purpose,omitempty"`
}

// AnalyzedModel is the unified, deduplicated description of one entity.
// The field list always starts with the synthetic primary identifier and
// ends with creation/update timestamps unless the entity already carried
// them under their exact canonical names.
type AnalyzedModel struct {
	Name            string          `json:"name"`       // canonical-cased entity name, unique across the set
	TableName       string          `json:"table_name"` // pluralized snake_case
	Fields          []AnalyzedField `json:"fields"`
	Indexes         []string        `json:"indexes,omitempty"`
	BusinessPurpose string          `json:"business_purpose,omitempty"`
}

// Field returns the field with the given name, or nil.
func (m *AnalyzedModel) Field(name string) *AnalyzedField {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	return nil
}

// NaturalFields returns the fields that came from the source samples,
// excluding the synthesized identifier and timestamp fields.
func (m *AnalyzedModel) NaturalFields() []AnalyzedField {
	natural := make([]AnalyzedField, 0, len(m.Fields))
	for _, f := range m.Fields {
		switch f.Name {
		case PrimaryKeyFieldName, CreatedAtFieldName, UpdatedAtFieldName:
			continue
		}
		natural = append(natural, f)
	}
	return natural
}
