package models

import "fmt"

// Relationship cardinalities.
const (
	CardinalityOneToOne   = "one-to-one"
	CardinalityOneToMany  = "one-to-many"
	CardinalityManyToMany = "many-to-many"
)

// Referential delete actions.
const (
	OnDeleteCascade  = "Cascade"
	OnDeleteSetNull  = "SetNull"
	OnDeleteRestrict = "Restrict"
)

// Detection methods recorded on inferred relationships.
const (
	DetectionMethodForeignKey = "fk_naming"
	DetectionMethodArray      = "array_value"
	DetectionMethodJunction   = "junction_table"
	DetectionMethodPattern    = "computed_pattern"
)

// Relationship is an inferred association between two canonical models.
// Direct foreign-key relationships require FromModel != ToModel.
type Relationship struct {
	FromModel       string  `json:"from_model"`
	ToModel         string  `json:"to_model"`
	Cardinality     string  `json:"cardinality"`
	FromField       string  `json:"from_field"`
	ToField         string  `json:"to_field"`
	OnDelete        string  `json:"on_delete,omitempty"`
	DetectionMethod string  `json:"detection_method,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`
}

// Key returns the deduplication key. Two relationships with the same key
// describe the same association; the first occurrence wins.
func (r *Relationship) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", r.FromModel, r.ToModel, r.FromField, r.ToField)
}

// Touches reports whether the relationship involves the named model on
// either side.
func (r *Relationship) Touches(modelName string) bool {
	return r.FromModel == modelName || r.ToModel == modelName
}
