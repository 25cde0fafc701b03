package models

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/apperrors"
)

// Provider identifies the target database engine of the generated schema.
type Provider string

const (
	ProviderPostgres  Provider = "postgresql"
	ProviderMySQL     Provider = "mysql"
	ProviderSQLite    Provider = "sqlite"
	ProviderSQLServer Provider = "sqlserver"
)

// ValidProviders contains all supported schema providers.
var ValidProviders = []Provider{
	ProviderPostgres,
	ProviderMySQL,
	ProviderSQLite,
	ProviderSQLServer,
}

// SupportsMultiSchema reports whether the provider can host tenant-scoped
// schemas, which enables the multi-schema datasource declaration.
func (p Provider) SupportsMultiSchema() bool {
	return p == ProviderPostgres
}

// IsValid reports whether p is a supported provider.
func (p Provider) IsValid() bool {
	for _, valid := range ValidProviders {
		if p == valid {
			return true
		}
	}
	return false
}

// SchemaGenerationOptions controls one generation run.
type SchemaGenerationOptions struct {
	Provider     Provider `json:"provider" yaml:"provider"`
	MultiTenant  bool     `json:"multi_tenant" yaml:"multi_tenant"`
	TenantID     string   `json:"tenant_id,omitempty" yaml:"tenant_id,omitempty"`
	OutputTarget string   `json:"output_target" yaml:"output_target"`
	IncludeSeeds bool     `json:"include_seeds,omitempty" yaml:"include_seeds,omitempty"`
}

// Validate fails fast on configuration errors before any analysis begins.
func (o *SchemaGenerationOptions) Validate() error {
	if !o.Provider.IsValid() {
		return fmt.Errorf("provider %q: %w", o.Provider, apperrors.ErrUnsupportedProvider)
	}
	if o.MultiTenant && o.TenantID == "" {
		return apperrors.ErrMissingTenantID
	}
	if o.OutputTarget == "" {
		return apperrors.ErrMissingOutputTarget
	}
	return nil
}

// SchemaInsights carries best-effort prose annotations about a generated
// schema. On collaborator failure a fixed default set is substituted, so
// consumers can always rely on the struct being populated.
type SchemaInsights struct {
	Summary         string   `json:"summary"`
	Observations    []string `json:"observations,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Source          string   `json:"source"` // "llm", "rules", or "default"
}

// Insight sources.
const (
	InsightSourceLLM     = "llm"
	InsightSourceRules   = "rules"
	InsightSourceDefault = "default"
)

// ValidationReport is the outcome of the optional external schema
// validation call.
type ValidationReport struct {
	Attempted bool     `json:"attempted"`
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors,omitempty"`
}

// GeneratedSchema is the artifact of one pipeline run.
type GeneratedSchema struct {
	RunID         uuid.UUID         `json:"run_id"`
	SchemaText    string            `json:"schema_text"`
	SeedScript    string            `json:"seed_script,omitempty"`
	Models        []*AnalyzedModel  `json:"models"`
	Relationships []Relationship    `json:"relationships"`
	Insights      *SchemaInsights   `json:"insights"`
	Validation    *ValidationReport `json:"validation,omitempty"`
}
