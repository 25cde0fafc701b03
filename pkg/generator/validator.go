package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/logging"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// SchemaValidator checks rendered schema text against an external
// validation service. Validation is advisory: implementations report an
// unreachable or failing service as "not attempted" and never abort
// generation.
type SchemaValidator interface {
	Validate(ctx context.Context, schemaText string) *models.ValidationReport
}

// noopValidator is installed when no validation endpoint is configured.
type noopValidator struct{}

// NewNoopValidator creates a validator that never attempts validation.
func NewNoopValidator() SchemaValidator {
	return &noopValidator{}
}

func (v *noopValidator) Validate(context.Context, string) *models.ValidationReport {
	return &models.ValidationReport{Attempted: false}
}

type validationRequest struct {
	Schema string `json:"schema"`
}

type validationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// httpValidator POSTs the schema text to a validation endpoint.
type httpValidator struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPValidator creates a validator that calls the given endpoint with
// the given per-call timeout.
func NewHTTPValidator(endpoint string, timeout time.Duration, logger *zap.Logger) SchemaValidator {
	return &httpValidator{
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("schema-validator"),
	}
}

var _ SchemaValidator = (*httpValidator)(nil)

func (v *httpValidator) Validate(ctx context.Context, schemaText string) *models.ValidationReport {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	body, err := json.Marshal(validationRequest{Schema: schemaText})
	if err != nil {
		v.logger.Warn("Failed to encode validation request", zap.Error(err))
		return &models.ValidationReport{Attempted: false}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		v.logger.Warn("Failed to build validation request", zap.Error(err))
		return &models.ValidationReport{Attempted: false}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("Schema validator unreachable",
			zap.String("error", logging.SanitizeError(err)))
		return &models.ValidationReport{Attempted: false}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("Schema validator returned unexpected status",
			zap.Int("status", resp.StatusCode))
		return &models.ValidationReport{Attempted: false}
	}

	var decoded validationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		v.logger.Warn("Failed to decode validation response", zap.Error(err))
		return &models.ValidationReport{Attempted: false}
	}

	report := &models.ValidationReport{
		Attempted: true,
		Valid:     decoded.Valid,
		Errors:    decoded.Errors,
	}
	if !report.Valid {
		v.logger.Warn("External validation reported errors",
			zap.Strings("errors", report.Errors))
	}
	return report
}

// MockValidator is a configurable test double.
type MockValidator struct {
	ValidateFunc  func(ctx context.Context, schemaText string) *models.ValidationReport
	ValidateCalls int
}

var _ SchemaValidator = (*MockValidator)(nil)

func (m *MockValidator) Validate(ctx context.Context, schemaText string) *models.ValidationReport {
	m.ValidateCalls++
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, schemaText)
	}
	return &models.ValidationReport{Attempted: false}
}
