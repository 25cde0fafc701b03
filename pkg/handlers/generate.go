package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/apperrors"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/config"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/generator"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// maxRequestBytes bounds the accepted request body. Source bundles carry
// sample records, not full exports.
const maxRequestBytes = 10 << 20

// GenerateRequest is the wire format of the generation endpoint: a source
// bundle plus optional generation options. Options left unset fall back to
// the configured defaults.
type GenerateRequest struct {
	Sources []models.DataSource             `json:"sources" yaml:"sources"`
	Options *models.SchemaGenerationOptions `json:"options,omitempty" yaml:"options,omitempty"`
}

// GenerateHandler handles schema generation requests.
type GenerateHandler struct {
	cfg       *config.Config
	generator generator.Service
	logger    *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(cfg *config.Config, svc generator.Service, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{cfg: cfg, generator: svc, logger: logger.Named("generate-handler")}
}

// RegisterRoutes registers the generation route on the given mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/schema/generate", h.Generate)
}

// Generate handles POST /api/schema/generate. The body is a source bundle
// in JSON or YAML.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		_ = ErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "failed to read request body")
		return
	}

	req, err := decodeGenerateRequest(body)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_bundle", err.Error())
		return
	}

	options := h.resolveOptions(req.Options)
	result, err := h.generator.Generate(r.Context(), req.Sources, options)
	if err != nil {
		if isConfigurationError(err) {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_options", err.Error())
			return
		}
		h.logger.Error("Schema generation failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "generation_failed", "schema generation failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode generation response", zap.Error(err))
	}
}

// decodeGenerateRequest parses the request body as JSON first, then YAML.
func decodeGenerateRequest(body []byte) (*GenerateRequest, error) {
	var req GenerateRequest
	if err := json.Unmarshal(body, &req); err == nil && req.Sources != nil {
		return &req, nil
	}
	req = GenerateRequest{}
	if err := yaml.Unmarshal(body, &req); err == nil && req.Sources != nil {
		return &req, nil
	}
	return nil, apperrors.ErrUnknownSourceBundle
}

// resolveOptions fills unset request options from the configured defaults.
func (h *GenerateHandler) resolveOptions(requested *models.SchemaGenerationOptions) models.SchemaGenerationOptions {
	options := models.SchemaGenerationOptions{
		Provider:     models.Provider(h.cfg.Generation.Provider),
		OutputTarget: h.cfg.Generation.OutputTarget,
		IncludeSeeds: h.cfg.Generation.IncludeSeeds,
	}
	if requested == nil {
		return options
	}
	if requested.Provider != "" {
		options.Provider = requested.Provider
	}
	if requested.OutputTarget != "" {
		options.OutputTarget = requested.OutputTarget
	}
	if requested.IncludeSeeds {
		options.IncludeSeeds = true
	}
	options.MultiTenant = requested.MultiTenant
	options.TenantID = requested.TenantID
	return options
}

func isConfigurationError(err error) bool {
	return errors.Is(err, apperrors.ErrUnsupportedProvider) ||
		errors.Is(err, apperrors.ErrMissingTenantID) ||
		errors.Is(err, apperrors.ErrMissingOutputTarget) ||
		errors.Is(err, apperrors.ErrNoDataSources)
}
