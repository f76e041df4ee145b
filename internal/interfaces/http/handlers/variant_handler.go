package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/common"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

// VariantGenerator is the application service behind the variant endpoints.
type VariantGenerator interface {
	Generate(ctx context.Context, req variant.GenerateRequest) (*variant.GenerateResponse, error)
	Rules() []variant.RuleInfo
	Fingerprint() string
}

// RunLister reads stored variants of a run.
type RunLister interface {
	ListByRun(ctx context.Context, runID common.ID, limit int) ([]variant.Record, error)
}

const (
	defaultRunLimit = 1000
	maxRunLimit     = 10000
)

// VariantHandler serves variant generation and rule discovery.
type VariantHandler struct {
	svc    VariantGenerator
	runs   RunLister
	logger logging.Logger
}

// NewVariantHandler creates a VariantHandler.  runs may be nil when no
// variant store is configured; the run endpoint then answers 404.
func NewVariantHandler(svc VariantGenerator, runs RunLister, logger logging.Logger) *VariantHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VariantHandler{svc: svc, runs: runs, logger: logger.Named("variant_handler")}
}

// RulesResponse is the payload of GET /v1/rules.
type RulesResponse struct {
	Fingerprint string             `json:"fingerprint"`
	Rules       []variant.RuleInfo `json:"rules"`
}

// RunVariantsResponse is the payload of GET /v1/runs/:id/variants.
type RunVariantsResponse struct {
	RunID    common.ID        `json:"run_id"`
	Variants []variant.Record `json:"variants"`
}

// Generate handles POST /v1/variants.
func (h *VariantHandler) Generate(c *gin.Context) {
	var req variant.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, errors.ErrCodeBadRequest, "request body too large")
			return
		}
		h.logger.Warn("invalid generate request", logging.Err(err))
		writeError(c, http.StatusBadRequest, errors.ErrCodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		writeAppError(c, err)
		return
	}

	total := 0
	for _, r := range resp.Results {
		total += r.Count
	}
	h.logger.Info("variants generated",
		logging.String("run_id", string(resp.RunID)),
		logging.Int("molecules", len(req.Molecules)),
		logging.Int("variants", total))
	writeData(c, http.StatusOK, resp)
}

// ListRules handles GET /v1/rules.
func (h *VariantHandler) ListRules(c *gin.Context) {
	writeData(c, http.StatusOK, RulesResponse{Fingerprint: h.svc.Fingerprint(), Rules: h.svc.Rules()})
}

// ListRunVariants handles GET /v1/runs/:id/variants.
func (h *VariantHandler) ListRunVariants(c *gin.Context) {
	if h.runs == nil {
		writeError(c, http.StatusNotFound, errors.ErrCodeNotFound, "run storage is not configured")
		return
	}
	runID := common.ID(c.Param("id"))
	recs, err := h.runs.ListByRun(c.Request.Context(), runID, parseLimit(c, defaultRunLimit, maxRunLimit))
	if err != nil {
		writeAppError(c, err)
		return
	}
	if len(recs) == 0 {
		writeError(c, http.StatusNotFound, errors.ErrCodeNotFound, "run not found")
		return
	}
	writeData(c, http.StatusOK, RunVariantsResponse{RunID: runID, Variants: recs})
}

//Personal.AI order the ending
