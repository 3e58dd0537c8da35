package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"culturebridge/internal/culture"
	"culturebridge/internal/gateway"
	"culturebridge/internal/types"
)

// Orchestrator sequences the four stages into one pipeline run: resolver,
// UX adaptation, copy framing, compliance audit, impact prediction. Stages
// run strictly sequentially; each consumes only the accumulated bundle
// fields it needs. Enrichment unavailability degrades a single stage to its
// fallback and never aborts the run; only an internal defect (or caller
// cancellation) does.
type Orchestrator struct {
	data     *culture.Store
	resolver *culture.Resolver
	ux       *UXStage
	copy     *CopyStage
	audit    *AuditStage
	predict  *PredictStage
	logger   *zap.Logger
}

// NewOrchestrator wires the pipeline. The dataset is read-only after
// startup, so one orchestrator serves concurrent runs without coordination.
func NewOrchestrator(data *culture.Store, gw gateway.Gateway, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		data:     data,
		resolver: culture.NewResolver(data),
		ux:       NewUXStage(gw, logger.Named("ux")),
		copy:     NewCopyStage(gw, logger.Named("copy")),
		audit:    NewAuditStage(gw, logger.Named("audit")),
		predict:  NewPredictStage(gw, logger.Named("predict")),
		logger:   logger,
	}
}

// Run executes a full adaptation pipeline and returns the decision bundle.
// Invalid input is rejected before any stage runs.
func (o *Orchestrator) Run(ctx context.Context, req types.AdaptRequest) (*types.VariantSpec, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	variantID := newVariantID()
	log := o.logger.With(zap.String("variant_id", variantID), zap.String("region", req.CountryCode))

	log.Info("stage 1/5: resolving dimension profile")
	profile := o.resolver.Resolve(req.CountryCode, req.Overrides)
	rules := o.data.Rules().Match(profile.Dimensions)
	log.Info("profile resolved", zap.Int("applicable_rules", len(rules)))

	baseline, ok := o.data.Baseline(req.ProductCategory)
	if !ok {
		baseline = culture.DefaultBaseline(req.ProductCategory)
	}

	log.Info("stage 2/5: ux adaptation")
	ux, err := o.ux.Adapt(ctx, UXInput{
		Profile:   profile,
		Rules:     rules,
		Baseline:  baseline,
		PriceBand: req.PriceBand,
		Audience:  req.Audience,
	})
	if err != nil {
		return nil, fmt.Errorf("ux stage: %w", err)
	}

	log.Info("stage 3/5: copy framing")
	copyOut, err := o.copy.Frame(ctx, CopyInput{
		Profile:  profile,
		UX:       ux,
		Baseline: baseline.BaselineCopy,
	})
	if err != nil {
		return nil, fmt.Errorf("copy stage: %w", err)
	}

	partial := &types.VariantSpec{
		VariantID:       variantID,
		Region:          req.CountryCode,
		ThemeEmphasis:   ux.ThemeEmphasis,
		Flow:            ux.Flow,
		Modules:         ux.Modules,
		Copy:            *copyOut,
		Rationale:       ux.Rationale,
		CulturalProfile: *profile,
	}

	log.Info("stage 4/5: compliance audit")
	auditRes, err := o.audit.Audit(ctx, partial, false)
	if err != nil {
		return nil, fmt.Errorf("audit stage: %w", err)
	}
	log.Info("audit complete", zap.Int("score", auditRes.AuditScore), zap.Int("flags", len(auditRes.RiskFlags)))

	log.Info("stage 5/5: impact prediction")
	prediction, err := o.predict.Predict(ctx, PredictInput{
		Variant:      partial,
		Audit:        auditRes,
		BaselineRate: baseline.BaselineRate,
	})
	if err != nil {
		return nil, fmt.Errorf("prediction stage: %w", err)
	}
	log.Info("prediction complete",
		zap.Float64("lift_pct", prediction.LiftPercentage),
		zap.String("confidence", prediction.ConfidenceLevel))

	final := *partial
	final.RiskFlags = auditRes.RiskFlags
	final.AuditScore = auditRes.AuditScore
	final.PredictedLift = *prediction
	final.CreatedAt = time.Now().UTC()

	log.Info("variant complete")
	return &final, nil
}

// ReAudit re-runs only the compliance audit stage against an existing
// bundle, with the given strict-mode flag.
func (o *Orchestrator) ReAudit(ctx context.Context, variant *types.VariantSpec, strictMode bool) (*types.AuditResult, error) {
	o.logger.Info("re-auditing variant",
		zap.String("variant_id", variant.VariantID), zap.Bool("strict", strictMode))
	res, err := o.audit.Audit(ctx, variant, strictMode)
	if err != nil {
		return nil, fmt.Errorf("audit stage: %w", err)
	}
	return res, nil
}

// newVariantID builds a process-unique id of the form var_<12 hex chars>.
func newVariantID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "var_" + hex[:12]
}
