package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"culturebridge/internal/gateway"
	"culturebridge/internal/types"
)

const auditSystemPrompt = `You are the compliance audit stage of CultureBridge.

Audit an adapted storefront variant for:
1. Essentializing statements (claims that a population "always" behaves some way)
2. Stereotype-based justifications instead of dimension-based ones
3. Adaptations that could be discriminatory or offensive
4. Adaptations missing a dimension-based rationale
5. Adaptations disproportionate to the dimension scores

Scoring: 90-100 excellent, 70-89 good, 50-69 needs improvement, 0-49 high risk.

Respond only with a JSON object of this shape:
{"audit_score":0,"summary":"...","risk_flags":[{"flag_id":"FLAG_001","severity":"low|medium|high|critical","description":"...","recommendation":"...","affected_element":"..."}],"recommended_changes":[{"element":"...","current":"...","suggested":"...","reason":"..."}],"positive_notes":["..."],"rationale":"..."}`

// essentializingPatterns are the lexical markers of cultural determinism the
// deterministic audit scans for, in copy text and rationale alike.
var essentializingPatterns = []string{
	"always", "never", "all people in", "everyone in",
	"they always", "they never", "people in", "typical of",
}

// dimensionTokens are the substrings a module rationale must contain to
// count as dimension-linked.
var dimensionTokens = []string{
	"uncertainty", "collectivism", "authority", "context",
	"price", "trust", "friction", "ua=", "cl=",
}

// AuditStage checks a variant for bias and missing justification.
type AuditStage struct {
	gw     gateway.Gateway
	logger *zap.Logger
}

// NewAuditStage creates the compliance audit stage.
func NewAuditStage(gw gateway.Gateway, logger *zap.Logger) *AuditStage {
	return &AuditStage{gw: gw, logger: logger}
}

// Audit scores the variant. The deterministic path is pure and total: it
// produces a result for any well-formed variant.
func (s *AuditStage) Audit(ctx context.Context, variant *types.VariantSpec, strictMode bool) (*types.AuditResult, error) {
	task := s.taskPrompt(variant, strictMode)
	out := s.gw.Generate(ctx, auditSystemPrompt, task, 2048)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if out.Status == gateway.StatusStructured {
		var res types.AuditResult
		if err := json.Unmarshal(out.Payload, &res); err == nil && auditWellFormed(&res) {
			s.logger.Debug("audit stage used enrichment", zap.Int("score", res.AuditScore))
			return &res, nil
		}
		s.logger.Warn("audit enrichment result malformed, using rule path")
	} else {
		s.logger.Debug("audit enrichment unavailable", zap.String("reason", out.Reason))
	}

	return fallbackAudit(variant, strictMode), nil
}

func (s *AuditStage) taskPrompt(variant *types.VariantSpec, strictMode bool) string {
	flow, _ := json.Marshal(variant.Flow)
	modules, _ := json.Marshal(variant.Modules)
	copyData, _ := json.Marshal(variant.Copy)
	profile, _ := json.Marshal(variant.CulturalProfile)
	mode := "Standard audit mode."
	if strictMode {
		mode = "STRICT MODE ENABLED: apply higher standards for bias detection."
	}
	return fmt.Sprintf(`Audit this adapted storefront variant.

REGION: %s  THEME: %s
FLOW: %s
MODULES: %s
COPY: %s
PROFILE: %s

%s`, variant.Region, variant.ThemeEmphasis, flow, modules, copyData, profile, mode)
}

func auditWellFormed(res *types.AuditResult) bool {
	return res.AuditScore >= 0 && res.AuditScore <= 100 && res.Summary != ""
}

// fallbackAudit is the deterministic audit. Start at 100; essentializing
// pattern matches cost 10, module rationales without a dimension token cost
// 5, flow adaptations without a dimension driver cost 8, strict mode costs
// a flat 10 after everything else; clamp to [0,100].
func fallbackAudit(variant *types.VariantSpec, strictMode bool) *types.AuditResult {
	var flags []types.RiskFlag
	var positive []string
	score := 100
	flagCounter := 0

	patternSeverity := "medium"
	if strictMode {
		patternSeverity = "high"
	}

	type copyEntry struct {
		element   string
		text      string
		rationale string
	}
	entries := []copyEntry{
		{"copy.cta_primary", variant.Copy.CTAPrimary.Text, variant.Copy.CTAPrimary.Rationale},
		{"copy.cta_secondary", variant.Copy.CTASecondary.Text, variant.Copy.CTASecondary.Rationale},
		{"copy.value_proposition", variant.Copy.ValueProposition.Text, variant.Copy.ValueProposition.Rationale},
		{"copy.urgency_text", variant.Copy.UrgencyText.Text, variant.Copy.UrgencyText.Rationale},
		{"copy.social_proof_text", variant.Copy.SocialProofText.Text, variant.Copy.SocialProofText.Rationale},
	}
	for i, mc := range variant.Copy.Microcopy {
		entries = append(entries, copyEntry{
			element:   fmt.Sprintf("copy.microcopy[%d]", i),
			text:      mc.Text,
			rationale: mc.Rationale,
		})
	}

	for _, entry := range entries {
		text := strings.ToLower(entry.text)
		rationale := strings.ToLower(entry.rationale)
		for _, pattern := range essentializingPatterns {
			if strings.Contains(text, pattern) || strings.Contains(rationale, pattern) {
				flagCounter++
				flags = append(flags, types.RiskFlag{
					FlagID:          fmt.Sprintf("FLAG_%03d", flagCounter),
					Severity:        patternSeverity,
					Description:     fmt.Sprintf("Potentially essentializing language detected in %s: contains %q", entry.element, pattern),
					Recommendation:  "Rephrase to avoid generalizing statements; use dimension-specific language instead.",
					AffectedElement: entry.element,
				})
				score -= 10
			}
		}
	}

	moduleRationales := []struct {
		name      string
		rationale string
	}{
		{"reviews", variant.Modules.Reviews.AdaptationRationale},
		{"guarantees", variant.Modules.Guarantees.AdaptationRationale},
		{"shipping_info", variant.Modules.ShippingInfo.AdaptationRationale},
		{"returns", variant.Modules.Returns.AdaptationRationale},
		{"payment_options", variant.Modules.PaymentOptions.AdaptationRationale},
		{"social_proof", variant.Modules.SocialProof.AdaptationRationale},
	}
	for _, mod := range moduleRationales {
		if !rationaleLinksDimension(mod.rationale) {
			flagCounter++
			flags = append(flags, types.RiskFlag{
				FlagID:          fmt.Sprintf("FLAG_%03d", flagCounter),
				Severity:        "low",
				Description:     fmt.Sprintf("Module %q rationale does not reference a specific behavioral dimension", mod.name),
				Recommendation:  "Ensure the rationale explicitly references dimension scores and mapping rules.",
				AffectedElement: "modules." + mod.name,
			})
			score -= 5
		}
	}

	for _, step := range variant.Flow {
		for _, adaptation := range step.Adaptations {
			if adaptation.DimensionDriver == "" {
				flagCounter++
				flags = append(flags, types.RiskFlag{
					FlagID:          fmt.Sprintf("FLAG_%03d", flagCounter),
					Severity:        "medium",
					Description:     fmt.Sprintf("Flow step %q adaptation lacks a dimension driver", step.Name),
					Recommendation:  "Add the specific dimension and score that drives this adaptation.",
					AffectedElement: "flow." + step.StepID,
				})
				score -= 8
			}
		}
	}

	if len(flags) == 0 {
		positive = append(positive, "All adaptations include dimension-based justification")
	}
	if len(variant.CulturalProfile.Evidence) > 0 {
		positive = append(positive, "Dimension profile includes evidence sources")
	}
	if variant.CulturalProfile.Notes != "" {
		positive = append(positive, "Dimension profile acknowledges limitations in notes")
	}

	if strictMode {
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &types.AuditResult{
		AuditScore:         score,
		Summary:            fmt.Sprintf("Rule-based audit complete. Score: %d/100 with %d flags identified.", score, len(flags)),
		RiskFlags:          flags,
		RecommendedChanges: []types.RecommendedChange{},
		PositiveNotes:      positive,
		Rationale: "Audit performed using deterministic checks: essentializing language detection, " +
			"dimension justification verification, and flow adaptation coverage.",
	}
}

// rationaleLinksDimension reports whether a rationale references at least
// one dimension token. An empty rationale fails: absence of justification
// is itself a finding.
func rationaleLinksDimension(rationale string) bool {
	if rationale == "" {
		return false
	}
	lower := strings.ToLower(rationale)
	for _, token := range dimensionTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
