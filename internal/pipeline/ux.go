// Package pipeline implements the four-stage adaptation pipeline: UX
// adaptation, copy framing, compliance audit, and impact prediction. Each
// stage has an enrichment path through the gateway and a deterministic
// rule-based fallback with the same output shape; enrichment failure
// degrades that single stage, never the run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"culturebridge/internal/culture"
	"culturebridge/internal/gateway"
	"culturebridge/internal/types"
)

const uxSystemPrompt = `You are the UX adaptation stage of CultureBridge.

Adapt an e-commerce storefront's flow, trust modules, and layout emphasis
based on a behavioral dimension profile.

Rules:
1. Every adaptation must reference a specific dimension and its score.
2. Use only the provided dimension-to-UX mapping rules to justify changes.
3. Changes must be functional (flow, modules, emphasis), not stereotypes.
4. Each change must include a rationale naming the driving dimension score.

Respond only with a JSON object of this shape:
{"theme_emphasis":"...","rationale":"...","flow":[{"step_id":"...","name":"...","description":"...","adaptations":[{"change":"...","dimension_driver":"...","rationale":"..."}],"required_fields":["..."],"validations":["..."]}],"modules":{"reviews":{"enabled":true,"placement":"...","style":"...","adaptation_rationale":"..."},"guarantees":{"enabled":true,"types":["..."],"prominence":"...","adaptation_rationale":"..."},"shipping_info":{"enabled":true,"placement":"...","detail_level":"...","adaptation_rationale":"..."},"returns":{"enabled":true,"prominence":"...","adaptation_rationale":"..."},"payment_options":{"enabled":true,"show_installments":false,"show_local_methods":false,"emphasized_methods":["..."],"adaptation_rationale":"..."},"social_proof":{"enabled":true,"type":"...","placement":"...","adaptation_rationale":"..."}}}`

// UXInput carries everything the UX stage consumes.
type UXInput struct {
	Profile   *types.DimensionProfile
	Rules     []culture.Rule
	Baseline  culture.ProductBaseline
	PriceBand string
	Audience  string
}

// UXStage adapts the storefront flow and modules to a dimension profile.
type UXStage struct {
	gw     gateway.Gateway
	logger *zap.Logger
}

// NewUXStage creates the UX adaptation stage.
func NewUXStage(gw gateway.Gateway, logger *zap.Logger) *UXStage {
	return &UXStage{gw: gw, logger: logger}
}

// Adapt produces the UX output. Enrichment failures degrade to the
// deterministic rule path; only context cancellation is an error.
func (s *UXStage) Adapt(ctx context.Context, in UXInput) (*types.UXOutput, error) {
	task := s.taskPrompt(in)
	out := s.gw.Generate(ctx, uxSystemPrompt, task, 4096)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if out.Status == gateway.StatusStructured {
		var ux types.UXOutput
		if err := json.Unmarshal(out.Payload, &ux); err == nil && uxWellFormed(&ux) {
			s.logger.Debug("ux stage used enrichment",
				zap.Int("flow_steps", len(ux.Flow)))
			return &ux, nil
		}
		s.logger.Warn("ux enrichment result malformed, using rule path")
	} else {
		s.logger.Debug("ux enrichment unavailable", zap.String("reason", out.Reason))
	}

	return fallbackUX(in), nil
}

func (s *UXStage) taskPrompt(in UXInput) string {
	dims, _ := json.Marshal(in.Profile.Dimensions)
	rules, _ := json.Marshal(in.Rules)
	flow, _ := json.Marshal(in.Baseline.BaselineFlow)
	return fmt.Sprintf(`Adapt this storefront for the target profile.

PROFILE (%s): %s

APPLICABLE MAPPING RULES: %s

CATEGORY: %s  PRICE BAND: %s  AUDIENCE: %s
BASELINE FLOW: %s

Apply the mapping rules to adapt the flow and modules. Each adaptation must
reference the rule and dimension score that drives it. If rules conflict,
resolve in declaration order and explain the trade-off in the rationale.`,
		in.Profile.CountryCode, dims, rules,
		in.Baseline.ProductCategory, in.PriceBand, in.Audience, flow)
}

// uxWellFormed checks the enrichment payload kept the contract shape.
func uxWellFormed(ux *types.UXOutput) bool {
	return ux.ThemeEmphasis != "" && len(ux.Flow) > 0
}

// fallbackUX is the deterministic rule path. For each crossed threshold it
// applies a fixed transformation; every emitted field carries a rationale
// naming the triggering dimension and its measured value.
func fallbackUX(in UXInput) *types.UXOutput {
	p := in.Profile
	friction := p.Score(types.DimFrictionTolerance)
	collectivism := p.Score(types.DimCollectivism)
	trust := p.Score(types.DimTrustNeed)
	uncertainty := p.Score(types.DimUncertaintyAvoidance)
	contextLevel := p.Score(types.DimContextLevel)
	priceSens := p.Score(types.DimPriceSensitivity)

	flow := adaptFlow(in.Baseline.BaselineFlow, friction)
	modules := adaptModules(collectivism, trust, uncertainty, contextLevel, priceSens)

	// Theme labels in fixed trigger order; "balanced" when none fire.
	var themes []string
	if trust >= 75 {
		themes = append(themes, "trust-first")
	}
	if friction <= 40 {
		themes = append(themes, "efficiency-driven")
	}
	if collectivism >= 65 {
		themes = append(themes, "community-validated")
	}
	if contextLevel <= 35 {
		themes = append(themes, "information-rich")
	}
	if priceSens >= 70 {
		themes = append(themes, "value-oriented")
	}
	theme := "balanced"
	if len(themes) > 0 {
		theme = strings.Join(themes, ", ")
	}

	return &types.UXOutput{
		ThemeEmphasis: theme,
		Rationale: fmt.Sprintf(
			"Adaptation driven by %d applicable mapping rules across %d triggered behavioral patterns. Generated by the deterministic rule path.",
			len(in.Rules), len(themes)),
		Flow:    flow,
		Modules: modules,
	}
}

// adaptFlow merges the shipping and payment steps into one express step when
// friction tolerance is at or below 40; otherwise the baseline flow passes
// through with empty adaptation lists.
func adaptFlow(baseline []types.FlowStep, friction float64) []types.FlowStep {
	flow := make([]types.FlowStep, 0, len(baseline))
	if friction > 40 {
		for _, step := range baseline {
			step.Adaptations = []types.Adaptation{}
			flow = append(flow, step)
		}
		return flow
	}

	for _, step := range baseline {
		switch step.StepID {
		case "shipping":
			flow = append(flow, types.FlowStep{
				StepID:      "express_checkout",
				Name:        "Express Checkout",
				Description: "Combined shipping and payment in a single streamlined step",
				Adaptations: []types.Adaptation{{
					Change:          "Combined shipping and payment steps",
					DimensionDriver: fmt.Sprintf("friction_tolerance=%.0f", friction),
					Rationale: fmt.Sprintf(
						"friction_tolerance=%.0f is at or below the streamlining threshold of 40; fewer steps reduce abandonment",
						friction),
				}},
				RequiredFields: []string{"full_name", "address", "payment_method"},
				Validations:    []string{"address_format"},
			})
		case "payment":
			// absorbed into express_checkout
		default:
			step.Adaptations = []types.Adaptation{}
			flow = append(flow, step)
		}
	}
	return flow
}

func adaptModules(collectivism, trust, uncertainty, contextLevel, priceSens float64) types.ModuleSet {
	reviews := types.ReviewsModule{
		Enabled:   true,
		Placement: "below_fold",
		Style:     "stars",
		AdaptationRationale: fmt.Sprintf(
			"collectivism=%.0f: standard review display", collectivism),
	}
	if collectivism >= 65 {
		reviews.Placement = "above_fold"
		reviews.Style = "community"
		reviews.AdaptationRationale = fmt.Sprintf(
			"collectivism=%.0f: strong social proof emphasis with community styling", collectivism)
	}

	guarantees := types.GuaranteesModule{
		Enabled:    true,
		Types:      []string{"30-day returns", "manufacturer warranty"},
		Prominence: "medium",
		AdaptationRationale: fmt.Sprintf(
			"trust_need=%.0f: standard guarantees", trust),
	}
	if trust >= 75 {
		guarantees.Types = []string{
			"money-back guarantee", "authenticity guarantee", "secure payment", "official warranty",
		}
		guarantees.Prominence = "high"
		guarantees.AdaptationRationale = fmt.Sprintf(
			"trust_need=%.0f: enhanced guarantee prominence and extended guarantee types", trust)
	}

	shipping := types.ShippingInfoModule{
		Enabled:     true,
		Placement:   "product_detail",
		DetailLevel: "standard",
		AdaptationRationale: fmt.Sprintf(
			"uncertainty_avoidance=%.0f, context_level=%.0f: standard shipping display",
			uncertainty, contextLevel),
	}
	if uncertainty >= 70 {
		shipping.Placement = "above_fold"
		shipping.AdaptationRationale = fmt.Sprintf(
			"uncertainty_avoidance=%.0f: shipping information surfaced early and prominently",
			uncertainty)
	}
	if contextLevel <= 35 {
		shipping.DetailLevel = "detailed"
		shipping.AdaptationRationale += fmt.Sprintf(
			"; context_level=%.0f: detailed information level", contextLevel)
	}

	returns := types.ReturnsModule{
		Enabled:    true,
		Prominence: "medium",
		AdaptationRationale: fmt.Sprintf(
			"uncertainty_avoidance=%.0f: standard returns policy display", uncertainty),
	}
	if uncertainty >= 70 {
		returns.Prominence = "high"
		returns.AdaptationRationale = fmt.Sprintf(
			"uncertainty_avoidance=%.0f: returns policy raised to high prominence", uncertainty)
	}

	payment := types.PaymentOptionsModule{
		Enabled:           true,
		ShowInstallments:  false,
		ShowLocalMethods:  true,
		EmphasizedMethods: []string{"credit_card", "debit_card"},
		AdaptationRationale: fmt.Sprintf(
			"price_sensitivity=%.0f: standard payment options", priceSens),
	}
	if priceSens >= 70 {
		payment.ShowInstallments = true
		payment.EmphasizedMethods = []string{"installments", "BNPL", "mobile_payment"}
		payment.AdaptationRationale = fmt.Sprintf(
			"price_sensitivity=%.0f: installment and flexible payment emphasis", priceSens)
	}

	social := types.SocialProofModule{
		Enabled:   false,
		Type:      "individual",
		Placement: "sidebar",
		AdaptationRationale: fmt.Sprintf(
			"collectivism=%.0f: individual testimonials", collectivism),
	}
	if collectivism >= 65 {
		social.Enabled = true
		social.Type = "community"
		social.Placement = "above_fold"
		social.AdaptationRationale = fmt.Sprintf(
			"collectivism=%.0f: community-driven social proof above the primary view", collectivism)
	}

	return types.ModuleSet{
		Reviews:        reviews,
		Guarantees:     guarantees,
		ShippingInfo:   shipping,
		Returns:        returns,
		PaymentOptions: payment,
		SocialProof:    social,
	}
}
