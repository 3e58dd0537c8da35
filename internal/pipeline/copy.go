package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"culturebridge/internal/culture"
	"culturebridge/internal/gateway"
	"culturebridge/internal/types"
)

const copySystemPrompt = `You are the copy framing stage of CultureBridge.

Adapt e-commerce copy (CTAs, value proposition, urgency, social proof,
microcopy) based on a behavioral dimension profile.

Rules:
1. Adaptations must reflect dimension scores, never stereotypes.
2. Never write essentializing statements about any population.
3. Every copy field must include a rationale referencing a dimension score.
4. Change framing, not language; output stays in English.

Respond only with a JSON object of this shape:
{"cta_primary":{"text":"...","rationale":"..."},"cta_secondary":{"text":"...","rationale":"..."},"value_proposition":{"text":"...","rationale":"..."},"urgency_text":{"text":"...","rationale":"..."},"social_proof_text":{"text":"...","rationale":"..."},"microcopy":[{"location":"...","text":"...","rationale":"..."}]}`

// CopyInput carries everything the copy stage consumes.
type CopyInput struct {
	Profile  *types.DimensionProfile
	UX       *types.UXOutput
	Baseline culture.BaselineCopy
}

// CopyStage reframes storefront copy to match the dimension profile.
type CopyStage struct {
	gw     gateway.Gateway
	logger *zap.Logger
}

// NewCopyStage creates the copy framing stage.
func NewCopyStage(gw gateway.Gateway, logger *zap.Logger) *CopyStage {
	return &CopyStage{gw: gw, logger: logger}
}

// Frame produces the copy output, degrading to the deterministic rule path
// when enrichment is unavailable or malformed.
func (s *CopyStage) Frame(ctx context.Context, in CopyInput) (*types.CopyOutput, error) {
	task := s.taskPrompt(in)
	out := s.gw.Generate(ctx, copySystemPrompt, task, 2048)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if out.Status == gateway.StatusStructured {
		var c types.CopyOutput
		if err := json.Unmarshal(out.Payload, &c); err == nil && copyWellFormed(&c) {
			s.logger.Debug("copy stage used enrichment")
			return &c, nil
		}
		s.logger.Warn("copy enrichment result malformed, using rule path")
	} else {
		s.logger.Debug("copy enrichment unavailable", zap.String("reason", out.Reason))
	}

	return fallbackCopy(in.Profile, in.Baseline), nil
}

func (s *CopyStage) taskPrompt(in CopyInput) string {
	dims, _ := json.Marshal(in.Profile.Dimensions)
	modules, _ := json.Marshal(in.UX.Modules)
	return fmt.Sprintf(`Generate adapted copy for this storefront.

PROFILE (%s): %s
UX THEME: %s

BASE COPY:
cta_primary: %q
cta_secondary: %q
value_proposition: %q
urgency_text: %q
social_proof_text: %q

ADAPTED MODULES: %s

Adapt framing only: group vs individual CTAs, value emphasis (quality vs
value vs trust vs community), urgency style, and microcopy for checkout,
trust, and shipping touchpoints.`,
		in.Profile.CountryCode, dims, in.UX.ThemeEmphasis,
		in.Baseline.CTAPrimary, in.Baseline.CTASecondary,
		in.Baseline.ValueProposition, in.Baseline.UrgencyText,
		in.Baseline.SocialProofText, modules)
}

func copyWellFormed(c *types.CopyOutput) bool {
	return c.CTAPrimary.Text != "" && c.CTAPrimary.Rationale != "" &&
		c.ValueProposition.Text != ""
}

// fallbackCopy is the deterministic rule path. Copy text never restates a
// dimension value and never generalizes about a population; the measured
// values live only in the rationale fields.
func fallbackCopy(p *types.DimensionProfile, base culture.BaselineCopy) *types.CopyOutput {
	collectivism := p.Score(types.DimCollectivism)
	uncertainty := p.Score(types.DimUncertaintyAvoidance)
	priceSens := p.Score(types.DimPriceSensitivity)
	contextLevel := p.Score(types.DimContextLevel)
	trust := p.Score(types.DimTrustNeed)

	highCollectivism := collectivism >= 65
	highUncertainty := uncertainty >= 70
	highPriceSens := priceSens >= 70
	lowContext := contextLevel <= 35
	highTrust := trust >= 75

	var ctaPrimary types.CopyField
	switch {
	case highCollectivism:
		ctaPrimary = types.CopyField{
			Text: "Join thousands who chose this - Add to Cart",
			Rationale: fmt.Sprintf(
				"collectivism=%.0f: group validation framing emphasizes community consensus", collectivism),
		}
	case lowContext:
		ctaPrimary = types.CopyField{
			Text: "Add to Cart - Free shipping, 30-day returns",
			Rationale: fmt.Sprintf(
				"context_level=%.0f: low-context preference calls for explicit benefit information in the CTA", contextLevel),
		}
	default:
		ctaPrimary = types.CopyField{
			Text:      base.CTAPrimary,
			Rationale: "Baseline CTA maintained; no strong dimension-driven change indicated",
		}
	}

	var ctaSecondary types.CopyField
	if highCollectivism {
		ctaSecondary = types.CopyField{
			Text: "Share with friends",
			Rationale: fmt.Sprintf(
				"collectivism=%.0f: social sharing supports group-oriented decision making", collectivism),
		}
	} else {
		ctaSecondary = types.CopyField{
			Text: "Save to your wishlist",
			Rationale: fmt.Sprintf(
				"collectivism=%.0f: individual-oriented save action", collectivism),
		}
	}

	var valueProp types.CopyField
	switch {
	case highTrust && highUncertainty:
		valueProp = types.CopyField{
			Text: "Trusted by experts. Backed by our guarantee. Quality you can count on.",
			Rationale: fmt.Sprintf(
				"trust_need=%.0f, uncertainty_avoidance=%.0f: trust and reliability framing for a risk-averse audience",
				trust, uncertainty),
		}
	case highPriceSens:
		valueProp = types.CopyField{
			Text: "Exceptional value - premium quality at the best price. Compare and save.",
			Rationale: fmt.Sprintf(
				"price_sensitivity=%.0f: value-first framing with a comparison invitation", priceSens),
		}
	default:
		valueProp = types.CopyField{
			Text:      base.ValueProposition,
			Rationale: "Baseline value proposition; balanced approach",
		}
	}

	var urgency types.CopyField
	switch {
	case highCollectivism:
		urgency = types.CopyField{
			Text: "Popular choice - 500+ customers bought this today",
			Rationale: fmt.Sprintf(
				"collectivism=%.0f: social proof urgency leverages group behavior", collectivism),
		}
	case highUncertainty:
		urgency = types.CopyField{
			Text: "Secure your order now - our guarantee covers every purchase",
			Rationale: fmt.Sprintf(
				"uncertainty_avoidance=%.0f: reassurance-based urgency reduces perceived risk", uncertainty),
		}
	default:
		urgency = types.CopyField{
			Text:      base.UrgencyText,
			Rationale: "Standard scarcity-based urgency",
		}
	}

	var socialProof types.CopyField
	if highCollectivism {
		socialProof = types.CopyField{
			Text: "Rated 4.8/5 by our community of 25,000+ verified buyers",
			Rationale: fmt.Sprintf(
				"collectivism=%.0f: community-scale social proof with verification emphasis", collectivism),
		}
	} else {
		socialProof = types.CopyField{
			Text: "Independently reviewed and rated 4.8/5 stars",
			Rationale: fmt.Sprintf(
				"collectivism=%.0f: individual-oriented review framing with independence emphasis", collectivism),
		}
	}

	var microcopy []types.Microcopy
	if highTrust {
		microcopy = append(microcopy, types.Microcopy{
			Location: "checkout_button",
			Text:     "Secure checkout - your information is protected",
			Rationale: fmt.Sprintf(
				"trust_need=%.0f: security reassurance at the point of commitment", trust),
		})
	}
	if highUncertainty {
		microcopy = append(microcopy, types.Microcopy{
			Location: "trust_badge",
			Text:     "100% money-back guarantee / Verified seller / Secure payment",
			Rationale: fmt.Sprintf(
				"uncertainty_avoidance=%.0f: multiple trust signals reduce uncertainty at the decision point", uncertainty),
		})
	}
	if highPriceSens {
		microcopy = append(microcopy, types.Microcopy{
			Location: "price_area",
			Text:     "Best price guarantee - we will match any lower price",
			Rationale: fmt.Sprintf(
				"price_sensitivity=%.0f: price-match messaging reduces price anxiety", priceSens),
		})
	}
	shippingNote := types.Microcopy{
		Location: "shipping_note",
		Text:     "Free standard shipping / Easy returns",
		Rationale: fmt.Sprintf(
			"context_level=%.0f: concise shipping summary", contextLevel),
	}
	if lowContext {
		shippingNote.Text = "Free shipping (3-5 business days) / 30-day free returns / Full refund policy"
		shippingNote.Rationale = fmt.Sprintf(
			"context_level=%.0f: detailed shipping terms for low-context preference", contextLevel)
	}
	microcopy = append(microcopy, shippingNote)

	return &types.CopyOutput{
		CTAPrimary:       ctaPrimary,
		CTASecondary:     ctaSecondary,
		ValueProposition: valueProp,
		UrgencyText:      urgency,
		SocialProofText:  socialProof,
		Microcopy:        microcopy,
	}
}
