// Package types defines the shared records passed between pipeline stages.
// Every stage boundary is an explicit struct so the "every adaptation carries
// a dimension-linked rationale" contract is visible in the type system rather
// than buried in map keys.
package types

import "time"

// The seven behavioral dimensions. Scores are population-level tendencies
// in [0,100], never prescriptive characteristics of individuals.
const (
	DimUncertaintyAvoidance = "uncertainty_avoidance"
	DimCollectivism         = "collectivism"
	DimAuthorityDistance    = "authority_distance"
	DimContextLevel         = "context_level"
	DimPriceSensitivity     = "price_sensitivity"
	DimTrustNeed            = "trust_need"
	DimFrictionTolerance    = "friction_tolerance"
)

// NeutralScore is the midpoint used when no prior data exists.
const NeutralScore = 50.0

// DimensionNames lists all seven dimensions in canonical order.
var DimensionNames = []string{
	DimUncertaintyAvoidance,
	DimCollectivism,
	DimAuthorityDistance,
	DimContextLevel,
	DimPriceSensitivity,
	DimTrustNeed,
	DimFrictionTolerance,
}

// IsDimension reports whether name is one of the seven defined dimensions.
func IsDimension(name string) bool {
	for _, d := range DimensionNames {
		if d == name {
			return true
		}
	}
	return false
}

// Evidence records a data source backing a dimension profile.
type Evidence struct {
	Source      string `json:"source" yaml:"source"`
	Description string `json:"description" yaml:"description"`
}

// DimensionProfile is the resolved behavioral profile for a region.
// After resolution all seven dimensions are present and in [0,100];
// the profile is immutable for the rest of the run.
type DimensionProfile struct {
	CountryCode         string             `json:"country_code"`
	Dimensions          map[string]float64 `json:"dimensions"`
	Evidence            []Evidence         `json:"evidence"`
	Notes               string             `json:"notes"`
	Rationale           string             `json:"rationale,omitempty"`
	DimensionRationales map[string]string  `json:"dimension_rationales,omitempty"`
}

// Score returns the value for a dimension, defaulting to the neutral
// midpoint when the dimension is absent.
func (p *DimensionProfile) Score(name string) float64 {
	if p == nil || p.Dimensions == nil {
		return NeutralScore
	}
	if v, ok := p.Dimensions[name]; ok {
		return v
	}
	return NeutralScore
}

// Adaptation is a single change applied to a flow step. DimensionDriver
// names the dimension and score that justify the change; the audit stage
// flags adaptations that leave it empty.
type Adaptation struct {
	Change          string `json:"change"`
	DimensionDriver string `json:"dimension_driver"`
	Rationale       string `json:"rationale"`
}

// FlowStep is one step of the purchase flow.
type FlowStep struct {
	StepID         string       `json:"step_id" yaml:"step_id"`
	Name           string       `json:"name" yaml:"name"`
	Description    string       `json:"description" yaml:"description"`
	Adaptations    []Adaptation `json:"adaptations"`
	RequiredFields []string     `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
	Validations    []string     `json:"validations,omitempty" yaml:"validations,omitempty"`
}

// Module configurations. Each carries an AdaptationRationale that must
// reference at least one dimension token to pass the audit.

type ReviewsModule struct {
	Enabled             bool   `json:"enabled"`
	Placement           string `json:"placement"`
	Style               string `json:"style"`
	AdaptationRationale string `json:"adaptation_rationale"`
}

type GuaranteesModule struct {
	Enabled             bool     `json:"enabled"`
	Types               []string `json:"types"`
	Prominence          string   `json:"prominence"`
	AdaptationRationale string   `json:"adaptation_rationale"`
}

type ShippingInfoModule struct {
	Enabled             bool   `json:"enabled"`
	Placement           string `json:"placement"`
	DetailLevel         string `json:"detail_level"`
	AdaptationRationale string `json:"adaptation_rationale"`
}

type ReturnsModule struct {
	Enabled             bool   `json:"enabled"`
	Prominence          string `json:"prominence"`
	AdaptationRationale string `json:"adaptation_rationale"`
}

type PaymentOptionsModule struct {
	Enabled             bool     `json:"enabled"`
	ShowInstallments    bool     `json:"show_installments"`
	ShowLocalMethods    bool     `json:"show_local_methods"`
	EmphasizedMethods   []string `json:"emphasized_methods"`
	AdaptationRationale string   `json:"adaptation_rationale"`
}

type SocialProofModule struct {
	Enabled             bool   `json:"enabled"`
	Type                string `json:"type"`
	Placement           string `json:"placement"`
	AdaptationRationale string `json:"adaptation_rationale"`
}

// ModuleSet is the fixed set of adaptable storefront modules.
type ModuleSet struct {
	Reviews        ReviewsModule        `json:"reviews"`
	Guarantees     GuaranteesModule     `json:"guarantees"`
	ShippingInfo   ShippingInfoModule   `json:"shipping_info"`
	Returns        ReturnsModule        `json:"returns"`
	PaymentOptions PaymentOptionsModule `json:"payment_options"`
	SocialProof    SocialProofModule    `json:"social_proof"`
}

// UXOutput is the UX-adaptation stage result.
type UXOutput struct {
	ThemeEmphasis string     `json:"theme_emphasis"`
	Rationale     string     `json:"rationale"`
	Flow          []FlowStep `json:"flow"`
	Modules       ModuleSet  `json:"modules"`
}

// CopyField is a single piece of copy plus the rationale that justifies it.
type CopyField struct {
	Text      string `json:"text"`
	Rationale string `json:"rationale"`
}

// Microcopy is copy attached to a specific touchpoint.
type Microcopy struct {
	Location  string `json:"location"`
	Text      string `json:"text"`
	Rationale string `json:"rationale"`
}

// CopyOutput is the copy-framing stage result.
type CopyOutput struct {
	CTAPrimary       CopyField   `json:"cta_primary"`
	CTASecondary     CopyField   `json:"cta_secondary"`
	ValueProposition CopyField   `json:"value_proposition"`
	UrgencyText      CopyField   `json:"urgency_text"`
	SocialProofText  CopyField   `json:"social_proof_text"`
	Microcopy        []Microcopy `json:"microcopy"`
}

// RiskFlag is a single audit finding.
type RiskFlag struct {
	FlagID          string `json:"flag_id"`
	Severity        string `json:"severity"` // low|medium|high|critical
	Description     string `json:"description"`
	Recommendation  string `json:"recommendation"`
	AffectedElement string `json:"affected_element"`
}

// RecommendedChange suggests a concrete replacement for a flagged element.
type RecommendedChange struct {
	Element   string `json:"element"`
	Current   string `json:"current"`
	Suggested string `json:"suggested"`
	Reason    string `json:"reason"`
}

// AuditResult is the compliance-audit stage result.
type AuditResult struct {
	AuditScore         int                 `json:"audit_score"`
	Summary            string              `json:"summary"`
	RiskFlags          []RiskFlag          `json:"risk_flags"`
	RecommendedChanges []RecommendedChange `json:"recommended_changes"`
	PositiveNotes      []string            `json:"positive_notes"`
	Rationale          string              `json:"rationale"`
}

// AppliedFactor names one lift signal that fired and its relative factor.
type AppliedFactor struct {
	Rule string `json:"rule"`
	Lift string `json:"lift"`
}

// ABTestPlan is the recommended validation experiment for a variant.
type ABTestPlan struct {
	RecommendedSampleSize         int      `json:"recommended_sample_size"`
	RecommendedDurationDays       int      `json:"recommended_duration_days"`
	SuccessMetric                 string   `json:"success_metric"`
	Segments                      []string `json:"segments"`
	StatisticalSignificanceTarget float64  `json:"statistical_significance_target"`
}

// LiftPrediction is the impact-prediction stage result. All figures are
// simulated estimates; Assumptions always carries an explicit disclaimer.
type LiftPrediction struct {
	Metric          string          `json:"metric"`
	Baseline        float64         `json:"baseline"`
	Predicted       float64         `json:"predicted"`
	LiftPercentage  float64         `json:"lift_percentage"`
	ConfidenceLevel string          `json:"confidence_level"` // low|medium|high
	Method          string          `json:"method"`
	Assumptions     []string        `json:"assumptions"`
	AppliedFactors  []AppliedFactor `json:"applied_factors"`
	ABTestPlan      ABTestPlan      `json:"ab_test_plan"`
	Rationale       string          `json:"rationale"`
}

// VariantSpec is the complete decision bundle produced by one pipeline run.
// Immutable once returned; the store owns its lifetime.
type VariantSpec struct {
	VariantID       string           `json:"variant_id"`
	Region          string           `json:"region"`
	ThemeEmphasis   string           `json:"theme_emphasis"`
	Flow            []FlowStep       `json:"flow"`
	Modules         ModuleSet        `json:"modules"`
	Copy            CopyOutput       `json:"copy"`
	RiskFlags       []RiskFlag       `json:"risk_flags"`
	AuditScore      int              `json:"audit_score"`
	PredictedLift   LiftPrediction   `json:"predicted_lift"`
	Rationale       string           `json:"rationale"`
	CulturalProfile DimensionProfile `json:"cultural_profile"`
	CreatedAt       time.Time        `json:"created_at"`
}
