package pipeline

import (
	"context"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"culturebridge/internal/types"
)

func cleanAudit(score int) *types.AuditResult {
	return &types.AuditResult{AuditScore: score, Summary: "test"}
}

func approx(t *testing.T, got, want float64, what string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

func TestHeuristicLiftNoSignals(t *testing.T) {
	variant := fallbackVariant(t, profileWith(nil))

	p := heuristicLift(variant, cleanAudit(100), 2.3)

	approx(t, p.LiftPercentage, 0, "lift")
	approx(t, p.Predicted, 2.3, "predicted")
	if len(p.AppliedFactors) != 0 {
		t.Errorf("applied factors = %+v, want none", p.AppliedFactors)
	}
	if p.ConfidenceLevel != "low" {
		t.Errorf("confidence = %q, want low", p.ConfidenceLevel)
	}
}

func TestHeuristicLiftCheckoutReduction(t *testing.T) {
	variant := fallbackVariant(t, profileWith(map[string]float64{
		types.DimFrictionTolerance: 35,
	}))

	p := heuristicLift(variant, cleanAudit(100), 2.8)

	if len(p.AppliedFactors) != 1 {
		t.Fatalf("applied factors = %+v, want exactly the checkout reduction", p.AppliedFactors)
	}
	if p.AppliedFactors[0].Lift != "+8.0%" {
		t.Errorf("factor lift = %q, want +8.0%%", p.AppliedFactors[0].Lift)
	}
	approx(t, p.LiftPercentage, 8, "lift")
	approx(t, p.Predicted, 2.8*1.08, "predicted")
}

func TestHeuristicLiftCompoundsAndDedupesSocialProof(t *testing.T) {
	// Prominent reviews and the social proof module share one signal.
	variant := fallbackVariant(t, regionAProfile())

	p := heuristicLift(variant, cleanAudit(100), 2.1)

	if len(p.AppliedFactors) != 3 {
		t.Fatalf("applied factors = %+v, want 3 (social proof counted once)", p.AppliedFactors)
	}
	wantLift := (1.06*1.04*1.05 - 1) * 100
	approx(t, p.LiftPercentage, wantLift, "lift")
	if p.ConfidenceLevel != "medium" {
		t.Errorf("confidence = %q, want medium (3 signals)", p.ConfidenceLevel)
	}
}

func TestHeuristicLiftHighConfidence(t *testing.T) {
	variant := fallbackVariant(t, profileWith(map[string]float64{
		types.DimUncertaintyAvoidance: 82,
		types.DimCollectivism:         78,
		types.DimTrustNeed:            88,
		types.DimPriceSensitivity:     78,
	}))

	p := heuristicLift(variant, cleanAudit(100), 2.1)

	if len(p.AppliedFactors) != 4 {
		t.Fatalf("applied factors = %+v, want 4", p.AppliedFactors)
	}
	if p.ConfidenceLevel != "high" {
		t.Errorf("confidence = %q, want high", p.ConfidenceLevel)
	}
}

func TestHeuristicLiftAuditDiscount(t *testing.T) {
	variant := fallbackVariant(t, profileWith(map[string]float64{
		types.DimFrictionTolerance: 35,
	}))

	// Half the audit score halves the compound excess.
	p := heuristicLift(variant, cleanAudit(50), 2.0)
	approx(t, p.LiftPercentage, 4, "discounted lift")

	// Audit zero removes the lift entirely.
	p = heuristicLift(variant, cleanAudit(0), 2.0)
	approx(t, p.LiftPercentage, 0, "zeroed lift")
	approx(t, p.Predicted, 2.0, "predicted at audit zero")
}

func TestHeuristicLiftStaysPositiveForAnySignal(t *testing.T) {
	variant := fallbackVariant(t, profileWith(map[string]float64{
		types.DimFrictionTolerance: 35,
	}))

	p := heuristicLift(variant, cleanAudit(1), 2.3)
	if p.LiftPercentage <= 0 {
		t.Errorf("lift = %v, must stay strictly positive with one signal and a nonzero audit score",
			p.LiftPercentage)
	}
}

func TestHeuristicLiftDefaultsBaseline(t *testing.T) {
	variant := fallbackVariant(t, profileWith(nil))
	p := heuristicLift(variant, cleanAudit(100), 0)
	approx(t, p.Baseline, 2.3, "defaulted baseline")
}

func TestHeuristicLiftDisclosesSimulation(t *testing.T) {
	variant := fallbackVariant(t, regionAProfile())
	p := heuristicLift(variant, cleanAudit(100), 2.1)

	found := false
	for _, a := range p.Assumptions {
		if a == simulatedDisclaimer {
			found = true
		}
	}
	if !found {
		t.Error("assumptions must carry the simulation disclaimer")
	}
	if !strings.Contains(p.Rationale, "simulated") {
		t.Errorf("rationale should state the estimate is simulated: %q", p.Rationale)
	}
	if p.ABTestPlan.RecommendedSampleSize != 5000 || p.ABTestPlan.StatisticalSignificanceTarget != 0.95 {
		t.Errorf("ab test plan = %+v, want the default recommendation", p.ABTestPlan)
	}
}

func TestPredictStageKeepsNumbersDeterministic(t *testing.T) {
	variant := fallbackVariant(t, regionAProfile())
	in := PredictInput{Variant: variant, Audit: cleanAudit(100), BaselineRate: 2.1}

	stage := NewPredictStage(unavailableGateway{}, zap.NewNop())
	heuristic, err := stage.Predict(context.Background(), in)
	if err != nil {
		t.Fatalf("unavailable gateway must not error: %v", err)
	}

	// Enrichment may reword narrative fields but never the numbers.
	stage = NewPredictStage(cannedGateway{payload: `{
		"predicted": 99,
		"lift_percentage": 400,
		"confidence_level": "high",
		"method": "reviewed by enrichment",
		"rationale": "validated"
	}`}, zap.NewNop())
	enriched, err := stage.Predict(context.Background(), in)
	if err != nil {
		t.Fatalf("enriched path errored: %v", err)
	}

	approx(t, enriched.Predicted, heuristic.Predicted, "predicted")
	approx(t, enriched.LiftPercentage, heuristic.LiftPercentage, "lift")
	if enriched.ConfidenceLevel != "high" {
		t.Errorf("confidence = %q, want enrichment's high", enriched.ConfidenceLevel)
	}
	if enriched.Method != "reviewed by enrichment" {
		t.Errorf("method = %q, want enrichment's method", enriched.Method)
	}

	// A payload without a confidence level is malformed and is ignored.
	stage = NewPredictStage(cannedGateway{payload: `{"predicted": 99}`}, zap.NewNop())
	fallback, err := stage.Predict(context.Background(), in)
	if err != nil {
		t.Fatalf("malformed payload must not error: %v", err)
	}
	if fallback.Method != heuristic.Method {
		t.Error("malformed payload should keep the heuristic narrative")
	}
}
