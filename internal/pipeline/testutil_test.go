package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"culturebridge/internal/culture"
	"culturebridge/internal/gateway"
	"culturebridge/internal/types"
)

// unavailableGateway simulates an unconfigured enrichment service.
type unavailableGateway struct{}

func (unavailableGateway) Generate(context.Context, string, string, int) gateway.Outcome {
	return gateway.Unavailable("test gateway")
}

// cannedGateway returns the same structured payload for every call.
type cannedGateway struct {
	payload string
}

func (g cannedGateway) Generate(context.Context, string, string, int) gateway.Outcome {
	return gateway.Structured(json.RawMessage(g.payload))
}

// profileWith builds a fully-populated profile with the given dimension
// values; unlisted dimensions sit at the neutral midpoint.
func profileWith(overrides map[string]float64) *types.DimensionProfile {
	dims := make(map[string]float64, len(types.DimensionNames))
	for _, dim := range types.DimensionNames {
		dims[dim] = types.NeutralScore
	}
	for k, v := range overrides {
		dims[k] = v
	}
	return &types.DimensionProfile{
		CountryCode: "JP",
		Dimensions:  dims,
		Evidence:    []types.Evidence{{Source: "test", Description: "fixture"}},
		Notes:       "fixture profile; population-level tendencies only",
	}
}

func testDataset(t *testing.T) *culture.Store {
	t.Helper()
	s, err := culture.LoadStore("")
	if err != nil {
		t.Fatalf("LoadStore failed: %v", err)
	}
	return s
}

// fallbackVariant assembles the partial bundle the audit stage consumes,
// using the deterministic UX and copy paths.
func fallbackVariant(t *testing.T, profile *types.DimensionProfile) *types.VariantSpec {
	t.Helper()
	baseline := culture.DefaultBaseline("electronics")
	ux := fallbackUX(UXInput{
		Profile:   profile,
		Baseline:  baseline,
		PriceBand: "mid",
		Audience:  "general_consumer",
	})
	copyOut := fallbackCopy(profile, baseline.BaselineCopy)
	return &types.VariantSpec{
		VariantID:       "var_000000000000",
		Region:          profile.CountryCode,
		ThemeEmphasis:   ux.ThemeEmphasis,
		Flow:            ux.Flow,
		Modules:         ux.Modules,
		Copy:            *copyOut,
		Rationale:       ux.Rationale,
		CulturalProfile: *profile,
	}
}
