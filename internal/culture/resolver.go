package culture

import (
	"fmt"

	"culturebridge/internal/types"
)

// Resolver merges stored population priors with caller-supplied overrides
// into a final dimension profile. It is total: an unknown region yields the
// defined neutral profile, an override on an unknown key is ignored, and
// the result always carries exactly the seven dimensions.
type Resolver struct {
	data *Store
}

// NewResolver creates a resolver backed by the given dataset.
func NewResolver(data *Store) *Resolver {
	return &Resolver{data: data}
}

// Resolve produces the dimension profile for a region with overrides
// applied. No external calls.
func (r *Resolver) Resolve(countryCode string, overrides map[string]float64) *types.DimensionProfile {
	prior, ok := r.data.Prior(countryCode)
	if !ok {
		return applyOverrides(neutralProfile(countryCode), overrides)
	}

	profile := &types.DimensionProfile{
		CountryCode:         countryCode,
		Dimensions:          make(map[string]float64, len(types.DimensionNames)),
		Evidence:            append([]types.Evidence(nil), prior.Evidence...),
		Notes:               prior.Notes,
		Rationale:           prior.Rationale,
		DimensionRationales: prior.DimensionRationales,
	}

	// All seven dimensions are present afterwards; a dimension the prior
	// lacks falls back to the neutral midpoint.
	for _, dim := range types.DimensionNames {
		if v, ok := prior.Dimensions[dim]; ok {
			profile.Dimensions[dim] = clampScore(v)
		} else {
			profile.Dimensions[dim] = types.NeutralScore
		}
	}

	return applyOverrides(profile, overrides)
}

func applyOverrides(profile *types.DimensionProfile, overrides map[string]float64) *types.DimensionProfile {
	applied := false
	for key, v := range overrides {
		if _, known := profile.Dimensions[key]; !known {
			continue // unknown override keys are silently ignored
		}
		profile.Dimensions[key] = clampScore(v)
		applied = true
	}
	if applied {
		profile.Notes += " [Manual overrides applied to some dimensions]"
	}
	return profile
}

func neutralProfile(countryCode string) *types.DimensionProfile {
	dims := make(map[string]float64, len(types.DimensionNames))
	for _, dim := range types.DimensionNames {
		dims[dim] = types.NeutralScore
	}
	return &types.DimensionProfile{
		CountryCode: countryCode,
		Dimensions:  dims,
		Evidence: []types.Evidence{{
			Source:      "Default baseline",
			Description: "No specific cultural data available; using neutral midpoint values.",
		}},
		Notes:     fmt.Sprintf("No cultural priors available for %s. Using default neutral values.", countryCode),
		Rationale: "Default neutral profile applied due to missing cultural data.",
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
