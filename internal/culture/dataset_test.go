package culture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"culturebridge/internal/types"
)

func TestEmbeddedDatasetLoads(t *testing.T) {
	s, err := LoadStore("")
	require.NoError(t, err)

	require.ElementsMatch(t, types.AllowedRegions, s.Regions())

	for _, region := range types.AllowedRegions {
		prior, ok := s.Prior(region)
		require.True(t, ok, "prior for %s", region)
		require.NotEmpty(t, prior.Evidence, "evidence for %s", region)
		require.NotEmpty(t, prior.Notes, "notes for %s", region)
		for _, dim := range types.DimensionNames {
			v, present := prior.Dimensions[dim]
			require.True(t, present, "%s: dimension %s", region, dim)
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 100.0)
		}
	}

	require.Greater(t, s.Rules().Len(), 0)

	for _, category := range types.AllowedCategories {
		b, ok := s.Baseline(category)
		require.True(t, ok, "baseline for %s", category)
		require.NotEmpty(t, b.BaselineFlow, "flow for %s", category)
		require.Greater(t, b.BaselineRate, 0.0, "rate for %s", category)
		require.NotEmpty(t, b.BaselineCopy.CTAPrimary, "copy for %s", category)
	}
}

func TestLoadStoreFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cultural_priors:
  JP:
    country_name: Japan
    dimensions:
      trust_need: 90
    notes: test prior
dimension_ux_mapping:
  rules:
    - rule_id: only
      dimension: trust_need
      comparator: ">="
      threshold: 75
      effect: enhance_guarantees
`), 0o644))

	s, err := LoadStore(path)
	require.NoError(t, err)
	prior, ok := s.Prior("JP")
	require.True(t, ok)
	require.Equal(t, 90.0, prior.Dimensions[types.DimTrustNeed])
	require.Equal(t, 1, s.Rules().Len())

	_, err = LoadStore(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadStoreRejectsBadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dimension_ux_mapping:
  rules:
    - rule_id: bad
      dimension: star_sign
      comparator: ">="
      threshold: 10
      effect: nothing
`), 0o644))

	_, err := LoadStore(path)
	require.Error(t, err)
}

func TestDefaultBaseline(t *testing.T) {
	b := DefaultBaseline("general")
	require.Equal(t, "general", b.ProductCategory)
	require.Equal(t, 2.3, b.BaselineRate)

	var stepIDs []string
	for _, step := range b.BaselineFlow {
		stepIDs = append(stepIDs, step.StepID)
	}
	require.Contains(t, stepIDs, "shipping")
	require.Contains(t, stepIDs, "payment")
}
