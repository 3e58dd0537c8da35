package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"culturebridge/internal/types"
)

func testStore(t *testing.T) *VariantStore {
	t.Helper()
	s, err := NewVariantStore(filepath.Join(t.TempDir(), "variants.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testVariant(id string, created time.Time) *types.VariantSpec {
	return &types.VariantSpec{
		VariantID:     id,
		Region:        "JP",
		ThemeEmphasis: "trust-first",
		AuditScore:    100,
		Copy: types.CopyOutput{
			CTAPrimary: types.CopyField{Text: "Add to Cart", Rationale: "baseline"},
		},
		CulturalProfile: types.DimensionProfile{
			CountryCode: "JP",
			Dimensions:  map[string]float64{types.DimTrustNeed: 88},
		},
		CreatedAt: created,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := testStore(t)

	in := testVariant("var_aaa111bbb222", time.Now().UTC())
	require.NoError(t, s.Put(in))

	out, err := s.Get(in.VariantID)
	require.NoError(t, err)
	require.Equal(t, in.VariantID, out.VariantID)
	require.Equal(t, in.ThemeEmphasis, out.ThemeEmphasis)
	require.Equal(t, in.AuditScore, out.AuditScore)
	require.Equal(t, 88.0, out.CulturalProfile.Dimensions[types.DimTrustNeed])
}

func TestPutRejectsDuplicateID(t *testing.T) {
	s := testStore(t)

	v := testVariant("var_aaa111bbb222", time.Now().UTC())
	require.NoError(t, s.Put(v))

	// Ids are write-once; a second Put must fail, not overwrite.
	v2 := testVariant("var_aaa111bbb222", time.Now().UTC())
	v2.ThemeEmphasis = "balanced"
	require.Error(t, s.Put(v2))

	out, err := s.Get(v.VariantID)
	require.NoError(t, err)
	require.Equal(t, "trust-first", out.ThemeEmphasis)
}

func TestGetUnknownID(t *testing.T) {
	s := testStore(t)

	_, err := s.Get("var_000000000000")
	require.True(t, errors.Is(err, types.ErrNotFound), "got %v", err)
}

func TestUpdateAudit(t *testing.T) {
	s := testStore(t)

	v := testVariant("var_aaa111bbb222", time.Now().UTC())
	require.NoError(t, s.Put(v))

	audit := &types.AuditResult{
		AuditScore: 85,
		RiskFlags: []types.RiskFlag{{
			FlagID: "FLAG_001", Severity: "low",
			Description: "test flag", AffectedElement: "modules.reviews",
		}},
	}
	require.NoError(t, s.UpdateAudit(v.VariantID, audit))

	out, err := s.Get(v.VariantID)
	require.NoError(t, err)
	require.Equal(t, 85, out.AuditScore)
	require.Len(t, out.RiskFlags, 1)

	require.Error(t, s.UpdateAudit("var_000000000000", audit))
}

func TestListOrdersByCreation(t *testing.T) {
	s := testStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(testVariant("var_ccc333ddd444", base.Add(2*time.Minute))))
	require.NoError(t, s.Put(testVariant("var_aaa111bbb222", base)))
	require.NoError(t, s.Put(testVariant("var_eee555fff666", base.Add(time.Minute))))

	ids, err := s.List()
	require.NoError(t, err)
	require.Equal(t, []string{"var_aaa111bbb222", "var_eee555fff666", "var_ccc333ddd444"}, ids)
}

func TestDelete(t *testing.T) {
	s := testStore(t)

	v := testVariant("var_aaa111bbb222", time.Now().UTC())
	require.NoError(t, s.Put(v))

	existed, err := s.Delete(v.VariantID)
	require.NoError(t, err)
	require.True(t, existed)

	_, err = s.Get(v.VariantID)
	require.True(t, errors.Is(err, types.ErrNotFound))

	existed, err = s.Delete(v.VariantID)
	require.NoError(t, err)
	require.False(t, existed)
}

func TestStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "variants.db")
	s, err := NewVariantStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(testVariant("var_aaa111bbb222", time.Now().UTC())))
}
