package culture

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"culturebridge/internal/types"
)

//go:embed defaults.yaml
var embeddedDataset []byte

// Prior is the stored population prior for one region.
type Prior struct {
	CountryName         string             `yaml:"country_name"`
	Dimensions          map[string]float64 `yaml:"dimensions"`
	Evidence            []types.Evidence   `yaml:"evidence"`
	Notes               string             `yaml:"notes"`
	Rationale           string             `yaml:"rationale"`
	DimensionRationales map[string]string  `yaml:"dimension_rationales"`
}

// BaselineCopy is the unadapted storefront copy for a category.
type BaselineCopy struct {
	CTAPrimary       string `yaml:"cta_primary"`
	CTASecondary     string `yaml:"cta_secondary"`
	ValueProposition string `yaml:"value_proposition"`
	UrgencyText      string `yaml:"urgency_text"`
	SocialProofText  string `yaml:"social_proof_text"`
}

// ProductBaseline is the unadapted flow, copy, and conversion baseline for
// a product category.
type ProductBaseline struct {
	ProductCategory string           `yaml:"product_category"`
	BaselineFlow    []types.FlowStep `yaml:"baseline_flow"`
	BaselineCopy    BaselineCopy     `yaml:"baseline_copy"`
	BaselineRate    float64          `yaml:"baseline_rate"` // conversion %, category average
}

type dataset struct {
	Priors    map[string]Prior           `yaml:"cultural_priors"`
	Baselines map[string]ProductBaseline `yaml:"product_baselines"`
	Mapping   struct {
		Rules []Rule `yaml:"rules"`
	} `yaml:"dimension_ux_mapping"`
}

// Store serves priors, the rule table, and product baselines. Read-only
// after construction, so unsynchronized concurrent reads are safe.
type Store struct {
	priors    map[string]Prior
	baselines map[string]ProductBaseline
	rules     *RuleTable
}

// LoadStore reads a dataset from path, or the embedded defaults when path
// is empty.
func LoadStore(path string) (*Store, error) {
	raw := embeddedDataset
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read cultural dataset: %w", err)
		}
		raw = b
	}

	var ds dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse cultural dataset: %w", err)
	}

	table, err := NewRuleTable(ds.Mapping.Rules)
	if err != nil {
		return nil, fmt.Errorf("mapping rules: %w", err)
	}

	s := &Store{
		priors:    ds.Priors,
		baselines: ds.Baselines,
		rules:     table,
	}
	if s.priors == nil {
		s.priors = map[string]Prior{}
	}
	if s.baselines == nil {
		s.baselines = map[string]ProductBaseline{}
	}
	return s, nil
}

// Prior looks up the stored prior for a region code.
func (s *Store) Prior(countryCode string) (Prior, bool) {
	p, ok := s.priors[countryCode]
	return p, ok
}

// Rules returns the dimension-to-UX mapping rule table.
func (s *Store) Rules() *RuleTable { return s.rules }

// Baseline looks up the baseline storefront spec for a product category.
func (s *Store) Baseline(category string) (ProductBaseline, bool) {
	b, ok := s.baselines[category]
	return b, ok
}

// Regions returns all region codes with stored priors, sorted.
func (s *Store) Regions() []string {
	codes := make([]string, 0, len(s.priors))
	for c := range s.priors {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// DefaultBaseline is the base spec used when a category has no stored
// baseline: the generic five-step purchase flow plus shipping and payment.
func DefaultBaseline(category string) ProductBaseline {
	return ProductBaseline{
		ProductCategory: category,
		BaselineFlow: []types.FlowStep{
			{StepID: "browse", Name: "Browse", Description: "Product browsing"},
			{StepID: "detail", Name: "Product Detail", Description: "Product detail page"},
			{StepID: "cart", Name: "Cart", Description: "Shopping cart"},
			{StepID: "shipping", Name: "Shipping", Description: "Shipping address and method"},
			{StepID: "payment", Name: "Payment", Description: "Payment details"},
			{StepID: "confirm", Name: "Confirmation", Description: "Order confirmation"},
		},
		BaselineCopy: BaselineCopy{
			CTAPrimary:       "Add to Cart",
			CTASecondary:     "Save for Later",
			ValueProposition: "Quality products for you",
			UrgencyText:      "Limited availability",
			SocialProofText:  "Rated 4.8/5 stars",
		},
		BaselineRate: 2.3,
	}
}
