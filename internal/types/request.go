package types

import "fmt"

// Allowed input sets. Requests are validated against these before any
// pipeline work starts; an invalid request never partially runs.
var (
	AllowedRegions = []string{"JP", "GT", "DE"}

	AllowedCategories = []string{
		"electronics", "fashion", "food_beverage", "home_garden", "health_beauty",
	}

	AllowedPriceBands = []string{"budget", "mid", "premium", "luxury"}

	AllowedAudiences = []string{
		"general_consumer", "tech_enthusiast", "young_adult", "professional", "family",
	}
)

// AdaptRequest is the pipeline entry point input.
type AdaptRequest struct {
	CountryCode     string             `json:"country_code"`
	ProductCategory string             `json:"product_category"`
	PriceBand       string             `json:"price_band"`
	Audience        string             `json:"audience"`
	Overrides       map[string]float64 `json:"override_dimensions,omitempty"`
}

// Validate checks the request against the fixed allowed sets and the
// [0,100] override range. Override keys outside the dimension set are
// accepted here; the resolver silently ignores them.
func (r AdaptRequest) Validate() error {
	if !contains(AllowedRegions, r.CountryCode) {
		return &ValidationError{Field: "country_code", Reason: fmt.Sprintf("%q is not an allowed region", r.CountryCode)}
	}
	if !contains(AllowedCategories, r.ProductCategory) {
		return &ValidationError{Field: "product_category", Reason: fmt.Sprintf("%q is not an allowed category", r.ProductCategory)}
	}
	if !contains(AllowedPriceBands, r.PriceBand) {
		return &ValidationError{Field: "price_band", Reason: fmt.Sprintf("%q is not an allowed price band", r.PriceBand)}
	}
	if !contains(AllowedAudiences, r.Audience) {
		return &ValidationError{Field: "audience", Reason: fmt.Sprintf("%q is not an allowed audience", r.Audience)}
	}
	for key, v := range r.Overrides {
		if v < 0 || v > 100 {
			return &ValidationError{Field: "override_dimensions." + key, Reason: fmt.Sprintf("value %.2f outside [0,100]", v)}
		}
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
