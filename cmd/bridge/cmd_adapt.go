package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"culturebridge/internal/types"
)

var (
	adaptRegion    string
	adaptCategory  string
	adaptPriceBand string
	adaptAudience  string
	adaptOverrides []string
)

var adaptCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Run the adaptation pipeline and store the resulting variant",
	Example: `  bridge adapt --region JP --category electronics --price-band mid --audience general_consumer
  bridge adapt --region DE --category fashion --price-band premium --audience professional \
      --override trust_need=80 --override price_sensitivity=30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.close()

		overrides, err := parseOverrides(adaptOverrides)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		variant, err := svc.orchestrator.Run(ctx, types.AdaptRequest{
			CountryCode:     adaptRegion,
			ProductCategory: adaptCategory,
			PriceBand:       adaptPriceBand,
			Audience:        adaptAudience,
			Overrides:       overrides,
		})
		if err != nil {
			return err
		}

		if err := svc.variants.Put(variant); err != nil {
			return err
		}

		return printJSON(cmd, variant)
	},
}

func init() {
	adaptCmd.Flags().StringVar(&adaptRegion, "region", "", "target region code ("+strings.Join(types.AllowedRegions, ", ")+")")
	adaptCmd.Flags().StringVar(&adaptCategory, "category", "", "product category ("+strings.Join(types.AllowedCategories, ", ")+")")
	adaptCmd.Flags().StringVar(&adaptPriceBand, "price-band", "", "price band ("+strings.Join(types.AllowedPriceBands, ", ")+")")
	adaptCmd.Flags().StringVar(&adaptAudience, "audience", "", "audience ("+strings.Join(types.AllowedAudiences, ", ")+")")
	adaptCmd.Flags().StringArrayVar(&adaptOverrides, "override", nil, "dimension override, e.g. trust_need=80 (repeatable)")
	_ = adaptCmd.MarkFlagRequired("region")
	_ = adaptCmd.MarkFlagRequired("category")
	_ = adaptCmd.MarkFlagRequired("price-band")
	_ = adaptCmd.MarkFlagRequired("audience")
	rootCmd.AddCommand(adaptCmd)
}

// parseOverrides turns repeated key=value flags into the override map.
// Range and key checking happen in request validation and the resolver.
func parseOverrides(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid override %q: expected dimension=value", pair)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid override %q: %w", pair, err)
		}
		overrides[key] = v
	}
	return overrides, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
