package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List regions with stored cultural priors",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.close()

		for _, code := range svc.data.Regions() {
			prior, _ := svc.data.Prior(code)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, prior.CountryName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
