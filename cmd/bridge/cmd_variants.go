package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List stored variant ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.close()

		ids, err := svc.variants.List()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var variantsShowCmd = &cobra.Command{
	Use:   "show <variant-id>",
	Short: "Print a stored variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.close()

		variant, err := svc.variants.Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, variant)
	},
}

var variantsDeleteCmd = &cobra.Command{
	Use:   "delete <variant-id>",
	Short: "Delete a stored variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.close()

		existed, err := svc.variants.Delete(args[0])
		if err != nil {
			return err
		}
		if !existed {
			fmt.Fprintf(cmd.OutOrStdout(), "variant %s not found\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	variantsCmd.AddCommand(variantsShowCmd)
	variantsCmd.AddCommand(variantsDeleteCmd)
	rootCmd.AddCommand(variantsCmd)
}
