package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var auditStrict bool

var auditCmd = &cobra.Command{
	Use:   "audit <variant-id>",
	Short: "Re-run the compliance audit on a stored variant",
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := svc.orchestrator.ReAudit(ctx, variant, auditStrict)
		if err != nil {
			return err
		}

		if err := svc.variants.UpdateAudit(variant.VariantID, result); err != nil {
			return err
		}

		return printJSON(cmd, result)
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditStrict, "strict", false, "apply strict-mode penalties")
	rootCmd.AddCommand(auditCmd)
}
