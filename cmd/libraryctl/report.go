package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apploan "github.com/xiebiao/library/internal/application/loan"
)

func reportCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "export spreadsheets",
	}
	cmd.AddCommand(reportInstancesCommand(e))
	return cmd
}

func reportInstancesCommand(e *env) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "instances",
		Short: "write every book copy with its loan state to an .xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services()
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			n, err := apploan.NewExportUseCase(svc.loans, svc.catalog, svc.users).Execute(cmd.Context(), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(out)
				return err
			}
			fmt.Fprintf(e.out, "wrote %d instances to %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "instances.xlsx", "output file")
	return cmd
}
