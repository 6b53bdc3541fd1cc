package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"controle_vendas/internal/export"
	"controle_vendas/internal/sales"
)

func newExportCmd(a *app) *cobra.Command {
	var share, stdout bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all sales as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if stdout {
				content, err := a.exporter.Render()
				if errors.Is(err, export.ErrNothingToExport) {
					fmt.Fprintln(cmd.ErrOrStderr(), sales.MsgNothingToExport)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out, content)
				return nil
			}

			path, err := a.exporter.Export(ctxOf(cmd))
			if errors.Is(err, export.ErrNothingToExport) {
				fmt.Fprintln(out, sales.MsgNothingToExport)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, sales.MsgExported)
			fmt.Fprintln(out, path)

			if share {
				// el resultado del share no se sigue
				_ = a.exporter.Share(ctxOf(cmd), path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&share, "share", false, "hand the exported file to the share handler")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the CSV instead of writing a file")
	return cmd
}
