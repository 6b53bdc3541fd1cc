package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"controle_vendas/internal/sales"
)

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove <id|position>",
		Aliases: []string{"rm"},
		Short:   "Remove a sale after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.resolve(args[0])
			if err != nil {
				return fmt.Errorf("%s (%w)", sales.UserMessage(err), err)
			}
			conf, err := a.sales.RequestRemoval(target.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				printSale(out, 0, conf.Sale, a.cfg.Currency)
				fmt.Fprintf(out, "%s [s/N] ", conf.Message)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if !affirmative(answer) {
					a.sales.CancelRemoval(conf.Token)
					fmt.Fprintln(out, "Remoção cancelada.")
					return nil
				}
			}

			if _, err := a.sales.ConfirmRemoval(ctxOf(cmd), conf.Token); err != nil {
				return err
			}
			fmt.Fprintln(out, sales.MsgRemoved)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// affirmative reports whether the answer confirms. Anything else, including
// an empty answer, cancels.
func affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}
