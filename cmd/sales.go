package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"controle_vendas/internal/sales"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product> <price>",
		Short: "Record a sale",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := sales.NewForm(a.sales)
			form.Fill(args[0], args[1])
			sale, msg, err := form.Submit(ctxOf(cmd))
			if err != nil {
				return errors.New(msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			printSale(cmd.OutOrStdout(), a.sales.Len(), *sale, a.cfg.Currency)
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var name, price string
	cmd := &cobra.Command{
		Use:   "edit <id|position>",
		Short: "Edit a sale; omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.resolve(args[0])
			if err != nil {
				return fmt.Errorf("%s (%w)", sales.UserMessage(err), err)
			}
			form := sales.NewForm(a.sales)
			if err := form.BeginEdit(target.ID); err != nil {
				return err
			}
			curName, curPrice := form.Fields()
			if cmd.Flags().Changed("name") {
				curName = name
			}
			if cmd.Flags().Changed("price") {
				curPrice = price
			}
			form.Fill(curName, curPrice)

			sale, msg, err := form.Submit(ctxOf(cmd))
			if err != nil {
				return errors.New(msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			printSale(cmd.OutOrStdout(), 0, *sale, a.cfg.Currency)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new product name")
	cmd.Flags().StringVar(&price, "price", "", "new price")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sales, optionally filtered by product name",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			all := a.sales.All()
			positions := make(map[string]int, len(all))
			for i, s := range all {
				positions[s.ID] = i + 1
			}

			results := a.sales.Search(query)
			if len(results) == 0 {
				fmt.Fprintln(out, "Nenhuma venda encontrada.")
			} else {
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tPRODUTO\tPREÇO\tDATA\tID")
				for _, s := range results {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
						positions[s.ID], s.ProductName, sales.FormatMoney(s.Price, a.cfg.Currency), formatDate(s), s.ID)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Total de Vendas: %s\n", sales.FormatMoney(a.sales.Total(), a.cfg.Currency))
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "case-insensitive product name filter")
	return cmd
}

func newTotalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Show the sum of all sales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Total de Vendas: %s\n", sales.FormatMoney(a.sales.Total(), a.cfg.Currency))
			return nil
		},
	}
}

func printSale(w io.Writer, position int, s sales.Sale, currency string) {
	if position > 0 {
		fmt.Fprintf(w, "#%d ", position)
	}
	fmt.Fprintf(w, "Produto: %s  Preço: %s  ID: %s\n", s.ProductName, sales.FormatMoney(s.Price, currency), s.ID)
}

func formatDate(s sales.Sale) string {
	if s.CreatedAt.IsZero() {
		return "-"
	}
	return s.CreatedAt.Local().Format("02/01/2006")
}
