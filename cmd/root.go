// Package cmd implements the command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"controle_vendas/internal/config"
	"controle_vendas/internal/export"
	"controle_vendas/internal/logging"
	"controle_vendas/internal/sales"
	"controle_vendas/internal/store"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    store.Store
	sales    *sales.Service
	exporter *export.Exporter
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var configFile string

	root := &cobra.Command{
		Use:           "vendas",
		Short:         "Controle de vendas",
		Long:          `Record sales, search them, see the total and export them as CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, configFile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("store-driver", "", "ledger store: memory, file or sqlite")
	flags.String("store-path", "", "store directory (file) or database (sqlite)")
	flags.String("export-dir", "", "directory for exported CSV files")
	flags.String("currency", "", "currency used to display totals")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newAddCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newListCmd(a),
		newTotalCmd(a),
		newExportCmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var flagKeys = map[string]string{
	"store-driver": "store.driver",
	"store-path":   "store.path",
	"export-dir":   "export.dir",
	"currency":     "currency",
	"log-level":    "log.level",
}

func (a *app) setup(cmd *cobra.Command, configFile string) error {
	v, err := config.New(configFile)
	if err != nil {
		return err
	}
	for flag, key := range flagKeys {
		// only flags the user actually set override config and env
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Driver, cfg.StorePath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	svc := sales.NewService(st, logger, sales.WithKey(cfg.Store.Key))
	if err := svc.Load(ctxOf(cmd)); err != nil {
		// the ledger starts empty, keep going
		fmt.Fprintln(cmd.ErrOrStderr(), "Aviso: não foi possível carregar as vendas:", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.store = st
	a.sales = svc
	a.exporter = export.NewExporter(svc,
		export.DirWriter{Dir: cfg.Export.Dir},
		export.LogSharer{Logger: logger},
		logger, cfg.Export.FileName, cfg.Export.Caption)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

// resolve accepts either a sale ID or a 1-based position as shown by list.
func (a *app) resolve(ref string) (*sales.Sale, error) {
	if sale, err := a.sales.Get(ref); err == nil {
		return sale, nil
	}
	pos, err := strconv.Atoi(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, sales.ErrNotFound)
	}
	sale, err := a.sales.At(pos)
	if err != nil {
		return nil, fmt.Errorf("position %d: %w", pos, err)
	}
	return sale, nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
