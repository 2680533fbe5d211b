package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/openmf/bankimport/pkg/accounts"
	"github.com/openmf/bankimport/pkg/config"
	"github.com/openmf/bankimport/pkg/server"
	"github.com/openmf/bankimport/pkg/service"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "bankimport",
	Short: "Bank statement import plugins for Mifos",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file|directory>...",
	Short: "Dry-run statement files against a YAML account fixture",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		if cfg.Fixture == "" {
			return fmt.Errorf("an account fixture is required (--fixture)")
		}
		svc, err := accounts.LoadFixture(cfg.Fixture)
		if err != nil {
			return err
		}

		debug, _ := cmd.Flags().GetBool("debug")
		processor := service.NewProcessor(cfg, svc, logger)

		for _, path := range args {
			info, err := os.Stat(path)
			if err != nil {
				logger.Warn("failed to stat path", "path", path, "error", err)
				continue
			}

			if info.IsDir() {
				if err := processor.ProcessDirectory(path); err != nil {
					logger.Warn("failed to process directory", "dir", path, "error", err)
				}
				continue
			}

			result, err := processor.ProcessFile(path)
			if err != nil {
				logger.Warn("failed to process file", "file", path, "error", err)
				continue
			}
			if debug {
				fmt.Println(pp.Sprint(result))
			}
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP parse preview server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger(cmd)

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		if cfg.Fixture == "" {
			return fmt.Errorf("an account fixture is required (--fixture)")
		}
		svc, err := accounts.LoadFixture(cfg.Fixture)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetString("port")
		processor := service.NewProcessor(cfg, svc, logger)
		srv := server.New(processor, logger)

		addr := fmt.Sprintf("0.0.0.0:%s", port)
		logger.Info("starting server", "addr", addr)
		return srv.Start(addr)
	},
}

func newLogger(cmd *cobra.Command) *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		Prefix:          "bankimport",
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
	}
	return log.NewWithOptions(os.Stderr, opts)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is bankimport.yaml)")
	rootCmd.PersistentFlags().String("importer", "", "Force importer: audi-tsv, audi-xls, mpesa, mpesa-disbursement")
	rootCmd.PersistentFlags().String("fixture", "", "YAML account fixture for dry-run parsing")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging and result dumps")

	parseCmd.Flags().String("output", "", "Output directory for payment CSVs (default: next to input)")
	serveCmd.Flags().String("port", "3000", "Server port")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
