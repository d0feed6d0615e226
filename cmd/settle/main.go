package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/settle-up/internal/cli"
	"github.com/Veraticus/settle-up/internal/common"
	"github.com/Veraticus/settle-up/internal/config"
)

var version = "dev"

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfg     config.Config
	cfgFile string
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		in:     in,
		out:    out,
		errOut: errOut,
	}

	rootCmd := &cobra.Command{
		Use:   "settle",
		Short: cli.MoneyIcon + " Shared expense tracker",
		Long: `settle-up: track shared expenses and direct payments among a group,
see who owes whom, and get the smallest set of transfers that settles everyone up.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/settle/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("backend", "", "storage backend (sqlite, json)")
	rootCmd.PersistentFlags().String("data", "", "database file (sqlite) or data directory (json)")

	_ = a.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = a.v.BindPFlag("storage.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = a.v.BindPFlag("storage.path", rootCmd.PersistentFlags().Lookup("data"))

	rootCmd.AddCommand(addCmd(a))
	rootCmd.AddCommand(viewCmd(a))
	rootCmd.AddCommand(payCmd(a))
	rootCmd.AddCommand(viewPaymentsCmd(a))
	rootCmd.AddCommand(addPersonCmd(a))
	rootCmd.AddCommand(listPeopleCmd(a))
	rootCmd.AddCommand(balancesCmd(a))
	rootCmd.AddCommand(settleCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(authCmd(a))
	rootCmd.AddCommand(migrateCmd(a))
	rootCmd.AddCommand(versionCmd(a))

	return rootCmd
}

func main() {
	handler := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := handler.HandleInterrupts(context.Background())

	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		if !handler.WasInterrupted() || !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	// A missing .env file is fine
	_ = godotenv.Load()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		a.v.AddConfigPath(fmt.Sprintf("%s/.config/settle", home))
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("SETTLE")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return common.NewUserError("Invalid configuration", err)
	}
	a.cfg = cfg

	if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format, a.errOut); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.out, "settle version %s\n", version)
			return err
		},
	}
}
