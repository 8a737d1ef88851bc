package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/marcelocantos/erpkit/internal/cli"
	"github.com/marcelocantos/erpkit/internal/config"
	"github.com/marcelocantos/erpkit/internal/logging"
)

var version = "dev"

// exitCode carries a runner's exit status out of cobra.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

var rootCmd = &cobra.Command{
	Use:           "erpkit",
	Short:         "ERP canonical data and safety-gate MCP server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if code, ok := err.(exitCode); ok {
			os.Exit(int(code))
		}
		fmt.Fprintln(os.Stderr, "erpkit:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("ERPKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", config.ConfigPath(), "config file")
	pf.String("mode", "", "adapter mode: mock or live")
	pf.String("strictness", "", "gate strictness: strict, moderate or permissive")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	_ = viper.BindPFlag("config", pf.Lookup("config"))
	_ = viper.BindPFlag("mode", pf.Lookup("mode"))
	_ = viper.BindPFlag("strictness", pf.Lookup("strictness"))
	_ = viper.BindPFlag("log-level", pf.Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd(), mapCmd(), checkCmd(), gatesCmd(), toolsCmd(), auditCmd(), versionCmd())
}

// loadConfig reads the config file and applies flag and environment
// overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("mode"); v != "" {
		cfg.Mode = v
	}
	if v := viper.GetString("strictness"); v != "" {
		cfg.Strictness = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = version
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp builds the application, runs fn and maps its result to an
// exit status.
func withApp(ctx context.Context, fn func(app *cli.App) int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			logger.Warn("adapter shutdown", zap.Error(err))
		}
	}()
	if code := fn(app); code != 0 {
		return exitCode(code)
	}
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP JSON-RPC over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *cli.App) int {
				return cli.RunServe(cmd.Context(), app, os.Stdin, os.Stdout, os.Stderr)
			})
		},
	}
}

func mapCmd() *cobra.Command {
	var source, entity string
	cmd := &cobra.Command{
		Use:   "map [file|-]",
		Short: "Map a source record to a canonical entity and validate it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := os.Stdin
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return withApp(cmd.Context(), func(app *cli.App) int {
				return cli.RunMap(app, in, os.Stdout, os.Stderr, source, entity)
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "SAP", "source system")
	cmd.Flags().StringVar(&entity, "entity", "", "canonical entity type")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}

func checkCmd() *cobra.Command {
	var opts cli.CheckOptions
	cmd := &cobra.Command{
		Use:   "check <artifact.yaml>",
		Short: "Run an artifact through the safety gates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *cli.App) int {
				return cli.RunCheck(cmd.Context(), app, args[0], os.Stdout, os.Stderr, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&opts.AuditOut, "audit-out", "", "write the audit log as JSON lines to this file")
	return cmd
}

func gatesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "gates",
		Short: "List the safety gates in run order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *cli.App) int {
				return cli.RunGates(app, os.Stdout, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func toolsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tool catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *cli.App) int {
				return cli.RunTools(app, os.Stdout, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <verify|show> <file.jsonl> [n]",
		Short: "Verify or show an exported audit log",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := cli.RunAudit(os.Stdout, args); code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("erpkit %s\n", version)
		},
	}
}
