// Package cli implements the confreg command line client.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dtroode/confreg-server/internal/client"
)

// Config is the resolved CLI configuration.
type Config struct {
	APIURL     string        `mapstructure:"api_url"`
	AdminToken string        `mapstructure:"admin_token"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     Config
}

// NewRootCommand builds the command tree. Output goes to out, diagnostics to errOut.
func NewRootCommand(version string, out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "confreg",
		Short:         "Conference registration client",
		Long:          `Register for the conference and inspect registrations from the command line.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ~/.config/confreg/config.yaml)")
	flags.String("api-url", "http://localhost:5000", "registration API base URL")
	flags.String("admin-token", "", "admin bearer token")
	flags.Duration("timeout", client.DefaultTimeout, "request timeout")

	_ = a.v.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = a.v.BindPFlag("admin_token", flags.Lookup("admin-token"))
	_ = a.v.BindPFlag("timeout", flags.Lookup("timeout"))

	root.AddCommand(
		newRegisterCommand(a),
		newAdminCommand(a),
		newTokenCommand(),
		newPingCommand(a),
	)
	return root
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute(version string) int {
	root := NewRootCommand(version, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) load() error {
	a.v.SetEnvPrefix("CONFREG")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		a.v.AddConfigPath(filepath.Join(home, ".config", "confreg"))
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func (a *app) client() *client.Client {
	opts := []client.Option{client.WithTimeout(a.cfg.Timeout)}
	if a.cfg.AdminToken != "" {
		opts = append(opts, client.WithAdminToken(a.cfg.AdminToken))
	}
	return client.New(a.cfg.APIURL, opts...)
}

func newPingCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := a.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
