package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/fabriq-labs/gqlprobe/internal/config"
	"github.com/fabriq-labs/gqlprobe/internal/fabric"
	"github.com/fabriq-labs/gqlprobe/internal/utils/colors"
	"github.com/fabriq-labs/gqlprobe/internal/utils/errutils"
	"github.com/fabriq-labs/gqlprobe/internal/utils/uiutils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootFlags struct {
	Debug     bool
	EnvFile   string
	ConfigDir string
	Timeout   time.Duration
	Compact   bool
	Pretty    bool
	JQ        string
}

// cfg is populated by the root command before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "gqlprobe",
	Short: "Run GraphQL queries against Microsoft Fabric and GitHub",

	// Don't automatically print errors or usage information (we handle that ourselves).
	// Cobra still prints usage if you return cmd.Usage() from RunE.
	SilenceErrors: true,
	SilenceUsage:  true,

	// Don't show "completion" command in help menu
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},

	// Run setup before invoking any child commands.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if rootFlags.Debug {
			logrus.SetLevel(logrus.DebugLevel)
			logrus.WithField("gqlprobe_version", config.Version).Debug("enabled debug logging")
			cmd.Flags().Visit(func(f *pflag.Flag) {
				if f.Name == "header" {
					// May carry a subscription key.
					return
				}
				logrus.WithField("value", f.Value.String()).Debugf("flag --%s", f.Name)
			})
		}
		colors.SetupBackgroundColorTypeFromEnv()

		var configDirs []string
		if rootFlags.ConfigDir != "" {
			configDirs = append(configDirs, rootFlags.ConfigDir)
		}
		// Note: this only returns an error if config exists and it can't be
		// read/parsed. It doesn't return an error if no config file exists.
		loaded, didLoadConfig, err := config.Load(config.Options{
			Paths:   configDirs,
			EnvFile: rootFlags.EnvFile,
		})
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		if didLoadConfig {
			logrus.Debug("loaded configuration")
		} else {
			logrus.Debug("no configuration file found")
		}
		if cmd.Flags().Changed("timeout") {
			loaded.Timeout = rootFlags.Timeout
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(
		&rootFlags.Debug, "debug", false,
		"enable verbose debug logging",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootFlags.EnvFile, "env-file", "",
		"dotenv file to load (default: .env in the working directory, if present)",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootFlags.ConfigDir, "config-dir", "",
		"additional directory to search for config.{yaml,json,toml}",
	)
	rootCmd.PersistentFlags().DurationVar(
		&rootFlags.Timeout, "timeout", 0,
		"timeout for a single GraphQL request (default 30s)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootFlags.Pretty, "pretty", false,
		"always indent JSON output",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootFlags.Compact, "compact", false,
		"never indent JSON output",
	)
	rootCmd.MarkFlagsMutuallyExclusive("pretty", "compact")
	rootCmd.PersistentFlags().StringVar(
		&rootFlags.JQ, "jq", "",
		"jq filter to apply to the response data",
	)
	rootCmd.AddCommand(
		authCmd,
		fabricCmd,
		githubCmd,
		queryCmd,
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := errutils.As[errExitSilently](err); ok {
			os.Exit(exitErr.ExitCode)
		}

		// In debug mode, show more detailed information about the error
		// (including the stack trace).
		if rootFlags.Debug {
			stackTrace := fmt.Sprintf("%+v", err)
			_, _ = fmt.Fprintf(os.Stderr, "error: %s\n%s\n", err, indent(stackTrace, "\t"))
		}
		_, _ = fmt.Fprint(os.Stderr, uiutils.RenderError(err, fabric.Hint(err)))

		os.Exit(1)
	}
}

func indent(s string, prefix string) string {
	// why is this not in the stdlib????
	return prefix + strings.Replace(s, "\n", "\n"+prefix, -1)
}

// errExitSilently is an error type that indicates that program should exit
// without printing any additional information with the given exit code.
// This is meant for cases where the running commands wants to manage its own
// error output but still needs to return a non-zero exit code (since returning
// nil from RunE would cause a exit with a zero code).
type errExitSilently struct {
	ExitCode int
}

func (e errExitSilently) Error() string {
	return "<exit silently>"
}
