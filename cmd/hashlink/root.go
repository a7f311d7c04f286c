package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "hashlink",
		Short: "Encode and decode documents carried in URL fragments",
		Long: `hashlink packs an HTML document into the fragment of a URL and
recovers it again. Nothing is stored server-side: the link is the document.

Every flag can also be set through a HASHLINK_<FLAG> environment variable
(dashes become underscores) or a YAML file passed with --config.

Examples:
  hashlink encode --title Notes < notes.html
  hashlink decode 'https://itty.bitty.site/#Notes/?XQAAAAI...'
  hashlink decode --log decode.log --format markdown "$LINK"
  hashlink log decode.log`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML config file")
	a.bind(root.PersistentFlags(), "verbose")

	root.AddCommand(newEncodeCmd(a))
	root.AddCommand(newDecodeCmd(a))
	root.AddCommand(newLogCmd(a))
	return root
}

// bind makes the named flags readable through viper, which layers them
// over the environment and the config file.
func (a *app) bind(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := a.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %q: %v", name, err))
		}
	}
}

// init loads the environment and config file, then builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("HASHLINK")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", a.cfgFile, err)
		}
	}

	a.logger = newLogger(cmd.ErrOrStderr(), a.v.GetBool("verbose"))
	return nil
}

// newLogger returns a slog.Logger backed by charmbracelet/log. Warnings
// and errors are always shown; --verbose adds the per-phase trail.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "hashlink",
		ReportTimestamp: true,
	})
	return slog.New(handler)
}
