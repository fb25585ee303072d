package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/emersion/go-contacts/fetchhint"
	"github.com/emersion/go-contacts/filter"
	"github.com/emersion/go-contacts/internal"
	"github.com/emersion/go-contacts/sortorder"
)

const envPrefix = "CONTACTQUERY"

type config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Language  string `mapstructure:"language"`
	Sort      string `mapstructure:"sort"`
	Fields    string `mapstructure:"fields"`
}

// app holds the state shared by all commands, set up before any of them
// runs.
type app struct {
	v      *viper.Viper
	cfg    config
	logger *slog.Logger
	lang   language.Tag

	filters filter.Codec
	sorts   sortorder.Codec
	hints   fetchhint.Codec
}

func newApp() *app {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("language", "und")
	v.SetDefault("sort", "")
	v.SetDefault("fields", "")
	return &app{v: v}
}

func (a *app) load(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("contactquery: failed to read config: %w", err)
		}
	}
	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("contactquery: failed to unmarshal config: %w", err)
	}

	level, err := internal.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger, err = internal.NewLogger(cmd.ErrOrStderr(), level, a.cfg.LogFormat)
	if err != nil {
		return err
	}

	a.lang, err = language.Parse(a.cfg.Language)
	if err != nil {
		return fmt.Errorf("contactquery: invalid language %q: %w", a.cfg.Language, err)
	}

	a.filters = filter.Codec{Logger: a.logger}
	a.sorts = sortorder.Codec{Logger: a.logger}
	a.hints = fetchhint.Codec{Logger: a.logger}
	return nil
}

func (a *app) bind(cmd *cobra.Command, key, flag string) {
	if err := a.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func newRootCmd() *cobra.Command {
	a := newApp()

	root := &cobra.Command{
		Use:           "contactquery",
		Short:         "Build, inspect and run contact queries on vCard files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "configuration file")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("language", "und", "collation language for sorting (BCP 47)")
	for key, flag := range map[string]string{
		"log_level":  "log-level",
		"log_format": "log-format",
		"language":   "language",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		newQueryCmd(a),
		newFilterCmd(a),
		newSortCmd(a),
		newHintCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
