package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lowher/internal/config"
	"lowher/internal/input"
	"lowher/internal/logger"
	"lowher/internal/lowher"
	"lowher/internal/types"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag   string
		modeFlag     string
		taggerFlag   string
		lowercaseAll bool
		logLevelFlag string
		logFileFlag  string
	)

	rootCmd := &cobra.Command{
		Use:   "lowher [file]",
		Short: "Lowercase text while preserving code spans, acronyms and named entities",
		Long: `lowher lowercases prose read from a file, a PDF, or stdin while keeping
protected spans intact: fenced and inline code verbatim, and depending on
mode, capitalized words, acronyms, or tagged named entities.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configFlag, modeFlag, taggerFlag, lowercaseAll, logLevelFlag, logFileFlag)
			if err != nil {
				return err
			}
			defer logger.Close()

			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			text, err := input.Read(path)
			if err != nil {
				return err
			}

			return runTransform(cmd, cfg, text)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", `transform mode: "regex" or "entity"`)
	rootCmd.PersistentFlags().StringVar(&taggerFlag, "tagger", "", `entity tagger backend: "rule", "onnx" or "llm"`)
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "also write logs to this file")
	rootCmd.Flags().BoolVarP(&lowercaseAll, "lowercase-all", "a", false,
		"lowercase capitalized words too (code and acronyms stay protected)")

	rootCmd.AddCommand(newTestCommand(&configFlag, &modeFlag, &taggerFlag, &logLevelFlag, &logFileFlag))

	return rootCmd
}

// loadConfig merges the config file, environment and flags. Flags win
// only when explicitly set on the command line.
func loadConfig(cmd *cobra.Command, configPath, mode, tagger string, lowercaseAll bool, logLevel, logFile string) (*config.Config, error) {
	mgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = types.Mode(mode)
	}
	if flags.Changed("tagger") {
		cfg.Tagger = types.TaggerKind(tagger)
	}
	if flags.Changed("lowercase-all") && lowercaseAll {
		cfg.PreserveCapitalized = false
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Logs go to stderr so stdout stays a clean data channel.
	if err := logger.Init(&logger.Config{
		LogFilePath:   cfg.LogFile,
		Level:         logger.ParseLevel(cfg.LogLevel),
		EnableConsole: true,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTransform(cmd *cobra.Command, cfg *config.Config, text string) error {
	t, err := lowher.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer t.Close()

	result, err := t.Transform(cmd.Context(), text)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	fmt.Fprint(cmd.OutOrStdout(), result.TransformedText)
	return nil
}

const demoText = "This is an EXAMPLE of Proper Noun Detection. `Inline code should STAY`.\n"

// newTestCommand runs the built-in demo transform so a fresh install
// can be sanity-checked without preparing an input file.
func newTestCommand(configFlag, modeFlag, taggerFlag, logLevelFlag, logFileFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Transform a built-in sample text and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configFlag, *modeFlag, *taggerFlag, false, *logLevelFlag, *logFileFlag)
			if err != nil {
				return err
			}
			defer logger.Close()

			fmt.Fprint(cmd.OutOrStdout(), "input:  "+demoText)
			fmt.Fprint(cmd.OutOrStdout(), "output: ")
			return runTransform(cmd, cfg, demoText)
		},
	}
}
