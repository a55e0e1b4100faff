package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mgomes/vibesheet/formula"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in by the linker for release builds.
var Version string

// settings is the configuration resolved for the running command.
var settings = Defaults()

var rootCmd = &cobra.Command{
	Use:           "vibesheet",
	Short:         "A spreadsheet formula engine.",
	Long:          "Evaluate, check and interactively edit spreadsheet formulas.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveSettings(cmd, os.Getenv)
		if err != nil {
			return err
		}
		settings = cfg
		level, _ := log.ParseLevel(cfg.LogLevel)
		if GetFlag(cmd, "verbose") {
			level = log.DebugLevel
		}
		log.SetLevel(level)
		log.SetOutput(cmd.ErrOrStderr())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vibesheet version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vibesheet %s\n", versionString())
	},
}

func versionString() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(unknown version)"
}

// resolveSettings layers the config file and then any explicitly set flags
// over the defaults.
func resolveSettings(cmd *cobra.Command, getenv func(string) string) (*Config, error) {
	cfg, err := LoadConfig(GetString(cmd, "config"), getenv)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("rows") {
		cfg.Rows = GetInt(cmd, "rows")
	}
	if cmd.Flags().Changed("columns") {
		cfg.Columns = GetInt(cmd, "columns")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSheet() (*formula.Sheet, error) {
	return formula.NewSheet(settings.sheetConfig())
}

// GetFlag gets an expected boolean flag, or panics if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		panic(err)
	}
	return r
}

// GetInt gets an expected int flag, or panics if an error arises.
func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		panic(err)
	}
	return r
}

// GetString gets an expected string flag, or panics if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		panic(err)
	}
	return r
}

// GetStringArray gets an expected string array flag, or panics if an error arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		panic(err)
	}
	return r
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default ./vibesheet.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Int("rows", 0, "number of rows in the sheet")
	rootCmd.PersistentFlags().Int("columns", 0, "number of columns in the sheet")
	rootCmd.AddCommand(versionCmd)
}
