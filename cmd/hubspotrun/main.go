package main

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "hubspotrun",
	Short:         "Execute and inspect HubSpot API fixtures",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(viper.GetString("env_file"))
	},
}

// loadEnvFile reads KEY=VALUE pairs into the process environment so that
// HUBSPOTRUN_* settings and env[].valueFromEnv can come from a dotenv file.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", "")
	v.SetDefault("stub", false)
	v.SetDefault("limit", 20)
	v.SetDefault("addr", "127.0.0.1:8089")
	v.SetDefault("metrics", false)

	// Environment variables support: HUBSPOTRUN_CONFIG, HUBSPOTRUN_API_KEY, ...
	v.SetEnvPrefix("HUBSPOTRUN")
	v.AutomaticEnv()

	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to a config yaml (like examples/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file loaded into the process environment before running")
	rootCmd.PersistentFlags().String("api-key", "", "HubSpot private app token; overrides the fixture api_key")
	rootCmd.PersistentFlags().String("api-location", "", "HubSpot API base URL; overrides the fixture api_location")
	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file"))
	_ = v.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = v.BindPFlag("api_location", rootCmd.PersistentFlags().Lookup("api-location"))

	execCmd.Flags().Bool("stub", v.GetBool("stub"), "return a deterministic mock response without calling HubSpot")
	_ = v.BindPFlag("stub", execCmd.Flags().Lookup("stub"))

	historyCmd.Flags().Int("limit", v.GetInt("limit"), "number of runs to show (0 = all)")
	_ = v.BindPFlag("limit", historyCmd.Flags().Lookup("limit"))

	mockCmd.Flags().String("addr", v.GetString("addr"), "listen address")
	mockCmd.Flags().Bool("metrics", v.GetBool("metrics"), "serve Prometheus metrics on /metrics")
	_ = v.BindPFlag("addr", mockCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("metrics", mockCmd.Flags().Lookup("metrics"))

	initBridgeFlags()

	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
