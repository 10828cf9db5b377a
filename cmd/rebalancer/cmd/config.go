package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rebalancer/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage rebalancer configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  rebalancer config init -o rebalancer.yaml
  rebalancer config validate -f rebalancer.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "rebalancer.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  rebalancer backtest -c %s ...\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	s := cfg.Strategy
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Strategy: period %d, sector cap %.0f%%, position cap %.0f%%, max %d positions\n",
		s.Period, s.MaxSectorExposure*100, s.MaxSinglePosition*100, s.MaxPositions)
	fmt.Fprintf(out, "  Exits: stop-loss %.1f%%, cooldown %d days\n", s.StopLossPct, s.CooldownDays)

	rules := make([]string, len(cfg.Screen.Rules))
	for i, r := range cfg.Screen.Rules {
		rules[i] = r.String()
	}
	fmt.Fprintf(out, "  Screen: %s\n", strings.Join(rules, "; "))
	if cfg.Hedge.Enabled {
		fmt.Fprintf(out, "  Hedge: %s\n", cfg.Hedge.Source)
	}
	fmt.Fprintf(out, "  State: %s  Journal: %s\n", cfg.State.Type, cfg.Journal.Type)
	return nil
}
