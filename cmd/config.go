package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Justype/hpcmachines/internal/config"
	"github.com/Justype/hpcmachines/internal/machine"
	"github.com/Justype/hpcmachines/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var forceInit bool

// configKeysCompletion returns config keys for shell completion
func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		// First arg: complete config keys
		return config.Keys, cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 {
		// Second arg: complete values based on the key
		return configValueCompletion(args[0]), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// configValueCompletion returns suggested values for a config key
func configValueCompletion(key string) []string {
	switch key {
	case "skip_probe":
		return []string{"true", "false"}
	case "probe_timeout":
		return []string{"5s", "10s", "30s", "1m"}
	case "output_format":
		return formatNames()
	default:
		return nil
	}
}

// getConfigEnvVars returns the environment variable for each config key, sorted.
func getConfigEnvVars() []string {
	vars := make([]string, 0, len(config.Keys))
	for _, key := range config.Keys {
		vars = append(vars, "HPCMACHINES_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	slices.Sort(vars)
	return vars
}

// validateConfigValue checks value against the type of key.
func validateConfigValue(key, value string) error {
	switch key {
	case "probe_timeout":
		d, err := utils.ParseDuration(value)
		if err != nil {
			return err
		}
		if d <= 0 {
			return fmt.Errorf("probe_timeout must be positive")
		}
	case "skip_probe":
		if value != "true" && value != "false" {
			return fmt.Errorf("skip_probe must be true or false")
		}
	case "output_format":
		if _, err := machine.ParseFormat(value); err != nil {
			return err
		}
	case "ssh_bin", "scontrol_bin":
		if value == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	default:
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(config.Keys, ", "))
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hpcmachines configuration",
	Long: `Manage hpcmachines configuration settings.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (HPCMACHINES_*)
  3. User config file (~/.config/hpcmachines/config.yaml)
  4. System config file (/etc/hpcmachines/config.yaml)
  5. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, utils.StyleTitle("Config File:"))
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "  %s %s\n", utils.StylePath(used), utils.StyleSuccess("(in use)"))
		} else {
			fmt.Fprintf(out, "  %s (use 'hpcmachines config init' to create)\n", utils.StyleWarning("No config file found"))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, utils.StyleTitle("Probe:"))
		fmt.Fprintf(out, "  ssh_bin:        %s\n", config.Global.SSHBin)
		fmt.Fprintf(out, "  scontrol_bin:   %s\n", config.Global.ScontrolBin)
		fmt.Fprintf(out, "  probe_timeout:  %s\n", config.Global.ProbeTimeout)
		fmt.Fprintf(out, "  skip_probe:     %v\n", config.Global.SkipProbe)
		fmt.Fprintln(out)

		fmt.Fprintln(out, utils.StyleTitle("Output:"))
		fmt.Fprintf(out, "  output_format:  %s\n", config.Global.OutputFormat)
		fmt.Fprintln(out)

		fmt.Fprintln(out, utils.StyleTitle("Environment Variable Overrides:"))
		hasEnvOverrides := false
		for _, envVar := range getConfigEnvVars() {
			if val := os.Getenv(envVar); val != "" {
				fmt.Fprintf(out, "  %s=%s\n", envVar, val)
				hasEnvOverrides = true
			}
		}
		if !hasEnvOverrides {
			fmt.Fprintf(out, "  %s\n", utils.StyleInfo("none"))
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  hpcmachines config get ssh_bin
  hpcmachines config get probe_timeout`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !slices.Contains(config.Keys, key) {
			return fmt.Errorf("unknown config key: %s", key)
		}
		fmt.Fprintln(cmd.OutOrStdout(), viper.Get(key))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save to the user config file.

Examples:
  hpcmachines config set ssh_bin /usr/bin/ssh
  hpcmachines config set probe_timeout 30s
  hpcmachines config set probe_timeout 00:30
  hpcmachines config set output_format hostfile

Time duration format (for probe_timeout):
  Go style:  30s, 1m, 1m30s
  HPC style: 00:30, 1:30 (MM:SS or HH:MM:SS)`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := validateConfigValue(key, value); err != nil {
			return err
		}

		viper.Set(key, value)
		if err := config.SaveConfig(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		configPath, _ := config.GetUserConfigPath()
		utils.PrintSuccess("Set %s = %s", utils.StyleInfo(key), utils.StyleInfo(value))
		utils.PrintNote("Config saved to: %s", utils.StylePath(configPath))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with defaults",
	Long: `Create the user configuration file with default values and the ssh and
scontrol binaries found on PATH.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		if utils.FileExists(configPath) && !forceInit {
			utils.PrintWarning("Config file already exists: %s", utils.StylePath(configPath))
			utils.PrintHint("Use --force to overwrite it.")
			return nil
		}

		updated, err := config.ForceDetectAndSave()
		if err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		if updated {
			utils.PrintSuccess("Config file created with auto-detected settings")
		} else {
			utils.PrintSuccess("Config file created")
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  Location: %s\n", utils.StylePath(configPath))
		fmt.Fprintln(out)
		fmt.Fprintln(out, utils.StyleTitle("Detected settings:"))
		for _, key := range []string{"ssh_bin", "scontrol_bin"} {
			bin := viper.GetString(key)
			if config.ValidateBinary(bin) {
				fmt.Fprintf(out, "  %s: %s\n", key, bin)
			} else {
				fmt.Fprintf(out, "  %s: %s\n", key, utils.StyleWarning("not found"))
			}
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd)
}
