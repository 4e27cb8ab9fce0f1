package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Justype/hpcmachines/internal/config"
	"github.com/Justype/hpcmachines/internal/scheduler"
	"github.com/Justype/hpcmachines/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	quietMode bool
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:           "hpcmachines",
	Short:         "hpcmachines: list the machines and cores an HPC scheduler allocated to this job.",
	Version:       config.VERSION,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load defaults
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Load values from Viper into Global config
		config.LoadFromViper()

		// Step 4: Apply command-line flags (highest priority)
		if noColor || !utils.IsInteractiveShell() {
			color.NoColor = true
		}
		utils.QuietMode = quietMode
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("hpcmachines Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("ssh Binary: %s", config.Global.SSHBin)
			utils.PrintDebug("scontrol Binary: %s", config.Global.ScontrolBin)
			utils.PrintDebug("Probe Timeout: %s", config.Global.ProbeTimeout)
			if scheduler.IsInsideJob(scheduler.OSEnv{}) {
				utils.PrintDebug("Running inside a scheduler job")
			}
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced. Probe errors carry
		// the command output; print it on its own lines.
		var pe *scheduler.ProbeError
		if errors.As(err, &pe) && strings.TrimSpace(pe.Output) != "" {
			utils.PrintError("%s failed: %v", pe.Op, pe.Err)
			fmt.Fprintln(os.Stderr, strings.TrimSpace(pe.Output))
			os.Exit(1)
		}
		utils.PrintError("%v", err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational messages")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}
