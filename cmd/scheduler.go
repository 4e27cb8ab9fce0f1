package cmd

import (
	"fmt"

	"github.com/Justype/hpcmachines/internal/scheduler"
	"github.com/Justype/hpcmachines/internal/utils"
	"github.com/spf13/cobra"
)

// schedulerEnv is the environment the scheduler command inspects; tests replace it.
var schedulerEnv scheduler.Env = scheduler.OSEnv{}

var schedulerCmd = &cobra.Command{
	Use:     "scheduler",
	Aliases: []string{"sched"},
	Short:   "Display the detected allocation source",
	Long: `Display which allocation source the environment selects.

Shows the scheduler type (UGE, LSF, PBS, SLURM, CCS), the variable that
selected it and its raw value. Without any scheduler variable the local
host is used.`,
	Example: `  hpcmachines scheduler           # Show the detected source
  hpcmachines sched               # Short alias`,
	Args: cobra.NoArgs,
	Run:  runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) {
	info := scheduler.GetInfo(schedulerEnv)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Scheduler Information:")
	if info.Type == scheduler.SourceLocal {
		fmt.Fprintf(out, "  Type:      %s\n", utils.StyleWarning("none (local host)"))
	} else {
		fmt.Fprintf(out, "  Type:      %s\n", utils.StyleInfo(string(info.Type)))
		fmt.Fprintf(out, "  Variable:  %s\n", utils.StyleName(info.Variable))
		fmt.Fprintf(out, "  Value:     %s\n", info.Value)
	}
	if info.Slots != nil {
		fmt.Fprintf(out, "  Slots:     %s\n", utils.StyleNumber(*info.Slots))
	}

	if info.InJob {
		fmt.Fprintf(out, "  Status:    %s\n", utils.StyleSuccess("inside job"))
	} else {
		fmt.Fprintf(out, "  Status:    %s\n", utils.StyleWarning("not inside a job"))
		if info.Type == scheduler.SourceLocal {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "No scheduler allocation detected; 'hpcmachines machines' will describe this host.")
		}
	}
}
