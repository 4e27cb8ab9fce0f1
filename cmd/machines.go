package cmd

import (
	"fmt"

	"github.com/Justype/hpcmachines/internal/config"
	"github.com/Justype/hpcmachines/internal/machine"
	"github.com/Justype/hpcmachines/internal/scheduler"
	"github.com/Justype/hpcmachines/internal/utils"
	"github.com/spf13/cobra"
)

var (
	machinesFile      string
	machineListInput  string
	machinesNcores    int
	machinesFormat    string
	machinesProbeTime string
	machinesNoProbe   bool
)

// newLoader builds the loader the machines command uses; tests replace it.
var newLoader = func() *scheduler.Loader {
	l := scheduler.NewLoader()
	l.Prober = config.NewProber()
	return l
}

var machinesCmd = &cobra.Command{
	Use:     "machines",
	Aliases: []string{"ls"},
	Short:   "List the machines allocated to this job",
	Long: `List the machines and cores available to this job.

Exactly one source is used, in this order:
  1. Machine records from --machines-file (YAML or JSON)
  2. --machine-list: inline "host:cores,..." data or a file with one entry per line
  3. The first scheduler variable present in the environment:
     PE_HOSTFILE (UGE), LSB_MCPU_HOSTS (LSF), PBS_NODEFILE (PBS),
     SLURM_JOB_NODELIST (SLURM), CCP_NODES (CCS)
  4. The local host

With --ncores, the list is cut down to that many cores, spread over the
machines in proportion to what each one has.`,
	Example: `  hpcmachines machines                       # Use the scheduler allocation
  hpcmachines ls -m node1:4,node2:4 -n 6     # Inline list, restricted to 6 cores
  hpcmachines ls -m ./hosts.txt -f hostfile  # One line per core
  hpcmachines ls --machines-file nodes.yaml -f json`,
	Args: cobra.NoArgs,
	RunE: runMachines,
}

func init() {
	machinesCmd.Flags().StringVar(&machinesFile, "machines-file", "", "YAML or JSON file with machine records (name, cores)")
	machinesCmd.Flags().StringVarP(&machineListInput, "machine-list", "m", "", "Inline \"host:cores,...\" list or path to a machine list file")
	machinesCmd.Flags().IntVarP(&machinesNcores, "ncores", "n", 0, "Restrict the list to this many cores (0 keeps all)")
	machinesCmd.Flags().StringVarP(&machinesFormat, "format", "f", "", "Output format: text, list, hostfile, json, yaml")
	machinesCmd.Flags().StringVar(&machinesProbeTime, "probe-timeout", "", "Timeout for ssh and scontrol probes (e.g. 10s, 00:30)")
	machinesCmd.Flags().BoolVar(&machinesNoProbe, "no-probe", false, "Trust SLURM host names without probing them over ssh")

	_ = machinesCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatNames(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = machinesCmd.RegisterFlagCompletionFunc("machines-file", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "json"}, cobra.ShellCompDirectiveFilterFileExt
	})

	rootCmd.AddCommand(machinesCmd)
}

func runMachines(cmd *cobra.Command, args []string) error {
	formatName := machinesFormat
	if formatName == "" {
		formatName = config.Global.OutputFormat
	}
	format, err := machine.ParseFormat(formatName)
	if err != nil {
		return err
	}

	if machinesProbeTime != "" {
		timeout, err := utils.ParseDuration(machinesProbeTime)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("invalid --probe-timeout %q", machinesProbeTime)
		}
		config.Global.ProbeTimeout = timeout
	}
	if machinesNoProbe {
		config.Global.SkipProbe = true
	}

	req := scheduler.Request{
		MachineList: machineListInput,
		Ncores:      machinesNcores,
	}
	if machinesFile != "" {
		specs, err := scheduler.LoadManualFile(machinesFile)
		if err != nil {
			return err
		}
		req.Machines = specs
	}

	alloc, err := newLoader().Load(cmd.Context(), req)
	if err != nil {
		return err
	}
	utils.PrintDebug("Using %s machines from %s with %s cores",
		utils.StyleNumber(alloc.Machines.Len()), utils.StyleInfo(string(alloc.Source)),
		utils.StyleNumber(alloc.Machines.NumberOfCores()))

	return machine.Encode(cmd.OutOrStdout(), alloc.Machines, format)
}

func formatNames() []string {
	var names []string
	for _, f := range machine.Formats() {
		names = append(names, string(f))
	}
	return names
}
