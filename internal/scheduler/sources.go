package scheduler

import (
	"context"

	"github.com/Justype/hpcmachines/internal/machine"
)

// SourceInput is what a Source parser receives once selected
type SourceInput struct {
	Value  string // value of the selecting variable
	Env    Env
	Prober Prober
}

// Source pairs an environment predicate with the parser it selects
type Source struct {
	Type     SchedulerType
	Variable string // the source is selected when this variable is set and non-blank
	Parse    func(ctx context.Context, in SourceInput) (*machine.MachineList, error)
}

// DefaultSources returns the scheduler sources in precedence order:
// UGE, LSF, PBS, SLURM, CCS.
func DefaultSources() []Source {
	return []Source{
		{
			Type:     SchedulerUGE,
			Variable: EnvUGEHostfile,
			Parse: func(_ context.Context, in SourceInput) (*machine.MachineList, error) {
				return LoadUGEHostfile(in.Value)
			},
		},
		{
			Type:     SchedulerLSF,
			Variable: EnvLSFHosts,
			Parse: func(_ context.Context, in SourceInput) (*machine.MachineList, error) {
				return ParseLSF(in.Value)
			},
		},
		{
			Type:     SchedulerPBS,
			Variable: EnvPBSNodefile,
			Parse: func(_ context.Context, in SourceInput) (*machine.MachineList, error) {
				return LoadPBSNodefile(in.Value)
			},
		},
		{
			Type:     SchedulerSLURM,
			Variable: EnvSlurmNodelist,
			Parse:    loadSlurm,
		},
		{
			Type:     SchedulerCCS,
			Variable: EnvCCSNodes,
			Parse: func(_ context.Context, in SourceInput) (*machine.MachineList, error) {
				return ParseCCS(in.Value)
			},
		},
	}
}

// loadSlurm parses the SLURM allocation and, when a prober is configured,
// swaps unreachable host names for the node addresses scontrol reports.
func loadSlurm(ctx context.Context, in SourceInput) (*machine.MachineList, error) {
	a := slurmAllocationFromEnv(in.Env)
	a.Nodelist = in.Value

	l, err := ParseSLURM(a)
	if err != nil {
		return nil, err
	}
	if in.Prober == nil {
		return l, nil
	}
	return resolveSlurm(ctx, in.Prober, a, l)
}

// detectSource returns the first source whose variable is present in env.
func detectSource(env Env, sources []Source) (Source, string, bool) {
	for _, src := range sources {
		if value, ok := getEnv(env, src.Variable); ok {
			return src, value, true
		}
	}
	return Source{}, "", false
}
