package scheduler

import (
	"context"
	"fmt"
	"os"

	"github.com/Justype/hpcmachines/internal/machine"
	"github.com/Justype/hpcmachines/internal/utils"
)

// Request holds the explicit inputs to a load. All fields are optional.
type Request struct {
	Machines    []MachineSpec // caller-supplied records; win over everything else
	MachineList string        // inline "host:cores,..." data or a file path
	Ncores      int           // requested total cores; 0 means "whatever the source gives"
}

// Allocation is the result of a load
type Allocation struct {
	Source   SchedulerType
	Machines *machine.MachineList
}

// Loader selects one allocation source and produces its machine list.
// A zero Loader is not usable; create one with NewLoader.
type Loader struct {
	Env      Env                    // environment to inspect
	Prober   Prober                 // SLURM reachability probe; nil skips the check
	Sources  []Source               // scheduler sources in precedence order
	Hostname func() (string, error) // local host name for the fallback
}

// NewLoader returns a Loader over the process environment with the default
// sources and a CommandProber with default settings.
func NewLoader() *Loader {
	return &Loader{
		Env:      OSEnv{},
		Prober:   NewCommandProber("", "", DefaultProbeTimeout),
		Sources:  DefaultSources(),
		Hostname: os.Hostname,
	}
}

// LoadMachines loads the machine list with a default Loader.
func LoadMachines(ctx context.Context, req Request) (*machine.MachineList, error) {
	alloc, err := NewLoader().Load(ctx, req)
	if err != nil {
		return nil, err
	}
	return alloc.Machines, nil
}

// Load picks exactly one source: Machines, then MachineList, then the first
// scheduler source present in the environment, then the local host. If
// Ncores is set and below the source's total, the list is restricted to it.
func (l *Loader) Load(ctx context.Context, req Request) (*Allocation, error) {
	if req.Ncores < 0 {
		return nil, fmt.Errorf("%w: %d", machine.ErrInvalidCoreCount, req.Ncores)
	}

	alloc, err := l.loadSource(ctx, req)
	if err != nil {
		return nil, err
	}
	utils.PrintDebug("Loaded %s machines from %s (%s cores)",
		utils.StyleNumber(alloc.Machines.Len()), utils.StyleInfo(string(alloc.Source)),
		utils.StyleNumber(alloc.Machines.NumberOfCores()))

	if req.Ncores > 0 && req.Ncores < alloc.Machines.NumberOfCores() {
		restricted, err := machine.Restrict(alloc.Machines, req.Ncores)
		if err != nil {
			return nil, err
		}
		alloc.Machines = restricted.WithoutEmpty()
		utils.PrintDebug("Restricted machine list to %s cores: %s",
			utils.StyleNumber(req.Ncores), alloc.Machines)
	}
	return alloc, nil
}

func (l *Loader) loadSource(ctx context.Context, req Request) (*Allocation, error) {
	switch {
	case len(req.Machines) > 0:
		ml, err := ParseManual(req.Machines)
		if err != nil {
			return nil, err
		}
		return &Allocation{Source: SourceManual, Machines: ml}, nil

	case req.MachineList != "":
		ml, err := ParseMachineList(req.MachineList)
		if err != nil {
			return nil, err
		}
		return &Allocation{Source: SourceMachineList, Machines: ml}, nil
	}

	env := l.Env
	if env == nil {
		env = OSEnv{}
	}
	sources := l.Sources
	if sources == nil {
		sources = DefaultSources()
	}

	if src, value, ok := detectSource(env, sources); ok {
		utils.PrintDebug("Found %s allocation in %s", utils.StyleInfo(string(src.Type)), utils.StyleName(src.Variable))
		ml, err := src.Parse(ctx, SourceInput{Value: value, Env: env, Prober: l.Prober})
		if err != nil {
			return nil, fmt.Errorf("%s allocation from %s: %w", src.Type, src.Variable, err)
		}
		return &Allocation{Source: src.Type, Machines: ml}, nil
	}

	return l.loadLocal(req.Ncores)
}

// loadLocal describes the local host with ncores cores, or one if unset.
func (l *Loader) loadLocal(ncores int) (*Allocation, error) {
	hostnameFn := l.Hostname
	if hostnameFn == nil {
		hostnameFn = os.Hostname
	}
	host, err := hostnameFn()
	if err != nil {
		return nil, fmt.Errorf("failed to determine local host name: %w", err)
	}

	cores := 1
	if ncores > 0 {
		cores = ncores
	}
	ml := machine.NewMachineList()
	if err := ml.Add(host, cores); err != nil {
		return nil, fmt.Errorf("local host: %w", err)
	}
	return &Allocation{Source: SourceLocal, Machines: ml}, nil
}
