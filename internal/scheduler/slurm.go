package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Justype/hpcmachines/internal/machine"
	"github.com/Justype/hpcmachines/internal/utils"
)

// SlurmAllocation is the raw SLURM view of a job allocation
type SlurmAllocation struct {
	Nodelist      string // SLURM_JOB_NODELIST
	NtasksPerNode string // SLURM_NTASKS_PER_NODE, uniform count (optional)
	TasksPerNode  string // SLURM_TASKS_PER_NODE, compressed per-node counts (optional)
}

// slurmAllocationFromEnv reads the SLURM variables from env.
func slurmAllocationFromEnv(env Env) SlurmAllocation {
	var a SlurmAllocation
	a.Nodelist, _ = getEnv(env, EnvSlurmNodelist)
	a.NtasksPerNode, _ = getEnv(env, EnvSlurmNtasksPerNode)
	a.TasksPerNode, _ = getEnv(env, EnvSlurmTasksPerNode)
	return a
}

// ParseSLURM expands the allocation's nodelist and assigns cores per host:
// NtasksPerNode applies to every host; otherwise TasksPerNode is expanded
// and assigned positionally; otherwise each host gets one core.
func ParseSLURM(a SlurmAllocation) (*machine.MachineList, error) {
	return a.withNodelist(a.Nodelist)
}

// withNodelist builds the list for nodelist using a's core counts. The
// scontrol fallback reuses it with resolved node addresses.
func (a SlurmAllocation) withNodelist(nodelist string) (*machine.MachineList, error) {
	hosts, err := ExpandHostlist(nodelist)
	if err != nil {
		return nil, err
	}

	cores, err := a.coresPerHost(len(hosts))
	if err != nil {
		return nil, err
	}

	l := machine.NewMachineList()
	for i, host := range hosts {
		if err := addOrParseError(l, SchedulerSLURM, 0, host, machine.Machine{HostName: host, NumberOfCores: cores[i]}); err != nil {
			return nil, err
		}
	}
	return requireHosts(SchedulerSLURM, l)
}

func (a SlurmAllocation) coresPerHost(nhosts int) ([]int, error) {
	cores := make([]int, nhosts)

	switch {
	case strings.TrimSpace(a.NtasksPerNode) != "":
		n, err := strconv.Atoi(strings.TrimSpace(a.NtasksPerNode))
		if err != nil || n < 0 {
			return nil, &ParseError{
				Format:  SchedulerSLURM,
				Content: EnvSlurmNtasksPerNode + "=" + a.NtasksPerNode,
				Reason:  "expected a non-negative integer",
				Err:     ErrInvalidTasksPerNode,
			}
		}
		for i := range cores {
			cores[i] = n
		}

	case strings.TrimSpace(a.TasksPerNode) != "":
		counts, err := ExpandTasksPerNode(a.TasksPerNode)
		if err != nil {
			return nil, wrapParseError(SchedulerSLURM, 0, EnvSlurmTasksPerNode+"="+a.TasksPerNode, err)
		}
		if len(counts) != nhosts {
			err := fmt.Errorf("%w: %d counts for %d hosts", ErrTasksPerNodeMismatch, len(counts), nhosts)
			return nil, wrapParseError(SchedulerSLURM, 0, EnvSlurmTasksPerNode+"="+a.TasksPerNode, err)
		}
		copy(cores, counts)

	default:
		for i := range cores {
			cores[i] = 1
		}
	}
	return cores, nil
}

// parseNodeAddrs extracts the NodeAddr= values, in order, from
// `scontrol show node` output.
func parseNodeAddrs(output string) []string {
	var addrs []string
	for _, field := range strings.Fields(output) {
		key, value, ok := strings.Cut(field, "=")
		if ok && key == "NodeAddr" && value != "" {
			addrs = append(addrs, value)
		}
	}
	return addrs
}

// resolveSlurm checks that the first host of l answers over ssh and, if not,
// rebuilds the list from the node addresses scontrol reports.
func resolveSlurm(ctx context.Context, p Prober, a SlurmAllocation, l *machine.MachineList) (*machine.MachineList, error) {
	first := l.At(0).HostName
	err := p.Reachable(ctx, first)
	if err == nil {
		return l, nil
	}
	utils.PrintWarning("SLURM: host %s is not reachable over ssh; resolving node addresses with scontrol", utils.StyleName(first))
	utils.PrintDebug("SLURM: ssh probe error: %v", err)

	addrs, err := p.NodeAddresses(ctx, a.Nodelist)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, &ParseError{Format: SchedulerSLURM, Content: a.Nodelist, Reason: ErrNodeAddrUnavailable.Error(), Err: ErrNodeAddrUnavailable}
	}

	resolved, err := a.withNodelist(strings.Join(addrs, ","))
	if err != nil {
		if errors.Is(err, ErrTasksPerNodeMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrNodeAddrUnavailable, err)
	}
	return resolved, nil
}
