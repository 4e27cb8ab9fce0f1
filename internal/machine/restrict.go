package machine

import (
	"fmt"
	"sort"
)

// Restrict returns a new list whose total core count equals target.
//
// If target is not below the current total, old is returned unchanged.
// Otherwise every machine keeps its position; each first receives its
// proportional share target*cores/total (rounded down), and the remaining
// quota is handed out one core at a time in passes over the machines
// ordered by descending original core count (ties keep list order), skipping
// machines whose original capacity is used up. Machines may end up with zero
// cores; callers that need a launchable list should use WithoutEmpty.
//
// A CoreList longer than the reduced count is trimmed to its first entries so
// the binding never names more cores than the machine keeps. A machine left
// with zero cores has no CoreList.
func Restrict(old *MachineList, target int) (*MachineList, error) {
	if target < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCoreCount, target)
	}
	total := old.NumberOfCores()
	if target >= total {
		return old, nil
	}

	machines := old.Machines()
	order := make([]int, len(machines))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return machines[order[a]].NumberOfCores > machines[order[b]].NumberOfCores
	})

	assigned := make([]int, len(machines))
	remaining := make([]int, len(machines))
	quota := target
	for i, m := range machines {
		share := target * m.NumberOfCores / total
		assigned[i] = share
		remaining[i] = m.NumberOfCores - share
		quota -= share
	}

	for quota > 0 {
		for _, i := range order {
			if quota == 0 {
				break
			}
			if remaining[i] > 0 {
				assigned[i]++
				remaining[i]--
				quota--
			}
		}
	}

	out := NewMachineList()
	for i, m := range machines {
		m.NumberOfCores = assigned[i]
		if len(m.CoreList) > m.NumberOfCores {
			m.CoreList = m.CoreList[:m.NumberOfCores]
			if len(m.CoreList) == 0 {
				m.CoreList = nil
			}
		}
		if err := out.AddMachine(m); err != nil {
			return nil, err
		}
	}
	return out, nil
}
