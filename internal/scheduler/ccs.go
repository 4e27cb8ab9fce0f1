package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Justype/hpcmachines/internal/machine"
)

// ParseCCS parses CCP_NODES from Windows HPC: a host count followed by
// that many "host cores" pairs, e.g. "2 node1 4 node2 8".
func ParseCCS(text string) (*machine.MachineList, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, NewParseError(SchedulerCCS, 0, text, "empty node list")
	}

	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return nil, NewParseError(SchedulerCCS, 0, fields[0], "host count is not a non-negative integer")
	}
	if len(fields) != 1+2*count {
		return nil, NewParseError(SchedulerCCS, 0, text,
			fmt.Sprintf("host count %d does not match %d tokens that follow", count, len(fields)-1))
	}

	l := machine.NewMachineList()
	for i := 0; i < count; i++ {
		host, cnt := fields[1+2*i], fields[2+2*i]
		cores, err := parseCores(cnt)
		if err != nil {
			return nil, NewParseError(SchedulerCCS, 0, host+" "+cnt, err.Error())
		}
		if err := addOrParseError(l, SchedulerCCS, 0, host+" "+cnt, machine.Machine{HostName: host, NumberOfCores: cores}); err != nil {
			return nil, err
		}
	}
	return requireHosts(SchedulerCCS, l)
}
