package scheduler

import (
	"strings"

	"github.com/Justype/hpcmachines/internal/machine"
)

// ParseLSF parses LSB_MCPU_HOSTS: a flat list of alternating host names
// and core counts, e.g. "hostA 4 hostB 2".
func ParseLSF(text string) (*machine.MachineList, error) {
	fields := strings.Fields(text)
	if len(fields)%2 != 0 {
		return nil, NewParseError(SchedulerLSF, 0, text, "expected alternating 'host cores' pairs")
	}

	l := machine.NewMachineList()
	for i := 0; i < len(fields); i += 2 {
		host, count := fields[i], fields[i+1]
		cores, err := parseCores(count)
		if err != nil {
			return nil, NewParseError(SchedulerLSF, 0, host+" "+count, err.Error())
		}
		if err := addOrParseError(l, SchedulerLSF, 0, host+" "+count, machine.Machine{HostName: host, NumberOfCores: cores}); err != nil {
			return nil, err
		}
	}
	return requireHosts(SchedulerLSF, l)
}
