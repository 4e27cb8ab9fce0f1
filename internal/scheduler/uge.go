package scheduler

import (
	"strings"

	"github.com/Justype/hpcmachines/internal/machine"
)

// ugeUndefinedCores is what UGE writes in the core list column when no
// binding was requested.
const ugeUndefinedCores = "UNDEFINED"

// LoadUGEHostfile reads the file named by PE_HOSTFILE.
func LoadUGEHostfile(path string) (*machine.MachineList, error) {
	lines, err := readFileLines(SchedulerUGE, path)
	if err != nil {
		return nil, err
	}
	return parseUGELines(lines)
}

// ParseUGE parses PE_HOSTFILE content: one row per host,
//
//	hostname slots queue [corelist]
//
// where corelist is a colon separated list of socket,core bindings.
func ParseUGE(text string) (*machine.MachineList, error) {
	return parseUGELines(strings.Split(text, "\n"))
}

func parseUGELines(lines []string) (*machine.MachineList, error) {
	l := machine.NewMachineList()
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, NewParseError(SchedulerUGE, i+1, line, "expected 'hostname slots queue [corelist]'")
		}

		cores, err := parseCores(fields[1])
		if err != nil {
			return nil, NewParseError(SchedulerUGE, i+1, line, err.Error())
		}

		m := machine.Machine{HostName: fields[0], NumberOfCores: cores}
		if len(fields) > 2 {
			m.QueueName = fields[2]
		}
		if len(fields) > 3 && fields[3] != ugeUndefinedCores {
			m.CoreList = strings.Split(fields[3], ":")
		}
		if err := addOrParseError(l, SchedulerUGE, i+1, line, m); err != nil {
			return nil, err
		}
	}
	return requireHosts(SchedulerUGE, l)
}
