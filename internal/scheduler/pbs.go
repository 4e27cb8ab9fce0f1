package scheduler

import (
	"strings"

	"github.com/Justype/hpcmachines/internal/machine"
)

// LoadPBSNodefile reads the file named by PBS_NODEFILE.
func LoadPBSNodefile(path string) (*machine.MachineList, error) {
	lines, err := readFileLines(SchedulerPBS, path)
	if err != nil {
		return nil, err
	}
	return parsePBSLines(lines)
}

// ParsePBS parses PBS_NODEFILE content. Each line names a host and stands
// for one core on it; repeated hosts accumulate.
func ParsePBS(text string) (*machine.MachineList, error) {
	return parsePBSLines(strings.Split(text, "\n"))
}

func parsePBSLines(lines []string) (*machine.MachineList, error) {
	l := machine.NewMachineList()
	for i, line := range lines {
		host := strings.TrimSpace(line)
		if host == "" {
			continue
		}
		if err := addOrParseError(l, SchedulerPBS, i+1, line, machine.Machine{HostName: host, NumberOfCores: 1}); err != nil {
			return nil, err
		}
	}
	return requireHosts(SchedulerPBS, l)
}
