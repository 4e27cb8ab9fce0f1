package scheduler

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Justype/hpcmachines/internal/machine"
)

// readFileLines opens a file and returns all its lines.
// Shared helper used by every file-backed parser; failures are reported
// as HostfileError so callers can tell I/O problems from malformed content.
func readFileLines(format SchedulerType, path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, NewHostfileError(format, path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, NewHostfileError(format, path, fmt.Errorf("error reading file: %w", err))
	}
	return lines, nil
}

// parseCores parses a core count token; counts must be non-negative integers.
func parseCores(token string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, fmt.Errorf("core count %q is not an integer", token)
	}
	if n < 0 {
		return 0, fmt.Errorf("core count %d is negative", n)
	}
	return n, nil
}

// addOrParseError adds m to l and reports an invalid machine as a ParseError
// that still matches the machine package sentinel errors.
func addOrParseError(l *machine.MachineList, format SchedulerType, line int, content string, m machine.Machine) error {
	if err := l.AddMachine(m); err != nil {
		return wrapParseError(format, line, content, err)
	}
	return nil
}

// requireHosts rejects an empty machine list.
func requireHosts(format SchedulerType, l *machine.MachineList) (*machine.MachineList, error) {
	if l.Len() == 0 {
		return nil, &ParseError{Format: format, Reason: ErrNoHosts.Error(), Err: ErrNoHosts}
	}
	return l, nil
}

