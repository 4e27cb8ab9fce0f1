package scheduler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Justype/hpcmachines/internal/machine"
	"gopkg.in/yaml.v3"
)

// MachineSpec is one caller-supplied machine record
type MachineSpec struct {
	Name  string `yaml:"name" json:"name"`
	Cores int    `yaml:"cores" json:"cores"`
}

// ParseManual builds a list from caller-supplied records. Records naming
// the same host accumulate.
func ParseManual(specs []MachineSpec) (*machine.MachineList, error) {
	l := machine.NewMachineList()
	for i, spec := range specs {
		m := machine.Machine{HostName: spec.Name, NumberOfCores: spec.Cores}
		if err := addOrParseError(l, SourceManual, i+1, fmt.Sprintf("%s:%d", spec.Name, spec.Cores), m); err != nil {
			return nil, err
		}
	}
	return requireHosts(SourceManual, l)
}

// manualFile accepts either a bare sequence of records or a document with
// a "machines" key.
type manualFile struct {
	Machines []MachineSpec `yaml:"machines"`
}

// LoadManualFile reads machine records from a YAML (or JSON) file:
//
//	machines:
//	  - name: node1
//	    cores: 4
func LoadManualFile(path string) ([]MachineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewHostfileError(SourceManual, path, err)
	}

	var doc manualFile
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Machines) > 0 {
		return doc.Machines, nil
	}

	var specs []MachineSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, wrapParseError(SourceManual, 0, path, err)
	}
	if len(specs) == 0 {
		return nil, &ParseError{Format: SourceManual, Content: path, Reason: ErrNoHosts.Error(), Err: ErrNoHosts}
	}
	return specs, nil
}

// IsInlineMachineList reports whether s is inline machine data rather than a
// file path: it contains ':' or ',' and neither '/' nor '\'.
func IsInlineMachineList(s string) bool {
	return strings.ContainsAny(s, ":,") && !strings.ContainsAny(s, `/\`)
}

// ParseMachineList parses "M0:3,M1:2" or "M0,M0,M1" inline data, or reads a
// file holding one such token per line. A token is "name" or "name:cores";
// without ":cores" it counts as one core. Repeated hosts accumulate.
func ParseMachineList(s string) (*machine.MachineList, error) {
	if IsInlineMachineList(s) {
		return parseMachineTokens(strings.Split(s, ","), true)
	}

	lines, err := readFileLines(SourceMachineList, s)
	if err != nil {
		var he *HostfileError
		if errors.As(err, &he) && errors.Is(he.Err, fs.ErrNotExist) {
			he.Err = fmt.Errorf("%w (read as a file path): %w", ErrAmbiguousMachineList, he.Err)
		}
		return nil, err
	}

	var tokens []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens = append(tokens, line)
	}
	return parseMachineTokens(tokens, false)
}

func parseMachineTokens(tokens []string, inline bool) (*machine.MachineList, error) {
	l := machine.NewMachineList()
	for i, raw := range tokens {
		token := strings.TrimSpace(raw)
		host, count, hasCount := strings.Cut(token, ":")
		if strings.Contains(count, ":") {
			err := fmt.Errorf("token %q has more than one ':'", token)
			return nil, wrapParseError(SourceMachineList, i+1, token, err)
		}

		cores := 1
		if hasCount {
			n, err := parseCores(count)
			if err != nil {
				if inline {
					err = fmt.Errorf("%w (read as inline data): %v", ErrAmbiguousMachineList, err)
				}
				return nil, wrapParseError(SourceMachineList, i+1, token, err)
			}
			cores = n
		}

		if err := addOrParseError(l, SourceMachineList, i+1, token, machine.Machine{HostName: strings.TrimSpace(host), NumberOfCores: cores}); err != nil {
			return nil, err
		}
	}
	return requireHosts(SourceMachineList, l)
}
