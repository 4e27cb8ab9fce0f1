package machine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects how a MachineList is rendered.
type Format string

const (
	FormatText     Format = "text"     // aligned table
	FormatList     Format = "list"     // host:cores,host:cores
	FormatHostfile Format = "hostfile" // one host per core, one per line
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatText, FormatList, FormatHostfile, FormatJSON, FormatYAML}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected one of %v)", s, Formats())
}

type document struct {
	NumberOfCores int       `json:"number_of_cores" yaml:"number_of_cores"`
	Machines      []Machine `json:"machines" yaml:"machines"`
}

// MarshalJSON renders the list with its aggregate core count.
func (l *MachineList) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{NumberOfCores: l.NumberOfCores(), Machines: l.Machines()})
}

// MarshalYAML renders the list with its aggregate core count.
func (l *MachineList) MarshalYAML() (interface{}, error) {
	return document{NumberOfCores: l.NumberOfCores(), Machines: l.Machines()}, nil
}

// Encode writes l to w in the given format.
func Encode(w io.Writer, l *MachineList, f Format) error {
	switch f {
	case FormatText, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "HOST\tCORES\tQUEUE\tCORE LIST")
		for _, m := range l.Machines() {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", m.HostName, m.NumberOfCores, m.QueueName, strings.Join(m.CoreList, ","))
		}
		fmt.Fprintf(tw, "TOTAL\t%d\t\t\n", l.NumberOfCores())
		return tw.Flush()
	case FormatList:
		_, err := fmt.Fprintln(w, l.String())
		return err
	case FormatHostfile:
		for _, m := range l.Machines() {
			for i := 0; i < m.NumberOfCores; i++ {
				if _, err := fmt.Fprintln(w, m.HostName); err != nil {
					return err
				}
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}
