// Package machine models the hosts and core counts allocated to a parallel job.
package machine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyHostName indicates a machine entry without a host name
	ErrEmptyHostName = errors.New("machine host name is empty")

	// ErrNegativeCores indicates a machine entry with a negative core count
	ErrNegativeCores = errors.New("machine core count is negative")

	// ErrInvalidCoreCount indicates a core count target that cannot be honoured
	ErrInvalidCoreCount = errors.New("invalid core count")
)

// Machine is one host and its core allocation.
type Machine struct {
	HostName      string   `json:"host_name" yaml:"host_name"`
	NumberOfCores int      `json:"cores" yaml:"cores"`
	QueueName     string   `json:"queue,omitempty" yaml:"queue,omitempty"`         // UGE only
	CoreList      []string `json:"core_list,omitempty" yaml:"core_list,omitempty"` // UGE only
}

// NewMachine validates and returns a Machine.
func NewMachine(hostName string, cores int, queueName string, coreList []string) (Machine, error) {
	m := Machine{
		HostName:      hostName,
		NumberOfCores: cores,
		QueueName:     queueName,
		CoreList:      coreList,
	}
	if err := m.validate(); err != nil {
		return Machine{}, err
	}
	return m, nil
}

func (m Machine) validate() error {
	if strings.TrimSpace(m.HostName) == "" {
		return ErrEmptyHostName
	}
	if m.NumberOfCores < 0 {
		return fmt.Errorf("%w: %s has %d", ErrNegativeCores, m.HostName, m.NumberOfCores)
	}
	return nil
}

// String returns the canonical "host:cores" form.
func (m Machine) String() string {
	return fmt.Sprintf("%s:%d", m.HostName, m.NumberOfCores)
}

// MachineList is an ordered set of machines keyed by host name.
//
// Adding a host that is already present merges the cores into the existing
// entry (merge-on-insert). Order is first-seen order and is never changed
// by a merge.
type MachineList struct {
	machines      []Machine
	index         map[string]int
	numberOfCores int
}

// NewMachineList returns an empty list.
func NewMachineList() *MachineList {
	return &MachineList{index: make(map[string]int)}
}

// Add appends hostName with the given cores, or merges the cores into an
// existing entry of the same name.
func (l *MachineList) Add(hostName string, cores int) error {
	return l.AddMachine(Machine{HostName: hostName, NumberOfCores: cores})
}

// AddMachine appends m, or merges it into an existing entry of the same name.
// On merge the first-seen queue name is kept and any core list is appended.
func (l *MachineList) AddMachine(m Machine) error {
	if err := m.validate(); err != nil {
		return err
	}
	if l.index == nil {
		l.index = make(map[string]int)
	}

	if i, ok := l.index[m.HostName]; ok {
		existing := &l.machines[i]
		existing.NumberOfCores += m.NumberOfCores
		if existing.QueueName == "" {
			existing.QueueName = m.QueueName
		}
		if len(m.CoreList) > 0 {
			existing.CoreList = append(existing.CoreList, m.CoreList...)
		}
	} else {
		if m.CoreList != nil {
			m.CoreList = append([]string(nil), m.CoreList...)
		}
		l.index[m.HostName] = len(l.machines)
		l.machines = append(l.machines, m)
	}
	l.numberOfCores += m.NumberOfCores
	return nil
}

// NumberOfCores returns the total cores across all machines.
func (l *MachineList) NumberOfCores() int {
	if l == nil {
		return 0
	}
	return l.numberOfCores
}

// Len returns the number of distinct machines.
func (l *MachineList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.machines)
}

// At returns the i-th machine in list order.
func (l *MachineList) At(i int) Machine {
	return l.machines[i]
}

// Lookup returns the machine named hostName.
func (l *MachineList) Lookup(hostName string) (Machine, bool) {
	if l == nil {
		return Machine{}, false
	}
	i, ok := l.index[hostName]
	if !ok {
		return Machine{}, false
	}
	return l.machines[i], true
}

// Machines returns a copy of the machines in list order.
func (l *MachineList) Machines() []Machine {
	if l == nil {
		return nil
	}
	out := make([]Machine, len(l.machines))
	for i, m := range l.machines {
		out[i] = m
		if m.CoreList != nil {
			out[i].CoreList = append([]string(nil), m.CoreList...)
		}
	}
	return out
}

// HostNames returns the host names in list order.
func (l *MachineList) HostNames() []string {
	if l == nil {
		return nil
	}
	names := make([]string, len(l.machines))
	for i, m := range l.machines {
		names[i] = m.HostName
	}
	return names
}

// Clone returns a deep copy of the list.
func (l *MachineList) Clone() *MachineList {
	out := NewMachineList()
	for _, m := range l.Machines() {
		// validated on the way in
		_ = out.AddMachine(m)
	}
	return out
}

// WithoutEmpty returns a new list without the zero-core machines.
func (l *MachineList) WithoutEmpty() *MachineList {
	out := NewMachineList()
	for _, m := range l.Machines() {
		if m.NumberOfCores == 0 {
			continue
		}
		_ = out.AddMachine(m)
	}
	return out
}

// String returns the canonical delimited form "host:cores,host:cores".
func (l *MachineList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(l.machines))
	for i, m := range l.machines {
		parts[i] = m.String()
	}
	return strings.Join(parts, ",")
}
