package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/Justype/hpcmachines/internal/machine"
	"github.com/google/go-cmp/cmp"
)

// fakeProber records calls and answers from fixed tables
type fakeProber struct {
	unreachable map[string]bool
	addrs       []string
	addrErr     error
	probed      []string
	resolved    []string
}

func (f *fakeProber) Reachable(_ context.Context, host string) error {
	f.probed = append(f.probed, host)
	if f.unreachable[host] {
		return &ProbeError{Op: "ssh", Cmd: "ssh " + host + " /bin/true", Err: errors.New("exit status 255")}
	}
	return nil
}

func (f *fakeProber) NodeAddresses(_ context.Context, nodelist string) ([]string, error) {
	f.resolved = append(f.resolved, nodelist)
	return f.addrs, f.addrErr
}

func TestParseSLURMCores(t *testing.T) {
	tests := []struct {
		name  string
		alloc SlurmAllocation
		want  []machine.Machine
	}{
		{
			name:  "one core per host by default",
			alloc: SlurmAllocation{Nodelist: "n[1-2]"},
			want:  []machine.Machine{{HostName: "n1", NumberOfCores: 1}, {HostName: "n2", NumberOfCores: 1}},
		},
		{
			name:  "uniform ntasks per node",
			alloc: SlurmAllocation{Nodelist: "n[1-2]", NtasksPerNode: "8"},
			want:  []machine.Machine{{HostName: "n1", NumberOfCores: 8}, {HostName: "n2", NumberOfCores: 8}},
		},
		{
			name:  "ntasks per node wins over tasks per node",
			alloc: SlurmAllocation{Nodelist: "n[1-2]", NtasksPerNode: "4", TasksPerNode: "1,2"},
			want:  []machine.Machine{{HostName: "n1", NumberOfCores: 4}, {HostName: "n2", NumberOfCores: 4}},
		},
		{
			name:  "tasks per node assigned positionally",
			alloc: SlurmAllocation{Nodelist: "a[1-2],b,c[01-02]", TasksPerNode: "10,3,12(x2),4"},
			want: []machine.Machine{
				{HostName: "a1", NumberOfCores: 10},
				{HostName: "a2", NumberOfCores: 3},
				{HostName: "b", NumberOfCores: 12},
				{HostName: "c01", NumberOfCores: 12},
				{HostName: "c02", NumberOfCores: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ParseSLURM(tt.alloc)
			if err != nil {
				t.Fatalf("ParseSLURM failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, l.Machines()); diff != "" {
				t.Errorf("ParseSLURM mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSLURMTasksPerNodeMismatch(t *testing.T) {
	_, err := ParseSLURM(SlurmAllocation{Nodelist: "n[1-3]", TasksPerNode: "2(x2)"})
	if !errors.Is(err, ErrTasksPerNodeMismatch) {
		t.Fatalf("error = %v; want ErrTasksPerNodeMismatch", err)
	}
	if !IsParseError(err) {
		t.Errorf("error %v should be a ParseError", err)
	}
}

func TestParseSLURMInvalidNtasks(t *testing.T) {
	_, err := ParseSLURM(SlurmAllocation{Nodelist: "n1", NtasksPerNode: "many"})
	if !errors.Is(err, ErrInvalidTasksPerNode) {
		t.Errorf("error = %v; want ErrInvalidTasksPerNode", err)
	}
}

func TestParseNodeAddrs(t *testing.T) {
	out := `NodeName=n1 Arch=x86_64 CoresPerSocket=16
   CPUAlloc=0 CPUTot=32
   NodeAddr=10.1.0.11 NodeHostName=n1 Version=23.02.6
   State=IDLE

NodeName=n2 Arch=x86_64 CoresPerSocket=16
   NodeAddr=10.1.0.12 NodeHostName=n2 Version=23.02.6
`
	got := parseNodeAddrs(out)
	if diff := cmp.Diff([]string{"10.1.0.11", "10.1.0.12"}, got); diff != "" {
		t.Errorf("parseNodeAddrs mismatch (-want +got):\n%s", diff)
	}
	if got := parseNodeAddrs("NodeAddr= other=1"); len(got) != 0 {
		t.Errorf("empty NodeAddr should be skipped, got %v", got)
	}
}

func TestResolveSlurmReachable(t *testing.T) {
	a := SlurmAllocation{Nodelist: "n[1-2]", NtasksPerNode: "2"}
	l, err := ParseSLURM(a)
	if err != nil {
		t.Fatal(err)
	}

	p := &fakeProber{}
	got, err := resolveSlurm(context.Background(), p, a, l)
	if err != nil {
		t.Fatalf("resolveSlurm failed: %v", err)
	}
	if got != l {
		t.Errorf("reachable hosts should keep the original list")
	}
	if diff := cmp.Diff([]string{"n1"}, p.probed); diff != "" {
		t.Errorf("only the first host should be probed (-want +got):\n%s", diff)
	}
	if len(p.resolved) != 0 {
		t.Errorf("scontrol should not run when the first host is reachable")
	}
}

func TestResolveSlurmFallsBackToNodeAddrs(t *testing.T) {
	a := SlurmAllocation{Nodelist: "n[1-2]", TasksPerNode: "4,2"}
	l, err := ParseSLURM(a)
	if err != nil {
		t.Fatal(err)
	}

	p := &fakeProber{
		unreachable: map[string]bool{"n1": true},
		addrs:       []string{"10.1.0.11", "10.1.0.12"},
	}
	got, err := resolveSlurm(context.Background(), p, a, l)
	if err != nil {
		t.Fatalf("resolveSlurm failed: %v", err)
	}

	want := []machine.Machine{
		{HostName: "10.1.0.11", NumberOfCores: 4},
		{HostName: "10.1.0.12", NumberOfCores: 2},
	}
	if diff := cmp.Diff(want, got.Machines()); diff != "" {
		t.Errorf("resolved list mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"n[1-2]"}, p.resolved); diff != "" {
		t.Errorf("scontrol should receive the raw nodelist (-want +got):\n%s", diff)
	}
}

func TestResolveSlurmFallbackFailures(t *testing.T) {
	a := SlurmAllocation{Nodelist: "n[1-2]"}
	l, err := ParseSLURM(a)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("no addresses", func(t *testing.T) {
		p := &fakeProber{unreachable: map[string]bool{"n1": true}}
		_, err := resolveSlurm(context.Background(), p, a, l)
		if !errors.Is(err, ErrNodeAddrUnavailable) {
			t.Errorf("error = %v; want ErrNodeAddrUnavailable", err)
		}
	})

	t.Run("scontrol fails", func(t *testing.T) {
		p := &fakeProber{
			unreachable: map[string]bool{"n1": true},
			addrErr:     &ProbeError{Op: "scontrol show node", Err: errors.New("exit status 1")},
		}
		_, err := resolveSlurm(context.Background(), p, a, l)
		if !IsProbeError(err) {
			t.Errorf("error = %v; want ProbeError", err)
		}
	})

	t.Run("address count differs from tasks", func(t *testing.T) {
		withTasks := SlurmAllocation{Nodelist: "n[1-2]", TasksPerNode: "1,1"}
		l, err := ParseSLURM(withTasks)
		if err != nil {
			t.Fatal(err)
		}
		p := &fakeProber{unreachable: map[string]bool{"n1": true}, addrs: []string{"10.1.0.11"}}
		_, err = resolveSlurm(context.Background(), p, withTasks, l)
		if !errors.Is(err, ErrTasksPerNodeMismatch) {
			t.Errorf("error = %v; want ErrTasksPerNodeMismatch", err)
		}
	})

	t.Run("unparseable addresses", func(t *testing.T) {
		p := &fakeProber{unreachable: map[string]bool{"n1": true}, addrs: []string{"bad[addr"}}
		_, err := resolveSlurm(context.Background(), p, a, l)
		if !errors.Is(err, ErrNodeAddrUnavailable) || !IsParseError(err) {
			t.Errorf("error = %v; want ErrNodeAddrUnavailable wrapping a ParseError", err)
		}
	})
}
