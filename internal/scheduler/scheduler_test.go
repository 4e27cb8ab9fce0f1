package scheduler

import (
	"testing"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name string
		env  MapEnv
		want SchedulerType
	}{
		{"empty environment", MapEnv{}, SchedulerUnknown},
		{"UGE", MapEnv{EnvUGEHostfile: "/tmp/pe_hostfile"}, SchedulerUGE},
		{"LSF", MapEnv{EnvLSFHosts: "hostA 4"}, SchedulerLSF},
		{"PBS", MapEnv{EnvPBSNodefile: "/var/spool/pbs/aux/1"}, SchedulerPBS},
		{"SLURM", MapEnv{EnvSlurmNodelist: "n[1-2]"}, SchedulerSLURM},
		{"CCS", MapEnv{EnvCCSNodes: "1 node1 4"}, SchedulerCCS},
		{"UGE wins over every other source", MapEnv{
			EnvUGEHostfile:   "/tmp/pe_hostfile",
			EnvLSFHosts:      "hostA 4",
			EnvSlurmNodelist: "n1",
			EnvCCSNodes:      "1 node1 4",
		}, SchedulerUGE},
		{"LSF wins over PBS", MapEnv{EnvLSFHosts: "hostA 4", EnvPBSNodefile: "/tmp/nodes"}, SchedulerLSF},
		{"PBS wins over SLURM", MapEnv{EnvPBSNodefile: "/tmp/nodes", EnvSlurmNodelist: "n1"}, SchedulerPBS},
		{"SLURM wins over CCS", MapEnv{EnvSlurmNodelist: "n1", EnvCCSNodes: "1 node1 4"}, SchedulerSLURM},
		{"blank variables are ignored", MapEnv{EnvUGEHostfile: "  ", EnvSlurmNodelist: "n1"}, SchedulerSLURM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.env); got != tt.want {
				t.Errorf("DetectType() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestGetInfo(t *testing.T) {
	info := GetInfo(MapEnv{
		EnvSlurmNodelist: "n[1-4]",
		"SLURM_JOB_ID":   "1234",
		"SLURM_NTASKS":   "16",
	})
	if info.Type != SchedulerSLURM {
		t.Errorf("Type = %q; want SLURM", info.Type)
	}
	if info.Variable != EnvSlurmNodelist {
		t.Errorf("Variable = %q; want %q", info.Variable, EnvSlurmNodelist)
	}
	if info.Value != "n[1-4]" {
		t.Errorf("Value = %q; want n[1-4]", info.Value)
	}
	if !info.InJob {
		t.Error("InJob = false; want true")
	}
	if info.Slots == nil || *info.Slots != 16 {
		t.Errorf("Slots = %v; want 16", info.Slots)
	}
}

func TestGetInfoLocal(t *testing.T) {
	info := GetInfo(MapEnv{"NSLOTS": "zero"})
	if info.Type != SourceLocal {
		t.Errorf("Type = %q; want LOCAL", info.Type)
	}
	if info.Variable != "" || info.Value != "" {
		t.Errorf("local info should have no variable, got %q=%q", info.Variable, info.Value)
	}
	if info.InJob {
		t.Error("InJob = true; want false")
	}
	if info.Slots != nil {
		t.Errorf("Slots = %d; want nil for a non-numeric value", *info.Slots)
	}
}

func TestIsInsideJob(t *testing.T) {
	for _, key := range []string{"SLURM_JOB_ID", "PBS_JOBID", "LSB_JOBID", "JOB_ID", "CCP_JOBID"} {
		if !IsInsideJob(MapEnv{key: "42"}) {
			t.Errorf("IsInsideJob with %s should be true", key)
		}
	}
	if IsInsideJob(MapEnv{"SLURM_JOB_ID": ""}) {
		t.Error("IsInsideJob with an empty job id should be false")
	}
}

func TestGetEnvInt(t *testing.T) {
	env := MapEnv{"A": "8", "B": " 3 ", "C": "0", "D": "-1", "E": "x"}
	if n := getEnvInt(env, "A"); n == nil || *n != 8 {
		t.Errorf("getEnvInt(A) = %v; want 8", n)
	}
	if n := getEnvInt(env, "B"); n == nil || *n != 3 {
		t.Errorf("getEnvInt(B) = %v; want 3", n)
	}
	for _, key := range []string{"C", "D", "E", "missing"} {
		if n := getEnvInt(env, key); n != nil {
			t.Errorf("getEnvInt(%s) = %d; want nil", key, *n)
		}
	}
}
