// Package scheduler discovers the machines and cores an HPC job scheduler
// allocated to the current job.
package scheduler

import (
	"os"
	"strconv"
	"strings"
)

// SchedulerType represents the source a machine list was read from
type SchedulerType string

const (
	SchedulerUnknown SchedulerType = ""
	SchedulerUGE     SchedulerType = "UGE"
	SchedulerLSF     SchedulerType = "LSF"
	SchedulerPBS     SchedulerType = "PBS"
	SchedulerSLURM   SchedulerType = "SLURM"
	SchedulerCCS     SchedulerType = "CCS"

	// Not schedulers, but sources the loader can pick
	SourceManual      SchedulerType = "MANUAL"
	SourceMachineList SchedulerType = "LIST"
	SourceLocal       SchedulerType = "LOCAL"
)

// Environment variables through which schedulers publish an allocation
const (
	EnvUGEHostfile        = "PE_HOSTFILE"
	EnvLSFHosts           = "LSB_MCPU_HOSTS"
	EnvPBSNodefile        = "PBS_NODEFILE"
	EnvSlurmNodelist      = "SLURM_JOB_NODELIST"
	EnvSlurmNtasksPerNode = "SLURM_NTASKS_PER_NODE"
	EnvSlurmTasksPerNode  = "SLURM_TASKS_PER_NODE"
	EnvCCSNodes           = "CCP_NODES"
)

// SchedulerInfo describes the allocation source the environment selects
type SchedulerInfo struct {
	Type     SchedulerType // Selected source
	Variable string        // Environment variable that selected it (empty for local)
	Value    string        // Raw value of that variable
	InJob    bool          // Whether a scheduler job id is present
	Slots    *int          // Total slots the scheduler reports, if any
}

// Env is a read-only view of process environment variables.
type Env interface {
	LookupEnv(key string) (string, bool)
}

// OSEnv reads the real process environment.
type OSEnv struct{}

// LookupEnv implements Env.
func (OSEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is a fixed environment, mostly for tests and for callers that
// want to describe an allocation without touching the process environment.
type MapEnv map[string]string

// LookupEnv implements Env.
func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// getEnv returns the value of key if it is set and non-blank.
func getEnv(env Env, key string) (string, bool) {
	v, ok := env.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// slotVariables hold the total slot count of a job, in source order
var slotVariables = []string{"NSLOTS", "LSB_DJOB_NUMPROC", "PBS_NP", "SLURM_NTASKS", "CCP_NUMCPUS"}

// getEnvInt reads an environment variable and parses it as a positive int.
// Returns nil if unset, empty, or not a valid positive integer.
func getEnvInt(env Env, key string) *int {
	val, ok := getEnv(env, key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// DetectType returns the scheduler the environment selects, using the
// default source precedence. Returns SchedulerUnknown if none is present.
func DetectType(env Env) SchedulerType {
	src, _, ok := detectSource(env, DefaultSources())
	if !ok {
		return SchedulerUnknown
	}
	return src.Type
}

// GetInfo describes the allocation source selected by env.
func GetInfo(env Env) *SchedulerInfo {
	info := &SchedulerInfo{
		Type:  SourceLocal,
		InJob: IsInsideJob(env),
	}
	for _, key := range slotVariables {
		if n := getEnvInt(env, key); n != nil {
			info.Slots = n
			break
		}
	}
	if src, value, ok := detectSource(env, DefaultSources()); ok {
		info.Type = src.Type
		info.Variable = src.Variable
		info.Value = value
	}
	return info
}

// IsInsideJob checks if a scheduler job id is present in env.
func IsInsideJob(env Env) bool {
	for _, key := range []string{"SLURM_JOB_ID", "PBS_JOBID", "LSB_JOBID", "JOB_ID", "CCP_JOBID"} {
		if _, ok := getEnv(env, key); ok {
			return true
		}
	}
	return false
}
