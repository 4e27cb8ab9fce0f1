package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Justype/hpcmachines/internal/config"
	"github.com/Justype/hpcmachines/internal/scheduler"
	"github.com/Justype/hpcmachines/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config directory at a temp dir and clears global state.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	for _, key := range config.Keys {
		t.Setenv("HPCMACHINES_"+strings.ToUpper(key), "")
	}

	origLoader, origEnv := newLoader, schedulerEnv
	t.Cleanup(func() {
		newLoader, schedulerEnv = origLoader, origEnv
		utils.DebugMode, utils.QuietMode = false, false
		viper.Reset()
	})
	return dir
}

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}

func fixedLoader(env scheduler.MapEnv) func() *scheduler.Loader {
	return func() *scheduler.Loader {
		return &scheduler.Loader{
			Env:      env,
			Prober:   scheduler.TrustingProber{},
			Sources:  scheduler.DefaultSources(),
			Hostname: func() (string, error) { return "localbox", nil },
		}
	}
}

func TestMachinesInlineListRestricted(t *testing.T) {
	isolate(t)
	newLoader = fixedLoader(scheduler.MapEnv{})

	out, err := execute(t, "machines", "-m", "A:4,B:2,C:1", "-n", "3", "-f", "list")
	require.NoError(t, err)
	assert.Equal(t, "A:2,B:1\n", out)
}

func TestMachinesDefaultLoader(t *testing.T) {
	isolate(t)

	out, err := execute(t, "machines", "-m", "A:4,B:2", "-n", "3", "-f", "list")
	require.NoError(t, err)
	assert.Equal(t, "A:2,B:1\n", out)

	l := newLoader()
	assert.Equal(t, scheduler.OSEnv{}, l.Env)
	assert.NotNil(t, l.Prober)
}

func TestMachinesFromSlurmEnvironment(t *testing.T) {
	isolate(t)
	newLoader = fixedLoader(scheduler.MapEnv{
		scheduler.EnvSlurmNodelist:      "n[1-2]",
		scheduler.EnvSlurmNtasksPerNode: "2",
	})

	out, err := execute(t, "ls", "--format", "hostfile")
	require.NoError(t, err)
	assert.Equal(t, "n1\nn1\nn2\nn2\n", out)
}

func TestMachinesLocalFallback(t *testing.T) {
	isolate(t)
	newLoader = fixedLoader(scheduler.MapEnv{})

	out, err := execute(t, "machines", "-f", "list")
	require.NoError(t, err)
	assert.Equal(t, "localbox:1\n", out)
}

func TestMachinesFileAsJSON(t *testing.T) {
	dir := isolate(t)
	newLoader = fixedLoader(scheduler.MapEnv{scheduler.EnvLSFHosts: "ignored 1"})

	path := filepath.Join(dir, "nodes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("machines:\n  - name: node1\n    cores: 4\n  - name: node2\n    cores: 2\n"), 0o644))

	out, err := execute(t, "machines", "--machines-file", path, "-f", "json")
	require.NoError(t, err)

	var doc struct {
		NumberOfCores int `json:"number_of_cores"`
		Machines      []struct {
			HostName string `json:"host_name"`
			Cores    int    `json:"cores"`
		} `json:"machines"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 6, doc.NumberOfCores)
	require.Len(t, doc.Machines, 2)
	assert.Equal(t, "node1", doc.Machines[0].HostName)
	assert.Equal(t, 2, doc.Machines[1].Cores)
}

func TestMachinesDefaultFormatFromConfig(t *testing.T) {
	isolate(t)
	newLoader = fixedLoader(scheduler.MapEnv{})
	t.Setenv("HPCMACHINES_OUTPUT_FORMAT", "list")

	out, err := execute(t, "machines", "-m", "a:1,b:1")
	require.NoError(t, err)
	assert.Equal(t, "a:1,b:1\n", out)
}

func TestMachinesProbeFlags(t *testing.T) {
	isolate(t)
	newLoader = fixedLoader(scheduler.MapEnv{})

	_, err := execute(t, "machines", "-m", "a:1", "--no-probe", "--probe-timeout", "00:30")
	require.NoError(t, err)
	assert.True(t, config.Global.SkipProbe)
	assert.Equal(t, "30s", config.Global.ProbeTimeout.String())
	assert.IsType(t, scheduler.TrustingProber{}, config.NewProber())
}

func TestMachinesErrors(t *testing.T) {
	isolate(t)
	newLoader = fixedLoader(scheduler.MapEnv{})

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"machines", "-m", "a:1", "-f", "xml"}},
		{"bad probe timeout", []string{"machines", "-m", "a:1", "--probe-timeout", "soon"}},
		{"negative ncores", []string{"machines", "-m", "a:1", "-n", "-2"}},
		{"missing machines file", []string{"machines", "--machines-file", "/nonexistent/nodes.yaml"}},
		{"malformed list", []string{"machines", "-m", "a:x,b:1"}},
		{"positional argument", []string{"machines", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSchedulerCommand(t *testing.T) {
	isolate(t)

	schedulerEnv = scheduler.MapEnv{
		scheduler.EnvSlurmNodelist: "n[1-4]",
		"SLURM_JOB_ID":             "99",
	}
	out, err := execute(t, "scheduler")
	require.NoError(t, err)
	assert.Contains(t, out, "SLURM")
	assert.Contains(t, out, scheduler.EnvSlurmNodelist)
	assert.Contains(t, out, "n[1-4]")
	assert.Contains(t, out, "inside job")

	schedulerEnv = scheduler.MapEnv{}
	out, err = execute(t, "sched")
	require.NoError(t, err)
	assert.Contains(t, out, "local host")
}

func TestConfigSetGetPath(t *testing.T) {
	dir := isolate(t)
	wantPath := filepath.Join(dir, ".config", "hpcmachines", "config.yaml")

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, wantPath+"\n", out)

	_, err = execute(t, "config", "set", "probe_timeout", "30s")
	require.NoError(t, err)
	assert.FileExists(t, wantPath)

	out, err = execute(t, "config", "get", "probe_timeout")
	require.NoError(t, err)
	assert.Equal(t, "30s\n", out)

	_, err = execute(t, "config", "set", "probe_timeout", "later")
	assert.Error(t, err)

	_, err = execute(t, "config", "get", "no_such_key")
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	t.Setenv("HPCMACHINES_SKIP_PROBE", "true")

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "skip_probe:     true")
	assert.Contains(t, out, "HPCMACHINES_SKIP_PROBE=true")
}

func TestValidateConfigValue(t *testing.T) {
	valid := [][2]string{
		{"ssh_bin", "/usr/bin/ssh"},
		{"scontrol_bin", "scontrol"},
		{"probe_timeout", "1m"},
		{"probe_timeout", "00:45"},
		{"skip_probe", "true"},
		{"output_format", "YAML"},
	}
	for _, kv := range valid {
		assert.NoError(t, validateConfigValue(kv[0], kv[1]), "%s=%s", kv[0], kv[1])
	}

	invalid := [][2]string{
		{"ssh_bin", ""},
		{"probe_timeout", "0"},
		{"skip_probe", "yes"},
		{"output_format", "xml"},
		{"base_dir", "/tmp"},
	}
	for _, kv := range invalid {
		assert.Error(t, validateConfigValue(kv[0], kv[1]), "%s=%s", kv[0], kv[1])
	}
}

func TestGetConfigEnvVars(t *testing.T) {
	vars := getConfigEnvVars()
	require.Len(t, vars, len(config.Keys))
	assert.True(t, slices.IsSorted(vars))
	assert.Contains(t, vars, "HPCMACHINES_PROBE_TIMEOUT")
}

func TestConfigValueCompletion(t *testing.T) {
	assert.Equal(t, []string{"text", "list", "hostfile", "json", "yaml"}, configValueCompletion("output_format"))
	assert.Equal(t, []string{"true", "false"}, configValueCompletion("skip_probe"))
	assert.Nil(t, configValueCompletion("ssh_bin"))
}

func TestCompletion(t *testing.T) {
	isolate(t)

	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "hpcmachines")

	_, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}
