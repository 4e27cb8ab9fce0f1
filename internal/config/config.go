package config

import (
	"time"

	"github.com/Justype/hpcmachines/internal/machine"
	"github.com/Justype/hpcmachines/internal/scheduler"
)

const VERSION = "0.3.0"

// Config holds global application settings
type Config struct {
	Debug        bool
	SSHBin       string        // ssh used for the SLURM reachability probe
	ScontrolBin  string        // scontrol used to resolve SLURM node addresses
	ProbeTimeout time.Duration // per probe command timeout
	SkipProbe    bool          // trust SLURM host names without probing
	OutputFormat string        // default output format for the machines command
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults resets Global to built-in defaults.
func LoadDefaults() {
	Global = Config{
		Debug:        false,
		SSHBin:       "ssh",
		ScontrolBin:  "scontrol",
		ProbeTimeout: scheduler.DefaultProbeTimeout,
		SkipProbe:    false,
		OutputFormat: string(machine.FormatText),
	}
}

// NewProber builds the SLURM prober described by Global.
func NewProber() scheduler.Prober {
	if Global.SkipProbe {
		return scheduler.TrustingProber{}
	}
	return scheduler.NewCommandProber(Global.SSHBin, Global.ScontrolBin, Global.ProbeTimeout)
}
