package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Justype/hpcmachines/internal/machine"
	"github.com/Justype/hpcmachines/internal/utils"
	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// Keys lists the known configuration keys
var Keys = []string{
	"ssh_bin",
	"scontrol_bin",
	"probe_timeout",
	"skip_probe",
	"output_format",
}

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (HPCMACHINES_*)
// 3. User config file (~/.config/hpcmachines/config.yaml)
// 4. System config file (/etc/hpcmachines/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "hpcmachines"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".hpcmachines"))
	}
	viper.AddConfigPath("/etc/hpcmachines")

	viper.SetEnvPrefix("HPCMACHINES")
	viper.AutomaticEnv()

	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("ssh_bin", "ssh")
	viper.SetDefault("scontrol_bin", "scontrol")
	viper.SetDefault("probe_timeout", "10s")
	viper.SetDefault("skip_probe", false)
	viper.SetDefault("output_format", string(machine.FormatText))
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".hpcmachines", ConfigFilename+"."+ConfigType), nil
	}
	return filepath.Join(userConfigDir, "hpcmachines", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to the user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}
	if filepath.IsAbs(binPath) {
		info, err := os.Stat(binPath)
		if err != nil {
			return false
		}
		return info.Mode()&0111 != 0
	}
	_, err := exec.LookPath(binPath)
	return err == nil
}

// DetectBinaries resolves ssh and scontrol from PATH.
// Returns empty strings for binaries that are not found.
func DetectBinaries() (sshBin, scontrolBin string) {
	if path, err := exec.LookPath("ssh"); err == nil {
		sshBin = path
	}
	if path, err := exec.LookPath("scontrol"); err == nil {
		scontrolBin = path
	}
	return sshBin, scontrolBin
}

// ForceDetectAndSave re-detects binaries from the current PATH and writes
// the config file. Returns true if a value changed.
func ForceDetectAndSave() (bool, error) {
	updated := false

	sshBin, scontrolBin := DetectBinaries()
	if sshBin != "" && viper.GetString("ssh_bin") != sshBin {
		viper.Set("ssh_bin", sshBin)
		updated = true
	}
	if scontrolBin != "" && viper.GetString("scontrol_bin") != scontrolBin {
		viper.Set("scontrol_bin", scontrolBin)
		updated = true
	}

	// Always save (even if nothing changed, to create the file)
	if err := SaveConfig(); err != nil {
		return false, err
	}
	return updated, nil
}

// LoadFromViper loads config from Viper into the Global struct.
// Invalid values are reported and leave the default in place.
func LoadFromViper() {
	if bin := viper.GetString("ssh_bin"); bin != "" {
		Global.SSHBin = bin
	}
	if bin := viper.GetString("scontrol_bin"); bin != "" {
		Global.ScontrolBin = bin
	}

	if raw := viper.GetString("probe_timeout"); raw != "" {
		if dur, err := utils.ParseDuration(raw); err == nil && dur > 0 {
			Global.ProbeTimeout = dur
		} else {
			utils.PrintWarning("Ignoring invalid probe_timeout %q", raw)
		}
	}

	Global.SkipProbe = viper.GetBool("skip_probe")

	if raw := viper.GetString("output_format"); raw != "" {
		if f, err := machine.ParseFormat(raw); err == nil {
			Global.OutputFormat = string(f)
		} else {
			utils.PrintWarning("Ignoring output_format: %v", err)
		}
	}
}
