package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Justype/hpcmachines/internal/utils"
)

// DefaultProbeTimeout bounds every probe subprocess unless overridden.
const DefaultProbeTimeout = 10 * time.Second

// Prober answers the two questions the SLURM loader cannot answer from the
// environment alone.
type Prober interface {
	// Reachable returns nil if host accepts a non-interactive ssh command
	Reachable(ctx context.Context, host string) error

	// NodeAddresses returns the addresses SLURM knows for nodelist, in order
	NodeAddresses(ctx context.Context, nodelist string) ([]string, error)
}

// CommandProber implements Prober with ssh and scontrol subprocesses
type CommandProber struct {
	SSHBin      string        // ssh binary (default "ssh")
	ScontrolBin string        // scontrol binary (default "scontrol")
	Timeout     time.Duration // per command timeout (default DefaultProbeTimeout)
}

// NewCommandProber creates a prober; empty values select the defaults.
func NewCommandProber(sshBin, scontrolBin string, timeout time.Duration) *CommandProber {
	if sshBin == "" {
		sshBin = "ssh"
	}
	if scontrolBin == "" {
		scontrolBin = "scontrol"
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &CommandProber{
		SSHBin:      sshBin,
		ScontrolBin: scontrolBin,
		Timeout:     timeout,
	}
}

func (p *CommandProber) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultProbeTimeout
	}
	return p.Timeout
}

// Reachable runs `ssh <host> /bin/true` and requires exit status 0.
func (p *CommandProber) Reachable(ctx context.Context, host string) error {
	connectTimeout := int(p.timeout().Seconds())
	if connectTimeout < 1 {
		connectTimeout = 1
	}
	_, err := p.run(ctx, "ssh", p.SSHBin,
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", connectTimeout),
		host, "/bin/true")
	return err
}

// NodeAddresses runs `scontrol show node <nodelist>` and returns the
// NodeAddr values it reports.
func (p *CommandProber) NodeAddresses(ctx context.Context, nodelist string) ([]string, error) {
	out, err := p.run(ctx, "scontrol show node", p.ScontrolBin, "show", "node", nodelist)
	if err != nil {
		return nil, err
	}
	return parseNodeAddrs(out), nil
}

// run executes bin with a timeout and returns its stdout.
func (p *CommandProber) run(ctx context.Context, op string, bin string, args ...string) (string, error) {
	fullCmd := fmt.Sprintf("%s %s", bin, strings.Join(args, " "))
	if bin == "" {
		return "", &ProbeError{Op: op, Cmd: fullCmd, Err: ErrProbeUnavailable}
	}

	utils.PrintDebug("Executing: %s", utils.StyleCommand(fullCmd))
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", p.timeout(), ctx.Err())
		}
		return "", &ProbeError{
			Op:     op,
			Cmd:    fullCmd,
			Output: strings.TrimSpace(stdoutBuf.String() + stderrBuf.String()),
			Err:    err,
		}
	}
	return stdoutBuf.String(), nil
}

// TrustingProber assumes every host is reachable; it never runs a command.
type TrustingProber struct{}

// Reachable implements Prober.
func (TrustingProber) Reachable(context.Context, string) error { return nil }

// NodeAddresses implements Prober.
func (TrustingProber) NodeAddresses(_ context.Context, nodelist string) ([]string, error) {
	return ExpandHostlist(nodelist)
}
