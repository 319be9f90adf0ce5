package netstat

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/vigilops/costwatch/internal/pkg/errors"
	"github.com/vigilops/costwatch/internal/pkg/logger"
)

// InstancePlaceholder is substituted with the target instance name in
// the configured command arguments.
const InstancePlaceholder = "{instance}"

// ExecRunner shells out to a configured remote execution command
// (typically gcloud compute ssh) with a bounded timeout per instance.
type ExecRunner struct {
	command string
	args    []string
	timeout time.Duration
	logger  *logger.Logger
}

// NewExecRunner creates a runner for the given command and argument
// template. A non-positive timeout defaults to 30 seconds.
func NewExecRunner(command string, args []string, timeout time.Duration, log *logger.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExecRunner{
		command: command,
		args:    args,
		timeout: timeout,
		logger:  log,
	}
}

// Run executes the remote command against one instance and returns its
// stdout. A failed or timed-out execution reports Unreachable.
func (r *ExecRunner) Run(ctx context.Context, instance string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := make([]string, len(r.args))
	for i, a := range r.args {
		args[i] = strings.ReplaceAll(a, InstancePlaceholder, instance)
	}

	r.logger.WithFields(map[string]interface{}{
		"instance": instance,
		"command":  r.command,
	}).Debug("Sampling network counters")

	out, err := exec.CommandContext(ctx, r.command, args...).Output()
	if err != nil {
		return "", errors.Unreachable("instance "+instance, err)
	}
	return string(out), nil
}
