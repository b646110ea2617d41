package release

import (
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// CommandExecutor abstracts process execution so the build step can be
// tested without npm installed.
type CommandExecutor interface {
	Run(dir, name string, args ...string) (string, error)
}

// ExecExecutor runs commands with os/exec. Stdout and stderr are combined:
// on success the output is available for logging, on failure it rides along
// in the error.
type ExecExecutor struct{}

func (ExecExecutor) Run(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), errors.Wrapf(err, "release: %s %s failed: %s",
			name, strings.Join(args, " "), strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
