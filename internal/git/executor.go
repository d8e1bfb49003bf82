package git

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/gitpile/gitpile/internal/errors"
)

// CommandExecutor runs external commands. It exists so tests can substitute
// a fake without spawning processes.
type CommandExecutor interface {
	// ExecuteWithOutput runs a command and returns its trimmed stdout.
	ExecuteWithOutput(cmd *exec.Cmd) (string, error)
}

// ExecExecutor is the default CommandExecutor backed by os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// ExecuteWithOutput implements CommandExecutor. On failure the returned
// error is a *errors.GitError carrying the captured stderr and wrapping
// errors.ErrGitOperationFailed.
func (e *ExecExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		operation := ""
		var args []string
		// Skip the executable and the leading "-C <dir>" pair when naming
		// the operation in the error.
		rest := cmd.Args
		if len(rest) > 0 {
			rest = rest[1:]
		}
		if len(rest) >= 2 && rest[0] == "-C" {
			rest = rest[2:]
		}
		if len(rest) > 0 {
			operation = rest[0]
			args = rest[1:]
		}

		wrapped := errors.Wrap(errors.ErrGitOperationFailed, err.Error())
		return "", errors.NewGitError(operation, args, wrapped, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimRight(stdout.String(), "\n"), nil
}
