// Shared command invocation for adapters.
//
// Information Hiding:
// - Process setup and teardown hidden from adapters
// - Exit-code interpretation left to the calling adapter, since several
//   npm-family tools use a non-zero exit to mean "findings present"

package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// commandResult carries everything an adapter needs to interpret a tool run.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runCommand executes a CLI tool in the given working directory and captures
// its output. A non-zero exit is not an error here: the exit code is reported
// in the result and the adapter decides what it means. An error is returned
// only when the process could not run at all or the context was cancelled.
func runCommand(ctx context.Context, dir string, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// Context expiry wins over whatever exit state the kill produced.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return commandResult{}, ctxErr
	}

	result := commandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return commandResult{}, fmt.Errorf("failed to execute %s: %w", name, err)
	}

	return result, nil
}

// firstLine trims tool stderr down to something usable in an error message.
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
