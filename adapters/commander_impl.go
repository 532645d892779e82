package adapters

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	f "github.com/Shopmatic/apartment/core"
)

type execCommander struct{}

// NewCommander returns the real command-execution port. Extra env entries are
// appended to the child environment only, so credentials handed to pg_dump
// never outlive the call, even when it fails.
func NewCommander() f.Commander {
	return execCommander{}
}

func (execCommander) Run(ctx context.Context, env map[string]string, stdin string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	environ := os.Environ()
	for key, value := range env {
		environ = append(environ, key+"="+value)
	}
	cmd.Env = environ
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %v: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
