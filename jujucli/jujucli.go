// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package jujucli implements the juju capability interfaces by shelling
// out to the locally installed juju CLI and parsing its JSON output. The
// CLI carries the authentication and connection handling, which keeps
// this layer stateless: a "connection" is just a remembered controller or
// model name.
package jujucli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("jujubackupall.jujucli")

// Runner executes one juju CLI invocation and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

type execRunner struct{}

// Run is part of the Runner interface.
func (execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	logger.Tracef("running juju %s", strings.Join(args, " "))
	command := exec.CommandContext(ctx, "juju", args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, context.DeadlineExceeded
		}
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = err.Error()
		}
		return nil, errors.Annotatef(err, "juju %s: %s", strings.Join(args, " "), message)
	}
	return stdout.Bytes(), nil
}

// formatActionParams renders action parameters as key=value CLI
// arguments in a stable order.
func formatActionParams(params map[string]interface{}) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]string, len(keys))
	for i, key := range keys {
		args[i] = fmt.Sprintf("%s=%v", key, params[key])
	}
	return args
}
