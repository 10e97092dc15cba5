// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package juju

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("jujubackupall.juju")

// GetLeader returns the first unit that reports leadership, querying units
// in the order given. The search short-circuits on the first positive
// answer. If no unit claims leadership a NoLeaderError carrying the full
// unit set is returned.
func GetLeader(ctx context.Context, units []Unit) (Unit, error) {
	for _, unit := range units {
		leader, err := unit.IsLeader(ctx)
		if err != nil {
			return nil, errors.Annotatef(err, "querying leadership of unit %q", unit.Name())
		}
		if leader {
			return unit, nil
		}
	}
	names := make([]string, len(units))
	for i, unit := range units {
		names[i] = unit.Name()
	}
	return nil, &NoLeaderError{Units: names}
}

// RunActionChecked runs the named action on the unit, bounded by timeout,
// and fails unless the action reports the completed status. On success the
// action's result payload is returned.
func RunActionChecked(ctx context.Context, unit Unit, action string, params map[string]interface{}, timeout time.Duration) (map[string]interface{}, error) {
	actionCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	result, err := unit.RunAction(actionCtx, action, params)
	if err != nil {
		task := fmt.Sprintf("action %q on unit %q", action, unit.Name())
		return nil, classify(actionCtx, err, task, timeout)
	}
	if result.Status != ActionCompleted {
		return nil, &ActionError{Result: result}
	}
	return result.Results, nil
}

// RunCommandOnUnit executes a shell command on the unit as the given user,
// bounded by timeout.
func RunCommandOnUnit(ctx context.Context, unit Unit, command, user string, timeout time.Duration) error {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	logger.Debugf("running %q on unit %q", command, unit.Name())
	if err := unit.RunCommand(cmdCtx, command, user); err != nil {
		task := fmt.Sprintf("command %q on unit %q", command, unit.Name())
		return classify(cmdCtx, err, task, timeout)
	}
	return nil
}

// CopyFromUnit copies a file from the unit to the local destination,
// bounded by timeout.
func CopyFromUnit(ctx context.Context, unit Unit, source, destination string, timeout time.Duration) error {
	scpCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	logger.Debugf("copying %s:%s to %s", unit.Name(), source, destination)
	if err := unit.ScpFrom(scpCtx, source, destination); err != nil {
		task := fmt.Sprintf("scp of %q from unit %q", source, unit.Name())
		return classify(scpCtx, err, task, timeout)
	}
	return nil
}

// classify turns a deadline expiry into a TimeoutError; any other error
// passes through traced. A timeout means the remote operation may still be
// running and must never be mistaken for "nothing happened".
func classify(ctx context.Context, err error, task string, timeout time.Duration) error {
	if ctx.Err() == context.DeadlineExceeded || errors.Cause(err) == context.DeadlineExceeded {
		return &TimeoutError{Task: task, Timeout: timeout}
	}
	return errors.Trace(err)
}

// ParseCharmName extracts the charm name from a charm URL. Schema prefixes
// ("cs:", "ch:"), namespace or architecture/series segments, and a
// trailing numeric revision are all stripped, so "ch:amd64/focal/etcd-668"
// and "cs:~containers/etcd-634" both yield "etcd". A bare charm name is
// returned unchanged.
func ParseCharmName(charmURL string) string {
	name := charmURL
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "-"); i >= 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	return name
}
