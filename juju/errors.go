// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package juju

import (
	"fmt"
	"strings"
	"time"

	"github.com/juju/errors"
)

// ActionError reports an action that reached a terminal status other than
// completed. The full result is retained for postmortem.
type ActionError struct {
	Result ActionResult
}

// Error is part of the error interface.
func (e *ActionError) Error() string {
	return fmt.Sprintf(
		"action %q on unit %q with parameters %v failed with status %q and message %q, results: %v",
		e.Result.Action, e.Result.Receiver, e.Result.Parameters,
		e.Result.Status, e.Result.Message, e.Result.Results,
	)
}

// IsActionError reports whether err was caused by a failed action.
func IsActionError(err error) bool {
	_, ok := errors.Cause(err).(*ActionError)
	return ok
}

// TimeoutError reports a remote task that was abandoned locally after its
// deadline passed. The remote operation may still be running.
type TimeoutError struct {
	Task    string
	Timeout time.Duration
}

// Error is part of the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %q timed out (timeout=%s)", e.Task, e.Timeout)
}

// IsTimeoutError reports whether err was caused by a remote task timeout.
func IsTimeoutError(err error) bool {
	_, ok := errors.Cause(err).(*TimeoutError)
	return ok
}

// NoLeaderError reports that no unit of an application claims leadership.
// Running a backup against a non-leader is unsafe for replicated
// datastores, so this is a hard failure for the target.
type NoLeaderError struct {
	Units []string
}

// Error is part of the error interface.
func (e *NoLeaderError) Error() string {
	return fmt.Sprintf("no leader could be found for units [%s]", strings.Join(e.Units, ", "))
}

// IsNoLeaderError reports whether err was caused by failed leader
// resolution.
func IsNoLeaderError(err error) bool {
	_, ok := errors.Cause(err).(*NoLeaderError)
	return ok
}
