// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jujucli

import (
	"context"
	"encoding/json"

	"github.com/juju/errors"

	"github.com/canonical/juju-backup-all/juju"
)

type unit struct {
	model  *model
	name   string
	leader bool
}

// Name is part of the juju.Unit interface.
func (u *unit) Name() string {
	return u.name
}

// IsLeader is part of the juju.Unit interface. The flag comes from the
// status snapshot the unit was listed from.
func (u *unit) IsLeader(ctx context.Context) (bool, error) {
	return u.leader, nil
}

type actionOutput struct {
	ID      string                 `json:"id"`
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Results map[string]interface{} `json:"results"`
}

// RunAction is part of the juju.Unit interface. run-action exits zero
// even for a failed action; the terminal status comes from the JSON
// output and is judged by the caller.
func (u *unit) RunAction(ctx context.Context, action string, params map[string]interface{}) (juju.ActionResult, error) {
	args := []string{"run-action", "-m", u.model.qualified(), u.name, action}
	args = append(args, formatActionParams(params)...)
	args = append(args, "--wait", "--format", "json")
	out, err := u.model.controller.runner.Run(ctx, args...)
	if err != nil {
		return juju.ActionResult{}, errors.Trace(err)
	}

	// The output is keyed by the action receiver tag; with a single
	// receiver there is exactly one entry.
	var parsed map[string]actionOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return juju.ActionResult{}, errors.Annotate(err, "parsing juju run-action output")
	}
	result := juju.ActionResult{
		Action:     action,
		Receiver:   u.name,
		Parameters: params,
	}
	for _, entry := range parsed {
		result.Status = entry.Status
		result.Message = entry.Message
		result.Results = entry.Results
		break
	}
	return result, nil
}

// RunCommand is part of the juju.Unit interface.
func (u *unit) RunCommand(ctx context.Context, command, user string) error {
	target := u.name
	if user != "" && user != "ubuntu" {
		target = user + "@" + u.name
	}
	_, err := u.model.controller.runner.Run(ctx, "ssh", "-m", u.model.qualified(), target, command)
	return errors.Trace(err)
}

// ScpFrom is part of the juju.Unit interface.
func (u *unit) ScpFrom(ctx context.Context, source, destination string) error {
	_, err := u.model.controller.runner.Run(ctx,
		"scp", "-m", u.model.qualified(), u.name+":"+source, destination)
	return errors.Trace(err)
}
