// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package juju defines the capability surface the backup engine needs from
// a Juju deployment: enumerating controllers, models, applications and
// units, running actions and commands on units, copying files off units,
// and creating controller state backups. The engine only ever talks to
// these interfaces; the jujucli package provides the production
// implementation.
package juju

import (
	"context"
)

// ActionCompleted is the terminal status of a successful action.
const ActionCompleted = "completed"

// ActionResult captures the terminal state of a run action.
type ActionResult struct {
	// Action is the action name as invoked.
	Action string
	// Receiver is the unit the action ran on.
	Receiver string
	// Status is the terminal status, ActionCompleted on success.
	Status string
	// Message holds the failure message, if any.
	Message string
	// Parameters are the parameters the action was invoked with.
	Parameters map[string]interface{}
	// Results is the structured result payload.
	Results map[string]interface{}
}

// BackupMetadata describes a controller backup produced by the platform.
type BackupMetadata struct {
	// Filename is the name the platform gave the backup archive.
	Filename string
	// ControllerMachineID identifies the machine the backup was taken on.
	ControllerMachineID string
}

// Connector resolves controller names and establishes controller
// connections.
type Connector interface {
	// AllControllerNames returns the names of all controllers known to the
	// local client.
	AllControllerNames() ([]string, error)

	// Connect connects to the named controller. An empty name selects the
	// current controller. The returned Controller must be closed.
	Connect(ctx context.Context, controllerName string) (Controller, error)
}

// Controller is a connected Juju controller.
type Controller interface {
	// Name returns the controller name.
	Name() string

	// ListModelNames returns the names of the models hosted by the
	// controller.
	ListModelNames(ctx context.Context) ([]string, error)

	// Model connects to the named model. The returned Model must be closed.
	Model(ctx context.Context, name string) (Model, error)

	// CreateBackup creates a backup of the controller's own state and
	// downloads the archive, returning the local path it was downloaded to
	// together with the platform's metadata.
	CreateBackup(ctx context.Context) (string, BackupMetadata, error)

	// Close releases the controller connection.
	Close() error
}

// Model is a connected model within a controller.
type Model interface {
	// Name returns the model name.
	Name() string

	// Applications returns the applications deployed in the model.
	Applications(ctx context.Context) ([]Application, error)

	// Close releases the model connection.
	Close() error
}

// Application is a deployed application within a model.
type Application interface {
	// Name returns the application name.
	Name() string

	// CharmURL returns the URL of the charm the application runs.
	CharmURL() string

	// Units returns the application's units in the order the platform
	// reports them.
	Units(ctx context.Context) ([]Unit, error)
}

// Unit is one running unit of an application.
type Unit interface {
	// Name returns the unit name, e.g. "mysql/0".
	Name() string

	// IsLeader reports whether the unit currently holds application
	// leadership.
	IsLeader(ctx context.Context) (bool, error)

	// RunAction invokes the named action on the unit and blocks until it
	// reaches a terminal state.
	RunAction(ctx context.Context, action string, params map[string]interface{}) (ActionResult, error)

	// RunCommand executes a shell command on the unit as the given user and
	// fails if the command exits non-zero.
	RunCommand(ctx context.Context, command, user string) error

	// ScpFrom copies a file from the unit to the local destination.
	ScpFrom(ctx context.Context, source, destination string) error
}
