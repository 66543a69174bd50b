package chatflow

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrStartProtected  = errors.New("chatflow: cannot delete the start node, every flow needs a start point")
	ErrSuccessorExists = errors.New("chatflow: each node can only have one outgoing connection")
	ErrHandleInUse     = errors.New("chatflow: condition branch already has a connection")
	ErrUnknownHandle   = errors.New("chatflow: condition node has no such branch")
	ErrNoOutputPort    = errors.New("chatflow: end nodes have no outgoing connections")
	ErrInvalidFlow     = errors.New("chatflow: flow is not valid")
	ErrUnknownKind     = errors.New("chatflow: unknown node type")
	ErrInvalidPatch    = errors.New("chatflow: invalid node data")
	ErrFlowNotFound    = errors.New("chatflow: flow not found")
)

// ConnectionError is returned by Editor.Connect when the connection policy
// rejects a candidate edge.
type ConnectionError struct {
	Edge Edge
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s -> %s: %v", e.Edge.Source, e.Edge.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// InvalidFlowError is returned by Export when the flow fails validation.
// Report holds every diagnostic.
type InvalidFlowError struct {
	Report Report
}

func (e *InvalidFlowError) Error() string {
	return fmt.Sprintf("%v: %d issue(s)", ErrInvalidFlow, len(e.Report.Errors))
}

func (e *InvalidFlowError) Unwrap() error { return ErrInvalidFlow }

// Store defines the contract for persisting and retrieving flows.
// Flows are saved whole; SaveFlow replaces any previous version.
//
// Node and edge ids must be unique within a flow. Backends differ when
// they are not: the SQL stores (postgres, sqlite) reject the save with a
// primary key error, while the memory and redis stores keep the flow as
// given.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// SaveFlow persists all nodes and edges of f, replacing what was stored
	// under f.ID. A flow without an ID gets a generated one.
	SaveFlow(ctx context.Context, f *Flow) error

	// GetFlow returns ErrFlowNotFound if nothing is stored under id.
	GetFlow(ctx context.Context, id string) (*Flow, error)

	// DeleteFlow removes a flow. No error if it doesn't exist.
	DeleteFlow(ctx context.Context, id string) error

	// ListFlows returns the ids of all stored flows, sorted.
	ListFlows(ctx context.Context) ([]string, error)
}

// UnlockFunc releases a lock taken with Locker.Lock.
type UnlockFunc func(ctx context.Context) error

// Locker serializes work on one flow across processes.
type Locker interface {
	// Lock blocks until the lock for key is held or ctx is done. The lock
	// expires after ttl if it is never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
