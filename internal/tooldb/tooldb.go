// Package tooldb manages the cutting tool library: typed tool records with
// per-operation capabilities, a JSON-file store, and immutable snapshots
// for pipeline runs.
package tooldb

import (
	"fmt"

	"github.com/chickenmcniggels/intuicam/internal/toolpath"
	"github.com/google/uuid"
)

// Kind classifies a tool by its insert geometry.
type Kind string

const (
	KindTurning   Kind = "turning"
	KindFacing    Kind = "facing"
	KindBoring    Kind = "boring"
	KindDrill     Kind = "drill"
	KindGrooving  Kind = "grooving"
	KindThreading Kind = "threading"
	KindParting   Kind = "parting"
)

// Tool is one tool record. The pipeline consumes tool records read-only.
type Tool struct {
	ID           string                   `json:"id"`
	Label        string                   `json:"label"`
	Kind         Kind                     `json:"kind"`
	Diameter     float64                  `json:"diameter"`      // mm
	Length       float64                  `json:"length"`        // mm
	Width        float64                  `json:"width"`         // mm, insert width
	CornerRadius float64                  `json:"corner_radius"` // mm
	Capabilities []toolpath.OperationKind `json:"capabilities"`
}

// NewTool creates a tool record with a generated ID.
func NewTool(label string, kind Kind, diameter, length float64) Tool {
	return Tool{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Kind:     kind,
		Diameter: diameter,
		Length:   length,
	}
}

// Ref returns the geometry subset the planners consume.
func (t Tool) Ref() toolpath.ToolRef {
	return toolpath.ToolRef{
		ID:           t.ID,
		Label:        t.Label,
		Diameter:     t.Diameter,
		Width:        t.Width,
		CornerRadius: t.CornerRadius,
	}
}

// CanPerform reports whether the tool is rated for the given operation.
func (t Tool) CanPerform(kind toolpath.OperationKind) bool {
	for _, c := range t.Capabilities {
		if c == kind {
			return true
		}
	}
	return false
}

// Database is an in-memory tool library.
type Database struct {
	Tools []Tool `json:"tools"`
}

// NewDatabase returns an empty library.
func NewDatabase() *Database {
	return &Database{}
}

// Add appends a tool to the library.
func (db *Database) Add(t Tool) {
	db.Tools = append(db.Tools, t)
}

// Remove deletes the tool with the given ID.
func (db *Database) Remove(id string) bool {
	for i, t := range db.Tools {
		if t.ID == id {
			db.Tools = append(db.Tools[:i], db.Tools[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the tool with the given ID.
func (db *Database) Get(id string) (Tool, error) {
	for _, t := range db.Tools {
		if t.ID == id {
			return t, nil
		}
	}
	return Tool{}, fmt.Errorf("tool %q not found", id)
}

// ByCapability returns all tools rated for the given operation.
func (db *Database) ByCapability(kind toolpath.OperationKind) []Tool {
	var out []Tool
	for _, t := range db.Tools {
		if t.CanPerform(kind) {
			out = append(out, t)
		}
	}
	return out
}

// FirstFor returns the first tool rated for the operation, for callers
// that do not care about tool choice.
func (db *Database) FirstFor(kind toolpath.OperationKind) (Tool, bool) {
	for _, t := range db.Tools {
		if t.CanPerform(kind) {
			return t, true
		}
	}
	return Tool{}, false
}

// Snapshot returns a copy of the tool list. Pipeline runs snapshot the
// library at start so concurrent edits cannot affect a run in flight.
func (db *Database) Snapshot() []Tool {
	out := make([]Tool, len(db.Tools))
	copy(out, db.Tools)
	for i := range out {
		caps := make([]toolpath.OperationKind, len(out[i].Capabilities))
		copy(caps, out[i].Capabilities)
		out[i].Capabilities = caps
	}
	return out
}
