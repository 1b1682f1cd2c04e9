package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type forkState int

const (
	forkUnknown forkState = iota
	forkNo
	forkYes
)

// Fork records what we know about a repository's fork ancestry. It is a
// three-way union: unknown, known not to be a fork, or known to be a fork
// with optional parent and root ancestor IDs. The three cases must never be
// collapsed into a single boolean; "we don't know" and "not a fork" are
// different answers.
type Fork struct {
	state  forkState
	parent *int64
	root   *int64
}

// UnknownFork returns the zero Fork: ancestry has not been determined.
func UnknownFork() Fork { return Fork{} }

// NotAFork returns a Fork recording that the repository is known not to be
// a fork.
func NotAFork() Fork { return Fork{state: forkNo} }

// NewFork returns a Fork with the given immediate parent and ultimate root
// ancestor. Either may be nil independently: a record can know its parent
// without knowing the root of a multi-level fork chain, or vice versa. For a
// single-level fork, parent and root are the same repository.
func NewFork(parent, root *int64) Fork {
	return Fork{state: forkYes, parent: parent, root: root}
}

// IsUnknown reports that fork ancestry has not been determined.
func (f Fork) IsUnknown() bool { return f.state == forkUnknown }

// IsNotFork reports that the repository is known not to be a fork.
func (f Fork) IsNotFork() bool { return f.state == forkNo }

// IsFork reports that the repository is known to be a fork.
func (f Fork) IsFork() bool { return f.state == forkYes }

// Parent returns the immediate parent repository ID, if known.
func (f Fork) Parent() (int64, bool) {
	if f.state != forkYes || f.parent == nil {
		return 0, false
	}
	return *f.parent, true
}

// Root returns the ultimate root ancestor repository ID, if known.
func (f Fork) Root() (int64, bool) {
	if f.state != forkYes || f.root == nil {
		return 0, false
	}
	return *f.root, true
}

// forkDoc is the document shape of a known fork.
type forkDoc struct {
	Parent *int64 `json:"parent"`
	Root   *int64 `json:"root"`
}

// MarshalJSON encodes the fork field in the store document format:
// [] for unknown, false for not-a-fork, {"parent":…,"root":…} for a fork.
func (f Fork) MarshalJSON() ([]byte, error) {
	switch f.state {
	case forkNo:
		return []byte("false"), nil
	case forkYes:
		return json.Marshal(forkDoc{Parent: f.parent, Root: f.root})
	default:
		return jsonEmpty, nil
	}
}

// UnmarshalJSON decodes the store document format.
func (f *Fork) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, jsonEmpty), bytes.Equal(data, jsonNull):
		*f = Fork{}
		return nil
	case bytes.Equal(data, []byte("false")):
		*f = NotAFork()
		return nil
	}

	var doc forkDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding fork field: %w", err)
	}
	*f = NewFork(doc.Parent, doc.Root)
	return nil
}
