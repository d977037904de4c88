// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import "fmt"

// Reference is a reference sequence held by a Header's dictionary.
// A Header owns its References exclusively; they must not be shared
// between headers.
type Reference struct {
	id     int32
	name   string
	length int32
}

// NewReference returns a Reference with the given name and length,
// not yet attached to any Header.
func NewReference(name string, length int) (*Reference, error) {
	if name == "" {
		return nil, fmt.Errorf("sam: reference name must not be empty")
	}
	if length < 0 || length >= 1<<31 {
		return nil, fmt.Errorf("sam: reference length out of range: %d", length)
	}
	return &Reference{id: -1, name: name, length: int32(length)}, nil
}

// ID returns the id of the Reference in its owning Header's
// dictionary, or -1 if the Reference is not yet attached to a Header.
func (r *Reference) ID() int {
	if r == nil {
		return -1
	}
	return int(r.id)
}

// Name returns the name of the Reference, or "*" for a nil Reference.
func (r *Reference) Name() string {
	if r == nil {
		return "*"
	}
	return r.name
}

// Len returns the length of the Reference.
func (r *Reference) Len() int {
	if r == nil {
		return 0
	}
	return int(r.length)
}

func (r *Reference) String() string {
	return fmt.Sprintf("%s:%d", r.Name(), r.Len())
}
