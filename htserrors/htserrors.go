// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package htserrors defines the error-kind taxonomy shared by the
// sam, bam, bai and bgzf codecs, so callers can distinguish failure
// categories with errors.Is/errors.As instead of matching strings.
package htserrors

import "fmt"

// Kind classifies a codec failure.
type Kind int

// Error kinds, matching the taxonomy of the binary and textual
// codecs: a clean end of stream, a truncated or malformed block, a
// bad header/block magic, an unparseable CIGAR, a malformed or
// incomplete auxiliary TLV, a CIGAR/sequence length mismatch, a
// missing required field, and an underlying I/O failure.
const (
	Unknown Kind = iota
	EndOfStream
	Truncated
	BadMagic
	BadCigar
	BadAuxType
	AuxIncomplete
	CigarSeqLen
	MalformedField
	IoError
)

func (k Kind) String() string {
	switch k {
	case EndOfStream:
		return "end of stream"
	case Truncated:
		return "truncated"
	case BadMagic:
		return "bad magic"
	case BadCigar:
		return "bad cigar"
	case BadAuxType:
		return "bad aux type"
	case AuxIncomplete:
		return "incomplete aux field"
	case CigarSeqLen:
		return "cigar/sequence length mismatch"
	case MalformedField:
		return "malformed field"
	case IoError:
		return "i/o error"
	default:
		return "unknown"
	}
}

// Error is a codec error tagged with a Kind, so a caller can recover
// the failure category with errors.As even after it has been wrapped
// by fmt.Errorf("...: %w", err).
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the wrapped error, if any, for use with errors.Is
// and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, htserrors.New(htserrors.BadMagic, "")) works as a
// kind check regardless of Msg/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an *Error of the given kind with message msg.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf returns an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind with message msg, wrapping
// the underlying error err.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
