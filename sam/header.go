// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"v.io/x/lib/vlog"

	"github.com/nextbase/hts/htserrors"
)

// bamMagic is the four-byte magic prefix of a BAM header block.
var bamMagic = [4]byte{'B', 'A', 'M', 1}

// Header holds the reference dictionary and free-text header block of
// a BAM/SAM file.
type Header struct {
	text []byte
	refs []*Reference

	once   sync.Once
	byName map[string]*Reference
}

// NewHeader returns a new Header populated with the given text and
// reference dictionary. Each Reference in refs is attached to the new
// Header and its ID set to its index in refs.
func NewHeader(text []byte, refs []*Reference) (*Header, error) {
	h := &Header{text: append([]byte(nil), text...)}
	for i, r := range refs {
		if r == nil {
			return nil, fmt.Errorf("sam: nil reference at index %d", i)
		}
		r.id = int32(i)
		h.refs = append(h.refs, r)
	}
	return h, nil
}

// Refs returns the Header's reference dictionary, in wire order.
func (h *Header) Refs() []*Reference { return h.refs }

// Text returns the raw free-text header block.
func (h *Header) Text() []byte { return h.text }

// SetText replaces the Header's free-text block without touching its
// reference dictionary.
func (h *Header) SetText(text []byte) { h.text = append([]byte(nil), text...) }

func (h *Header) buildIndex() {
	h.byName = make(map[string]*Reference, len(h.refs))
	for _, r := range h.refs {
		if _, dup := h.byName[r.name]; dup {
			vlog.Errorf("sam: duplicate reference name %q in header, keeping first", r.name)
			continue
		}
		h.byName[r.name] = r
	}
}

// Reference returns the Reference with the given name, or nil if none
// is present in the dictionary.
func (h *Header) Reference(name string) *Reference {
	h.once.Do(h.buildIndex)
	return h.byName[name]
}

// TIDFor returns the reference ID for name, or -1 if name is not in
// the dictionary.
func (h *Header) TIDFor(name string) int {
	r := h.Reference(name)
	if r == nil {
		return -1
	}
	return r.ID()
}

// DecodeHeader reads a BAM header block from r: the "BAM\1" magic,
// l_text/text, n_ref, and the per-reference l_name/name/l_ref triples.
// It does not consume any alignment records that follow.
func DecodeHeader(r io.Reader) (*Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("sam: reading magic: %w", err)
	}
	if magic != bamMagic {
		return nil, htserrors.Newf(htserrors.BadMagic, "sam: not a BAM stream: bad magic %v", magic)
	}

	var lText int32
	if err := binary.Read(r, Endian, &lText); err != nil {
		return nil, fmt.Errorf("sam: reading l_text: %w", err)
	}
	if lText < 0 {
		return nil, fmt.Errorf("sam: invalid l_text %d", lText)
	}
	text := make([]byte, lText)
	if _, err := io.ReadFull(r, text); err != nil {
		return nil, fmt.Errorf("sam: reading header text: %w", err)
	}

	var nRef int32
	if err := binary.Read(r, Endian, &nRef); err != nil {
		return nil, fmt.Errorf("sam: reading n_ref: %w", err)
	}
	if nRef < 0 {
		return nil, fmt.Errorf("sam: invalid n_ref %d", nRef)
	}

	refs := make([]*Reference, nRef)
	for i := range refs {
		var lName int32
		if err := binary.Read(r, Endian, &lName); err != nil {
			return nil, fmt.Errorf("sam: reading l_name for ref %d: %w", i, err)
		}
		if lName <= 0 {
			return nil, fmt.Errorf("sam: invalid l_name %d for ref %d", lName, i)
		}
		name := make([]byte, lName)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("sam: reading name for ref %d: %w", i, err)
		}
		if name[lName-1] != 0 {
			return nil, fmt.Errorf("sam: reference name for ref %d not NUL-terminated", i)
		}
		var lRef int32
		if err := binary.Read(r, Endian, &lRef); err != nil {
			return nil, fmt.Errorf("sam: reading l_ref for ref %d: %w", i, err)
		}
		if lRef < 0 {
			return nil, fmt.Errorf("sam: invalid l_ref %d for ref %d", lRef, i)
		}
		refs[i] = &Reference{id: int32(i), name: string(name[:lName-1]), length: lRef}
	}

	return &Header{text: text, refs: refs}, nil
}

// EncodeBinary writes h to w in BAM header block form.
func (h *Header) EncodeBinary(w io.Writer) error {
	if _, err := w.Write(bamMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, Endian, int32(len(h.text))); err != nil {
		return err
	}
	if _, err := w.Write(h.text); err != nil {
		return err
	}
	if err := binary.Write(w, Endian, int32(len(h.refs))); err != nil {
		return err
	}
	for _, r := range h.refs {
		namez := append([]byte(r.name), 0)
		if err := binary.Write(w, Endian, int32(len(namez))); err != nil {
			return err
		}
		if _, err := w.Write(namez); err != nil {
			return err
		}
		if err := binary.Write(w, Endian, r.length); err != nil {
			return err
		}
	}
	return nil
}

// ParseHeaderText scans a textual SAM header block for @SQ lines and
// builds the resulting Header. Duplicate SN values are reported via
// vlog and only the first occurrence is kept. (DecodeHeader, by
// contrast, keeps every entry of a binary dictionary with repeated
// names; only Reference's lookup resolves such a name to the first.)
func ParseHeaderText(text []byte) (*Header, error) {
	var refs []*Reference
	seen := make(map[string]bool)

	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if !bytes.HasPrefix(line, []byte("@SQ\t")) {
			continue
		}
		var name string
		var length = -1
		for _, field := range bytes.Split(line[4:], []byte{'\t'}) {
			switch {
			case bytes.HasPrefix(field, []byte("SN:")):
				name = string(field[3:])
			case bytes.HasPrefix(field, []byte("LN:")):
				n, err := strconv.Atoi(string(field[3:]))
				if err != nil {
					return nil, fmt.Errorf("sam: malformed @SQ LN field: %w", err)
				}
				length = n
			}
		}
		if name == "" || length < 0 {
			return nil, fmt.Errorf("sam: @SQ line missing SN or LN: %q", line)
		}
		if seen[name] {
			vlog.Errorf("sam: duplicate @SQ SN:%s in header text, keeping first", name)
			continue
		}
		seen[name] = true
		refs = append(refs, &Reference{id: int32(len(refs)), name: name, length: int32(length)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sam: scanning header text: %w", err)
	}

	return &Header{text: append([]byte(nil), text...), refs: refs}, nil
}

// AddComment appends a @CO comment line to the Header's text block.
func (h *Header) AddComment(comment string) {
	if len(comment) != 0 && strings.ContainsAny(comment, "\n\t") {
		comment = strings.Map(func(r rune) rune {
			if r == '\n' || r == '\t' {
				return ' '
			}
			return r
		}, comment)
	}
	line := "@CO\t" + comment + "\n"
	h.text = append(h.text, line...)
}

// AddProgram appends a @PG program-record line built from the given
// fields to the Header's text block. Fields map directly to @PG tags
// (ID, PN, CL, PP, VN); ID is required.
func (h *Header) AddProgram(id, name, commandLine, previousID, version string) error {
	if id == "" {
		return fmt.Errorf("sam: @PG ID must not be empty")
	}
	var b strings.Builder
	b.WriteString("@PG\tID:")
	b.WriteString(id)
	if name != "" {
		b.WriteString("\tPN:")
		b.WriteString(name)
	}
	if previousID != "" {
		b.WriteString("\tPP:")
		b.WriteString(previousID)
	}
	if commandLine != "" {
		b.WriteString("\tCL:")
		b.WriteString(commandLine)
	}
	if version != "" {
		b.WriteString("\tVN:")
		b.WriteString(version)
	}
	b.WriteByte('\n')
	h.text = append(h.text, b.String()...)
	return nil
}
