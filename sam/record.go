// Copyright ©2012-2013 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/grailbio/base/simd"
	"v.io/x/lib/vlog"

	"github.com/nextbase/hts/htserrors"
	"github.com/nextbase/hts/internal"
)

// Record represents a SAM/BAM alignment record.
type Record struct {
	Name      string
	Ref       *Reference
	Pos       int
	MapQ      byte
	Cigar     Cigar
	Flags     Flags
	MateRef   *Reference
	MatePos   int
	TempLen   int
	Seq       Seq
	Qual      []byte
	AuxFields AuxFields
}

// NewRecord returns a Record, checking for consistency of the
// provided attributes.
func NewRecord(name string, ref, mRef *Reference, p, mPos, tLen int, mapQ byte, co []CigarOp, seq, qual []byte, aux []Aux) (*Record, error) {
	if !(validPos(p) && validPos(mPos) && validTmpltLen(tLen) && validLen(len(seq)) && (qual == nil || validLen(len(qual)))) {
		return nil, errors.New("sam: value out of range")
	}
	if len(name) == 0 || len(name) > 254 {
		return nil, errors.New("sam: name absent or too long")
	}
	if qual != nil && len(qual) != len(seq) {
		return nil, errors.New("sam: sequence/quality length mismatch")
	}
	if ref != nil {
		if ref.id < 0 {
			return nil, errors.New("sam: linking to invalid reference")
		}
	} else if p != -1 {
		return nil, errors.New("sam: specified position != -1 without reference")
	}
	if mRef != nil {
		if mRef.id < 0 {
			return nil, errors.New("sam: linking to invalid mate reference")
		}
	} else if mPos != -1 {
		return nil, errors.New("sam: specified mate position != -1 without mate reference")
	}
	r := GetFromFreePool()
	r.Name = name
	r.Ref = ref
	r.Pos = p
	r.MapQ = mapQ
	r.Cigar = co
	r.Flags = 0
	r.MateRef = mRef
	r.MatePos = mPos
	r.TempLen = tLen
	r.Seq = NewSeq(seq)
	r.Qual = qual
	r.AuxFields = aux
	return r, nil
}

const (
	maxPos         = 1<<31 - 1
	minPos         = -1
	maxTmpltLen    = 1<<31 - 1
	minTmpltLen    = -(1 << 31)
	maxSeqAndQualLen = 1<<31 - 1
)

func validPos(p int) bool { return minPos <= p && p <= maxPos }
func validTmpltLen(l int) bool {
	return minTmpltLen <= l && l <= maxTmpltLen
}
func validLen(l int) bool { return 0 <= l && l <= maxSeqAndQualLen }

// IsValidRecord returns whether the record satisfies the conditions
// that it has the Unmapped flag set if it is not placed; that the
// MateUnmapped flag is set if it is paired and its mate is unplaced;
// that the CIGAR length matches the sequence and quality string
// lengths if they are non-zero; and that the Paired, ProperPair,
// Unmapped and MateUnmapped flags are consistent.
func IsValidRecord(r *Record) bool {
	if (r.Ref == nil || r.Pos == -1) && r.Flags&Unmapped == 0 {
		return false
	}
	if r.Flags&Paired != 0 && (r.MateRef == nil || r.MatePos == -1) && r.Flags&MateUnmapped == 0 {
		return false
	}
	if r.Flags&(Unmapped|ProperPair) == Unmapped|ProperPair {
		return false
	}
	if r.Flags&(Paired|MateUnmapped|ProperPair) == Paired|MateUnmapped|ProperPair {
		return false
	}
	if len(r.Qual) != 0 && r.Seq.Length != len(r.Qual) {
		return false
	}
	if cigarLen := r.Len(); cigarLen < 0 || (r.Seq.Length != 0 && r.Seq.Length != cigarLen) {
		return false
	}
	return true
}

// Tag returns an Aux tag whose tag ID matches the first two bytes of
// tag and true. If no tag matches, nil and false are returned.
func (r *Record) Tag(tag []byte) (v Aux, ok bool) {
	if len(tag) < 2 {
		panic("sam: tag too short")
	}
	for _, aux := range r.AuxFields {
		if aux.matches(tag) {
			return aux, true
		}
	}
	return nil, false
}

// RefID returns the reference ID for the Record, or -1 if unmapped.
func (r *Record) RefID() int {
	return r.Ref.ID()
}

// Start returns the lower-coordinate end of the alignment.
func (r *Record) Start() int {
	return r.Pos
}

// Bin returns the BAM index bin of the record.
func (r *Record) Bin() int {
	if r.Flags&(Unmapped|MateUnmapped) == Unmapped|MateUnmapped {
		return 4680 // reg2bin(-1, 0)
	}
	end := r.End()

	// If the alignment length is zero (for example, a CIGAR with no
	// reference-consuming operations), increment end and treat the
	// read as length 1 for binning purposes.
	if end == r.Pos {
		end++
	}

	if !internal.IsValidIndexPos(r.Pos) || !internal.IsValidIndexPos(end) {
		return -1
	}
	return internal.BinFor(r.Pos, end)
}

// Len returns the length of the alignment.
func (r *Record) Len() int {
	return r.End() - r.Start()
}

func maxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// End returns the highest reference-consuming coordinate of the
// alignment. The position returned by End is not valid if
// r.Cigar.IsValid(r.Seq.Length) is false.
func (r *Record) End() int {
	if r.Flags&Unmapped != 0 || len(r.Cigar) == 0 {
		return r.Pos + 1
	}
	pos := r.Pos
	end := pos
	for _, co := range r.Cigar {
		pos += co.Len() * co.Type().Consumes().Reference
		end = maxInt(end, pos)
	}
	return end
}

// Strand returns an int8 indicating the strand of the alignment: a
// positive return value indicates the forward orientation, negative
// indicates reverse.
func (r *Record) Strand() int8 {
	if r.Flags&Reverse == Reverse {
		return -1
	}
	return 1
}

// LessByName returns true if the receiver sorts by record name before
// other.
func (r *Record) LessByName(other *Record) bool {
	return r.Name < other.Name
}

// LessByCoordinate returns true if the receiver sorts by coordinate
// before other according to the SAM specification: unmapped records
// ("*" reference) sort last.
func (r *Record) LessByCoordinate(other *Record) bool {
	rRefName := r.Ref.Name()
	oRefName := other.Ref.Name()
	switch {
	case oRefName == "*":
		return rRefName != "*"
	case rRefName == "*":
		return false
	}
	return (rRefName < oRefName) || (rRefName == oRefName && r.Pos < other.Pos)
}

// Equal reports whether r and other describe identical records.
func (r *Record) Equal(other *Record) bool {
	return r.Name == other.Name &&
		r.Ref == other.Ref &&
		r.Pos == other.Pos &&
		r.MapQ == other.MapQ &&
		cigarEqual(r.Cigar, other.Cigar) &&
		r.Flags == other.Flags &&
		r.MateRef == other.MateRef &&
		r.MatePos == other.MatePos &&
		r.TempLen == other.TempLen &&
		r.Seq.Equal(other.Seq) &&
		bytes.Equal(r.Qual, other.Qual) &&
		r.AuxFields.Equal(other.AuxFields)
}

func cigarEqual(a, b Cigar) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String returns a string representation of the Record.
func (r *Record) String() string {
	end := r.End()
	return fmt.Sprintf("%s %v %v %d %s:%d..%d (%d) %d %s:%d %d %s %v %v",
		r.Name,
		r.Flags,
		r.Cigar,
		r.MapQ,
		r.Ref.Name(),
		r.Pos,
		end,
		r.Bin(),
		end-r.Pos,
		r.MateRef.Name(),
		r.MatePos,
		r.TempLen,
		r.Seq.Expand(),
		r.Qual,
		r.AuxFields,
	)
}

// UnmarshalText implements encoding.TextUnmarshaler. It calls
// UnmarshalSAM with a nil Header.
func (r *Record) UnmarshalText(b []byte) error {
	return r.UnmarshalSAM(nil, b)
}

// UnmarshalSAM parses a SAM format alignment line in b, using
// references from h. If h is nil and the line includes non-empty
// reference or mate reference names, fake references with zero
// length and an ID of -1 are created to hold the names.
func (r *Record) UnmarshalSAM(h *Header, b []byte) error {
	f := bytes.Split(b, []byte{'\t'})
	if len(f) < 11 {
		return htserrors.New(htserrors.MalformedField, "sam: missing SAM fields")
	}
	*r = Record{Name: string(f[0])}
	flags, err := strconv.ParseUint(string(f[1]), 0, 16)
	if err != nil {
		return fmt.Errorf("sam: failed to parse flags: %v", err)
	}
	r.Flags = Flags(flags)
	r.Ref = referenceForName(h, string(f[2]))
	if r.RefID() < 0 {
		r.Flags |= Unmapped
	}
	r.Pos, err = strconv.Atoi(string(f[3]))
	r.Pos--
	if err != nil {
		return fmt.Errorf("sam: failed to parse position: %v", err)
	}
	if r.Pos < 0 && r.RefID() >= 0 {
		vlog.Errorf("sam: record %q: non-positive position on reference %q, demoting to unmapped", r.Name, r.Ref.Name())
		r.Flags |= Unmapped
		r.Pos = -1
	}
	mapQ, err := strconv.ParseUint(string(f[4]), 10, 8)
	if err != nil {
		return fmt.Errorf("sam: failed to parse map quality: %v", err)
	}
	r.MapQ = byte(mapQ)
	r.Cigar, err = ParseCigar(f[5])
	if err != nil {
		return fmt.Errorf("sam: failed to parse cigar string: %v", err)
	}
	if len(r.Cigar) == 0 && r.Flags&Unmapped == 0 {
		vlog.Errorf("sam: record %q: missing CIGAR on a record not marked unmapped, setting UNMAPPED", r.Name)
		r.Flags |= Unmapped
	}
	if bytes.Equal(f[2], f[6]) || bytes.Equal(f[6], []byte{'='}) {
		r.MateRef = r.Ref
	} else {
		r.MateRef = referenceForName(h, string(f[6]))
	}
	r.MatePos, err = strconv.Atoi(string(f[7]))
	r.MatePos--
	if err != nil {
		return fmt.Errorf("sam: failed to parse mate position: %v", err)
	}
	if r.MatePos < 0 && r.MateRef.ID() >= 0 {
		vlog.Errorf("sam: record %q: non-positive mate position on reference %q, demoting mate to unmapped", r.Name, r.MateRef.Name())
		r.Flags |= MateUnmapped
		r.MatePos = -1
	}
	r.TempLen, err = strconv.Atoi(string(f[8]))
	if err != nil {
		return fmt.Errorf("sam: failed to parse template length: %v", err)
	}
	if !bytes.Equal(f[9], []byte{'*'}) {
		r.Seq = NewSeq(f[9])
		if len(r.Cigar) != 0 && !r.Cigar.IsValid(r.Seq.Length) {
			return htserrors.New(htserrors.CigarSeqLen, "sam: sequence/CIGAR length mismatch")
		}
	}
	if !bytes.Equal(f[10], []byte{'*'}) {
		r.Qual = append(r.Qual, f[10]...)
		simd.AddConst8Inplace(r.Qual, 256-33)
	} else if r.Seq.Length != 0 {
		r.Qual = make([]byte, r.Seq.Length)
		simd.Memset8(r.Qual, 0xff)
	}
	if len(r.Qual) != 0 && len(r.Qual) != r.Seq.Length {
		return errors.New("sam: sequence/quality length mismatch")
	}
	if len(f) > 11 {
		r.AuxFields = make([]Aux, len(f)-11)
		for i, field := range f[11:] {
			a, err := ParseAux(field)
			if err != nil {
				return err
			}
			r.AuxFields[i] = a
		}
	}
	return nil
}

// referenceForName resolves name against h's reference dictionary.
// "*" resolves to nil. If h is nil, a fake reference with id -1 is
// returned to hold the name for display. An unresolvable name against
// a non-nil header is a survivable anomaly: it is warned and resolved
// to nil (tid=-1), not a fatal error.
func referenceForName(h *Header, name string) *Reference {
	if name == "*" {
		return nil
	}
	if h == nil {
		return &Reference{id: -1, name: name}
	}
	if r := h.Reference(name); r != nil {
		return r
	}
	vlog.Errorf("sam: no reference with name %q, treating as unmapped", name)
	return nil
}

// MarshalText implements encoding.TextMarshaler. It calls MarshalSAM
// with FlagDecimal.
func (r *Record) MarshalText() ([]byte, error) {
	return r.MarshalSAM(FlagDecimal)
}

// Flag format constants for MarshalSAM.
const (
	FlagDecimal = iota
	FlagHex
	FlagString
)

// MarshalSAM formats a Record as a SAM alignment line using the
// specified flag rendering. Acceptable formats are FlagDecimal,
// FlagHex and FlagString.
func (r *Record) MarshalSAM(flagFormat int) ([]byte, error) {
	if flagFormat < FlagDecimal || flagFormat > FlagString {
		return nil, errors.New("sam: flag format option out of range")
	}
	if r.Qual != nil && len(r.Qual) != r.Seq.Length {
		return nil, errors.New("sam: sequence/quality length mismatch")
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\t%v\t%s\t%d\t%d\t%s\t%s\t%d\t%d\t%s\t%s",
		r.Name,
		formatFlags(r.Flags, flagFormat),
		r.Ref.Name(),
		r.Pos+1,
		r.MapQ,
		r.Cigar,
		formatMate(r.Ref, r.MateRef),
		r.MatePos+1,
		r.TempLen,
		formatSeq(r.Seq),
		formatQual(r.Qual),
	)
	for _, a := range r.AuxFields {
		fmt.Fprintf(&buf, "\t%v", a)
	}
	return buf.Bytes(), nil
}

func formatFlags(f Flags, format int) interface{} {
	switch format {
	case FlagDecimal:
		return uint16(f)
	case FlagHex:
		return fmt.Sprintf("0x%x", uint16(f))
	case FlagString:
		return f.String()
	default:
		panic("sam: invalid flag format")
	}
}

func formatMate(ref, mate *Reference) string {
	if mate != nil && ref == mate {
		return "="
	}
	return mate.Name()
}

func formatSeq(s Seq) []byte {
	if s.Length == 0 {
		return []byte{'*'}
	}
	return s.Expand()
}

func formatQual(q []byte) []byte {
	for _, v := range q {
		if v != 0xff {
			a := make([]byte, len(q))
			simd.AddConst8(a, q, 33)
			return a
		}
	}
	return []byte{'*'}
}
