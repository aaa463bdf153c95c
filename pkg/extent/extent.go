// Package extent models the extent lists that let the patch interpreter's
// old and new byte sequences be non-contiguous regions within a backing
// file, including sparse zero-filled regions. See List and File.
package extent

import (
	"strconv"
	"strings"

	"github.com/patchkit-go/bsdiff/pkg/errs"
)

// Sparse is the sentinel offset meaning "virtual region of zeros"; writes to
// a sparse extent are silently discarded.
const Sparse int64 = -1

// Extent is a (offset, length) pair. Offset is either a non-negative file
// offset or Sparse. Length is always non-negative; a zero-length extent is
// permitted and has no effect.
type Extent struct {
	Offset int64
	Length int64
}

// IsSparse reports whether e denotes a virtual zero-filled region.
func (e Extent) IsSparse() bool {
	return e.Offset == Sparse
}

// prefixLen holds, for one extent index i, the total length of extents
// strictly before i (prec) and the total length through and including i
// (total). Invariant: prec[0]=0, total[i]=prec[i]+len[i], prec[i+1]=total[i].
type prefixLen struct {
	prec  int64
	total int64
}

// List is an ordered, immutable sequence of extents plus the prefix-length
// table used for logical-position lookups.
type List struct {
	extents   []Extent
	prefixes  []prefixLen
	logicalLn int64
}

// NewList builds a List from extents, computing the prefix table.
// Returns an error if any extent has a negative length or an offset other
// than Sparse that is negative.
func NewList(extents []Extent) (*List, error) {
	prefixes := make([]prefixLen, len(extents))
	var total int64
	for i, e := range extents {
		if e.Length < 0 {
			return nil, errs.InvalidExtents("extent %d: negative length %d", i, e.Length)
		}
		if e.Offset < 0 && e.Offset != Sparse {
			return nil, errs.InvalidExtents("extent %d: negative offset %d", i, e.Offset)
		}
		prefixes[i].prec = total
		total += e.Length
		prefixes[i].total = total
	}
	return &List{extents: extents, prefixes: prefixes, logicalLn: total}, nil
}

// Len returns the number of extents.
func (l *List) Len() int { return len(l.extents) }

// At returns the extent at index i.
func (l *List) At(i int) Extent { return l.extents[i] }

// LogicalLength returns the sum of all extent lengths: the size of the
// addressable logical space 0..LogicalLength().
func (l *List) LogicalLength() int64 { return l.logicalLn }

// Find returns the unique index i such that prefixes[i].prec <= pos <
// prefixes[i].total, searching in exponentially increasing leaps from
// initIdx before bisecting, for O(log D) complexity where D is the distance
// in extents from initIdx to the result. pos must satisfy
// 0 <= pos < LogicalLength(); initIdx may be anywhere in [0, Len()].
//
// Grounded on original_source/exfile.cc's ex_arr_search.
func (l *List) Find(pos int64, initIdx int) int {
	n := len(l.extents)
	lastIdx := n - 1
	if initIdx == n {
		initIdx = lastIdx
	}

	i, j := initIdx, initIdx
	leap := 1
	for i > 0 && pos < l.prefixes[i].prec {
		j = i - 1
		i -= leap
		if i < 0 {
			i = 0
		}
		leap <<= 1
	}
	for j < lastIdx && pos >= l.prefixes[j].total {
		i = j + 1
		j += leap
		if j > lastIdx {
			j = lastIdx
		}
		leap <<= 1
	}

	for {
		k := (i + j) / 2
		switch {
		case pos < l.prefixes[k].prec:
			j = k - 1
		case pos >= l.prefixes[k].total:
			i = k + 1
		default:
			return k
		}
	}
}

// precOf returns prefixes[i].prec, used by File to recover the position
// within an extent from an absolute logical position.
func (l *List) precOf(i int) int64 { return l.prefixes[i].prec }

// Parse parses the canonical extent-list grammar: one or more
// comma-separated "off:len" pairs, off either -1 or a non-negative decimal
// fitting in int64, len a non-negative decimal fitting in int64. Whitespace
// is never accepted. The empty string yields an empty, valid list.
func Parse(s string) (*List, error) {
	if s == "" {
		return NewList(nil)
	}

	pairs := strings.Split(s, ",")
	extents := make([]Extent, 0, len(pairs))
	for _, pair := range pairs {
		off, ln, found := strings.Cut(pair, ":")
		if !found {
			return nil, errs.InvalidExtents("malformed pair %q: missing ':'", pair)
		}
		offset, err := parseOffset(off)
		if err != nil {
			return nil, err
		}
		length, err := parseLength(ln)
		if err != nil {
			return nil, err
		}
		extents = append(extents, Extent{Offset: offset, Length: length})
	}
	return NewList(extents)
}

func parseOffset(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errs.InvalidExtents("offset %q: %v", s, err)
	}
	if v < 0 && v != Sparse {
		return 0, errs.InvalidExtents("offset %q: negative offsets other than -1 are not allowed", s)
	}
	return v, nil
}

func parseLength(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errs.InvalidExtents("length %q: %v", s, err)
	}
	if v < 0 {
		return 0, errs.InvalidExtents("length %q: negative length not allowed", s)
	}
	return v, nil
}
