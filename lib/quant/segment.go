//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package quant

import (
	"github.com/biogo/hts/sam"
)

// Segments iterates over the reference-aligned sub-intervals of one
// alignment: match, equal and diff operations emit half-open intervals,
// deletions and reference skips advance the position without emitting, and
// insertions, clips and padding are dropped entirely. The intervals are
// disjoint and ordered by position.
type Segments struct {
	cigar sam.Cigar
	i     int
	pos   int
}

// NewSegments returns an iterator over the reference segments of an
// alignment starting at the 0-based leftmost position pos.
func NewSegments(pos int, cigar sam.Cigar) *Segments {
	return &Segments{cigar: cigar, pos: pos}
}

// Next returns the next half-open reference interval, or ok=false when the
// CIGAR is exhausted.
func (s *Segments) Next() (start, end int, ok bool) {
	for s.i < len(s.cigar) {
		co := s.cigar[s.i]
		s.i++
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			// A zero-length op emits its empty interval: under strict
			// counting an empty segment has no candidate exons and forces
			// NoHit for the whole alignment.
			start, end = s.pos, s.pos+co.Len()
			s.pos = end
			return start, end, true
		case sam.CigarDeletion, sam.CigarSkipped:
			s.pos += co.Len()
		}
		// Insertions, soft/hard clips and padding consume no reference.
	}
	return 0, 0, false
}
