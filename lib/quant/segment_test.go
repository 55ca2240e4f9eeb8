//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package quant

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
)

func collectSegments(pos int, cigar sam.Cigar) [][2]int {
	var out [][2]int
	segs := NewSegments(pos, cigar)
	for start, end, ok := segs.Next(); ok; start, end, ok = segs.Next() {
		out = append(out, [2]int{start, end})
	}
	return out
}

func TestSegmentsSimpleMatch(t *testing.T) {
	got := collectSegments(100, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 10)})
	assert.Equal(t, [][2]int{{100, 110}}, got)
}

func TestSegmentsFullCigar(t *testing.T) {
	// Soft clips and insertions emit nothing and hold the position;
	// deletions and skips advance without emitting.
	cigar := sam.Cigar{
		sam.NewCigarOp(sam.CigarSoftClipped, 5),
		sam.NewCigarOp(sam.CigarMatch, 10),
		sam.NewCigarOp(sam.CigarDeletion, 2),
		sam.NewCigarOp(sam.CigarMatch, 8),
		sam.NewCigarOp(sam.CigarSkipped, 300),
		sam.NewCigarOp(sam.CigarMatch, 7),
		sam.NewCigarOp(sam.CigarInsertion, 3),
		sam.NewCigarOp(sam.CigarMatch, 5),
		sam.NewCigarOp(sam.CigarHardClipped, 10),
	}
	got := collectSegments(100, cigar)
	assert.Equal(t, [][2]int{{100, 110}, {112, 120}, {420, 427}, {427, 432}}, got)
}

func TestSegmentsEqualAndDiff(t *testing.T) {
	cigar := sam.Cigar{
		sam.NewCigarOp(sam.CigarEqual, 10),
		sam.NewCigarOp(sam.CigarMismatch, 5),
	}
	got := collectSegments(100, cigar)
	assert.Equal(t, [][2]int{{100, 110}, {110, 115}}, got)
}

func TestSegmentsZeroLengthOp(t *testing.T) {
	// A zero-length match emits its empty interval at the current position.
	cigar := sam.Cigar{
		sam.NewCigarOp(sam.CigarMatch, 0),
		sam.NewCigarOp(sam.CigarMatch, 5),
	}
	got := collectSegments(10, cigar)
	assert.Equal(t, [][2]int{{10, 10}, {10, 15}}, got)
}

func TestSegmentsEmptyCigar(t *testing.T) {
	assert.Empty(t, collectSegments(10, nil))
}
