//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package quant

import (
	"fmt"

	"github.com/biogo/hts/sam"
	"github.com/biogo/store/interval"

	"github.com/NKI-GCF/gensum/lib/genemap"
)

type hitKind uint8

const (
	kindNoHit hitKind = iota
	kindAmbiguous
	kindHit
)

// SegmentHit is the per-alignment verdict. Values are comparable with ==:
// two Hit values are equal iff they name the same gene, NoHit and Ambiguous
// are equal to themselves only.
type SegmentHit struct {
	kind hitKind
	gene int
}

var (
	NoHit     = SegmentHit{kind: kindNoHit}
	Ambiguous = SegmentHit{kind: kindAmbiguous}
)

// Hit returns the verdict assigning an alignment to one gene.
func Hit(gene int) SegmentHit {
	return SegmentHit{kind: kindHit, gene: gene}
}

// Gene returns the assigned gene id, if any.
func (h SegmentHit) Gene() (int, bool) {
	return h.gene, h.kind == kindHit
}

func (h SegmentHit) String() string {
	switch h.kind {
	case kindHit:
		return fmt.Sprintf("Hit(%d)", h.gene)
	case kindAmbiguous:
		return "Ambiguous"
	}
	return "NoHit"
}

// MapSegments classifies one alignment against the exon tree of its
// chromosome. Each reference segment of the alignment is resolved to its
// overlapping exons, filtered by containment (strict) and strand
// compatibility, and the segment verdicts are merged: under union any
// segment touching two genes makes the whole alignment ambiguous, while
// under strict such a segment is discarded and may be rescued by a segment
// with a unique gene. Strict additionally requires every segment to map
// somewhere.
func MapSegments(r *sam.Record, tree *interval.IntTree, cfg Config) SegmentHit {
	strict := cfg.Method == MethodStrict
	targetID := -1

	segs := NewSegments(r.Pos, r.Cigar)
	for start, end, ok := segs.Next(); ok; start, end, ok = segs.Next() {
		segmentID := -1
		segmentAmbiguous := false
		for _, iv := range tree.Get(genemap.Query(start, end)) {
			exon := iv.(genemap.ExonInterval)
			if strict && !(start >= exon.Start && end <= exon.End) {
				continue
			}
			if !cfg.Strandness.matchesRecord(r, exon.Strand) {
				continue
			}
			if segmentID < 0 {
				segmentID = exon.GeneID
			} else if exon.GeneID != segmentID {
				if !strict {
					// Under union any segment linking to a second gene makes
					// the whole alignment ambiguous.
					return Ambiguous
				}
				// Under strict an ambiguous segment can be rescued if a
				// unique mapping is available from another segment.
				segmentAmbiguous = true
				break
			}
		}

		// Strict requires every segment to overlap a gene.
		if strict && segmentID < 0 {
			return NoHit
		}

		if !segmentAmbiguous && segmentID >= 0 {
			if targetID >= 0 && targetID != segmentID {
				return Ambiguous
			}
			targetID = segmentID
		}
	}

	if targetID >= 0 {
		return Hit(targetID)
	}
	return NoHit
}
