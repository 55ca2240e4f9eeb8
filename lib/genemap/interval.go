//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package genemap

import (
	"fmt"

	"github.com/biogo/store/interval"

	"github.com/NKI-GCF/gensum/lib/gtf"
)

// ExonInterval is one stored exon: a 0-based half-open interval tagged with
// its gene id and annotated strand.
type ExonInterval struct {
	Start, End int
	UID        uintptr
	GeneID     int
	Strand     gtf.Strand
}

func (e ExonInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return e.End > b.Start && e.Start < b.End
}

func (e ExonInterval) ID() uintptr {
	return e.UID
}

func (e ExonInterval) Range() interval.IntRange {
	return interval.IntRange{Start: e.Start, End: e.End}
}

func (e ExonInterval) String() string {
	return fmt.Sprintf("[%d,%d)#%d-g%d", e.Start, e.End, e.UID, e.GeneID)
}

// Query is a payload-free interval for overlap queries against an exon tree.
func Query(start, end int) ExonInterval {
	return ExonInterval{Start: start, End: end}
}
