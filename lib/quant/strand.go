//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package quant

import (
	"github.com/biogo/hts/sam"

	"github.com/NKI-GCF/gensum/lib/gtf"
)

// FragmentForward reports the transcription-strand orientation implied by an
// FR library ( --->____<--- ): for paired reads the first mate carries the
// fragment orientation, the last mate the opposite.
func FragmentForward(paired, first, last, reverse bool) bool {
	if paired {
		return (first && !reverse) || (last && reverse)
	}
	return !reverse
}

// Matches reports whether an exon on strand es is compatible with the
// alignment orientation given by the flag bits. Unstranded runs and exons of
// unknown strand are always compatible.
func (s Strandness) Matches(es gtf.Strand, paired, first, last, reverse bool) bool {
	if s == Unstranded || es == gtf.StrandUnknown {
		return true
	}
	forward := FragmentForward(paired, first, last, reverse)
	if (s == Forward) == (es == gtf.StrandForward) {
		return forward
	}
	return !forward
}

func (s Strandness) matchesRecord(r *sam.Record, es gtf.Strand) bool {
	return s.Matches(es,
		r.Flags&sam.Paired != 0,
		r.Flags&sam.Read1 != 0,
		r.Flags&sam.Read2 != 0,
		r.Flags&sam.Reverse != 0)
}
