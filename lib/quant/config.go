//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package quant assigns BAM alignments to genes and accumulates per-gene and
// per-category counts.
package quant

import "fmt"

// Method is the quantification policy.
type Method int

const (
	// MethodUnion accepts any overlap between a read segment and an exon.
	MethodUnion Method = iota
	// MethodStrict requires every read segment to be contained in an exon.
	MethodStrict
)

func ParseMethod(s string) (Method, error) {
	switch s {
	case "union":
		return MethodUnion, nil
	case "strict":
		return MethodStrict, nil
	}
	return MethodUnion, fmt.Errorf("unknown quantification method %q", s)
}

// Strandness is the library protocol assumption used to filter candidate
// exons by transcription strand.
type Strandness int

const (
	Unstranded Strandness = iota
	Forward
	Reverse
)

func ParseStrandness(s string) (Strandness, error) {
	switch s {
	case "F":
		return Forward, nil
	case "R":
		return Reverse, nil
	case "U":
		return Unstranded, nil
	}
	return Unstranded, fmt.Errorf("unknown strandness %q", s)
}

// Config is the immutable run configuration, threaded explicitly into each
// component.
type Config struct {
	UseDups      bool
	NoSingletons bool
	// UseSupplementary is accepted on the command line but not consulted by
	// the filter chain: supplementary alignments are always counted under
	// secondary_alignments.
	UseSupplementary bool
	MinMapQ          byte
	Method           Method
	Strandness       Strandness
}
