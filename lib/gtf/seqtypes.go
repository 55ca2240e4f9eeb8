//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package gtf

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/fatih/set.v0"
)

// ParseSeqTypes parses a comma-separated list of GTF feature types into the
// set of types accepted for counting. Combinations whose features overlap on
// the genome (e.g. gene with exon, mRNA with cds) are rejected to avoid
// double counting.
func ParseSeqTypes(raw string) (set.Interface, error) {
	seqTypes := set.New(set.NonThreadSafe)
	for _, part := range strings.Split(raw, ",") {
		switch part {
		case "gene":
			if !seqTypes.IsEmpty() {
				return nil, fmt.Errorf(`"gene" overlaps other seq_types`)
			}
			seqTypes.Add(part)
		case "mRNA":
			for _, t := range []string{"exon", "gene", "cds", "five_prime_UTR", "three_prime_UTR"} {
				if seqTypes.Has(t) {
					return nil, fmt.Errorf(`"mRNA" overlaps other requested seq_types`)
				}
			}
			seqTypes.Add(part)
		case "cds":
			for _, t := range []string{"exon", "gene", "mRNA"} {
				if seqTypes.Has(t) {
					return nil, fmt.Errorf(`"cds" overlaps other requested seq_types`)
				}
			}
			seqTypes.Add(part)
		case "exon", "intron", "polyA_sequence", "polyA_site", "five_prime_UTR", "three_prime_UTR":
			if seqTypes.Has("gene") {
				return nil, fmt.Errorf(`"gene" overlaps other seq_types`)
			} else if seqTypes.Has("mRNA") && part != "intron" && !strings.Contains(part, "polyA") {
				return nil, fmt.Errorf(`"mRNA" overlaps other seq_types`)
			} else if seqTypes.Has("cds") && part == "exon" {
				return nil, fmt.Errorf(`"cds" overlaps with exons`)
			}
			if seqTypes.Has(part) {
				log.Printf("duplicate seq-type %s", part)
			}
			seqTypes.Add(part)
		default:
			return nil, fmt.Errorf(`%s? supported are -seq_types "exon", "gene", "mRNA", "cds", "intron", "polyA_sequence", "polyA_site", "five_prime_UTR" and "three_prime_UTR"`, part)
		}
	}
	return seqTypes, nil
}
