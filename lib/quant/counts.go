//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package quant

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/NKI-GCF/gensum/lib/genemap"
)

// ReadMappings accumulates one run's per-gene counts and the counters for
// reads that could not be assigned. It is created once per run and mutated
// only by the pairing controller.
type ReadMappings struct {
	qcFailed        int
	unmapped        int
	secondary       int
	duplicated      int
	ambiguous       int
	ambiguousPair   int
	notInAnnotation int
	lowMapQ         int
	noHit           int
	hits            []int
}

// NewReadMappings returns an accumulator for n genes, all counts zero.
func NewReadMappings(n int) *ReadMappings {
	return &ReadMappings{hits: make([]int, n)}
}

func (m *ReadMappings) countHit(h SegmentHit) {
	switch h.kind {
	case kindNoHit:
		m.noHit++
	case kindAmbiguous:
		m.ambiguous++
	case kindHit:
		m.hits[h.gene]++
	}
}

// GeneCount returns the count of one gene.
func (m *ReadMappings) GeneCount(gene int) int {
	return m.hits[gene]
}

// WriteTable writes the count table: one gene_name\tcount line per gene in
// first-seen gene order, followed by the fixed summary lines. The low
// mapping quality counter is tracked but, as in the summary line set, not
// part of the table.
func (m *ReadMappings) WriteTable(o io.Writer, genes *genemap.GeneMap) error {
	w := bufio.NewWriter(o)
	for gene, count := range m.hits {
		name, err := genes.GeneName(gene)
		if err != nil {
			return err
		}
		w.WriteString(name)
		w.WriteByte('\t')
		w.WriteString(strconv.Itoa(count))
		w.WriteByte('\n')
	}
	fmt.Fprintf(w, "qc_failed\t%d\n", m.qcFailed)
	fmt.Fprintf(w, "unmapped\t%d\n", m.unmapped)
	fmt.Fprintf(w, "secondary_alignments\t%d\n", m.secondary)
	fmt.Fprintf(w, "marked_duplicated\t%d\n", m.duplicated)
	fmt.Fprintf(w, "ambiguous\t%d\n", m.ambiguous)
	fmt.Fprintf(w, "ambiguous_pair\t%d\n", m.ambiguousPair)
	fmt.Fprintf(w, "chr_not_in_gtf\t%d\n", m.notInAnnotation)
	fmt.Fprintf(w, "nohit\t%d\n", m.noHit)
	return w.Flush()
}

// WriteTableTo writes the count table to path, or to stdout when path is
// empty or "-". A path ending in .gz is gzip compressed.
func (m *ReadMappings) WriteTableTo(path string, genes *genemap.GeneMap) error {
	if path == "" || path == "-" {
		return m.WriteTable(os.Stdout, genes)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if strings.HasSuffix(path, ".gz") {
		zw := gzip.NewWriter(f)
		if err := m.WriteTable(zw, genes); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}
	return m.WriteTable(f, genes)
}

// WriteReport writes the category counters as indented JSON to path, or to
// stdout when path is "-".
func (m *ReadMappings) WriteReport(path string) error {
	var assigned int
	for _, c := range m.hits {
		assigned += c
	}
	report, err := json.MarshalIndent(map[string]int{
		"assigned":             assigned,
		"qc_failed":            m.qcFailed,
		"unmapped":             m.unmapped,
		"secondary_alignments": m.secondary,
		"marked_duplicated":    m.duplicated,
		"ambiguous":            m.ambiguous,
		"ambiguous_pair":       m.ambiguousPair,
		"chr_not_in_gtf":       m.notInAnnotation,
		"low_mapq":             m.lowMapQ,
		"nohit":                m.noHit,
	}, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		fmt.Println(string(report))
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err = f.Write(report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
