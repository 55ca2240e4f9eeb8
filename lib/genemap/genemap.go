//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package genemap builds a per-chromosome, interval-indexed exon database
// from a GTF annotation.
package genemap

import (
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/biogo/store/interval"

	"gopkg.in/fatih/set.v0"

	"github.com/NKI-GCF/gensum/lib/gtf"
)

// nameIndex interns strings to dense ids in first-seen order.
type nameIndex struct {
	ids   map[string]int
	names []string
}

func newNameIndex() *nameIndex {
	return &nameIndex{ids: make(map[string]int)}
}

func (x *nameIndex) index(name string) int {
	if id, ok := x.ids[name]; ok {
		return id
	}
	id := len(x.names)
	x.ids[name] = id
	x.names = append(x.names, name)
	return id
}

func (x *nameIndex) lookup(name string) (int, bool) {
	id, ok := x.ids[name]
	return id, ok
}

// GeneMap owns the gene and sequence-name id tables and one exon interval
// tree per chromosome. It is immutable after construction and safe for
// concurrent readers.
type GeneMap struct {
	genes    *nameIndex
	seqNames *nameIndex
	trees    []*interval.IntTree
}

// FromGTF builds a GeneMap from the annotation at path (plain, .gz or .lz4).
func FromGTF(path string, seqTypes set.Interface) (*GeneMap, error) {
	f, err := gtf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Build(f, seqTypes)
}

// Build builds a GeneMap from a GTF stream. Records whose coordinates have
// negative length are logged and skipped; the build itself only fails on
// unreadable input or malformed records of an accepted feature type.
func Build(r io.Reader, seqTypes set.Interface) (*GeneMap, error) {
	gr := gtf.NewReader(r, seqTypes)
	genes := newNameIndex()
	seqNames := newNameIndex()
	var exons [][]ExonInterval

	for {
		e, err := gr.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		geneID := genes.index(e.GeneID)
		chromID := seqNames.index(e.SeqName)
		if e.End-e.Start < 0 {
			log.Printf("skipping negative length exon %s:%d-%d (%s)", e.SeqName, e.Start, e.End, e.GeneID)
			continue
		}
		for len(exons) <= chromID {
			exons = append(exons, nil)
		}
		// GTF exon coordinates are 1-based with a closed end; BAM files are
		// 0-based and the interval tree expects half open.
		exons[chromID] = append(exons[chromID], ExonInterval{Start: e.Start - 1, End: e.End, GeneID: geneID, Strand: e.Strand})
	}

	var numExons, numUnique int
	trees := make([]*interval.IntTree, len(seqNames.names))
	var uid uintptr
	for chromID := range trees {
		var chromExons []ExonInterval
		if chromID < len(exons) {
			chromExons = dedup(exons[chromID])
			numExons += len(exons[chromID])
			numUnique += len(chromExons)
		}
		t := &interval.IntTree{}
		for _, e := range chromExons {
			if e.End-e.Start <= 0 {
				return nil, fmt.Errorf("cannot create interval index, all ranges must have positive length")
			}
			e.UID = uid
			uid++
			if err := t.Insert(e, false); err != nil {
				return nil, err
			}
		}
		t.AdjustRanges()
		trees[chromID] = t
	}
	log.Printf("%d lines in GTF, parsed %d exons, %d unique geneid-exon ranges", gr.Lines(), numExons, numUnique)

	return &GeneMap{genes: genes, seqNames: seqNames, trees: trees}, nil
}

// dedup sorts exons by (gene, start, end) and drops exact duplicates. This
// removes around half of the raw entries because transcript isoforms share
// exon coordinates.
func dedup(exons []ExonInterval) []ExonInterval {
	sort.Slice(exons, func(i, j int) bool {
		if exons[i].GeneID != exons[j].GeneID {
			return exons[i].GeneID < exons[j].GeneID
		}
		if exons[i].Start != exons[j].Start {
			return exons[i].Start < exons[j].Start
		}
		return exons[i].End < exons[j].End
	})
	unique := exons[:0]
	for i, e := range exons {
		if i > 0 {
			p := unique[len(unique)-1]
			if p.GeneID == e.GeneID && p.Start == e.Start && p.End == e.End && p.Strand == e.Strand {
				continue
			}
		}
		unique = append(unique, e)
	}
	return unique
}

// NumGenes returns the number of distinct genes seen in the annotation.
func (g *GeneMap) NumGenes() int {
	return len(g.genes.names)
}

// GeneName resolves a dense gene id to its annotation gene identifier.
func (g *GeneMap) GeneName(id int) (string, error) {
	if id < 0 || id >= len(g.genes.names) {
		return "", fmt.Errorf("gene id %d out of range", id)
	}
	return g.genes.names[id], nil
}

// SeqNameID returns the dense id of a chromosome name from the annotation.
func (g *GeneMap) SeqNameID(name string) (int, bool) {
	return g.seqNames.lookup(name)
}

// Tree returns the exon interval tree of one chromosome.
func (g *GeneMap) Tree(chromID int) *interval.IntTree {
	if chromID < 0 || chromID >= len(g.trees) {
		return nil
	}
	return g.trees[chromID]
}
