//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package gtf reads exon records from GTF annotation files.
package gtf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"

	"gopkg.in/fatih/set.v0"
)

// Strand is the annotated strand of a feature.
type Strand int8

const (
	StrandUnknown Strand = 0
	StrandForward Strand = 1
	StrandReverse Strand = -1
)

// ParseStrand parses GTF column 7.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return StrandForward, nil
	case "-":
		return StrandReverse, nil
	case ".":
		return StrandUnknown, nil
	}
	return StrandUnknown, fmt.Errorf("GTF strand %q not +/-/.", s)
}

func (s Strand) String() string {
	switch s {
	case StrandForward:
		return "+"
	case StrandReverse:
		return "-"
	}
	return "."
}

// Exon is one countable annotation record. Start and End are 1-based with a
// closed end, as in the GTF file.
type Exon struct {
	SeqName    string
	Start, End int
	Strand     Strand
	GeneID     string
}

// Reader reads countable records from a GTF stream. Comment lines and lines
// whose feature type is not in seqTypes are skipped.
type Reader struct {
	s        *bufio.Scanner
	seqTypes set.Interface
	lines    int
}

func NewReader(r io.Reader, seqTypes set.Interface) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{s: s, seqTypes: seqTypes}
}

// Lines returns the number of input lines consumed so far.
func (r *Reader) Lines() int {
	return r.lines
}

// Next returns the next record of an accepted feature type, or io.EOF at the
// end of the stream. A line of an accepted type that is missing a required
// field is a hard error.
func (r *Reader) Next() (*Exon, error) {
	for r.s.Scan() {
		r.lines++
		line := r.s.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("no seqtype in gtf line: %s", line)
		}
		if !r.seqTypes.Has(fields[2]) {
			continue
		}
		e, err := parseExon(fields)
		if err != nil {
			return nil, fmt.Errorf("%v: %s", err, line)
		}
		return e, nil
	}
	if err := r.s.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func parseExon(fields []string) (*Exon, error) {
	if len(fields) < 9 {
		return nil, fmt.Errorf("truncated gtf line")
	}
	start, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("invalid start")
	}
	end, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("invalid end")
	}
	strand, err := ParseStrand(fields[6])
	if err != nil {
		return nil, fmt.Errorf("invalid strand")
	}
	id, err := geneID(fields[8])
	if err != nil {
		return nil, err
	}
	return &Exon{SeqName: fields[0], Start: start, End: end, Strand: strand, GeneID: id}, nil
}

// geneID extracts the gene_id attribute from GTF column 9. In Ensembl GTF the
// gene_id is the first attribute, but no order is required here.
func geneID(attrs string) (string, error) {
	for _, attr := range strings.Split(attrs, ";") {
		attr = strings.TrimSpace(attr)
		if v, ok := strings.CutPrefix(attr, "gene_id "); ok {
			return strings.Trim(v, `"`), nil
		}
	}
	return "", fmt.Errorf("no gene_id in attributes")
}

type decompReader struct {
	io.Reader
	closers []io.Closer
}

func (r *decompReader) Close() error {
	var err error
	for _, c := range r.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens a GTF file, transparently decompressing .gz and .lz4 inputs.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &decompReader{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case strings.HasSuffix(path, ".lz4"):
		return &decompReader{Reader: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	}
	return f, nil
}
