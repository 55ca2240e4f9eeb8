//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package gtf

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gtfSample = `#!genome-build GRCh38.p12
6	ensembl_havana	gene	170554302	170572870	.	+	.	gene_id "ENSG00000112592"; gene_version "13"; gene_name "TBP";
6	havana	transcript	170554302	170566957	.	+	.	gene_id "ENSG00000112592"; transcript_id "ENST00000421512";
6	havana	exon	170554302	170554463	.	+	.	gene_id "ENSG00000112592"; transcript_id "ENST00000421512"; exon_number "1";
6	havana	exon	170556882	170557083	.	+	.	gene_id "ENSG00000112592"; transcript_id "ENST00000421512"; exon_number "2";
6	havana	CDS	170557030	170557083	.	+	0	gene_id "ENSG00000112592"; protein_id "ENSP00000400008";
`

func TestReader(t *testing.T) {
	s, err := ParseSeqTypes("exon")
	require.NoError(t, err)
	r := NewReader(strings.NewReader(gtfSample), s)

	// Comment, gene and transcript lines are skipped; the two exons come out.
	e, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "ENSG00000112592", e.GeneID)
	assert.Equal(t, "6", e.SeqName)
	assert.Equal(t, 170554302, e.Start)
	assert.Equal(t, 170554463, e.End)
	assert.Equal(t, StrandForward, e.Strand)

	e, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, 170556882, e.Start)
	assert.Equal(t, 170557083, e.End)

	// The CDS line is skipped, then EOF.
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 6, r.Lines())
}

func TestReaderErrors(t *testing.T) {
	s, err := ParseSeqTypes("exon")
	require.NoError(t, err)

	for name, line := range map[string]string{
		"bad start":  "1\tsrc\texon\tx\t200\t.\t+\t.\tgene_id \"G1\";",
		"bad end":    "1\tsrc\texon\t100\ty\t.\t+\t.\tgene_id \"G1\";",
		"bad strand": "1\tsrc\texon\t100\t200\t.\t?\t.\tgene_id \"G1\";",
		"no gene_id": "1\tsrc\texon\t100\t200\t.\t+\t.\ttranscript_id \"T1\";",
		"truncated":  "1\tsrc\texon\t100",
	} {
		r := NewReader(strings.NewReader(line+"\n"), s)
		_, err := r.Next()
		assert.Error(t, err, name)
	}

	// A malformed line of a type that is not accepted is skipped, not fatal.
	r := NewReader(strings.NewReader("1\tsrc\tCDS\tx\ty\t.\t?\t.\tnothing\n"), s)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestParseStrand(t *testing.T) {
	for raw, want := range map[string]Strand{"+": StrandForward, "-": StrandReverse, ".": StrandUnknown} {
		got, err := ParseStrand(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStrand("*")
	assert.Error(t, err)
}

func TestGeneIDNotFirstAttribute(t *testing.T) {
	id, err := geneID(`gene_version "13"; gene_id "ENSG42"; gene_name "X"`)
	require.NoError(t, err)
	assert.Equal(t, "ENSG42", id)
}

func TestParseSeqTypes(t *testing.T) {
	s, err := ParseSeqTypes("exon,intron")
	require.NoError(t, err)
	assert.True(t, s.Has("exon"))
	assert.True(t, s.Has("intron"))
	assert.False(t, s.Has("gene"))

	s, err = ParseSeqTypes("mRNA,intron,polyA_site")
	require.NoError(t, err)
	assert.True(t, s.Has("mRNA"))

	for _, bad := range []string{"gene,exon", "exon,gene", "mRNA,exon", "exon,mRNA", "cds,exon", "exon,cds", "nonsense"} {
		_, err = ParseSeqTypes(bad)
		assert.Error(t, err, bad)
	}

	// Duplicates are warned about but accepted.
	s, err = ParseSeqTypes("exon,exon")
	require.NoError(t, err)
	assert.True(t, s.Has("exon"))
}

func TestOpenCompressed(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "a.gtf")
	require.NoError(t, os.WriteFile(plain, []byte(gtfSample), 0o644))

	gzPath := filepath.Join(dir, "a.gtf.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(gtfSample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	lz4Path := filepath.Join(dir, "a.gtf.lz4")
	f, err = os.Create(lz4Path)
	require.NoError(t, err)
	lw := lz4.NewWriter(f)
	_, err = lw.Write([]byte(gtfSample))
	require.NoError(t, err)
	require.NoError(t, lw.Close())
	require.NoError(t, f.Close())

	for _, path := range []string{plain, gzPath, lz4Path} {
		r, err := Open(path)
		require.NoError(t, err, path)
		data, err := io.ReadAll(r)
		require.NoError(t, err, path)
		assert.Equal(t, gtfSample, string(data), path)
		require.NoError(t, r.Close())
	}
}
