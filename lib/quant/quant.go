//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package quant

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"golang.org/x/sync/errgroup"

	"github.com/NKI-GCF/gensum/lib/genemap"
)

const batchLength = 64

// Quantifier streams alignment records through the record-level filter
// chain, reconciles paired-end mates and accumulates counts. All state is
// owned by a single consumer: Process must not be called concurrently.
type Quantifier struct {
	cfg      Config
	genes    *genemap.GeneMap
	counts   *ReadMappings
	pending  map[string]*sam.Record
	chromIDs []int
}

// NewQuantifier returns a controller for one run. refs is the BAM reference
// table, matched by name against the annotation's chromosome table.
func NewQuantifier(cfg Config, genes *genemap.GeneMap, refs []*sam.Reference) *Quantifier {
	chromIDs := make([]int, len(refs))
	for i, ref := range refs {
		if id, ok := genes.SeqNameID(ref.Name()); ok {
			chromIDs[i] = id
		} else {
			chromIDs[i] = -1
		}
	}
	return &Quantifier{
		cfg:      cfg,
		genes:    genes,
		counts:   NewReadMappings(genes.NumGenes()),
		pending:  make(map[string]*sam.Record),
		chromIDs: chromIDs,
	}
}

// Counts returns the accumulator.
func (q *Quantifier) Counts() *ReadMappings {
	return q.counts
}

// PendingMates returns the number of buffered reads whose mate has not been
// seen. Entries left over at the end of a run are excluded from all totals.
func (q *Quantifier) PendingMates() int {
	return len(q.pending)
}

func (q *Quantifier) chromID(ref *sam.Reference) int {
	if ref == nil {
		return -1
	}
	id := ref.ID()
	if id < 0 || id >= len(q.chromIDs) {
		return -1
	}
	return q.chromIDs[id]
}

func refID(ref *sam.Reference) int {
	if ref == nil {
		return -1
	}
	return ref.ID()
}

// Process runs one record through the filter chain and dispatches it by
// pairing status. The QC-fail counter is not terminal: a QC-failed record
// continues through the chain and can still contribute to gene counts.
func (q *Quantifier) Process(r *sam.Record) {
	if r.Flags&sam.Unmapped != 0 {
		q.counts.unmapped++
		return
	}
	if r.Flags&sam.QCFail != 0 {
		q.counts.qcFailed++
	}
	if r.Flags&(sam.Secondary|sam.Supplementary) != 0 {
		q.counts.secondary++
		return
	}
	if !q.cfg.UseDups && r.Flags&sam.Duplicate != 0 {
		q.counts.duplicated++
		return
	}
	if r.MapQ < q.cfg.MinMapQ {
		q.counts.lowMapQ++
		return
	}
	chromID := q.chromID(r.Ref)
	if chromID < 0 {
		q.counts.notInAnnotation++
		return
	}
	tree := q.genes.Tree(chromID)

	if r.Flags&sam.Paired == 0 {
		q.counts.countHit(MapSegments(r, tree, q.cfg))
		return
	}
	if r.Flags&sam.MateUnmapped != 0 && !q.cfg.NoSingletons {
		q.counts.countHit(MapSegments(r, tree, q.cfg))
		return
	}
	// With -nosingletons an unmapped mate falls through to the reference id
	// comparison below, carrying whatever mate reference the record stores.
	if refID(r.Ref) != refID(r.MateRef) {
		// Mate on a different chromosome: the pair is ambiguous, the record
		// is never buffered.
		q.counts.ambiguousPair++
		return
	}
	if mate, ok := q.pending[r.Name]; ok {
		delete(q.pending, r.Name)
		m1 := MapSegments(r, tree, q.cfg)
		m2 := MapSegments(mate, tree, q.cfg)
		if m1 == m2 {
			// One increment per fragment.
			q.counts.countHit(m1)
		} else {
			q.counts.ambiguousPair++
		}
	} else {
		q.pending[r.Name] = r
	}
}

// addCommas adds commas after every 3 characters.
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[0:len(s)-3]) + "," + s[len(s)-3:]
}

// QuantifyBAM streams the BAM file at path through the controller and
// returns the accumulated counts. Decompression runs on nWorker goroutines;
// all counting state is mutated by this goroutine only.
func QuantifyBAM(path string, cfg Config, genes *genemap.GeneMap, nWorker int, timeStart time.Time, verboseLevel int) (*ReadMappings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	br, err := bam.NewReader(f, nWorker)
	if err != nil {
		return nil, err
	}
	defer br.Close()

	q := NewQuantifier(cfg, genes, br.Header().Refs())

	g, gctx := errgroup.WithContext(context.Background())
	chAln := make(chan []*sam.Record, nWorker*4)
	g.Go(func() error {
		defer close(chAln)
		batch := make([]*sam.Record, 0, batchLength)
		for {
			r, err := br.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return err
			}
			batch = append(batch, r)
			if len(batch) == batchLength {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case chAln <- batch:
				}
				batch = make([]*sam.Record, 0, batchLength)
			}
		}
		if len(batch) > 0 {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chAln <- batch:
			}
		}
		return nil
	})

	var nAlign uint64
	timeLog := time.Now()
	for batch := range chAln {
		for _, r := range batch {
			q.Process(r)
			nAlign++
		}
		if verboseLevel > 0 {
			timeNow := time.Now()
			if timeNow.Sub(timeLog).Minutes() > 1. {
				fmt.Printf("%.1fmin - %s align.\n", timeNow.Sub(timeStart).Minutes(), addCommas(strconv.FormatUint(nAlign, 10)))
				timeLog = timeNow
			}
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if verboseLevel > 0 {
		timeNow := time.Now()
		fmt.Printf("%.1fmin - Done %s align., %d read(s) with unseen mate\n", timeNow.Sub(timeStart).Minutes(), addCommas(strconv.FormatUint(nAlign, 10)), q.PendingMates())
	}
	return q.Counts(), nil
}
