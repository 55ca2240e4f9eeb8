//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/NKI-GCF/gensum/lib/genemap"
	"github.com/NKI-GCF/gensum/lib/gtf"
	"github.com/NKI-GCF/gensum/lib/quant"
)

var version = "DEV"

func main() {
	// Arguments: General
	var pathReport string
	var nWorker, verboseLevel int
	var verbose, printVersion bool
	flag.StringVar(&pathReport, "path_report", "", "Write JSON summary report to path (stdout with -)")
	flag.IntVar(&nWorker, "num_worker", 4, "Number of BAM decompression worker(s)")
	flag.IntVar(&verboseLevel, "verbose_level", 0, "Verbose level")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Input
	var pathGTF, pathBAM, seqTypesRaw string
	flag.StringVar(&pathGTF, "gtf", "", "Path to GTF annotation (plain, .gz or .lz4)")
	flag.StringVar(&pathBAM, "bam", "", "Path to BAM file")
	flag.StringVar(&seqTypesRaw, "seq_types", "exon", "GTF feature type(s) to count (comma separated)")
	// Arguments: Read selection
	var mapqRaw int
	var useDups, useSupplementary, noSingletons bool
	flag.IntVar(&mapqRaw, "mapq", 10, "Minimum read mapping quality (0-255)")
	flag.BoolVar(&useDups, "usedups", false, "Count alignments marked as duplicate")
	flag.BoolVar(&useSupplementary, "use_supplementary", false, "Accept supplementary alignments")
	flag.BoolVar(&noSingletons, "nosingletons", false, "Do not count pairs with an unmapped mate as single reads")
	// Arguments: Counting
	var strandnessRaw, methodRaw, pathOutput string
	flag.StringVar(&strandnessRaw, "strandness", "U", "Library strandness: 'F', 'R' or 'U'")
	flag.StringVar(&methodRaw, "method", "union", "Quantification method: 'union' or 'strict'")
	flag.StringVar(&pathOutput, "output", "", "Write count table to path (stdout with -, .gz compressed)")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Verbose
	if verbose && verboseLevel == 0 {
		verboseLevel = 1
	}

	// Time start
	var timeStart time.Time
	if verboseLevel > 0 {
		timeStart = time.Now()
	}

	// Check arguments
	if len(pathGTF) == 0 {
		log.Fatal("No GTF input")
	} else if _, err := os.Stat(pathGTF); os.IsNotExist(err) {
		log.Fatalln(pathGTF, "not found")
	}
	if len(pathBAM) == 0 {
		log.Fatal("No BAM input")
	} else if _, err := os.Stat(pathBAM); os.IsNotExist(err) {
		log.Fatalln(pathBAM, "not found")
	}
	if mapqRaw < 0 || mapqRaw > 255 {
		log.Fatalln("Mapping quality must be between 0 and 255, got", mapqRaw)
	}

	// Parse raw arguments
	seqTypes, err := gtf.ParseSeqTypes(seqTypesRaw)
	if err != nil {
		log.Fatal(err)
	}
	strandness, err := quant.ParseStrandness(strandnessRaw)
	if err != nil {
		log.Fatal(err)
	}
	method, err := quant.ParseMethod(methodRaw)
	if err != nil {
		log.Fatal(err)
	}
	cfg := quant.Config{
		UseDups:          useDups,
		NoSingletons:     noSingletons,
		UseSupplementary: useSupplementary,
		MinMapQ:          byte(mapqRaw),
		Method:           method,
		Strandness:       strandness,
	}

	// Build gene map
	if verboseLevel > 0 {
		timeNow := time.Now()
		fmt.Printf("%.1fmin - Opening %s\n", timeNow.Sub(timeStart).Minutes(), pathGTF)
	}
	genes, err := genemap.FromGTF(pathGTF, seqTypes)
	if err != nil {
		log.Fatal(err)
	}

	// Count alignments on genes
	if verboseLevel > 0 {
		timeNow := time.Now()
		fmt.Printf("%.1fmin - Opening %s\n", timeNow.Sub(timeStart).Minutes(), pathBAM)
	}
	counts, err := quant.QuantifyBAM(pathBAM, cfg, genes, nWorker, timeStart, verboseLevel)
	if err != nil {
		log.Fatal(err)
	}

	// Output: Count table
	if err = counts.WriteTableTo(pathOutput, genes); err != nil {
		log.Fatal(err)
	}
	// Output: Report
	if pathReport != "" {
		if err = counts.WriteReport(pathReport); err != nil {
			log.Fatal(err)
		}
	}
}
