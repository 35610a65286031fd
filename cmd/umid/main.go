package main

/*
  umid deduplicates or labels UMI (Unique Molecular Identifier) families
  in a coordinate-sorted SAM/BAM stream. For more information, see
  github.com/brackishbio/umid/dedup/doc.go
*/

import (
	"context"
	"flag"
	"io"
	"io/ioutil"
	"os"
	"runtime"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/brackishbio/umid/dedup"
	"github.com/brackishbio/umid/umi"
)

var (
	inputBAM            = flag.String("input", "", "input BAM filename, or '-' for stdin")
	outputBAM           = flag.String("output", "", "output BAM filename, or '-' for stdout")
	umiTag              = flag.String("umi-tag", "RX", "two-character aux tag holding the raw UMI sequence")
	umiInReadID         = flag.Bool("umi-in-read-id", false, "extract the UMI from the last '_'-delimited field of the read name instead of an aux tag")
	knownUMIs           = flag.String("known-umis", "", "path to a newline-separated panel of known-good UMIs; when set, each raw UMI is snapped to its nearest unique panel member before bucketing")
	allowedReadDist     = flag.Int("allowed-read-dist", 1, "maximum Hamming distance between UMIs considered network neighbors")
	allowedCountFactor  = flag.Int("allowed-count-factor", 2, "count-asymmetry factor gating a directed edge between two UMIs")
	allowedNetworkDepth = flag.Int("allowed-network-depth", 2, "cluster traversal depth: 1 keeps each seed alone, 2 adds its direct neighbors, each further step adds one more hop")
	ignoreSplicePos     = flag.Bool("ignore-splice-pos", false, "collapse spliced alignments at a position into one bucket regardless of splice offset")
	groupOnly           = flag.Bool("group-only", false, "emit every read tagged with its cluster (UG/BX) instead of one representative per cluster")
	isPaired            = flag.Bool("is-paired", false, "include template length in the position key and rescue mate-2 records after the primary pass")
	parallelism         = flag.Int("parallelism", runtime.NumCPU(), "number of bundles to group and cluster concurrently")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}
	if *inputBAM == "" {
		log.Fatalf("-input is required")
	}
	if *outputBAM == "" {
		log.Fatalf("-output is required")
	}

	ctx := vcontext.Background()

	var corrector *umi.SnapCorrector
	if *knownUMIs != "" {
		f, err := file.Open(ctx, *knownUMIs)
		if err != nil {
			log.Fatalf("opening known-umis panel: %v", err)
		}
		panel, err := ioutil.ReadAll(f.Reader(ctx))
		if closeErr := f.Close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			log.Fatalf("reading known-umis panel: %v", err)
		}
		corrector = umi.NewSnapCorrector(panel)
	}

	cfg := dedup.Config{
		UMITag:              *umiTag,
		UMIInReadID:         *umiInReadID,
		Corrector:           corrector,
		AllowedReadDist:     *allowedReadDist,
		AllowedCountFactor:  *allowedCountFactor,
		AllowedNetworkDepth: *allowedNetworkDepth,
		IgnoreSplicePos:     *ignoreSplicePos,
		GroupOnly:           *groupOnly,
		IsPaired:            *isPaired,
	}

	in, closeIn, err := openInput(ctx, *inputBAM)
	if err != nil {
		log.Fatalf("opening input: %v", err)
	}
	defer closeIn()

	out, closeOut, err := createOutput(ctx, *outputBAM)
	if err != nil {
		log.Fatalf("opening output: %v", err)
	}

	stats, err := dedup.RunWithWorkers(in, out, cfg, *parallelism)
	if closeErr := closeOut(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Debug.Printf("done")
	os.Stdout.WriteString(stats.String() + "\n")
}

// openInput resolves path through grailbio/base/file, which
// transparently handles local paths, s3:// URLs and the rest of the
// schemes file.Open knows about; "-" is special-cased to stdin since
// the file package has no stream scheme for it.
func openInput(ctx context.Context, path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, os.Stdin.Close, nil
	}
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return f.Reader(ctx), func() error { return f.Close(ctx) }, nil
}

func createOutput(ctx context.Context, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, os.Stdout.Close, nil
	}
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return f.Writer(ctx), func() error { return f.Close(ctx) }, nil
}
