package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"example.com/pdbgate/internal/charset"
	"example.com/pdbgate/internal/check"
	"example.com/pdbgate/internal/common"
	"example.com/pdbgate/internal/dict"
	"example.com/pdbgate/internal/palm"
	"example.com/pdbgate/internal/report"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "inspect":
		inspectCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	case "formats":
		formatsCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`pdbctl %s (built %s) <command> [options]

Commands:
  inspect  --in <file> [--dict <dict.json>] [--json <metadata.json>]
  report   --in <file> [--dict <dict.json>] [--json <metadata.json>] [--pdf <metadata.pdf>]
  batch    --in <dir> --out-dir <dir> [--dict <dict.json>] [--concurrency <n>] [--metrics] [--progress]
  formats
`, version, buildDate)
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func loadDictionary(path string) (*dict.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	store, err := dict.EnsureLoaded(path)
	if err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", path, err)
	}
	return store, nil
}

func extractOptions(store *dict.Store) palm.Options {
	return palm.Options{
		MapCharset: charset.Lookup,
		DecodeText: charset.Decode,
		TagName:    store.Name,
	}
}

func buildExtraction(path string, store *dict.Store, engine *check.Engine) (report.Extraction, error) {
	digest, size, err := common.Sha256OfFile(path)
	if err != nil {
		return report.Extraction{}, err
	}
	res, err := palm.ExtractFile(path, extractOptions(store))
	if err != nil {
		return report.Extraction{}, err
	}
	return report.Extraction{
		File:   path,
		Size:   size,
		Sha256: digest,
		Result: res,
		Checks: engine.Run(path, res),
	}, nil
}

func inspectCmd(args []string) {
	fs := newFlagSet("inspect")
	in := fs.String("in", "", "input container file")
	dictPath := fs.String("dict", "", "dictionary JSON file")
	jsonOut := fs.String("json", "", "write full extraction JSON to file")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	store, err := loadDictionary(*dictPath)
	if err != nil {
		fmt.Println("dictionary:", err)
		os.Exit(1)
	}
	ext, err := buildExtraction(*in, store, check.NewEngine())
	if errors.Is(err, palm.ErrNotRecognized) {
		fmt.Println("not recognized:", *in)
		os.Exit(2)
	}
	if err != nil {
		fmt.Println("extract:", err)
		os.Exit(1)
	}
	printExtraction(ext)
	if *jsonOut != "" {
		if err := report.SaveJSON(ext, *jsonOut); err != nil {
			fmt.Println("write json:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *jsonOut)
	}
}

func printExtraction(ext report.Extraction) {
	fmt.Printf("%s: %s", ext.File, ext.Result.Format)
	if ext.Result.Mobi {
		fmt.Print(" (Mobipocket container)")
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	names := make([]string, 0, len(ext.Result.Fields))
	for name := range ext.Result.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, renderFieldValue(ext.Result.Fields[name]))
	}
	w.Flush()
	for _, warn := range ext.Result.Warnings {
		fmt.Printf("  warning: %s\n", warn)
	}
	sum := ext.Checks.Summary
	fmt.Printf("Checks: pass=%v errors=%d warnings=%d\n", sum.Pass, sum.Errors, sum.Warnings)
	for _, f := range ext.Checks.Findings {
		fmt.Printf("  [%s] %s: %s\n", f.Severity, f.CheckId, f.Message)
	}
}

func renderFieldValue(v any) string {
	switch val := v.(type) {
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "; ")
	case []byte:
		return fmt.Sprintf("(%d raw bytes)", len(val))
	default:
		return fmt.Sprint(val)
	}
}

func reportCmd(args []string) {
	fs := newFlagSet("report")
	in := fs.String("in", "", "input container file")
	dictPath := fs.String("dict", "", "dictionary JSON file")
	jsonOut := fs.String("json", "metadata_report.json", "output JSON report")
	pdfOut := fs.String("pdf", "", "output PDF report")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	store, err := loadDictionary(*dictPath)
	if err != nil {
		fmt.Println("dictionary:", err)
		os.Exit(1)
	}
	ext, err := buildExtraction(*in, store, check.NewEngine())
	if errors.Is(err, palm.ErrNotRecognized) {
		fmt.Println("not recognized:", *in)
		os.Exit(2)
	}
	if err != nil {
		fmt.Println("extract:", err)
		os.Exit(1)
	}
	if err := report.SaveJSON(ext, *jsonOut); err != nil {
		fmt.Println("write json:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", *jsonOut)
	if *pdfOut != "" {
		if err := report.SaveMetadataPDF(ext, *pdfOut); err != nil {
			fmt.Println("write pdf:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *pdfOut)
	}
}

func batchCmd(args []string) {
	fs := newFlagSet("batch")
	inDir := fs.String("in", ".", "input directory")
	outDir := fs.String("out-dir", "out", "results directory")
	dictPath := fs.String("dict", "", "dictionary JSON file")
	concurrency := fs.Int("concurrency", runtime.NumCPU(), "maximum concurrent extractions")
	metricsFlag := fs.Bool("metrics", false, "print extraction throughput metrics")
	progressFlag := fs.Bool("progress", false, "display extraction progress updates")
	fs.Parse(args)

	store, err := loadDictionary(*dictPath)
	if err != nil {
		fmt.Println("dictionary:", err)
		os.Exit(1)
	}
	inputs, err := collectInputs(*inDir)
	if err != nil {
		fmt.Println("scan inputs:", err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		fmt.Println("no input files found in", *inDir)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Println("create out dir:", err)
		os.Exit(1)
	}

	var metrics *common.Metrics
	if *metricsFlag || *progressFlag {
		metrics = common.NewMetrics()
		metrics.SetTotalFiles(int64(len(inputs)))
	}
	engine := check.NewEngine()

	workers := *concurrency
	if workers <= 0 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}
	if metrics != nil {
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}

	type batchResult struct {
		input string
		err   error
	}
	jobs := make(chan string)
	results := make(chan batchResult, len(inputs))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range jobs {
				results <- batchResult{input: input, err: batchOne(input, *inDir, *outDir, store, engine, metrics)}
			}
		}()
	}
	go func() {
		for _, input := range inputs {
			jobs <- input
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	recognized, skipped, failed := 0, 0, 0
	for res := range results {
		switch {
		case res.err == nil:
			recognized++
		case errors.Is(res.err, palm.ErrNotRecognized):
			skipped++
		default:
			failed++
			fmt.Printf("%s: %v\n", res.input, res.err)
		}
	}
	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}

	fmt.Printf("Processed %d file(s): recognized=%d skipped=%d failed=%d\n",
		len(inputs), recognized, skipped, failed)
	if metrics != nil && *metricsFlag {
		snap := metrics.Snapshot()
		fmt.Printf("Metrics: duration=%s processed=%s warnings=%d\n",
			snap.Duration.Round(10*time.Millisecond),
			common.FormatBytes(snap.Bytes),
			snap.Warnings,
		)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func batchOne(input, inDir, outDir string, store *dict.Store, engine *check.Engine, metrics *common.Metrics) error {
	ext, err := buildExtraction(input, store, engine)
	if err != nil {
		if metrics != nil {
			if info, statErr := os.Stat(input); statErr == nil {
				metrics.AddFile(info.Size(), 0, false)
			}
		}
		return err
	}
	if metrics != nil {
		metrics.AddFile(ext.Size, len(ext.Result.Warnings), true)
	}
	rel, err := filepath.Rel(inDir, input)
	if err != nil {
		rel = filepath.Base(input)
	}
	name := strings.TrimSuffix(rel, filepath.Ext(rel))
	target := filepath.Join(outDir, name)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return err
	}
	return report.SaveJSON(ext, filepath.Join(target, "metadata.json"))
}

// collectInputs walks dir and returns files with a known container
// extension, in walk order.
func collectInputs(dir string) ([]string, error) {
	var inputs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdb", ".prc", ".mobi", ".azw", ".azw3":
			inputs = append(inputs, path)
		}
		return nil
	})
	return inputs, err
}

func formatsCmd(args []string) {
	fs := newFlagSet("formats")
	fs.Parse(args)
	for _, f := range palm.Formats() {
		fmt.Println(f)
	}
}
