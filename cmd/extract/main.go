// Command extract runs the statement extraction on a local PDF and writes the
// invoice batches and transactions to a spreadsheet.
// Usage: go run ./cmd/extract [-backend local|cloud] [-out file.xlsx|file.csv] [-json] releve.pdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"finextract/internal/chunker"
	"finextract/internal/config"
	"finextract/internal/domain"
	"finextract/internal/export"
	_ "finextract/internal/parser/claude"
	_ "finextract/internal/parser/gemini"
	_ "finextract/internal/parser/openai"
	"finextract/internal/service"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <statement.pdf>\n\nOptions:\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	backendName := flag.String("backend", cfg.Extraction.Backend, "extraction backend (local or cloud)")
	outPath := flag.String("out", "", "output file, .xlsx or .csv (default: Audit_Factures_Details_<name>.xlsx)")
	printJSON := flag.Bool("json", false, "also print the result as JSON on stdout")
	chunkSize := flag.Int("chunk-size", cfg.Extraction.ChunkSize, "pages per chunk")
	concurrency := flag.Int("concurrency", cfg.Extraction.Concurrency, "chunks extracted in parallel")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		return fmt.Errorf("missing input PDF")
	}
	pdfPath := flag.Arg(0)

	backend, ok := domain.ParseBackend(*backendName)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownBackend, *backendName)
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", pdfPath, err)
	}

	extractors, err := service.NewExtractors(&cfg.Parser, cfg.Extraction.RetryDelay())
	if err != nil {
		return err
	}
	pipeline := service.NewPipeline(chunker.NewSplitter(*chunkSize), extractors, nil, *concurrency)
	if !pipeline.Supports(backend) {
		return fmt.Errorf("%w: %s (set FINEXTRACT_PARSER_API_KEY)", domain.ErrUnknownBackend, backend)
	}

	fileName := filepath.Base(pdfPath)
	res, err := pipeline.ExtractDocument(context.Background(), backend, data, fileName, func(done, total int) {
		log.Printf("extract: chunk %d/%d done", done, total)
	})
	if err != nil {
		return fmt.Errorf("extracting %s: %w", pdfPath, err)
	}

	if *outPath == "" {
		*outPath = export.BuildFilename(fileName, service.FormatXLSX)
	}
	if err := writeOutput(*outPath, res); err != nil {
		return err
	}

	log.Printf("extract: %d batches, %d transactions, total remise %.2f %s, solde net %.2f %s -> %s",
		len(res.Batches), len(res.Transactions),
		res.Summary.TotalRemiseDH, res.Currency, res.Summary.SoldeNetRemise, res.Currency,
		*outPath)

	if *printJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return nil
}

func writeOutput(path string, res *domain.ExtractionResult) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = out.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		err = export.WriteCSV(out, res)
	} else {
		err = export.WriteXLSX(out, res)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}
