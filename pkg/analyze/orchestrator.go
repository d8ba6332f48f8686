package analyze

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Abraxas-365/formscan/pkg/asyncx"
	"github.com/Abraxas-365/formscan/pkg/docfield"
	"github.com/Abraxas-365/formscan/pkg/logx"
	"github.com/Abraxas-365/formscan/pkg/pdfx"
)

// PageAnalyzer analyzes one page's bytes into OCR blocks.
type PageAnalyzer interface {
	AnalyzePage(ctx context.Context, pdf []byte, filename string) ([]docfield.Block, error)
}

// DocumentSplitter provides page count and per-page documents.
type DocumentSplitter interface {
	PageCount(data []byte) (int, error)
	Split(data []byte) ([][]byte, error)
}

// PDFSplitter implements DocumentSplitter on pdfx.
type PDFSplitter struct{}

func (PDFSplitter) PageCount(data []byte) (int, error) { return pdfx.PageCount(data) }
func (PDFSplitter) Split(data []byte) ([][]byte, error) { return pdfx.Split(data) }

// ProgressFunc is invoked after each page completes with the number of
// pages finished so far and the total.
type ProgressFunc func(current, total int)

// Result is the aggregated outcome of one analysis run.
type Result struct {
	Blocks    []docfield.Block
	PageCount int
}

// Orchestrator runs the full document analysis: split, analyze each
// page, tag and aggregate.
type Orchestrator struct {
	Pages    PageAnalyzer
	Splitter DocumentSplitter

	// Workers bounds concurrent page analysis. Values below 2 keep
	// pages sequential; the final field sort makes the output order
	// independent of this setting either way.
	Workers int
}

// Analyze processes the whole document.
//
// Single-page documents are analyzed directly and any failure is fatal.
// Multi-page documents are split and analyzed page by page; a failing
// page is logged and skipped, its blocks simply absent from the
// aggregate, and the reported page count still covers the full document.
func (o *Orchestrator) Analyze(ctx context.Context, pdf []byte, filename string, progress ProgressFunc) (*Result, error) {
	pageCount, err := o.Splitter.PageCount(pdf)
	if err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{"file": filename, "pages": pageCount}).Info("Starting document analysis")

	if pageCount == 1 {
		blocks, err := o.Pages.AnalyzePage(ctx, pdf, filename)
		if err != nil {
			return nil, err
		}
		tagPage(blocks, 1)
		if progress != nil {
			progress(1, 1)
		}
		return &Result{Blocks: blocks, PageCount: 1}, nil
	}

	pages, err := o.Splitter.Split(pdf)
	if err != nil {
		return nil, err
	}

	perPage := o.analyzePages(ctx, pages, filename, pageCount, progress)

	var all []docfield.Block
	for i, res := range perPage {
		pageNum := i + 1
		if res.Err != nil {
			logx.WithError(errorRegistry.NewWithCause(ErrPageAnalysis, res.Err)).
				WithFields(logx.Fields{"file": filename, "page": pageNum}).
				Warn("Skipping failed page")
			continue
		}
		tagPage(res.Value, pageNum)
		all = append(all, res.Value...)
	}

	return &Result{Blocks: all, PageCount: pageCount}, nil
}

// analyzePages runs the strategy chain over every page, sequentially or
// with a bounded worker pool, returning one settled result per page in
// page order.
func (o *Orchestrator) analyzePages(ctx context.Context, pages [][]byte, filename string, total int, progress ProgressFunc) []asyncx.Result[[]docfield.Block] {
	var done int64
	run := func(ctx context.Context, pageNum int) ([]docfield.Block, error) {
		blocks, err := o.Pages.AnalyzePage(ctx, pages[pageNum-1], pageFilename(filename, pageNum))
		if progress != nil {
			progress(int(atomic.AddInt64(&done, 1)), total)
		}
		return blocks, err
	}

	nums := make([]int, len(pages))
	for i := range pages {
		nums[i] = i + 1
	}

	workers := o.Workers
	if workers < 1 {
		workers = 1
	}
	return asyncx.MapSettled(ctx, workers, nums, run)
}

func tagPage(blocks []docfield.Block, page int) {
	for i := range blocks {
		blocks[i].Page = page
	}
}

func pageFilename(filename string, page int) string {
	return fmt.Sprintf("%s-page%d.pdf", filename, page)
}
