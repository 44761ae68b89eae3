// Package pipeline orchestrates the scrape, convert, translate, and export
// stages over a batch of wikis.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
	"github.com/deepwiki-tools/wikidoc/internal/markdown"
	"github.com/deepwiki-tools/wikidoc/internal/scrape"
)

// Fetcher fetches the rendered HTML of one page.
type Fetcher interface {
	PageHTML(url string) (string, error)
}

// Translator rewrites a Markdown document into the target language.
type Translator interface {
	TranslateMarkdown(ctx context.Context, content string) (string, error)
}

// Exporter renders a Markdown document into a binary Word package.
type Exporter interface {
	Export(source []byte) ([]byte, error)
}

// Runner executes the full pipeline. The zero value is not usable; fill in
// at least Fetcher and OutputDir. Leaving Translator or Exporter nil skips
// that stage.
type Runner struct {
	Fetcher    Fetcher
	Translator Translator
	Exporter   Exporter
	Logger     *log.Logger
	OutputDir  string
	// Workers bounds concurrency for the translate and export stages.
	// Page scraping stays sequential; it shares one browser.
	Workers int
}

// Result summarizes a pipeline run.
type Result struct {
	Wikis      int
	Pages      int
	Translated int
	Exported   int
	// Errors collects per-page failures that did not stop the run.
	Errors []error
}

type pageDoc struct {
	wiki     string
	name     string
	markdown string
}

// Run processes every wiki URL: scrape all sidebar pages, convert each to
// Markdown, then translate and export concurrently. Page-level failures
// are collected rather than aborting the batch.
func (r *Runner) Run(ctx context.Context, wikiURLs []string) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	result := &Result{}
	converter := markdown.NewConverter()

	var docs []*pageDoc
	for _, wikiURL := range wikiURLs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		start := time.Now()
		wikiDocs, errs := r.scrapeWiki(wikiURL, converter, logger)
		result.Wikis++
		result.Pages += len(wikiDocs)
		result.Errors = append(result.Errors, errs...)
		docs = append(docs, wikiDocs...)
		logger.Info("wiki scraped", "url", wikiURL, "pages", len(wikiDocs), "duration", time.Since(start))
	}

	for _, doc := range docs {
		path := filepath.Join(r.OutputDir, "markdown", doc.wiki, doc.name+".md")
		if err := writeFile(path, []byte(doc.markdown)); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	if r.Translator != nil {
		result.Translated = r.translateAll(ctx, docs, workers, logger, result)
	}
	if r.Exporter != nil {
		result.Exported = r.exportAll(docs, workers, logger, result)
	}

	logger.Info("pipeline finished",
		"wikis", result.Wikis,
		"pages", result.Pages,
		"translated", result.Translated,
		"exported", result.Exported,
		"errors", len(result.Errors))
	return result, nil
}

// scrapeWiki fetches the wiki's landing page, walks its sidebar, and
// converts every page to Markdown.
func (r *Runner) scrapeWiki(wikiURL string, converter *markdown.Converter, logger *log.Logger) ([]*pageDoc, []error) {
	wikiName := Sanitize(lastSegment(wikiURL))

	html, err := r.Fetcher.PageHTML(wikiURL)
	if err != nil {
		return nil, []error{fmt.Errorf("fetching %s: %w", wikiURL, err)}
	}
	root, err := dom.ParseString(html)
	if err != nil {
		return nil, []error{fmt.Errorf("parsing %s: %w", wikiURL, err)}
	}

	pages := scrape.SidebarPages(root, wikiURL)
	if len(pages) == 0 {
		// A wiki without a sidebar is a single page.
		doc := converter.ConvertPage(scrape.MainContent(root))
		return []*pageDoc{{wiki: wikiName, name: wikiName, markdown: doc}}, nil
	}

	var docs []*pageDoc
	var errs []error
	for _, page := range pages {
		logger.Debug("scraping page", "url", page.URL)
		pageHTML, err := r.Fetcher.PageHTML(page.URL)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetching %s: %w", page.URL, err))
			continue
		}
		pageRoot, err := dom.ParseString(pageHTML)
		if err != nil {
			errs = append(errs, fmt.Errorf("parsing %s: %w", page.URL, err))
			continue
		}
		docs = append(docs, &pageDoc{
			wiki:     wikiName,
			name:     Sanitize(page.Title),
			markdown: converter.ConvertPage(scrape.MainContent(pageRoot)),
		})
	}
	return docs, errs
}

func (r *Runner) translateAll(ctx context.Context, docs []*pageDoc, workers int, logger *log.Logger, result *Result) int {
	p := pool.New().WithMaxGoroutines(workers)
	var mu sync.Mutex
	translated := 0

	for _, doc := range docs {
		doc := doc
		p.Go(func() {
			out, err := r.Translator.TranslateMarkdown(ctx, doc.markdown)
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("translating %s/%s: %w", doc.wiki, doc.name, err))
				mu.Unlock()
				return
			}

			path := filepath.Join(r.OutputDir, "translated", doc.wiki, doc.name+".md")
			if err := writeFile(path, []byte(out)); err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, err)
				mu.Unlock()
				return
			}

			mu.Lock()
			doc.markdown = out
			translated++
			mu.Unlock()
			logger.Debug("page translated", "wiki", doc.wiki, "page", doc.name)
		})
	}

	p.Wait()
	return translated
}

func (r *Runner) exportAll(docs []*pageDoc, workers int, logger *log.Logger, result *Result) int {
	p := pool.New().WithMaxGoroutines(workers)
	var mu sync.Mutex
	exported := 0

	for _, doc := range docs {
		doc := doc
		p.Go(func() {
			data, err := r.Exporter.Export([]byte(doc.markdown))
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("exporting %s/%s: %w", doc.wiki, doc.name, err))
				mu.Unlock()
				return
			}

			path := filepath.Join(r.OutputDir, "docx", doc.wiki, doc.name+".docx")
			if err := writeFile(path, data); err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, err)
				mu.Unlock()
				return
			}

			mu.Lock()
			exported++
			mu.Unlock()
			logger.Debug("page exported", "wiki", doc.wiki, "page", doc.name)
		})
	}

	p.Wait()
	return exported
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

var unsafeFilenameRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// Sanitize makes a page title usable as a file name on every platform.
func Sanitize(name string) string {
	name = unsafeFilenameRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if len(name) > 255 {
		name = name[:255]
	}
	if name == "" {
		return "unnamed"
	}
	return name
}

func lastSegment(url string) string {
	segs := strings.Split(strings.TrimRight(url, "/"), "/")
	return segs[len(segs)-1]
}
