// Package scrape drives a headless Chrome instance to fetch wiki pages
// whose content is rendered client side, and picks the interesting parts
// out of the rendered document.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
)

// Options configures the browser session.
type Options struct {
	// ChromePath overrides the browser binary; empty means auto-detect.
	ChromePath string
	Headless   bool
	// SettleDelay is how long to wait after load for client-side rendering
	// to finish. Diagram rendering happens asynchronously, so a plain
	// readiness wait is not enough.
	SettleDelay time.Duration
	// Timeout bounds a single page fetch.
	Timeout time.Duration
}

// DefaultOptions mirrors the flags a CI-friendly headless session needs.
func DefaultOptions() Options {
	return Options{
		Headless:    true,
		SettleDelay: 3 * time.Second,
		Timeout:     2 * time.Minute,
	}
}

// Scraper owns one browser process reused across page fetches.
type Scraper struct {
	opts          Options
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// New launches the browser allocator. Close must be called to reap the
// browser process.
func New(ctx context.Context, opts Options) *Scraper {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", opts.Headless),
	)
	if opts.ChromePath != "" {
		execOpts = append(execOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return &Scraper{
		opts:          opts,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}
}

// Close shuts the browser down.
func (s *Scraper) Close() {
	s.browserCancel()
	s.allocCancel()
}

// PageHTML navigates to pageURL, waits for client-side rendering to
// settle, and returns the rendered document.
func (s *Scraper) PageHTML(pageURL string) (string, error) {
	runCtx := s.browserCtx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.opts.Timeout)
		defer cancel()
	}

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.opts.SettleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	return html, nil
}

// Page is one entry of the wiki's navigation sidebar.
type Page struct {
	Title string
	URL   string
}

// SidebarPages walks the navigation sidebar and returns every linked wiki
// page in document order. Page URLs are rebuilt against baseURL from the
// last segment of each link, the same way the site itself addresses them.
func SidebarPages(root *dom.Node, baseURL string) []Page {
	sidebar := root.FindClass("border-r-border")
	if sidebar == nil {
		return nil
	}

	var pages []Page
	uls := sidebar.Descendants(func(d *dom.Node) bool { return d.IsElement("ul") })
	for _, ul := range uls {
		for _, li := range ul.ElementChildren("li") {
			a := li.FindTag("a")
			if a == nil {
				continue
			}
			href := a.Attr("href")
			if href == "" {
				continue
			}
			segs := strings.Split(href, "/")
			pages = append(pages, Page{
				Title: a.TextContent(),
				URL:   baseURL + "/" + segs[len(segs)-1],
			})
		}
	}
	return pages
}

// MainContent locates the article body: the prose block inside the second
// child of the page container, the child itself when no prose block
// exists, or the whole body as a last resort.
func MainContent(root *dom.Node) *dom.Node {
	if container := root.FindClass("container"); container != nil {
		if second := secondChildDiv(container); second != nil {
			if prose := second.FindClass("prose"); prose != nil {
				return prose
			}
			if prose := second.FindClass("prose-custom"); prose != nil {
				return prose
			}
			return second
		}
	}
	return root.FindTag("body")
}

func secondChildDiv(n *dom.Node) *dom.Node {
	children := n.ElementChildren("")
	if len(children) < 2 || !children[1].IsElement("div") {
		return nil
	}
	return children[1]
}
