package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) PageHTML(url string) (string, error) {
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("unknown url: " + url)
	}
	return html, nil
}

type upperTranslator struct{}

func (upperTranslator) TranslateMarkdown(_ context.Context, content string) (string, error) {
	return strings.ToUpper(content), nil
}

type failingTranslator struct{}

func (failingTranslator) TranslateMarkdown(context.Context, string) (string, error) {
	return "", errors.New("translation api down")
}

type markerExporter struct{}

func (markerExporter) Export(source []byte) ([]byte, error) {
	return append([]byte("DOCX:"), source...), nil
}

const wikiIndex = `<body>
	<div class="border-r-border">
		<ul>
			<li><a href="/org/repo/1-overview">Overview</a></li>
			<li><a href="/org/repo/2-design">Design</a></li>
		</ul>
	</div>
</body>`

func pageHTML(text string) string {
	return `<body><div class="container"><div>nav</div><div><div class="prose"><p>` + text + `</p></div></div></div></body>`
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{
		"https://deepwiki.com/org/repo":            wikiIndex,
		"https://deepwiki.com/org/repo/1-overview": pageHTML("overview text"),
		"https://deepwiki.com/org/repo/2-design":   pageHTML("design text"),
	}}
}

func TestRunScrapesAndWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{Fetcher: newFetcher(), OutputDir: dir}

	result, err := r.Run(context.Background(), []string{"https://deepwiki.com/org/repo"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Wikis)
	assert.Equal(t, 2, result.Pages)
	assert.Empty(t, result.Errors)

	content, err := os.ReadFile(filepath.Join(dir, "markdown", "repo", "Overview.md"))
	require.NoError(t, err)
	assert.Equal(t, "overview text", string(content))
}

func TestRunTranslatesAndExports(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{
		Fetcher:    newFetcher(),
		Translator: upperTranslator{},
		Exporter:   markerExporter{},
		OutputDir:  dir,
		Workers:    2,
	}

	result, err := r.Run(context.Background(), []string{"https://deepwiki.com/org/repo"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Translated)
	assert.Equal(t, 2, result.Exported)

	translated, err := os.ReadFile(filepath.Join(dir, "translated", "repo", "Design.md"))
	require.NoError(t, err)
	assert.Equal(t, "DESIGN TEXT", string(translated))

	// Export runs on the translated text when translation is enabled.
	exported, err := os.ReadFile(filepath.Join(dir, "docx", "repo", "Design.docx"))
	require.NoError(t, err)
	assert.Equal(t, "DOCX:DESIGN TEXT", string(exported))
}

func TestRunTranslationFailureKeepsGoing(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{
		Fetcher:    newFetcher(),
		Translator: failingTranslator{},
		Exporter:   markerExporter{},
		OutputDir:  dir,
	}

	result, err := r.Run(context.Background(), []string{"https://deepwiki.com/org/repo"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Translated)
	assert.Equal(t, 2, result.Exported, "export still runs on the untranslated text")
	assert.Len(t, result.Errors, 2)
}

func TestRunPageFetchFailureIsCollected(t *testing.T) {
	f := newFetcher()
	delete(f.pages, "https://deepwiki.com/org/repo/2-design")

	r := &Runner{Fetcher: f, OutputDir: t.TempDir()}
	result, err := r.Run(context.Background(), []string{"https://deepwiki.com/org/repo"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pages)
	assert.Len(t, result.Errors, 1)
}

func TestRunSinglePageWikiWithoutSidebar(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://deepwiki.com/org/solo": pageHTML("only page"),
	}}
	dir := t.TempDir()

	r := &Runner{Fetcher: f, OutputDir: dir}
	result, err := r.Run(context.Background(), []string{"https://deepwiki.com/org/solo"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pages)

	content, err := os.ReadFile(filepath.Join(dir, "markdown", "solo", "solo.md"))
	require.NoError(t, err)
	assert.Equal(t, "only page", string(content))
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Fetcher: newFetcher(), OutputDir: t.TempDir()}
	_, err := r.Run(ctx, []string{"https://deepwiki.com/org/repo"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Overview", "Overview"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"  dotted. ", "dotted"},
		{"", "unnamed"},
		{"...", "unnamed"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Sanitize(tc.in), tc.in)
	}
}
