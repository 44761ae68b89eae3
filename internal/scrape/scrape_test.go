package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
)

func parsePage(t *testing.T, html string) *dom.Node {
	t.Helper()
	root, err := dom.ParseString(html)
	require.NoError(t, err)
	return root
}

func TestSidebarPages(t *testing.T) {
	root := parsePage(t, `<body>
		<div class="border-r-border">
			<ul>
				<li><a href="/org/repo/1-overview">Overview</a></li>
				<li><a href="/org/repo/2-architecture">Architecture</a></li>
				<li><span>no link here</span></li>
			</ul>
			<ul>
				<li><a href="/org/repo/3-api">API Reference</a></li>
			</ul>
		</div>
	</body>`)

	pages := SidebarPages(root, "https://deepwiki.com/org/repo")
	require.Len(t, pages, 3)
	assert.Equal(t, Page{Title: "Overview", URL: "https://deepwiki.com/org/repo/1-overview"}, pages[0])
	assert.Equal(t, "Architecture", pages[1].Title)
	assert.Equal(t, "https://deepwiki.com/org/repo/3-api", pages[2].URL)
}

func TestSidebarPagesNoSidebar(t *testing.T) {
	root := parsePage(t, `<body><p>bare page</p></body>`)
	assert.Nil(t, SidebarPages(root, "https://deepwiki.com/org/repo"))
}

func TestMainContentPrefersProse(t *testing.T) {
	root := parsePage(t, `<body><div class="container">
		<div>sidebar</div>
		<div><div class="prose"><p>article</p></div></div>
	</div></body>`)

	content := MainContent(root)
	require.NotNil(t, content)
	assert.True(t, content.HasClass("prose"))
	assert.Equal(t, "article", content.TextContent())
}

func TestMainContentProseCustom(t *testing.T) {
	root := parsePage(t, `<body><div class="container">
		<div>sidebar</div>
		<div><div class="prose-custom"><p>styled article</p></div></div>
	</div></body>`)

	content := MainContent(root)
	require.NotNil(t, content)
	assert.True(t, content.HasClass("prose-custom"))
}

func TestMainContentFallsBackToSecondChild(t *testing.T) {
	root := parsePage(t, `<body><div class="container">
		<div>sidebar</div>
		<div><p>raw content</p></div>
	</div></body>`)

	content := MainContent(root)
	require.NotNil(t, content)
	assert.Equal(t, "raw content", content.TextContent())
}

func TestMainContentFallsBackToBody(t *testing.T) {
	root := parsePage(t, `<body><p>everything</p></body>`)

	content := MainContent(root)
	require.NotNil(t, content)
	assert.True(t, content.IsElement("body"))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.Headless)
	assert.Positive(t, opts.SettleDelay)
	assert.Positive(t, opts.Timeout)
}
