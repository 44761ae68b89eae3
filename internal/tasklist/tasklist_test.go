package tasklist

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWorkbook assembles a minimal xlsx archive with one sheet. Rows are
// given as ordered cell-ref/value pairs; string values go through the
// shared strings table like real spreadsheets.
func buildWorkbook(t *testing.T, rows []map[string]string) []byte {
	t.Helper()

	var shared []string
	sharedIdx := make(map[string]int)
	intern := func(s string) int {
		if idx, ok := sharedIdx[s]; ok {
			return idx
		}
		shared = append(shared, s)
		sharedIdx[s] = len(shared) - 1
		return len(shared) - 1
	}

	var sheet strings.Builder
	sheet.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
	for i, row := range rows {
		fmt.Fprintf(&sheet, `<row r="%d">`, i+1)
		for ref, value := range row {
			fmt.Fprintf(&sheet, `<c r="%s" t="s"><v>%d</v></c>`, ref, intern(value))
		}
		sheet.WriteString(`</row>`)
	}
	sheet.WriteString(`</sheetData></worksheet>`)

	var sst strings.Builder
	sst.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	for _, s := range shared {
		fmt.Fprintf(&sst, "<si><t>%s</t></si>", s)
	}
	sst.WriteString(`</sst>`)

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range map[string]string{
		"xl/worksheets/sheet1.xml": sheet.String(),
		"xl/sharedStrings.xml":     sst.String(),
	} {
		entry, err := zw.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readURLs(t *testing.T, data []byte, column string) []string {
	t.Helper()
	urls, err := URLsFromReader(bytes.NewReader(data), int64(len(data)), column)
	require.NoError(t, err)
	return urls
}

func TestURLsFiltersAndDedupes(t *testing.T) {
	data := buildWorkbook(t, []map[string]string{
		{"A1": "Task", "D1": "Link"},
		{"A2": "first", "D2": "https://deepwiki.com/org/alpha"},
		{"A3": "junk", "D3": "not a url"},
		{"A4": "dup", "D4": "https://deepwiki.com/org/alpha"},
		{"A5": "second", "D5": "http://deepwiki.com/org/beta"},
	})

	urls := readURLs(t, data, "D")
	assert.Equal(t, []string{
		"https://deepwiki.com/org/alpha",
		"http://deepwiki.com/org/beta",
	}, urls)
}

func TestURLsSkipsHeaderRow(t *testing.T) {
	data := buildWorkbook(t, []map[string]string{
		{"D1": "https://deepwiki.com/org/header-looks-like-url"},
		{"D2": "https://deepwiki.com/org/real"},
	})

	urls := readURLs(t, data, "D")
	assert.Equal(t, []string{"https://deepwiki.com/org/real"}, urls)
}

func TestURLsIgnoresOtherColumns(t *testing.T) {
	data := buildWorkbook(t, []map[string]string{
		{"C1": "x", "D1": "Link"},
		{"C2": "https://deepwiki.com/org/wrong-column", "D2": "https://deepwiki.com/org/right"},
	})

	urls := readURLs(t, data, "D")
	assert.Equal(t, []string{"https://deepwiki.com/org/right"}, urls)
}

func TestURLsInvalidColumn(t *testing.T) {
	data := buildWorkbook(t, nil)
	_, err := URLsFromReader(bytes.NewReader(data), int64(len(data)), "4")
	assert.Error(t, err)
}

func TestColumnIndex(t *testing.T) {
	assert.Equal(t, 0, columnIndex("A"))
	assert.Equal(t, 3, columnIndex("D"))
	assert.Equal(t, 25, columnIndex("Z"))
	assert.Equal(t, 26, columnIndex("AA"))
	assert.Equal(t, 3, columnIndex("d"))
	assert.Equal(t, -1, columnIndex(""))
	assert.Equal(t, -1, columnIndex("7"))
}
