// Package tasklist reads wiki URLs out of an XLSX task sheet. Only the
// parts of the spreadsheet format the task list needs are implemented:
// shared strings, inline strings, and the first worksheet.
package tasklist

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var urlRe = regexp.MustCompile(`^https?://\S+`)

type sharedStringsXML struct {
	SI []struct {
		T string `xml:"t"`
		R []struct {
			T string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

type worksheetXML struct {
	Rows []rowXML `xml:"sheetData>row"`
}

type rowXML struct {
	R     int       `xml:"r,attr"`
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string `xml:"r,attr"`
	T  string `xml:"t,attr"`
	V  string `xml:"v"`
	Is *struct {
		T string `xml:"t"`
	} `xml:"is"`
}

// URLs reads the spreadsheet at path and returns every URL found in the
// given column, first row (the header) excluded. Duplicates collapse to
// the first occurrence, keeping sheet order.
func URLs(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening task list: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("opening task list: %w", err)
	}
	return URLsFromReader(f, info.Size(), column)
}

// URLsFromReader is URLs over an in-memory or already-open archive.
func URLsFromReader(r io.ReaderAt, size int64, column string) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("reading task list archive: %w", err)
	}

	colIdx := columnIndex(column)
	if colIdx < 0 {
		return nil, fmt.Errorf("invalid column %q", column)
	}

	shared := readSharedStrings(zr)
	sheet, err := readFirstSheet(zr)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var urls []string
	for _, row := range sheet.Rows {
		if row.R == 1 {
			// Header row.
			continue
		}
		for _, cell := range row.Cells {
			if cellColumn(cell.R) != colIdx {
				continue
			}
			value := cellValue(cell, shared)
			if !urlRe.MatchString(value) {
				continue
			}
			if !seen[value] {
				seen[value] = true
				urls = append(urls, value)
			}
		}
	}
	return urls, nil
}

func readSharedStrings(zr *zip.Reader) []string {
	data, err := fileContent(zr, "xl/sharedStrings.xml")
	if err != nil {
		return nil
	}
	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil
	}

	out := make([]string, len(sst.SI))
	for i, si := range sst.SI {
		if si.T != "" {
			out[i] = si.T
			continue
		}
		var b strings.Builder
		for _, run := range si.R {
			b.WriteString(run.T)
		}
		out[i] = b.String()
	}
	return out
}

func readFirstSheet(zr *zip.Reader) (*worksheetXML, error) {
	data, err := fileContent(zr, "xl/worksheets/sheet1.xml")
	if err != nil {
		// Workbooks renaming their sheets still keep them under
		// xl/worksheets/; take the lexicographically first one.
		var names []string
		for _, f := range zr.File {
			if strings.HasPrefix(f.Name, "xl/worksheets/") && strings.HasSuffix(f.Name, ".xml") {
				names = append(names, f.Name)
			}
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		sort.Strings(names)
		if data, err = fileContent(zr, names[0]); err != nil {
			return nil, err
		}
	}

	var sheet worksheetXML
	if err := xml.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("parsing worksheet: %w", err)
	}
	return &sheet, nil
}

func fileContent(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

func cellValue(cell cellXML, shared []string) string {
	switch cell.T {
	case "s":
		idx, err := strconv.Atoi(cell.V)
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		if cell.Is != nil {
			return cell.Is.T
		}
		return ""
	default:
		return cell.V
	}
}

// columnIndex converts a column letter like "D" or "AA" to a 0-indexed
// column number, or -1 when the name is invalid.
func columnIndex(col string) int {
	if col == "" {
		return -1
	}
	result := 0
	for _, c := range strings.ToUpper(col) {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

// cellColumn extracts the 0-indexed column from a cell reference like
// "D7", or -1 when the reference is malformed.
func cellColumn(ref string) int {
	i := 0
	for i < len(ref) && (ref[i] >= 'A' && ref[i] <= 'Z' || ref[i] >= 'a' && ref[i] <= 'z') {
		i++
	}
	if i == 0 {
		return -1
	}
	return columnIndex(ref[:i])
}
