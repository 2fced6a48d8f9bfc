package source

import (
	"os"
	"sort"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"uetingest/internal/util"
)

// Document wraps one opened PDF file. Pages are 1-based, matching the
// underlying reader.
type Document struct {
	file   *os.File
	reader *pdf.Reader
}

func OpenDocument(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	return &Document{file: f, reader: r}, nil
}

func (d *Document) Close() error {
	return d.file.Close()
}

func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageLines returns the trimmed, non-empty text lines of a page.
func (d *Document) PageLines(pageNo int) ([]string, error) {
	p := d.reader.Page(pageNo)
	if p.V.IsNull() {
		return nil, nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return nil, err
	}
	return util.SplitLines(text), nil
}

// PageRows reconstructs table rows from positioned text: glyph runs sharing
// a baseline form a row, and horizontal gaps wider than minColumnGap start a
// new cell. Cells are trimmed; rows with no non-empty cell are dropped.
func (d *Document) PageRows(pageNo int) ([][]string, error) {
	p := d.reader.Page(pageNo)
	if p.V.IsNull() {
		return nil, nil
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := rowToCells(row.Content)
		if len(cells) > 0 {
			out = append(out, cells)
		}
	}
	return out, nil
}

const (
	// minColumnGap is the horizontal whitespace (in points) that separates
	// two table columns rather than two words of the same cell.
	minColumnGap = 6.0
	wordGap      = 1.0
)

func rowToCells(texts []pdf.Text) []string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	cells := []string{}
	var cell strings.Builder
	lineEnd := 0.0

	flush := func() {
		value := util.NormalizeSpaces(cell.String())
		if value != "" {
			cells = append(cells, value)
		}
		cell.Reset()
	}

	for i, t := range sorted {
		if i > 0 {
			gap := t.X - lineEnd
			if gap > minColumnGap {
				flush()
			} else if gap > wordGap {
				cell.WriteByte(' ')
			}
		}
		cell.WriteString(t.S)
		end := t.X + t.W
		if end > lineEnd {
			lineEnd = end
		}
	}
	flush()

	return cells
}
