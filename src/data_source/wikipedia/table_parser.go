package wikipedia

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// -----------------------------------------------------------------------------

// htmlTable is the raw text content of one <table>.
type htmlTable struct {
	Header []string
	Rows   [][]string
}

// -----------------------------------------------------------------------------

// parseFirstTable returns the first <table> in document order. The first row is
// the header; every following row is padded or truncated to the header width.
func parseFirstTable(doc []byte) (*htmlTable, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("html parse failed: %w", err)
	}

	tableNode := findFirst(root, atom.Table)
	if tableNode == nil {
		return nil, fmt.Errorf("no table found in document")
	}

	var rows [][]string
	collectRows(tableNode, &rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("first table has no rows")
	}

	header := rows[0]
	width := len(header)
	body := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if isBlank(r) {
			continue
		}
		row := make([]string, width)
		copy(row, r)
		body = append(body, row)
	}

	return &htmlTable{Header: header, Rows: body}, nil
}

// -----------------------------------------------------------------------------

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// collectRows walks thead/tbody/tfoot but does not descend into nested tables.
func collectRows(n *html.Node, rows *[][]string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			*rows = append(*rows, rowCells(c))
		case atom.Thead, atom.Tbody, atom.Tfoot:
			collectRows(c, rows)
		}
	}
}

// -----------------------------------------------------------------------------

func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, cellText(c))
		}
	}
	return cells
}

// -----------------------------------------------------------------------------

// cellText concatenates visible text, dropping footnote markers and collapsing whitespace.
func cellText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Sup, atom.Style, atom.Script, atom.Table:
				return
			case atom.Br:
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// -----------------------------------------------------------------------------

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
