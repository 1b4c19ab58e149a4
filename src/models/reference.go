package models

import "time"

// MReferenceEntry is one row of the S&P 500 constituents table.
type MReferenceEntry struct {
	Symbol   string `json:"symbol"`
	Security string `json:"security,omitempty"`
	Sector   string `json:"sector"`
}

// MReferenceTable is the parsed reference page. It is immutable once built.
type MReferenceTable struct {
	Source   string            `json:"source"`
	Columns  []string          `json:"columns"`
	Rows     [][]string        `json:"-"`
	Entries  []MReferenceEntry `json:"entries"`
	LoadedAt time.Time         `json:"loaded_at"`

	bySector map[string][]int
	sectors  []string
	bySymbol map[string]int
}

// NewReferenceTable indexes entries by sector and symbol, keeping upstream order.
func NewReferenceTable(source string, columns []string, rows [][]string, entries []MReferenceEntry) *MReferenceTable {
	t := &MReferenceTable{
		Source:   source,
		Columns:  columns,
		Rows:     rows,
		Entries:  entries,
		LoadedAt: time.Now().UTC(),
		bySector: make(map[string][]int),
		bySymbol: make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if _, seen := t.bySector[e.Sector]; !seen {
			t.sectors = append(t.sectors, e.Sector)
		}
		t.bySector[e.Sector] = append(t.bySector[e.Sector], i)
		if _, dup := t.bySymbol[e.Symbol]; !dup {
			t.bySymbol[e.Symbol] = i
		}
	}
	return t
}

func (t *MReferenceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// Sectors returns each sector once, in order of first appearance.
func (t *MReferenceTable) Sectors() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.sectors))
	copy(out, t.sectors)
	return out
}

// BySector returns a copy of the entries of one sector.
func (t *MReferenceTable) BySector(sector string) []MReferenceEntry {
	if t == nil {
		return nil
	}
	idx := t.bySector[sector]
	out := make([]MReferenceEntry, 0, len(idx))
	for _, i := range idx {
		out = append(out, t.Entries[i])
	}
	return out
}

// Lookup matches the symbol exactly as the upstream page spells it.
func (t *MReferenceTable) Lookup(symbol string) (MReferenceEntry, bool) {
	if t == nil {
		return MReferenceEntry{}, false
	}
	i, ok := t.bySymbol[symbol]
	if !ok {
		return MReferenceEntry{}, false
	}
	return t.Entries[i], true
}

func (t *MReferenceTable) Header() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Columns))
	copy(out, t.Columns)
	return out
}

func (t *MReferenceTable) Records() [][]string {
	if t == nil {
		return nil
	}
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]string, len(r))
		copy(row, r)
		out[i] = row
	}
	return out
}
