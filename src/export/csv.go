package export

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"strings"

	"sp500-dashboard/src/models"
)

// MediaTypeCSV is the content type of every artifact built here.
const MediaTypeCSV = "text/csv"

// Tabular is anything with a header row and string records.
type Tabular interface {
	Header() []string
	Records() [][]string
}

// Artifact is a named, typed byte payload ready to be offered as a download.
type Artifact struct {
	Filename  string
	MediaType string
	Data      []byte
}

// -----------------------------------------------------------------------------

// ToDownloadableCSV encodes the header and every record. The output depends only
// on the input, so the same table always produces the same bytes.
func ToDownloadableCSV(name string, t Tabular) (*Artifact, error) {
	if t == nil {
		return nil, fmt.Errorf("nothing to export")
	}
	if name == "" {
		name = "export.csv"
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := t.Header()
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, rec := range t.Records() {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", i, len(rec), len(header))
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return &Artifact{
		Filename:  name,
		MediaType: MediaTypeCSV,
		Data:      buf.Bytes(),
	}, nil
}

// -----------------------------------------------------------------------------

// DataURI embeds the artifact in a link target.
func (a *Artifact) DataURI() string {
	return "data:" + a.MediaType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// FileName builds names such as AAPL_1mo_1d.csv. Characters that are awkward in
// file names are replaced with underscores.
func FileName(symbol string, period models.Period, interval models.Interval) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, symbol)
	if clean == "" {
		clean = "series"
	}
	return fmt.Sprintf("%s_%s_%s.csv", clean, period, interval)
}
