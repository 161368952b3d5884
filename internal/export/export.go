// Package export serializes tables for download.
package export

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"html"
	"io"

	"github.com/rotisserie/eris"

	"office-stats/internal/table"
)

const (
	DefaultFilename = "data.csv"
	DefaultLabel    = "Download CSV"

	// CSVMediaType is the type used in the data URI.
	CSVMediaType = "file/csv"
)

// WriteCSV writes the header and every row of t. Row keys are not written.
// A nil table writes nothing.
func WriteCSV(w io.Writer, t *table.Table) error {
	if t == nil {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return eris.Wrap(err, "export: write csv rows")
	}
	return nil
}

// CSV returns the CSV serialization of t.
func CSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURI embeds payload as base64 under the CSV media type.
func DataURI(payload []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", CSVMediaType, base64.StdEncoding.EncodeToString(payload))
}

// DownloadLink returns an anchor element that downloads t as a CSV file when
// clicked. Blank filename and label fall back to the defaults.
func DownloadLink(t *table.Table, filename, label string) (string, error) {
	if filename == "" {
		filename = DefaultFilename
	}
	if label == "" {
		label = DefaultLabel
	}
	payload, err := CSV(t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<a href="%s" download="%s">%s</a>`,
		DataURI(payload), html.EscapeString(filename), html.EscapeString(label)), nil
}
