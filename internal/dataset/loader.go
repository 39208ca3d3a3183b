// Package dataset loads the insurance policy CSV into documents.
// Each row becomes one document whose content is the row serialized as
// "column: value" lines, mirroring the ingestion format the rest of the
// system (record store regex, vector index) expects.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"policyqa/internal/logging"
)

// Document is one row of the dataset, immutable after load.
type Document struct {
	// Content is the serialized row: one "column: value" line per field.
	Content string
	// Metadata carries provenance: source file and row number.
	Metadata map[string]string
}

// Load reads the CSV at path and returns one document per data row.
// A missing or unreadable file is an error; the caller treats it as a
// fatal startup failure.
func Load(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	logging.Boot("Loading policy dataset from %s", path)

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are serialized as-is, dropped later if unusable

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	header := rows[0]
	docs := make([]Document, 0, len(rows)-1)
	for i, row := range rows[1:] {
		docs = append(docs, Document{
			Content: serializeRow(header, row),
			Metadata: map[string]string{
				"source": path,
				"row":    strconv.Itoa(i),
			},
		})
	}

	logging.Boot("Loaded %d policy documents", len(docs))
	return docs, nil
}

// serializeRow renders a row as "column: value" lines. Extra cells
// beyond the header are rendered with an empty column name so no data
// is silently lost.
func serializeRow(header, row []string) string {
	var b strings.Builder
	for i, cell := range row {
		if i > 0 {
			b.WriteByte('\n')
		}
		name := ""
		if i < len(header) {
			name = header[i]
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(cell)
	}
	return b.String()
}
