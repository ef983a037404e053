// Package output exports the extracted operation table in machine-readable
// formats.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/moamenhredeen/oasgen/internal/models"
)

// Format represents the output format type
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// operationRow is the flattened export shape of one operation.
type operationRow struct {
	OperationID    string   `json:"operationId"`
	Method         string   `json:"method"`
	Path           string   `json:"path"`
	PathParams     []string `json:"pathParams,omitempty"`
	HasRequestBody bool     `json:"hasRequestBody"`
	Summary        string   `json:"summary,omitempty"`
}

// ExportOperations writes the operation table in the given format, to stdout
// when filePath is empty.
func ExportOperations(records []models.Record, format Format, filePath string) error {
	w, closer, err := getWriter(filePath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	switch format {
	case FormatJSON:
		return exportJSON(w, records)
	case FormatCSV:
		return exportCSV(w, records)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// getWriter returns an io.Writer for output (stdout or file)
func getWriter(filePath string) (io.Writer, io.Closer, error) {
	if filePath == "" {
		return os.Stdout, nil, nil
	}

	f, err := os.Create(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f, nil
}

func rows(records []models.Record) []operationRow {
	out := make([]operationRow, 0, len(records))
	for _, record := range records {
		out = append(out, operationRow{
			OperationID:    record.Op.OperationID,
			Method:         record.Op.Method,
			Path:           record.Op.PathTemplate,
			PathParams:     record.Op.PathParams,
			HasRequestBody: record.Op.HasRequestBody,
			Summary:        record.Op.Summary,
		})
	}
	return out
}

func exportJSON(w io.Writer, records []models.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows(records))
}

func exportCSV(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"operation_id", "method", "path", "path_params", "has_request_body", "summary"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows(records) {
		record := []string{
			row.OperationID,
			row.Method,
			row.Path,
			strings.Join(row.PathParams, ";"),
			strconv.FormatBool(row.HasRequestBody),
			row.Summary,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	return cw.Error()
}

// ParseFormat parses a string into a Format, returning error if invalid
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("invalid format '%s': must be 'json' or 'csv'", s)
	}
}
