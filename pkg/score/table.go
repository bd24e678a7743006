package score

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Header is the column order of the score table.
var Header = []string{"video_id", "prompt_id", "model", "reasoning_depth", "factual_accuracy", "coherence"}

const xlsxSheet = "Sheet1"

func (r Row) record() []string {
	return []string{
		r.VideoID,
		r.PromptID,
		r.Model,
		strconv.Itoa(r.ReasoningDepth),
		strconv.Itoa(r.FactualAccuracy),
		strconv.Itoa(r.Coherence),
	}
}

// WriteCSV writes the header followed by one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read score table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read score table: missing header")
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		var ints [3]int
		for j := range ints {
			v, err := strconv.Atoi(rec[3+j])
			if err != nil {
				return nil, fmt.Errorf("score table line %d, column %s: %w", i+2, Header[3+j], err)
			}
			ints[j] = v
		}
		rows = append(rows, Row{
			VideoID:         rec[0],
			PromptID:        rec[1],
			Model:           rec[2],
			ReasoningDepth:  ints[0],
			FactualAccuracy: ints[1],
			Coherence:       ints[2],
		})
	}
	return rows, nil
}

// WriteXLSX writes the table as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.VideoID, r.PromptID, r.Model, r.ReasoningDepth, r.FactualAccuracy, r.Coherence}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
