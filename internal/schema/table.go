package schema

import "fmt"

// Table mutation primitives.
//
// Every function here returns a TableContent whose Data rows are freshly
// allocated. The editor renders two views of the same table during an
// authoring session; if a resize or cell edit reused row slices from the
// input, a later write through one view would corrupt the other. Callers
// may therefore keep the input value and the returned value alive at the
// same time without either observing the other's edits.

// NewTable returns an empty rows x cols table with sized headers and data.
func NewTable(rows, cols int) TableContent {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	t := TableContent{
		Rows:    rows,
		Cols:    cols,
		Headers: make([]string, cols),
		Data:    make([][]string, rows),
	}
	for i := range t.Data {
		t.Data[i] = make([]string, cols)
	}
	return t
}

// CloneTable returns a full value copy of t with no shared row slices.
func CloneTable(t TableContent) TableContent {
	out := TableContent{
		Rows:    t.Rows,
		Cols:    t.Cols,
		Headers: append([]string(nil), t.Headers...),
		Data:    make([][]string, len(t.Data)),
	}
	for i, row := range t.Data {
		out.Data[i] = append([]string(nil), row...)
	}
	return out
}

// SetCell returns a copy of t with cell (row, col) set to value.
func SetCell(t TableContent, row, col int, value string) (TableContent, error) {
	if row < 0 || row >= t.Rows {
		return TableContent{}, fmt.Errorf("row %d out of range [0,%d)", row, t.Rows)
	}
	if col < 0 || col >= t.Cols {
		return TableContent{}, fmt.Errorf("col %d out of range [0,%d)", col, t.Cols)
	}
	out := CloneTable(t)
	out.Data[row][col] = value
	return out, nil
}

// SetHeader returns a copy of t with the header at col set to value.
func SetHeader(t TableContent, col int, value string) (TableContent, error) {
	if col < 0 || col >= t.Cols {
		return TableContent{}, fmt.Errorf("col %d out of range [0,%d)", col, t.Cols)
	}
	out := CloneTable(t)
	out.Headers[col] = value
	return out, nil
}

// ResizeCols returns a copy of t with the column count changed to cols.
// Growing pads every row and the header slice with empty strings. Shrinking
// truncates every row, discarding the out-of-range cells; growing back
// afterwards does not restore them. The loss is the documented policy for
// column removal, not an accident.
func ResizeCols(t TableContent, cols int) TableContent {
	if cols < 0 {
		cols = 0
	}
	out := TableContent{
		Rows:    t.Rows,
		Cols:    cols,
		Headers: resizeRow(t.Headers, cols),
		Data:    make([][]string, len(t.Data)),
	}
	for i, row := range t.Data {
		out.Data[i] = resizeRow(row, cols)
	}
	return out
}

// ResizeRows returns a copy of t with the row count changed to rows.
// Growing appends fresh empty rows sized to the current column count;
// shrinking truncates the row sequence.
func ResizeRows(t TableContent, rows int) TableContent {
	if rows < 0 {
		rows = 0
	}
	out := TableContent{
		Rows:    rows,
		Cols:    t.Cols,
		Headers: append([]string(nil), t.Headers...),
		Data:    make([][]string, rows),
	}
	for i := 0; i < rows; i++ {
		if i < len(t.Data) {
			out.Data[i] = resizeRow(t.Data[i], t.Cols)
		} else {
			out.Data[i] = make([]string, t.Cols)
		}
	}
	return out
}

// NormalizeTable repairs a table whose declared dimensions drifted from the
// actual slice lengths, as can happen with hand-edited imports. Declared
// Rows/Cols win: slices are padded or truncated to match.
func NormalizeTable(t TableContent) TableContent {
	out := ResizeRows(t, t.Rows)
	return ResizeCols(out, t.Cols)
}

// Validate checks that Rows/Cols match the actual dimensions.
func (t *TableContent) Validate() error {
	if t.Rows < 0 || t.Cols < 0 {
		return fmt.Errorf("table dimensions must not be negative (%dx%d)", t.Rows, t.Cols)
	}
	if len(t.Headers) != t.Cols {
		return fmt.Errorf("table declares %d cols but has %d headers", t.Cols, len(t.Headers))
	}
	if len(t.Data) != t.Rows {
		return fmt.Errorf("table declares %d rows but has %d", t.Rows, len(t.Data))
	}
	for i, row := range t.Data {
		if len(row) != t.Cols {
			return fmt.Errorf("table row %d has %d cells, want %d", i, len(row), t.Cols)
		}
	}
	return nil
}

// resizeRow copies row into a fresh slice of length n, padding with empty
// strings or truncating as needed.
func resizeRow(row []string, n int) []string {
	out := make([]string, n)
	copy(out, row)
	return out
}
