package msg

import (
	"fmt"

	"github.com/pqsgate/pqsgate/mods/phoenix"
)

type QueryRequest struct {
	SqlText     string `json:"q"`
	MaxRowCount int    `json:"maxRowCount,omitempty"`
}

type QueryResponse struct {
	Success    bool       `json:"success"`
	Reason     string     `json:"reason"`
	Suggestion string     `json:"suggestion,omitempty"`
	Elapse     string     `json:"elapse"`
	Data       *QueryData `json:"data,omitempty"`
}

type QueryData struct {
	Columns  []string `json:"columns"`
	Types    []string `json:"types"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"rowCount"`
}

// NewQueryData flattens a tabular result into the response envelope,
// keeping the column order of the result.
func NewQueryData(result *phoenix.TabularResult) *QueryData {
	data := &QueryData{
		Columns: make([]string, len(result.Columns)),
		Types:   make([]string, len(result.Columns)),
		Rows:    make([][]any, 0, len(result.Rows)),
	}
	for i, col := range result.Columns {
		data.Columns[i] = col.Name
		data.Types[i] = col.Type
	}
	for _, row := range result.Rows {
		rec := make([]any, len(result.Columns))
		for i, col := range result.Columns {
			rec[i] = row[col.Name].Any()
		}
		data.Rows = append(data.Rows, rec)
	}
	data.RowCount = len(data.Rows)
	return data
}

// RowsMessage renders the reason string for a successful query.
func RowsMessage(n int) string {
	if n == 1 {
		return "a row selected"
	}
	return fmt.Sprintf("%d rows selected", n)
}
