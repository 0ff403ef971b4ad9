package phoenix

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

type CellKind int

const (
	CellNull CellKind = iota
	CellString
	CellInt
	CellFloat
	CellBool
	CellBytes
)

func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellInt:
		return "int"
	case CellFloat:
		return "float"
	case CellBool:
		return "bool"
	case CellBytes:
		return "bytes"
	default:
		return "null"
	}
}

// Cell is a tagged scalar value. Value is nil for CellNull, otherwise
// string, int64, float64, bool or []byte according to Kind.
type Cell struct {
	Kind  CellKind
	Value any
}

func NullCell() Cell              { return Cell{Kind: CellNull} }
func StringCell(v string) Cell    { return Cell{Kind: CellString, Value: v} }
func IntCell(v int64) Cell        { return Cell{Kind: CellInt, Value: v} }
func FloatCell(v float64) Cell    { return Cell{Kind: CellFloat, Value: v} }
func BoolCell(v bool) Cell        { return Cell{Kind: CellBool, Value: v} }
func BytesCell(v []byte) Cell     { return Cell{Kind: CellBytes, Value: v} }
func (c Cell) IsNull() bool       { return c.Kind == CellNull }
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Any())
}

// Any renders the cell as a plain JSON-encodable value,
// bytes as base64 so that binary survives the trip.
func (c Cell) Any() any {
	switch c.Kind {
	case CellNull:
		return nil
	case CellBytes:
		return base64.StdEncoding.EncodeToString(c.Value.([]byte))
	default:
		return c.Value
	}
}

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Row holds one cell per declared column, nulls explicit, never omitted keys.
type Row map[string]Cell

// TabularResult is the normalized column+row shape all callers consume,
// regardless of which transport produced it.
type TabularResult struct {
	Columns []Column
	Rows    []Row
}

func (t *TabularResult) RowCount() int {
	return len(t.Rows)
}

func emptyResult() *TabularResult {
	return &TabularResult{Columns: []Column{}, Rows: []Row{}}
}

// normalizeRow aligns raw positional values to the declared columns.
func normalizeRow(columns []Column, values []any) (Row, error) {
	if len(values) != len(columns) {
		return nil, fmt.Errorf("row has %d values for %d columns", len(values), len(columns))
	}
	row := make(Row, len(columns))
	for i, col := range columns {
		row[col.Name] = normalizeValue(values[i])
	}
	return row, nil
}

// normalizeValue maps a transport-native value to a tagged cell. Temporal
// values are rendered as text so no information a caller would need to
// re-render them is lost.
func normalizeValue(value any) Cell {
	switch v := value.(type) {
	case nil:
		return NullCell()
	case Cell:
		return v
	case string:
		return StringCell(v)
	case bool:
		return BoolCell(v)
	case int:
		return IntCell(int64(v))
	case int8:
		return IntCell(int64(v))
	case int16:
		return IntCell(int64(v))
	case int32:
		return IntCell(int64(v))
	case int64:
		return IntCell(v)
	case uint:
		return IntCell(int64(v))
	case uint8:
		return IntCell(int64(v))
	case uint16:
		return IntCell(int64(v))
	case uint32:
		return IntCell(int64(v))
	case uint64:
		return IntCell(int64(v))
	case float32:
		return FloatCell(float64(v))
	case float64:
		return FloatCell(v)
	case []byte:
		return BytesCell(v)
	case time.Time:
		return StringCell(v.Format(time.RFC3339Nano))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return IntCell(i)
		}
		if f, err := v.Float64(); err == nil {
			return FloatCell(f)
		}
		return StringCell(v.String())
	case *any:
		if v == nil {
			return NullCell()
		}
		return normalizeValue(*v)
	default:
		return StringCell(fmt.Sprintf("%v", v))
	}
}
