package msg

// TableRequest creates a table with the given column families.
type TableRequest struct {
	Table    string   `json:"table"`
	Families []string `json:"families"`
}

// WriteCellRequest stores a single cell value.
type WriteCellRequest struct {
	RowKey string `json:"rowKey"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

type TableResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason"`
	Elapse  string `json:"elapse"`
	Table   string `json:"table,omitempty"`
	Exists  *bool  `json:"exists,omitempty"`
	Schema  any    `json:"schema,omitempty"`
}
