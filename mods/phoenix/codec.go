package phoenix

import (
	"bytes"
	"encoding/json"
)

// JSON envelope of the query server wire protocol. Every operation is a POST
// of one request object to the single server endpoint.

const (
	requestOpenConnection    = "openConnection"
	requestPrepareAndExecute = "prepareAndExecute"
	requestCloseConnection   = "closeConnection"
)

// DefaultMaxRowCount caps rows fetched per statement. The cap protects the
// caller from unbounded memory use on an accidental full scan; exceeding it
// is normal truncation, not an error.
const DefaultMaxRowCount = 10000

type wireRequest struct {
	Request      string `json:"request"`
	ConnectionID string `json:"connectionId,omitempty"`
	SQL          string `json:"sql,omitempty"`
	MaxRowCount  int64  `json:"maxRowCount,omitempty"`
}

type wireColumn struct {
	Name        string `json:"name"`
	LogicalType string `json:"logicalType"`
}

type wireResult struct {
	Columns []wireColumn `json:"columns"`
	Rows    [][]any      `json:"rows"`
}

type wireResponse struct {
	ConnectionID string          `json:"connectionId"`
	Results      []wireResult    `json:"results"`
	Error        json.RawMessage `json:"error"`
	Exception    json.RawMessage `json:"exception"`
	ErrorMessage json.RawMessage `json:"errorMessage"`
}

func encodeOpenConnection(connID string) ([]byte, error) {
	return json.Marshal(&wireRequest{Request: requestOpenConnection, ConnectionID: connID})
}

func encodePrepareAndExecute(connID string, sql string, maxRowCount int64) ([]byte, error) {
	if maxRowCount <= 0 {
		maxRowCount = DefaultMaxRowCount
	}
	return json.Marshal(&wireRequest{
		Request:      requestPrepareAndExecute,
		ConnectionID: connID,
		SQL:          sql,
		MaxRowCount:  maxRowCount,
	})
}

func encodeCloseConnection(connID string) ([]byte, error) {
	return json.Marshal(&wireRequest{Request: requestCloseConnection, ConnectionID: connID})
}

// decodeResponse parses a response body. A well-formed body that carries an
// error field classifies as RemoteError and never reaches the normalizer as
// data; an unparsable body is ProtocolError.
func decodeResponse(body []byte) (*wireResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	rsp := &wireResponse{}
	if err := dec.Decode(rsp); err != nil {
		return nil, failuref(ProtocolError, TransportProtocol, "malformed response: %s", err.Error())
	}
	if msg, hasErr := rsp.remoteError(); hasErr {
		return nil, failuref(RemoteError, TransportProtocol, "%s", msg)
	}
	return rsp, nil
}

func (rsp *wireResponse) remoteError() (string, bool) {
	for _, raw := range []json.RawMessage{rsp.Error, rsp.Exception, rsp.ErrorMessage} {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, true
		}
		return string(raw), true
	}
	return "", false
}

// toTabular normalizes the first result of the response. An empty results
// array is a legitimate zero-row success.
func (rsp *wireResponse) toTabular() (*TabularResult, error) {
	if len(rsp.Results) == 0 {
		return emptyResult(), nil
	}
	res := rsp.Results[0]
	columns := make([]Column, len(res.Columns))
	for i, c := range res.Columns {
		columns[i] = Column{Name: c.Name, Type: c.LogicalType}
	}
	rows := make([]Row, 0, len(res.Rows))
	for _, values := range res.Rows {
		row, err := normalizeRow(columns, values)
		if err != nil {
			return nil, failuref(ProtocolError, TransportProtocol, "%s", err.Error())
		}
		rows = append(rows, row)
	}
	return &TabularResult{Columns: columns, Rows: rows}, nil
}
