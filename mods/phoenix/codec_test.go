package phoenix

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestEncodeOpenConnection(t *testing.T) {
	payload, err := encodeOpenConnection("conn-1")
	require.NoError(t, err)
	require.Equal(t, "openConnection", gjson.GetBytes(payload, "request").String())
	require.Equal(t, "conn-1", gjson.GetBytes(payload, "connectionId").String())
	require.False(t, gjson.GetBytes(payload, "sql").Exists())
}

func TestEncodePrepareAndExecute(t *testing.T) {
	payload, err := encodePrepareAndExecute("conn-1", "SELECT 1", 0)
	require.NoError(t, err)
	require.Equal(t, "prepareAndExecute", gjson.GetBytes(payload, "request").String())
	require.Equal(t, "SELECT 1", gjson.GetBytes(payload, "sql").String())
	require.Equal(t, int64(DefaultMaxRowCount), gjson.GetBytes(payload, "maxRowCount").Int())

	payload, err = encodePrepareAndExecute("conn-1", "SELECT 1", 500)
	require.NoError(t, err)
	require.Equal(t, int64(500), gjson.GetBytes(payload, "maxRowCount").Int())
}

func TestEncodeCloseConnection(t *testing.T) {
	payload, err := encodeCloseConnection("conn-1")
	require.NoError(t, err)
	require.Equal(t, "closeConnection", gjson.GetBytes(payload, "request").String())
	require.Equal(t, "conn-1", gjson.GetBytes(payload, "connectionId").String())
}

func TestDecodeResults(t *testing.T) {
	body := []byte(`{
		"results": [{
			"columns": [{"name":"ID","logicalType":"BIGINT"},{"name":"NAME","logicalType":"VARCHAR"}],
			"rows": [[1,"hong"],[2,null]]
		}]
	}`)
	rsp, err := decodeResponse(body)
	require.NoError(t, err)
	result, err := rsp.toTabular()
	require.NoError(t, err)
	require.Equal(t, []Column{{Name: "ID", Type: "BIGINT"}, {Name: "NAME", Type: "VARCHAR"}}, result.Columns)
	require.Equal(t, 2, result.RowCount())
	require.Equal(t, IntCell(1), result.Rows[0]["ID"])
	require.Equal(t, StringCell("hong"), result.Rows[0]["NAME"])
	require.Equal(t, NullCell(), result.Rows[1]["NAME"])
}

func TestDecodeNumbers(t *testing.T) {
	body := []byte(`{"results":[{"columns":[{"name":"I"},{"name":"F"}],"rows":[[9007199254740993, 1.5]]}]}`)
	rsp, err := decodeResponse(body)
	require.NoError(t, err)
	result, err := rsp.toTabular()
	require.NoError(t, err)
	// integers must not round-trip through float64
	require.Equal(t, IntCell(9007199254740993), result.Rows[0]["I"])
	require.Equal(t, FloatCell(1.5), result.Rows[0]["F"])
}

func TestDecodeEmptyResults(t *testing.T) {
	rsp, err := decodeResponse([]byte(`{"results":[]}`))
	require.NoError(t, err)
	result, err := rsp.toTabular()
	require.NoError(t, err)
	require.Equal(t, 0, result.RowCount())
	require.Empty(t, result.Columns)
}

func TestDecodeZeroRows(t *testing.T) {
	body := []byte(`{"results":[{"columns":[{"name":"C1","logicalType":"INTEGER"}],"rows":[]}]}`)
	rsp, err := decodeResponse(body)
	require.NoError(t, err)
	result, err := rsp.toTabular()
	require.NoError(t, err)
	require.Len(t, result.Columns, 1)
	require.Empty(t, result.Rows)
}

func TestDecodeRemoteError(t *testing.T) {
	for _, body := range []string{
		`{"error":"Table undefined. tableName=NOPE"}`,
		`{"exception":"org.apache.phoenix.schema.TableNotFoundException"}`,
		`{"errorMessage":"Syntax error. Encountered \"FORM\""}`,
	} {
		_, err := decodeResponse([]byte(body))
		require.Error(t, err, body)
		require.Equal(t, RemoteError, FailureOf(err), body)
	}
}

func TestDecodeRemoteErrorNotData(t *testing.T) {
	// error object with a results field must still classify as RemoteError
	body := []byte(`{"results":[],"error":"boom"}`)
	_, err := decodeResponse(body)
	require.Error(t, err)
	require.Equal(t, RemoteError, FailureOf(err))
}

func TestDecodeMalformed(t *testing.T) {
	_, err := decodeResponse([]byte(`<html>502 Bad Gateway</html>`))
	require.Error(t, err)
	require.Equal(t, ProtocolError, FailureOf(err))
}

func TestDecodeRowWidthMismatch(t *testing.T) {
	body := []byte(`{"results":[{"columns":[{"name":"A"},{"name":"B"}],"rows":[[1]]}]}`)
	rsp, err := decodeResponse(body)
	require.NoError(t, err)
	_, err = rsp.toTabular()
	require.Error(t, err)
	require.Equal(t, ProtocolError, FailureOf(err))
}
