package hbase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pqsgate/pqsgate/mods/logging"
)

// Client talks to the HBase REST gateway (stargate) with a small
// TTL cache in front of schema lookups.
type Client struct {
	log     logging.Log
	conf    Config
	httpCli *http.Client
	schemas *ttlcache.Cache[string, *TableSchema]
}

type Config struct {
	Address        string
	Timeout        time.Duration
	SchemaCacheTTL time.Duration
}

var ErrTableNotFound = errors.New("table not found")

func NewClient(conf Config) *Client {
	if conf.Timeout == 0 {
		conf.Timeout = 10 * time.Second
	}
	if conf.SchemaCacheTTL == 0 {
		conf.SchemaCacheTTL = 5 * time.Minute
	}
	cli := &Client{
		log:     logging.GetLog("hbase"),
		conf:    conf,
		httpCli: &http.Client{Timeout: conf.Timeout},
		schemas: ttlcache.New(
			ttlcache.WithTTL[string, *TableSchema](conf.SchemaCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *TableSchema](),
		),
	}
	go cli.schemas.Start()
	return cli
}

func (cli *Client) Close() {
	cli.schemas.Stop()
}

type TableSchema struct {
	Name         string         `json:"name"`
	ColumnSchema []ColumnFamily `json:"ColumnSchema"`
}

type ColumnFamily struct {
	Name string `json:"name"`
}

// CreateTable creates a table with the given column families.
// Creating a table that already exists replaces its schema,
// which is what the gateway does on PUT.
func (cli *Client) CreateTable(ctx context.Context, table string, families []string) error {
	if len(families) == 0 {
		return errors.New("at least one column family is required")
	}
	schema := &TableSchema{Name: table}
	for _, fam := range families {
		schema.ColumnSchema = append(schema.ColumnSchema, ColumnFamily{Name: fam})
	}
	body, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	rsp, err := cli.do(ctx, http.MethodPut, cli.endpoint(table, "schema"), body)
	if err != nil {
		return err
	}
	defer drain(rsp)
	if rsp.StatusCode != http.StatusOK && rsp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create table %q: %s", table, rsp.Status)
	}
	cli.schemas.Delete(table)
	return nil
}

func (cli *Client) TableExists(ctx context.Context, table string) (bool, error) {
	rsp, err := cli.do(ctx, http.MethodGet, cli.endpoint(table, "exists"), nil)
	if err != nil {
		return false, err
	}
	defer drain(rsp)
	switch rsp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("table %q exists: %s", table, rsp.Status)
	}
}

// GetSchema returns the table schema, served from the cache when fresh.
func (cli *Client) GetSchema(ctx context.Context, table string) (*TableSchema, error) {
	if item := cli.schemas.Get(table); item != nil {
		return item.Value(), nil
	}
	rsp, err := cli.do(ctx, http.MethodGet, cli.endpoint(table, "schema"), nil)
	if err != nil {
		return nil, err
	}
	defer drain(rsp)
	if rsp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("table %q schema: %s", table, rsp.Status)
	}
	schema := &TableSchema{}
	if err := json.NewDecoder(rsp.Body).Decode(schema); err != nil {
		return nil, fmt.Errorf("table %q schema: %w", table, err)
	}
	cli.schemas.Set(table, schema, ttlcache.DefaultTTL)
	return schema, nil
}

// PutCell stores a single cell. column is "family:qualifier".
func (cli *Client) PutCell(ctx context.Context, table string, rowKey string, column string, value []byte) error {
	if !strings.Contains(column, ":") {
		return fmt.Errorf("column %q must be family:qualifier", column)
	}
	cellSet := map[string]any{
		"Row": []map[string]any{{
			"key": base64.StdEncoding.EncodeToString([]byte(rowKey)),
			"Cell": []map[string]any{{
				"column": base64.StdEncoding.EncodeToString([]byte(column)),
				"$":      base64.StdEncoding.EncodeToString(value),
			}},
		}},
	}
	body, err := json.Marshal(cellSet)
	if err != nil {
		return err
	}
	rsp, err := cli.do(ctx, http.MethodPut, cli.endpoint(table, rowKey, column), body)
	if err != nil {
		return err
	}
	defer drain(rsp)
	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("put cell %s/%s: %s", table, rowKey, rsp.Status)
	}
	return nil
}

func (cli *Client) endpoint(parts ...string) string {
	sb := strings.Builder{}
	sb.WriteString(strings.TrimSuffix(cli.conf.Address, "/"))
	for _, p := range parts {
		sb.WriteString("/")
		sb.WriteString(url.PathEscape(p))
	}
	return sb.String()
}

func (cli *Client) do(ctx context.Context, method string, endpoint string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	cli.log.Tracef("%s %s", method, endpoint)
	return cli.httpCli.Do(req)
}

func drain(rsp *http.Response) {
	io.Copy(io.Discard, rsp.Body)
	rsp.Body.Close()
}
