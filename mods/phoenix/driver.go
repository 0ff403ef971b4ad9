package phoenix

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"slices"
	"time"

	_ "github.com/apache/calcite-avatica-go/v5"
	"github.com/pqsgate/pqsgate/mods/logging"
)

type DriverConfig struct {
	// Driver is the database/sql driver name, "avatica" unless overridden.
	Driver string
	// DSN is the data source name, the query server URL for avatica.
	DSN string
	// Disabled forces the capability probe to report Unavailable.
	Disabled bool
	Timeout  time.Duration
}

const DefaultDriverName = "avatica"

// driverTransport is a thin pass-through to a database/sql driver. Its one
// nontrivial responsibility is failure classification: a missing driver is
// Unavailable (a static property of the deployment), a rejected handshake is
// ConnectFailed. Neither is retried here, retries are the protocol
// transport's job.
type driverTransport struct {
	log  logging.Log
	conf DriverConfig
	db   *sql.DB
}

func NewDriverTransport(conf DriverConfig) Transport {
	if conf.Driver == "" {
		conf.Driver = DefaultDriverName
	}
	if conf.Timeout <= 0 {
		conf.Timeout = 10 * time.Second
	}
	return &driverTransport{
		log:  logging.GetLog("phoenix-driver"),
		conf: conf,
	}
}

func (d *driverTransport) Kind() TransportKind {
	return TransportDriver
}

func (d *driverTransport) Open(ctx context.Context) error {
	if d.conf.Disabled {
		return failuref(Unavailable, TransportDriver, "driver transport disabled by configuration")
	}
	if !slices.Contains(sql.Drivers(), d.conf.Driver) {
		return failuref(Unavailable, TransportDriver, "driver %q is not registered", d.conf.Driver)
	}
	db, err := sql.Open(d.conf.Driver, d.conf.DSN)
	if err != nil {
		return failuref(Unavailable, TransportDriver, "%s", err.Error())
	}
	pingCtx, cancel := context.WithTimeout(ctx, d.conf.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return failuref(ConnectFailed, TransportDriver, "%s", err.Error())
	}
	d.db = db
	d.log.Infof("connected to %s via %q", d.conf.DSN, d.conf.Driver)
	return nil
}

func (d *driverTransport) Execute(ctx context.Context, stmt *Statement) (*TabularResult, error) {
	if d.db == nil {
		return nil, failuref(ConnectFailed, TransportDriver, "no open connection")
	}
	if stmt.Kind == StatementExec {
		if _, err := d.db.ExecContext(ctx, stmt.SQL); err != nil {
			return nil, d.classify(err)
		}
		return emptyResult(), nil
	}

	rows, err := d.db.QueryContext(ctx, stmt.SQL)
	if err != nil {
		return nil, d.classify(err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, failuref(ProtocolError, TransportDriver, "column metadata: %s", err.Error())
	}
	columns := make([]Column, len(colTypes))
	for i, ct := range colTypes {
		columns[i] = Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
	}

	result := &TabularResult{Columns: columns, Rows: []Row{}}
	for rows.Next() {
		values := make([]any, len(columns))
		for i := range values {
			values[i] = new(any)
		}
		if err := rows.Scan(values...); err != nil {
			return nil, d.classify(err)
		}
		row, err := normalizeRow(columns, values)
		if err != nil {
			return nil, failuref(ProtocolError, TransportDriver, "%s", err.Error())
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, d.classify(err)
	}
	return result, nil
}

func (d *driverTransport) Close(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

func (d *driverTransport) classify(err error) error {
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return failuref(ConnectFailed, TransportDriver, "%s", err.Error())
	}
	return failuref(RemoteError, TransportDriver, "%s", err.Error())
}
