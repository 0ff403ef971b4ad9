package phoenix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/pqsgate/pqsgate/mods/logging"
)

type ProtocolConfig struct {
	Address      string
	Timeout      time.Duration
	MaxRowCount  int64
	OpenAttempts int
	OpenInterval time.Duration
}

const (
	DefaultOpenAttempts = 10
	DefaultOpenInterval = 15 * time.Second
)

// protocolTransport talks to the query server's HTTP endpoint with the JSON
// envelope. The connection token issued by openConnection is carried on
// every subsequent call.
type protocolTransport struct {
	log    logging.Log
	conf   ProtocolConfig
	client *http.Client
	connID string
}

func NewProtocolTransport(conf ProtocolConfig) Transport {
	if conf.Timeout <= 0 {
		conf.Timeout = 30 * time.Second
	}
	if conf.MaxRowCount <= 0 {
		conf.MaxRowCount = DefaultMaxRowCount
	}
	if conf.OpenAttempts <= 0 {
		conf.OpenAttempts = DefaultOpenAttempts
	}
	if conf.OpenInterval <= 0 {
		conf.OpenInterval = DefaultOpenInterval
	}
	return &protocolTransport{
		log:    logging.GetLog("phoenix-protocol"),
		conf:   conf,
		client: &http.Client{Timeout: conf.Timeout},
	}
}

func (p *protocolTransport) Kind() TransportKind {
	return TransportProtocol
}

// Open performs the open-connection round trip, retrying up to the attempt
// budget with a fixed inter-attempt delay. The query server may still be
// warming up behind its backing cluster, so every failure kind is retried
// here; exhaustion surfaces as ConnectFailed.
func (p *protocolTransport) Open(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= p.conf.OpenAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return &TransportError{Kind: ConnectFailed, Transport: TransportProtocol, Err: ctx.Err()}
			case <-time.After(p.conf.OpenInterval):
			}
		}
		token, err := p.openOnce(ctx)
		if err == nil {
			p.connID = token
			p.log.Infof("connected to %s, connection %s", p.conf.Address, token)
			return nil
		}
		lastErr = err
		p.log.Warnf("open attempt %d/%d failed, %s", attempt, p.conf.OpenAttempts, err.Error())
	}
	return &TransportError{
		Kind:      ConnectFailed,
		Transport: TransportProtocol,
		Err:       fmt.Errorf("open retries exhausted after %d attempts: %w", p.conf.OpenAttempts, lastErr),
	}
}

func (p *protocolTransport) openOnce(ctx context.Context) (string, error) {
	clientID := uuid.Must(uuid.NewV4()).String()
	payload, err := encodeOpenConnection(clientID)
	if err != nil {
		return "", failuref(ProtocolError, TransportProtocol, "%s", err.Error())
	}
	body, err := p.post(ctx, payload)
	if err != nil {
		return "", err
	}
	rsp, err := decodeResponse(body)
	if err != nil {
		return "", err
	}
	if rsp.ConnectionID != "" {
		return rsp.ConnectionID, nil
	}
	// server accepted the client-generated id without echoing it
	return clientID, nil
}

func (p *protocolTransport) Execute(ctx context.Context, stmt *Statement) (*TabularResult, error) {
	if p.connID == "" {
		return nil, failuref(ConnectFailed, TransportProtocol, "no open connection")
	}
	payload, err := encodePrepareAndExecute(p.connID, stmt.SQL, p.conf.MaxRowCount)
	if err != nil {
		return nil, failuref(ProtocolError, TransportProtocol, "%s", err.Error())
	}
	body, err := p.post(ctx, payload)
	if err != nil {
		return nil, err
	}
	rsp, err := decodeResponse(body)
	if err != nil {
		return nil, err
	}
	return rsp.toTabular()
}

// Close is best-effort, failures are ignored.
func (p *protocolTransport) Close(ctx context.Context) error {
	if p.connID == "" {
		return nil
	}
	if payload, err := encodeCloseConnection(p.connID); err == nil {
		if _, err := p.post(ctx, payload); err != nil {
			p.log.Tracef("close connection %s, %s", p.connID, err.Error())
		}
	}
	p.connID = ""
	return nil
}

func (p *protocolTransport) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.conf.Address, bytes.NewReader(payload))
	if err != nil {
		return nil, failuref(ConnectFailed, TransportProtocol, "%s", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	rsp, err := p.client.Do(req)
	if err != nil {
		return nil, failuref(ConnectFailed, TransportProtocol, "%s", err.Error())
	}
	defer rsp.Body.Close()
	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, failuref(ConnectFailed, TransportProtocol, "read response: %s", err.Error())
	}
	if rsp.StatusCode != http.StatusOK {
		// error bodies still arrive as the JSON envelope; anything else is
		// the server (or a proxy in front of it) refusing the call
		if _, err := decodeResponse(body); err != nil {
			if FailureOf(err) == RemoteError {
				return nil, err
			}
		}
		return nil, failuref(ConnectFailed, TransportProtocol, "unexpected status %s", rsp.Status)
	}
	return body, nil
}
