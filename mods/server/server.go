package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pqsgate/pqsgate/booter"
	"github.com/pqsgate/pqsgate/mods"
	"github.com/pqsgate/pqsgate/mods/hbase"
	"github.com/pqsgate/pqsgate/mods/logging"
	"github.com/pqsgate/pqsgate/mods/phoenix"
)

func init() {
	booter.Register(
		"pqsgate.io/gateway",
		func() *Config {
			return NewConfig()
		},
		func(conf *Config) (booter.Boot, error) {
			return NewServer(conf)
		},
	)

	defaultLogConf := logging.Config{
		Console:            false,
		Filename:           "-",
		Append:             true,
		RotateSchedule:     "@midnight",
		MaxSize:            10,
		MaxBackups:         1,
		MaxAge:             7,
		DefaultPrefixWidth: 10,
		DefaultLevel:       "INFO",
	}

	booter.Register(
		"pqsgate.io/logging",
		func() *logging.Config {
			conf := defaultLogConf
			return &conf
		},
		func(conf *logging.Config) (booter.Boot, error) {
			logging.Configure(conf)
			return &logging.Module{}, nil
		},
	)
}

type Config struct {
	Phoenix phoenix.Config
	HBase   hbase.Config
	Http    HttpConfig
}

type HttpConfig struct {
	Listen      string
	EnableCORS  bool
	WarmupGrace time.Duration
	NoWarmup    bool
}

func NewConfig() *Config {
	return &Config{
		Phoenix: phoenix.Config{
			Driver: phoenix.DriverConfig{
				Driver: phoenix.DefaultDriverName,
			},
			Protocol: phoenix.ProtocolConfig{
				OpenAttempts: phoenix.DefaultOpenAttempts,
				OpenInterval: phoenix.DefaultOpenInterval,
				MaxRowCount:  phoenix.DefaultMaxRowCount,
			},
		},
		Http: HttpConfig{
			Listen:      "127.0.0.1:5654",
			EnableCORS:  true,
			WarmupGrace: phoenix.DefaultWarmupGrace,
		},
	}
}

func NewServer(conf *Config) (booter.Boot, error) {
	if conf.Http.Listen == "" {
		return nil, fmt.Errorf("http listen address is not configured")
	}
	return &svr{conf: conf}, nil
}

type svr struct {
	conf   *Config
	log    logging.Log
	conn   *phoenix.Conn
	hbase  *hbase.Client
	warmup *phoenix.Warmup
	httpd  *http.Server
}

func (s *svr) Start() error {
	s.log = logging.GetLog("pqsgate")
	s.log.Infof("starting %s", mods.VersionString())

	s.conn = phoenix.New(&s.conf.Phoenix)
	if !s.conf.Http.NoWarmup {
		s.warmup = phoenix.NewWarmup(s.conn, s.conf.Http.WarmupGrace)
		if err := s.warmup.Start(); err != nil {
			return err
		}
	}

	if s.conf.HBase.Address != "" {
		s.hbase = hbase.NewClient(s.conf.HBase)
	}

	s.httpd = &http.Server{
		Addr:    s.conf.Http.Listen,
		Handler: s.Router(),
	}
	go func() {
		s.log.Infof("http listen %s", s.conf.Http.Listen)
		if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("http listen %s", err.Error())
		}
	}()
	return nil
}

func (s *svr) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.httpd != nil {
		s.httpd.Shutdown(ctx)
	}
	if s.warmup != nil {
		s.warmup.Stop()
	}
	if s.conn != nil {
		s.conn.Close(ctx)
	}
	if s.hbase != nil {
		s.hbase.Close()
	}
	s.log.Info("shutdown")
}
