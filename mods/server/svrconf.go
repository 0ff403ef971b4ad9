package server

import (
	_ "embed"
)

//go:embed svrconf.hcl
var DefaultFallbackConfig []byte

var DefaultFallbackPname string = "pqsgate"

func (s *svr) GetConfig() string {
	return string(DefaultFallbackConfig)
}
