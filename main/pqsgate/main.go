package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pqsgate/pqsgate/booter"
	"github.com/pqsgate/pqsgate/mods"
	"github.com/pqsgate/pqsgate/mods/server"
)

func main() {
	if len(os.Args) > 1 && strings.ToLower(os.Args[1]) == "gen-config" {
		fmt.Println(string(server.DefaultFallbackConfig))
		return
	}
	booter.SetFallbackConfig(server.DefaultFallbackConfig)
	booter.SetFallbackPname(server.DefaultFallbackPname)
	booter.SetVersionString(mods.VersionString())
	booter.Startup()
	booter.WaitSignal()
	booter.ShutdownAndExit(0)
}
