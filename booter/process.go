package booter

import (
	"fmt"
	"os"
	"path/filepath"
)

// process level booter, driven by command line flags

var defaultBooter Booter
var fallbackConfigContent []byte
var fallbackPname string
var versionString string

func SetFallbackConfig(content []byte) {
	fallbackConfigContent = content
}

func SetFallbackPname(pname string) {
	fallbackPname = pname
}

func SetVersionString(str string) {
	versionString = str
}

func Pname() string {
	return pname
}

func VersionString() string {
	return versionString
}

var pname string
var configFile string

func Startup() {
	genConfig := false
	showHelp := false
	pname = fallbackPname

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c":
			if i+1 < len(args) {
				i++
				configFile = args[i]
			}
		case "--pname":
			if i+1 < len(args) {
				i++
				pname = args[i]
			}
		case "--gen-config":
			genConfig = true
		case "--version", "-v":
			fmt.Println(versionString)
			os.Exit(0)
		case "--help", "-h":
			showHelp = true
		}
	}

	if showHelp {
		exe := filepath.Base(os.Args[0])
		fmt.Printf("usage: %s [options]\n", exe)
		fmt.Println("  -c, --config <file>   config file path")
		fmt.Println("      --pname <name>    process name")
		fmt.Println("      --gen-config      print default config and exit")
		fmt.Println("  -v, --version         print version and exit")
		os.Exit(0)
	}

	if genConfig {
		fmt.Println(string(fallbackConfigContent))
		os.Exit(0)
	}

	var err error
	if configFile != "" {
		defaultBooter, err = NewWithConfigFiles(configFile)
	} else if len(fallbackConfigContent) > 0 {
		defaultBooter, err = NewWithConfig(fallbackConfigContent)
	} else {
		fmt.Fprintln(os.Stderr, "no config available")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err = defaultBooter.Startup(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		defaultBooter.Shutdown()
		os.Exit(1)
	}
}

func Shutdown() {
	if defaultBooter != nil {
		defaultBooter.Shutdown()
	}
}

func ShutdownAndExit(exitCode int) {
	if defaultBooter != nil {
		defaultBooter.ShutdownAndExit(exitCode)
	}
	os.Exit(exitCode)
}

func WaitSignal() {
	if defaultBooter != nil {
		defaultBooter.WaitSignal()
	}
}

func NotifySignal() {
	if defaultBooter != nil {
		defaultBooter.NotifySignal()
	}
}

func GetInstance(id string) Boot {
	if defaultBooter == nil {
		return nil
	}
	return defaultBooter.GetInstance(id)
}

func GetConfig(id string) any {
	if defaultBooter == nil {
		return nil
	}
	return defaultBooter.GetConfig(id)
}
