package booter

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

type Booter interface {
	Startup() error
	Shutdown()
	ShutdownAndExit(exitCode int)

	WaitSignal()
	NotifySignal()

	GetInstance(id string) Boot
	GetConfig(id string) any
}

type boot struct {
	moduleDefs []*Definition
	wrappers   []*wrapper
	quitChan   chan os.Signal
}

type wrapper struct {
	id   string
	def  *Definition
	real Boot
	conf any
}

var bootlog = log.New(os.Stdout, "booter ", log.LstdFlags|log.Lmsgprefix)

func NewWithDefinitions(definitions []*Definition) (Booter, error) {
	return &boot{moduleDefs: definitions}, nil
}

func NewWithConfig(content []byte) (Booter, error) {
	defs, err := LoadDefinitions(content)
	if err != nil {
		return nil, err
	}
	return NewWithDefinitions(defs)
}

func NewWithConfigFiles(files ...string) (Booter, error) {
	defs, err := LoadDefinitionFiles(files)
	if err != nil {
		return nil, err
	}
	return NewWithDefinitions(defs)
}

func (bt *boot) Startup() error {
	bootlog.Println(len(bt.moduleDefs), "modules defined")
	for _, def := range bt.moduleDefs {
		if def.Disabled {
			bootlog.Println(def.Id, "disabled")
			continue
		}
		fact := getFactory(def.Id)
		if fact == nil {
			return fmt.Errorf("module %s is not found", def.Id)
		}
		config := fact.NewConfig()
		if def.Config != NilConfig {
			if err := EvalObject(def.Id, config, def.Config); err != nil {
				return fmt.Errorf("config %s, %s", def.Id, err.Error())
			}
		}
		mod, err := fact.NewInstance(config)
		if err != nil {
			return fmt.Errorf("instance %s, %s", def.Id, err.Error())
		}
		bt.wrappers = append(bt.wrappers, &wrapper{id: def.Id, def: def, real: mod, conf: config})
	}
	for _, wrap := range bt.wrappers {
		bootlog.Println("start", wrap.id)
		if err := wrap.real.Start(); err != nil {
			return fmt.Errorf("mod start %s, %s", wrap.id, err.Error())
		}
	}
	return nil
}

func (bt *boot) Shutdown() {
	for i := len(bt.wrappers) - 1; i >= 0; i-- {
		wrap := bt.wrappers[i]
		bootlog.Println("stop", wrap.id)
		wrap.real.Stop()
	}
}

func (bt *boot) ShutdownAndExit(exitCode int) {
	bt.Shutdown()
	os.Exit(exitCode)
}

func (bt *boot) WaitSignal() {
	bt.quitChan = make(chan os.Signal, 1)
	signal.Notify(bt.quitChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-bt.quitChan
}

func (bt *boot) NotifySignal() {
	if bt.quitChan != nil {
		bt.quitChan <- syscall.SIGINT
	}
}

func (bt *boot) GetInstance(id string) Boot {
	for _, mod := range bt.wrappers {
		if mod.id == id {
			return mod.real
		}
	}
	return nil
}

func (bt *boot) GetConfig(id string) any {
	for _, mod := range bt.wrappers {
		if mod.id == id {
			return mod.conf
		}
	}
	return nil
}
