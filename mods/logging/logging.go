package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Console                     bool          `json:"console"`
	Filename                    string        `json:"filename"`
	Append                      bool          `json:"append"`
	RotateSchedule              string        `json:"rotateSchedule"`
	MaxSize                     int           `json:"maxSize"`
	MaxBackups                  int           `json:"maxBackups"`
	MaxAge                      int           `json:"maxAge"`
	Compress                    bool          `json:"compress"`
	UTC                         bool          `json:"utc"`
	Levels                      []LevelConfig `json:"levels"`
	DefaultPrefixWidth          int           `json:"defaultPrefixWidth"`
	DefaultEnableSourceLocation bool          `json:"defaultEnableSourceLocation"`
	DefaultLevel                string        `json:"defaultLevel"`
}

type LevelConfig struct {
	Pattern              string `json:"pattern"`
	Level                string `json:"level"`
	EnableSourceLocation bool   `json:"enableSourceLocation"`
}

var rotateCron = cron.New()

var defaultWriter []*logWriter

// Configure applies the config to the process-wide default writers.
// Filename "-" writes to stdout, "." discards.
func Configure(cfg *Config) {
	for _, c := range cfg.Levels {
		levelConfig[c.Pattern] = ParseLogLevel(c.Level)
	}
	SetDefaultPrefixWidth(cfg.DefaultPrefixWidth)
	SetDefaultLevel(ParseLogLevel(cfg.DefaultLevel))
	SetDefaultEnableSourceLocation(cfg.DefaultEnableSourceLocation)

	switch cfg.Filename {
	case ".":
		defaultWriter = []*logWriter{}
	case "", "-":
		defaultWriter = []*logWriter{{Writer: os.Stdout, isTerm: true}}
	default:
		lj := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  !cfg.UTC,
		}
		if !cfg.Append {
			lj.Rotate()
		}
		if len(cfg.RotateSchedule) > 0 {
			_, err := rotateCron.AddFunc(cfg.RotateSchedule, func() {
				lj.Rotate()
			})
			if err == nil {
				go rotateCron.Run()
			} else {
				fmt.Fprintf(os.Stderr, "ERR logger rotate schedule %s", err.Error())
			}
		}
		if cfg.Console {
			defaultWriter = []*logWriter{
				{Writer: lj, isTerm: false},
				{Writer: os.Stdout, isTerm: true},
			}
		} else {
			defaultWriter = []*logWriter{{Writer: lj, isTerm: false}}
		}
	}
}

// Module lets the logging config participate in the boot sequence.
type Module struct {
}

func (m *Module) Start() error {
	return nil
}

func (m *Module) Stop() {
}

func GetLog(name string) Log {
	return &levelLogger{
		name:         name,
		level:        GetLevel(name),
		underlying:   defaultWriter,
		prefixWidth:  prefixWidthDefault,
		enableSrcLoc: enableSourceLocationDefault,
	}
}

func NewLog(name string, writer io.Writer) Log {
	return &levelLogger{
		name:         name,
		level:        GetLevel(name),
		underlying:   []*logWriter{{Writer: writer, isTerm: false}},
		prefixWidth:  prefixWidthDefault,
		enableSrcLoc: enableSourceLocationDefault,
	}
}

type logWriter struct {
	io.Writer
	isTerm bool
}

type levelLogger struct {
	name         string
	level        Level
	underlying   []*logWriter
	prefixWidth  int
	enableSrcLoc bool
}

func (l *levelLogger) SetLevel(level Level) { l.level = level }
func (l *levelLogger) Level() Level         { return l.level }

func (l *levelLogger) TraceEnabled() bool { return l.level <= LevelTrace }
func (l *levelLogger) DebugEnabled() bool { return l.level <= LevelDebug }
func (l *levelLogger) InfoEnabled() bool  { return l.level <= LevelInfo }
func (l *levelLogger) WarnEnabled() bool  { return l.level <= LevelWarn }
func (l *levelLogger) ErrorEnabled() bool { return l.level <= LevelError }

func (l *levelLogger) LogEnabled(lvl Level) bool { return l.level <= lvl }

func (l *levelLogger) Trace(m ...any) { l._logf(LevelTrace, 0, "", m) }
func (l *levelLogger) Debug(m ...any) { l._logf(LevelDebug, 0, "", m) }
func (l *levelLogger) Info(m ...any)  { l._logf(LevelInfo, 0, "", m) }
func (l *levelLogger) Warn(m ...any)  { l._logf(LevelWarn, 0, "", m) }
func (l *levelLogger) Error(m ...any) { l._logf(LevelError, 0, "", m) }

func (l *levelLogger) Tracef(format string, args ...any) { l._logf(LevelTrace, 0, format, args) }
func (l *levelLogger) Debugf(format string, args ...any) { l._logf(LevelDebug, 0, format, args) }
func (l *levelLogger) Infof(format string, args ...any)  { l._logf(LevelInfo, 0, format, args) }
func (l *levelLogger) Warnf(format string, args ...any)  { l._logf(LevelWarn, 0, format, args) }
func (l *levelLogger) Errorf(format string, args ...any) { l._logf(LevelError, 0, format, args) }
