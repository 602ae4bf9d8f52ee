package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"nlmc/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

// ArticleLogConfig controls how problems found inside articles are logged.
// "detail" logs every omitted element and unresolved reference, "summary"
// logs one line per degraded article, "none" leaves only errors.
type ArticleLogConfig struct {
	Diagnostics string `yaml:"diagnostics" validate:"required,oneof=none summary detail"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig     `yaml:"file"`
	ConsoleLogger LoggerConfig     `yaml:"console"`
	Articles      ArticleLogConfig `yaml:"articles"`

	// set when debug report is requested, report needs everything
	detailed bool
	panicLog string
}

// Prepare builds program logger: console split between stdout and stderr,
// optional file log. With debug report file log is always at debug level and
// both logs end up in the report.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	level, mode := conf.FileLogger.Level, conf.FileLogger.Mode
	if rpt != nil {
		conf.detailed = true
		level, mode = "debug", "overwrite"
	}

	file, redirected, err := conf.fileCore(level, mode, rpt)
	if err != nil {
		return nil, err
	}

	log := zap.New(zapcore.NewTee(append(consoleCores(conf.ConsoleLogger.Level), file)...), zap.AddCaller())
	if len(redirected) != 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(misc.GetAppName()), nil
}

// ArticleLogger returns logger for conversion of a single article.
func (conf *LoggingConfig) ArticleLogger(log *zap.Logger, source string) *zap.Logger {
	log = log.With(zap.String("article", source))
	if conf.detailed || conf.Articles.Diagnostics == "detail" {
		return log
	}
	if !log.Core().Enabled(zapcore.ErrorLevel) {
		return zap.NewNop()
	}
	return log.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))
}

// SummarizeArticles tells if degraded articles should be reported.
func (conf *LoggingConfig) SummarizeArticles() bool {
	return conf.detailed || conf.Articles.Diagnostics != "none"
}

// PanicLogName returns name of the file which receives crash output.
func (conf *LoggingConfig) PanicLogName() string {
	return filepath.Join(filepath.Dir(conf.FileLogger.Destination), misc.GetAppName()+"-panic.log")
}

// RemoveEmptyPanicLog stops crash output redirection and removes panic log if
// nothing was written there.
func (conf *LoggingConfig) RemoveEmptyPanicLog() error {
	if len(conf.panicLog) == 0 {
		return nil
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	name := conf.panicLog
	conf.panicLog = ""
	if fi, err := os.Stat(name); err == nil && fi.Size() == 0 {
		if err := os.Remove(name); err != nil {
			return fmt.Errorf("unable to remove empty panic log file '%s': %w", name, err)
		}
	}
	return nil
}

func consoleCores(level string) []zapcore.Core {
	var lowest zapcore.Level
	switch level {
	case "normal":
		lowest = zapcore.InfoLevel
	case "debug":
		lowest = zapcore.DebugLevel
	default:
		return []zapcore.Core{zapcore.NewNopCore()}
	}

	stdout := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stdout)), zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lowest <= lvl && lvl < zapcore.ErrorLevel
		}))
	stderr := zapcore.NewCore(shortErrorEncoder{zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stderr))}, zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))
	return []zapcore.Core{stderr, stdout}
}

func consoleEncoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}
	return ec
}

func openLog(name, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == "append" {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	return os.OpenFile(name, flags, 0644)
}

// fileCore opens file log and panic log next to it. When destination is not
// writable temporary file is used and its name returned.
func (conf *LoggingConfig) fileCore(level, mode string, rpt *Report) (zapcore.Core, string, error) {
	var enabled zapcore.Level
	switch level {
	case "debug":
		enabled = zapcore.DebugLevel
	case "normal":
		enabled = zapcore.InfoLevel
	default:
		return zapcore.NewNopCore(), "", nil
	}

	if ef, err := openLog(conf.PanicLogName(), mode); err == nil {
		conf.panicLog = capturePanics(ef, rpt)
	} else if ef, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err == nil {
		conf.panicLog = capturePanics(ef, rpt)
	}

	var redirected string
	f, err := openLog(conf.FileLogger.Destination, mode)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err != nil {
			return nil, "", fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
		}
		redirected = f.Name()
	}
	rpt.Store("final.log", f.Name())

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zapcore.NewCore(encoder, zapcore.Lock(f), zap.NewAtomicLevelAt(enabled)), redirected, nil
}

func capturePanics(f *os.File, rpt *Report) string {
	defer f.Close()
	if err := debug.SetCrashOutput(f, debug.CrashOptions{}); err != nil {
		return ""
	}
	rpt.Store("panic.log", f.Name())
	return f.Name()
}

// shortErrorEncoder prints only error message to console, verbose details
// (stack of wrapped errors) go to the file log.
type shortErrorEncoder struct {
	zapcore.Encoder
}

func (c shortErrorEncoder) Clone() zapcore.Encoder {
	return shortErrorEncoder{c.Encoder.Clone()}
}

func (c shortErrorEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	short := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		short = append(short, f)
	}
	return c.Encoder.EncodeEntry(ent, short)
}
