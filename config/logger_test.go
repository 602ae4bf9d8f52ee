package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestArticleLogger(t *testing.T) {
	cases := []struct {
		diagnostics string
		detailed    bool
		want        []zapcore.Level
		summary     bool
	}{
		{"detail", false, []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel, zapcore.ErrorLevel}, true},
		{"summary", false, []zapcore.Level{zapcore.ErrorLevel}, true},
		{"none", false, []zapcore.Level{zapcore.ErrorLevel}, false},
		{"none", true, []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel, zapcore.ErrorLevel}, true},
	}
	for _, tc := range cases {
		t.Run(tc.diagnostics, func(t *testing.T) {
			conf := LoggingConfig{Articles: ArticleLogConfig{Diagnostics: tc.diagnostics}, detailed: tc.detailed}

			core, logs := observer.New(zapcore.DebugLevel)
			log := conf.ArticleLogger(zap.New(core), "plos/pone.0001.xml")
			log.Debug("Unexpected tag in sec, ignoring")
			log.Warn("Lookup miss")
			log.Error("Broken article")

			entries := logs.AllUntimed()
			if len(entries) != len(tc.want) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tc.want))
			}
			for i, e := range entries {
				if e.Level != tc.want[i] {
					t.Errorf("entry %d level = %v, want %v", i, e.Level, tc.want[i])
				}
				if e.ContextMap()["article"] != "plos/pone.0001.xml" {
					t.Errorf("entry %d is missing article field: %v", i, e.ContextMap())
				}
			}
			if conf.SummarizeArticles() != tc.summary {
				t.Errorf("SummarizeArticles() = %v, want %v", conf.SummarizeArticles(), tc.summary)
			}
		})
	}
}

func TestArticleLogger_Silent(t *testing.T) {
	conf := LoggingConfig{Articles: ArticleLogConfig{Diagnostics: "summary"}}
	log := conf.ArticleLogger(zap.NewNop(), "a.xml")
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger derived from disabled one must stay disabled")
	}
}

func TestPrepare_FileLog(t *testing.T) {
	dir := t.TempDir()
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: filepath.Join(dir, "nlmc.log"), Mode: "overwrite"},
		Articles:      ArticleLogConfig{Diagnostics: "summary"},
	}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	log.Debug("not written")
	log.Info("Batch finished")
	_ = log.Sync()

	data, err := os.ReadFile(conf.FileLogger.Destination)
	if err != nil {
		t.Fatalf("file log was not created: %v", err)
	}
	if len(data) == 0 {
		t.Error("file log is empty")
	}
	if conf.detailed {
		t.Error("detailed logging must be set only for debug report")
	}

	panicLog := conf.PanicLogName()
	if _, err := os.Stat(panicLog); err != nil {
		t.Fatalf("panic log was not created: %v", err)
	}
	if err := conf.RemoveEmptyPanicLog(); err != nil {
		t.Fatalf("RemoveEmptyPanicLog() error: %v", err)
	}
	if _, err := os.Stat(panicLog); !os.IsNotExist(err) {
		t.Errorf("empty panic log was not removed: %v", err)
	}
	if err := conf.RemoveEmptyPanicLog(); err != nil {
		t.Errorf("second RemoveEmptyPanicLog() error: %v", err)
	}
}

func TestPrepare_DebugReport(t *testing.T) {
	dir := t.TempDir()
	rpt, name := prepareReport(t)
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none", Destination: filepath.Join(dir, "nlmc.log")},
		Articles:      ArticleLogConfig{Diagnostics: "none"},
	}
	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug report requires debug level file log")
	}
	log.Debug("Unexpected tag in body, ignoring")
	_ = log.Sync()
	_ = conf.RemoveEmptyPanicLog()

	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if files := readArchive(t, name); len(files["final.log"]) == 0 {
		t.Error("report must carry file log")
	}
	if !conf.SummarizeArticles() {
		t.Error("debug report must summarize articles")
	}
}
