// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"nlmc/config"
	"nlmc/dom"
	"nlmc/nlm"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by convert subcommand
	NoDirs    bool
	Overwrite bool
	CodePage  encoding.Encoding
	Batch     Batch

	start         time.Time
	restoreStdLog func()
}

// Batch counts articles seen by a single program run.
type Batch struct {
	Converted int // clean conversions
	Degraded  int // converted with omissions or unresolved references
	Failed    int
}

func (b *Batch) Total() int {
	return b.Converted + b.Degraded + b.Failed
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}

// Backend returns XML access layer selected by configuration. Adapters cache
// compiled queries, so a single instance should be used for the whole run.
func (e *LocalEnv) Backend() dom.Backend {
	if e.Cfg != nil && e.Cfg.Converter.Backend == config.XMLBackendXpath {
		return dom.NewXPath()
	}
	return dom.NewEtree()
}

// ConverterOptions returns options for article converter, defaults when
// configuration is not loaded.
func (e *LocalEnv) ConverterOptions() nlm.Options {
	if e.Cfg == nil {
		return nlm.DefaultOptions()
	}
	return e.Cfg.Converter.Options()
}
