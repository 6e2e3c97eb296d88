package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-payzcore/core"
)

func TestNewBridge_ResolutionPrecedence(t *testing.T) {
	direct := &capturingLogger{id: "direct"}
	provider := &capturingProvider{loggers: map[string]*capturingLogger{
		DefaultLoggerName: {id: "provider"},
	}}

	bridge := NewBridge(provider, direct)
	if got := bridge.Logger.(*capturingLogger); got.id != "provider" {
		t.Fatalf("expected provider logger precedence, got %q", got.id)
	}

	bridge = NewBridge(nil, direct)
	if got := bridge.Logger.(*capturingLogger); got.id != "direct" {
		t.Fatalf("expected direct logger without provider, got %q", got.id)
	}
	if bridge.Provider == nil {
		t.Fatalf("expected provider wrapper around the direct logger")
	}

	if NewBridge(nil, nil).Logger == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestBridge_NamedComponentLoggers(t *testing.T) {
	provider := &capturingProvider{loggers: map[string]*capturingLogger{
		"payzcore":          {id: "root"},
		"payzcore.webhooks": {id: "webhooks"},
	}}
	bridge := NewBridge(provider, nil)

	if got := bridge.Named(" .webhooks ").(*capturingLogger); got.id != "webhooks" {
		t.Fatalf("expected component logger, got %q", got.id)
	}
	if got := bridge.Named("").(*capturingLogger); got.id != "root" {
		t.Fatalf("expected root logger for empty component, got %q", got.id)
	}
	if got := bridge.Named("transport").(*capturingLogger); got.id != "root" {
		t.Fatalf("expected fallback to root logger, got %q", got.id)
	}
	if (Bridge{}).Named("webhooks") == nil {
		t.Fatalf("expected nop logger from zero bridge")
	}
}

func TestBridge_UnknownComponentsKeepLogging(t *testing.T) {
	direct := &capturingLogger{id: "direct"}
	provider := &capturingProvider{loggers: map[string]*capturingLogger{
		"payzcore.webhooks": {id: "webhooks"},
	}}
	bridge := NewBridge(provider, direct)

	got, ok := bridge.Named("transport").(*capturingLogger)
	if !ok || got.id != "direct" {
		t.Fatalf("expected transport to log through the direct logger, got %#v", bridge.Named("transport"))
	}
	got.Info("request", "attempt", 1)
	if direct.lastInfo.msg != "request" {
		t.Fatalf("expected message on the direct logger")
	}

	root := &capturingLogger{id: "root"}
	wrapped := Bridge{Provider: glog.ProviderWithFallback(provider, nil), Logger: root}
	if got, ok := wrapped.Named("transport").(*capturingLogger); !ok || got.id != "root" {
		t.Fatalf("expected nop component logger to fall back to root, got %#v", wrapped.Named("transport"))
	}
	if got, ok := wrapped.Named("webhooks").(*capturingLogger); !ok || got.id != "webhooks" {
		t.Fatalf("expected wrapped provider to keep component loggers")
	}
}

func TestBridge_GoJobCompatibility(t *testing.T) {
	root := &capturingLogger{id: "root"}
	bridge := NewBridge(&capturingProvider{loggers: map[string]*capturingLogger{DefaultLoggerName: root}}, nil)

	jobProvider := bridge.JobProvider()
	if jobProvider == nil || bridge.JobLogger() == nil {
		t.Fatalf("expected go-job logger bridges")
	}
	jobProvider.GetLogger(DefaultLoggerName).Info("hello", "k", "v")

	if root.lastInfo.msg != "hello" {
		t.Fatalf("expected bridged message, got %q", root.lastInfo.msg)
	}
	if root.lastInfo.args[0] != "k" || root.lastInfo.args[1] != "v" {
		t.Fatalf("expected bridged args, got %#v", root.lastInfo.args)
	}
	if (Bridge{}).JobProvider() != nil || (Bridge{}).JobLogger() != nil {
		t.Fatalf("expected zero bridge to map to nil go-job loggers")
	}
}

func TestBridge_ClientOptionsInstallLogger(t *testing.T) {
	root := &capturingLogger{id: "root"}
	bridge := NewBridge(&capturingProvider{loggers: map[string]*capturingLogger{DefaultLoggerName: root}}, nil)

	_, deps, err := core.Resolve(core.Config{APIKey: "pk_test"}, bridge.ClientOptions()...)
	if err != nil {
		t.Fatalf("resolve client config: %v", err)
	}
	if got, ok := deps.Logger.(*capturingLogger); !ok || got.id != "root" {
		t.Fatalf("expected bridge logger to be installed, got %#v", deps.Logger)
	}
}

var (
	_ glog.Logger         = (*capturingLogger)(nil)
	_ glog.LoggerProvider = (*capturingProvider)(nil)
)

type capturingProvider struct {
	loggers map[string]*capturingLogger
}

func (p *capturingProvider) GetLogger(name string) glog.Logger {
	if p == nil {
		return nil
	}
	if logger, ok := p.loggers[name]; ok {
		return logger
	}
	return nil
}

type infoCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	id       string
	lastInfo infoCall
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Debug(string, ...any) {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}
func (l *capturingLogger) Fatal(string, ...any) {}

func (l *capturingLogger) Info(msg string, args ...any) {
	l.lastInfo = infoCall{
		msg:  msg,
		args: append([]any(nil), args...),
	}
}

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}
