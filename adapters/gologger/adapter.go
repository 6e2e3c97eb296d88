package gologger

import (
	"strings"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-payzcore/core"
)

const DefaultLoggerName = "payzcore"

// Bridge carries one resolved glog pair to the payzcore client, its
// components and go-job workers.
type Bridge struct {
	Provider glog.LoggerProvider
	Logger   glog.Logger

	// components is the caller's provider before glog.Resolve wraps it with
	// a nop fallback.
	components glog.LoggerProvider
}

// NewBridge resolves with precedence provider > logger > nop.
func NewBridge(provider glog.LoggerProvider, logger glog.Logger) Bridge {
	resolvedProvider, resolvedLogger := glog.Resolve(DefaultLoggerName, provider, logger)
	return Bridge{Provider: resolvedProvider, Logger: resolvedLogger, components: provider}
}

// Named returns the logger of a payzcore component; "webhooks" resolves
// "payzcore.webhooks" from the provider. Components the provider does not
// know, or maps to a nop logger, log through the root Logger.
func (b Bridge) Named(component string) glog.Logger {
	root := glog.Ensure(b.Logger)
	component = strings.Trim(strings.TrimSpace(component), ".")
	provider := b.components
	if provider == nil {
		provider = b.Provider
	}
	if component == "" || provider == nil {
		return root
	}
	logger := provider.GetLogger(DefaultLoggerName + "." + component)
	if logger == nil || logger == glog.Nop() {
		return root
	}
	return logger
}

// ClientOptions returns the payzcore.New options that install the pair.
func (b Bridge) ClientOptions() []core.Option {
	return []core.Option{
		core.WithLoggerProvider(b.Provider),
		core.WithLogger(b.Logger),
	}
}

func (b Bridge) JobProvider() job.LoggerProvider {
	if b.Provider == nil {
		return nil
	}
	return job.GoLoggerProvider(b.Provider)
}

func (b Bridge) JobLogger() job.Logger {
	if b.Logger == nil {
		return nil
	}
	return job.GoLogger(b.Logger)
}
