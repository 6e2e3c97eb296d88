package payzcore

import "github.com/goliatone/go-payzcore/core"

type Config = core.Config

type Option = core.Option

type Dependencies = core.Dependencies
type Logger = core.Logger
type LoggerProvider = core.LoggerProvider
type MetricsRecorder = core.MetricsRecorder
type HTTPDoer = core.HTTPDoer

type PaymentService = core.PaymentService
type ProjectService = core.ProjectService

type APIError = core.APIError

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithHTTPClient      = core.WithHTTPClient
	WithSleeper         = core.WithSleeper
	WithClock           = core.WithClock
	WithMaxRetries      = core.WithMaxRetries
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}
