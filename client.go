package payzcore

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-payzcore/core"
	"github.com/goliatone/go-payzcore/transport"
)

// Client is the entry point to the PayzCore API. It is safe for concurrent
// use; all settings are fixed by New.
type Client struct {
	config    core.Config
	deps      core.Dependencies
	transport *transport.Transport

	Payments *Payments
	Projects *Projects
}

// New resolves cfg against the configured providers and builds a client.
// The API key may come from cfg or from a config provider, but must be set.
func New(cfg core.Config, opts ...core.Option) (*Client, error) {
	resolved, deps, err := core.Resolve(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resolved.APIKey) == "" {
		return nil, goerrors.NewValidation("payzcore: api key is required", goerrors.FieldError{
			Field:   "api_key",
			Message: "required",
		}).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ServiceErrorBadInput)
	}

	t, err := transport.NewTransport(transport.ConfigFrom(resolved, deps))
	if err != nil {
		return nil, err
	}
	return newClient(resolved, deps, t), nil
}

// NewWithTransport builds a client around an existing transport.
func NewWithTransport(t *transport.Transport) (*Client, error) {
	if t == nil {
		return nil, goerrors.New("payzcore: transport is required", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.ServiceErrorInternal)
	}
	cfg := core.DefaultConfig()
	cfg.BaseURL = t.BaseURL()
	cfg.MaxRetries = t.MaxRetries()
	cfg.MasterKey = t.AuthHeader() == transport.HeaderMasterKey
	return newClient(cfg, core.Dependencies{}, t), nil
}

func newClient(cfg core.Config, deps core.Dependencies, t *transport.Transport) *Client {
	client := &Client{
		config:    cfg,
		deps:      deps,
		transport: t,
	}
	client.Payments = &Payments{transport: t}
	client.Projects = &Projects{transport: t}
	return client
}

// Config returns the resolved configuration. The API key is redacted.
func (c *Client) Config() core.Config {
	if c == nil {
		return core.Config{}
	}
	cfg := c.config
	if cfg.APIKey != "" {
		cfg.APIKey = redactedKey
	}
	return cfg
}

func (c *Client) Dependencies() core.Dependencies {
	if c == nil {
		return core.Dependencies{}
	}
	return c.deps
}

func (c *Client) Transport() *transport.Transport {
	if c == nil {
		return nil
	}
	return c.transport
}

func (c *Client) CreatePayment(ctx context.Context, req core.CreatePaymentRequest) (core.CreatePaymentResponse, error) {
	return c.Payments.Create(ctx, req)
}

func (c *Client) ListPayments(ctx context.Context, params core.ListPaymentsParams) (core.PaymentList, error) {
	return c.Payments.List(ctx, params)
}

func (c *Client) GetPayment(ctx context.Context, id string) (core.PaymentDetail, error) {
	return c.Payments.Get(ctx, id)
}

func (c *Client) CancelPayment(ctx context.Context, id string) (core.PaymentDetail, error) {
	return c.Payments.Cancel(ctx, id)
}

func (c *Client) ConfirmPayment(
	ctx context.Context,
	id string,
	req core.ConfirmPaymentRequest,
) (core.ConfirmPaymentResponse, error) {
	return c.Payments.Confirm(ctx, id, req)
}

func (c *Client) ListProjects(ctx context.Context) ([]core.Project, error) {
	return c.Projects.List(ctx)
}

func (c *Client) CreateProject(ctx context.Context, req core.CreateProjectRequest) (core.Project, error) {
	return c.Projects.Create(ctx, req)
}

const redactedKey = "[redacted]"

var (
	_ core.PaymentService = (*Client)(nil)
	_ core.ProjectService = (*Client)(nil)
)
