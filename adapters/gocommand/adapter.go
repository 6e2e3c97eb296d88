package gocommand

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

// ValidateMessage runs the go-command message checks and requires a
// non-empty Type().
func ValidateMessage(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

// Bus registers handlers in a go-command registry, subscribes them on the
// go-command dispatcher and keeps the subscriptions so Close can release
// them together. The dispatcher is process wide.
type Bus struct {
	registry *command.Registry

	mu            sync.Mutex
	subscriptions []commanddispatcher.Subscription
}

func NewBus(registry *command.Registry) *Bus {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &Bus{registry: registry}
}

func (b *Bus) Registry() *command.Registry {
	if b == nil {
		return nil
	}
	return b.registry
}

// Register adds cmd to the registry only; use Handle to also subscribe it.
func (b *Bus) Register(cmd any) error {
	if err := b.ready(); err != nil {
		return err
	}
	return b.registry.RegisterCommand(cmd)
}

func (b *Bus) AddResolver(key string, resolver command.Resolver) error {
	if err := b.ready(); err != nil {
		return err
	}
	return b.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into a go-job queue registry
// during Initialize.
func (b *Bus) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return b.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (b *Bus) HasResolver(key string) bool {
	if b == nil || b.registry == nil {
		return false
	}
	return b.registry.HasResolver(strings.TrimSpace(key))
}

func (b *Bus) Initialize() error {
	if err := b.ready(); err != nil {
		return err
	}
	return b.registry.Initialize()
}

// Len reports the number of live subscriptions.
func (b *Bus) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscriptions)
}

// Close unsubscribes every handler added through the bus.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	subscriptions := b.subscriptions
	b.subscriptions = nil
	b.mu.Unlock()
	unsubscribe(subscriptions)
}

func (b *Bus) ready() error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return nil
}

func (b *Bus) track(subscription commanddispatcher.Subscription) {
	if subscription == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = append(b.subscriptions, subscription)
}

// rollback releases subscriptions added after mark.
func (b *Bus) rollback(mark int) {
	b.mu.Lock()
	if mark > len(b.subscriptions) {
		mark = len(b.subscriptions)
	}
	added := append([]commanddispatcher.Subscription(nil), b.subscriptions[mark:]...)
	b.subscriptions = b.subscriptions[:mark]
	b.mu.Unlock()
	unsubscribe(added)
}

// Handle registers cmd and subscribes it on the dispatcher.
func Handle[T any](b *Bus, cmd command.Commander[T], runnerOpts ...runner.Option) error {
	if err := b.ready(); err != nil {
		return err
	}
	if cmd == nil {
		return fmt.Errorf("gocommand: command is required")
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := b.registry.RegisterCommand(cmd); err != nil {
		unsubscribe([]commanddispatcher.Subscription{subscription})
		return err
	}
	b.track(subscription)
	return nil
}

// HandleQuery registers qry and subscribes it on the dispatcher.
func HandleQuery[T any, R any](b *Bus, qry command.Querier[T, R], runnerOpts ...runner.Option) error {
	if err := b.ready(); err != nil {
		return err
	}
	if qry == nil {
		return fmt.Errorf("gocommand: query is required")
	}
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := b.registry.RegisterCommand(qry); err != nil {
		unsubscribe([]commanddispatcher.Subscription{subscription})
		return err
	}
	b.track(subscription)
	return nil
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func unsubscribe(subscriptions []commanddispatcher.Subscription) {
	for _, subscription := range subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}
