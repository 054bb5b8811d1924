// Package pollfish is the application facing surface of the bridge: native
// passthroughs, awaitable queries and listener registration.
package pollfish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pollfish/pollfish-bridge/internal/bridge"
	"github.com/pollfish/pollfish-bridge/internal/events"
	"github.com/pollfish/pollfish-bridge/internal/metrics"
	"github.com/pollfish/pollfish-bridge/internal/params"
	"github.com/pollfish/pollfish-bridge/internal/registry"
	"golang.org/x/sync/singleflight"
)

// DefaultQueryTimeout bounds how long a native query may take to answer.
const DefaultQueryTimeout = 5 * time.Second

var ErrQueryTimeout = errors.New("pollfish: native query timed out")

const (
	queryPanelOpen = "isPollfishPanelOpen"
	queryPresent   = "isPollfishPresent"
)

type Client struct {
	native       bridge.NativeBridge
	registry     *registry.Registry
	queries      singleflight.Group
	queryTimeout time.Duration
	logger       *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithQueryTimeout sets how long a native query may take. Non-positive
// values keep the default.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.queryTimeout = d
		}
	}
}

// New wires a client to a native bridge and the emitter that bridge pushes
// its events through.
func New(native bridge.NativeBridge, emitter registry.Emitter, opts ...Option) *Client {
	c := &Client{
		native:       native,
		queryTimeout: DefaultQueryTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registry = registry.New(emitter, c.logger)
	return c
}

// Init forwards p to the native SDK. Whether initialization worked is only
// reported through the init events; the returned error covers the boundary
// call itself.
func (c *Client) Init(p params.Params) error {
	args, err := marshalParams(p)
	if err != nil {
		return err
	}

	err = c.native.Init(
		args.androidAPIKey,
		args.iOSAPIKey,
		args.indicatorPosition,
		args.indicatorPadding,
		args.offerwallMode,
		args.releaseMode,
		args.rewardMode,
		args.requestUUID,
		args.userProperties,
		args.rewardInfo,
		args.clickID,
		args.signature,
	)
	metrics.RecordBridgeCall("init", err)
	if err != nil {
		c.logger.Error("native init failed", "err", err)
		return fmt.Errorf("native init: %w", err)
	}
	c.logger.Debug("native init requested",
		"position", p.IndicatorPosition().String(),
		"offerwall", p.OfferwallMode(),
		"release", p.ReleaseMode(),
		"reward", p.RewardMode(),
	)
	return nil
}

func (c *Client) Show() error {
	err := c.native.Show()
	metrics.RecordBridgeCall("show", err)
	if err != nil {
		c.logger.Error("native show failed", "err", err)
		return fmt.Errorf("native show: %w", err)
	}
	return nil
}

func (c *Client) Hide() error {
	err := c.native.Hide()
	metrics.RecordBridgeCall("hide", err)
	if err != nil {
		c.logger.Error("native hide failed", "err", err)
		return fmt.Errorf("native hide: %w", err)
	}
	return nil
}

// IsPollfishPanelOpen asks the SDK whether the survey panel is visible.
func (c *Client) IsPollfishPanelOpen(ctx context.Context) (bool, error) {
	return c.query(ctx, queryPanelOpen, c.native.IsPollfishPanelOpen)
}

// IsPollfishPresent asks the SDK whether a survey is available.
func (c *Client) IsPollfishPresent(ctx context.Context) (bool, error) {
	return c.query(ctx, queryPresent, c.native.IsPollfishPresent)
}

// query turns a callback style native query into a blocking call. Callers
// asking the same question at the same time share one native call.
func (c *Client) query(
	ctx context.Context,
	name string,
	call func(bridge.BoolCallback) error,
) (bool, error) {
	ch := c.queries.DoChan(name, func() (any, error) {
		start := time.Now()
		defer func() {
			metrics.QueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}()

		result := make(chan bool, 1)
		err := call(bridge.BoolCallbackFunc(func(v bool) {
			select {
			case result <- v:
			default:
			}
		}))
		metrics.RecordBridgeCall(name, err)
		if err != nil {
			return false, fmt.Errorf("native %s: %w", name, err)
		}

		timer := time.NewTimer(c.queryTimeout)
		defer timer.Stop()
		select {
		case v := <-result:
			return v, nil
		case <-timer.C:
			return false, ErrQueryTimeout
		}
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			c.logger.Warn("native query failed", "query", name, "err", res.Err)
			return false, res.Err
		}
		return res.Val.(bool), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// AddEventListener registers h for events of type t. See
// registry.Registry.AddEventListener.
func (c *Client) AddEventListener(t events.EventType, h registry.Handler) bool {
	return c.registry.AddEventListener(t, h)
}

func (c *Client) RemoveEventListener(t events.EventType, h registry.Handler) {
	c.registry.RemoveEventListener(t, h)
}

func (c *Client) RemoveAllListeners() {
	c.registry.RemoveAllListeners()
}

// Registry exposes the listener bookkeeping for inspection.
func (c *Client) Registry() *registry.Registry {
	return c.registry
}

// Close drops every listener the client holds.
func (c *Client) Close() {
	c.registry.Close()
}
