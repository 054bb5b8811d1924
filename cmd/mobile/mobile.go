// Package mobile is the gomobile entry point. Native hosts register their
// NativeBridge, push SDK events through Emit and drive the SDK with the
// functions below. It keeps one process-wide client.
package mobile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/pollfish/pollfish-bridge/internal/bridge"
	"github.com/pollfish/pollfish-bridge/internal/events"
	"github.com/pollfish/pollfish-bridge/internal/logger"
	"github.com/pollfish/pollfish-bridge/internal/params"
	"github.com/pollfish/pollfish-bridge/internal/pollfish"
)

// Event names, as emitted by the native SDK.
const (
	PollfishClosedListener                   = string(events.PollfishClosed)
	PollfishOpenedListener                   = string(events.PollfishOpened)
	PollfishSurveyNotAvailableListener       = string(events.SurveyNotAvailable)
	PollfishUserRejectedSurveyListener       = string(events.UserRejectedSurvey)
	PollfishUserNotEligibleListener          = string(events.UserNotEligible)
	PollfishSurveyReceivedListener           = string(events.SurveyReceived)
	PollfishSurveyCompletedListener          = string(events.SurveyCompleted)
	PollfishInitFailedWithNullKeyListener    = string(events.InitFailedWithNullKey)
	PollfishInitiatedWithParamsListener      = string(events.InitiatedWithParams)
	PollfishInitiatedWithParamsErrorListener = string(events.InitiatedWithParamsError)
)

// Indicator positions.
const (
	PositionTopLeft     = int(params.PositionTopLeft)
	PositionTopRight    = int(params.PositionTopRight)
	PositionMiddleLeft  = int(params.PositionMiddleLeft)
	PositionMiddleRight = int(params.PositionMiddleRight)
	PositionBottomLeft  = int(params.PositionBottomLeft)
	PositionBottomRight = int(params.PositionBottomRight)
)

// EventListener receives SDK events. payload is the JSON the native side
// emitted, empty when the event has none.
type EventListener interface {
	OnEvent(eventType string, payload string)
}

// listenerHandler adapts an EventListener to registry.Handler. It is a
// comparable value, so the same listener always maps to the same handler.
type listenerHandler struct {
	l EventListener
}

func (h listenerHandler) HandleEvent(e events.Event) {
	h.l.OnEvent(string(e.Type), string(e.Data))
}

var (
	mu      sync.Mutex
	emitter *events.Emitter
	client  *pollfish.Client
	slogger = logger.New(logger.Config{Level: os.Getenv("LOG_LEVEL"), Format: "text"})
)

// ErrNilBuilder is returned by Init for a nil or never configured Builder.
var ErrNilBuilder = errors.New("mobile: builder is nil")

// RegisterBridge installs the native bridge and creates the client. Calling
// it again replaces the bridge and drops every listener. A nil bridge acts
// like Reset.
func RegisterBridge(b bridge.NativeBridge) {
	mu.Lock()
	defer mu.Unlock()

	if client != nil {
		client.Close()
	}
	if b == nil {
		slogger.Warn("nil native bridge registered, resetting")
		client = nil
		emitter = nil
		bridge.Unregister()
		return
	}
	bridge.Register(b)
	emitter = events.NewEmitter(slogger)
	client = pollfish.New(b, emitter, pollfish.WithLogger(slogger))
	slogger.Info("native bridge registered")
}

// Reset drops the client, its listeners and the registered bridge.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	if client != nil {
		client.Close()
	}
	client = nil
	emitter = nil
	bridge.Unregister()
}

// Registered reports whether a native bridge is installed.
func Registered() bool {
	_, err := bridge.Safe()
	return err == nil
}

func current() (*pollfish.Client, *events.Emitter, error) {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil, nil, bridge.ErrNotRegistered
	}
	return client, emitter, nil
}

// Emit is called by native code for every SDK event.
func Emit(eventType string, payload string) {
	_, em, err := current()
	if err != nil {
		slogger.Warn("event emitted before bridge registration", "event", eventType)
		return
	}
	em.EmitString(eventType, payload)
}

// Init starts the SDK with the builder's current fields.
func Init(b *Builder) error {
	if b == nil || b.b == nil {
		return ErrNilBuilder
	}
	c, _, err := current()
	if err != nil {
		return err
	}
	return c.Init(b.b.Build())
}

func Show() error {
	c, _, err := current()
	if err != nil {
		return err
	}
	return c.Show()
}

func Hide() error {
	c, _, err := current()
	if err != nil {
		return err
	}
	return c.Hide()
}

// AddEventListener registers l for eventType and reports whether it was added.
func AddEventListener(eventType string, l EventListener) bool {
	c, _, err := current()
	if err != nil {
		slogger.Warn("listener added before bridge registration", "event", eventType)
		return false
	}
	if l == nil {
		return c.AddEventListener(events.EventType(eventType), nil)
	}
	return c.AddEventListener(events.EventType(eventType), listenerHandler{l: l})
}

func RemoveEventListener(eventType string, l EventListener) {
	c, _, err := current()
	if err != nil || l == nil {
		return
	}
	c.RemoveEventListener(events.EventType(eventType), listenerHandler{l: l})
}

func RemoveAllListeners() {
	c, _, err := current()
	if err != nil {
		return
	}
	c.RemoveAllListeners()
}

// IsPollfishPanelOpen reports through cb whether the panel is open. cb gets
// false when the question could not be answered.
func IsPollfishPanelOpen(cb bridge.BoolCallback) {
	answer(cb, "isPollfishPanelOpen", (*pollfish.Client).IsPollfishPanelOpen)
}

// IsPollfishPresent reports through cb whether a survey is available.
func IsPollfishPresent(cb bridge.BoolCallback) {
	answer(cb, "isPollfishPresent", (*pollfish.Client).IsPollfishPresent)
}

func answer(
	cb bridge.BoolCallback,
	name string,
	query func(*pollfish.Client, context.Context) (bool, error),
) {
	c, _, err := current()
	if err != nil {
		slogger.Warn("query before bridge registration", "query", name)
		cb.OnResult(false)
		return
	}
	go func() {
		v, err := query(c, context.Background())
		if err != nil {
			slogger.Warn("query failed", "query", name, "err", err)
		}
		cb.OnResult(v)
	}()
}

// Builder is the gomobile-friendly form of params.Builder. A zero Builder,
// as made by a native no-arg constructor, starts without API keys.
type Builder struct {
	b *params.Builder
}

func (b *Builder) inner() *params.Builder {
	if b.b == nil {
		b.b = params.NewBuilder("", "")
	}
	return b.b
}

func NewBuilder(androidAPIKey string, iOSAPIKey string) *Builder {
	return &Builder{b: params.NewBuilder(androidAPIKey, iOSAPIKey)}
}

func (b *Builder) IndicatorPosition(position int) *Builder {
	b.inner().IndicatorPosition(params.Position(position))
	return b
}

func (b *Builder) IndicatorPadding(padding int) *Builder {
	b.inner().IndicatorPadding(padding)
	return b
}

func (b *Builder) OfferwallMode(enabled bool) *Builder {
	b.inner().OfferwallMode(enabled)
	return b
}

func (b *Builder) ReleaseMode(enabled bool) *Builder {
	b.inner().ReleaseMode(enabled)
	return b
}

func (b *Builder) RewardMode(enabled bool) *Builder {
	b.inner().RewardMode(enabled)
	return b
}

func (b *Builder) RequestUUID(id string) *Builder {
	b.inner().RequestUUID(id)
	return b
}

func (b *Builder) UserProperty(key string, value string) *Builder {
	b.inner().UserProperty(key, value)
	return b
}

// UserPropertiesJSON replaces all user properties with a JSON object of
// strings. Invalid JSON is logged and ignored.
func (b *Builder) UserPropertiesJSON(raw string) *Builder {
	var props map[string]string
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		slogger.Warn("ignoring invalid user properties", "err", err)
		return b
	}
	b.inner().UserProperties(props)
	return b
}

func (b *Builder) ClickID(id string) *Builder {
	b.inner().ClickID(id)
	return b
}

func (b *Builder) Signature(signature string) *Builder {
	b.inner().Signature(signature)
	return b
}

func (b *Builder) RewardInfo(rewardName string, rewardConversion float64) *Builder {
	b.inner().RewardInfo(&params.RewardInfo{
		RewardName:       rewardName,
		RewardConversion: rewardConversion,
	})
	return b
}

func (b *Builder) ClearRewardInfo() *Builder {
	b.inner().RewardInfo(nil)
	return b
}
