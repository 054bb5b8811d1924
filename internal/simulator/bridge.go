// Package simulator is an in-process stand-in for the native Pollfish SDK.
// It implements bridge.NativeBridge and pushes the events the real SDK
// would send through an events.Emitter.
package simulator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/pollfish/pollfish-bridge/internal/bridge"
	"github.com/pollfish/pollfish-bridge/internal/events"
)

var _ bridge.NativeBridge = (*Bridge)(nil)

var (
	ErrNotInitialized = errors.New("simulator: sdk not initialized")
	ErrPanelClosed    = errors.New("simulator: survey panel is not open")
)

const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// Init error reasons reported through the initiated with params error event.
const (
	ReasonInvalidRewardInfo = "reward info is not a valid JSON object"
	ReasonSignatureNoReward = "signature requires reward info"
	ReasonInvalidUserProps  = "user properties are not a valid JSON object"
)

// MaxRecordedCalls bounds the call log kept for Calls. Older calls are
// dropped first.
const MaxRecordedCalls = 256

// Call is one recorded boundary invocation.
type Call struct {
	Method string
	Args   []any
}

// InitEcho is the payload of the initiated with params event.
type InitEcho struct {
	Platform          string            `json:"platform"`
	IndicatorPosition int               `json:"indicatorPosition"`
	IndicatorPadding  int               `json:"indicatorPadding"`
	OfferwallMode     bool              `json:"offerwallMode"`
	ReleaseMode       bool              `json:"releaseMode"`
	RewardMode        bool              `json:"rewardMode"`
	RequestUUID       string            `json:"requestUUID,omitempty"`
	ClickID           string            `json:"clickId,omitempty"`
	UserProperties    map[string]string `json:"userProperties,omitempty"`
}

type Options struct {
	// Platform selects which API key the simulator checks. Defaults to android.
	Platform string
	// Survey is sent with survey received and completed events.
	Survey events.SurveyInfo
	Logger *slog.Logger
}

// DefaultSurvey is the survey the simulator offers when none is configured.
var DefaultSurvey = events.SurveyInfo{
	SurveyCPA:          94,
	SurveyIR:           100,
	SurveyLOI:          8,
	SurveyClass:        "Pollfish/Basic",
	RewardName:         "Coins",
	RewardValue:        123,
	RemainingCompletes: 40,
}

type Bridge struct {
	emitter  *events.Emitter
	platform string
	survey   events.SurveyInfo
	logger   *slog.Logger

	mu          sync.Mutex
	initialized bool
	present     bool
	open        bool
	offerwall   bool
	calls       []Call
}

func New(emitter *events.Emitter, opts Options) *Bridge {
	if opts.Platform == "" {
		opts.Platform = PlatformAndroid
	}
	if opts.Survey == (events.SurveyInfo{}) {
		opts.Survey = DefaultSurvey
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Bridge{
		emitter:  emitter,
		platform: opts.Platform,
		survey:   opts.Survey,
		logger:   opts.Logger,
	}
}

type pending struct {
	t    events.EventType
	data any
}

// fire emits events after the state lock has been released.
func (b *Bridge) fire(evs ...pending) {
	for _, ev := range evs {
		var raw json.RawMessage
		if ev.data != nil {
			data, err := json.Marshal(ev.data)
			if err != nil {
				b.logger.Error("simulator payload marshal failed", "event", ev.t, "err", err)
				continue
			}
			raw = data
		}
		b.emitter.Emit(ev.t, raw)
	}
}

func (b *Bridge) record(method string, args ...any) {
	if len(b.calls) == MaxRecordedCalls {
		copy(b.calls, b.calls[1:])
		b.calls = b.calls[:len(b.calls)-1]
	}
	b.calls = append(b.calls, Call{Method: method, Args: args})
}

func (b *Bridge) Init(
	androidAPIKey string,
	iOSAPIKey string,
	indicatorPosition int,
	indicatorPadding int,
	offerwallMode bool,
	releaseMode bool,
	rewardMode bool,
	requestUUID string,
	userProperties string,
	rewardInfo string,
	clickID string,
	signature string,
) error {
	b.mu.Lock()
	b.record("init",
		androidAPIKey, iOSAPIKey, indicatorPosition, indicatorPadding,
		offerwallMode, releaseMode, rewardMode, requestUUID,
		userProperties, rewardInfo, clickID, signature,
	)

	key := androidAPIKey
	if b.platform == PlatformIOS {
		key = iOSAPIKey
	}

	var props map[string]string
	var reason string
	switch {
	case key == "":
	case userProperties != "" && json.Unmarshal([]byte(userProperties), &props) != nil:
		reason = ReasonInvalidUserProps
	case rewardInfo != "" && !isJSONObject(rewardInfo):
		reason = ReasonInvalidRewardInfo
	case signature != "" && rewardInfo == "":
		reason = ReasonSignatureNoReward
	}

	if key == "" {
		b.initialized = false
		b.present = false
		b.open = false
		b.mu.Unlock()
		b.logger.Warn("simulator init without api key", "platform", b.platform)
		b.fire(pending{t: events.InitFailedWithNullKey})
		return nil
	}
	if reason != "" {
		b.mu.Unlock()
		b.logger.Warn("simulator init rejected", "reason", reason)
		b.fire(pending{t: events.InitiatedWithParamsError, data: events.InitError{Reason: reason}})
		return nil
	}

	b.initialized = true
	b.present = true
	b.open = false
	b.offerwall = offerwallMode
	b.mu.Unlock()

	echo := InitEcho{
		Platform:          b.platform,
		IndicatorPosition: indicatorPosition,
		IndicatorPadding:  indicatorPadding,
		OfferwallMode:     offerwallMode,
		ReleaseMode:       releaseMode,
		RewardMode:        rewardMode,
		RequestUUID:       requestUUID,
		ClickID:           clickID,
		UserProperties:    props,
	}
	received := pending{t: events.SurveyReceived, data: b.survey}
	if offerwallMode {
		received.data = nil
	}
	b.fire(pending{t: events.InitiatedWithParams, data: echo}, received)
	return nil
}

func isJSONObject(s string) bool {
	var obj map[string]any
	return json.Unmarshal([]byte(s), &obj) == nil
}

func (b *Bridge) Show() error {
	b.mu.Lock()
	b.record("show")
	if !b.initialized {
		b.mu.Unlock()
		return ErrNotInitialized
	}
	if !b.present {
		b.mu.Unlock()
		b.fire(pending{t: events.SurveyNotAvailable})
		return nil
	}
	if b.open {
		b.mu.Unlock()
		return nil
	}
	b.open = true
	b.mu.Unlock()

	b.fire(pending{t: events.PollfishOpened})
	return nil
}

func (b *Bridge) Hide() error {
	b.mu.Lock()
	b.record("hide")
	if !b.open {
		b.mu.Unlock()
		return nil
	}
	b.open = false
	b.mu.Unlock()

	b.fire(pending{t: events.PollfishClosed})
	return nil
}

func (b *Bridge) IsPollfishPanelOpen(cb bridge.BoolCallback) error {
	b.mu.Lock()
	b.record("isPollfishPanelOpen")
	open := b.open
	b.mu.Unlock()

	cb.OnResult(open)
	return nil
}

func (b *Bridge) IsPollfishPresent(cb bridge.BoolCallback) error {
	b.mu.Lock()
	b.record("isPollfishPresent")
	present := b.present
	b.mu.Unlock()

	cb.OnResult(present)
	return nil
}

// Complete simulates the user finishing the open survey.
func (b *Bridge) Complete() error {
	return b.finish(pending{t: events.SurveyCompleted, data: b.survey})
}

// Reject simulates the user declining the open survey.
func (b *Bridge) Reject() error {
	return b.finish(pending{t: events.UserRejectedSurvey})
}

// NotEligible simulates the user being screened out of the open survey.
func (b *Bridge) NotEligible() error {
	return b.finish(pending{t: events.UserNotEligible})
}

func (b *Bridge) finish(outcome pending) error {
	b.mu.Lock()
	if !b.open {
		b.mu.Unlock()
		return ErrPanelClosed
	}
	b.open = false
	if !b.offerwall {
		b.present = false
	}
	b.mu.Unlock()

	b.fire(outcome, pending{t: events.PollfishClosed})
	return nil
}

// State reports the simulated SDK state.
type State struct {
	Platform    string `json:"platform"`
	Initialized bool   `json:"initialized"`
	Present     bool   `json:"present"`
	PanelOpen   bool   `json:"panel_open"`
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		Platform:    b.platform,
		Initialized: b.initialized,
		Present:     b.present,
		PanelOpen:   b.open,
	}
}

// Calls returns the most recent boundary invocations, oldest first.
func (b *Bridge) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}
