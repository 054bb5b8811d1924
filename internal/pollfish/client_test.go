package pollfish

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pollfish/pollfish-bridge/internal/bridge"
	"github.com/pollfish/pollfish-bridge/internal/events"
	"github.com/pollfish/pollfish-bridge/internal/params"
	"github.com/pollfish/pollfish-bridge/internal/registry"
	"github.com/pollfish/pollfish-bridge/internal/simulator"
)

// fakeNative records Init arguments and lets tests control query answers.
type fakeNative struct {
	mu       sync.Mutex
	initArgs []any
	err      error

	queryCalls atomic.Int32
	answer     func(cb bridge.BoolCallback)
}

func (f *fakeNative) Init(
	androidAPIKey, iOSAPIKey string,
	indicatorPosition, indicatorPadding int,
	offerwallMode, releaseMode, rewardMode bool,
	requestUUID, userProperties, rewardInfo, clickID, signature string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initArgs = []any{
		androidAPIKey, iOSAPIKey, indicatorPosition, indicatorPadding,
		offerwallMode, releaseMode, rewardMode, requestUUID,
		userProperties, rewardInfo, clickID, signature,
	}
	return f.err
}

func (f *fakeNative) Show() error { return f.err }
func (f *fakeNative) Hide() error { return f.err }

func (f *fakeNative) IsPollfishPanelOpen(cb bridge.BoolCallback) error {
	return f.query(cb)
}

func (f *fakeNative) IsPollfishPresent(cb bridge.BoolCallback) error {
	return f.query(cb)
}

func (f *fakeNative) query(cb bridge.BoolCallback) error {
	f.queryCalls.Add(1)
	if f.err != nil {
		return f.err
	}
	if f.answer != nil {
		f.answer(cb)
	}
	return nil
}

func TestInit_ForwardsFieldsPositionally(t *testing.T) {
	native := &fakeNative{}
	c := New(native, events.NewEmitter(nil))

	p := params.NewBuilder("android", "ios").
		IndicatorPosition(params.PositionMiddleRight).
		IndicatorPadding(16).
		OfferwallMode(true).
		ReleaseMode(true).
		RewardMode(false).
		RequestUUID("req").
		UserProperty("gender", "2").
		RewardInfo(&params.RewardInfo{RewardName: "Coins", RewardConversion: 2}).
		ClickID("click").
		Signature("sig").
		Build()

	if err := c.Init(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []any{
		"android", "ios", 3, 16,
		true, true, false, "req",
		`{"gender":"2"}`, `{"rewardName":"Coins","rewardConversion":2}`, "click", "sig",
	}
	if len(native.initArgs) != len(want) {
		t.Fatalf("expected %d args, got %d", len(want), len(native.initArgs))
	}
	for i := range want {
		if native.initArgs[i] != want[i] {
			t.Errorf("arg %d: expected %v, got %v", i, want[i], native.initArgs[i])
		}
	}
}

func TestInit_DefaultsMarshalEmpty(t *testing.T) {
	native := &fakeNative{}
	c := New(native, events.NewEmitter(nil))

	if err := c.Init(params.NewBuilder("a", "i").Build()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if native.initArgs[8] != "{}" {
		t.Errorf("expected empty user properties object, got %v", native.initArgs[8])
	}
	if native.initArgs[9] != "" {
		t.Errorf("expected no reward info, got %v", native.initArgs[9])
	}
}

func TestPassthroughErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	c := New(&fakeNative{err: boom}, events.NewEmitter(nil))

	if err := c.Init(params.NewBuilder("a", "i").Build()); !errors.Is(err, boom) {
		t.Errorf("Init: expected wrapped boom, got %v", err)
	}
	if err := c.Show(); !errors.Is(err, boom) {
		t.Errorf("Show: expected wrapped boom, got %v", err)
	}
	if err := c.Hide(); !errors.Is(err, boom) {
		t.Errorf("Hide: expected wrapped boom, got %v", err)
	}
	if _, err := c.IsPollfishPresent(context.Background()); !errors.Is(err, boom) {
		t.Errorf("IsPollfishPresent: expected wrapped boom, got %v", err)
	}
}

func TestQuery_AsyncAnswer(t *testing.T) {
	native := &fakeNative{answer: func(cb bridge.BoolCallback) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			cb.OnResult(true)
		}()
	}}
	c := New(native, events.NewEmitter(nil))

	open, err := c.IsPollfishPanelOpen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !open {
		t.Error("expected panel open")
	}
}

func TestQuery_ContextCancel(t *testing.T) {
	native := &fakeNative{answer: func(bridge.BoolCallback) {}}
	c := New(native, events.NewEmitter(nil), WithQueryTimeout(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.IsPollfishPresent(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestQuery_Timeout(t *testing.T) {
	native := &fakeNative{answer: func(bridge.BoolCallback) {}}
	c := New(native, events.NewEmitter(nil), WithQueryTimeout(20*time.Millisecond))

	_, err := c.IsPollfishPanelOpen(context.Background())
	if !errors.Is(err, ErrQueryTimeout) {
		t.Fatalf("expected ErrQueryTimeout, got %v", err)
	}
}

func TestQuery_LateAndRepeatedCallbacksAreIgnored(t *testing.T) {
	native := &fakeNative{answer: func(cb bridge.BoolCallback) {
		cb.OnResult(true)
		cb.OnResult(false)
	}}
	c := New(native, events.NewEmitter(nil))

	v, err := c.IsPollfishPresent(context.Background())
	if err != nil || !v {
		t.Fatalf("expected first answer true, got %v %v", v, err)
	}
}

func TestQuery_ConcurrentCallsShareNativeCall(t *testing.T) {
	release := make(chan struct{})
	native := &fakeNative{answer: func(cb bridge.BoolCallback) {
		go func() {
			<-release
			cb.OnResult(true)
		}()
	}}
	c := New(native, events.NewEmitter(nil))

	const callers = 5
	var wg sync.WaitGroup
	results := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.IsPollfishPanelOpen(context.Background())
			if err == nil {
				results <- v
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	n := 0
	for v := range results {
		if !v {
			t.Error("expected true")
		}
		n++
	}
	if n != callers {
		t.Fatalf("expected %d answers, got %d", callers, n)
	}
	if calls := native.queryCalls.Load(); calls != 1 {
		t.Errorf("expected 1 native call, got %d", calls)
	}
}

func TestClient_EndToEndWithSimulator(t *testing.T) {
	em := events.NewEmitter(nil)
	sim := simulator.New(em, simulator.Options{})
	c := New(sim, em)
	defer c.Close()

	var got []events.EventType
	h := registry.HandlerFunc(func(e events.Event) { got = append(got, e.Type) })
	for _, et := range events.All() {
		c.AddEventListener(et, h)
	}

	if err := c.Init(params.NewBuilder("key", "").RewardMode(true).Build()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := c.Show(); err != nil {
		t.Fatalf("show: %v", err)
	}

	open, err := c.IsPollfishPanelOpen(context.Background())
	if err != nil || !open {
		t.Fatalf("expected panel open, got %v %v", open, err)
	}

	c.RemoveEventListener(events.PollfishClosed, h)
	if err := sim.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}

	want := []events.EventType{
		events.InitiatedWithParams,
		events.SurveyReceived,
		events.PollfishOpened,
		events.SurveyCompleted,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	c.RemoveAllListeners()
	for _, et := range events.All() {
		if c.Registry().Len(et) != 0 {
			t.Errorf("%s: expected no handlers", et)
		}
	}
}
