package bridge

// NativeBridge is implemented by the native side (Swift/Kotlin) on top of
// the Pollfish SDK. gomobile exposes this as an interface that native code
// can satisfy.
//
// Rules for gomobile compatibility:
//   - methods may only use primitive types, strings, []byte, or other
//     gomobile-bound types as parameters and return values
//   - no variadic parameters, no maps
//   - errors are returned as a second return value
//
// Events produced by the SDK are not returned from these methods. Native
// code pushes them back through the event emitter.
type NativeBridge interface {
	// Init starts the SDK. userProperties and rewardInfo are JSON objects,
	// rewardInfo is empty when not set. The outcome is reported through
	// the init events, never through the returned error.
	Init(
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
	) error

	// Show opens the survey panel if a survey is available.
	Show() error

	// Hide closes the survey panel and the indicator.
	Hide() error

	// IsPollfishPanelOpen reports through cb whether the panel is visible.
	IsPollfishPanelOpen(cb BoolCallback) error

	// IsPollfishPresent reports through cb whether a survey is available.
	IsPollfishPresent(cb BoolCallback) error
}

// BoolCallback receives the result of an asynchronous native query.
type BoolCallback interface {
	OnResult(value bool)
}

// BoolCallbackFunc adapts a plain function to BoolCallback.
type BoolCallbackFunc func(value bool)

func (f BoolCallbackFunc) OnResult(value bool) {
	f(value)
}
