package params

import "maps"

// DefaultIndicatorPadding is the indicator padding used when none is set.
const DefaultIndicatorPadding = 8

// Builder accumulates initialization fields. Setters assign as given and
// return the builder for chaining; checking values is left to the SDK.
type Builder struct {
	p Params
}

// NewBuilder starts a builder for the given platform API keys.
func NewBuilder(androidAPIKey, iOSAPIKey string) *Builder {
	return &Builder{p: Params{
		androidAPIKey:     androidAPIKey,
		iOSAPIKey:         iOSAPIKey,
		indicatorPosition: PositionTopLeft,
		indicatorPadding:  DefaultIndicatorPadding,
		userProperties:    map[string]string{},
	}}
}

// IndicatorPosition sets where the Pollfish indicator is placed.
func (b *Builder) IndicatorPosition(pos Position) *Builder {
	b.p.indicatorPosition = pos
	return b
}

// IndicatorPadding sets the padding from the top or bottom of the view,
// depending on the indicator position.
func (b *Builder) IndicatorPadding(padding int) *Builder {
	b.p.indicatorPadding = padding
	return b
}

func (b *Builder) OfferwallMode(enabled bool) *Builder {
	b.p.offerwallMode = enabled
	return b
}

// ReleaseMode switches the SDK between developer and release mode.
func (b *Builder) ReleaseMode(enabled bool) *Builder {
	b.p.releaseMode = enabled
	return b
}

func (b *Builder) RewardMode(enabled bool) *Builder {
	b.p.rewardMode = enabled
	return b
}

// RequestUUID sets an id passed back through server-to-server callbacks.
func (b *Builder) RequestUUID(id string) *Builder {
	b.p.requestUUID = id
	return b
}

// UserProperties replaces the user attributes sent with initialization.
func (b *Builder) UserProperties(props map[string]string) *Builder {
	b.p.userProperties = maps.Clone(props)
	if b.p.userProperties == nil {
		b.p.userProperties = map[string]string{}
	}
	return b
}

// UserProperty sets a single user attribute.
func (b *Builder) UserProperty(key, value string) *Builder {
	if b.p.userProperties == nil {
		b.p.userProperties = map[string]string{}
	}
	b.p.userProperties[key] = value
	return b
}

// ClickID sets a pass-through value returned in server-to-server callbacks.
func (b *Builder) ClickID(id string) *Builder {
	b.p.clickID = id
	return b
}

// Signature secures the reward conversion and name passed in RewardInfo.
func (b *Builder) Signature(signature string) *Builder {
	b.p.signature = signature
	return b
}

// RewardInfo sets the survey completion reward. nil clears it.
func (b *Builder) RewardInfo(info *RewardInfo) *Builder {
	if info == nil {
		b.p.rewardInfo = nil
		return b
	}
	ri := *info
	b.p.rewardInfo = &ri
	return b
}

// Build returns a snapshot of the current fields. The builder keeps its
// state and later setter calls do not affect returned Params.
func (b *Builder) Build() Params {
	p := b.p
	p.userProperties = maps.Clone(b.p.userProperties)
	p.rewardInfo = b.p.RewardInfo()
	return p
}
