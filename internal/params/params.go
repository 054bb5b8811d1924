// Package params holds the Pollfish initialization parameters and the
// builder that produces them.
package params

import "maps"

// RewardInfo describes the reward shown to the user for completing a survey.
type RewardInfo struct {
	RewardName       string  `json:"rewardName"`
	RewardConversion float64 `json:"rewardConversion"`
}

// Params is an immutable initialization snapshot. Build it with Builder.
// Optional strings are empty when unset and RewardInfo is nil when unset.
type Params struct {
	androidAPIKey     string
	iOSAPIKey         string
	indicatorPosition Position
	indicatorPadding  int
	offerwallMode     bool
	releaseMode       bool
	rewardMode        bool
	requestUUID       string
	userProperties    map[string]string
	clickID           string
	rewardInfo        *RewardInfo
	signature         string
}

func (p Params) AndroidAPIKey() string       { return p.androidAPIKey }
func (p Params) IOSAPIKey() string           { return p.iOSAPIKey }
func (p Params) IndicatorPosition() Position { return p.indicatorPosition }
func (p Params) IndicatorPadding() int       { return p.indicatorPadding }
func (p Params) OfferwallMode() bool         { return p.offerwallMode }
func (p Params) ReleaseMode() bool           { return p.releaseMode }
func (p Params) RewardMode() bool            { return p.rewardMode }
func (p Params) RequestUUID() string         { return p.requestUUID }
func (p Params) ClickID() string             { return p.clickID }
func (p Params) Signature() string           { return p.signature }

// UserProperties returns a copy of the user attributes. Never nil.
func (p Params) UserProperties() map[string]string {
	if p.userProperties == nil {
		return map[string]string{}
	}
	return maps.Clone(p.userProperties)
}

// RewardInfo returns a copy of the reward info, or nil when unset.
func (p Params) RewardInfo() *RewardInfo {
	if p.rewardInfo == nil {
		return nil
	}
	ri := *p.rewardInfo
	return &ri
}

// Equal reports whether p and o hold the same values.
func (p Params) Equal(o Params) bool {
	if p.androidAPIKey != o.androidAPIKey ||
		p.iOSAPIKey != o.iOSAPIKey ||
		p.indicatorPosition != o.indicatorPosition ||
		p.indicatorPadding != o.indicatorPadding ||
		p.offerwallMode != o.offerwallMode ||
		p.releaseMode != o.releaseMode ||
		p.rewardMode != o.rewardMode ||
		p.requestUUID != o.requestUUID ||
		p.clickID != o.clickID ||
		p.signature != o.signature {
		return false
	}
	if (p.rewardInfo == nil) != (o.rewardInfo == nil) {
		return false
	}
	if p.rewardInfo != nil && *p.rewardInfo != *o.rewardInfo {
		return false
	}
	return maps.Equal(p.userProperties, o.userProperties)
}
