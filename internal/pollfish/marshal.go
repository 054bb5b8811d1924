package pollfish

import (
	"encoding/json"
	"fmt"

	"github.com/pollfish/pollfish-bridge/internal/params"
)

// nativeArgs is Params flattened to the types the native boundary accepts.
type nativeArgs struct {
	androidAPIKey     string
	iOSAPIKey         string
	indicatorPosition int
	indicatorPadding  int
	offerwallMode     bool
	releaseMode       bool
	rewardMode        bool
	requestUUID       string
	userProperties    string
	rewardInfo        string
	clickID           string
	signature         string
}

func marshalParams(p params.Params) (nativeArgs, error) {
	props, err := json.Marshal(p.UserProperties())
	if err != nil {
		return nativeArgs{}, fmt.Errorf("marshal user properties: %w", err)
	}

	var reward string
	if ri := p.RewardInfo(); ri != nil {
		raw, err := json.Marshal(ri)
		if err != nil {
			return nativeArgs{}, fmt.Errorf("marshal reward info: %w", err)
		}
		reward = string(raw)
	}

	return nativeArgs{
		androidAPIKey:     p.AndroidAPIKey(),
		iOSAPIKey:         p.IOSAPIKey(),
		indicatorPosition: int(p.IndicatorPosition()),
		indicatorPadding:  p.IndicatorPadding(),
		offerwallMode:     p.OfferwallMode(),
		releaseMode:       p.ReleaseMode(),
		rewardMode:        p.RewardMode(),
		requestUUID:       p.RequestUUID(),
		userProperties:    string(props),
		rewardInfo:        reward,
		clickID:           p.ClickID(),
		signature:         p.Signature(),
	}, nil
}
