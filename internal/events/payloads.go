package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNoPayload = errors.New("events: event carries no payload")

// SurveyInfo is the payload of survey received and survey completed events.
type SurveyInfo struct {
	SurveyCPA          int    `json:"surveyCPA"`
	SurveyIR           int    `json:"surveyIR"`
	SurveyLOI          int    `json:"surveyLOI"`
	SurveyClass        string `json:"surveyClass,omitempty"`
	RewardName         string `json:"rewardName,omitempty"`
	RewardValue        int    `json:"rewardValue"`
	RemainingCompletes int    `json:"remainingCompletes"`
}

// InitError is the payload of the initiated with params error event.
type InitError struct {
	Reason string `json:"reason"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return ErrNoPayload
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// SurveyInfo decodes the payload of a survey received or completed event.
func (e Event) SurveyInfo() (SurveyInfo, error) {
	var info SurveyInfo
	if e.Type != SurveyReceived && e.Type != SurveyCompleted {
		return info, fmt.Errorf("event %s has no survey info", e.Type)
	}
	err := e.Decode(&info)
	return info, err
}

// InitError decodes the payload of an initiated with params error event.
// Native layers that send a bare string reason are accepted as well.
func (e Event) InitError() (InitError, error) {
	var ie InitError
	if e.Type != InitiatedWithParamsError {
		return ie, fmt.Errorf("event %s has no init error", e.Type)
	}
	var reason string
	if err := json.Unmarshal(e.Data, &reason); err == nil {
		ie.Reason = reason
		return ie, nil
	}
	err := e.Decode(&ie)
	return ie, err
}
