package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	serviceName  = "pollfish-sim"
	keyAPIKey    = "api_key"
	keySignature = "signature"
)

var ErrNotFound = errors.New("credentials: not found")

// StoreAPIKey keeps the Pollfish API key for a platform in the OS keyring.
func StoreAPIKey(platform string, apiKey string) error {
	if err := keyring.Set(serviceName, platform+":"+keyAPIKey, apiKey); err != nil {
		return fmt.Errorf("store %s api key: %w", platform, err)
	}
	return nil
}

func LoadAPIKey(platform string) (string, error) {
	val, err := keyring.Get(serviceName, platform+":"+keyAPIKey)
	if err != nil {
		return "", ErrNotFound
	}
	return val, nil
}

func DeleteAPIKey(platform string) {
	_ = keyring.Delete(serviceName, platform+":"+keyAPIKey)
}

// StoreSignature keeps the reward signature used by the simulator.
func StoreSignature(signature string) error {
	if err := keyring.Set(serviceName, "app:"+keySignature, signature); err != nil {
		return fmt.Errorf("store signature: %w", err)
	}
	return nil
}

func LoadSignature() (string, error) {
	val, err := keyring.Get(serviceName, "app:"+keySignature)
	if err != nil {
		return "", ErrNotFound
	}
	return val, nil
}

func DeleteSignature() {
	_ = keyring.Delete(serviceName, "app:"+keySignature)
}
