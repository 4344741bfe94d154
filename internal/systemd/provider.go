// SPDX-License-Identifier: MPL-2.0

// Package systemd renders the server's service unit and drives systemctl.
// It is the only service provider the recipe supports; any other provider
// value is a configuration error surfaced before a service resource exists.
package systemd

import (
	"errors"
	"fmt"
)

// ProviderName is the only accepted service_provider value.
const ProviderName = "systemd"

// ErrUnsupportedProvider is the sentinel wrapped by UnsupportedProviderError.
var ErrUnsupportedProvider = errors.New("unsupported service provider")

// UnsupportedProviderError is returned when service_provider is anything
// other than "systemd". It wraps ErrUnsupportedProvider for errors.Is()
// compatibility and always names the literal bad value.
type UnsupportedProviderError struct {
	Value string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported service provider %q: only %q is supported", e.Value, ProviderName)
}

// Unwrap returns ErrUnsupportedProvider for errors.Is chains.
func (e *UnsupportedProviderError) Unwrap() error { return ErrUnsupportedProvider }

// ValidateProvider checks the configured service provider. The check runs at
// recipe-build time so a bad value aborts the run before any service
// resource is touched.
func ValidateProvider(provider string) error {
	if provider != ProviderName {
		return &UnsupportedProviderError{Value: provider}
	}
	return nil
}
