package routing

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrNoRouteMatched is returned when no routing rule matched a request.
	ErrNoRouteMatched = errors.New("no route matched")

	// ErrNoHealthyProviders is returned when all providers are unhealthy.
	ErrNoHealthyProviders = errors.New("no healthy providers available")

	// ErrProviderNotFound is returned when manual provider selection fails.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrAllProvidersFailed is returned when all fallback attempts are exhausted.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// Error type labels produced by ErrorType.
const (
	ErrorTypeTimeout            = "timeout"
	ErrorTypeCanceled           = "canceled"
	ErrorTypeConnection         = "connection_error"
	ErrorTypeNoRouteMatched     = "no_route_matched"
	ErrorTypeNoHealthyProviders = "no_healthy_providers"
	ErrorTypeProviderNotFound   = "provider_not_found"
	ErrorTypeAllProvidersFailed = "all_providers_failed"
	ErrorTypeUnknown            = "unknown"
)

// Classifier is implemented by errors that name their own error type.
type Classifier interface {
	ErrorType() string
}

// ErrorType maps err to a short, stable label suitable for the error_type
// metric label. Errors implementing Classifier win, then routing sentinels,
// then context and network failures. A nil error maps to "".
func ErrorType(err error) string {
	if err == nil {
		return ""
	}

	var classified Classifier
	if errors.As(err, &classified) {
		if t := classified.ErrorType(); t != "" {
			return t
		}
	}

	switch {
	case errors.Is(err, ErrNoRouteMatched):
		return ErrorTypeNoRouteMatched
	case errors.Is(err, ErrNoHealthyProviders):
		return ErrorTypeNoHealthyProviders
	case errors.Is(err, ErrProviderNotFound):
		return ErrorTypeProviderNotFound
	case errors.Is(err, ErrAllProvidersFailed):
		return ErrorTypeAllProvidersFailed
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, context.Canceled):
		return ErrorTypeCanceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorTypeTimeout
		}
		return ErrorTypeConnection
	}

	return ErrorTypeUnknown
}

// NoRouteMatchedError is returned when a request matched none of the
// configured routing rules.
type NoRouteMatchedError struct {
	// Route identifies the request, usually its method and path.
	Route string

	// RulesEvaluated is the number of rules tried.
	RulesEvaluated int
}

// Error implements the error interface.
func (e *NoRouteMatchedError) Error() string {
	return fmt.Sprintf("no route matched %q (%d rules evaluated)", e.Route, e.RulesEvaluated)
}

// Is implements error matching for errors.Is().
func (e *NoRouteMatchedError) Is(target error) bool {
	return target == ErrNoRouteMatched
}

// NoHealthyProvidersError is returned when no healthy providers are available
// for routing a request.
type NoHealthyProvidersError struct {
	// AttemptedProviders contains the names of providers that were checked.
	AttemptedProviders []string
}

// Error implements the error interface.
func (e *NoHealthyProvidersError) Error() string {
	return fmt.Sprintf("no healthy providers available (attempted: %s)",
		strings.Join(e.AttemptedProviders, ", "))
}

// Is implements error matching for errors.Is().
func (e *NoHealthyProvidersError) Is(target error) bool {
	return target == ErrNoHealthyProviders
}

// ProviderNotFoundError is returned when an explicitly requested provider
// does not exist.
type ProviderNotFoundError struct {
	// ProviderName is the requested provider that was not found.
	ProviderName string

	// AvailableProviders contains the names of configured providers.
	AvailableProviders []string
}

// Error implements the error interface.
func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider %q not found (available providers: %s)",
		e.ProviderName, strings.Join(e.AvailableProviders, ", "))
}

// Is implements error matching for errors.Is().
func (e *ProviderNotFoundError) Is(target error) bool {
	return target == ErrProviderNotFound
}

// AllProvidersFailedError is returned when all fallback attempts have been
// exhausted and no provider could handle the request.
type AllProvidersFailedError struct {
	// AttemptedProviders contains the names of providers that were tried.
	AttemptedProviders []string

	// LastError is the error from the last attempted provider.
	LastError error
}

// Error implements the error interface.
func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all providers failed (attempted: %s, last error: %v)",
		strings.Join(e.AttemptedProviders, ", "), e.LastError)
}

// Is implements error matching for errors.Is().
func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *AllProvidersFailedError) Unwrap() error {
	return e.LastError
}
