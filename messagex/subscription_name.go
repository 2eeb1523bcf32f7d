package messagex

import (
	"strings"

	"github.com/meridianhq/meridian-go/errorx"
)

const SubscriptionNameSeparator = "."

// SubscriptionName identifies a subscription within a scope.
type SubscriptionName string

func NewSubscriptionName(name string) (SubscriptionName, error) {
	if name == "" {
		return "", errorx.InvalidArgumentErrorf("subscription name cannot be empty")
	}
	if strings.Contains(name, SubscriptionNameSeparator) {
		return "", errorx.InvalidArgumentErrorf("subscription name cannot contain '%s'", SubscriptionNameSeparator)
	}

	return SubscriptionName(name), nil
}

// QualifiedName returns the subscription name with the given scope.
// If the scope is empty, it returns the subscription name as is.
// This should be used when interacting with the concrete backends.
func (s SubscriptionName) QualifiedName(scope string) string {
	if scope != "" {
		return scope + SubscriptionNameSeparator + string(s)
	}

	return string(s)
}

// ExtractScopeFromSubscriptionName extracts the scope and the bare
// subscription name from a qualified name. It expects the format to be
// `{scope}.{name}` and returns an error when the scope is missing.
func ExtractScopeFromSubscriptionName(name string) (scope string, withoutScope SubscriptionName, err error) {
	splits := strings.Split(name, SubscriptionNameSeparator)
	if len(splits) < 2 {
		return "", "", errorx.InvalidArgumentErrorf("subscription '%s' does not have a valid format, expected at least scope and name", name)
	}
	return splits[0], SubscriptionName(strings.Join(splits[1:], SubscriptionNameSeparator)), nil
}
