// Package location supplies the descriptive location label attached to a click.
package location

import (
	"context"
	"math/rand/v2"
)

// Locator derives a location label for an access.
type Locator interface {
	Locate(ctx context.Context) string
}

// MockLabels are the placeholder locations used when no real lookup is wired.
var MockLabels = []string{"New York, US", "London, UK", "Tokyo, JP", "Sydney, AU", "Berlin, DE"}

// Mock picks a label uniformly from MockLabels.
type Mock struct{}

// Locate returns a random placeholder label.
func (Mock) Locate(context.Context) string {
	return MockLabels[rand.IntN(len(MockLabels))]
}

// Static always returns the same label.
type Static string

// Locate returns the fixed label.
func (s Static) Locate(context.Context) string {
	return string(s)
}
