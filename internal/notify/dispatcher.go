// Package notify formats and submits local notifications. Dispatch is
// best-effort with fire-immediately semantics; submission failures are not
// surfaced to the monitor, which treats the region as changed regardless.
package notify

import (
	"context"
	"fmt"
)

// Category tags the notification so the device can route taps back into the
// right app surface.
const CategoryTravel = "travel"

// Notification is one local notification request.
type Notification struct {
	Title    string
	Body     string
	Category string
}

// Submitter delivers a notification to the device for immediate presentation.
type Submitter interface {
	Submit(ctx context.Context, n Notification) error
}

// Dispatcher builds and submits region-change notifications.
type Dispatcher struct {
	submitter Submitter
}

func NewDispatcher(submitter Submitter) (*Dispatcher, error) {
	if submitter == nil {
		return nil, fmt.Errorf("notification submitter is required")
	}
	return &Dispatcher{submitter: submitter}, nil
}

// DispatchRegionChange submits the single welcome-back notification for an
// accepted region change.
func (d *Dispatcher) DispatchRegionChange(ctx context.Context, region string) error {
	return d.submitter.Submit(ctx, Notification{
		Title:    fmt.Sprintf("Welcome to %s!", region),
		Body:     fmt.Sprintf("Looks like you've arrived in %s. Open the app to relive your trip.", region),
		Category: CategoryTravel,
	})
}
