package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roam/internal/permission"
	"roam/internal/permission/mocks"
	"roam/internal/store"
	"roam/internal/tracking"
)

// Permission acquisition sequencing is pinned with gomock: the exact order
// (notifications first, then location escalating to always) and the
// never-re-prompt rule are call-shape contracts, not state outcomes.

func newMockedMonitor(t *testing.T, location *mocks.MockLocationGateway, notifs *mocks.MockNotificationGateway) (*Monitor, context.CancelFunc, chan struct{}) {
	t.Helper()

	session, err := tracking.New(&fakeTransport{})
	require.NoError(t, err)

	m, err := New(
		store.NewInMemory(),
		location,
		notifs,
		session,
		&fakeResolver{results: []string{"Finland"}},
		&fakeDispatcher{},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
	return m, cancel, done
}

func TestEnablePromptSequence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	location := mocks.NewMockLocationGateway(ctrl)
	notifs := mocks.NewMockNotificationGateway(ctrl)

	location.EXPECT().CurrentStatus(gomock.Any()).Return(permission.LocationNotDetermined, nil).AnyTimes()
	notifs.EXPECT().CurrentStatus(gomock.Any()).Return(permission.NotificationNotDetermined, nil).AnyTimes()

	gomock.InOrder(
		notifs.EXPECT().RequestIfUndetermined(gomock.Any()).Return(permission.NotificationAuthorized, nil),
		location.EXPECT().RequestWhenInUse(gomock.Any()).Return(permission.LocationWhenInUse, nil),
		location.EXPECT().RequestAlways(gomock.Any()).Return(permission.LocationAlways, nil),
	)

	m, cancel, done := newMockedMonitor(t, location, notifs)
	defer func() { cancel(); <-done }()

	require.NoError(t, m.SetEnabled(context.Background(), true))

	snap := m.Snapshot()
	assert.Equal(t, StateMonitoring, snap.State)
	assert.Equal(t, permission.LocationAlways, snap.LocationAuthorization)
}

func TestDeniedLocationIsNeverReprompted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	location := mocks.NewMockLocationGateway(ctrl)
	notifs := mocks.NewMockNotificationGateway(ctrl)

	// Denial is terminal: no RequestWhenInUse or RequestAlways expectation is
	// registered, so any prompt fails the test.
	location.EXPECT().CurrentStatus(gomock.Any()).Return(permission.LocationDenied, nil).AnyTimes()
	notifs.EXPECT().CurrentStatus(gomock.Any()).Return(permission.NotificationAuthorized, nil).AnyTimes()
	notifs.EXPECT().RequestIfUndetermined(gomock.Any()).Return(permission.NotificationAuthorized, nil)

	m, cancel, done := newMockedMonitor(t, location, notifs)
	defer func() { cancel(); <-done }()

	require.NoError(t, m.SetEnabled(context.Background(), true))
	require.NoError(t, m.Sync(context.Background()))
	require.NoError(t, m.Sync(context.Background()))

	snap := m.Snapshot()
	assert.Equal(t, StateDegraded, snap.State)
	assert.False(t, snap.IsMonitoring)
}

func TestAlreadyAuthorizedEnableSkipsPrompts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	location := mocks.NewMockLocationGateway(ctrl)
	notifs := mocks.NewMockNotificationGateway(ctrl)

	location.EXPECT().CurrentStatus(gomock.Any()).Return(permission.LocationAlways, nil).AnyTimes()
	notifs.EXPECT().CurrentStatus(gomock.Any()).Return(permission.NotificationAuthorized, nil).AnyTimes()
	// Already decided: the gateway resolves without a prompt.
	notifs.EXPECT().RequestIfUndetermined(gomock.Any()).Return(permission.NotificationAuthorized, nil)

	m, cancel, done := newMockedMonitor(t, location, notifs)
	defer func() { cancel(); <-done }()

	require.NoError(t, m.SetEnabled(context.Background(), true))
	assert.True(t, m.Snapshot().IsMonitoring)
}
