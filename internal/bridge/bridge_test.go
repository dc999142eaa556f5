package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"roam/internal/monitor"
	"roam/internal/notify"
	"roam/internal/permission"
)

type capturingSink struct {
	mu       sync.Mutex
	statuses []permission.LocationAuthorization
	fixes    []monitor.Fix
}

func (s *capturingSink) OnAuthorizationChanged(status permission.LocationAuthorization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *capturingSink) OnLocationFix(fix monitor.Fix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixes = append(s.fixes, fix)
}

type ChannelSuite struct {
	suite.Suite

	channel *Channel
	sink    *capturingSink
}

func TestChannelSuite(t *testing.T) {
	suite.Run(t, new(ChannelSuite))
}

func (s *ChannelSuite) SetupTest() {
	s.channel = NewChannel(WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
	s.sink = &capturingSink{}
	s.channel.SetSink(s.sink)
}

// ============================================================
// Command queue
// ============================================================

func (s *ChannelSuite) TestDrainCommands() {
	s.Run("drain clears the queue", func() {
		s.channel.push(CommandStartMonitoring, nil)
		s.channel.push(CommandStopMonitoring, nil)

		cmds := s.channel.DrainCommands()
		s.Require().Len(cmds, 2)
		s.Equal(CommandStartMonitoring, cmds[0].Kind)
		s.Equal(CommandStopMonitoring, cmds[1].Kind)
		s.NotEmpty(cmds[0].ID)
		s.NotEqual(cmds[0].ID, cmds[1].ID)

		s.Empty(s.channel.DrainCommands())
	})

	s.Run("notification payload rides the command", func() {
		n := &notify.Notification{Title: "Welcome abroad!", Category: notify.CategoryTravel}
		s.channel.push(CommandPresentNotification, n)

		cmds := s.channel.DrainCommands()
		s.Require().Len(cmds, 1)
		s.Require().NotNil(cmds[0].Notification)
		s.Equal("Welcome abroad!", cmds[0].Notification.Title)
	})
}

// ============================================================
// Waiter resolution
// ============================================================

func (s *ChannelSuite) TestAwaitLocationStatus() {
	s.Run("report releases a parked waiter", func() {
		got := make(chan permission.LocationAuthorization, 1)
		go func() {
			st, err := s.channel.awaitLocationStatus(context.Background())
			s.NoError(err)
			got <- st
		}()

		// Wait for the waiter to park before reporting.
		s.Require().Eventually(func() bool {
			s.channel.mu.Lock()
			defer s.channel.mu.Unlock()
			return len(s.channel.locWaiters) == 1
		}, time.Second, 5*time.Millisecond)

		s.channel.ReportLocationAuthorization(permission.LocationAlways)

		select {
		case st := <-got:
			s.Equal(permission.LocationAlways, st)
		case <-time.After(time.Second):
			s.FailNow("waiter was not released")
		}
	})

	s.Run("cancellation returns the cached status", func() {
		s.channel.ReportLocationAuthorization(permission.LocationWhenInUse)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		st, err := s.channel.awaitLocationStatus(ctx)
		s.Require().ErrorIs(err, context.Canceled)
		s.Equal(permission.LocationWhenInUse, st)

		// The abandoned waiter must not linger.
		s.channel.mu.Lock()
		s.Empty(s.channel.locWaiters)
		s.channel.mu.Unlock()
	})
}

func (s *ChannelSuite) TestAwaitNotificationStatus() {
	got := make(chan permission.NotificationAuthorization, 1)
	go func() {
		st, err := s.channel.awaitNotificationStatus(context.Background())
		s.NoError(err)
		got <- st
	}()

	s.Require().Eventually(func() bool {
		s.channel.mu.Lock()
		defer s.channel.mu.Unlock()
		return len(s.channel.notifWaiters) == 1
	}, time.Second, 5*time.Millisecond)

	s.channel.ReportNotificationSettings(permission.NotificationProvisional)

	select {
	case st := <-got:
		s.Equal(permission.NotificationProvisional, st)
	case <-time.After(time.Second):
		s.FailNow("waiter was not released")
	}
}

// ============================================================
// Sink forwarding
// ============================================================

func (s *ChannelSuite) TestSinkForwarding() {
	s.Run("authorization reports reach the sink", func() {
		s.channel.ReportLocationAuthorization(permission.LocationDenied)
		s.Equal([]permission.LocationAuthorization{permission.LocationDenied}, s.sink.statuses)
	})

	s.Run("fixes reach the sink", func() {
		fix := monitor.Fix{Latitude: 60.17, Longitude: 24.94, Timestamp: time.Now()}
		s.channel.ReportLocationFix(fix)
		s.Require().Len(s.sink.fixes, 1)
		s.Equal(fix, s.sink.fixes[0])
	})

	s.Run("nil sink drops reports without panicking", func() {
		c := NewChannel()
		c.ReportLocationAuthorization(permission.LocationAlways)
		c.ReportLocationFix(monitor.Fix{})
	})
}

// ============================================================
// Gateway adapters
// ============================================================

func (s *ChannelSuite) TestLocationGatewayAdapter() {
	g := NewLocationGateway(s.channel)

	s.Run("current status reflects the last report", func() {
		st, err := g.CurrentStatus(context.Background())
		s.Require().NoError(err)
		s.Equal(permission.LocationNotDetermined, st)

		s.channel.ReportLocationAuthorization(permission.LocationWhenInUse)
		st, err = g.CurrentStatus(context.Background())
		s.Require().NoError(err)
		s.Equal(permission.LocationWhenInUse, st)
	})

	s.Run("when-in-use request skips prompting once decided", func() {
		s.channel.ReportLocationAuthorization(permission.LocationDenied)

		st, err := g.RequestWhenInUse(context.Background())
		s.Require().NoError(err)
		s.Equal(permission.LocationDenied, st)
		s.Empty(s.channel.DrainCommands())
	})

	s.Run("always request skips terminal and granted statuses", func() {
		s.channel.ReportLocationAuthorization(permission.LocationAlways)

		st, err := g.RequestAlways(context.Background())
		s.Require().NoError(err)
		s.Equal(permission.LocationAlways, st)
		s.Empty(s.channel.DrainCommands())
	})

	s.Run("undetermined prompt queues a command and suspends", func() {
		c := NewChannel()
		gw := NewLocationGateway(c)

		got := make(chan permission.LocationAuthorization, 1)
		go func() {
			st, err := gw.RequestWhenInUse(context.Background())
			s.NoError(err)
			got <- st
		}()

		s.Require().Eventually(func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			return len(c.locWaiters) == 1
		}, time.Second, 5*time.Millisecond)

		cmds := c.DrainCommands()
		s.Require().Len(cmds, 1)
		s.Equal(CommandRequestWhenInUse, cmds[0].Kind)

		c.ReportLocationAuthorization(permission.LocationWhenInUse)
		select {
		case st := <-got:
			s.Equal(permission.LocationWhenInUse, st)
		case <-time.After(time.Second):
			s.FailNow("prompt did not resolve")
		}
	})
}

func (s *ChannelSuite) TestNotificationGatewayAdapter() {
	g := NewNotificationGateway(s.channel)

	s.Run("decided status returns immediately", func() {
		s.channel.ReportNotificationSettings(permission.NotificationDenied)

		st, err := g.RequestIfUndetermined(context.Background())
		s.Require().NoError(err)
		s.Equal(permission.NotificationDenied, st)
		s.Empty(s.channel.DrainCommands())
	})
}

func (s *ChannelSuite) TestTransportAdapter() {
	tr := NewTransport(s.channel)

	s.Require().NoError(tr.StartSignificantChangeMonitoring(context.Background()))
	s.Require().NoError(tr.StopSignificantChangeMonitoring(context.Background()))

	cmds := s.channel.DrainCommands()
	s.Require().Len(cmds, 2)
	s.Equal(CommandStartMonitoring, cmds[0].Kind)
	s.Equal(CommandStopMonitoring, cmds[1].Kind)
}

func (s *ChannelSuite) TestSubmitterAdapter() {
	sub := NewSubmitter(s.channel)

	err := sub.Submit(context.Background(), notify.Notification{
		Title:    "Welcome abroad!",
		Body:     "Looks like you've arrived in Sweden. Enjoy your trip!",
		Category: notify.CategoryTravel,
	})
	s.Require().NoError(err)

	cmds := s.channel.DrainCommands()
	s.Require().Len(cmds, 1)
	s.Equal(CommandPresentNotification, cmds[0].Kind)
	s.Require().NotNil(cmds[0].Notification)
	s.Equal("Welcome abroad!", cmds[0].Notification.Title)
}
