// Package ipc exposes the daemon's control surface on the session D-Bus:
// liveness, live status, pause/resume, and explicit rule reloads.
package ipc

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	ObjectPath    = "/io/timewarden/Daemon"
	InterfaceName = "io.timewarden.Daemon"
	ServiceName   = "io.timewarden"
)

// Tracker is the daemon surface the service forwards to.
type Tracker interface {
	StatusJSON() (string, error)
	PauseTracking(ctx context.Context) error
	ResumeTracking(ctx context.Context) error
	ReloadRules(ctx context.Context) error
}

// Service is the exported D-Bus object.
type Service struct {
	tracker Tracker
}

func (s *Service) Ping() (string, *dbus.Error) {
	return "OK", nil
}

func (s *Service) GetStatus() (string, *dbus.Error) {
	payload, err := s.tracker.StatusJSON()
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return payload, nil
}

func (s *Service) Pause() *dbus.Error {
	if err := s.tracker.PauseTracking(context.Background()); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (s *Service) Resume() *dbus.Error {
	if err := s.tracker.ResumeTracking(context.Background()); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (s *Service) ReloadRules() *dbus.Error {
	if err := s.tracker.ReloadRules(context.Background()); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Serve claims the service name on the session bus, exports the control
// object and blocks until the context is cancelled.
func Serve(ctx context.Context, tracker Tracker) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("ipc: connect session bus: %w", err)
	}
	defer conn.Close()

	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("ipc: request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("ipc: %s already claimed, is another daemon running?", ServiceName)
	}

	svc := &Service{tracker: tracker}
	if err := conn.Export(svc, dbus.ObjectPath(ObjectPath), InterfaceName); err != nil {
		return fmt.Errorf("ipc: export: %w", err)
	}

	<-ctx.Done()
	return nil
}
