package sampler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/timewarden/timewarden/internal/model"
)

const (
	idleMonitorDest = "org.gnome.Mutter.IdleMonitor"
	idleMonitorPath = "/org/gnome/Mutter/IdleMonitor/Core"
	idleMonitorIntf = "org.gnome.Mutter.IdleMonitor"

	shellDest      = "org.gnome.Shell"
	introspectPath = "/org/gnome/Shell/Introspect"
	introspectIntf = "org.gnome.Shell.Introspect"
)

// DBus samples the desktop over the session bus: idle time from the Mutter
// IdleMonitor and the focused window from the Shell Introspect interface.
// File paths and URLs are not observable this way and stay nil.
type DBus struct {
	conn *dbus.Conn
}

// NewDBus connects to the session bus.
func NewDBus() (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("sampler: connect session bus: %w", err)
	}
	return &DBus{conn: conn}, nil
}

func (s *DBus) Close() error {
	return s.conn.Close()
}

// Sample reads the current idle time and focused window. A sample is idle
// when the desktop has been without input for at least idleThreshold.
// Window data that cannot be read (no focused window, locked screen,
// missing Shell interface) yields empty fields, not an error.
func (s *DBus) Sample(ctx context.Context, idleThreshold time.Duration) (model.Activity, error) {
	activity := model.Activity{Timestamp: time.Now().UTC()}

	idle, err := s.idleTime(ctx)
	if err != nil {
		return activity, fmt.Errorf("sampler: idle time: %w", err)
	}
	activity.Idle = idleThreshold > 0 && idle >= idleThreshold

	// Best effort: an unreadable window list is a sample with empty fields.
	app, appID, title, ok := s.focusedWindow(ctx)
	if ok {
		if app != "" {
			activity.AppName = model.Str(app)
		}
		if appID != "" {
			activity.BundleID = model.Str(appID)
		}
		if title != "" {
			activity.WindowTitle = model.Str(title)
		}
	}
	return activity, nil
}

// idleTime queries the Mutter idle monitor (milliseconds since last input).
func (s *DBus) idleTime(ctx context.Context) (time.Duration, error) {
	obj := s.conn.Object(idleMonitorDest, dbus.ObjectPath(idleMonitorPath))

	var idleMs uint64
	call := obj.CallWithContext(ctx, idleMonitorIntf+".GetIdletime", 0)
	if call.Err != nil {
		return 0, call.Err
	}
	if err := call.Store(&idleMs); err != nil {
		return 0, err
	}
	return time.Duration(idleMs) * time.Millisecond, nil
}

// focusedWindow returns the wm-class, app id and title of the window with
// focus, if the Shell exposes one.
func (s *DBus) focusedWindow(ctx context.Context) (app, appID, title string, ok bool) {
	obj := s.conn.Object(shellDest, dbus.ObjectPath(introspectPath))

	var windows map[uint64]map[string]dbus.Variant
	call := obj.CallWithContext(ctx, introspectIntf+".GetWindows", 0)
	if call.Err != nil {
		return "", "", "", false
	}
	if err := call.Store(&windows); err != nil {
		return "", "", "", false
	}

	for _, props := range windows {
		if focused, _ := props["has-focus"].Value().(bool); !focused {
			continue
		}
		app, _ = props["wm-class"].Value().(string)
		appID, _ = props["app-id"].Value().(string)
		title, _ = props["title"].Value().(string)
		appID = strings.TrimSuffix(appID, ".desktop")
		return app, appID, title, true
	}
	return "", "", "", false
}
