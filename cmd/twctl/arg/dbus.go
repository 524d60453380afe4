package arg

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/timewarden/timewarden/internal/ipc"
)

// callDaemon invokes a method on the running daemon and stores any single
// string return value into out (pass nil for void methods).
func callDaemon(method string, out *string) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect to session bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(ipc.ServiceName, dbus.ObjectPath(ipc.ObjectPath))
	call := obj.Call(ipc.InterfaceName+"."+method, 0)
	if out != nil {
		return call.Store(out)
	}
	return call.Err
}

// notifyReload tells a running daemon to rebuild its rule snapshot. The
// daemon may not be running, so failures are ignored.
func notifyReload() {
	_ = callDaemon("ReloadRules", nil)
}
