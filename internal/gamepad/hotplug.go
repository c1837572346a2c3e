package gamepad

import (
	"github.com/jochenvg/go-udev"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

// HotplugWatcher reports input devices coming and going through a
// callback, independent of the per-tick Sample path. It never touches
// tuning or mapping state, preserving the lock discipline the rest of
// the system relies on.
type HotplugWatcher struct {
	done chan struct{}
}

// WatchInputSubsystem starts monitoring udev's "input" subsystem and
// calls onDevice with the devnode for every add/remove seen. Returns
// nil, err if udev monitoring cannot be started on this host;
// OpenDynamic passes that error on, and cmd/txengine treats it as the
// fatal "no gamepad subsystem" startup condition.
func WatchInputSubsystem(onDevice func(devnode string, added bool)) (*HotplugWatcher, error) {
	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("input"); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	devices, err := mon.DeviceChan(done)
	if err != nil {
		return nil, err
	}

	go func() {
		for d := range devices {
			node := d.Devnode()
			if node == "" {
				continue
			}
			switch d.Action() {
			case "add":
				onDevice(node, true)
			case "remove":
				onDevice(node, false)
			default:
				txlog.Default().Debug("gamepad: ignoring udev action", "action", d.Action(), "node", node)
			}
		}
	}()

	return &HotplugWatcher{done: done}, nil
}

// Close stops the monitor goroutine.
func (w *HotplugWatcher) Close() {
	close(w.done)
}
