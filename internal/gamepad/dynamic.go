package gamepad

import (
	"strings"
	"sync"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

// DynamicSource is a Source that tracks a joystick device appearing
// and disappearing via udev hotplug, rather than requiring one to be
// present at startup. With no device attached, Sample reports
// connected=false and the orchestrator fills raw inputs with the
// neutral floor, per the "no gamepad attached" edge case.
type DynamicSource struct {
	watcher *HotplugWatcher

	mu      sync.Mutex
	current *JoystickSource

	ev chan Event
}

/*-------------------------------------------------------------
 *
 * Name:	OpenDynamic
 *
 * Purpose:	Start a DynamicSource: open initialPath if non-empty and
 *		it exists, then watch udev's input subsystem for any
 *		/dev/input/js* device attaching or detaching.
 *
 * Inputs:	initialPath	- device to try opening immediately; may
 *				  be empty or non-existent.
 *
 * Returns:	A Source that is always usable, even with no device
 *		currently attached. Error only if udev monitoring
 *		itself cannot be started — the joystick subsystem
 *		being entirely unavailable on this host.
 *
 *--------------------------------------------------------------*/

func OpenDynamic(initialPath string) (*DynamicSource, error) {
	d := &DynamicSource{ev: make(chan Event, 64)}

	if initialPath != "" {
		if js, err := OpenJoystick(initialPath); err == nil {
			d.current = js
		}
	}

	w, err := WatchInputSubsystem(d.onDevice)
	if err != nil {
		return nil, err
	}
	d.watcher = w
	return d, nil
}

func (d *DynamicSource) onDevice(devnode string, added bool) {
	if !strings.Contains(devnode, "/js") {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if added {
		if d.current != nil {
			return
		}
		js, err := OpenJoystick(devnode)
		if err != nil {
			txlog.Default().Warn("gamepad: hotplug open failed", "path", devnode, "err", err)
			return
		}
		d.current = js
		select {
		case d.ev <- Event{Type: EventConnect}:
		default:
		}
		return
	}

	if d.current != nil {
		d.current.Close()
		d.current = nil
		select {
		case d.ev <- Event{Type: EventDisconnect}:
		default:
		}
	}
}

func (d *DynamicSource) Events() <-chan Event { return d.ev }

func (d *DynamicSource) Sample() (analog [6]int16, buttons [15]int16, connected bool) {
	d.mu.Lock()
	js := d.current
	d.mu.Unlock()
	if js == nil {
		return analog, buttons, false
	}
	return js.Sample()
}

func (d *DynamicSource) Close() error {
	if d.watcher != nil {
		d.watcher.Close()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		return d.current.Close()
	}
	return nil
}
