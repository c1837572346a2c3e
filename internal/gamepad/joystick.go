package gamepad

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

// Linux joystick-API event, struct js_event from <linux/joystick.h>:
// time(u32) value(i16) type(u8) number(u8), 8 bytes, native endian.
const (
	jsEventSize   = 8
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80
)

// JoystickSource reads one /dev/input/jsN device via the Linux
// joystick API. Axis numbers 0..5 feed the analog slots; button
// numbers 0..14 feed the button slots. Anything outside those ranges
// is ignored — this is a minimal default, not a full HID mapping.
type JoystickSource struct {
	f    *os.File
	done chan struct{}
	ev   chan Event

	mu        sync.Mutex
	analog    [6]int16
	buttons   [15]int16
	connected bool
}

// OpenJoystick opens path and starts its read loop.
func OpenJoystick(path string) (*JoystickSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := &JoystickSource{
		f:         f,
		done:      make(chan struct{}),
		ev:        make(chan Event, 64),
		connected: true,
	}
	for i := range s.buttons {
		s.buttons[i] = -32768
	}
	go s.readLoop()
	s.ev <- Event{Type: EventConnect}
	return s, nil
}

func (s *JoystickSource) readLoop() {
	buf := make([]byte, jsEventSize)
	for {
		select {
		case <-s.done:
			return
		default:
		}
		n, err := s.f.Read(buf)
		if err != nil || n != jsEventSize {
			if err != nil {
				txlog.Default().Info("gamepad: joystick closed", "err", err)
			}
			s.mu.Lock()
			s.connected = false
			s.mu.Unlock()
			select {
			case s.ev <- Event{Type: EventDisconnect}:
			default:
			}
			return
		}

		value := int16(binary.LittleEndian.Uint16(buf[4:6]))
		typ := buf[6] &^ jsEventInit
		number := int(buf[7])

		s.mu.Lock()
		switch typ {
		case jsEventAxis:
			if number >= 0 && number < len(s.analog) {
				s.analog[number] = value
			}
		case jsEventButton:
			if number >= 0 && number < len(s.buttons) {
				if value != 0 {
					s.buttons[number] = 32767
				} else {
					s.buttons[number] = -32768
				}
			}
		}
		s.mu.Unlock()

		select {
		case s.ev <- Event{Type: EventControl, Index: number, Value: value}:
		default:
			// Control events are best-effort; the orchestrator reads
			// live state via Sample regardless of whether this send lands.
		}
	}
}

func (s *JoystickSource) Events() <-chan Event { return s.ev }

func (s *JoystickSource) Sample() (analog [6]int16, buttons [15]int16, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analog, s.buttons, s.connected
}

func (s *JoystickSource) Close() error {
	close(s.done)
	return s.f.Close()
}
