package orchestrator

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/frame"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/gamepad"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/mapper"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/serialport"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/status"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/tuning"
)

// fakeGamepad is a minimal gamepad.Source stand-in for exercising the
// control loop without a real joystick device.
type fakeGamepad struct {
	ev        chan gamepad.Event
	analog    [6]int16
	buttons   [15]int16
	connected bool
}

func newFakeGamepad() *fakeGamepad {
	return &fakeGamepad{ev: make(chan gamepad.Event, 4), connected: true}
}

func (f *fakeGamepad) Events() <-chan gamepad.Event { return f.ev }
func (f *fakeGamepad) Sample() ([6]int16, [15]int16, bool) {
	return f.analog, f.buttons, f.connected
}
func (f *fakeGamepad) Close() error { return nil }

func newTestAxes() Axes {
	return Axes{
		LeftX: tuning.Defaults(), LeftY: tuning.Defaults(),
		RightX: tuning.Defaults(), RightY: tuning.Defaults(),
		Trigger0: tuning.DefaultsWithDeadzone(0.05),
		Trigger1: tuning.DefaultsWithDeadzone(0.05),
	}
}

func Test_Orchestrator_RunProducesWireFramesAndStatus(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer slave.Close()
	defer master.Close()

	store := &frame.TelemetryStore{}
	link, err := serialport.OpenOnDevice(master, store)
	require.NoError(t, err)
	defer link.Close()

	m := mapper.New()
	var cfg mapper.ChannelConfig
	cfg.Src = 0
	m.SetChannel(0, cfg)

	statusPath := t.TempDir() + "/status.txt"
	statusW := status.New(statusPath)

	gp := newFakeGamepad()
	gp.analog[0] = 32767

	orch := New(gp, m, newTestAxes(), link, store, nil, statusW)
	go orch.Run()

	buf := make([]byte, 26)
	slave.SetReadDeadline(time.Now().Add(2 * time.Second))
	total := 0
	for total < len(buf) {
		n, err := slave.Read(buf[total:])
		require.NoError(t, err)
		total += n
	}
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(statusPath)
		return err == nil && strings.HasPrefix(string(data), "latency_ms:")
	}, 2*time.Second, 5*time.Millisecond)
	orch.Stop()

	assert.Equal(t, byte(0xEE), buf[0])
	assert.Equal(t, byte(0x16), buf[2])
}
