package gamepad

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsAlias gives a pty slave a js-style path, since onDevice only
// accepts devnodes containing "/js".
func jsAlias(t *testing.T, slave *os.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "js0")
	require.NoError(t, os.Symlink(slave.Name(), path))
	return path
}

func Test_DynamicSource_Sample_DisconnectedWithNoDevice(t *testing.T) {
	d := &DynamicSource{ev: make(chan Event, 64)}
	analog, buttons, connected := d.Sample()
	assert.False(t, connected)
	assert.Equal(t, [6]int16{}, analog)
	assert.Equal(t, [15]int16{}, buttons)
}

func Test_DynamicSource_OnDevice_IgnoresNonJoystickNodes(t *testing.T) {
	d := &DynamicSource{ev: make(chan Event, 64)}
	d.onDevice("/dev/input/event3", true)

	_, _, connected := d.Sample()
	assert.False(t, connected)
	select {
	case <-d.ev:
		t.Fatal("expected no event for a non-joystick devnode")
	default:
	}
}

func Test_DynamicSource_OnDevice_ConnectAndDisconnect(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()

	d := &DynamicSource{ev: make(chan Event, 64)}
	node := jsAlias(t, slave)
	d.onDevice(node, true)

	_, _, connected := d.Sample()
	assert.True(t, connected)

	select {
	case ev := <-d.ev:
		assert.Equal(t, EventConnect, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a connect event")
	}

	d.onDevice(node, false)
	_, _, connected = d.Sample()
	assert.False(t, connected)

	select {
	case ev := <-d.ev:
		assert.Equal(t, EventDisconnect, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a disconnect event")
	}
}

func Test_DynamicSource_OnDevice_SecondAttachIsIgnoredWhileOneIsOpen(t *testing.T) {
	master1, slave1, err := pty.Open()
	require.NoError(t, err)
	defer master1.Close()
	master2, slave2, err := pty.Open()
	require.NoError(t, err)
	defer master2.Close()

	d := &DynamicSource{ev: make(chan Event, 64)}
	d.onDevice(jsAlias(t, slave1), true)
	<-d.ev

	d.onDevice(jsAlias(t, slave2), true)

	select {
	case <-d.ev:
		t.Fatal("expected no second connect event while a device is already open")
	default:
	}
}

func Test_DynamicSource_Close_WithNoWatcherOrDevice(t *testing.T) {
	d := &DynamicSource{ev: make(chan Event, 64)}
	assert.NoError(t, d.Close())
}
