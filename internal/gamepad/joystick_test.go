package gamepad

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSEvent(t *testing.T, w interface{ Write([]byte) (int, error) }, typ byte, number byte, value int16) {
	t.Helper()
	buf := make([]byte, jsEventSize)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(value))
	buf[6] = typ
	buf[7] = number
	_, err := w.Write(buf)
	require.NoError(t, err)
}

func Test_OpenJoystick_ParsesAxisAndButtonEvents(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()

	js, err := OpenJoystick(slave.Name())
	require.NoError(t, err)
	defer js.Close()

	writeJSEvent(t, master, jsEventAxis, 2, 12345)
	writeJSEvent(t, master, jsEventButton, 3, 1)

	require.Eventually(t, func() bool {
		analog, buttons, _ := js.Sample()
		return analog[2] == 12345 && buttons[3] == 32767
	}, time.Second, 5*time.Millisecond)

	analog, buttons, connected := js.Sample()
	assert.True(t, connected)
	assert.Equal(t, int16(12345), analog[2])
	assert.Equal(t, int16(32767), buttons[3])
}

func Test_OpenJoystick_OutOfRangeIndexIsIgnored(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()

	js, err := OpenJoystick(slave.Name())
	require.NoError(t, err)
	defer js.Close()

	writeJSEvent(t, master, jsEventAxis, 200, 1)

	time.Sleep(20 * time.Millisecond)
	analog, _, _ := js.Sample()
	assert.Equal(t, [6]int16{}, analog)
}

func Test_JoystickSource_Close_MarksDisconnectedOnPeerClose(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)

	js, err := OpenJoystick(slave.Name())
	require.NoError(t, err)

	master.Close()

	require.Eventually(t, func() bool {
		_, _, connected := js.Sample()
		return !connected
	}, time.Second, 5*time.Millisecond)

	js.Close()
}

func Test_OpenJoystick_MissingDeviceErrors(t *testing.T) {
	_, err := OpenJoystick("/dev/input/js-does-not-exist")
	assert.Error(t, err)
}
