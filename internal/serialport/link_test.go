package serialport

import (
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/crc8"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/frame"
)

// newLinkOnPTY wraps the master side of a pty pair as a SerialLink,
// standing in for the RF module's serial port without physical
// hardware, bypassing Open's device-preference scan entirely.
func newLinkOnPTY(t *testing.T, master *os.File, store *frame.TelemetryStore) *SerialLink {
	t.Helper()
	l, err := OpenOnDevice(master, store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func Test_SerialLink_WriteFrame_ReachesPeer(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer slave.Close()

	l := newLinkOnPTY(t, master, &frame.TelemetryStore{})

	var logical [16]int16
	logical[0] = 32767
	f := frame.EncodeChannels(logical)
	l.WriteFrame(f)

	slave.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 26)
	total := 0
	for total < len(buf) {
		n, err := slave.Read(buf[total:])
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, f[:], buf)
}

func Test_SerialLink_Drain_AssemblesTelemetry(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer slave.Close()

	store := &frame.TelemetryStore{}
	newLinkOnPTY(t, master, store)

	raw := []byte{0xC8, 0x0C, 0x14, 0xF0, 0xEE, 0x64, 0x05, 0x01, 0x02, 0x0A, 0xE0, 0x5A, 0x03, 0x00}
	raw[len(raw)-1] = crc8.Checksum(raw[2 : len(raw)-1])

	_, err = slave.Write(raw)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return store.Snapshot().HasLink
	}, time.Second, 2*time.Millisecond)

	snap := store.Snapshot()
	assert.Equal(t, int8(-16), snap.Link.RSSI1)
}

func Test_Open_NoCandidates(t *testing.T) {
	_, err := Open([]string{"/dev/does-not-exist-txengine"}, 420000, &frame.TelemetryStore{})
	require.Error(t, err)
}
