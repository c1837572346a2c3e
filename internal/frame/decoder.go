package frame

import "github.com/x1HANDEDBILLS/rc-flight-controller/internal/crc8"

/*-------------------------------------------------------------
 *
 * Purpose:	Resynchronising frame assembler for the inbound byte
 *		stream. Feed it bytes as they arrive off the serial
 *		drain; it hands back complete, CRC-verified frames and
 *		silently discards anything that doesn't fit.
 *
 *--------------------------------------------------------------*/

// Assembler accumulates inbound bytes into complete telemetry frames.
// Not safe for concurrent use — the ingress thread owns one instance.
type Assembler struct {
	buf []byte

	// DroppedFrames counts frames discarded for bad CRC; exposed for
	// the link-stats counter.
	DroppedFrames uint64
}

// Feed consumes one byte and returns a complete frame (sync byte
// through CRC, inclusive) when the buffer closes out a frame.
// While the buffer is empty, non-sync bytes are discarded; once a
// sync byte starts the buffer, it completes when
// len(buf) == buf[1] + 2.
func (a *Assembler) Feed(b byte) ([]byte, bool) {
	if len(a.buf) == 0 {
		if b != SyncRadio && b != SyncExtended {
			return nil, false
		}
		a.buf = append(a.buf, b)
		return nil, false
	}

	a.buf = append(a.buf, b)
	if len(a.buf) == 2 && a.buf[1] < 2 {
		// A len below 2 cannot hold type and crc: discard and resynchronise.
		a.buf = nil
		return nil, false
	}
	if len(a.buf) >= 2 && len(a.buf) == int(a.buf[1])+2 {
		frame := a.buf
		a.buf = nil
		if !crc8.Verify(frame[2:len(frame)-1], frame[len(frame)-1]) {
			a.DroppedFrames++
			return nil, false
		}
		return frame, true
	}
	return nil, false
}

// FeedBytes drains a byte slice, invoking onFrame on every complete,
// CRC-valid frame it assembles. It does not decode frames: decoding,
// and any decode error (unknown type, short payload), is left to
// onFrame, and only bad-CRC frames are counted, in DroppedFrames.
func (a *Assembler) FeedBytes(data []byte, onFrame func(raw []byte)) {
	for _, b := range data {
		if frame, ok := a.Feed(b); ok {
			onFrame(frame)
		}
	}
}
