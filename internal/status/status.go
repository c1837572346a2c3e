// Package status writes the GUI status-snapshot file: one
// whitespace-separated key:value line, truncated and rewritten on
// every call.
package status

import (
	"bytes"
	"fmt"
	"os"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/mapper"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

// Snapshot is everything one status-file write needs. rawID and
// tunedID are the mapper's 23-source input array, before and after
// the per-axis TuningEngine pass; channels are the 16 mixed logical
// outputs already scaled to the CRSF 172..1811 range.
type Snapshot struct {
	LatencyMS float64
	Connected bool
	Channels  [mapper.ChannelCount]uint32
	RawID     [mapper.SourceCount]int16
	TunedID   [mapper.SourceCount]int16
}

// Writer owns the destination path and reuses one buffer across writes.
type Writer struct {
	path string
	buf  bytes.Buffer
}

// New returns a Writer for path. path is not opened until the first Write.
func New(path string) *Writer {
	return &Writer{path: path}
}

/*-------------------------------------------------------------
 *
 * Name:	Write
 *
 * Purpose:	Render snap as one status line and truncate-rewrite it
 *		to the configured file. Called from the control thread
 *		at its 20 ms cadence; never blocks longer than a single
 *		file write.
 *
 * Inputs:	snap	- current snapshot.
 *
 * Returns:	None; write failures are logged, not propagated — a
 *		missing or unwritable GUI file must never stall the
 *		control loop.
 *
 *--------------------------------------------------------------*/

func (w *Writer) Write(snap Snapshot) {
	w.buf.Reset()

	connected := 0
	if snap.Connected {
		connected = 1
	}
	fmt.Fprintf(&w.buf, "latency_ms:%.2f rate_hz:1000.0 connected:%d", snap.LatencyMS, connected)

	for i, ch := range snap.Channels {
		fmt.Fprintf(&w.buf, " ch%d:%d", i+1, ch)
	}
	for i, v := range snap.TunedID {
		fmt.Fprintf(&w.buf, " tunedid%d:%d", i, v)
	}
	for i, v := range snap.RawID {
		fmt.Fprintf(&w.buf, " rawid%d:%d", i, v)
	}

	if err := os.WriteFile(w.path, w.buf.Bytes(), 0644); err != nil {
		txlog.Default().Debug("status: write failed", "path", w.path, "err", err)
	}
}
