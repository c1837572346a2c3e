// Package serialport implements SerialLink: opening the RF module's
// serial device from a preference list, writing wire frames
// best-effort, and draining inbound telemetry bytes in the background.
package serialport

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/pkg/term"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/frame"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

// device is the minimal surface both the pkg/term-backed preset-baud
// path and the raw termios2 custom-baud path satisfy.
type device interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	Close() error
}

// SerialLink owns the RF module's serial device: one writer (the
// control thread), one reader (the background drain goroutine).
type SerialLink struct {
	dev   device
	store *frame.TelemetryStore

	done chan struct{}
	wg   sync.WaitGroup
}

/*-------------------------------------------------------------
 *
 * Name:	Open
 *
 * Purpose:	Open the first working device from a preference list
 *		and start the background telemetry drain.
 *
 * Inputs:	candidates	- device paths, first success wins.
 *		baud		- requested baud rate.
 *		store		- TelemetryStore the drain writes to.
 *
 * Returns:	Ready-to-use SerialLink, or an error if every candidate
 *		failed to open — this is the Fatal "no serial device"
 *		condition at startup.
 *
 *--------------------------------------------------------------*/

func Open(candidates []string, baud int, store *frame.TelemetryStore) (*SerialLink, error) {
	var dev device
	var lastErr error
	var opened string

	for _, path := range candidates {
		var err error
		if presetBauds[baud] {
			var t *term.Term
			t, err = term.Open(path, term.RawMode)
			if err == nil {
				if serr := t.SetSpeed(baud); serr != nil {
					txlog.Default().Warn("serialport: SetSpeed failed, continuing at default", "path", path, "err", serr)
				}
				dev = t
			}
		} else {
			var rd *rawDevice
			rd, err = openCustomBaud(path, baud)
			if err == nil {
				dev = rd
			}
		}
		if err == nil {
			opened = path
			break
		}
		lastErr = err
	}

	if dev == nil {
		if lastErr == nil {
			lastErr = errors.New("serialport: no candidate devices")
		}
		return nil, lastErr
	}
	txlog.Default().Info("serialport: opened device", "path", opened, "baud", baud)

	l := &SerialLink{dev: dev, store: store, done: make(chan struct{})}
	l.wg.Add(1)
	go l.drain()
	return l, nil
}

// OpenOnDevice wraps an already-open file (a pseudo-terminal's master
// half in tests, standing in for the RF module) as a SerialLink and
// starts its background drain. *os.File already satisfies the device
// surface SerialLink needs.
func OpenOnDevice(f *os.File, store *frame.TelemetryStore) (*SerialLink, error) {
	l := &SerialLink{dev: f, store: store, done: make(chan struct{})}
	l.wg.Add(1)
	go l.drain()
	return l, nil
}

/*-------------------------------------------------------------
 *
 * Name:	WriteFrame
 *
 * Purpose:	Best-effort non-blocking write of one wire frame. A
 *		short write is not retried within the tick — the next
 *		frame supersedes it.
 *
 * Inputs:	f	- 26-byte wire frame.
 *
 * Returns:	None; write failures are logged, never propagated as
 *		an error the control thread must act on.
 *
 *--------------------------------------------------------------*/

func (l *SerialLink) WriteFrame(f [26]byte) {
	n, err := l.dev.Write(f[:])
	if err != nil || n != len(f) {
		txlog.Default().Debug("serialport: short or failed write", "n", n, "err", err)
	}
}

// drain is the ingress thread: it blocks on small reads and feeds
// every byte to a frame assembler, updating store on each complete,
// CRC-valid frame. It never touches tuning or mapping state.
func (l *SerialLink) drain() {
	defer l.wg.Done()
	var asm frame.Assembler
	buf := make([]byte, 256)

	for {
		select {
		case <-l.done:
			return
		default:
		}

		n, err := l.dev.Read(buf)
		if err != nil {
			time.Sleep(time.Millisecond)
			continue
		}
		asm.FeedBytes(buf[:n], func(raw []byte) {
			v, derr := frame.DecodeTelemetry(raw)
			if derr != nil {
				txlog.Default().Debug("serialport: telemetry decode error", "err", derr)
				return
			}
			l.store.Apply(v)
		})
	}
}

// Close stops the drain and releases the device. The device is closed
// before waiting on the drain goroutine — its Read call blocks until
// data arrives or the descriptor is closed, so closing first is what
// actually unblocks it.
func (l *SerialLink) Close() error {
	close(l.done)
	err := l.dev.Close()
	l.wg.Wait()
	return err
}
