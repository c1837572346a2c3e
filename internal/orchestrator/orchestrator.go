// Package orchestrator implements the control thread: a fixed 1 kHz
// loop that services the gamepad, runs the tuning and mapping stages,
// writes the outbound wire frame, and periodically snapshots status.
package orchestrator

import (
	"time"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/frame"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/gamepad"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/indicator"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/mapper"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/serialport"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/status"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/tuning"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

const (
	tickPeriod   = time.Millisecond
	statusPeriod = 20 * time.Millisecond
)

// Axes bundles the six live AxisTuning cells the control thread steps
// every tick, in sample order: left stick X/Y, right stick X/Y, the
// two trigger axes.
type Axes struct {
	LeftX, LeftY, RightX, RightY, Trigger0, Trigger1 *tuning.AxisTuning
}

// Orchestrator owns the control thread's per-tick state: per-axis
// filter memory, the gamepad handle, and the serial write side. No
// other thread touches these fields.
type Orchestrator struct {
	gp      gamepad.Source
	mapper  *mapper.Mapper
	axes    Axes
	link    *serialport.SerialLink
	store   *frame.TelemetryStore
	ind     *indicator.Indicator
	statusW *status.Writer

	state        [6]tuning.AxisState
	sinceStatus  time.Duration

	shutdown chan struct{}
}

// New assembles an Orchestrator from its already-open collaborators.
// None of them are started here; Run drives everything synchronously
// on the calling goroutine until shutdown is requested.
func New(gp gamepad.Source, m *mapper.Mapper, axes Axes, link *serialport.SerialLink, store *frame.TelemetryStore, ind *indicator.Indicator, statusW *status.Writer) *Orchestrator {
	return &Orchestrator{
		gp: gp, mapper: m, axes: axes, link: link, store: store,
		ind: ind, statusW: statusW,
		shutdown: make(chan struct{}),
	}
}

/*-------------------------------------------------------------
 *
 * Name:	Run
 *
 * Purpose:	Drive the 1 kHz control loop until Stop is called.
 *		Each tick: service gamepad events, sample, tune, map,
 *		encode, write, and (every 20 ms) write a status
 *		snapshot. Sleeps to the next 1 ms boundary; never
 *		busy-spins.
 *
 * Inputs:	None.
 *
 * Returns:	Blocks until Stop is called.
 *
 *--------------------------------------------------------------*/

func (o *Orchestrator) Run() {
	for {
		select {
		case <-o.shutdown:
			return
		default:
		}

		tickStart := time.Now()
		o.tick(tickStart)

		elapsed := time.Since(tickStart)
		sleep := tickPeriod - elapsed
		if sleep > 0 {
			time.Sleep(sleep)
		}

		// Accumulate the full tick period, not just the tick's compute
		// time, so the status cadence tracks wall-clock time the way
		// a steady_clock comparison would.
		o.sinceStatus += time.Since(tickStart)
	}
}

func (o *Orchestrator) tick(tickStart time.Time) {
	o.serviceGamepadEvents()

	// Sources 21 and 22 have no physical input in any state; 22 is
	// the mapper's own always-low floor for unconfigured channels.
	var raw [mapper.SourceCount]int16
	for i := range raw {
		raw[i] = -32768
	}
	analog, buttons, connected := o.gp.Sample()
	if connected {
		for i, v := range analog {
			raw[i] = v
		}
		for i, v := range buttons {
			raw[6+i] = v
		}
	}
	rawID := raw

	if connected {
		o.tuneAxis(0, &raw[0], o.axes.LeftX)
		o.tuneAxis(1, &raw[1], o.axes.LeftY)
		o.tuneAxis(2, &raw[2], o.axes.RightX)
		o.tuneAxis(3, &raw[3], o.axes.RightY)
		o.tuneAxis(4, &raw[4], o.axes.Trigger0)
		o.tuneAxis(5, &raw[5], o.axes.Trigger1)
	}
	tunedID := raw

	logical := o.mapper.Update(raw)
	f := frame.EncodeChannels(logical)
	o.link.WriteFrame(f)

	if o.ind != nil {
		o.ind.Set(o.store.Snapshot().Connected())
	}

	if o.statusW != nil && o.sinceStatus >= statusPeriod {
		o.sinceStatus = 0
		o.writeStatus(tickStart, logical, rawID, tunedID, connected)
	}
}

// tuneAxis runs one axis through tuning.Step. The trigger axes'
// deadzone is fixed at 0.05 by construction (tuning.DefaultsWithDeadzone)
// and never exposed to the control plane's L_DZ/R_DZ commands, which
// target only the stick axes — so no override is needed here.
func (o *Orchestrator) tuneAxis(i int, v *int16, a *tuning.AxisTuning) {
	*v = tuning.Step(*v, a, &o.state[i])
}

func (o *Orchestrator) serviceGamepadEvents() {
	for {
		select {
		case ev, ok := <-o.gp.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case gamepad.EventConnect:
				txlog.Default().Info("orchestrator: gamepad connected")
			case gamepad.EventDisconnect:
				txlog.Default().Info("orchestrator: gamepad disconnected")
			}
		default:
			return
		}
	}
}

func (o *Orchestrator) writeStatus(tickStart time.Time, logical [mapper.ChannelCount]int16, rawID, tunedID [mapper.SourceCount]int16, connected bool) {
	var snap status.Snapshot
	snap.LatencyMS = float64(time.Since(tickStart).Microseconds()) / 1000.0
	snap.Connected = connected
	for i, v := range logical {
		snap.Channels[i] = frame.CRSFScale(v)
	}
	snap.RawID = rawID
	snap.TunedID = tunedID
	o.statusW.Write(snap)
}

// Stop requests shutdown; Run exits after its current tick.
func (o *Orchestrator) Stop() {
	close(o.shutdown)
}
