// Package controlplane implements the UDP datagram listener that
// applies live tuning and mapping updates over a single-socket
// listener loop, parsing the ASCII command grammar this engine uses.
package controlplane

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/mapper"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/tuning"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

// receiveTimeout bounds how long Run blocks on a single datagram, so
// shutdown stays responsive even with no traffic.
const receiveTimeout = 500 * time.Millisecond

// Axes bundles the six AxisTuning cells the scalar commands address:
// left stick X/Y, right stick X/Y, and the two trigger axes.
type Axes struct {
	LeftX, LeftY, RightX, RightY, Trigger0, Trigger1 *tuning.AxisTuning
}

// Listener owns the UDP socket and the shared state it mutates.
type Listener struct {
	conn   *net.UDPConn
	mapper *mapper.Mapper
	axes   Axes
}

// New binds a UDP listener on port, ready to mutate m and the given
// axis tuning cells as datagrams arrive.
func New(port int, m *mapper.Mapper, axes Axes) (*Listener, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, err
	}
	return &Listener{conn: conn, mapper: m, axes: axes}, nil
}

// Close releases the socket.
func (l *Listener) Close() error {
	return l.conn.Close()
}

/*-------------------------------------------------------------
 *
 * Name:	Run
 *
 * Purpose:	Receive datagrams until done is closed, applying each
 *		one to the mapping table or axis tuning cells.
 *
 * Inputs:	done	- closed to request shutdown.
 *
 * Returns:	None. Honours shutdown within one receive timeout.
 *
 *--------------------------------------------------------------*/

func (l *Listener) Run(done <-chan struct{}) {
	buf := make([]byte, 1024)
	for {
		select {
		case <-done:
			return
		default:
		}

		l.conn.SetReadDeadline(time.Now().Add(receiveTimeout))
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			continue // timeout or transient error: loop back to the done check.
		}
		l.apply(string(buf[:n]))
	}
}

func (l *Listener) apply(msg string) {
	switch {
	case strings.HasPrefix(msg, "SET_MAP|"):
		l.applySetMap(strings.TrimPrefix(msg, "SET_MAP|"))
	case strings.HasPrefix(msg, "L_DZ:"):
		setFloat(l.axes.LeftX.SetDeadzone, msg[len("L_DZ:"):])
		setFloat(l.axes.LeftY.SetDeadzone, msg[len("L_DZ:"):])
	case strings.HasPrefix(msg, "R_DZ:"):
		setFloat(l.axes.RightX.SetDeadzone, msg[len("R_DZ:"):])
		setFloat(l.axes.RightY.SetDeadzone, msg[len("R_DZ:"):])
	case strings.HasPrefix(msg, "RATE:"), strings.HasPrefix(msg, "SENS:"):
		v := msg[strings.IndexByte(msg, ':')+1:]
		forEachAxis(l.axes, func(a *tuning.AxisTuning) { setFloat(a.SetSensitivity, v) })
	case strings.HasPrefix(msg, "SMOOTH:"):
		v := msg[len("SMOOTH:"):]
		forEachAxis(l.axes, func(a *tuning.AxisTuning) { setFloat(a.SetSmoothing, v) })
	case strings.HasPrefix(msg, "CURVE:"):
		v := msg[len("CURVE:"):]
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 3 {
			return
		}
		forEachAxis(l.axes, func(a *tuning.AxisTuning) { a.SetCurveKind(tuning.CurveKind(n)) })
	case strings.HasPrefix(msg, "EXPO:"):
		v := msg[len("EXPO:"):]
		forEachAxis(l.axes, func(a *tuning.AxisTuning) { setFloat(a.SetExpo, v) })
	case strings.HasPrefix(msg, "CINE_ON:"):
		v := msg[len("CINE_ON:"):]
		on := v == "1"
		forEachAxis(l.axes, func(a *tuning.AxisTuning) { a.SetCinematicOn(on) })
	case strings.HasPrefix(msg, "CINE_SPD:"):
		v := msg[len("CINE_SPD:"):]
		forEachAxis(l.axes, func(a *tuning.AxisTuning) { setFloat(a.SetCineSpeed, v) })
	case strings.HasPrefix(msg, "CINE_ACC:"):
		v := msg[len("CINE_ACC:"):]
		forEachAxis(l.axes, func(a *tuning.AxisTuning) { setFloat(a.SetCineAccel, v) })
	default:
		// Unknown prefix: dropped silently, per the grammar's error policy.
	}
}

func forEachAxis(axes Axes, f func(*tuning.AxisTuning)) {
	for _, a := range []*tuning.AxisTuning{axes.LeftX, axes.LeftY, axes.RightX, axes.RightY, axes.Trigger0, axes.Trigger1} {
		f(a)
	}
}

func setFloat(set func(float32), s string) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return // malformed number: dropped silently.
	}
	set(float32(v))
}

// applySetMap parses `<csv-16>|<csv-7>` and applies it atomically.
func (l *Listener) applySetMap(rest string) {
	parts := strings.SplitN(rest, "|", 2)
	directCSV := parts[0]
	ids := strings.Split(directCSV, ",")
	if len(ids) != mapper.ChannelCount {
		return
	}
	var directMap [mapper.ChannelCount]int
	for i, s := range ids {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return
		}
		directMap[i] = n
	}

	var split *mapper.SplitUpdate
	if len(parts) == 2 {
		fields := strings.Split(parts[1], ",")
		if len(fields) != 7 {
			return
		}
		nums := make([]int, 7)
		for i, s := range fields {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return
			}
			nums[i] = n
		}
		split = &mapper.SplitUpdate{
			Target: nums[0], PosSrc: nums[1], NegSrc: nums[2],
			PosCenter: nums[3] != 0, PosReverse: nums[4] != 0,
			NegCenter: nums[5] != 0, NegReverse: nums[6] != 0,
		}
	}

	l.mapper.SetFromPacket(directMap, split)
	txlog.Default().Debug("controlplane: applied SET_MAP")
}
