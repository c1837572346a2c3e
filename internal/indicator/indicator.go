// Package indicator drives an optional GPIO line that reflects link
// state (telemetry connected / disconnected), off unless a chip and
// line are both configured.
package indicator

import (
	"github.com/warthog618/go-gpiocdev"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

// Indicator wraps one requested output line. The zero value (from
// Open with an empty chip) is a no-op — Set is always safe to call.
type Indicator struct {
	line *gpiocdev.Line
}

/*-------------------------------------------------------------
 *
 * Name:	Open
 *
 * Purpose:	Request chip/line as a GPIO output, initially low. If
 *		chip is empty, the indicator is disabled entirely and
 *		Set becomes a no-op — most installations have no such
 *		wire and shouldn't need to configure one.
 *
 * Inputs:	chip	- e.g. "gpiochip0"; empty disables the indicator.
 *		line	- line offset on chip.
 *
 * Returns:	Ready Indicator, or an error only when chip is non-empty
 *		and the request itself fails.
 *
 *--------------------------------------------------------------*/

func Open(chip string, line int) (*Indicator, error) {
	if chip == "" {
		return &Indicator{}, nil
	}
	l, err := gpiocdev.RequestLine(chip, line, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	txlog.Default().Info("indicator: requested GPIO line", "chip", chip, "line", line)
	return &Indicator{line: l}, nil
}

// Set drives the line high (connected) or low (not connected). A
// disabled indicator silently ignores this call.
func (ind *Indicator) Set(connected bool) {
	if ind.line == nil {
		return
	}
	v := 0
	if connected {
		v = 1
	}
	if err := ind.line.SetValue(v); err != nil {
		txlog.Default().Debug("indicator: SetValue failed", "err", err)
	}
}

// Close releases the GPIO line, if one was requested.
func (ind *Indicator) Close() error {
	if ind.line == nil {
		return nil
	}
	return ind.line.Close()
}
