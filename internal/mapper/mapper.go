// Package mapper implements the input-routing table: 23 raw source
// values projected onto 16 logical radio channels, with optional
// split-mixing (two sources summed, each independently recentered
// and reversed).
package mapper

import "sync"

const (
	SourceCount  = 23
	ChannelCount = 16

	alwaysLowSource = 22
	alwaysLowValue  = -32768
)

// ChannelConfig is a tagged union: either a Direct passthrough of one
// raw source, or a Split mix of two. IsSplit selects which fields
// apply. The neutral-floor default, Direct{Src: 22, Inverted: false},
// comes from DefaultChannelConfig; the zero value reads source 0.
type ChannelConfig struct {
	IsSplit bool

	// Direct fields.
	Src      int
	Inverted bool

	// Split fields.
	PosSrc, NegSrc        int
	PosCenter, PosReverse bool
	NegCenter, NegReverse bool
}

// DefaultChannelConfig returns the neutral-floor default: a direct,
// uninverted read of the always-low source.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{Src: alwaysLowSource}
}

// Mapper holds the 16-entry routing table under a mutex. The lock is
// taken both by the in-loop Update call and by every ControlPlane
// mutation, and is never held across I/O.
type Mapper struct {
	mu    sync.Mutex
	table [ChannelCount]ChannelConfig
}

// New builds a Mapper with every channel at its neutral-floor default.
func New() *Mapper {
	m := &Mapper{}
	for i := range m.table {
		m.table[i] = DefaultChannelConfig()
	}
	return m
}

/*-------------------------------------------------------------
 *
 * Name:	Update
 *
 * Purpose:	Project 23 raw source values onto 16 logical channels
 *		per the current routing table.
 *
 * Inputs:	raw	- 23 signed 16-bit source values.
 *
 * Returns:	16 signed 16-bit logical values, each clamped to the
 *		i16 range.
 *
 *--------------------------------------------------------------*/

func (m *Mapper) Update(raw [SourceCount]int16) [ChannelCount]int16 {
	m.mu.Lock()
	table := m.table
	m.mu.Unlock()

	var out [ChannelCount]int16
	for i, cfg := range table {
		out[i] = resolveChannel(cfg, raw)
	}
	return out
}

func resolveChannel(cfg ChannelConfig, raw [SourceCount]int16) int16 {
	if !cfg.IsSplit {
		v := readSource(raw, cfg.Src)
		if cfg.Inverted {
			v = -v
		}
		return clampI16(v)
	}

	p := transform(readSource(raw, cfg.PosSrc), cfg.PosCenter, cfg.PosReverse)
	n := transform(readSource(raw, cfg.NegSrc), cfg.NegCenter, cfg.NegReverse)
	return clampI16(p + n)
}

// transform applies the split-mixer's optional recentering and
// reversal to one leg of a Split channel. Recentering interprets x as
// a 0..65535 unsigned slider and remaps it around zero via
// `2x - 32768`; this is the later, better-typed generation — see
// the design notes on the superseded `x + 32768` variant.
func transform(x int32, center, reverse bool) int32 {
	if center {
		x = 2*x - 32768
	}
	if reverse {
		x = -x
	}
	return x
}

// readSource returns the raw value at src, or the always-low floor
// for any source ID outside [0, SourceCount).
func readSource(raw [SourceCount]int16, src int) int32 {
	if src < 0 || src >= SourceCount {
		return alwaysLowValue
	}
	return int32(raw[src])
}

func clampI16(v int32) int16 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return int16(v)
}

// SplitUpdate is the 7-tuple accepted by SetFromPacket's second CSV:
// (target, pos_src, neg_src, pos_center, pos_reverse, neg_center, neg_reverse).
type SplitUpdate struct {
	Target                          int
	PosSrc, NegSrc                  int
	PosCenter, PosReverse           bool
	NegCenter, NegReverse           bool
}

/*-------------------------------------------------------------
 *
 * Name:	SetFromPacket
 *
 * Purpose:	Apply a control-plane mapping update atomically.
 *
 * Inputs:	directMap	- 16 source IDs, one per channel, applied
 *				  as Direct{src, inverted:false}.
 *		split		- optional split-mixer override for one
 *				  channel, applied after the direct map.
 *
 * Returns:	None. A target outside [0,15] in split is ignored.
 *
 *--------------------------------------------------------------*/

func (m *Mapper) SetFromPacket(directMap [ChannelCount]int, split *SplitUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, src := range directMap {
		m.table[i] = ChannelConfig{Src: src}
	}

	if split == nil {
		return
	}
	if split.Target < 0 || split.Target >= ChannelCount {
		return
	}
	m.table[split.Target] = ChannelConfig{
		IsSplit:   true,
		PosSrc:    split.PosSrc,
		NegSrc:    split.NegSrc,
		PosCenter: split.PosCenter,
		PosReverse: split.PosReverse,
		NegCenter: split.NegCenter,
		NegReverse: split.NegReverse,
	}
}

// SetChannel applies one channel's config directly, under the lock.
// Used by cmd/txengine to seed and reload the routing table, and by tests.
func (m *Mapper) SetChannel(i int, cfg ChannelConfig) {
	if i < 0 || i >= ChannelCount {
		return
	}
	m.mu.Lock()
	m.table[i] = cfg
	m.mu.Unlock()
}

// Snapshot returns a copy of the current routing table.
func (m *Mapper) Snapshot() [ChannelCount]ChannelConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table
}
