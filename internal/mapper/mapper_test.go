package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_Update_DirectFidelity(t *testing.T) {
	// Invariant 4: direct src=i for every channel reproduces raw[i].
	m := New()
	for i := 0; i < ChannelCount; i++ {
		m.SetChannel(i, ChannelConfig{Src: i})
	}

	rapid.Check(t, func(rt *rapid.T) {
		var raw [SourceCount]int16
		for i := range raw {
			raw[i] = int16(rapid.IntRange(-32768, 32767).Draw(rt, "raw"))
		}
		out := m.Update(raw)
		for i := 0; i < ChannelCount; i++ {
			assert.Equal(rt, raw[i], out[i])
		}
	})
}

func Test_Update_SplitMixer(t *testing.T) {
	// Invariant 5: pos-src minus neg-src via reverse-on-neg.
	m := New()
	const a, b, target = 3, 4, 7
	m.SetChannel(target, ChannelConfig{
		IsSplit: true, PosSrc: a, NegSrc: b, NegReverse: true,
	})

	rapid.Check(t, func(rt *rapid.T) {
		var raw [SourceCount]int16
		raw[a] = int16(rapid.IntRange(-32768, 32767).Draw(rt, "a"))
		raw[b] = int16(rapid.IntRange(-32768, 32767).Draw(rt, "b"))
		out := m.Update(raw)
		want := clampI16(int32(raw[a]) - int32(raw[b]))
		assert.Equal(rt, want, out[target])
	})
}

func Test_Update_SplitMixer_Recentering(t *testing.T) {
	// S4: raw[6]=0, raw[7]=-1, pos_center=true, neg_reverse=true.
	m := New()
	m.SetChannel(3, ChannelConfig{
		IsSplit: true, PosSrc: 6, NegSrc: 7,
		PosCenter: true, NegReverse: true,
	})

	var raw [SourceCount]int16
	raw[6] = 0
	raw[7] = -1
	out := m.Update(raw)
	assert.Equal(t, int16(-32767), out[3])
}

func Test_Update_UnknownSourceIsAlwaysLow(t *testing.T) {
	m := New()
	m.SetChannel(0, ChannelConfig{Src: 99})
	var raw [SourceCount]int16
	out := m.Update(raw)
	assert.Equal(t, int16(-32768), out[0])
}

func Test_SetFromPacket_ScenarioS6(t *testing.T) {
	m := New()
	var directMap [ChannelCount]int
	for i := range directMap {
		directMap[i] = alwaysLowSource
	}
	directMap[0], directMap[1], directMap[2], directMap[3] = 0, 1, 2, 3

	m.SetFromPacket(directMap, &SplitUpdate{
		Target: 3, PosSrc: 0, NegSrc: 1, NegReverse: true,
	})

	var raw [SourceCount]int16
	raw[0] = 10000
	raw[1] = 2000
	out := m.Update(raw)
	assert.Equal(t, clampI16(int32(raw[0])-int32(raw[1])), out[3])
}

func Test_Update_OutputAlwaysInRange(t *testing.T) {
	m := New()
	rapid.Check(t, func(rt *rapid.T) {
		i := rapid.IntRange(0, ChannelCount-1).Draw(rt, "i")
		cfg := ChannelConfig{
			IsSplit:   rapid.Bool().Draw(rt, "split"),
			Src:       rapid.IntRange(-5, 25).Draw(rt, "src"),
			PosSrc:    rapid.IntRange(-5, 25).Draw(rt, "possrc"),
			NegSrc:    rapid.IntRange(-5, 25).Draw(rt, "negsrc"),
			PosCenter: rapid.Bool().Draw(rt, "poscenter"),
			NegCenter: rapid.Bool().Draw(rt, "negcenter"),
		}
		m.SetChannel(i, cfg)

		var raw [SourceCount]int16
		for j := range raw {
			raw[j] = int16(rapid.IntRange(-32768, 32767).Draw(rt, "raw"))
		}
		out := m.Update(raw)
		assert.GreaterOrEqual(rt, out[i], int16(-32768))
		assert.LessOrEqual(rt, out[i], int16(32767))
	})
}
