package tuning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_Step_OutputWithinRange(t *testing.T) {
	// Invariant 1.
	rapid.Check(t, func(rt *rapid.T) {
		r := int16(rapid.IntRange(-32768, 32767).Draw(rt, "r"))
		tune := Defaults()
		tune.SetDeadzone(float32(rapid.Float64Range(0, 0.99).Draw(rt, "dz")))
		tune.SetSensitivity(float32(rapid.Float64Range(0.01, 5).Draw(rt, "sens")))
		tune.SetSmoothing(float32(rapid.Float64Range(0, 1).Draw(rt, "smooth")))
		tune.SetCurveKind(CurveKind(rapid.IntRange(0, 3).Draw(rt, "curve")))
		tune.SetExpo(float32(rapid.Float64Range(-10, 10).Draw(rt, "expo")))
		tune.SetCinematicOn(rapid.Bool().Draw(rt, "cine"))
		tune.SetCineSpeed(float32(rapid.Float64Range(0, 10).Draw(rt, "cinespeed")))
		tune.SetCineAccel(float32(rapid.Float64Range(0, 10).Draw(rt, "cineaccel")))

		state := &AxisState{}
		out := Step(r, tune, state)
		assert.LessOrEqual(rt, int(math.Abs(float64(out))), 32767)
	})
}

func Test_Step_DeadzoneSuppression(t *testing.T) {
	// S3: dz=0.1, sens=1, smoothing=0, Linear curve, input 3000 -> output 0.
	tune := Defaults()
	tune.SetDeadzone(0.1)
	state := &AxisState{}
	out := Step(3000, tune, state)
	assert.Equal(t, int16(0), out)
}

func Test_Cinematic_MonotoneConvergence(t *testing.T) {
	// Invariant 6: constant input, v0=p0=0, |x-p| non-increasing after the first step.
	tune := Defaults()
	tune.SetCinematicOn(true)
	tune.SetCineSpeed(5)
	tune.SetCineAccel(5)
	state := &AxisState{}

	const target = 16000 // fixed raw input, constant every tick
	prevDist := math.MaxFloat64
	snapped := false
	for i := 0; i < 20000 && !snapped; i++ {
		Step(target, tune, state)
		x := float64(target) / 32767
		dist := math.Abs(x - state.P)
		if i > 0 {
			assert.LessOrEqual(t, dist, prevDist+1e-9, "step %d", i)
		}
		prevDist = dist
		if dist < 0.001 && math.Abs(state.V) < 0.01 {
			snapped = true
		}
	}
	assert.True(t, snapped, "cinematic controller never reached the snap region")
}

func Test_LowPass_Convergence(t *testing.T) {
	// Invariant 7: prev converges to x*32767 geometrically with ratio
	// alpha; normalized error reaches eps within ceil(ln(eps)/ln(alpha)) steps.
	const alpha = 0.5
	const eps = 0.001
	tune := Defaults()
	tune.SetSmoothing(alpha)
	state := &AxisState{}

	const r = 20000
	maxSteps := int(math.Ceil(math.Log(eps) / math.Log(alpha)))
	converged := false
	for i := 0; i < maxSteps; i++ {
		Step(r, tune, state)
		normErr := math.Abs(float64(state.Prev)-float64(r)) / 32767
		if normErr <= eps {
			converged = true
			break
		}
	}
	assert.True(t, converged)
}

func Test_Curve_LinearIsIdentity(t *testing.T) {
	assert.InDelta(t, 0.5, applyCurve(0.5, CurveLinear, 0), 1e-9)
	assert.InDelta(t, -0.5, applyCurve(-0.5, CurveLinear, 0), 1e-9)
}
