package particles

import (
	"os"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The homepage runs static/js/particles.js, a port of this package. Its
// tuning constants must stay equal to the ones here.
func TestBrowserScriptConstantsMatch(t *testing.T) {
	src, err := os.ReadFile("../../static/js/particles.js")
	require.NoError(t, err)

	decl := regexp.MustCompile(`(?m)^\s*var ([A-Z_]+) = ([0-9.]+);`)
	got := map[string]float64{}
	for _, m := range decl.FindAllStringSubmatch(string(src), -1) {
		v, err := strconv.ParseFloat(m[2], 64)
		require.NoError(t, err, m[1])
		got[m[1]] = v
	}

	want := map[string]float64{
		"SAMPLE_MS":      float64(sampleInterval.Milliseconds()),
		"ADJUST_MS":      float64(adjustInterval.Milliseconds()),
		"LOW_FPS":        lowFPS,
		"HIGH_FPS":       highFPS,
		"MIN_ADAPTIVE":   minAdaptiveSize,
		"GROW_STEP":      growStep,
		"MAX_STEP":       maxFrameStep,
		"TRAIL_FLOOR":    trailFloor,
		"TRAIL_INTERVAL": float64(trailInterval.Milliseconds()),
	}
	for name, v := range want {
		if assert.Contains(t, got, name) {
			assert.Equal(t, v, got[name], name)
		}
	}
}
