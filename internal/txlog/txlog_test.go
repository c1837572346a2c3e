package txlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_FormatTimestamp_EmptyPatternUsesRFC3339(t *testing.T) {
	tsPattern = ""
	ts := time.Date(2026, 8, 6, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, ts.Format(time.RFC3339), FormatTimestamp(ts))
}

func Test_FormatTimestamp_AppliesStrftimePattern(t *testing.T) {
	tsPattern = "%Y-%m-%d"
	ts := time.Date(2026, 8, 6, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-06", FormatTimestamp(ts))
	tsPattern = ""
}

func Test_Default_NeverReturnsNil(t *testing.T) {
	assert.NotNil(t, Default())
}
