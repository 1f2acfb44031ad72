package collaborators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseOutcomePrices_ScenarioS4 covers spec scenario S4's
// accept/reject cases.
func TestParseOutcomePrices_ScenarioS4(t *testing.T) {
	yes, no, ok := parseOutcomePrices(`["1", "0"]`)
	assert.True(t, ok)
	assert.Equal(t, 1.0, yes)
	assert.Equal(t, 0.0, no)

	yes, no, ok = parseOutcomePrices(`[1, 0]`)
	assert.True(t, ok)
	assert.Equal(t, 1.0, yes)
	assert.Equal(t, 0.0, no)

	_, _, ok = parseOutcomePrices(`["0", "1"]`)
	assert.True(t, ok)

	_, _, ok = parseOutcomePrices(`["0.9", "0.1"]`)
	assert.False(t, ok)

	_, _, ok = parseOutcomePrices(`not valid json`)
	assert.False(t, ok)

	_, _, ok = parseOutcomePrices(``)
	assert.False(t, ok)
}
