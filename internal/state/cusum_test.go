package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCUSUMDetector_NoAlarmOnStableSignal(t *testing.T) {
	c := NewCUSUMDetector(0.5, 5.0)
	alarmed := false
	for i := 0; i < 50; i++ {
		if c.Observe(10, int64(i*1000)) {
			alarmed = true
		}
	}
	assert.False(t, alarmed)
	assert.False(t, c.Alarmed())
}

func TestCUSUMDetector_AlarmsOnSustainedShift(t *testing.T) {
	c := NewCUSUMDetector(0.5, 5.0)
	for i := 0; i < 10; i++ {
		c.Observe(10, int64(i*1000))
	}
	alarmed := false
	var alarmTS int64
	for i := 10; i < 60; i++ {
		ts := int64(i * 1000)
		if c.Observe(30, ts) {
			alarmed = true
			alarmTS = ts
			break
		}
	}
	assert.True(t, alarmed)
	assert.True(t, c.Alarmed())
	increase, decrease := c.Direction()
	assert.True(t, increase)
	assert.False(t, decrease)
	assert.NotNil(t, c.ChangePointTimestamp())
	assert.Equal(t, alarmTS, *c.ChangePointTimestamp())
}

func TestCUSUMDetector_AlarmsOnSustainedDrop(t *testing.T) {
	c := NewCUSUMDetector(0.5, 5.0)
	for i := 0; i < 10; i++ {
		c.Observe(10, int64(i*1000))
	}
	alarmed := false
	for i := 10; i < 60; i++ {
		if c.Observe(-10, int64(i*1000)) {
			alarmed = true
			break
		}
	}
	assert.True(t, alarmed)
	_, decrease := c.Direction()
	assert.True(t, decrease)
}

func TestCUSUMDetector_Reset(t *testing.T) {
	c := NewCUSUMDetector(0.5, 5.0)
	for i := 0; i < 30; i++ {
		c.Observe(float64(i), int64(i*1000))
	}
	assert.True(t, c.Alarmed())
	c.Reset()
	assert.False(t, c.Alarmed())
	assert.Equal(t, 0.0, c.FocusStatistic())
}
