package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMajorToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2900), majorToMinorUnits(29.00))
	assert.Equal(t, int64(2999), majorToMinorUnits(29.99))
	assert.Equal(t, int64(10), majorToMinorUnits(0.1))
	assert.Equal(t, int64(0), majorToMinorUnits(0))
	// float rounding: 19.99*100 is 1998.999... without rounding
	assert.Equal(t, int64(1999), majorToMinorUnits(19.99))
}
