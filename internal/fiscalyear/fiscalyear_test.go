package fiscalyear

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOf_BeforeAprilBelongsToPreviousYear(t *testing.T) {
	fy := Of(time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, 2023, fy.StartYear)
	assert.Equal(t, 2024, fy.EndYear)
}

func TestOf_AprilStartsNewYear(t *testing.T) {
	fy := Of(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2024, fy.StartYear)
	assert.Equal(t, 2025, fy.EndYear)
}

func TestStartAndStamp(t *testing.T) {
	fy := Of(time.Date(2024, time.December, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), fy.Start())
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), fy.End())
	assert.Equal(t, "20242025", fy.Stamp())
}
