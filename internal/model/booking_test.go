package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingActive(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusConfirmed}).Active())
	assert.True(t, (&Booking{Status: StatusCheckedIn}).Active())
	assert.False(t, (&Booking{Status: StatusCancelled}).Active())
}
