package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStatusIsActive tests which states block a duplicate submission
func TestStatusIsActive(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusAccepted.IsActive())
	assert.False(t, StatusDenied.IsActive())
}

// TestRequestValidate tests pickup and dropoff label bounds
func TestRequestValidate(t *testing.T) {
	r := Request{PickupLocation: "Dorm 5", DropoffLocation: "Library"}
	assert.NoError(t, r.Validate())

	r.PickupLocation = ""
	assert.Error(t, r.Validate())

	r.PickupLocation = "Dorm 5"
	r.DropoffLocation = strings.Repeat("x", 101)
	assert.Error(t, r.Validate())
}
