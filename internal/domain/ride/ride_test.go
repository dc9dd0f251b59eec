package ride

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validRide() Ride {
	return Ride{
		Origin:         "Main Campus",
		Destination:    "Airport",
		Stops:          []string{"Central Station"},
		DepartureTime:  time.Now().Add(24 * time.Hour),
		AvailableSeats: 3,
		PricePerSeat:   200,
		Status:         StatusScheduled,
		VehicleID:      1,
	}
}

// TestRideValidate tests offer validation bounds
func TestRideValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Ride)
		wantErr bool
	}{
		{"valid offer", func(r *Ride) {}, false},
		{"no stops is fine", func(r *Ride) { r.Stops = nil }, false},
		{"missing origin", func(r *Ride) { r.Origin = "" }, true},
		{"origin too long", func(r *Ride) { r.Origin = strings.Repeat("a", 101) }, true},
		{"missing destination", func(r *Ride) { r.Destination = "" }, true},
		{"empty stop label", func(r *Ride) { r.Stops = []string{""} }, true},
		{"stop label too long", func(r *Ride) { r.Stops = []string{strings.Repeat("b", 101)} }, true},
		{"zero seats", func(r *Ride) { r.AvailableSeats = 0 }, true},
		{"too many seats", func(r *Ride) { r.AvailableSeats = 11 }, true},
		{"price below minimum", func(r *Ride) { r.PricePerSeat = 149 }, true},
		{"price above maximum", func(r *Ride) { r.PricePerSeat = 501 }, true},
		{"missing departure time", func(r *Ride) { r.DepartureTime = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRide()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestEncodeStops tests stop serialization for storage
func TestEncodeStops(t *testing.T) {
	encoded, err := EncodeStops([]string{"A", "B"})
	assert.NoError(t, err)
	assert.Equal(t, `["A","B"]`, encoded)

	// nil encodes as an empty list, never null
	encoded, err = EncodeStops(nil)
	assert.NoError(t, err)
	assert.Equal(t, `[]`, encoded)
}

// TestDecodeStops tests tolerant parsing of stored stops
func TestDecodeStops(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, DecodeStops(`["A","B"]`))
	assert.Equal(t, []string{}, DecodeStops(""))
	assert.Equal(t, []string{}, DecodeStops("not json"))
}

// TestLocations tests the ordered route listing
func TestLocations(t *testing.T) {
	r := validRide()
	r.Stops = []string{"Stop1", "Stop2"}

	assert.Equal(t, []string{"Main Campus", "Stop1", "Stop2", "Airport"}, r.Locations())

	r.Stops = nil
	assert.Equal(t, []string{"Main Campus", "Airport"}, r.Locations())
}
