package dto

import "time"

// SendOTPRequest starts email verification for a new account
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest submits the emailed verification code
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// RegisterRequest creates an account for a verified email
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone_number" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest authenticates under a role
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=driver passenger"`
}

// CreateVehicleRequest registers a vehicle under the caller's driver profile
type CreateVehicleRequest struct {
	Make        string `json:"make" binding:"required"`
	Model       string `json:"model" binding:"required"`
	NumberPlate string `json:"number_plate" binding:"required"`
}

// CreateRideRequest posts a new ride offer
type CreateRideRequest struct {
	VehicleID      int64     `json:"vehicle_id" binding:"required"`
	Origin         string    `json:"origin" binding:"required"`
	Destination    string    `json:"destination" binding:"required"`
	Stops          []string  `json:"route_stops"`
	DepartureTime  time.Time `json:"departure_time" binding:"required"`
	AvailableSeats int       `json:"available_seats" binding:"required"`
	PricePerSeat   int       `json:"price_per_seat" binding:"required"`
}

// RequestRideRequest asks for a seat on a ride
type RequestRideRequest struct {
	RideID          int64  `json:"ride_id" binding:"required"`
	PickupLocation  string `json:"pickup_location" binding:"required"`
	DropoffLocation string `json:"dropoff_location" binding:"required"`
}

// SendMessageRequest posts a chat message to a ride's conversation
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
