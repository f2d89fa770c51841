package rental

import "errors"

// Outcomes of Rent and Return. Callers can distinguish "try a different
// model or location" (ErrNoAvailability) from "fix your request"
// (ErrInsufficientFunds, ErrNotRenter) from unknown entities.
var (
	// ErrModelNotFound means the requested drone model does not exist.
	ErrModelNotFound = errors.New("drone model not found")

	// ErrDroneNotFound means no drone matches the given serial number.
	ErrDroneNotFound = errors.New("drone not found")

	// ErrInsufficientFunds means the user's balance does not cover the
	// model's rental price.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoAvailability means no station is within service range, or no idle
	// drone of the requested model is docked at one. It is an expected
	// operational outcome, not a fault.
	ErrNoAvailability = errors.New("no drones available")

	// ErrNotRenter means the drone's current renter is not the caller.
	ErrNotRenter = errors.New("caller is not the drone's renter")
)

// Errors returned by ReservationStore implementations to report why the
// atomic reserve-and-debit (or release) could not commit.
var (
	// ErrDroneNotIdle means the drone was no longer idle at write time,
	// typically because a concurrent rental won the race.
	ErrDroneNotIdle = errors.New("drone is no longer idle")

	// ErrBalanceTooLow means the commit-time balance check failed: the
	// balance row was below the price when the debit ran.
	ErrBalanceTooLow = errors.New("balance below rental price")
)
