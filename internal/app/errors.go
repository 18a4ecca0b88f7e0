package app

import "errors"

// ErrActionInFlight and related errors describe dispatch-time failures.
var (
	ErrActionInFlight           = errors.New("an action for this plan is already in flight")
	ErrChangeManagementDisabled = errors.New("change management is disabled")
	ErrInvalidPlanID            = errors.New("invalid plan id")
)
