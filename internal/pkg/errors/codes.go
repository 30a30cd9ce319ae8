package errors

import "net/http"

var (
	ErrDestinationNotFound = New(
		"DESTINATION_NOT_FOUND",
		"Destination could not be geocoded",
		http.StatusUnprocessableEntity,
	)

	ErrTripNotFound = New(
		"TRIP_NOT_FOUND",
		"Trip not found",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrRoutingUnavailable = New(
		"ROUTING_UNAVAILABLE",
		"Routing provider is unavailable",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
