package booking

import (
	"errors"
	"fmt"

	bookingRepo "resolvo/database/repository/booking"
	"resolvo/utils"
)

func errBookingNotFound(bookingID string) error {
	return utils.NewServiceError(utils.CodeNotFound, fmt.Sprintf("booking %s not found", bookingID))
}

func errChangeRequestNotFound(changeRequestID string) error {
	return utils.NewServiceError(utils.CodeNotFound, fmt.Sprintf("change request %s not found", changeRequestID))
}

func errInvalidInput(msg string) error {
	return utils.NewServiceError(utils.CodeInvalidInput, msg)
}

func errInvalidTransition(msg string) error {
	return utils.NewServiceError(utils.CodeInvalidTransition, msg)
}

func errForbidden(msg string) error {
	return utils.NewServiceError(utils.CodeForbidden, msg)
}

func errConflict(bookingID string) error {
	return utils.NewServiceError(utils.CodeConflict,
		fmt.Sprintf("booking %s was modified concurrently; re-read and retry", bookingID))
}

// translateRepoError lifts store sentinels into caller-facing errors.
// Anything unrecognized is wrapped as an internal failure.
func translateRepoError(err error, bookingID string) error {
	switch {
	case errors.Is(err, bookingRepo.ErrNotFound):
		return errBookingNotFound(bookingID)
	case errors.Is(err, bookingRepo.ErrVersionConflict):
		return errConflict(bookingID)
	case errors.Is(err, bookingRepo.ErrDuplicateOpenRequest):
		return utils.NewServiceError(utils.CodeDuplicateOpenRequest,
			"an open change request from this requester already exists for the booking")
	case errors.Is(err, bookingRepo.ErrAlreadyResolved):
		return utils.NewServiceError(utils.CodeAlreadyResolved, "change request has already been resolved")
	default:
		return utils.WrapServiceError(utils.CodeInternal, "booking store failure", err)
	}
}
