package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"coastalstay/internal/app/actor"
	"coastalstay/internal/app/commands"
	propertyapp "coastalstay/internal/app/handlers/properties"
	"coastalstay/internal/app/middleware"
	"coastalstay/internal/app/queries"
	"coastalstay/internal/app/services/auth"
	domainauth "coastalstay/internal/domain/auth"
	"coastalstay/internal/domain/booking"
	"coastalstay/internal/domain/inquiries"
	"coastalstay/internal/domain/pricing"
	"coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
	"coastalstay/internal/domain/shared/money"
	"coastalstay/internal/domain/user"
	"coastalstay/internal/infra/validation"
)

var notFoundErrors = []error{
	properties.ErrNotFound,
	booking.ErrBookingNotFound,
	user.ErrNotFound,
}

var conflictErrors = []error{
	booking.ErrOverlappingBooking,
	booking.ErrDuplicateBookingID,
	properties.ErrConcurrentWrite,
	properties.ErrSlugTaken,
	user.ErrEmailAlreadyUsed,
}

var badRequestErrors = []error{
	validation.ErrInvalid,
	daterange.ErrInvalidDate,
	daterange.ErrInvalidRange,
	money.ErrInvalidCurrency,
	money.ErrNegativeAmount,
	pricing.ErrRuleIDRequired,
	pricing.ErrDuplicateRuleID,
	pricing.ErrNegativePrice,
	pricing.ErrRuleRange,
	pricing.ErrOverlappingRules,
	pricing.ErrCurrencyRequired,
	booking.ErrInvalidBookingRange,
	booking.ErrBookingIDRequired,
	properties.ErrNameRequired,
	properties.ErrSlugInvalid,
	properties.ErrGuestsLimit,
	properties.ErrRoomsNegative,
	properties.ErrImageRequired,
	inquiries.ErrInvalidKind,
	inquiries.ErrNameRequired,
	inquiries.ErrMessageRequired,
	inquiries.ErrMessageTooLong,
	inquiries.ErrInvalidPhone,
	inquiries.ErrPropertyRequired,
	inquiries.ErrGuestsRequired,
	inquiries.ErrCompanyRequired,
	user.ErrEmailInvalid,
	user.ErrInvalidRole,
	propertyapp.ErrInvalidStay,
	propertyapp.ErrInvalidMonth,
	propertyapp.ErrInvalidRole,
	propertyapp.ErrPhotoType,
	auth.ErrPasswordTooShort,
}

var unauthorizedErrors = []error{
	actor.ErrUnauthenticated,
	auth.ErrInvalidCredentials,
	domainauth.ErrSessionNotFound,
}

// statusFor maps an application error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound
	case matchesAny(err, conflictErrors):
		return http.StatusConflict
	case matchesAny(err, badRequestErrors):
		return http.StatusBadRequest
	case matchesAny(err, unauthorizedErrors):
		return http.StatusUnauthorized
	case errors.Is(err, actor.ErrForbidden), errors.Is(err, auth.ErrAccountDisabled):
		return http.StatusForbidden
	case errors.Is(err, propertyapp.ErrPhotoTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, middleware.ErrReplayedFailure):
		return http.StatusConflict
	case errors.Is(err, propertyapp.ErrPhotoStorageMissing),
		errors.Is(err, commands.ErrHandlerNotFound),
		errors.Is(err, queries.ErrHandlerNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError writes the error body. Internal errors are logged and their
// message is hidden from the client.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
		}
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	body := gin.H{"error": err.Error()}
	var verr *validation.Error
	if errors.As(err, &verr) {
		body["error"] = "validation failed"
		body["fields"] = verr.Fields
	}
	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
