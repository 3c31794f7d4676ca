package api

import (
	"errors"
	"net/http"

	"FilingLens/internal/domain/models"
	xhttp "FilingLens/pkg/http"
)

// toAppError maps usecase errors onto HTTP errors. Anything unrecognised
// came from the analytics engine.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, models.ErrInvalidDateRange):
		return xhttp.NewAppError("ERR_INVALID_DATE_RANGE", "start_date", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrUnknownField):
		return xhttp.NewAppError("ERR_UNKNOWN_FIELD", "field", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrInvalidFieldValue):
		return xhttp.NewAppError("ERR_INVALID_VALUE", "value", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrFeatureOutOfRange):
		return xhttp.NewAppError("ERR_FEATURE_OUT_OF_RANGE", "value", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrUnresolvedPoint):
		return xhttp.NewAppError("ERR_UNRESOLVED_POINT", "", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrNotLoaded):
		return xhttp.NewAppError("ERR_NOT_LOADED", "", err.Error(), http.StatusConflict).WithError(err)
	case errors.Is(err, models.ErrStaleResult):
		return xhttp.ConflictError("a newer request has already been applied").WithError(err)
	}
	return xhttp.UpstreamError("analytics engine request failed").WithError(err)
}
