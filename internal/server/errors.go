package server

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	auditservice "github.com/railzwaylabs/waterworks/internal/audit/service"
	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	customerdomain "github.com/railzwaylabs/waterworks/internal/customer/domain"
	paymentdomain "github.com/railzwaylabs/waterworks/internal/payment/domain"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
	reportdomain "github.com/railzwaylabs/waterworks/internal/report/domain"
	sectordomain "github.com/railzwaylabs/waterworks/internal/sector/domain"
	"github.com/railzwaylabs/waterworks/internal/session"
	"github.com/railzwaylabs/waterworks/pkg/db/pagination"
)

// APIError is an error with a fixed HTTP status and a stable code.
type APIError struct {
	Status  int
	Code    string
	Message string
	Field   string
}

func (e *APIError) Error() string {
	return e.Code
}

var (
	ErrInvalidRequest = &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request"}
	ErrInternal       = &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal error"}
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "not found"}
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func newValidationError(field, code, message string) error {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{authzdomain.ErrUnauthenticated, http.StatusUnauthorized},
	{authdomain.ErrInvalidCredentials, http.StatusUnauthorized},
	{authdomain.ErrUserInactive, http.StatusUnauthorized},
	{session.ErrNotFound, http.StatusUnauthorized},
	{authzdomain.ErrForbidden, http.StatusForbidden},

	{authdomain.ErrUserNotFound, http.StatusNotFound},
	{authzdomain.ErrUserNotFound, http.StatusNotFound},
	{customerdomain.ErrNotFound, http.StatusNotFound},
	{sectordomain.ErrNotFound, http.StatusNotFound},
	{readingdomain.ErrNotFound, http.StatusNotFound},
	{readingdomain.ErrCustomerNotFound, http.StatusNotFound},
	{paymentdomain.ErrReadingNotFound, http.StatusNotFound},
	{paymentdomain.ErrNoPayment, http.StatusNotFound},
	{reportdomain.ErrCustomerNotFound, http.StatusNotFound},

	{authdomain.ErrEmailTaken, http.StatusConflict},
	{authdomain.ErrCannotDeactivateSelf, http.StatusConflict},
	{customerdomain.ErrMeterNumberTaken, http.StatusConflict},
	{sectordomain.ErrNameTaken, http.StatusConflict},
	{readingdomain.ErrNotPending, http.StatusConflict},
	{readingdomain.ErrNotLatest, http.StatusConflict},
	{readingdomain.ErrCustomerInactive, http.StatusConflict},
	{paymentdomain.ErrAlreadyPaid, http.StatusConflict},

	{authdomain.ErrInvalidFirstName, http.StatusBadRequest},
	{authdomain.ErrInvalidLastName, http.StatusBadRequest},
	{authdomain.ErrInvalidEmail, http.StatusBadRequest},
	{authdomain.ErrInvalidRole, http.StatusBadRequest},
	{authdomain.ErrPasswordTooShort, http.StatusBadRequest},
	{authdomain.ErrPasswordMismatch, http.StatusBadRequest},
	{authzdomain.ErrUnknownCode, http.StatusBadRequest},
	{customerdomain.ErrInvalidFirstName, http.StatusBadRequest},
	{customerdomain.ErrInvalidLastName, http.StatusBadRequest},
	{customerdomain.ErrInvalidSector, http.StatusBadRequest},
	{customerdomain.ErrInvalidMeterNumber, http.StatusBadRequest},
	{sectordomain.ErrInvalidName, http.StatusBadRequest},
	{readingdomain.ErrInvalidCustomer, http.StatusBadRequest},
	{readingdomain.ErrInvalidReadingValue, http.StatusBadRequest},
	{readingdomain.ErrInvalidReadingDate, http.StatusBadRequest},
	{reportdomain.ErrInvalidPeriod, http.StatusBadRequest},
	{pagination.ErrInvalidPageToken, http.StatusBadRequest},
	{auditservice.ErrUnsupportedFormat, http.StatusBadRequest},
}

// AbortWithError writes the JSON error envelope for err and stops the
// handler chain. Unknown errors become 500 and are kept on the context for
// the request logger.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.AbortWithStatusJSON(apiErr.Status, errorResponse{Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Field:   apiErr.Field,
		}})
		return
	}

	for _, entry := range statusBySentinel {
		if errors.Is(err, entry.err) {
			c.AbortWithStatusJSON(entry.status, errorResponse{Error: errorBody{
				Code:    entry.err.Error(),
				Message: err.Error(),
			}})
			return
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ErrInternal.Status, errorResponse{Error: errorBody{
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}})
}
