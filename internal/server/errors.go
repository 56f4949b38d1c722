package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	boarddomain "github.com/floorops/floorops/internal/board/domain"
	kitchendomain "github.com/floorops/floorops/internal/kitchen/domain"
	orderdomain "github.com/floorops/floorops/internal/order/domain"
	reservationdomain "github.com/floorops/floorops/internal/reservation/domain"
	tabledomain "github.com/floorops/floorops/internal/table/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		// Conflicts carry the detail: stock numbers, the blocking
		// reservation's time and customer, and so on.
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isWrongStateError(err):
		return http.StatusConflict, errorPayload{
			Type:    "wrong_state",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrEmptyCart),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidDiscountRate),
		errors.Is(err, orderdomain.ErrUnknownPaymentMethod),
		errors.Is(err, reservationdomain.ErrCustomerNameRequired),
		errors.Is(err, reservationdomain.ErrReservedAtRequired),
		errors.Is(err, reservationdomain.ErrReservedAtInPast),
		errors.Is(err, kitchendomain.ErrUnknownItemStatus):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	var stockErr *orderdomain.InsufficientStockError
	var windowErr *reservationdomain.WindowConflictError
	var occupiedErr *reservationdomain.TableOccupiedError
	var blockedErr *boarddomain.TableBlockedError
	switch {
	case errors.As(err, &stockErr),
		errors.As(err, &windowErr),
		errors.As(err, &occupiedErr),
		errors.As(err, &blockedErr):
		return true
	case errors.Is(err, tabledomain.ErrTableNumberTaken),
		errors.Is(err, tabledomain.ErrTableHasDependents),
		errors.Is(err, tabledomain.ErrTableHasOpenOrder):
		return true
	default:
		return false
	}
}

func isWrongStateError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrOrderClosed),
		errors.Is(err, tabledomain.ErrTableInactive),
		errors.Is(err, reservationdomain.ErrReservationNotActive):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tabledomain.ErrTableNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrNoOpenOrder),
		errors.Is(err, orderdomain.ErrProductNotFound),
		errors.Is(err, reservationdomain.ErrReservationNotFound),
		errors.Is(err, kitchendomain.ErrItemNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
