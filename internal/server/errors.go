package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/helioscrm/helios/internal/apikey/domain"
	"github.com/helioscrm/helios/internal/authorization"
	customerdomain "github.com/helioscrm/helios/internal/customer/domain"
	documentdomain "github.com/helioscrm/helios/internal/document/domain"
	grantsdomain "github.com/helioscrm/helios/internal/grants/domain"
	leaddomain "github.com/helioscrm/helios/internal/lead/domain"
	orgdomain "github.com/helioscrm/helios/internal/organization/domain"
	projectdomain "github.com/helioscrm/helios/internal/project/domain"
	solardomain "github.com/helioscrm/helios/internal/solar/domain"
	subsidydomain "github.com/helioscrm/helios/internal/subsidy/domain"
	ticketdomain "github.com/helioscrm/helios/internal/ticket/domain"
	timeentrydomain "github.com/helioscrm/helios/internal/timeentry/domain"
	"gorm.io/gorm"
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
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrUpgradeRequired = errors.New("upgrade_required")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal_error")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
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
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, apikeydomain.ErrInvalidKey):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrUpgradeRequired):
		return http.StatusForbidden, errorPayload{
			Type:    "upgrade_required",
			Message: "subscription upgrade required",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictErrorMessage(err),
		}
	case errors.Is(err, documentdomain.ErrLinkExpired):
		return http.StatusGone, errorPayload{
			Type:    "link_expired",
			Message: "share link expired",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, solardomain.ErrImplausibleSizing):
		// A computation fault, not a caller mistake.
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "implausible derived system size",
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isSolarValidationError(err),
		isGrantsValidationError(err),
		isCustomerValidationError(err),
		isLeadValidationError(err),
		isProjectValidationError(err),
		isSubsidyValidationError(err),
		isTicketValidationError(err),
		isOrganizationValidationError(err),
		isAPIKeyValidationError(err),
		errors.Is(err, timeentrydomain.ErrMissingUser),
		errors.Is(err, documentdomain.ErrInvalidProject):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, leaddomain.ErrInvalidTransition),
		errors.Is(err, leaddomain.ErrAlreadyConverted),
		errors.Is(err, projectdomain.ErrInvalidTransition),
		errors.Is(err, subsidydomain.ErrInvalidTransition),
		errors.Is(err, timeentrydomain.ErrAlreadyClockedIn),
		errors.Is(err, timeentrydomain.ErrNotClockedIn):
		return true
	default:
		return false
	}
}

func conflictErrorMessage(err error) string {
	switch {
	case errors.Is(err, leaddomain.ErrInvalidTransition),
		errors.Is(err, projectdomain.ErrInvalidTransition),
		errors.Is(err, subsidydomain.ErrInvalidTransition):
		return "invalid transition"
	case errors.Is(err, leaddomain.ErrAlreadyConverted):
		return "lead already converted"
	case errors.Is(err, timeentrydomain.ErrAlreadyClockedIn):
		return "already clocked in"
	case errors.Is(err, timeentrydomain.ErrNotClockedIn):
		return "not clocked in"
	default:
		return "conflict"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, leaddomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, subsidydomain.ErrNotFound),
		errors.Is(err, documentdomain.ErrNotFound),
		errors.Is(err, ticketdomain.ErrNotFound),
		errors.Is(err, timeentrydomain.ErrNotFound),
		errors.Is(err, orgdomain.ErrNotFound),
		errors.Is(err, apikeydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isSolarValidationError(err error) bool {
	switch {
	case errors.Is(err, solardomain.ErrInvalidConsumption),
		errors.Is(err, solardomain.ErrInvalidInstallationType),
		errors.Is(err, solardomain.ErrInvalidLatitude),
		errors.Is(err, solardomain.ErrInvalidLongitude),
		errors.Is(err, solardomain.ErrInvalidOrientation),
		errors.Is(err, solardomain.ErrInvalidTilt):
		return true
	default:
		return false
	}
}

func isGrantsValidationError(err error) bool {
	switch {
	case errors.Is(err, grantsdomain.ErrInvalidRegion),
		errors.Is(err, grantsdomain.ErrInvalidSystemSize),
		errors.Is(err, grantsdomain.ErrInvalidTotalCost):
		return true
	default:
		return false
	}
}

func isCustomerValidationError(err error) bool {
	return errors.Is(err, customerdomain.ErrInvalidName)
}

func isLeadValidationError(err error) bool {
	switch {
	case errors.Is(err, leaddomain.ErrInvalidName),
		errors.Is(err, leaddomain.ErrInvalidStage):
		return true
	default:
		return false
	}
}

func isProjectValidationError(err error) bool {
	switch {
	case errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, projectdomain.ErrInvalidCustomer),
		errors.Is(err, projectdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isSubsidyValidationError(err error) bool {
	switch {
	case errors.Is(err, subsidydomain.ErrInvalidProgram),
		errors.Is(err, subsidydomain.ErrInvalidProject),
		errors.Is(err, subsidydomain.ErrInvalidAmount),
		errors.Is(err, subsidydomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isTicketValidationError(err error) bool {
	switch {
	case errors.Is(err, ticketdomain.ErrInvalidSubject),
		errors.Is(err, ticketdomain.ErrInvalidStatus),
		errors.Is(err, ticketdomain.ErrInvalidPriority):
		return true
	default:
		return false
	}
}

func isOrganizationValidationError(err error) bool {
	switch {
	case errors.Is(err, orgdomain.ErrInvalidName),
		errors.Is(err, orgdomain.ErrInvalidPlan):
		return true
	default:
		return false
	}
}

func isAPIKeyValidationError(err error) bool {
	switch {
	case errors.Is(err, apikeydomain.ErrInvalidName),
		errors.Is(err, apikeydomain.ErrInvalidOrg):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if code == "missing_user" {
		return "user_id"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
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
