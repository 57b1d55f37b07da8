package controller

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"voluntariado-backend/middelware"
	"voluntariado-backend/models"
	"voluntariado-backend/utils"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const internalErrorDetails = "An unexpected error occurred"

// handler carries what every controller needs to bind, validate and answer
type handler struct {
	logger    logger.Logger
	validator *validator.Validate
}

func newHandler(log logger.Logger) handler {
	v := validator.New()
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return handler{logger: log, validator: v}
}

// ok writes a success envelope
func (h *handler) ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// fail writes an error envelope with a single error entry
func (h *handler) fail(c *gin.Context, status int, message, errType, details string) {
	c.JSON(status, models.APIResponse{
		Success: false,
		Message: message,
		Errors:  []models.APIError{{Type: errType, Details: details}},
	})
}

// respondError maps a service error to its HTTP status. Unclassified errors
// are logged and answered without internal detail.
func (h *handler) respondError(c *gin.Context, message string, err error) {
	status, errType := classifyError(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error(message)
		h.fail(c, status, message, errType, internalErrorDetails)
		return
	}
	h.logger.Debugf("%s: %v", message, err)

	var vErr *models.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		apiErrors := make([]models.APIError, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			apiErrors = append(apiErrors, models.APIError{Type: errType, Field: f.Field, Details: f.Error})
		}
		c.JSON(status, models.APIResponse{Success: false, Message: message, Errors: apiErrors})
		return
	}
	h.fail(c, status, message, errType, err.Error())
}

// classifyError returns the HTTP status and error type for a service error
func classifyError(err error) (int, string) {
	switch {
	case models.IsValidationError(err):
		return http.StatusBadRequest, "ValidationError"
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "AuthenticationError"
	case errors.Is(err, models.ErrNotAuthorized), errors.Is(err, models.ErrAccountInactive):
		return http.StatusForbidden, "AuthorizationError"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "NotFoundError"
	case errors.Is(err, models.ErrDuplicateApplication), errors.Is(err, models.ErrEmailTaken),
		errors.Is(err, models.ErrAlreadyExists), errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrBadgeAlreadyAwarded), errors.Is(err, models.ErrProvisioningBusy):
		return http.StatusConflict, "ConflictError"
	case errors.Is(err, models.ErrPaymentFailed):
		return http.StatusPaymentRequired, "PaymentError"
	case errors.Is(err, models.ErrOpportunityNotActive), errors.Is(err, models.ErrOpportunityFull),
		errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrHasApplications),
		errors.Is(err, models.ErrEditWindowExpired), errors.Is(err, models.ErrMessageDeleted),
		errors.Is(err, models.ErrOrganizationNotVerified), errors.Is(err, models.ErrInvalidSignature):
		return http.StatusBadRequest, "BusinessRuleError"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}

// bindJSON decodes and validates the request body into req
func (h *handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Debugf("Failed to bind JSON: %v", err)
		h.fail(c, http.StatusBadRequest, "Invalid request", "ValidationError", err.Error())
		return false
	}
	return h.validate(c, req)
}

// bindQuery decodes and validates the query string into req
func (h *handler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.logger.Debugf("Failed to bind query: %v", err)
		h.fail(c, http.StatusBadRequest, "Invalid query parameters", "ValidationError", err.Error())
		return false
	}
	return true
}

func (h *handler) validate(c *gin.Context, req interface{}) bool {
	if err := h.validator.Struct(req); err != nil {
		h.logger.Debugf("Validation failed: %v", err)
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  formatValidationErrors(err),
		})
		return false
	}
	return true
}

// formatValidationErrors formats validation errors into readable field errors
func formatValidationErrors(err error) []models.APIError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []models.APIError{{Type: "ValidationError", Details: err.Error()}}
	}

	apiErrors := make([]models.APIError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		var msg string
		switch fieldError.Tag() {
		case "required":
			msg = fieldError.Field() + " is required"
		case "min":
			msg = fieldError.Field() + " must be at least " + fieldError.Param() + " characters/items"
		case "max":
			msg = fieldError.Field() + " must be at most " + fieldError.Param() + " characters/items"
		case "gt", "gte":
			msg = fieldError.Field() + " must be greater than " + orEqual(fieldError.Tag()) + fieldError.Param()
		case "lt", "lte":
			msg = fieldError.Field() + " must be less than " + orEqual(fieldError.Tag()) + fieldError.Param()
		case "len":
			msg = fieldError.Field() + " must be exactly " + fieldError.Param() + " characters long"
		case "email":
			msg = fieldError.Field() + " must be a valid email address"
		case "url":
			msg = fieldError.Field() + " must be a valid URL"
		case "numeric":
			msg = fieldError.Field() + " must be a number"
		case "uppercase":
			msg = fieldError.Field() + " must be uppercase"
		case "oneof":
			msg = fieldError.Field() + " must be one of: " + strings.ReplaceAll(fieldError.Param(), " ", ", ")
		default:
			msg = fieldError.Field() + " is invalid"
		}
		apiErrors = append(apiErrors, models.APIError{Type: "ValidationError", Field: fieldError.Field(), Details: msg})
	}
	return apiErrors
}

func orEqual(tag string) string {
	if strings.HasSuffix(tag, "e") {
		return "or equal to "
	}
	return ""
}

// claims returns the authenticated caller, answering 401 when the route was not protected
func (h *handler) claims(c *gin.Context) (*models.JWTClaims, bool) {
	claims, ok := middelware.ClaimsFromContext(c)
	if !ok {
		h.logger.Error("JWT claims not found in context")
		h.fail(c, http.StatusUnauthorized, "Authentication required", "AuthenticationError", "User not authenticated")
		return nil, false
	}
	return claims, true
}

// pathID parses a positive numeric path parameter
func (h *handler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid "+name, "ValidationError", err.Error())
		return 0, false
	}
	return id, true
}

// imageUpload opens the multipart field "image". The caller must call the returned close func.
func (h *handler) imageUpload(c *gin.Context) (*models.ImageFile, func(), bool) {
	header, err := c.FormFile("image")
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Image is required", "ValidationError", "multipart field 'image' is missing")
		return nil, nil, false
	}
	f, err := header.Open()
	if err != nil {
		h.respondError(c, "Failed to read upload", err)
		return nil, nil, false
	}
	return &models.ImageFile{Filename: header.Filename, Size: header.Size, Content: f}, func() { f.Close() }, true
}
