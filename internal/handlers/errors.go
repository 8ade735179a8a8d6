package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"golang-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidUserID),
		errors.Is(err, services.ErrInvalidOfferKind),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidImage),
		errors.Is(err, services.ErrInvalidSchedule),
		errors.Is(err, services.ErrCartEmpty),
		errors.Is(err, services.ErrInvalidDeliveryOption),
		errors.Is(err, services.ErrInvalidPaymentMethod),
		errors.Is(err, services.ErrAddressRequired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredential),
		errors.Is(err, services.ErrInvalidRefresh):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrAccountInactive):
		return http.StatusForbidden
	case errors.Is(err, services.ErrStoreNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrOfferNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrOfferUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status it maps to. Internal errors are
// attached to the gin context for the request logger and hidden from the
// client.
func respondError(c *gin.Context, title string, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal error"
	}
	c.JSON(status, ErrorResponse{
		Error:   title,
		Message: message,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Message: err.Error(),
	})
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found",
		})
		return "", false
	}
	uid, ok := userID.(string)
	if !ok || uid == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found",
		})
		return "", false
	}
	return uid, true
}

// paging reads limit and offset query parameters, clamping limit to 1..100.
func paging(c *gin.Context, defaultLimit int) (int, int) {
	limit := queryInt(c, "limit", defaultLimit)
	offset := queryInt(c, "offset", 0)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
