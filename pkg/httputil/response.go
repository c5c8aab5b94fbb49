package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allservices/marketplace-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Items interface{} `json:"items"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	RespondWithStatus(c, http.StatusOK, data)
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	RespondWithStatus(c, http.StatusCreated, data)
}

func RespondWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "internal server error"

	if appErr, ok := errors.As(err); ok {
		statusCode = appErr.StatusCode()
		if statusCode != http.StatusInternalServerError {
			message = appErr.Message
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(statusCode, Response{
		Status:  "error",
		Message: message,
	})
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, items interface{}, page, limit int) {
	RespondWithSuccess(c, PaginatedResponse{
		Page:  page,
		Limit: limit,
		Items: items,
	})
}
