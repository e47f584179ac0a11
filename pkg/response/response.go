package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/student-marks-api/pkg/errors"
	"github.com/noah-isme/student-marks-api/pkg/pagination"
)

// Envelope wraps list results with pagination metadata.
type Envelope struct {
	Data interface{}     `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// errorBody is the contract for 4xx validation/constraint failures.
type errorBody struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Errors  []appErrors.FieldError `json:"errors,omitempty"`
}

// OK responds with HTTP 200 and the entity as the body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Paginated responds with the {data, meta} list envelope.
func Paginated(c *gin.Context, data interface{}, meta pagination.Meta) {
	c.JSON(http.StatusOK, Envelope{Data: data, Meta: meta})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error maps a domain error onto the wire contract. Uncategorized errors
// become a generic 500 so internals never leak to the client; the request
// logger picks them up from the gin error list.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(appErr)

	switch {
	case appErr.Status == http.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": appErr.Message})
	case appErr.Status >= http.StatusBadRequest && appErr.Status < http.StatusInternalServerError:
		c.JSON(appErr.Status, errorBody{Status: "error", Message: appErr.Message, Errors: appErr.Fields})
	default:
		c.JSON(http.StatusInternalServerError, errorBody{Status: "error", Message: "Something went wrong!"})
	}
}
