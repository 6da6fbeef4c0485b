package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Envelope keys added to every success body beside the payload's own fields.
const (
	fieldRequestID = "request_id"
	fieldTimestamp = "timestamp"
	fieldData      = "data"
)

// ErrorResponse is the standard error envelope. Error carries the message shown to the user.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// OK sends a 200 response. The payload's fields sit at the top level of the body next to
// request_id and timestamp, so clients read res.data.balance rather than res.data.data.balance.
func OK(c *gin.Context, data interface{}) {
	writeSuccess(c, http.StatusOK, data)
}

// Created sends a 201 response shaped like OK.
func Created(c *gin.Context, data interface{}) {
	writeSuccess(c, http.StatusCreated, data)
}

func writeSuccess(c *gin.Context, status int, data interface{}) {
	body, err := successBody(data)
	if err != nil {
		Error(c, err)
		return
	}
	body[fieldRequestID] = getRequestID(c)
	body[fieldTimestamp] = now()
	c.JSON(status, body)
}

// successBody flattens a payload that encodes as a JSON object. Anything else (arrays, scalars)
// is carried under "data". Payload fields named request_id or timestamp are overwritten.
func successBody(data interface{}) (map[string]interface{}, error) {
	body := make(map[string]interface{})
	if data == nil {
		return body, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode response payload: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		body[fieldData] = json.RawMessage(raw)
		return body, nil
	}
	for k, v := range fields {
		body[k] = v
	}
	return body, nil
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.InternalError(err)
	}
	// Errors are recorded on the context so the request logger can report them.
	_ = c.Error(err)

	c.JSON(appErr.HTTPStatus, ErrorResponse{
		ErrorCode: appErr.Code,
		Error:     appErr.Message,
		RequestID: getRequestID(c),
		Timestamp: now(),
	})
}

// AbortWithError sends an error response and stops the middleware chain.
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
