package objstore

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes reported by S3-compatible stores.
const (
	CodeNoSuchKey         = "NoSuchKey"
	CodeNoSuchUpload      = "NoSuchUpload"
	CodeNoSuchBucket      = "NoSuchBucket"
	CodeInvalidPart       = "InvalidPart"
	CodeInvalidPartOrder  = "InvalidPartOrder"
	CodeEntityTooSmall    = "EntityTooSmall"
	CodeInvalidRange      = "InvalidRange"
	CodeAccessDenied      = "AccessDenied"
	CodeKeyTooLong        = "KeyTooLongError"
	CodeInvalidObjectName = "InvalidObjectName"
	CodeMalformedXML      = "MalformedXML"
	CodeIncompleteBody    = "IncompleteBody"
	CodeInvalidArgument   = "InvalidArgument"
	CodeInternalError     = "InternalError"
	CodeSlowDown          = "SlowDown"
)

// A ResponseError is an error response returned by the object store.
type ResponseError struct {
	StatusCode int
	Code       string
	Message    string
	Key        string
}

func (e *ResponseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Key == "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, msg)
	}
	return fmt.Sprintf(
		"%s (%d): %s: %s", e.Code, e.StatusCode, e.Key, msg,
	)
}

// NotFound returns the error a store reports for a missing key.
func NotFound(key string) error {
	return &ResponseError{
		StatusCode: http.StatusNotFound,
		Code:       CodeNoSuchKey,
		Message:    "The specified key does not exist.",
		Key:        key,
	}
}

// IsNotFound reports whether err is a store response for a missing key
// or upload.
func IsNotFound(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
