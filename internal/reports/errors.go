package reports

import "errors"

type Code string

const (
	CodeMissingParameter  Code = "missing_parameter"
	CodeInvalidDateFormat Code = "invalid_date_format"
	CodeUnknownReportType Code = "unknown_report_type"
	CodeUnsupportedFormat Code = "unsupported_format"
	CodeDataAccess        Code = "data_access"
	CodeExportIO          Code = "export_io"
)

// Error carries a taxonomy code and a caller-safe message. The wrapped
// cause is for logs only and must not reach the response body.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// UserFacing reports whether the error is the caller's fault (a 400-class
// validation failure) rather than an internal one.
func (e *Error) UserFacing() bool {
	switch e.Code {
	case CodeMissingParameter, CodeInvalidDateFormat, CodeUnknownReportType, CodeUnsupportedFormat:
		return true
	default:
		return false
	}
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the taxonomy code, or "" if err is not a report error.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
