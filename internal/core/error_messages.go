// Package core provides the in-memory data-view engine for vehicle records.
//
// # Error Codes Reference
//
// The engine itself never fails: empty input produces empty aggregates and
// an out-of-range page produces an empty page. Errors come from the layers
// around it (record sources, HTTP parameters, chart rendering) and are
// mapped here to user-friendly messages with a code for support reference.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Unsupported format: The data file type is not supported
//	         Action: Use a .json, .yaml, .yml or .csv file
//	         Patterns: "unsupported format"
//
//	SRC002 - Parse failure: The data file could not be read
//	         Action: Check that the file is well-formed
//	         Patterns: "parse records", "invalid csv"
//
//	SRC003 - Not found: The data file does not exist
//	         Action: Verify DATA_SOURCES points at existing files
//	         Patterns: "no such file", "not found"
//
//	SRC004 - Database: The record table could not be queried
//	         Action: Check DATABASE_URL and DATA_TABLE
//	         Patterns: "query records", "connection refused"
//
// # View Errors (VIEW001-VIEW099)
//
//	VIEW001 - Unknown column: The column does not exist
//	          Action: Use one of VIN, Make, Model, Year, Type, Range, County
//	          Patterns: "unknown column"
//
//	VIEW002 - Invalid page: The page number is not a whole number
//	          Action: Use a page number starting at 0
//	          Patterns: "invalid page"
//
//	VIEW003 - Session expired: The table view session was not found
//	          Action: Reload the dashboard
//	          Patterns: "session"
//
// # Chart Errors (CHART001-CHART099)
//
//	CHART001 - Unknown chart: The requested chart does not exist
//	           Action: Use year, type, range, makemodel or summary
//	           Patterns: "unknown chart"
//
//	CHART002 - Render failure: The chart could not be drawn
//	           Action: Please try again
//	           Patterns: "render chart"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Patterns: "context deadline exceeded", "timeout"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Patterns are matched case-insensitively using strings.Contains and the
// first match wins, so more specific patterns come first.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors raised by callers validating view input.
var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidPage   = errors.New("invalid page")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Source errors
	{
		pattern: "unsupported format",
		msg: UserMessage{
			Message: "The data file type is not supported",
			Action:  "Use a .json, .yaml, .yml or .csv file",
			Code:    "SRC001",
		},
	},
	{
		pattern: "parse records",
		msg: UserMessage{
			Message: "The data file could not be read",
			Action:  "Check that the file is well-formed",
			Code:    "SRC002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The data file could not be read",
			Action:  "Check that the file is well-formed",
			Code:    "SRC002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The data file does not exist",
			Action:  "Verify DATA_SOURCES points at existing files",
			Code:    "SRC003",
		},
	},
	{
		pattern: "query records",
		msg: UserMessage{
			Message: "The record table could not be queried",
			Action:  "Check DATABASE_URL and DATA_TABLE",
			Code:    "SRC004",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The record table could not be queried",
			Action:  "Check DATABASE_URL and DATA_TABLE",
			Code:    "SRC004",
		},
	},

	// View errors
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "The column does not exist",
			Action:  "Use one of VIN, Make, Model, Year, Type, Range, County",
			Code:    "VIEW001",
		},
	},
	{
		pattern: "invalid page",
		msg: UserMessage{
			Message: "The page number is not a whole number",
			Action:  "Use a page number starting at 0",
			Code:    "VIEW002",
		},
	},
	{
		pattern: "session",
		msg: UserMessage{
			Message: "The table view session was not found",
			Action:  "Reload the dashboard",
			Code:    "VIEW003",
		},
	},

	// Chart errors
	{
		pattern: "unknown chart",
		msg: UserMessage{
			Message: "The requested chart does not exist",
			Action:  "Use year, type, range, makemodel or summary",
			Code:    "CHART001",
		},
	},
	{
		pattern: "render chart",
		msg: UserMessage{
			Message: "The chart could not be drawn",
			Action:  "Please try again",
			Code:    "CHART002",
		},
	},

	// Request errors
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "The data file does not exist",
			Action:  "Verify DATA_SOURCES points at existing files",
			Code:    "SRC003",
		},
	},
}

// defaultMessage is returned when no specific pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the zero UserMessage for a nil error and ERR000 when no
// pattern matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
