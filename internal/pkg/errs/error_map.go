package errs

import "net/http"

// errorMap holds the default message and HTTP status for every reason
// code. A zero Status means the reason is message-level only and falls
// back to 200 when it does reach an HTTP response.
var errorMap = map[string]CustomError{
	ReasonMalformed:     {Reason: ReasonMalformed, Message: "Invalid message, expected: object"},
	ReasonTypeInvalid:   {Reason: ReasonTypeInvalid, Message: "Invalid message type or format"},
	ReasonNotRegistered: {Reason: ReasonNotRegistered, Message: "User is not registered"},
	ReasonTopicSystem:   {Reason: ReasonTopicSystem, Message: "Can not post to a system topic"},

	ReasonBadRequest:   {Reason: ReasonBadRequest, Message: "Invalid request.", Status: http.StatusBadRequest},
	ReasonNotFound:     {Reason: ReasonNotFound, Message: "Not found.", Status: http.StatusNotFound},
	ReasonConflict:     {Reason: ReasonConflict, Message: "User already exists.", Status: http.StatusConflict},
	ReasonAuthRequired: {Reason: ReasonAuthRequired, Message: "Authentication token required.", Status: http.StatusUnauthorized},
	ReasonForbidden:    {Reason: ReasonForbidden, Message: "Invalid or expired token.", Status: http.StatusForbidden},
	ReasonBusy:         {Reason: ReasonBusy, Message: "Server is at capacity. Please try again later.", Status: http.StatusServiceUnavailable},
	ReasonRateLimited:  {Reason: ReasonRateLimited, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ReasonInternal:     {Reason: ReasonInternal, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
