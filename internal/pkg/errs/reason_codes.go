/*
Package errs provides the relay's error reason codes and the structured
error payloads sent to clients.

Reason codes are stable string identifiers. The E_REASON_* group travels
over the WebSocket as part of the error envelope; the E_WEB_* group is
used by the HTTP surfaces (connection rejects and the account service).
*/
package errs

// WebSocket message-level reasons. These never close the connection.
const (
	// ReasonMalformed indicates an inbound frame that is not a JSON object.
	ReasonMalformed = "E_REASON_MALFORMED"

	// ReasonTypeInvalid indicates a message of unknown type or with a field
	// set that does not satisfy the type's requirements.
	ReasonTypeInvalid = "E_REASON_TYPE_INVALID"

	// ReasonNotRegistered indicates a sender or direct-message recipient
	// that is not present in the user registry.
	ReasonNotRegistered = "E_REASON_NOTREG"

	// ReasonTopicSystem indicates an attempted post to a reserved system
	// topic.
	ReasonTopicSystem = "E_REASON_TOPIC_SYSTEM"
)

// HTTP-level reasons, used before a session exists and by the account
// service.
const (
	// ReasonBadRequest indicates invalid or missing request data.
	ReasonBadRequest = "E_WEB_BADREQ"

	// ReasonNotFound indicates a missing resource or failed credentials.
	ReasonNotFound = "E_WEB_NOTFOUND"

	// ReasonConflict indicates a registration attempt for a taken name.
	ReasonConflict = "E_WEB_CONFLICT"

	// ReasonAuthRequired indicates a connection attempt without a token.
	ReasonAuthRequired = "E_WEB_AUTH_REQUIRED"

	// ReasonForbidden indicates a token that failed validation.
	ReasonForbidden = "E_WEB_FORBIDDEN"

	// ReasonBusy indicates the relay is at its connection ceiling.
	ReasonBusy = "E_WEB_BUSY"

	// ReasonRateLimited indicates the caller exceeded the request rate.
	ReasonRateLimited = "E_WEB_RATELIMITED"

	// ReasonInternal covers unclassified server-side failures.
	ReasonInternal = "E_WEB_INTERNAL"
)
