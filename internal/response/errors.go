package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Session ───────────────────────────────────────────────────────
	ErrInvalidTransition   ErrCode = "INVALID_TRANSITION"
	ErrNoAnswers           ErrCode = "NO_ANSWERS"
	ErrUnansweredRemaining ErrCode = "UNANSWERED_REMAINING"
	ErrInvalidOption       ErrCode = "INVALID_OPTION"
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"

	// ─── Server ────────────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"
	ErrInternal          ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Session ───────────────────────────────────────────────────────
	case ErrInvalidTransition:
		return "This action is not available right now."
	case ErrNoAnswers:
		return "Please answer at least one question before submitting."
	case ErrUnansweredRemaining:
		return "Some questions are still unanswered. Confirm to finish anyway."
	case ErrInvalidOption:
		return "The selected option does not exist."
	case ErrNoQuestions:
		return "There is no question to act on."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
