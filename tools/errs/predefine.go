package errs

// Error codes surfaced to clients. 1xxx are precondition failures, 5xxx are
// server-side failures.
var (
	ErrNoPartner  = NewCodeError(1001, "No partner connected")
	ErrJoinFailed = NewCodeError(5001, "Failed to join")
	ErrStore      = NewCodeError(5002, "Temporary server error")
)
