package checkersdto

// DomainError is a user-facing failure with a stable code.
type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "checkers service error"
}

const (
	CodeNoGame       = "no_game"
	CodeNotYourTurn  = "not_your_turn"
	CodeIllegalMove  = "illegal_move"
	CodeBadNotation  = "bad_notation"
	CodeConflict     = "conflict"
	CodeNotAPlayer   = "not_a_player"
	CodeChainPending = "chain_pending"
)
