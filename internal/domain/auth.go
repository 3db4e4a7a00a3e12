package domain

// AccountInfo carries the subset of the backend user payload the client reads.
type AccountInfo struct {
	ID   string
	Role string
}

// AuthResult is the normalized outcome of one credential exchange. Transport
// failures of every kind (connectivity, bad status, malformed body) arrive as
// Success=false with a human-readable Message; callers never see an exception
// from the network layer.
type AuthResult struct {
	Success bool
	Token   string
	Message string
	User    *AccountInfo
}

// Failure builds a failed AuthResult with the given message.
func Failure(message string) AuthResult {
	return AuthResult{Success: false, Message: message}
}
