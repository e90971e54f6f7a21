package httpx

// Errors builds the error response body shared by every endpoint:
// {"errors": ["<message>", ...]}.
func Errors(msgs ...string) map[string][]string {
	return map[string][]string{"errors": msgs}
}
