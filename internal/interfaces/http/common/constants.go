package common

const (
	// MaxSubmissionRequestBody limits JSON request bodies on the submit endpoint.
	MaxSubmissionRequestBody = 1 << 20
	// MaxAuthRequestBody limits JSON request bodies on register/login.
	MaxAuthRequestBody = 16 << 10
)
