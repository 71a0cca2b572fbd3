package auth

// TokenManager issues and checks operator API tokens.
type TokenManager interface {
	Generate(operator string) (string, error)
	Validate(token string) (string, error)
}
