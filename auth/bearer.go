package auth

import (
	"context"
	"crypto/subtle"
)

// bearerAuthenticator wraps a user-provided validation function.
type bearerAuthenticator struct {
	validateFunc func(token string) (identity string, err error)
}

// BearerAuth creates an Authenticator from a validation function.
//
// Example:
//
//	auth := BearerAuth(func(token string) (string, error) {
//	    user, err := validateWithMyBackend(token)
//	    if err != nil {
//	        return "", ga4.ErrUnauthorized
//	    }
//	    return user.ID, nil
//	})
func BearerAuth(validateFunc func(token string) (identity string, err error)) Authenticator {
	return &bearerAuthenticator{
		validateFunc: validateFunc,
	}
}

// Authenticate calls the user-provided validation function with the token.
func (b *bearerAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	return b.validateFunc(token)
}

// StaticTokens returns an Authenticator for a fixed token to identity table,
// as loaded from a configuration file. Tokens are compared in constant time.
func StaticTokens(tokens map[string]string) Authenticator {
	table := make(map[string]string, len(tokens))
	for token, identity := range tokens {
		if token != "" {
			table[token] = identity
		}
	}
	return BearerAuth(func(token string) (string, error) {
		for known, identity := range table {
			if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
				return identity, nil
			}
		}
		return "", ErrUnauthenticated
	})
}
