// Package jsonweb resolves JSON web tokens into request principals. It only
// verifies the signature and extracts the subject; who may do what with the
// resulting principal is decided by the authorizer.
package jsonweb

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/marketd/marketd"
	"github.com/marketd/marketd/kit/platform"
	"github.com/marketd/marketd/kit/platform/errors"
)

var (
	// ErrKeyNotFound is returned when a token references an unknown key.
	ErrKeyNotFound = &errors.Error{
		Code: errors.EUnauthorized,
		Msg:  "key not found",
	}

	errBadToken = &errors.Error{
		Code: errors.EUnauthorized,
		Msg:  "invalid token",
	}
)

// KeyStore is a type which holds a map of key identifiers to keys.
type KeyStore interface {
	Key(kid string) ([]byte, error)
}

// KeyStoreFunc is a function which can be used as a KeyStore.
type KeyStoreFunc func(string) ([]byte, error)

// Key delegates to the receiving function.
func (k KeyStoreFunc) Key(kid string) ([]byte, error) { return k(kid) }

// SingleKeyStore returns a KeyStore that answers every key ID with the same
// secret.
func SingleKeyStore(secret []byte) KeyStore {
	return KeyStoreFunc(func(string) ([]byte, error) {
		return secret, nil
	})
}

// Claims are the set of claims expected in a marketd token. The subject is
// the hex-encoded user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenParser parses HMAC-signed JSON web tokens into principals.
type TokenParser struct {
	keyStore KeyStore
	parser   *jwt.Parser
}

// NewTokenParser returns a new TokenParser backed by keyStore.
func NewTokenParser(keyStore KeyStore) *TokenParser {
	return &TokenParser{
		keyStore: keyStore,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Parse validates tokenString and returns the principal it identifies.
func (t *TokenParser) Parse(tokenString string) (marketd.Principal, error) {
	claims := &Claims{}
	_, err := t.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		return t.keyStore.Key(kid)
	})
	if err != nil {
		return marketd.Anonymous, &errors.Error{
			Code: errors.EUnauthorized,
			Msg:  "invalid token",
			Err:  err,
		}
	}

	id, err := platform.IDFromString(claims.Subject)
	if err != nil {
		return marketd.Anonymous, errBadToken
	}

	return marketd.Principal{UserID: *id}, nil
}

// ResolvePrincipal implements the transport PrincipalResolver: requests
// without an Authorization header are anonymous, requests with a malformed
// or unverifiable token are rejected.
func (t *TokenParser) ResolvePrincipal(r *http.Request) (marketd.Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return marketd.Anonymous, nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return marketd.Anonymous, errBadToken
	}

	return t.Parse(parts[1])
}
