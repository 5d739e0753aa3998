package httpinterface

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/mux"
)

const (
	// AccountHeader carries the caller account when auth is disabled.
	AccountHeader = "X-Payout-Account"
	// IdempotencyKeyHeader makes a deposit safe to retry.
	IdempotencyKeyHeader = "Idempotency-Key"
)

var signingMethod = jwt.SigningMethodHS256

// Claims is the body of the JWT authenticating a caller.
type Claims struct {
	Account string `json:"account"`
	jwt.StandardClaims
}

type callerKey struct{}

// NewToken returns a signed token for the given account. A zero ttl makes the
// token never expire.
func NewToken(secret []byte, account string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Account: account,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
			Subject:  account,
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(signingMethod, claims).SignedString(secret)
}

func parseToken(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != signingMethod {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return secret, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || strings.TrimSpace(claims.Account) == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// authMiddleware resolves the caller account of every request, either from
// the bearer token or, if auth is disabled, from the account header.
func authMiddleware(secret []byte, noAuth bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var account string
			if noAuth {
				account = strings.TrimSpace(r.Header.Get(AccountHeader))
				if account == "" {
					writeError(w, r, fmt.Errorf(
						"%w: missing %s header", errMissingToken, AccountHeader,
					))
					return
				}
			} else {
				header := r.Header.Get("Authorization")
				if len(header) <= 7 || !strings.EqualFold(header[:7], "bearer ") {
					writeError(w, r, errMissingToken)
					return
				}
				claims, err := parseToken(secret, header[7:])
				if err != nil {
					writeError(w, r, err)
					return
				}
				account = claims.Account
			}

			ctx := context.WithValue(r.Context(), callerKey{}, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func callerFromContext(ctx context.Context) string {
	account, _ := ctx.Value(callerKey{}).(string)
	return account
}
