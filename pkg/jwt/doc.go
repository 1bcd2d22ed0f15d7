// Package jwt signs and parses the short-lived access tokens issued by the
// credential package.
//
// It is a thin layer over github.com/golang-jwt/jwt/v5 pinned to HS256. Claims
// are a plain map so callers can merge application-defined claims with the
// registered ones. Parsing rejects every algorithm other than HS256, requires
// an "exp" claim and optionally enforces the configured issuer.
//
// # Usage
//
//	svc, err := jwt.NewFromString("super-secret", jwt.WithIssuer("accesskit"))
//	if err != nil {
//		// handle error
//	}
//
//	tok, err := svc.Generate(jwt.Claims{
//		"sub": userID.String(),
//		"exp": time.Now().Add(time.Hour).Unix(),
//	})
//
//	claims, err := svc.Parse(tok)
//	if errors.Is(err, jwt.ErrExpiredToken) {
//		// ask the client to refresh
//	}
//
// # Error Handling
//
// Parse maps library errors to the sentinels in errors.go: ErrExpiredToken,
// ErrInvalidSignature and ErrInvalidToken for everything else.
package jwt
