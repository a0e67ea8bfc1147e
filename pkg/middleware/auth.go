package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/state"
	"go.uber.org/zap"
)

// AuthProvider defines an interface for authentication providers.
// Different authentication mechanisms can implement this interface
// to be used with the AuthenticationWithProvider middleware.
type AuthProvider interface {
	// Authenticate returns true if the request carries valid credentials.
	Authenticate(req *common.Request) bool
}

// BasicAuthProvider provides HTTP Basic Authentication.
// It validates username and password credentials against a predefined map.
type BasicAuthProvider struct {
	Credentials map[string]string // username -> password
}

// Authenticate checks the Basic credentials in the Authorization header.
func (p *BasicAuthProvider) Authenticate(req *common.Request) bool {
	username, password, ok := basicAuth(req)
	if !ok {
		return false
	}

	expectedPassword, exists := p.Credentials[username]
	if !exists {
		return false
	}

	return password == expectedPassword
}

// BearerTokenProvider provides Bearer Token Authentication.
// It can validate tokens against a predefined map or using a custom validator function.
type BearerTokenProvider struct {
	ValidTokens map[string]bool         // token -> valid
	Validator   func(token string) bool // optional token validator
}

// Authenticate checks the Bearer token in the Authorization header.
// The validator, if set, takes precedence over ValidTokens.
func (p *BearerTokenProvider) Authenticate(req *common.Request) bool {
	token, ok := bearerToken(req)
	if !ok {
		return false
	}

	// If a validator is provided, use it
	if p.Validator != nil {
		return p.Validator(token)
	}

	return p.ValidTokens[token]
}

// APIKeyProvider provides API Key Authentication.
// It can validate API keys provided in a header or query parameter.
type APIKeyProvider struct {
	ValidKeys map[string]bool // key -> valid
	Header    string          // header name (e.g., "X-API-Key")
	Query     string          // query parameter name (e.g., "api_key")
}

// Authenticate checks the header first, then the query parameter.
func (p *APIKeyProvider) Authenticate(req *common.Request) bool {
	if p.Header != "" {
		if key, _ := req.GetHeader(p.Header); key != "" && p.ValidKeys[key] {
			return true
		}
	}

	if p.Query != "" {
		if key, _ := req.Query(p.Query); key != "" && p.ValidKeys[key] {
			return true
		}
	}

	return false
}

// basicAuth returns the username and password of a "Basic" Authorization header.
func basicAuth(req *common.Request) (username, password string, ok bool) {
	auth, _ := req.GetHeader("Authorization")
	const prefix = "Basic "
	// Case insensitive prefix match
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

// bearerToken returns the token of a "Bearer" Authorization header.
func bearerToken(req *common.Request) (string, bool) {
	auth, _ := req.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// unauthorized is the response sent when authentication fails
func unauthorized() *common.Response {
	return common.Text(common.StatusUnauthorized, "Unauthorized")
}

// AuthenticationWithProvider is a middleware that checks if a request is authenticated
// using the provided auth provider. If authentication fails, it returns a 401 Unauthorized response.
func AuthenticationWithProvider(provider AuthProvider, logger *zap.Logger) Middleware {
	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		if !provider.Authenticate(req) {
			logger.Warn("Authentication failed",
				zap.String("method", req.Method.String()),
				zap.String("path", req.Path()),
				zap.String("remote_addr", req.RemoteAddr),
			)
			return unauthorized()
		}

		return next.Handle(req, st)
	})
}

// Authentication is a middleware that checks if a request is authenticated using a simple auth function.
func Authentication(authFunc func(*common.Request) bool) Middleware {
	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		if !authFunc(req) {
			return unauthorized()
		}
		return next.Handle(req, st)
	})
}

// NewBasicAuthMiddleware creates a middleware that uses HTTP Basic Authentication.
func NewBasicAuthMiddleware(credentials map[string]string, logger *zap.Logger) Middleware {
	return AuthenticationWithProvider(&BasicAuthProvider{Credentials: credentials}, logger)
}

// NewBearerTokenMiddleware creates a middleware that uses Bearer Token Authentication.
func NewBearerTokenMiddleware(validTokens map[string]bool, logger *zap.Logger) Middleware {
	return AuthenticationWithProvider(&BearerTokenProvider{ValidTokens: validTokens}, logger)
}

// NewBearerTokenValidatorMiddleware creates a middleware that uses Bearer Token Authentication
// with a custom validator function, such as a JWT check.
func NewBearerTokenValidatorMiddleware(validator func(string) bool, logger *zap.Logger) Middleware {
	return AuthenticationWithProvider(&BearerTokenProvider{Validator: validator}, logger)
}

// NewAPIKeyMiddleware creates a middleware that uses API Key Authentication.
// It takes a map of valid API keys and the header and query parameter names to check.
func NewAPIKeyMiddleware(validKeys map[string]bool, header, query string, logger *zap.Logger) Middleware {
	return AuthenticationWithProvider(&APIKeyProvider{
		ValidKeys: validKeys,
		Header:    header,
		Query:     query,
	}, logger)
}

// UserAuthProvider defines an interface for authentication providers that return a user object.
type UserAuthProvider[T any] interface {
	// AuthenticateUser returns the user for the request's credentials, or an error.
	AuthenticateUser(req *common.Request) (*T, error)
}

// BasicUserAuthProvider provides HTTP Basic Authentication with user object return.
type BasicUserAuthProvider[T any] struct {
	GetUserFunc func(username, password string) (*T, error)
}

// AuthenticateUser looks up the user for the Basic credentials.
func (p *BasicUserAuthProvider[T]) AuthenticateUser(req *common.Request) (*T, error) {
	username, password, ok := basicAuth(req)
	if !ok {
		return nil, errors.New("no basic auth credentials")
	}
	return p.GetUserFunc(username, password)
}

// BearerTokenUserAuthProvider provides Bearer Token Authentication with user object return.
type BearerTokenUserAuthProvider[T any] struct {
	GetUserFunc func(token string) (*T, error)
}

// AuthenticateUser looks up the user for the Bearer token.
func (p *BearerTokenUserAuthProvider[T]) AuthenticateUser(req *common.Request) (*T, error) {
	token, ok := bearerToken(req)
	if !ok {
		return nil, errors.New("no bearer token")
	}
	return p.GetUserFunc(token)
}

// userKey is the context key for the authenticated user of type T
func userKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// AuthenticationWithUserProvider authenticates with provider and stores the user in the
// request context. Handlers read it back with GetUser.
func AuthenticationWithUserProvider[T any](provider UserAuthProvider[T], logger *zap.Logger) Middleware {
	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		user, err := provider.AuthenticateUser(req)
		if err != nil || user == nil {
			logger.Warn("Authentication failed",
				zap.Error(err),
				zap.String("method", req.Method.String()),
				zap.String("path", req.Path()),
				zap.String("remote_addr", req.RemoteAddr),
			)
			return unauthorized()
		}

		ctx := context.WithValue(req.Context(), userKey[T](), user)
		return next.Handle(req.WithContext(ctx), st)
	})
}

// AuthenticationWithUser is a middleware that uses a custom auth function that returns a user object
// and adds it to the request context if authentication is successful.
func AuthenticationWithUser[T any](authFunc func(*common.Request) (*T, error)) Middleware {
	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		user, err := authFunc(req)
		if err != nil || user == nil {
			return unauthorized()
		}

		ctx := context.WithValue(req.Context(), userKey[T](), user)
		return next.Handle(req.WithContext(ctx), st)
	})
}

// GetUser retrieves the user from the request context.
// Returns nil if no user is found in the context.
func GetUser[T any](req *common.Request) *T {
	user, ok := req.Context().Value(userKey[T]()).(*T)
	if !ok {
		return nil
	}
	return user
}

// NewBasicAuthWithUserMiddleware creates a middleware that uses HTTP Basic Authentication
// and stores the returned user object.
func NewBasicAuthWithUserMiddleware[T any](getUserFunc func(username, password string) (*T, error), logger *zap.Logger) Middleware {
	return AuthenticationWithUserProvider[T](&BasicUserAuthProvider[T]{GetUserFunc: getUserFunc}, logger)
}

// NewBearerTokenWithUserMiddleware creates a middleware that uses Bearer Token Authentication
// and stores the returned user object.
func NewBearerTokenWithUserMiddleware[T any](getUserFunc func(token string) (*T, error), logger *zap.Logger) Middleware {
	return AuthenticationWithUserProvider[T](&BearerTokenUserAuthProvider[T]{GetUserFunc: getUserFunc}, logger)
}
