package auth

import (
	"net/http"
	"time"

	"github.com/contactdeck/go-auth/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// LoginPayload carries the credentials a login route hands to the authenticator.
type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
	GetExtendedSession() bool
}

// RouteAuthenticator glues the Authenticator to go-router routes: it issues
// session cookies on login, wires the JWT middleware for protected routes, and
// renders authentication failures as JSON.
type RouteAuthenticator struct {
	auth                   Authenticator
	cfg                    Config
	cookieDuration         time.Duration
	extendedCookieDuration time.Duration
	Logger                 Logger
	AuthErrorHandler       func(c router.Context, err error) error
	ErrorHandler           func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetAccessTokenTTL() > 0 {
		cookieDuration = cfg.GetAccessTokenTTL()
	}

	a := &RouteAuthenticator{
		cfg:                    cfg,
		auth:                   auther,
		Logger:                 defLogger{},
		cookieDuration:         cookieDuration,
		extendedCookieDuration: cookieDuration * 7,
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// ProtectedRoute returns middleware that only admits requests carrying a valid
// access token. Tokens minted for email verification or password reset are
// rejected even though they share the signing key.
func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return a.protected(cfg, errorHandler, "")
}

// ProtectedRouteWithRole admits access tokens whose role is at or above minimumRole.
func (a *RouteAuthenticator) ProtectedRouteWithRole(cfg Config, errorHandler func(router.Context, error) error, minimumRole UserRole) router.MiddlewareFunc {
	return a.protected(cfg, errorHandler, minimumRole)
}

func (a *RouteAuthenticator) protected(cfg Config, errorHandler func(router.Context, error) error, minimumRole UserRole) router.MiddlewareFunc {
	var validator jwtware.TokenValidator
	if tsp, ok := a.auth.(interface{ TokenService() TokenService }); ok {
		validator = NewMiddlewareValidator(tsp.TokenService())
	} else {
		svc := NewTokenService(TokenConfigFromConfig(cfg), a.Logger)
		validator = NewMiddlewareValidator(svc)
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return jwtware.New(jwtware.Config{
			ErrorHandler:   errorHandler,
			TokenValidator: validator,
			SigningKey: jwtware.SigningKey{
				JWTAlg: cfg.GetSigningMethod(),
				Key:    []byte(cfg.GetSigningKey()),
			},
			AuthScheme:      cfg.GetAuthScheme(),
			ContextKey:      cfg.GetContextKey(),
			TokenLookup:     cfg.GetTokenLookup(),
			MinimumRole:     string(minimumRole),
			RoleChecker:     roleIsAtLeast,
			ContextEnricher: ContextEnricherAdapter,
		})(hf)
	}
}

func roleIsAtLeast(claims jwtware.AuthClaims, role string) bool {
	return claims.IsAtLeast(role)
}

func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return "", err
	}

	duration := a.cookieDuration
	if payload.GetExtendedSession() {
		duration = a.extendedCookieDuration
	}

	a.setCookieToken(ctx, token, duration)
	return token, nil
}

func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.cookieDel(ctx, a.cfg.GetContextKey())
}

// MakeClientRouteAuthErrorHandler builds the middleware error handler. Every
// token failure collapses to the same unauthorized response so callers cannot
// probe which check rejected them; expired and malformed tokens are still told
// apart in logs.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			a.Logger.Debug("Auth rejected expired token: %s", ctx.OriginalURL())
			richErr = ErrUnauthorized
		} else if IsMalformedError(err) {
			a.Logger.Debug("Auth rejected malformed token: %s", ctx.OriginalURL())
			richErr = ErrUnauthorized
		} else if collapsed, ok := CollapseAuthError(err).(*errors.Error); ok {
			richErr = collapsed
		} else {
			richErr = ErrUnauthorized
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding: %s", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error %s (%s) at %s",
		richErr.Message,
		richErr.TextCode,
		c.OriginalURL(),
	)

	status := richErr.Code
	if status == 0 {
		status = http.StatusUnauthorized
	}

	return c.JSON(status, router.ViewContext{
		"error": router.ViewContext{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler %s [%s] %s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		status := richErr.Code
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return c.JSON(status, router.ViewContext{
			"error": router.ViewContext{
				"message":   "Internal server error",
				"text_code": richErr.TextCode,
			},
		})
	}
}
