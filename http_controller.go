package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/contactdeck/go-auth/cache"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// HTTPAuthenticator is what the controller needs from the route authenticator.
type HTTPAuthenticator interface {
	Login(ctx router.Context, payload LoginPayload) (string, error)
	Logout(ctx router.Context)
	ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc
	MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error
}

// UserCache keeps profile snapshots keyed by user id so Me can skip the
// database, and invalidates them after mutations. The cache subpackage
// provides the redis implementation.
type UserCache interface {
	Get(ctx context.Context, id string) (*cache.UserSnapshot, error)
	Set(ctx context.Context, user cache.UserSnapshot) error
	Delete(ctx context.Context, id string) error
}

// RegisterAuthRoutes mounts the JSON auth API on the given router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	protected := controller.Auther.ProtectedRoute(
		controller.Cfg,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
	)

	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("auth.register")

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")

	app.Get(controller.Routes.Logout, controller.LogOut).
		SetName("auth.logout")

	app.Get(controller.Routes.Me, controller.Me, protected).
		SetName("auth.me")

	app.Get(fmt.Sprintf("%s/:token", controller.Routes.Confirm), controller.ConfirmEmail).
		SetName("auth.confirm")

	app.Post(controller.Routes.RequestVerification, controller.RequestVerification).
		SetName("auth.request-verification")

	app.Post(controller.Routes.PasswordReset, controller.PasswordResetInit).
		SetName("auth.pwd-reset.init")

	app.Post(fmt.Sprintf("%s/:token", controller.Routes.PasswordReset), controller.PasswordResetExecute).
		SetName("auth.pwd-reset.finalize")
}

type AuthControllerRoutes struct {
	Login               string
	Logout              string
	Register            string
	Me                  string
	Confirm             string
	RequestVerification string
	PasswordReset       string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *AuthControllerRoutes
	Auther       HTTPAuthenticator
	Tokens       TokenService
	Mailer       Mailer
	Cache        UserCache
	Cfg          Config
	BaseURL      string
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithControllerCache(cache UserCache) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Cache = cache
		return c
	}
}

func WithControllerMailer(m Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if m != nil {
			c.Mailer = m
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerTokens(tokens TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Cfg = cfg
		return c
	}
}

func WithControllerBaseURL(baseURL string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.BaseURL = baseURL
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Mailer: noopMailer{},
		Routes: &AuthControllerRoutes{
			Login:               "/auth/login",
			Logout:              "/auth/logout",
			Register:            "/auth/register",
			Me:                  "/users/me",
			Confirm:             "/auth/confirm",
			RequestVerification: "/auth/request-verification",
			PasswordReset:       "/auth/password-reset",
		},
	}

	c.ErrorHandler = c.renderError

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.Cfg == nil {
		panic("Missing Config in auth controller...")
	}

	return c
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetExtendedSession reports whether the session cookie should outlive the default
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, err := a.Auther.Login(ctx, payload)
	if err != nil {
		return a.ErrorHandler(ctx, CollapseAuthError(err))
	}

	return ctx.JSON(http.StatusOK, router.ViewContext{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (a *AuthController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.JSON(http.StatusOK, router.ViewContext{
		"message": "Logged out",
	})
}

// RegistrationCreatePayload is the registration body
type RegistrationCreatePayload struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload: %s", err)
		return a.badRequest(ctx, "Error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: %s", err)
		return a.validationFailed(ctx, err)
	}

	var created *User
	req := RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(user *User) {
			created = user
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo, a.Tokens, a.Mailer, a.BaseURL).
		WithLogger(a.Logger)

	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error: %s", err)
		return a.ErrorHandler(ctx, err)
	}

	if created == nil {
		a.Logger.Error("register user completed without a created account for %s", payload.Email)
		return a.ErrorHandler(ctx, errors.New(
			"registration did not produce an account",
			errors.CategoryInternal,
		).WithCode(errors.CodeInternal))
	}

	return ctx.JSON(http.StatusCreated, router.ViewContext{
		"id":       created.ID.String(),
		"username": created.Username,
		"email":    created.Email,
		"avatar":   created.Avatar,
	})
}

// Me returns the profile behind the access token on the request. The
// snapshot cache is consulted first and repopulated on a miss; cache
// failures degrade to the database read.
func (a *AuthController) Me(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.Cfg.GetContextKey())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	if a.Cache != nil {
		snap, err := a.Cache.Get(ctx.Context(), claims.Subject())
		if err != nil {
			a.Logger.Warn("user cache read failed: %s", err)
		} else if snap != nil {
			return ctx.JSON(http.StatusOK, router.ViewContext{
				"id":                snap.ID,
				"username":          snap.Username,
				"email":             snap.Email,
				"role":              snap.Role,
				"avatar":            snap.Avatar,
				"is_email_verified": snap.EmailVerified,
			})
		}
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), claims.Subject())
	if err != nil {
		return a.ErrorHandler(ctx, CollapseAuthError(err))
	}

	if a.Cache != nil {
		if err := a.Cache.Set(ctx.Context(), cache.UserSnapshot{
			ID:            user.ID.String(),
			Username:      user.Username,
			Email:         user.Email,
			Role:          string(user.Role),
			Avatar:        user.Avatar,
			EmailVerified: user.EmailVerified,
		}); err != nil {
			a.Logger.Warn("user cache write failed: %s", err)
		}
	}

	return ctx.JSON(http.StatusOK, router.ViewContext{
		"id":                user.ID.String(),
		"username":          user.Username,
		"email":             user.Email,
		"role":              string(user.Role),
		"avatar":            user.Avatar,
		"is_email_verified": user.EmailVerified,
	})
}

func (a *AuthController) ConfirmEmail(ctx router.Context) error {
	token := ctx.Param("token", "")

	var res *VerifyEmailResponse
	req := VerifyEmailMessage{
		Token: token,
		OnResponse: func(resp *VerifyEmailResponse) {
			res = resp
		},
	}

	verify := NewVerifyEmailHandler(a.Repo, a.Tokens).WithLogger(a.Logger)

	if err := verify.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("email confirmation error: %s", err)
		return a.ErrorHandler(ctx, err)
	}

	if a.Cache != nil {
		if err := a.Cache.Delete(ctx.Context(), res.ID); err != nil {
			a.Logger.Warn("cache invalidation failed: %s", err)
		}
	}

	message := "Email verified"
	if res.AlreadyVerified {
		message = "Email already verified"
	}

	return ctx.JSON(http.StatusOK, router.ViewContext{
		"email":   res.Email,
		"message": message,
	})
}

// EmailRequestPayload is shared by the verification and reset request bodies
type EmailRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r EmailRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) RequestVerification(ctx router.Context) error {
	payload := new(EmailRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	req := RequestVerificationMessage{Email: payload.Email}

	handler := NewRequestVerificationHandler(a.Repo, a.Tokens, a.Mailer, a.BaseURL).
		WithLogger(a.Logger)

	if err := handler.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("verification request error: %s", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusAccepted, router.ViewContext{
		"message": "If the account exists, a verification email is on its way",
	})
}

func (a *AuthController) PasswordResetInit(ctx router.Context) error {
	payload := new(EmailRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	req := InitializePasswordResetMessage{Email: payload.Email}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo, a.Tokens, a.Mailer, a.BaseURL).
		WithLogger(a.Logger)

	if err := initPwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset request error: %s", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusAccepted, router.ViewContext{
		"message": "If the account exists, a reset email is on its way",
	})
}

// PasswordResetVerifyPayload carries the replacement password
type PasswordResetVerifyPayload struct {
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r PasswordResetVerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) PasswordResetExecute(ctx router.Context) error {
	token := ctx.Param("token", "")

	payload := new(PasswordResetVerifyPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	var res *FinalizePasswordResetResponse
	req := FinalizePasswordResetMessage{
		Token:    token,
		Password: payload.Password,
		OnResponse: func(resp *FinalizePasswordResetResponse) {
			res = resp
		},
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo, a.Tokens).
		WithLogger(a.Logger)

	if err := finalizePwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset finalize error: %s", err)
		return a.ErrorHandler(ctx, CollapseAuthError(err))
	}

	// resetting also marks the email verified, the cached snapshot is stale
	if a.Cache != nil {
		if err := a.Cache.Delete(ctx.Context(), res.UserID); err != nil {
			a.Logger.Warn("cache invalidation failed: %s", err)
		}
	}

	if a.Debug {
		fmt.Println("======= Password Reset ======")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("=============================")
	}

	return ctx.JSON(http.StatusOK, router.ViewContext{
		"message": "Password updated",
	})
}

func (a *AuthController) badRequest(ctx router.Context, message string, err error) error {
	return ctx.JSON(http.StatusBadRequest, router.ViewContext{
		"error": router.ViewContext{
			"message": message,
			"detail":  err.Error(),
		},
	})
}

func (a *AuthController) validationFailed(ctx router.Context, err error) error {
	return ctx.JSON(http.StatusUnprocessableEntity, router.ViewContext{
		"error": router.ViewContext{
			"message":    "Validation failed",
			"validation": FormatValidationErrorToMap(err),
		},
	})
}

func (a *AuthController) renderError(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	if a.Debug {
		fmt.Println("======= AUTH ERROR ======")
		fmt.Println(print.MaybePrettyJSON(richErr))
		fmt.Println("=========================")
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	message := richErr.Message
	if status >= http.StatusInternalServerError {
		message = "Internal server error"
	}

	return c.JSON(status, router.ViewContext{
		"error": router.ViewContext{
			"message":   message,
			"text_code": richErr.TextCode,
		},
	})
}

// FormatValidationErrorToMap flattens ozzo validation errors into field => message.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}
