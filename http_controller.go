package account

import (
	"context"
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

const (
	statusSuccess = "SUCCESS"
	statusError   = "ERROR"
)

// AccountControllerRoutes holds the mount points for the JSON adapter.
type AccountControllerRoutes struct {
	Signup        string
	Confirm       string
	Login         string
	Logout        string
	Signout       string
	Revive        string
	ResetPassword string
	NewPassword   string
	Passport      string
	Badge         string
	Purge         string
}

// AccountController is the thin transport adapter over Lifecycle. It parses
// and validates payloads, maps results onto the SUCCESS/ERROR envelope and
// never touches persistence directly.
type AccountController struct {
	Debug        bool
	Logger       Logger
	Lifecycle    *Lifecycle
	Tokens       TokenService
	Routes       *AccountControllerRoutes
	ErrorHandler router.ErrorHandler
}

// AccountControllerOption configures the controller.
type AccountControllerOption func(*AccountController) *AccountController

// WithControllerLifecycle injects the lifecycle service.
func WithControllerLifecycle(l *Lifecycle) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Lifecycle = l
		return c
	}
}

// WithControllerTokens injects the session token service used on login.
func WithControllerTokens(ts TokenService) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Tokens = ts
		return c
	}
}

// WithControllerLogger overrides the default logger.
func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerDebug enables payload dumps.
func WithControllerDebug() AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Debug = true
		return c
	}
}

// NewAccountController builds the controller with default routes.
func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger: defLogger{},
		Routes: &AccountControllerRoutes{
			Signup:        "/signup",
			Confirm:       "/confirm",
			Login:         "/login",
			Logout:        "/logout",
			Signout:       "/signout",
			Revive:        "/revive",
			ResetPassword: "/reset-password",
			NewPassword:   "/new-password",
			Passport:      "/passport",
			Badge:         "/badge/:id",
			Purge:         "/purge",
		},
	}
	c.ErrorHandler = c.respondError

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Lifecycle == nil {
		panic("Missing Lifecycle in account controller...")
	}

	return c
}

// RegisterAccountRoutes mounts the JSON adapter on the given router.
func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountControllerOption) {
	controller := NewAccountController(opts...)

	app.Post(controller.Routes.Signup, controller.Signup).SetName("account.signup")
	app.Post(controller.Routes.Confirm, controller.Confirm).SetName("account.confirm")
	app.Post(controller.Routes.Login, controller.Login).SetName("account.login")
	app.Post(controller.Routes.Logout, controller.Logout).SetName("account.logout")
	app.Post(controller.Routes.Signout, controller.Signout).SetName("account.signout")
	app.Post(controller.Routes.Revive, controller.Revive).SetName("account.revive")
	app.Post(controller.Routes.ResetPassword, controller.ResetPassword).SetName("account.reset-password")
	app.Post(controller.Routes.NewPassword, controller.NewPassword).SetName("account.new-password")
	app.Post(controller.Routes.Passport, controller.AddPassport).SetName("account.passport.add")
	app.Delete(controller.Routes.Passport, controller.RemPassport).SetName("account.passport.rem")
	app.Get(controller.Routes.Badge, controller.Badge).SetName("account.badge")
	app.Post(controller.Routes.Purge, controller.Purge).SetName("account.purge")
}

// SignupPayload is the signup request body.
type SignupPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Label    string `form:"label" json:"label"`
	Name     string `form:"name" json:"name"`
	Gender   string `form:"gender" json:"gender"`
	Profile  string `form:"profile" json:"profile"`
	Lang     string `form:"lang" json:"lang"`
}

// Validate will run validation rules
func (p SignupPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AccountController) Signup(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	badge, err := a.Lifecycle.Signup(ctx.Context(), &Account{
		Email:       payload.Email,
		NewPassword: payload.Password,
		Label:       payload.Label,
		Name:        payload.Name,
		Gender:      Gender(payload.Gender),
		Profile:     Profile(payload.Profile),
		Lang:        payload.Lang,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"status": statusSuccess,
		"user":   badge,
	})
}

// ConfirmPayload carries the id/token pair for confirmation flows.
type ConfirmPayload struct {
	ID    string `form:"id" json:"id"`
	Token string `form:"token" json:"token"`
}

// Validate will run validation rules
func (p ConfirmPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Token, validation.Required),
	)
}

func (a *AccountController) Confirm(ctx router.Context) error {
	payload := new(ConfirmPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	badge, err := a.Lifecycle.Confirm(ctx.Context(), payload.ID, payload.Token)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return a.respondBadge(ctx, badge)
}

// LoginPayload is the login request body.
type LoginPayload struct {
	ID       string `form:"id" json:"id"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

func (a *AccountController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	badge, err := a.Lifecycle.Login(ctx.Context(), payload.ID, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	resp := map[string]any{
		"status": statusSuccess,
		"user":   badge,
	}

	if a.Tokens != nil {
		token, err := a.Tokens.Generate(badge)
		if err != nil {
			a.Logger.Error("session token generation failed: %v", err)
		} else {
			resp["token"] = token
		}
	}

	return ctx.JSON(router.StatusOK, resp)
}

func (a *AccountController) Logout(ctx router.Context) error {
	badge, err := a.Lifecycle.Logout(ctx.Context(), ctx.Query("id"))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return a.respondBadge(ctx, badge)
}

func (a *AccountController) Signout(ctx router.Context) error {
	badge, err := a.Lifecycle.Signout(ctx.Context(), ctx.Query("id"))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return a.respondBadge(ctx, badge)
}

func (a *AccountController) Revive(ctx router.Context) error {
	badge, err := a.Lifecycle.Revive(ctx.Context(), ctx.Query("id"))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return a.respondBadge(ctx, badge)
}

func (a *AccountController) ResetPassword(ctx router.Context) error {
	badge, kind, err := a.Lifecycle.ResetPassword(ctx.Context(), ctx.Query("id"))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"status":  statusSuccess,
		"user":    badge,
		"message": kind,
	})
}

// NewPasswordPayload completes a password reset.
type NewPasswordPayload struct {
	ID       string `form:"id" json:"id"`
	Token    string `form:"token" json:"token"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (p NewPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AccountController) NewPassword(ctx router.Context) error {
	payload := new(NewPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	badge, err := a.Lifecycle.NewPassword(ctx.Context(), payload.ID, payload.Token, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return a.respondBadge(ctx, badge)
}

// PassportPayload adds or removes passport paths.
type PassportPayload struct {
	ID    string   `form:"id" json:"id"`
	Paths []string `form:"paths" json:"paths"`
}

// Validate will run validation rules
func (p PassportPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
	)
}

func (a *AccountController) AddPassport(ctx router.Context) error {
	return a.passportOp(ctx, a.Lifecycle.AddPassport)
}

func (a *AccountController) RemPassport(ctx router.Context) error {
	return a.passportOp(ctx, a.Lifecycle.RemPassport)
}

func (a *AccountController) passportOp(ctx router.Context, op func(ctx context.Context, id string, paths []string) (*Badge, error)) error {
	payload := new(PassportPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	badge, err := op(ctx.Context(), payload.ID, payload.Paths)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return a.respondBadge(ctx, badge)
}

func (a *AccountController) Badge(ctx router.Context) error {
	badge, err := a.Lifecycle.Badge(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return a.respondBadge(ctx, badge)
}

func (a *AccountController) Purge(ctx router.Context) error {
	ageDays, err := strconv.Atoi(ctx.Query("age_days"))
	if err != nil {
		return a.ErrorHandler(ctx, ErrMissingParams.WithMetadata(map[string]any{
			"age_days": ctx.Query("age_days"),
		}))
	}

	badges, err := a.Lifecycle.Purge(ctx.Context(), ageDays)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"status": statusSuccess,
		"users":  badges,
	})
}

func (a *AccountController) respondBadge(ctx router.Context, badge *Badge) error {
	return ctx.JSON(router.StatusOK, map[string]any{
		"status": statusSuccess,
		"user":   badge,
	})
}

func (a *AccountController) respondError(ctx router.Context, err error) error {
	code := router.StatusInternalServerError
	payload := map[string]any{
		"status": statusError,
		"error":  err.Error(),
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code > 0 {
			code = richErr.Code
		}
		if richErr.TextCode != "" {
			payload["code"] = richErr.TextCode
		}
	}

	return ctx.JSON(code, payload)
}
