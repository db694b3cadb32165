package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// AuthControllerRoutes are the paths the controller mounts its handlers on.
type AuthControllerRoutes struct {
	Register   string
	Login      string
	Refresh    string
	Profile    string
	Onboarding string
}

// AuthController exposes the credential flows as a JSON API.
type AuthController struct {
	Debug      bool
	Logger     Logger
	Auther     Authenticator
	Routes     *AuthControllerRoutes
	ContextKey string
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func WithControllerContextKey(key string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
		Routes: &AuthControllerRoutes{
			Register:   "/register",
			Login:      "/login",
			Refresh:    "/refresh",
			Profile:    "/profile",
			Onboarding: "/onboarding",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the public credential endpoints.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegisterPost).
		Name("auth.register.post")

	app.Post(controller.Routes.Login, controller.LoginPost).
		Name("auth.login.post")

	app.Post(controller.Routes.Refresh, controller.RefreshPost).
		Name("auth.refresh.post")

	app.Get(controller.Routes.Profile, controller.ProfileGet).
		Name("auth.profile.get")

	return controller
}

// RegisterProtectedRoutes mounts the endpoints that require a validated
// access token, behind the given guard.
func RegisterProtectedRoutes(app fiber.Router, guard fiber.Handler, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Onboarding, guard, controller.OnboardingPost).
		Name("auth.onboarding.post")

	return controller
}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `json:"email" form:"email"`
	FullName string `json:"fullName" form:"fullName"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: ", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    "auth_bad_payload",
				"message": "failed to parse request body",
			},
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: ", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    "auth_validation",
				"message": err.Error(),
			},
		})
	}

	if err := a.Auther.Register(c.UserContext(), payload.Email, payload.Password, payload.FullName); err != nil {
		a.Logger.Error("register user: ", "error", err)
		return WriteError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
	})
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    "auth_bad_payload",
				"message": "failed to parse request body",
			},
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    "auth_validation",
				"message": err.Error(),
			},
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	result, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("login: ", "error", err)
		return WriteError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (a *AuthController) RefreshPost(c *fiber.Ctx) error {
	authorization := c.Get(fiber.HeaderAuthorization)

	accessToken, err := a.Auther.Refresh(c.UserContext(), authorization)
	if err != nil {
		a.Logger.Error("refresh: ", "error", err)
		return WriteError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token": accessToken,
	})
}

func (a *AuthController) ProfileGet(c *fiber.Ctx) error {
	authorization := c.Get(fiber.HeaderAuthorization)

	profile, err := a.Auther.Profile(c.UserContext(), authorization)
	if err != nil {
		a.Logger.Error("profile: ", "error", err)
		return WriteError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

// OnboardingPost flips the onboarding flag for the authenticated principal.
// The guard has already validated the access token and stored its claims
// under ContextKey.
func (a *AuthController) OnboardingPost(c *fiber.Ctx) error {
	claims, ok := c.Locals(a.ContextKey).(AuthClaims)
	if !ok || claims.UserEmail() == "" {
		return WriteError(c, ErrUnauthorized)
	}

	profile, err := a.Auther.CompleteOnboarding(c.UserContext(), claims.UserEmail())
	if err != nil {
		a.Logger.Error("onboarding: ", "error", err)
		return WriteError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}
