package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// RegisterAuthRoutes mounts the auth endpoints. Login and register are open;
// logout requires a live token so the gate can resolve which one to revoke.
func RegisterAuthRoutes(app fiber.Router, gate *Gate, opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).Name("sign-in.post")
	app.Get(controller.Routes.Logout, gate.Authorized(), controller.LogOut).Name("sign-out.get")
	app.Get(controller.Routes.Roles, controller.Roles).Name("roles.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).Name("register.post")
}

type AuthControllerRoutes struct {
	Login    string
	Logout   string
	Roles    string
	Register string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Routes *AuthControllerRoutes
	Auther Authenticator
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			Logout:   "/logout",
			Roles:    "/roles",
			Register: "/register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

// LoginRequest payload. Clients have historically sent the login identifier
// under different keys, so all of them are accepted and coalesced.
type LoginRequest struct {
	Identifier  string `json:"identifier" form:"identifier"`
	Email       string `json:"email" form:"email"`
	Username    string `json:"username" form:"username"`
	PhoneNumber string `json:"phoneNumber" form:"phone_number"`
	Password    string `json:"password" form:"password"`
}

// GetIdentifier returns the first identifier key the client filled in
func (r LoginRequest) GetIdentifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Username, r.PhoneNumber} {
		if v != "" {
			return v
		}
	}
	return ""
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Email, is.Email),
	); err != nil {
		return err
	}

	if r.GetIdentifier() == "" {
		return validation.Errors{
			"identifier": fmt.Errorf("cannot be blank"),
		}
	}

	return nil
}

// loginResponse flattens the sanitized user record and rides the prefixed
// token alongside it.
type loginResponse struct {
	*User
	Token string `json:"token"`
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return RenderError(c, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Debug("login validate payload: %v", err)
		return renderValidationError(c, err)
	}

	if a.Debug {
		a.Logger.Debug("login payload: %s", print.MaybePrettyJSON(payload))
	}

	result, err := a.Auther.Login(c.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("login error: %v", err)
		return RenderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(loginResponse{
		User:  result.User,
		Token: result.Token,
	})
}

func (a *AuthController) LogOut(c *fiber.Ctx) error {
	if err := a.Auther.Logout(c.Context(), c.Get(fiber.HeaderAuthorization)); err != nil {
		a.Logger.Error("logout error: %v", err)
		return RenderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Success! You are logged out",
	})
}

// Roles lists the role enum so clients can render role pickers without
// hardcoding the values.
func (a *AuthController) Roles(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"roles": AllRoles(),
	})
}

// RegistrationCreatePayload is the registration body
type RegistrationCreatePayload struct {
	FirstName       string `json:"firstName" form:"first_name"`
	LastName        string `json:"lastName" form:"last_name"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phoneNumber" form:"phone_number"`
	Instrument      string `json:"instrument" form:"instrument"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload: %v", err)
		return RenderError(c, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Debug("register user validate payload: %v", err)
		return renderValidationError(c, err)
	}

	msg := RegisterUserMessage{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Instrument: payload.Instrument,
		Password:   payload.Password,
	}

	registerUser := RegisterUserHandler{repo: a.Repo}
	user, err := registerUser.Execute(c.Context(), msg)
	if err != nil {
		a.Logger.Error("register user error: %v", err)
		return RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user.Sanitized())
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return fmt.Errorf("values must match")
		}
		return nil
	}
}

// RenderError writes an error from the auth taxonomy as the wire shape
// clients parse: status from the taxonomy, body {"error":{"message":...}}.
// Internals never leak; anything outside the taxonomy collapses to a bare
// internal error.
func RenderError(c *fiber.Ctx, err error) error {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		rich = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	return c.Status(HTTPStatus(rich)).JSON(fiber.Map{
		"error": fiber.Map{
			"message": rich.Message,
		},
	})
}

func renderValidationError(c *fiber.Ctx, err error) error {
	if verr, ok := err.(validation.Errors); ok {
		fields := map[string]string{}
		for name, ferr := range verr {
			fields[name] = ferr.Error()
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{
				"message": "Validation failed",
				"fields":  fields,
			},
		})
	}

	return RenderError(c, errors.Wrap(err, errors.CategoryValidation, "Validation failed").
		WithCode(errors.CodeBadRequest))
}
