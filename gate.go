package auth

import (
	"github.com/gofiber/fiber/v2"
)

// Authorize is the gate decision. An absent identity is rejected outright, an
// identity whose session did not validate gets the no-session rejection, and a
// role outside the required set is forbidden. An empty required set admits any
// authenticated principal.
func Authorize(identity Identity, sessionValid bool, required ...UserRole) error {
	if identity == nil {
		return ErrUnauthorized
	}

	if !sessionValid {
		return ErrNotAuthenticated
	}

	if !RoleIn(identity.Role(), required...) {
		return ErrNotEnoughPermissions
	}

	return nil
}

// Gate builds the fiber middleware that protects routes: bearer-token checks,
// cookie-session checks, and role membership on top of either.
type Gate struct {
	auth       Authenticator
	contextKey string
	scheme     string
	logger     Logger
}

func NewGate(auther Authenticator, cfg Config) *Gate {
	contextKey := cfg.GetContextKey()
	if contextKey == "" {
		contextKey = "user"
	}

	scheme := cfg.GetAuthScheme()
	if scheme == "" {
		scheme = "Bearer"
	}

	return &Gate{
		auth:       auther,
		contextKey: contextKey,
		scheme:     scheme,
		logger:     defLogger{},
	}
}

func (g *Gate) WithLogger(l Logger) *Gate {
	if l != nil {
		g.logger = l
	}
	return g
}

// Authorized authenticates the Authorization header and attaches the resolved
// principal to the request. Every rejection reason collapses into the same
// 401 on the wire.
func (g *Gate) Authorized() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := g.auth.Authenticate(c.Context(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			g.logger.Debug("gate rejected request %s %s: %v", c.Method(), c.Path(), err)
			return RenderError(c, err)
		}

		g.attach(c, identity)
		return c.Next()
	}
}

// Authenticated is the cookie-session variant of Authorized for browser
// clients: the token travels in a cookie named after the context key instead
// of the Authorization header.
func (g *Gate) Authenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies(g.contextKey)
		if cookie == "" {
			return RenderError(c, ErrNotAuthenticated)
		}

		identity, err := g.auth.Authenticate(c.Context(), g.scheme+" "+cookie)
		if err != nil {
			g.logger.Debug("gate rejected session %s %s: %v", c.Method(), c.Path(), err)
			return RenderError(c, ErrNotAuthenticated)
		}

		g.attach(c, identity)
		return c.Next()
	}
}

// Permissed gates on role membership. It stacks on Authorized or
// Authenticated; a request that reaches it without an attached principal is
// rejected, not panicked on.
func (g *Gate) Permissed(required ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := GetFiberIdentity(c, g.contextKey)

		if err := Authorize(identity, ok, required...); err != nil {
			g.logger.Debug("gate denied %s %s for role %q: %v", c.Method(), c.Path(), roleOf(identity), err)
			return RenderError(c, err)
		}

		return c.Next()
	}
}

func (g *Gate) attach(c *fiber.Ctx, identity Identity) {
	c.Locals(g.contextKey, identity)
	c.SetUserContext(WithIdentity(c.UserContext(), identity))
}

func roleOf(identity Identity) string {
	if identity == nil {
		return ""
	}
	return identity.Role()
}
