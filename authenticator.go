package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Auther wires the credential store, the token issuer, and the allow-list into
// the Authenticator surface the HTTP layer consumes.
type Auther struct {
	repo           RepositoryManager
	config         Config
	tokenService   TokenService
	tokenValidator TokenValidator
	password       *PasswordStrategy
	bearer         *BearerStrategy
	scheme         string
	tokenWindow    time.Duration
	logger         Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		defLogger{},
	)

	scheme := opts.GetAuthScheme()
	if scheme == "" {
		scheme = "Bearer"
	}

	return &Auther{
		repo:         repo,
		config:       opts,
		tokenService: tokenService,
		password:     NewPasswordStrategy(repo.Users()),
		bearer:       NewBearerStrategy(tokenService, repo.AccessTokens(), repo.Users(), opts),
		scheme:       scheme,
		tokenWindow:  TokenWindow(opts),
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger == nil {
		return s
	}
	s.logger = logger
	s.password.WithLogger(logger)
	s.bearer.WithLogger(logger)
	return s
}

// WithTokenService replaces the default token service, for deployments that
// mint through something other than the built-in HMAC issuer.
func (s *Auther) WithTokenService(svc TokenService) *Auther {
	if svc == nil {
		return s
	}
	s.tokenService = svc
	s.bearer = NewBearerStrategy(svc, s.repo.AccessTokens(), s.repo.Users(), s.config).
		WithLogger(s.logger)
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials, mints a token, and records it in the
// allow-list. The allow-list write is fatal: a token we cannot later revoke is
// never handed out.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identity, err := s.password.Verify(ctx, Credentials{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		s.logger.Error("Login verify identity error: %v", err)
		return nil, err
	}

	userID, err := uuid.Parse(identity.ID())
	if err != nil {
		s.logger.Error("Login identity carries malformed id %q: %v", identity.ID(), err)
		return nil, ErrIdentityNotFound
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate token")
	}

	expiresAt := time.Now().Add(s.tokenWindow)
	if _, err := s.repo.AccessTokens().UpsertToken(ctx, userID, token, expiresAt); err != nil {
		s.logger.Error("Login token persistence error: %v", err)
		return nil, err
	}

	user, err := s.repo.Users().GetByID(ctx, identity.ID())
	if err != nil {
		s.logger.Error("Login user fetch error: %v", err)
		return nil, ErrIdentityNotFound
	}

	return &LoginResult{
		User:  user.Sanitized(),
		Token: s.scheme + " " + token,
	}, nil
}

// Authenticate resolves an Authorization header value to a live principal.
func (s *Auther) Authenticate(ctx context.Context, authorization string) (Identity, error) {
	return s.bearer.Verify(ctx, Credentials{Authorization: authorization})
}

// Logout revokes the token behind the Authorization header. Revocation is best
// effort: the allow-list entry expires on its own if the store write fails, so
// the client still gets a successful logout.
func (s *Auther) Logout(ctx context.Context, authorization string) error {
	raw, err := s.bearer.RawToken(authorization)
	if err != nil {
		return err
	}

	if err := s.repo.AccessTokens().Revoke(ctx, raw); err != nil {
		s.logger.Error("Logout token revocation error: %v", err)
	}

	return nil
}

func (s *Auther) SessionFromToken(raw string) (Session, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed: %v", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims: %v", err)
		return nil, err
	}

	return session, nil
}
