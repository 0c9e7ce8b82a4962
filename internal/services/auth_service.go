package services

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
	"github.com/AnshRaj112/watchlist-backend/pkg/utils"
)

// MsgInvalidCredentials is the only answer a failed login ever gets.
const MsgInvalidCredentials = "Invalid username or password"

type SignupInput struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate normalizes the input in place and checks it in the order clients
// see errors: required fields, email, password, handle, display name.
func (in *SignupInput) Validate() error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = utils.NormalizeUsername(in.Username)
	in.Email = utils.NormalizeEmail(in.Email)

	if in.FullName == "" || in.Username == "" || in.Email == "" || in.Password == "" {
		return apperr.Validation("All fields are required")
	}
	for _, check := range []error{
		utils.ValidateEmail(in.Email),
		utils.ValidatePassword(in.Password),
		utils.ValidateUsername(in.Username),
		utils.ValidateFullName(in.FullName),
	} {
		if check != nil {
			return apperr.Validation(check.Error())
		}
	}
	return nil
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ClientMeta describes where a login came from, for the audit log.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// Session is a freshly authenticated user and the token proving it.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	accounts store.AccountStore
	creds    *CredentialManager
	tokens   *TokenService
	audit    store.LoginAuditor
	log      *slog.Logger
}

func NewAuthService(accounts store.AccountStore, creds *CredentialManager, tokens *TokenService, audit store.LoginAuditor, log *slog.Logger) *AuthService {
	if audit == nil {
		audit = store.NopAuditor{}
	}
	return &AuthService{
		accounts: accounts,
		creds:    creds,
		tokens:   tokens,
		audit:    audit,
		log:      log,
	}
}

// Tokens exposes the token service for cookie handling in handlers.
func (s *AuthService) Tokens() *TokenService { return s.tokens }

// Signup creates an account and signs the new user in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureFree(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.creds.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.Create(ctx, &models.User{
		FullName: in.FullName,
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
	})
	if err != nil {
		return nil, err
	}

	return s.startSession(user)
}

// ensureFree reports a conflict if the handle or address already belongs to
// an account. The unique indexes catch any race past this point.
func (s *AuthService) ensureFree(ctx context.Context, username, email string) error {
	if _, err := s.accounts.FindByHandle(ctx, username); err == nil {
		return apperr.Conflict(store.MsgUsernameTaken)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return apperr.Conflict(store.MsgEmailTaken)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	return nil
}

// Login checks a username/password pair. Unknown users and wrong passwords
// produce the same Unauthorized error after the same amount of work.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta ClientMeta) (*Session, error) {
	username := utils.NormalizeUsername(in.Username)
	if username == "" || in.Password == "" {
		return nil, apperr.Validation("Username and password are required")
	}

	event := models.LoginEvent{
		Username:  username,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		CreatedAt: time.Now().UTC(),
	}
	defer func() { s.record(ctx, event) }()

	user, err := s.accounts.FindByHandle(ctx, username)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		s.creds.VerifyMissing(ctx, in.Password)
		return nil, apperr.Unauthorized(MsgInvalidCredentials, "bad_credentials")
	}
	event.UserID = user.ID.Hex()

	if !s.creds.Verify(ctx, in.Password, user.Password) {
		return nil, apperr.Unauthorized(MsgInvalidCredentials, "bad_credentials")
	}

	event.Success = true
	return s.startSession(user)
}

func (s *AuthService) record(ctx context.Context, e models.LoginEvent) {
	if err := s.audit.Record(ctx, e); err != nil {
		s.log.WarnContext(ctx, "failed to record login event", "username", e.Username, "error", err)
	}
}

func (s *AuthService) startSession(user *models.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user.Public(), Token: token, ExpiresAt: exp}, nil
}

// TokenFromRequest pulls the bearer token or session cookie from r.
func (s *AuthService) TokenFromRequest(r *http.Request) string {
	return s.tokens.ExtractToken(r)
}

// Authenticate resolves a token to the live account it was issued for. The
// returned user never carries the password hash.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized(MsgUserNotFound, ReasonUserNotFound)
		}
		return nil, apperr.Internal(err, "resolve identity")
	}
	return user.Public(), nil
}

// Me reloads the caller's account.
func (s *AuthService) Me(ctx context.Context, me *models.User) (*models.User, error) {
	user, err := s.accounts.FindByID(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}
