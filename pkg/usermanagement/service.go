package usermanagement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/apperrors"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/challenge"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/dualstore"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/messaging"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/session"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement/pwhash"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement/types"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/utils"
)

const (
	minPasswordLength = 6
)

var (
	ErrInvalidEmail             = apperrors.New(apperrors.KindValidation, "invalid email address")
	ErrWeakCredential           = apperrors.New(apperrors.KindValidation, fmt.Sprintf("password must have at least %d characters", minPasswordLength))
	ErrEmailAlreadyRegistered   = apperrors.New(apperrors.KindValidation, "email address already registered")
	ErrEmailNotVerified         = apperrors.New(apperrors.KindAuth, "email address not verified")
	ErrEmailNotRegistered       = apperrors.New(apperrors.KindNotFound, "email address not registered")
	ErrInvalidCredential        = apperrors.New(apperrors.KindAuth, "invalid email or password")
	ErrExternalProviderRequired = apperrors.New(apperrors.KindAuth, "account uses an external sign-in provider")
	ErrCodeInvalid              = apperrors.New(apperrors.KindAuth, "invalid verification code")
	ErrCodeExpired              = apperrors.New(apperrors.KindAuth, "verification code expired")
	ErrTooManyCodeAttempts      = apperrors.New(apperrors.KindAuth, "too many failed verification attempts")
)

// IdentityService owns account records and the authentication flows
// around them. All writes go through the dual store adapter so a
// remote outage degrades to the local copy instead of failing.
type IdentityService struct {
	store      *dualstore.Adapter
	challenges *challenge.Store
	sender     messaging.CodeSender
	sessions   *session.Broadcaster
	now        func() time.Time

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func NewIdentityService(
	store *dualstore.Adapter,
	challenges *challenge.Store,
	sender messaging.CodeSender,
	sessions *session.Broadcaster,
) *IdentityService {
	return &IdentityService{
		store:      store,
		challenges: challenges,
		sender:     sender,
		sessions:   sessions,
		now:        time.Now,
	}
}

func accountPath(email string) string {
	return "accounts/" + utils.SanitizeEmail(email)
}

func accountIndexPath(email string) string {
	return "account-index/" + utils.SanitizeEmail(email)
}

// RequestRegistrationCode issues a fresh verification code for a not
// yet registered address and hands it to the delivery channel.
func (s *IdentityService) RequestRegistrationCode(ctx context.Context, email string) error {
	email = utils.SanitizeEmail(email)
	if !utils.CheckEmailFormat(email) {
		return ErrInvalidEmail
	}

	if s.store.Exists(ctx, accountIndexPath(email)) {
		return ErrEmailAlreadyRegistered
	}

	ch, err := s.challenges.Issue(ctx, email, challenge.PurposeRegistration)
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, email, messaging.CodePayload{
		Code:      ch.Code,
		Purpose:   challenge.PurposeRegistration,
		ExpiresAt: ch.ExpiresAt,
	})
}

// VerifyRegistrationCode checks a submitted code. On success the
// address stays marked verified until Register consumes it.
func (s *IdentityService) VerifyRegistrationCode(ctx context.Context, email string, code string) error {
	res, err := s.challenges.Verify(ctx, utils.SanitizeEmail(email), challenge.PurposeRegistration, code)
	if err != nil {
		return err
	}
	return verifyStatusToError(res)
}

// Register creates the account for an address whose registration code
// was verified before. It does not log the new account in.
func (s *IdentityService) Register(ctx context.Context, email string, password string, displayName string) (types.Account, error) {
	email = utils.SanitizeEmail(email)
	if !utils.CheckEmailFormat(email) {
		return types.Account{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return types.Account{}, ErrWeakCredential
	}

	verified, err := s.challenges.HasVerified(ctx, email, challenge.PurposeRegistration)
	if err != nil {
		return types.Account{}, err
	}
	if !verified {
		return types.Account{}, ErrEmailNotVerified
	}

	hash, err := pwhash.HashPassword(password)
	if err != nil {
		return types.Account{}, err
	}

	nowTs := s.now().Unix()
	account := types.Account{
		ID:            uuid.NewString(),
		Email:         email,
		DisplayName:   displayName,
		AuthType:      types.AUTH_TYPE_PASSWORD,
		Password:      hash,
		EmailVerified: true,
		Timestamps: types.Timestamps{
			CreatedAt:          nowTs,
			UpdatedAt:          nowTs,
			LastPasswordChange: nowTs,
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.createAccount(ctx, account); err != nil {
		return types.Account{}, err
	}

	if _, err := s.challenges.TakeVerified(ctx, email, challenge.PurposeRegistration); err != nil {
		slog.Warn("could not remove used verification challenge", slog.String("error", err.Error()))
	}

	slog.Info("account registered", slog.String("email", utils.BlurEmailAddress(email)))
	return account, nil
}

// Login checks the password and, on success, establishes the device
// session.
func (s *IdentityService) Login(ctx context.Context, email string, password string) (types.Session, error) {
	email = utils.SanitizeEmail(email)

	account, err := s.readAccount(ctx, email)
	if err != nil {
		if errors.Is(err, dualstore.ErrNotFound) {
			return types.Session{}, ErrEmailNotRegistered
		}
		return types.Session{}, err
	}

	if account.UsesExternalProvider() {
		return types.Session{}, ErrExternalProviderRequired
	}

	match, err := pwhash.ComparePasswordWithHash(account.Password, password)
	if err != nil || !match {
		if err != nil {
			slog.Warn("password comparison failed", slog.String("error", err.Error()))
		}
		return types.Session{}, ErrInvalidCredential
	}

	s.mu.Lock()
	loginTime := s.now()
	account.Timestamps.LastLogin = loginTime.Unix()
	account.Touch(loginTime)
	if err := s.saveAccount(ctx, account); err != nil {
		slog.Warn("could not update last login timestamp", slog.String("error", err.Error()))
	}
	s.mu.Unlock()

	return s.establishSession(account), nil
}

// LoginExternal signs in through an external identity provider,
// creating the account on first sight.
func (s *IdentityService) LoginExternal(ctx context.Context, email string, displayName string, provider string) (types.Session, error) {
	email = utils.SanitizeEmail(email)
	if !utils.CheckEmailFormat(email) {
		return types.Session{}, ErrInvalidEmail
	}
	if provider == "" {
		return types.Session{}, apperrors.New(apperrors.KindValidation, "provider must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.readAccount(ctx, email)
	if err != nil {
		if !errors.Is(err, dualstore.ErrNotFound) {
			return types.Session{}, err
		}
		nowTs := s.now().Unix()
		account = types.Account{
			ID:               uuid.NewString(),
			Email:            email,
			DisplayName:      displayName,
			AuthType:         types.AUTH_TYPE_EXTERNAL,
			ExternalProvider: provider,
			EmailVerified:    true,
			Timestamps: types.Timestamps{
				CreatedAt: nowTs,
				UpdatedAt: nowTs,
			},
		}
		if err := s.createAccount(ctx, account); err != nil {
			return types.Session{}, err
		}
		slog.Info("account provisioned through external provider",
			slog.String("email", utils.BlurEmailAddress(email)),
			slog.String("provider", provider),
		)
	}

	loginTime := s.now()
	account.Timestamps.LastLogin = loginTime.Unix()
	account.Touch(loginTime)
	if err := s.saveAccount(ctx, account); err != nil {
		slog.Warn("could not update last login timestamp", slog.String("error", err.Error()))
	}

	return s.establishSession(account), nil
}

// RequestPasswordReset issues a reset code for a registered password
// account.
func (s *IdentityService) RequestPasswordReset(ctx context.Context, email string) error {
	email = utils.SanitizeEmail(email)

	account, err := s.readAccount(ctx, email)
	if err != nil {
		if errors.Is(err, dualstore.ErrNotFound) {
			return ErrEmailNotRegistered
		}
		return err
	}
	if account.UsesExternalProvider() {
		return ErrExternalProviderRequired
	}

	ch, err := s.challenges.Issue(ctx, email, challenge.PurposePasswordReset)
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, email, messaging.CodePayload{
		Code:      ch.Code,
		Purpose:   challenge.PurposePasswordReset,
		ExpiresAt: ch.ExpiresAt,
	})
}

// ResetPassword replaces the password after checking the reset code.
// The code is consumed on success.
func (s *IdentityService) ResetPassword(ctx context.Context, email string, code string, newPassword string) error {
	email = utils.SanitizeEmail(email)
	if len(newPassword) < minPasswordLength {
		return ErrWeakCredential
	}

	res, err := s.challenges.Verify(ctx, email, challenge.PurposePasswordReset, code)
	if err != nil {
		return err
	}
	if err := verifyStatusToError(res); err != nil {
		return err
	}

	hash, err := pwhash.HashPassword(newPassword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.readAccount(ctx, email)
	if err != nil {
		if errors.Is(err, dualstore.ErrNotFound) {
			return ErrEmailNotRegistered
		}
		return err
	}

	resetTime := s.now()
	account.Password = hash
	account.Timestamps.LastPasswordChange = resetTime.Unix()
	account.Touch(resetTime)
	if err := s.saveAccount(ctx, account); err != nil {
		return err
	}

	if _, err := s.challenges.TakeVerified(ctx, email, challenge.PurposePasswordReset); err != nil {
		slog.Warn("could not remove used reset challenge", slog.String("error", err.Error()))
	}

	slog.Info("password reset", slog.String("email", utils.BlurEmailAddress(email)))
	return nil
}

// Logout destroys the device session. Safe to call while logged out.
func (s *IdentityService) Logout() {
	s.sessions.Destroy()
}

// CurrentSession returns the active session or nil.
func (s *IdentityService) CurrentSession() *types.Session {
	return s.sessions.Current()
}

// GetAccount loads the account record for an email address.
func (s *IdentityService) GetAccount(ctx context.Context, email string) (types.Account, error) {
	account, err := s.readAccount(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, dualstore.ErrNotFound) {
			return types.Account{}, ErrEmailNotRegistered
		}
		return types.Account{}, err
	}
	return account, nil
}

func (s *IdentityService) establishSession(account types.Account) types.Session {
	provider := types.AUTH_TYPE_PASSWORD
	if account.UsesExternalProvider() {
		provider = account.ExternalProvider
	}
	sess := types.Session{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Provider:    provider,
		IssuedAt:    s.now().Unix(),
	}
	s.sessions.Establish(sess)
	return sess
}

func (s *IdentityService) readAccount(ctx context.Context, email string) (types.Account, error) {
	data, err := s.store.ReadAny(ctx, accountPath(email))
	if err != nil {
		return types.Account{}, err
	}
	var account types.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return types.Account{}, apperrors.Wrap(apperrors.KindInternal, "could not decode account record", err)
	}
	return account, nil
}

// createAccount writes the account document and its index entry. The
// mutator rejects the write if a record already exists, which keeps
// registration race free regardless of prior existence checks.
func (s *IdentityService) createAccount(ctx context.Context, account types.Account) error {
	err := s.store.Write(ctx, accountPath(account.Email), func(cur []byte, found bool) ([]byte, error) {
		if found {
			return nil, ErrEmailAlreadyRegistered
		}
		return json.Marshal(account)
	})
	if err != nil {
		var me *dualstore.MutateError
		if errors.As(err, &me) {
			return me.Unwrap()
		}
		return err
	}
	return s.writeAccountIndex(ctx, account)
}

func (s *IdentityService) saveAccount(ctx context.Context, account types.Account) error {
	err := s.store.Write(ctx, accountPath(account.Email), func(cur []byte, found bool) ([]byte, error) {
		return json.Marshal(account)
	})
	if err != nil {
		return err
	}
	return s.writeAccountIndex(ctx, account)
}

func (s *IdentityService) writeAccountIndex(ctx context.Context, account types.Account) error {
	entry := types.AccountIndexEntry{
		AccountID: account.ID,
		Email:     account.Email,
		AuthType:  account.AuthType,
		Provider:  account.ExternalProvider,
	}
	return s.store.Write(ctx, accountIndexPath(account.Email), func(cur []byte, found bool) ([]byte, error) {
		return json.Marshal(entry)
	})
}

func verifyStatusToError(res challenge.VerifyResult) error {
	switch res.Status {
	case challenge.StatusVerified:
		return nil
	case challenge.StatusExpired:
		return ErrCodeExpired
	case challenge.StatusTooManyAttempts:
		return ErrTooManyCodeAttempts
	case challenge.StatusNotFound:
		return ErrCodeInvalid
	default:
		return ErrCodeInvalid
	}
}
