package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"practicecraft/internal/adapters/email"
	"practicecraft/internal/domain/account"

	"github.com/google/uuid"
)

// ActivationTokenTTL is how long an activation link stays valid.
const ActivationTokenTTL = 48 * time.Hour

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
	SaveActivationToken(ctx context.Context, token account.ActivationToken) error
	GetActivationToken(ctx context.Context, token string) (account.ActivationToken, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email                  string
	Password               string
	Role                   string
	PasswordChangeRequired bool
	RequireActivation      bool // when true the account starts pending and an activation email is sent
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	Sender       email.Sender // optional; nil skips the activation email
	BaseURL      string       // used to build activation links
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount coordinates account creation.
// PRE: Valid email, password >= 12 chars, valid role
// POST: Account created with hashed password; activation email sent when requested
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	if input.Email == "" {
		return "", errors.New("email cannot be empty")
	}
	if input.Password == "" {
		return "", errors.New("password cannot be empty")
	}
	if input.Role == "" {
		return "", errors.New("role cannot be empty")
	}

	_, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err == nil {
		return "", ErrEmailAlreadyExists
	}

	status := account.StatusActive
	if input.RequireActivation {
		status = account.StatusPendingActivation
	}

	acct := account.Account{
		ID:                     uuid.New().String(),
		Email:                  input.Email,
		Role:                   input.Role,
		Status:                 status,
		CreatedAt:              time.Now(),
		PasswordChangeRequired: input.PasswordChangeRequired,
	}

	if err := acct.Validate(); err != nil {
		return "", err
	}

	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", input.Email, "role", input.Role)

	if input.RequireActivation {
		if err := sendActivationEmail(ctx, acct, deps); err != nil {
			// Account exists; activation can be re-sent later
			slog.Warn("auth_event", "event", "activation_email_failed", "email", input.Email, "error", err.Error())
		}
	}

	return acct.ID, nil
}

// sendActivationEmail creates a token and emails the activation link.
func sendActivationEmail(ctx context.Context, acct account.Account, deps CreateAccountDeps) error {
	token := account.ActivationToken{
		ID:        uuid.New().String(),
		AccountID: acct.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(ActivationTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := deps.AccountStore.SaveActivationToken(ctx, token); err != nil {
		return fmt.Errorf("save activation token: %w", err)
	}

	if deps.Sender == nil {
		return nil
	}

	link := deps.BaseURL + "/activate?token=" + token.Token
	_, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{acct.Email},
		Subject: "Activate your PracticeCraft account",
		HTML: "<p>Welcome to PracticeCraft!</p>" +
			"<p><a href=\"" + link + "\">Activate your account</a> to get started. " +
			"The link is valid for 48 hours.</p>",
	})
	return err
}

// ExecuteActivateAccount consumes an activation token and activates the account.
// PRE: token is non-empty
// POST: Account is active and the token is marked used
func ExecuteActivateAccount(ctx context.Context, token string, deps CreateAccountDeps) error {
	if token == "" {
		return account.ErrTokenInvalid
	}

	stored, err := deps.AccountStore.GetActivationToken(ctx, token)
	if err != nil || stored.Used {
		return account.ErrTokenInvalid
	}
	if stored.IsExpired(time.Now()) {
		return account.ErrTokenExpired
	}

	acct, err := deps.AccountStore.GetByID(ctx, stored.AccountID)
	if err != nil {
		return account.ErrTokenInvalid
	}
	if err := acct.Activate(); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	stored.Invalidate()
	if err := deps.AccountStore.SaveActivationToken(ctx, stored); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "account_activated", "email", acct.Email)
	return nil
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, adminEmail, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Accounts already exist, skip seeding
	}

	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:                  adminEmail,
		Password:               password,
		Role:                   account.RoleAdmin,
		PasswordChangeRequired: true,
	}, deps)
	if err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", adminEmail)
	return nil
}
