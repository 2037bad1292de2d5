package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"practicecraft/internal/domain/account"
)

// mockAccountStore is an in-memory account store for orchestrator tests.
type mockAccountStore struct {
	accounts map[string]account.Account // keyed by email
	tokens   map[string]account.ActivationToken
	saveErr  error
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		accounts: make(map[string]account.Account),
		tokens:   make(map[string]account.ActivationToken),
	}
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.accounts[email]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.accounts[a.Email] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

func (m *mockAccountStore) SaveActivationToken(_ context.Context, t account.ActivationToken) error {
	m.tokens[t.Token] = t
	return nil
}

func (m *mockAccountStore) GetActivationToken(_ context.Context, token string) (account.ActivationToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return account.ActivationToken{}, errors.New("not found")
	}
	return t, nil
}

func seedAccount(t *testing.T, store *mockAccountStore, email, password, role string) account.Account {
	t.Helper()
	acct := account.Account{
		ID:        "acct-" + email,
		Email:     email,
		Role:      role,
		Status:    account.StatusActive,
		CreatedAt: time.Now(),
	}
	if err := acct.SetPassword(password); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	store.accounts[email] = acct
	return acct
}

func TestExecuteLogin_Success(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "parent@example.com", "longenoughpassword", account.RoleParent)

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "parent@example.com",
		Password: "longenoughpassword",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("ExecuteLogin failed: %v", err)
	}
	if result.Role != account.RoleParent {
		t.Errorf("role = %q, want %q", result.Role, account.RoleParent)
	}
	if result.Email != "parent@example.com" {
		t.Errorf("email = %q, want parent@example.com", result.Email)
	}
}

func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "parent@example.com", "longenoughpassword", account.RoleParent)

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "parent@example.com",
		Password: "wrongpassword!",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	// Failed attempt is recorded
	if store.accounts["parent@example.com"].FailedLogins != 1 {
		t.Errorf("failed_logins = %d, want 1", store.accounts["parent@example.com"].FailedLogins)
	}
}

func TestExecuteLogin_LockoutAfterFiveFailures(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "parent@example.com", "longenoughpassword", account.RoleParent)

	for i := 0; i < 5; i++ {
		_, _ = ExecuteLogin(context.Background(), LoginInput{
			Email:    "parent@example.com",
			Password: "wrongpassword!",
		}, LoginDeps{AccountStore: store})
	}

	// Sixth attempt hits the lock even with the right password
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "parent@example.com",
		Password: "longenoughpassword",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("err = %v, want ErrAccountLocked", err)
	}
}

func TestExecuteLogin_PendingActivation(t *testing.T) {
	store := newMockAccountStore()
	acct := seedAccount(t, store, "new@example.com", "longenoughpassword", account.RoleParent)
	acct.Status = account.StatusPendingActivation
	store.accounts[acct.Email] = acct

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "new@example.com",
		Password: "longenoughpassword",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrPendingActivation) {
		t.Fatalf("err = %v, want ErrPendingActivation", err)
	}
}

func TestExecuteLogin_UnknownEmail(t *testing.T) {
	store := newMockAccountStore()

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whateverpassword",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestExecuteCreateAccount_DuplicateEmail(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "parent@example.com", "longenoughpassword", account.RoleParent)

	_, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:    "parent@example.com",
		Password: "anotherlongpassword",
		Role:     account.RoleParent,
	}, CreateAccountDeps{AccountStore: store})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestExecuteActivateAccount_RoundTrip(t *testing.T) {
	store := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: store}

	_, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:             "new@example.com",
		Password:          "longenoughpassword",
		Role:              account.RoleParent,
		RequireActivation: true,
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteCreateAccount failed: %v", err)
	}

	if store.accounts["new@example.com"].Status != account.StatusPendingActivation {
		t.Fatalf("status = %q, want pending_activation", store.accounts["new@example.com"].Status)
	}
	if len(store.tokens) != 1 {
		t.Fatalf("expected 1 activation token, got %d", len(store.tokens))
	}

	var token string
	for k := range store.tokens {
		token = k
	}
	if err := ExecuteActivateAccount(context.Background(), token, deps); err != nil {
		t.Fatalf("ExecuteActivateAccount failed: %v", err)
	}
	if store.accounts["new@example.com"].Status != account.StatusActive {
		t.Errorf("status = %q, want active", store.accounts["new@example.com"].Status)
	}

	// Token is single-use
	if err := ExecuteActivateAccount(context.Background(), token, deps); err == nil {
		t.Error("expected error reusing activation token")
	}
}

func TestExecuteSeedAdmin_SkipsWhenAccountsExist(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "existing@example.com", "longenoughpassword", account.RoleParent)

	err := ExecuteSeedAdmin(context.Background(), CreateAccountDeps{AccountStore: store}, "admin@example.com", "adminpassword1234")
	if err != nil {
		t.Fatalf("ExecuteSeedAdmin failed: %v", err)
	}
	if _, ok := store.accounts["admin@example.com"]; ok {
		t.Error("admin should not be seeded when accounts exist")
	}
}
