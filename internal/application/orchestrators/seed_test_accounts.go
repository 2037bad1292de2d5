package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"practicecraft/internal/domain/account"
	"practicecraft/internal/domain/child"
	"practicecraft/internal/domain/topic"

	"github.com/google/uuid"
)

// TestAccountSeedDeps holds stores needed for test account seeding.
type TestAccountSeedDeps struct {
	AccountStore testAcctAccountStore
	ChildStore   testAcctChildStore
}

type testAcctAccountStore interface {
	Save(ctx context.Context, a account.Account) error
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

type testAcctChildStore interface {
	Save(ctx context.Context, c child.Child) error
}

// testAccountDef defines a single test account to seed.
type testAccountDef struct {
	Email    string
	Password string
	Role     string
	Children []child.Child
}

// testAccounts returns the list of test accounts to seed.
func testAccounts() []testAccountDef {
	return []testAccountDef{
		{
			Email:    "hello+admin@practicecraft.app",
			Password: "Practice+admin!",
			Role:     account.RoleAdmin,
		},
		{
			Email:    "hello+parent@practicecraft.app",
			Password: "Practice+parent!",
			Role:     account.RoleParent,
			Children: []child.Child{
				{Name: "Test Mia", Grade: 3, Subject: topic.SubjectMath},
				{Name: "Test Leo", Grade: 6, Subject: topic.SubjectScience},
			},
		},
	}
}

// ExecuteSeedTestAccounts creates test accounts for each role if they don't already exist.
// It is idempotent: accounts that already exist (checked by email) are skipped.
// PRE: Database is migrated, admin seed has run
// POST: Test accounts exist with correct roles; child profiles under the parent
func ExecuteSeedTestAccounts(ctx context.Context, deps TestAccountSeedDeps) error {
	created := 0
	for _, def := range testAccounts() {
		_, err := deps.AccountStore.GetByEmail(ctx, def.Email)
		if err == nil {
			continue // already exists
		}

		acct := account.Account{
			ID:     uuid.New().String(),
			Email:  def.Email,
			Role:   def.Role,
			Status: account.StatusActive,
		}
		if err := acct.SetPassword(def.Password); err != nil {
			return fmt.Errorf("seed test account %s: set password: %w", def.Email, err)
		}
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return fmt.Errorf("seed test account %s: save: %w", def.Email, err)
		}

		for _, c := range def.Children {
			c.ID = uuid.New().String()
			c.AccountID = acct.ID
			c.Status = child.StatusActive
			if err := deps.ChildStore.Save(ctx, c); err != nil {
				return fmt.Errorf("seed test child %s: save: %w", c.Name, err)
			}
		}

		created++
		slog.Info("seed_event", "event", "test_account_created", "email", def.Email, "role", def.Role)
	}

	if created > 0 {
		slog.Info("seed_event", "event", "test_accounts_seeded", "created", created)
	}
	return nil
}
