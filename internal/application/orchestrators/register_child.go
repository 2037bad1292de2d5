package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"practicecraft/internal/domain/child"

	"github.com/google/uuid"
)

// ChildStoreForRegister defines the store interface needed by RegisterChild.
type ChildStoreForRegister interface {
	Save(ctx context.Context, c child.Child) error
	GetByID(ctx context.Context, id string) (child.Child, error)
	ListByAccount(ctx context.Context, accountID string) ([]child.Child, error)
}

// RegisterChildInput carries input for the orchestrator.
type RegisterChildInput struct {
	AccountID string
	Name      string
	Grade     int
	Subject   string // optional preferred subject
}

// RegisterChildDeps holds dependencies for RegisterChild.
type RegisterChildDeps struct {
	ChildStore ChildStoreForRegister
}

// MaxChildrenPerAccount caps profiles per parent.
const MaxChildrenPerAccount = 10

var ErrTooManyChildren = errors.New("account has reached the maximum number of child profiles")

// ExecuteRegisterChild creates a learner profile under a parent account.
// PRE: AccountID belongs to an existing account; grade 1..8
// POST: Child is persisted with status active
func ExecuteRegisterChild(ctx context.Context, input RegisterChildInput, deps RegisterChildDeps) (string, error) {
	existing, err := deps.ChildStore.ListByAccount(ctx, input.AccountID)
	if err != nil {
		return "", err
	}
	if len(existing) >= MaxChildrenPerAccount {
		return "", ErrTooManyChildren
	}

	c := child.Child{
		ID:        uuid.New().String(),
		AccountID: input.AccountID,
		Name:      input.Name,
		Grade:     input.Grade,
		Subject:   input.Subject,
		Status:    child.StatusActive,
	}
	if err := c.Validate(); err != nil {
		return "", err
	}

	if err := deps.ChildStore.Save(ctx, c); err != nil {
		return "", err
	}

	slog.Info("child_event", "event", "child_registered", "child_id", c.ID, "account_id", input.AccountID, "grade", input.Grade)
	return c.ID, nil
}

// ExecuteArchiveChild archives a learner profile.
// PRE: childID exists and belongs to accountID
// POST: Child status is archived; history is retained
func ExecuteArchiveChild(ctx context.Context, childID, accountID string, deps RegisterChildDeps) error {
	c, err := deps.ChildStore.GetByID(ctx, childID)
	if err != nil {
		return err
	}
	if c.AccountID != accountID {
		return errors.New("child does not belong to this account")
	}
	if c.IsArchived() {
		return nil
	}

	c.Status = child.StatusArchived
	if err := deps.ChildStore.Save(ctx, c); err != nil {
		return err
	}

	slog.Info("child_event", "event", "child_archived", "child_id", childID)
	return nil
}
