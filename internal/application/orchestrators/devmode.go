package orchestrators

import (
	"errors"
	"slices"

	"practicecraft/internal/domain/account"
)

// DevMode errors
var (
	ErrDevModeNotAdmin         = errors.New("only admins can use devmode impersonation")
	ErrDevModeInvalidRole      = errors.New("target role is not valid")
	ErrDevModeNotImpersonating = errors.New("not currently impersonating")
)

// DevModeImpersonateInput carries input for the impersonate orchestrator.
type DevModeImpersonateInput struct {
	TargetRole    string
	CurrentRole   string
	AccountID     string
	Email         string
	RealAccountID string // non-empty if already impersonating
	RealRole      string // non-empty if already impersonating
	RealEmail     string // non-empty if already impersonating
}

// DevModeImpersonateResult carries the updated session fields.
type DevModeImpersonateResult struct {
	Role          string
	RealAccountID string
	RealEmail     string
	RealRole      string
}

// ExecuteDevModeImpersonate validates the impersonation request and returns updated session fields.
// The admin identity is stashed in the Real* fields so Restore can undo the
// switch; re-impersonating from an already-impersonated session keeps the
// original stash rather than nesting.
// PRE: Caller must be a real admin (directly or via RealRole).
// POST: Returns new session fields with the target role and preserved admin identity.
func ExecuteDevModeImpersonate(input DevModeImpersonateInput) (DevModeImpersonateResult, error) {
	realRole := input.CurrentRole
	realAccountID := input.AccountID
	realEmail := input.Email
	if input.RealRole != "" {
		realRole = input.RealRole
		realAccountID = input.RealAccountID
		realEmail = input.RealEmail
	}

	if realRole != account.RoleAdmin {
		return DevModeImpersonateResult{}, ErrDevModeNotAdmin
	}

	if !slices.Contains(account.ValidRoles, input.TargetRole) {
		return DevModeImpersonateResult{}, ErrDevModeInvalidRole
	}

	// Switching back to admin clears impersonation
	if input.TargetRole == account.RoleAdmin {
		return DevModeImpersonateResult{
			Role: account.RoleAdmin,
		}, nil
	}

	return DevModeImpersonateResult{
		Role:          input.TargetRole,
		RealAccountID: realAccountID,
		RealEmail:     realEmail,
		RealRole:      account.RoleAdmin,
	}, nil
}

// DevModeRestoreInput carries input for the restore orchestrator.
type DevModeRestoreInput struct {
	CurrentRole   string
	RealAccountID string
	RealEmail     string
	RealRole      string
}

// DevModeRestoreResult carries the restored session fields.
type DevModeRestoreResult struct {
	AccountID string
	Email     string
	Role      string
}

// ExecuteDevModeRestore validates the restore request and returns the original admin session fields.
// PRE: Caller must be currently impersonating with a real admin identity.
// POST: Returns original admin session fields; impersonation fields should be cleared.
func ExecuteDevModeRestore(input DevModeRestoreInput) (DevModeRestoreResult, error) {
	if input.RealRole == "" {
		return DevModeRestoreResult{}, ErrDevModeNotImpersonating
	}
	if input.RealRole != account.RoleAdmin {
		return DevModeRestoreResult{}, ErrDevModeNotAdmin
	}

	return DevModeRestoreResult{
		AccountID: input.RealAccountID,
		Email:     input.RealEmail,
		Role:      input.RealRole,
	}, nil
}
