package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ProfileInserter writes the role-specific academic profile inside the
// academic-store transaction opened by the coordinator.
type ProfileInserter func(ctx context.Context, tx *sqlx.Tx) error

// ProvisioningRepository spans the credentials and academic databases. The
// two stores share no transaction context, so user creation is a
// compensating two-step commit: both transactions are opened, both inserts
// performed, then the credentials transaction commits first and the academic
// transaction second. Any failure before the first commit rolls back every
// still-open transaction.
//
// A process crash between the two commits leaves an identity without a
// profile. That window is inherent to independently-committed stores and is
// surfaced by ProfiledIdentityIDs-based reconciliation, not assumed away.
type ProvisioningRepository struct {
	credentials *sqlx.DB
	academic    *sqlx.DB
}

// NewProvisioningRepository constructs the repository over both stores.
func NewProvisioningRepository(credentials, academic *sqlx.DB) *ProvisioningRepository {
	return &ProvisioningRepository{credentials: credentials, academic: academic}
}

// CreateUserWithProfile inserts the identity and, when insertProfile is
// non-nil, the academic profile, committing credentials first.
func (r *ProvisioningRepository) CreateUserWithProfile(ctx context.Context, insertIdentity func(ctx context.Context, tx *sqlx.Tx) error, insertProfile ProfileInserter) (err error) {
	credTx, err := r.credentials.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin credentials transaction: %w", err)
	}

	var acadTx *sqlx.Tx
	credCommitted := false
	defer func() {
		if err != nil {
			if !credCommitted {
				_ = credTx.Rollback()
			}
			if acadTx != nil {
				_ = acadTx.Rollback()
			}
		}
	}()

	if err = insertIdentity(ctx, credTx); err != nil {
		return err
	}

	if insertProfile != nil {
		acadTx, err = r.academic.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin academic transaction: %w", err)
		}
		if err = insertProfile(ctx, acadTx); err != nil {
			return err
		}
	}

	if err = credTx.Commit(); err != nil {
		return fmt.Errorf("commit credentials transaction: %w", err)
	}
	credCommitted = true

	if acadTx != nil {
		if err = acadTx.Commit(); err != nil {
			// The identity is already committed; this is the documented
			// inconsistency window. Reconciliation will report the orphan.
			return fmt.Errorf("commit academic transaction: %w", err)
		}
		acadTx = nil
	}
	return nil
}

// ProfiledIdentityIDs returns the set of identity ids that have an academic
// profile, across both student and instructor tables.
func (r *ProvisioningRepository) ProfiledIdentityIDs(ctx context.Context) (map[string]bool, error) {
	const query = `SELECT identity_id FROM students UNION SELECT identity_id FROM instructors`
	var ids []string
	if err := r.academic.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list profiled identities: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
