package usecase

import "context"

// Entitlements answers ownership queries. Granting happens inside the PAID
// transition (OrderRepo.MarkPaid), not here.
type Entitlements struct {
	repo EntitlementRepo
}

func NewEntitlements(repo EntitlementRepo) *Entitlements {
	return &Entitlements{repo: repo}
}

func (e *Entitlements) IsEntitled(ctx context.Context, userIdentity, bookID string) (bool, error) {
	rec, err := e.repo.Get(ctx, userIdentity, bookID)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return rec != nil, nil
}

// List returns the caller's entitlements, newest grant first.
func (e *Entitlements) List(ctx context.Context, userIdentity string) ([]*EntitlementRecord, error) {
	return e.repo.ListByUser(ctx, userIdentity)
}
