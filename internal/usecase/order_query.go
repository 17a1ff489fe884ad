package usecase

import "context"

// OrderQuery serves the read side: buyer status polling and admin listings.
type OrderQuery struct {
	repo  OrderRepo
	cache OrderCache
}

func NewOrderQuery(repo OrderRepo, cache OrderCache) *OrderQuery {
	return &OrderQuery{repo: repo, cache: cache}
}

func (q *OrderQuery) Get(ctx context.Context, id string) (*OrderRecord, error) {
	return q.repo.GetByID(ctx, id)
}

// Status is the hot path buyers poll while waiting for the transfer to
// land; the cache answers most of it.
func (q *OrderQuery) Status(ctx context.Context, id string) (string, error) {
	if s, ok, err := q.cache.GetStatus(ctx, id); err == nil && ok {
		return s, nil
	}
	rec, err := q.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	_ = q.cache.SetStatus(ctx, id, rec.State)
	return rec.State, nil
}

func (q *OrderQuery) List(ctx context.Context, f OrderFilter) ([]*OrderRecord, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return q.repo.List(ctx, f)
}
