package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
)

// In-memory fakes mirroring the MySQL adapters' transition semantics:
// conditional updates on state, guarded coupon increments, insert-ignore
// entitlement grants.

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*OrderRecord
	byCode  map[string]string
	coupons *fakeCouponRepo // coupon increment rides in Create when set
	grants  *fakeEntitlementRepo

	failCreateWith error // forced error for the next Create calls
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: map[string]*OrderRecord{},
		byCode: map[string]string{},
		grants: newFakeEntitlementRepo(),
	}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateWith != nil {
		return r.failCreateWith
	}
	if _, taken := r.byCode[o.TransferCode]; taken {
		return ErrTransferCodeTaken
	}
	if o.CouponCode != "" && r.coupons != nil {
		if !r.coupons.consume(o.CouponCode) {
			return ErrCouponExhausted
		}
	}
	cp := *o
	r.orders[o.ID] = &cp
	r.byCode[o.TransferCode] = o.ID
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*OrderRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetByTransferCode(ctx context.Context, code string) (*OrderRecord, error) {
	r.mu.Lock()
	id, ok := r.byCode[code]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) UpdateStateIf(ctx context.Context, id string, from, to domain.State) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.State != string(from) {
		return false, nil
	}
	o.State = string(to)
	return true, nil
}

func (r *fakeOrderRepo) MarkPaid(ctx context.Context, id string, grant EntitlementRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.State != string(domain.StatePendingPayment) {
		return false, nil
	}
	o.State = string(domain.StatePaid)
	r.grants.grantLocked(grant)
	return true, nil
}

func (r *fakeOrderRepo) ExpirePastDue(ctx context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, o := range r.orders {
		if o.State == string(domain.StatePendingPayment) && o.ExpiresAt.Before(now) {
			o.State = string(domain.StateExpired)
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, f OrderFilter) ([]*OrderRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*OrderRecord
	for _, o := range r.orders {
		if f.State != "" && o.State != f.State {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]*domain.Coupon
}

func newFakeCouponRepo(cs ...*domain.Coupon) *fakeCouponRepo {
	r := &fakeCouponRepo{coupons: map[string]*domain.Coupon{}}
	for _, c := range cs {
		cp := *c
		r.coupons[c.Code] = &cp
	}
	return r
}

func (r *fakeCouponRepo) consume(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[code]
	if !ok || !c.Active || c.Exhausted() {
		return false
	}
	c.UsageCount++
	return true
}

func (r *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.coupons[c.Code]; exists {
		return ErrDuplicate
	}
	cp := *c
	r.coupons[c.Code] = &cp
	return nil
}

func (r *fakeCouponRepo) Update(ctx context.Context, c *domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.coupons[c.Code]; !exists {
		return ErrNotFound
	}
	cp := *c
	r.coupons[c.Code] = &cp
	return nil
}

func (r *fakeCouponRepo) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.coupons[code]; !exists {
		return ErrNotFound
	}
	delete(r.coupons, code)
	return nil
}

func (r *fakeCouponRepo) List(ctx context.Context, limit, offset int) ([]*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Coupon
	for _, c := range r.coupons {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type fakeEntitlementRepo struct {
	mu   sync.Mutex
	rows map[[2]string]EntitlementRecord // (user, book)
}

func newFakeEntitlementRepo() *fakeEntitlementRepo {
	return &fakeEntitlementRepo{rows: map[[2]string]EntitlementRecord{}}
}

func (r *fakeEntitlementRepo) grantLocked(e EntitlementRecord) {
	key := [2]string{e.UserIdentity, e.BookID}
	if _, exists := r.rows[key]; exists {
		return // first grant wins, duplicates are no-ops
	}
	r.rows[key] = e
}

func (r *fakeEntitlementRepo) Grant(ctx context.Context, e EntitlementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grantLocked(e)
	return nil
}

func (r *fakeEntitlementRepo) Get(ctx context.Context, userIdentity, bookID string) (*EntitlementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[[2]string{userIdentity, bookID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *fakeEntitlementRepo) ListByUser(ctx context.Context, userIdentity string) ([]*EntitlementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*EntitlementRecord
	for key, e := range r.rows {
		if key[0] == userIdentity {
			cp := e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookID < out[j].BookID })
	return out, nil
}

type fakeCatalog struct {
	books map[string]*domain.Book
	files map[string]*domain.BookFile
}

func (c *fakeCatalog) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	b, ok := c.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (c *fakeCatalog) GetBookFile(ctx context.Context, id string) (*domain.BookFile, error) {
	f, ok := c.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

type fakeTokenStore struct {
	mu    sync.Mutex
	puts  map[string]DownloadScope
	ttls  map[string]time.Duration
	fail  error
	count int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{puts: map[string]DownloadScope{}, ttls: map[string]time.Duration{}}
}

func (s *fakeTokenStore) Put(ctx context.Context, token string, scope DownloadScope, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.puts[token] = scope
	s.ttls[token] = ttl
	s.count++
	return nil
}

type fakeIdemStore struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{locks: map[string]bool{}, values: map[string]string{}}
}

func (s *fakeIdemStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + "|" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *fakeIdemStore) Remember(ctx context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+"|"+key] = value
	return nil
}

func (s *fakeIdemStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+"|"+key]
	return v, ok, nil
}

type fakeStatusCache struct {
	mu     sync.Mutex
	status map[string]string
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{status: map[string]string{}}
}

func (c *fakeStatusCache) SetStatus(ctx context.Context, orderID, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status[orderID] = status
	return nil
}

func (c *fakeStatusCache) GetStatus(ctx context.Context, orderID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.status[orderID]
	return s, ok, nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []string // channel names in insertion order
}

func (o *fakeOutbox) Insert(ctx context.Context, channel string, payload []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, channel)
	return nil
}

func (o *fakeOutbox) channels() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...)
}
