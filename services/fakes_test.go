package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"bouquetStore/entities"
	"bouquetStore/gateway"
	"bouquetStore/models"
)

var errStoreDown = errors.New("store down")

type fakeMaterialRepo struct {
	materials map[string]entities.Material
	err       error
	reads     int
}

func newFakeMaterialRepo(ms ...entities.Material) *fakeMaterialRepo {
	r := &fakeMaterialRepo{materials: map[string]entities.Material{}}
	for _, m := range ms {
		r.materials[m.Id] = m
	}
	return r
}

func (r *fakeMaterialRepo) GetMaterial(ctx context.Context, id string) (entities.Material, bool, error) {
	r.reads++
	if r.err != nil {
		return entities.Material{}, false, r.err
	}
	m, ok := r.materials[id]
	return m, ok, nil
}

func (r *fakeMaterialRepo) ListMaterials(ctx context.Context) ([]entities.Material, error) {
	out := []entities.Material{}
	for _, m := range r.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, r.err
}

func (r *fakeMaterialRepo) CreateMaterial(ctx context.Context, m entities.Material) error {
	r.materials[m.Id] = m
	return r.err
}

func (r *fakeMaterialRepo) UpdateMaterial(ctx context.Context, m entities.Material) error {
	if _, ok := r.materials[m.Id]; !ok {
		return models.ErrNotFoundError
	}
	r.materials[m.Id] = m
	return nil
}

func (r *fakeMaterialRepo) DeleteMaterial(ctx context.Context, id string) error {
	if _, ok := r.materials[id]; !ok {
		return models.ErrNotFoundError
	}
	delete(r.materials, id)
	return nil
}

type fakeProductRepo struct {
	products map[string]entities.Product
	updates  int
}

func newFakeProductRepo(ps ...entities.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[string]entities.Product{}}
	for _, p := range ps {
		r.products[p.Id] = p
	}
	return r
}

func (r *fakeProductRepo) GetProductById(ctx context.Context, id string) (entities.Product, bool, error) {
	p, ok := r.products[id]
	return p, ok, nil
}

func (r *fakeProductRepo) ListProducts(ctx context.Context, category string) ([]entities.Product, error) {
	out := []entities.Product{}
	for _, p := range r.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (r *fakeProductRepo) CreateProduct(ctx context.Context, p entities.Product) error {
	r.products[p.Id] = p
	return nil
}

func (r *fakeProductRepo) UpdateProduct(ctx context.Context, p entities.Product) error {
	if _, ok := r.products[p.Id]; !ok {
		return models.ErrNotFoundError
	}
	r.updates++
	r.products[p.Id] = p
	return nil
}

func (r *fakeProductRepo) DeleteProduct(ctx context.Context, id string) error {
	delete(r.products, id)
	return nil
}

type fakeCartRepo struct {
	items     map[string]map[string]entities.CartItem
	removeErr error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: map[string]map[string]entities.CartItem{}}
}

func (r *fakeCartRepo) SetCartItem(ctx context.Context, item entities.CartItem) error {
	if r.items[item.OwnerId] == nil {
		r.items[item.OwnerId] = map[string]entities.CartItem{}
	}
	r.items[item.OwnerId][item.Id] = item
	return nil
}

func (r *fakeCartRepo) GetCartItem(ctx context.Context, ownerId, itemId string) (entities.CartItem, bool, error) {
	it, ok := r.items[ownerId][itemId]
	return it, ok, nil
}

func (r *fakeCartRepo) GetCart(ctx context.Context, ownerId string) ([]entities.CartItem, error) {
	out := []entities.CartItem{}
	for _, it := range r.items[ownerId] {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCartRepo) RemoveCartItems(ctx context.Context, ownerId string, itemIds ...string) error {
	if r.removeErr != nil {
		return r.removeErr
	}
	for _, id := range itemIds {
		delete(r.items[ownerId], id)
	}
	return nil
}

type fakeOrderRepo struct {
	orders     map[string]entities.Order
	statusSets int
	updateErr  error
}

func newFakeOrderRepo(os ...entities.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[string]entities.Order{}}
	for _, o := range os {
		r.orders[o.Id] = o
	}
	return r
}

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, order entities.Order) error {
	r.orders[order.Id] = order
	return nil
}

func (r *fakeOrderRepo) GetOrderById(ctx context.Context, orderId string) (entities.Order, bool, error) {
	o, ok := r.orders[orderId]
	return o, ok, nil
}

func (r *fakeOrderRepo) SearchOrders(ctx context.Context, data models.OrderSearchData) ([]entities.Order, error) {
	out := []entities.Order{}
	for _, o := range r.orders {
		if data.OwnerId != nil && o.OwnerId != *data.OwnerId {
			continue
		}
		if data.Status != nil && o.Status != *data.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, orderId string, upd models.OrderStatusUpdate) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	o, ok := r.orders[orderId]
	if !ok {
		return models.ErrNotFoundError
	}
	r.statusSets++
	o.Status = upd.Status
	o.UpdatedAt = upd.UpdatedAt
	if upd.PaymentProviderStatus != nil {
		o.PaymentProviderStatus = *upd.PaymentProviderStatus
	}
	if upd.FraudStatus != nil {
		o.FraudStatus = *upd.FraudStatus
	}
	r.orders[orderId] = o
	return nil
}

func (r *fakeOrderRepo) MarkCartCleared(ctx context.Context, orderId string) error {
	o, ok := r.orders[orderId]
	if !ok {
		return models.ErrNotFoundError
	}
	o.CartCleared = true
	r.orders[orderId] = o
	return nil
}

type fakePayments struct {
	calls    int
	err      error
	validSig bool
}

func (p *fakePayments) CreateTransaction(ctx context.Context, orderId string, amount int64, paymentType string, opts gateway.PaymentOptions) (entities.PaymentResponse, error) {
	p.calls++
	if p.err != nil {
		return entities.PaymentResponse{}, p.err
	}
	return entities.PaymentResponse{
		TransactionId:     "tx-" + orderId,
		OrderId:           orderId,
		PaymentType:       paymentType,
		TransactionStatus: "pending",
	}, nil
}

func (p *fakePayments) VerifySignature(n models.PaymentNotification) bool {
	return p.validSig
}

type recordingNotifier struct {
	events []NotificationEvent
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, event NotificationEvent) (SendResult, error) {
	n.events = append(n.events, event)
	return SendResult{}, n.err
}

type fakeDirectory struct {
	users   []entities.User
	roleErr error
	scanErr error
}

func (d *fakeDirectory) ListUsersByRoles(ctx context.Context, roles []string) ([]entities.User, error) {
	if d.roleErr != nil {
		return nil, d.roleErr
	}
	var out []entities.User
	for _, u := range d.users {
		if IsStaff(u.Role, roles) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *fakeDirectory) ListUsers(ctx context.Context) ([]entities.User, error) {
	if d.scanErr != nil {
		return nil, d.scanErr
	}
	return d.users, nil
}

type fakeTokenStore struct {
	mu        sync.Mutex
	tokens    map[string][]string
	removeErr error
	removals  int
}

func newFakeTokenStore(tokens map[string][]string) *fakeTokenStore {
	if tokens == nil {
		tokens = map[string][]string{}
	}
	return &fakeTokenStore{tokens: tokens}
}

func (s *fakeTokenStore) GetTokens(ctx context.Context, userIds []string) ([]entities.DeviceTokenSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sets []entities.DeviceTokenSet
	for _, id := range userIds {
		if toks, ok := s.tokens[id]; ok {
			sets = append(sets, entities.DeviceTokenSet{UserId: id, Tokens: append([]string(nil), toks...)})
		}
	}
	return sets, nil
}

func (s *fakeTokenStore) AddTokens(ctx context.Context, userId string, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userId] = dedupe(append(s.tokens[userId], tokens...))
	return nil
}

func (s *fakeTokenStore) RemoveTokens(ctx context.Context, userIds []string, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removals++
	if s.removeErr != nil {
		return s.removeErr
	}
	drop := map[string]bool{}
	for _, t := range tokens {
		drop[t] = true
	}
	for _, id := range userIds {
		kept := []string{}
		for _, t := range s.tokens[id] {
			if !drop[t] {
				kept = append(kept, t)
			}
		}
		s.tokens[id] = kept
	}
	return nil
}

func (s *fakeTokenStore) get(userId string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tokens[userId]...)
}

// fakePush fails the tokens listed in codes with that code and delivers the rest.
type fakePush struct {
	calls  int
	tokens [][]string
	last   gateway.PushMessage
	codes  map[string]string
	err    error
}

func (p *fakePush) SendBatch(ctx context.Context, tokens []string, msg gateway.PushMessage) (gateway.BatchResult, error) {
	p.calls++
	p.tokens = append(p.tokens, tokens)
	p.last = msg
	if p.err != nil {
		return gateway.BatchResult{}, p.err
	}
	var res gateway.BatchResult
	for _, t := range tokens {
		if code, ok := p.codes[t]; ok {
			res.FailureCount++
			res.Results = append(res.Results, gateway.TokenResult{Token: t, Code: code})
			continue
		}
		res.SuccessCount++
		res.Results = append(res.Results, gateway.TokenResult{Token: t, Success: true})
	}
	return res, nil
}

type fakeUserRepo struct {
	users map[string]models.User_db
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User_db{}}
}

func (r *fakeUserRepo) GetUserById(ctx context.Context, id string) (models.User_db, bool, error) {
	u, ok := r.users[id]
	return u, ok, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (models.User_db, bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return models.User_db{}, false, nil
}

func (r *fakeUserRepo) ListUsersByRoles(ctx context.Context, roles []string) ([]entities.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ListUsers(ctx context.Context) ([]entities.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) EncryptPassword(userPass string) (string, error) {
	return "hashed:" + userPass, nil
}

func (r *fakeUserRepo) VerifyPassword(hashedPassword string, sentPassword string) bool {
	return hashedPassword == "hashed:"+sentPassword
}

func (r *fakeUserRepo) AddNewUser(ctx context.Context, u models.User_db) error {
	r.users[u.Id] = u
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]string
	next     int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]string{}}
}

func (r *fakeSessionRepo) CreateSession(ctx context.Context, userId string, role string, ttl time.Duration) (string, error) {
	r.next++
	id := "sess-" + string(rune('0'+r.next))
	r.sessions[id] = userId
	return id, nil
}

func (r *fakeSessionRepo) CheckSession(ctx context.Context, sessionId string) (bool, error) {
	_, ok := r.sessions[sessionId]
	return ok, nil
}

func (r *fakeSessionRepo) DeleteSession(ctx context.Context, sessionId string) error {
	delete(r.sessions, sessionId)
	return nil
}
