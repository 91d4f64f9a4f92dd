package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/models"
)

// fakeProducts reproduce en memoria las garantías atómicas del repositorio
type fakeProducts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Product
}

func newFakeProducts(products ...*models.Product) *fakeProducts {
	f := &fakeProducts{items: map[primitive.ObjectID]*models.Product{}}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) stock(id primitive.ObjectID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].StockQuantity
}

func (f *fakeProducts) remove(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
}

func (f *fakeProducts) Create(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	f.items[product.ID] = product
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("product", id.Hex())
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Product
	for _, id := range ids {
		if p, ok := f.items[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProducts) FindIDsByName(_ context.Context, term string) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []primitive.ObjectID
	for id, p := range f.items {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeProducts) List(_ context.Context, query ProductQuery) ([]*models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Product
	for _, p := range f.items {
		if query.Search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(query.Search)) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	if query.Page != nil {
		start := int(query.Page.Skip())
		if start > len(out) {
			start = len(out)
		}
		end := start + query.Page.Size
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (f *fakeProducts) Update(_ context.Context, id primitive.ObjectID, update models.ProductUpdate) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("product", id.Hex())
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.StockQuantity != nil {
		p.StockQuantity = *update.StockQuantity
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFound("product", id.Hex())
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProducts) Reserve(_ context.Context, id primitive.ObjectID, quantity int) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("product", id.Hex())
	}
	if p.StockQuantity < quantity {
		return nil, &apperrors.InsufficientStockError{
			ProductID:   id.Hex(),
			ProductName: p.Name,
			Requested:   quantity,
			Available:   p.StockQuantity,
		}
	}
	p.StockQuantity -= quantity
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Release(_ context.Context, id primitive.ObjectID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return apperrors.NotFound("product", id.Hex())
	}
	p.StockQuantity += quantity
	return nil
}

type fakeOrders struct {
	mu         sync.Mutex
	items      map[primitive.ObjectID]*models.Order
	numbers    map[string]bool
	insertErr  error
	replaceErr error
	deleteErr  error
	// readBarrier, si está, retiene cada FindByID hasta que todos los lectores leyeron
	readBarrier *sync.WaitGroup
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		items:   map[primitive.ObjectID]*models.Order{},
		numbers: map[string]bool{},
	}
}

func (f *fakeOrders) Insert(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.numbers[order.OrderNumber] {
		return ErrDuplicateOrderNumber
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	f.numbers[order.OrderNumber] = true
	cp := *order
	cp.Items = append([]models.OrderItem(nil), order.Items...)
	f.items[order.ID] = &cp
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	o, ok := f.items[id]
	var cp models.Order
	if ok {
		cp = *o
		cp.Items = append([]models.OrderItem(nil), o.Items...)
	}
	barrier := f.readBarrier
	f.mu.Unlock()

	if barrier != nil {
		barrier.Done()
		barrier.Wait()
	}
	if !ok {
		return nil, apperrors.NotFound("order", "")
	}
	return &cp, nil
}

func (f *fakeOrders) Find(_ context.Context, filter models.OrderFilter, page *models.Page) ([]*models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.items {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.ProductIn != nil && !orderHasAny(o, filter.ProductIn) {
			continue
		}
		if filter.ProductID != nil && !orderHasAny(o, []primitive.ObjectID{*filter.ProductID}) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber > out[j].OrderNumber })
	total := int64(len(out))
	if page != nil {
		start := int(page.Skip())
		if start > len(out) {
			start = len(out)
		}
		end := start + page.Size
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func orderHasAny(o *models.Order, ids []primitive.ObjectID) bool {
	for _, item := range o.Items {
		for _, id := range ids {
			if item.ProductID == id {
				return true
			}
		}
	}
	return false
}

func (f *fakeOrders) Replace(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	stored, ok := f.items[order.ID]
	if !ok {
		return apperrors.NotFound("order", "")
	}
	if stored.Version != order.Version {
		return ErrOrderModified
	}
	order.Version++
	cp := *order
	cp.Items = append([]models.OrderItem(nil), order.Items...)
	f.items[order.ID] = &cp
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	stored, ok := f.items[order.ID]
	if !ok {
		return apperrors.NotFound("order", "")
	}
	if stored.Version != order.Version {
		return ErrOrderModified
	}
	delete(f.items, order.ID)
	return nil
}

func (f *fakeOrders) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

func (f *fakeOrders) HighestOrderSequence(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var highest int64
	for number := range f.numbers {
		if seq, ok := models.ParseOrderNumber(number); ok && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

func (f *fakeOrders) Stats(context.Context) (*models.OrderStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.OrderStats{TotalOrders: int64(len(f.items))}
	for _, o := range f.items {
		stats.TotalRevenue += o.TotalAmount
	}
	return stats, nil
}

type fakeCounters struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{values: map[string]int64{}}
}

func (f *fakeCounters) Next(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.values[name]++
	return f.values[name], nil
}

func (f *fakeCounters) EnsureAtLeast(_ context.Context, name string, value int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[name] < value {
		f.values[name] = value
	}
	return nil
}

type fakeCarts struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[primitive.ObjectID]*models.Cart{}}
}

func (f *fakeCarts) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		return nil, apperrors.NotFound("cart", "")
	}
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp, nil
}

func (f *fakeCarts) IncrementItem(_ context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		return false, nil
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCarts) PushItem(_ context.Context, userID primitive.ObjectID, item models.CartItem) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		c = &models.Cart{ID: primitive.NewObjectID(), UserID: userID}
		f.carts[userID] = c
	}
	for _, existing := range c.Items {
		if existing.ProductID == item.ProductID {
			return false, nil
		}
	}
	c.Items = append(c.Items, item)
	return true, nil
}

func (f *fakeCarts) SetItemQuantity(_ context.Context, userID, itemID primitive.ObjectID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.carts[userID]; ok {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = quantity
				return nil
			}
		}
	}
	return apperrors.NotFound("cart item", "")
}

func (f *fakeCarts) PullItem(_ context.Context, userID, itemID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		return apperrors.NotFound("cart", "")
	}
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	return nil
}

type fakeUsers struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{items: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		f.items[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == user.Email {
			return apperrors.Validation("email", "Email already registered")
		}
	}
	user.ID = primitive.NewObjectID()
	f.items[user.ID] = user
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("user", "")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.items[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user", "")
}

func (f *fakeUsers) List(context.Context, models.CustomerFilter, models.Page) ([]*models.User, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeUsers) Patch(_ context.Context, id primitive.ObjectID, patch UserPatch) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("user", "")
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.Password = *patch.PasswordHash
	}
	if patch.IsBlocked != nil {
		u.IsBlocked = *patch.IsBlocked
	}
	if patch.HasPortalAccess != nil {
		u.HasPortalAccess = *patch.HasPortalAccess
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFound("user", "")
	}
	delete(f.items, id)
	return nil
}

// recordingPublisher guarda los eventos publicados
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ *models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

type countingRecorder struct {
	mu       sync.Mutex
	placed   int
	rejected int
}

func (r *countingRecorder) OrderPlaced(float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placed++
}

func (r *countingRecorder) StockRejected(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
}
