// Package storetest provides in-memory stores with the same contracts as the
// MongoDB repositories, for tests above the storage layer.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

// ErrStorage stands in for a driver fault.
var ErrStorage = errors.New("storage unavailable")

func storageFault(op string) error {
	return apperr.Internal("Internal server error", fmt.Errorf("%s: %w", op, ErrStorage))
}

// Calls counts reads and writes so tests can assert that nothing was touched.
type Calls struct {
	mu     sync.Mutex
	Reads  int
	Writes int
}

func (c *Calls) read() {
	c.mu.Lock()
	c.Reads++
	c.mu.Unlock()
}

func (c *Calls) write() {
	c.mu.Lock()
	c.Writes++
	c.mu.Unlock()
}

// Users is an in-memory UserStore.
type Users struct {
	Calls
	mu   sync.Mutex
	data map[primitive.ObjectID]models.User
	Fail bool
}

func NewUsers(seed ...*models.User) *Users {
	u := &Users{data: make(map[primitive.ObjectID]models.User)}
	for _, s := range seed {
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		u.data[s.ID] = *s
	}
	return u
}

func (u *Users) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.data)
}

func (u *Users) Create(_ context.Context, user *models.User) error {
	u.write()
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Fail {
		return storageFault("insert user")
	}
	for _, existing := range u.data {
		if existing.Email == user.Email {
			return apperr.Validation("Email is already registered")
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = models.RoleBuyer
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	u.data[user.ID] = *user
	return nil
}

func (u *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u.read()
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Fail {
		return nil, storageFault("find user")
	}
	user, ok := u.data[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return &user, nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.read()
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Fail {
		return nil, storageFault("find user by email")
	}
	for _, user := range u.data {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (u *Users) FindAll(_ context.Context, role models.Role) ([]*models.User, error) {
	u.read()
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Fail {
		return nil, storageFault("list users")
	}
	out := make([]*models.User, 0)
	for _, user := range u.data {
		if role == "" || user.Role == role {
			found := user
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (u *Users) Update(_ context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	u.write()
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Fail {
		return nil, storageFault("update user")
	}
	user, ok := u.data[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	if update.Email != nil {
		for otherID, other := range u.data {
			if otherID != id && other.Email == *update.Email {
				return nil, apperr.Validation("Email is already registered")
			}
		}
		user.Email = *update.Email
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.Status != nil {
		user.Status = *update.Status
	}
	user.UpdatedAt = time.Now().UTC()
	u.data[id] = user
	return &user, nil
}

func (u *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	u.write()
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Fail {
		return storageFault("delete user")
	}
	if _, ok := u.data[id]; !ok {
		return apperr.NotFound("User not found")
	}
	delete(u.data, id)
	return nil
}

// Products is an in-memory ProductStore.
type Products struct {
	Calls
	mu    sync.Mutex
	data  []*models.Product
	clock time.Time
	Fail  bool
}

func NewProducts(seed ...*models.Product) *Products {
	p := &Products{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	for _, s := range seed {
		p.insert(s)
	}
	return p
}

func (p *Products) insert(product *models.Product) {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if product.CreatedAt.IsZero() {
		p.clock = p.clock.Add(time.Second)
		product.CreatedAt = p.clock
	}
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}
	cp := *product
	p.data = append(p.data, &cp)
}

func (p *Products) Create(_ context.Context, product *models.Product) error {
	p.write()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return storageFault("insert product")
	}
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Time{}
	p.insert(product)
	return nil
}

func (p *Products) ExistsDuplicate(_ context.Context, product *models.Product) (bool, error) {
	p.read()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return false, storageFault("count duplicate products")
	}
	for _, e := range p.data {
		if e.SellerID == product.SellerID && e.Name == product.Name && e.CategoryID == product.CategoryID &&
			e.Price == product.Price && equal(e.Features, product.Features) && equal(e.Images, product.Images) {
			return true, nil
		}
	}
	return false, nil
}

func (p *Products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p.read()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return nil, storageFault("find product")
	}
	for _, e := range p.data {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Product not found")
}

func (p *Products) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Product, error) {
	p.read()
	set := idSet(ids)
	return p.filter(func(e *models.Product) bool { return set[e.ID] })
}

func (p *Products) FindBySeller(_ context.Context, sellerID primitive.ObjectID) ([]*models.Product, error) {
	p.read()
	return p.filter(func(e *models.Product) bool { return e.SellerID == sellerID })
}

func (p *Products) Search(_ context.Context, keyword string, categoryIDs []primitive.ObjectID) ([]*models.Product, error) {
	p.read()
	if keyword == "" {
		return p.filter(func(*models.Product) bool { return true })
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(keyword))
	cats := idSet(categoryIDs)
	return p.filter(func(e *models.Product) bool {
		return re.MatchString(e.Name) || re.MatchString(e.Description) || cats[e.CategoryID]
	})
}

func (p *Products) AddReview(_ context.Context, id primitive.ObjectID, review models.Review) (*models.Product, error) {
	p.write()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return nil, storageFault("add review")
	}
	for _, e := range p.data {
		if e.ID == id {
			if len(e.Reviews) >= models.MaxReviewsPerProduct {
				return nil, apperr.Validation("Product has reached the review limit")
			}
			e.Reviews = append(e.Reviews, review)
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Product not found")
}

// filter returns matches newest first, like the repository.
func (p *Products) filter(keep func(*models.Product) bool) ([]*models.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return nil, storageFault("find products")
	}
	out := make([]*models.Product, 0)
	for _, e := range p.data {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Categories is an in-memory CategoryStore.
type Categories struct {
	Calls
	mu   sync.Mutex
	data []*models.Category
	Fail bool
}

func NewCategories(names ...string) *Categories {
	c := &Categories{}
	for _, n := range names {
		c.data = append(c.data, &models.Category{ID: primitive.NewObjectID(), Name: n, Slug: models.Slugify(n)})
	}
	return c
}

func (c *Categories) ByName(name string) *models.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.data {
		if e.Name == name {
			cp := *e
			return &cp
		}
	}
	return nil
}

func (c *Categories) Create(_ context.Context, name string) (*models.Category, error) {
	c.write()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return nil, storageFault("insert category")
	}
	for _, e := range c.data {
		if e.Name == name {
			return nil, apperr.Validation("Category already exists")
		}
	}
	cat := &models.Category{ID: primitive.NewObjectID(), Name: name, Slug: models.Slugify(name)}
	c.data = append(c.data, cat)
	cp := *cat
	return &cp, nil
}

func (c *Categories) Rename(_ context.Context, id primitive.ObjectID, name string) (*models.Category, error) {
	c.write()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return nil, storageFault("rename category")
	}
	var target *models.Category
	for _, e := range c.data {
		if e.ID == id {
			target = e
		} else if e.Name == name {
			return nil, apperr.Validation("Category already exists")
		}
	}
	if target == nil {
		return nil, apperr.NotFound("Category not found")
	}
	target.Name = name
	target.Slug = models.Slugify(name)
	cp := *target
	return &cp, nil
}

func (c *Categories) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	c.read()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return nil, storageFault("find category")
	}
	for _, e := range c.data {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Category not found")
}

func (c *Categories) FindAll(ctx context.Context) ([]*models.Category, error) {
	return c.SearchByName(ctx, "")
}

func (c *Categories) SearchByName(_ context.Context, keyword string) ([]*models.Category, error) {
	c.read()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return nil, storageFault("search categories")
	}
	out := make([]*models.Category, 0)
	for _, e := range c.data {
		if strings.Contains(strings.ToLower(e.Name), strings.ToLower(keyword)) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Orders is an in-memory OrderStore.
type Orders struct {
	Calls
	mu    sync.Mutex
	data  []*models.Order
	clock time.Time
	Fail  bool
	// ProductQueries counts FindByProducts calls.
	ProductQueries int
}

func NewOrders(seed ...*models.Order) *Orders {
	o := &Orders{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	for _, s := range seed {
		o.insert(s)
	}
	return o
}

func (o *Orders) insert(order *models.Order) {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		o.clock = o.clock.Add(time.Second)
		order.CreatedAt = o.clock
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentPending
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.PaymentCashOnDelivery
	}
	cp := *order
	cp.Items = append([]models.OrderItem(nil), order.Items...)
	o.data = append(o.data, &cp)
}

func (o *Orders) Create(_ context.Context, order *models.Order) error {
	o.write()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Fail {
		return storageFault("insert order")
	}
	if order.Status != "" && !order.Status.Valid() {
		return apperr.Validation("Invalid order status")
	}
	if order.PaymentStatus != "" && !order.PaymentStatus.Valid() {
		return apperr.Validation("Invalid payment status")
	}
	if !order.PaymentMethod.Valid() {
		return apperr.Validation("Invalid payment method")
	}
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Time{}
	o.insert(order)
	return nil
}

func (o *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o.read()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Fail {
		return nil, storageFault("find order")
	}
	for _, e := range o.data {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Order not found")
}

func (o *Orders) FindByProducts(_ context.Context, productIDs []primitive.ObjectID) ([]*models.Order, error) {
	o.read()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ProductQueries++
	if o.Fail {
		return nil, storageFault("find orders by products")
	}
	set := idSet(productIDs)
	out := make([]*models.Order, 0)
	for _, e := range o.data {
		for _, it := range e.Items {
			if set[it.Product] {
				cp := *e
				out = append(out, &cp)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (o *Orders) UpdateStatus(_ context.Context, id primitive.ObjectID, next models.OrderStatus) (*models.Order, error) {
	o.write()
	if !next.Valid() {
		return nil, apperr.Validation("Invalid order status")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Fail {
		return nil, storageFault("update order status")
	}
	for _, e := range o.data {
		if e.ID == id {
			if !e.Status.CanTransitionTo(next) {
				return nil, apperr.Validation(fmt.Sprintf("Cannot change order status from %s to %s", e.Status, next))
			}
			e.Status = next
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Order not found")
}

func (o *Orders) UpdatePaymentStatus(_ context.Context, id primitive.ObjectID, next models.PaymentStatus) (*models.Order, error) {
	o.write()
	if !next.Valid() {
		return nil, apperr.Validation("Invalid payment status")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Fail {
		return nil, storageFault("update payment status")
	}
	for _, e := range o.data {
		if e.ID == id {
			if !e.PaymentStatus.CanTransitionTo(next) {
				return nil, apperr.Validation(fmt.Sprintf("Cannot change payment status from %s to %s", e.PaymentStatus, next))
			}
			e.PaymentStatus = next
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Order not found")
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
