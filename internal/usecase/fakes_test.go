package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/payment"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
)

// Fakes panic on calls a test did not set up, which flags unexpected repository access.

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func ptr[T any](v T) *T { return &v }

type fakeProfileRepo struct {
	ensure              func(ctx context.Context, userID, username string) (*domain.Profile, error)
	findByUserID        func(ctx context.Context, userID string) (*domain.Profile, error)
	findByUsername      func(ctx context.Context, username string) (*domain.Profile, error)
	updateSettings      func(ctx context.Context, userID string, input repository.UpdateProfileInput) (*domain.Profile, error)
	setAvatarURL        func(ctx context.Context, userID, url string) error
	setStripeCustomerID func(ctx context.Context, userID, customerID string) error
	updateSubscription  func(ctx context.Context, userID string, update domain.SubscriptionUpdate) error
	downgradeExpired    func(ctx context.Context, now time.Time) (int, error)
}

func (r *fakeProfileRepo) Ensure(ctx context.Context, userID, username string) (*domain.Profile, error) {
	return r.ensure(ctx, userID, username)
}

func (r *fakeProfileRepo) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	return r.findByUserID(ctx, userID)
}

func (r *fakeProfileRepo) FindByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return r.findByUsername(ctx, username)
}

func (r *fakeProfileRepo) UpdateSettings(ctx context.Context, userID string, input repository.UpdateProfileInput) (*domain.Profile, error) {
	return r.updateSettings(ctx, userID, input)
}

func (r *fakeProfileRepo) SetAvatarURL(ctx context.Context, userID, url string) error {
	return r.setAvatarURL(ctx, userID, url)
}

func (r *fakeProfileRepo) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return r.setStripeCustomerID(ctx, userID, customerID)
}

func (r *fakeProfileRepo) UpdateSubscription(ctx context.Context, userID string, update domain.SubscriptionUpdate) error {
	return r.updateSubscription(ctx, userID, update)
}

func (r *fakeProfileRepo) DowngradeExpired(ctx context.Context, now time.Time) (int, error) {
	return r.downgradeExpired(ctx, now)
}

type fakePasteRepo struct {
	create            func(ctx context.Context, paste *domain.Paste) (*domain.Paste, error)
	getByID           func(ctx context.Context, id string) (*domain.Paste, error)
	update            func(ctx context.Context, id, userID string, input repository.UpdatePasteInput) (*domain.Paste, error)
	delete            func(ctx context.Context, id, userID string) error
	listByUser        func(ctx context.Context, input repository.ListPastesInput) ([]*domain.Paste, error)
	searchByTitle     func(ctx context.Context, userID, query string, limit int) ([]*domain.Paste, error)
	listPublicByUser  func(ctx context.Context, input repository.ListPublicPastesInput) ([]*domain.Paste, int, error)
	incrementViews    func(ctx context.Context, id string) error
	countCreatedSince func(ctx context.Context, userID string, since time.Time) (int, error)
	totalContentBytes func(ctx context.Context, userID string) (int64, error)
}

func (r *fakePasteRepo) Create(ctx context.Context, paste *domain.Paste) (*domain.Paste, error) {
	return r.create(ctx, paste)
}

func (r *fakePasteRepo) GetByID(ctx context.Context, id string) (*domain.Paste, error) {
	return r.getByID(ctx, id)
}

func (r *fakePasteRepo) Update(ctx context.Context, id, userID string, input repository.UpdatePasteInput) (*domain.Paste, error) {
	return r.update(ctx, id, userID, input)
}

func (r *fakePasteRepo) Delete(ctx context.Context, id, userID string) error {
	return r.delete(ctx, id, userID)
}

func (r *fakePasteRepo) ListByUser(ctx context.Context, input repository.ListPastesInput) ([]*domain.Paste, error) {
	return r.listByUser(ctx, input)
}

func (r *fakePasteRepo) SearchByTitle(ctx context.Context, userID, query string, limit int) ([]*domain.Paste, error) {
	return r.searchByTitle(ctx, userID, query, limit)
}

func (r *fakePasteRepo) ListPublicByUser(ctx context.Context, input repository.ListPublicPastesInput) ([]*domain.Paste, int, error) {
	return r.listPublicByUser(ctx, input)
}

func (r *fakePasteRepo) IncrementViews(ctx context.Context, id string) error {
	return r.incrementViews(ctx, id)
}

func (r *fakePasteRepo) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return r.countCreatedSince(ctx, userID, since)
}

func (r *fakePasteRepo) TotalContentBytes(ctx context.Context, userID string) (int64, error) {
	return r.totalContentBytes(ctx, userID)
}

type fakeFolderRepo struct {
	create  func(ctx context.Context, userID, name string) (*domain.Folder, error)
	getByID func(ctx context.Context, id, userID string) (*domain.Folder, error)
	list    func(ctx context.Context, userID string) ([]*domain.Folder, error)
	rename  func(ctx context.Context, id, userID, name string) (*domain.Folder, error)
	delete  func(ctx context.Context, id, userID string) error
}

func (r *fakeFolderRepo) Create(ctx context.Context, userID, name string) (*domain.Folder, error) {
	return r.create(ctx, userID, name)
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id, userID string) (*domain.Folder, error) {
	return r.getByID(ctx, id, userID)
}

func (r *fakeFolderRepo) List(ctx context.Context, userID string) ([]*domain.Folder, error) {
	return r.list(ctx, userID)
}

func (r *fakeFolderRepo) Rename(ctx context.Context, id, userID, name string) (*domain.Folder, error) {
	return r.rename(ctx, id, userID, name)
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id, userID string) error {
	return r.delete(ctx, id, userID)
}

type fakeDraftRepo struct {
	upsert func(ctx context.Context, draft *domain.Draft) (*domain.Draft, error)
	list   func(ctx context.Context, userID string) ([]*domain.Draft, error)
	delete func(ctx context.Context, id, userID string) error
}

func (r *fakeDraftRepo) Upsert(ctx context.Context, draft *domain.Draft) (*domain.Draft, error) {
	return r.upsert(ctx, draft)
}

func (r *fakeDraftRepo) List(ctx context.Context, userID string) ([]*domain.Draft, error) {
	return r.list(ctx, userID)
}

func (r *fakeDraftRepo) Delete(ctx context.Context, id, userID string) error {
	return r.delete(ctx, id, userID)
}

type fakeCommentRepo struct {
	listByPaste func(ctx context.Context, pasteID string) ([]*domain.Comment, error)
	create      func(ctx context.Context, pasteID, userID, content string) (*domain.Comment, error)
	getByID     func(ctx context.Context, id string) (*domain.Comment, error)
	delete      func(ctx context.Context, id, userID string) error
}

func (r *fakeCommentRepo) ListByPaste(ctx context.Context, pasteID string) ([]*domain.Comment, error) {
	return r.listByPaste(ctx, pasteID)
}

func (r *fakeCommentRepo) Create(ctx context.Context, pasteID, userID, content string) (*domain.Comment, error) {
	return r.create(ctx, pasteID, userID, content)
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	return r.getByID(ctx, id)
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id, userID string) error {
	return r.delete(ctx, id, userID)
}

// toggleSet backs the like, favorite and follow fakes with an in-memory set.
type toggleSet struct {
	mu   sync.Mutex
	rows map[string]bool
}

func (s *toggleSet) toggle(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows == nil {
		s.rows = make(map[string]bool)
	}
	s.rows[key] = !s.rows[key]
	return s.rows[key]
}

func (s *toggleSet) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[key]
}

func (s *toggleSet) count(suffix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, on := range s.rows {
		if on && len(k) >= len(suffix) && k[len(k)-len(suffix):] == suffix {
			n++
		}
	}
	return n
}

type fakeLikeRepo struct{ set toggleSet }

func likeKey(target domain.LikeTarget) string {
	return "|p:" + target.PasteID + "|c:" + target.CommentID
}

func (r *fakeLikeRepo) Toggle(_ context.Context, userID string, target domain.LikeTarget) (bool, error) {
	return r.set.toggle(userID + likeKey(target)), nil
}

func (r *fakeLikeRepo) Count(_ context.Context, target domain.LikeTarget) (int, error) {
	return r.set.count(likeKey(target)), nil
}

func (r *fakeLikeRepo) IsLiked(_ context.Context, userID string, target domain.LikeTarget) (bool, error) {
	return r.set.has(userID + likeKey(target)), nil
}

type fakeFavoriteRepo struct {
	set        toggleSet
	listByUser func(ctx context.Context, userID string) ([]*domain.FavoritePaste, error)
}

func (r *fakeFavoriteRepo) Toggle(_ context.Context, userID, pasteID string) (bool, error) {
	return r.set.toggle(userID + "|" + pasteID), nil
}

func (r *fakeFavoriteRepo) Count(_ context.Context, pasteID string) (int, error) {
	return r.set.count("|" + pasteID), nil
}

func (r *fakeFavoriteRepo) IsFavorited(_ context.Context, userID, pasteID string) (bool, error) {
	return r.set.has(userID + "|" + pasteID), nil
}

func (r *fakeFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]*domain.FavoritePaste, error) {
	return r.listByUser(ctx, userID)
}

type fakeFollowRepo struct {
	set    toggleSet
	counts func(ctx context.Context, userID string) (int, int, error)
}

func (r *fakeFollowRepo) Toggle(_ context.Context, followerID, followingID string) (bool, error) {
	return r.set.toggle(followerID + "|" + followingID), nil
}

func (r *fakeFollowRepo) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	return r.set.has(followerID + "|" + followingID), nil
}

func (r *fakeFollowRepo) Counts(ctx context.Context, userID string) (int, int, error) {
	if r.counts != nil {
		return r.counts(ctx, userID)
	}
	return r.set.count("|" + userID), 0, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*domain.Notification

	createErr        error
	listByUser       func(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	deleteReadBefore func(ctx context.Context, cutoff time.Time) (int, error)
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	return r.listByUser(ctx, userID, limit)
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.created {
		if c.UserID == userID && !c.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.created {
		if c.ID == id && c.UserID == userID {
			c.IsRead = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.created {
		if c.UserID == userID && !c.IsRead {
			c.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return r.deleteReadBefore(ctx, cutoff)
}

// recordingPublisher keeps published events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SocialEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.SocialEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) published() []domain.SocialEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.SocialEvent(nil), p.events...)
}

type fakeProvider struct {
	createCustomer        func(ctx context.Context, userID, email string) (string, error)
	createCheckoutSession func(ctx context.Context, input payment.CheckoutInput) (string, error)
	getCheckoutSession    func(ctx context.Context, sessionID string) (*payment.Session, error)
	cancelAtPeriodEnd     func(ctx context.Context, subscriptionID string) (time.Time, error)
	parseWebhook          func(payload []byte, signature string) (*payment.Event, error)
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	return p.createCustomer(ctx, userID, email)
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, input payment.CheckoutInput) (string, error) {
	return p.createCheckoutSession(ctx, input)
}

func (p *fakeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*payment.Session, error) {
	return p.getCheckoutSession(ctx, sessionID)
}

func (p *fakeProvider) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error) {
	return p.cancelAtPeriodEnd(ctx, subscriptionID)
}

func (p *fakeProvider) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	return p.parseWebhook(payload, signature)
}
