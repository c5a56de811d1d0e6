package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

type fakeLimits struct {
	err   error
	calls int
}

func (l *fakeLimits) CheckPasteLimits(_ context.Context, _ string, _ string) error {
	l.calls++
	return l.err
}

type fakeViews struct {
	mu  sync.Mutex
	ids []string
}

func (v *fakeViews) Increment(_ context.Context, pasteID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ids = append(v.ids, pasteID)
}

func (v *fakeViews) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.ids)
}

type pasteDeps struct {
	pastes  *fakePasteRepo
	folders *fakeFolderRepo
	drafts  *fakeDraftRepo
	limits  *fakeLimits
	views   *fakeViews
}

func newPasteDeps() *pasteDeps {
	return &pasteDeps{
		pastes: &fakePasteRepo{
			create: func(_ context.Context, p *domain.Paste) (*domain.Paste, error) {
				p.ID = "paste-1"
				p.CreatedAt = time.Now()
				return p, nil
			},
		},
		folders: &fakeFolderRepo{},
		drafts:  &fakeDraftRepo{},
		limits:  &fakeLimits{},
		views:   &fakeViews{},
	}
}

func (d *pasteDeps) usecase() *usecase.PasteUsecase {
	return usecase.NewPasteUsecase(d.pastes, d.folders, d.drafts, &fakeProfileRepo{}, d.limits, d.views, discardLogger)
}

func TestCreatePaste_Defaults(t *testing.T) {
	d := newPasteDeps()

	p, err := d.usecase().CreatePaste(context.Background(), usecase.CreatePasteInput{
		UserID:  "user-1",
		Title:   "   ",
		Content: "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != domain.DefaultPasteTitle {
		t.Errorf("title = %q", p.Title)
	}
	if p.UserID == nil || *p.UserID != "user-1" {
		t.Errorf("owner = %v", p.UserID)
	}
	if p.ExpiresAt != nil {
		t.Errorf("expected no expiry, got %v", p.ExpiresAt)
	}
	if d.limits.calls != 1 {
		t.Errorf("limits checked %d times", d.limits.calls)
	}
}

func TestCreatePaste_AnonymousIsPublic(t *testing.T) {
	d := newPasteDeps()

	p, err := d.usecase().CreatePaste(context.Background(), usecase.CreatePasteInput{
		Content:  "x",
		IsPublic: false,
		FolderID: ptr("folder-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsPublic || p.UserID != nil || p.FolderID != nil {
		t.Errorf("anonymous paste should be public and unowned: %+v", p)
	}
}

func TestCreatePaste_QuotaErrorsPassThrough(t *testing.T) {
	for _, quotaErr := range []error{
		&domain.SizeExceededError{LimitKB: 100},
		&domain.DailyLimitExceededError{Limit: 50},
	} {
		d := newPasteDeps()
		d.limits.err = quotaErr
		d.pastes.create = func(context.Context, *domain.Paste) (*domain.Paste, error) {
			t.Fatal("paste must not be stored when limits deny")
			return nil, nil
		}

		_, err := d.usecase().CreatePaste(context.Background(), usecase.CreatePasteInput{UserID: "user-1", Content: "x"})

		var size *domain.SizeExceededError
		var daily *domain.DailyLimitExceededError
		if !errors.As(err, &size) && !errors.As(err, &daily) {
			t.Fatalf("expected quota error, got %v", err)
		}
		if !strings.Contains(err.Error(), quotaErr.Error()) {
			t.Errorf("message %q lost %q", err, quotaErr)
		}
	}
}

func TestCreatePaste_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.CreatePasteInput
		want  error
	}{
		{"empty content", usecase.CreatePasteInput{UserID: "user-1", Content: "  \n"}, domain.ErrEmptyContent},
		{"password on public", usecase.CreatePasteInput{UserID: "user-1", Content: "x", IsPublic: true, Password: "pw"}, domain.ErrPasswordForPublic},
		{"bad expiry", usecase.CreatePasteInput{UserID: "user-1", Content: "x", ExpiresInHours: 5}, domain.ErrInvalidExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newPasteDeps().usecase().CreatePaste(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreatePaste_PasswordExpiryAndDraft(t *testing.T) {
	d := newPasteDeps()
	var deletedDraft string
	d.drafts.delete = func(_ context.Context, id, _ string) error {
		deletedDraft = id
		return nil
	}

	before := time.Now()
	p, err := d.usecase().CreatePaste(context.Background(), usecase.CreatePasteInput{
		UserID:         "user-1",
		Content:        "secret",
		Password:       "hunter2",
		ExpiresInHours: 24,
		DraftID:        "draft-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*p.PasswordHash), []byte("hunter2")) != nil {
		t.Error("password hash does not verify")
	}
	if p.ExpiresAt == nil || p.ExpiresAt.Before(before.Add(24*time.Hour)) {
		t.Errorf("expiry = %v", p.ExpiresAt)
	}
	if deletedDraft != "draft-1" {
		t.Errorf("draft not deleted, got %q", deletedDraft)
	}
}

func TestCreatePaste_ForeignFolder(t *testing.T) {
	d := newPasteDeps()
	d.folders.getByID = func(context.Context, string, string) (*domain.Folder, error) {
		return nil, domain.ErrFolderNotFound
	}

	_, err := d.usecase().CreatePaste(context.Background(), usecase.CreatePasteInput{
		UserID: "user-1", Content: "x", FolderID: ptr("folder-of-someone-else"),
	})
	if !errors.Is(err, domain.ErrFolderNotFound) {
		t.Fatalf("expected ErrFolderNotFound, got %v", err)
	}
}

func protectedPaste(t *testing.T, password string) *domain.Paste {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return &domain.Paste{ID: "paste-1", UserID: ptr("owner"), Content: "x", PasswordHash: ptr(string(hash))}
}

func TestGetPaste_Access(t *testing.T) {
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name      string
		paste     *domain.Paste
		viewer    string
		want      error
		wantViews int
	}{
		{"public", &domain.Paste{ID: "p", IsPublic: true}, "", nil, 1},
		{"private owner", &domain.Paste{ID: "p", UserID: ptr("owner")}, "owner", nil, 1},
		{"private stranger", &domain.Paste{ID: "p", UserID: ptr("owner")}, "other", domain.ErrPasteForbidden, 0},
		{"private anonymous", &domain.Paste{ID: "p", UserID: ptr("owner")}, "", domain.ErrPasteForbidden, 0},
		{"password protected", protectedPaste(t, "pw"), "other", domain.ErrPasswordRequired, 0},
		{"expired", &domain.Paste{ID: "p", IsPublic: true, ExpiresAt: &past}, "", domain.ErrPasteExpired, 0},
		{"expired even for owner", &domain.Paste{ID: "p", UserID: ptr("owner"), ExpiresAt: &past}, "owner", domain.ErrPasteExpired, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newPasteDeps()
			d.pastes.getByID = func(context.Context, string) (*domain.Paste, error) { return tt.paste, nil }

			_, err := d.usecase().GetPaste(context.Background(), tt.paste.ID, tt.viewer)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if d.views.count() != tt.wantViews {
				t.Errorf("views = %d, want %d", d.views.count(), tt.wantViews)
			}
		})
	}
}

func TestUnlockPaste(t *testing.T) {
	paste := protectedPaste(t, "correct horse")

	d := newPasteDeps()
	d.pastes.getByID = func(context.Context, string) (*domain.Paste, error) { return paste, nil }
	uc := d.usecase()

	if _, err := uc.UnlockPaste(context.Background(), paste.ID, "", "wrong"); !errors.Is(err, domain.ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
	if d.views.count() != 0 {
		t.Errorf("failed unlock counted a view")
	}

	got, err := uc.UnlockPaste(context.Background(), paste.ID, "", "correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != paste.ID || d.views.count() != 1 {
		t.Errorf("unlock returned %v with %d views", got.ID, d.views.count())
	}
}

func TestListMyPastes_Cursor(t *testing.T) {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	rows := make([]*domain.Paste, 0, 6)
	for i := range 6 {
		rows = append(rows, &domain.Paste{ID: string(rune('a' + i)), CreatedAt: base.Add(-time.Duration(i) * time.Minute)})
	}

	var inputs []repository.ListPastesInput
	d := newPasteDeps()
	d.pastes.listByUser = func(_ context.Context, in repository.ListPastesInput) ([]*domain.Paste, error) {
		inputs = append(inputs, in)
		start := 0
		if in.CursorTime != nil {
			for i, r := range rows {
				if r.ID == in.CursorID {
					start = i + 1
				}
			}
		}
		end := min(start+in.Limit, len(rows))
		return rows[start:end], nil
	}
	uc := d.usecase()

	first, err := uc.ListMyPastes(context.Background(), usecase.ListPastesInput{UserID: "user-1", Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Pastes) != 3 || first.NextCursor == nil {
		t.Fatalf("first page: %d pastes, cursor %v", len(first.Pastes), first.NextCursor)
	}
	if inputs[0].Limit != 4 {
		t.Errorf("repo limit = %d, want limit+1", inputs[0].Limit)
	}

	second, err := uc.ListMyPastes(context.Background(), usecase.ListPastesInput{UserID: "user-1", Limit: 3, Cursor: *first.NextCursor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Pastes) != 3 || second.Pastes[0].ID != "d" {
		t.Fatalf("second page starts at %q, want d", second.Pastes[0].ID)
	}
	if second.NextCursor != nil {
		t.Errorf("last page should have no cursor")
	}
}

func TestListMyPastes_BadCursor(t *testing.T) {
	_, err := newPasteDeps().usecase().ListMyPastes(context.Background(), usecase.ListPastesInput{UserID: "u", Cursor: "!!"})
	if !errors.Is(err, domain.ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestUpdatePaste_DoesNotRecheckLimits(t *testing.T) {
	d := newPasteDeps()
	d.limits.err = &domain.SizeExceededError{LimitKB: 100}
	var got repository.UpdatePasteInput
	d.pastes.update = func(_ context.Context, id, userID string, in repository.UpdatePasteInput) (*domain.Paste, error) {
		got = in
		return &domain.Paste{ID: id, UserID: &userID}, nil
	}

	_, err := d.usecase().UpdatePaste(context.Background(), usecase.UpdatePasteInput{
		ID: "paste-1", UserID: "user-1", Title: ptr(""), Content: ptr(strings.Repeat("a", 300*1024)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.limits.calls != 0 {
		t.Error("limits must not be checked on edit")
	}
	if *got.Title != domain.DefaultPasteTitle {
		t.Errorf("title = %q", *got.Title)
	}
}
