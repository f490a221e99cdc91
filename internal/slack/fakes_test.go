package slack

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shubh-37/post-scheduler/internal/agents"
	"github.com/shubh-37/post-scheduler/internal/database"
	"github.com/shubh-37/post-scheduler/internal/models"
)

type fakeMessenger struct {
	mu       sync.Mutex
	messages []string
}

func (m *fakeMessenger) SendMessage(_, message string) error {
	_, err := m.SendMessageAndGetTS("", message)
	return err
}

func (m *fakeMessenger) SendMessageAndGetTS(_, message string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return fmt.Sprintf("ts-%d", len(m.messages)), nil
}

func (m *fakeMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return ""
	}
	return m.messages[len(m.messages)-1]
}

type fakeRepo struct {
	posts       map[string]*models.Post
	nextID      int
	failUpdates bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{posts: map[string]*models.Post{}}
}

func (r *fakeRepo) Create(_ context.Context, post *models.Post) error {
	if post.ID == "" {
		r.nextID++
		post.ID = fmt.Sprintf("p%d", r.nextID)
	}
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, database.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, opts database.ListOptions) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range r.posts {
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(p.Message), strings.ToLower(opts.Search)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if opts.Sort == database.SortDescending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (r *fakeRepo) GetByStatus(ctx context.Context, status string) ([]*models.Post, error) {
	return r.List(ctx, database.ListOptions{Status: status, Sort: database.SortAscending})
}

func (r *fakeRepo) Update(_ context.Context, post *models.Post) error {
	if r.failUpdates {
		return errors.New("write failed")
	}
	if _, ok := r.posts[post.ID]; !ok {
		return database.ErrPostNotFound
	}
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id, status string) error {
	if r.failUpdates {
		return errors.New("write failed")
	}
	p, ok := r.posts[id]
	if !ok {
		return database.ErrPostNotFound
	}
	p.Status = status
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return database.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakeRepo) CountByStatus(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, p := range r.posts {
		counts[p.Status]++
	}
	return counts, nil
}

type fakeWriter struct {
	captions []string
	improved string
	err      error
}

func (w *fakeWriter) GenerateCaptions(_ context.Context, _, _ string) ([]string, error) {
	return w.captions, w.err
}

func (w *fakeWriter) ImproveCaption(_ context.Context, _ string, _ []string) (string, error) {
	return w.improved, w.err
}

type fakeCategorizer struct {
	category string
}

func (c *fakeCategorizer) SuggestCategory(_ context.Context, _ string) (string, error) {
	return c.category, nil
}

type testBot struct {
	messenger *fakeMessenger
	repo      *fakeRepo
	writer    *fakeWriter
	handler   *MessageHandler
	approval  *ApprovalHandler
}

func newTestBot() *testBot {
	messenger := &fakeMessenger{}
	repo := newFakeRepo()
	writer := &fakeWriter{}
	commands := NewCommandHandler(messenger, repo, writer, &fakeCategorizer{category: "promotion"}, agents.NewScheduler(repo), "UTC")
	approval := NewApprovalHandler(messenger, repo)
	return &testBot{
		messenger: messenger,
		repo:      repo,
		writer:    writer,
		handler:   NewMessageHandler(messenger, commands, approval),
		approval:  approval,
	}
}
