// Package sync owns the in-memory project list and reconciles it across the
// remote service, the local cache and the session state. Mutations are
// optimistic: local state applies first and is mirrored to the cache
// unconditionally; remote failure degrades persistence authority but never
// undoes the local change.
package sync

import (
	"context"
	"fmt"
	"strconv"
	gosync "sync"
	"time"

	"github.com/pro-prioritet/tracker/internal/auth"
	"github.com/pro-prioritet/tracker/internal/cache"
	"github.com/pro-prioritet/tracker/internal/logx"
	"github.com/pro-prioritet/tracker/internal/projects/domain"
)

// RemoteClient is the slice of the API client the synchronizer needs.
type RemoteClient interface {
	ListProjects(ctx context.Context, token string) ([]domain.Project, error)
	CreateProject(ctx context.Context, draft domain.Draft, token string) (*domain.Project, error)
	UpdateProject(ctx context.Context, p domain.Project, token string) (*domain.Project, error)
	DeleteProject(ctx context.Context, id, token string) error
}

// Syncer is the project synchronizer. All operations serialize through one
// mutex, so for any interleaving of callers the apply order equals the issue
// order: the last write by issue order wins, per project id and overall.
type Syncer struct {
	mu gosync.Mutex

	remote   RemoteClient
	cache    *cache.Projects
	sessions *auth.Manager
	log      *logx.Logger

	session       *auth.Session
	projects      []domain.Project
	state         State
	remoteHealthy bool
}

func New(remote RemoteClient, cacheStore cache.Store, sessions *auth.Manager) *Syncer {
	return &Syncer{
		remote:   remote,
		cache:    cache.NewProjects(cacheStore),
		sessions: sessions,
		log:      logx.New("sync"),
		state:    StateUninitialized,
	}
}

// Start restores the session and performs the initial load: authenticated
// when a session exists, otherwise the anonymous public fallback.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateLoading
	s.session = s.sessions.Restore(ctx)
	if s.session != nil {
		s.loadLocked(ctx)
		return
	}
	s.loadPublicLocked()
}

// Login authenticates and, on success, transitions to a fresh authenticated
// load.
func (s *Syncer) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	session, err := s.sessions.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.state = StateLoading
	s.loadLocked(ctx)
	return session, nil
}

// Logout clears the session and reloads public/local data so the display
// never goes empty.
func (s *Syncer) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions.Logout(ctx)
	s.session = nil
	s.loadPublicLocked()
}

// Load refreshes the list: authenticated clients fast-paint from cache and
// then replace with the remote result; anonymous clients scan the cache for
// any previously saved set.
func (s *Syncer) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		s.loadPublicLocked()
		return
	}
	s.loadLocked(ctx)
}

func (s *Syncer) loadLocked(ctx context.Context) {
	key := cache.NamespaceKey(s.session.UserEmail)

	// Fast path: paint whatever the cache holds; it may be stale but it is
	// the last locally-known-good state.
	if cached, ok := s.cache.Read(key); ok {
		s.projects = cached
	}

	list, err := s.remote.ListProjects(ctx, s.session.AccessToken)
	if err != nil {
		s.log.Warnf("load", "user=%s remote list failed, keeping cached view: %v", s.session.UserEmail, err)
		s.remoteHealthy = false
		s.state = StateDegraded
		return
	}

	s.projects = list
	s.cache.Write(key, list)
	s.remoteHealthy = true
	s.state = StateConnected
}

func (s *Syncer) loadPublicLocked() {
	s.state = StateOfflinePublic
	s.remoteHealthy = false

	for _, key := range s.cache.ScanNamespaces() {
		if list, ok := s.cache.Read(key); ok && len(list) > 0 {
			s.log.Infof("load_public", "adopted %d cached projects from %s", len(list), key)
			s.projects = list
			return
		}
	}
	s.projects = []domain.Project{}
}

// Add creates a project. Without a session it returns ErrAuthRequired and
// changes nothing. With one, the remote result is appended on success; on
// remote failure a local project is synthesized so the operation is never
// lost; only its persistence authority degrades.
func (s *Syncer) Add(ctx context.Context, draft domain.Draft) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, domain.ErrAuthRequired
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	draft = draft.Normalized()

	created, err := s.remote.CreateProject(ctx, draft, s.session.AccessToken)
	if err != nil {
		s.log.Warnf("add", "remote create failed, falling back to local: %v", err)
		s.remoteHealthy = false
		s.state = StateDegraded
		created = s.localProject(draft)
	} else {
		s.remoteHealthy = true
		s.state = StateConnected
	}

	s.projects = append(s.cloneProjects(), *created)
	s.mirrorLocked()
	return created, nil
}

// Update applies the new project value optimistically by id and mirrors it,
// then attempts the remote write. Remote failure is logged only; local state
// is already the source of truth for this session.
func (s *Syncer) Update(ctx context.Context, p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.ErrAuthRequired
	}
	if err := p.Validate(); err != nil {
		return err
	}

	next := s.cloneProjects()
	for i := range next {
		if next[i].ID == p.ID {
			p.CreatedAt = next[i].CreatedAt // immutable after creation
			next[i] = p
			break
		}
	}
	s.projects = next
	s.mirrorLocked()

	if _, err := s.remote.UpdateProject(ctx, p, s.session.AccessToken); err != nil {
		s.log.Warnf("update", "id=%s remote update failed, local state stands: %v", p.ID, err)
		s.remoteHealthy = false
		s.state = StateDegraded
		return nil
	}
	s.remoteHealthy = true
	s.state = StateConnected
	return nil
}

// Delete removes a project. The entry leaves the in-memory list and the
// cache whether or not the remote delete succeeds; the server copy may go
// stale until the next successful load.
func (s *Syncer) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.ErrAuthRequired
	}

	if err := s.remote.DeleteProject(ctx, id, s.session.AccessToken); err != nil {
		s.log.Warnf("delete", "id=%s remote delete failed, removing locally: %v", id, err)
		s.remoteHealthy = false
		s.state = StateDegraded
	} else {
		s.remoteHealthy = true
		s.state = StateConnected
	}

	next := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.ID != id {
			next = append(next, p)
		}
	}
	s.projects = next
	s.mirrorLocked()
	return nil
}

// Projects returns a copy of the current in-memory list. Ordering is
// whatever the last supplying source produced; sorting is a presentation
// concern.
func (s *Syncer) Projects() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneProjects()
}

// Session returns a copy of the current session, nil when anonymous. Callers
// cannot reach the internal session through it.
func (s *Syncer) Session() *auth.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	out := *s.session
	out.Roles = append([]string(nil), s.session.Roles...)
	return &out
}

// State reports the synchronizer's lifecycle state.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode reports the passive connected/demo indicator.
func (s *Syncer) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectMode(s.session != nil, s.remoteHealthy)
}

// mirrorLocked writes the in-memory list to the session's cache namespace.
// Called after every authenticated mutation, before or regardless of the
// remote outcome.
func (s *Syncer) mirrorLocked() {
	if s.session == nil {
		return
	}
	s.cache.Write(cache.NamespaceKey(s.session.UserEmail), s.projects)
}

// localProject synthesizes a project for offline creation: a timestamp id,
// made distinct from every id already in the list, and createdAt = now.
func (s *Syncer) localProject(draft domain.Draft) *domain.Project {
	base := strconv.FormatInt(time.Now().UnixMilli(), 10)
	id := base
	for n := 1; s.hasID(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return &domain.Project{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		Progress:    draft.Progress,
		Assignee:    draft.Assignee,
		Manager:     draft.Manager,
		Deadline:    draft.Deadline,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Syncer) hasID(id string) bool {
	for _, p := range s.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Syncer) cloneProjects() []domain.Project {
	out := make([]domain.Project, len(s.projects))
	copy(out, s.projects)
	return out
}
