package sync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pro-prioritet/tracker/internal/auth"
	"github.com/pro-prioritet/tracker/internal/cache"
	"github.com/pro-prioritet/tracker/internal/projects/domain"
)

var errRemoteDown = errors.New("remote unavailable")

// fakeRemote implements RemoteClient with overridable behavior per test.
type fakeRemote struct {
	list   func(ctx context.Context, token string) ([]domain.Project, error)
	create func(ctx context.Context, draft domain.Draft, token string) (*domain.Project, error)
	update func(ctx context.Context, p domain.Project, token string) (*domain.Project, error)
	del    func(ctx context.Context, id, token string) error
}

func (f *fakeRemote) ListProjects(ctx context.Context, token string) ([]domain.Project, error) {
	if f.list == nil {
		return []domain.Project{}, nil
	}
	return f.list(ctx, token)
}

func (f *fakeRemote) CreateProject(ctx context.Context, draft domain.Draft, token string) (*domain.Project, error) {
	if f.create == nil {
		return nil, errRemoteDown
	}
	return f.create(ctx, draft, token)
}

func (f *fakeRemote) UpdateProject(ctx context.Context, p domain.Project, token string) (*domain.Project, error) {
	if f.update == nil {
		return nil, errRemoteDown
	}
	return f.update(ctx, p, token)
}

func (f *fakeRemote) DeleteProject(ctx context.Context, id, token string) error {
	if f.del == nil {
		return errRemoteDown
	}
	return f.del(ctx, id, token)
}

// fakeAuth is a provider with a single account, alice@example.com / secret.
type fakeAuth struct {
	stored *auth.ProviderSession
}

func aliceSession() *auth.ProviderSession {
	return &auth.ProviderSession{
		AccessToken: "tok-alice",
		User:        auth.User{ID: "u-alice", Email: "alice@example.com"},
	}
}

func (f *fakeAuth) GetSession(ctx context.Context) (*auth.ProviderSession, error) {
	return f.stored, nil
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*auth.ProviderSession, error) {
	if email == "alice@example.com" && password == "secret" {
		return aliceSession(), nil
	}
	return nil, &auth.AuthError{Kind: auth.KindInvalidCredentials, Err: errors.New("status 400")}
}

func (f *fakeAuth) SignOut(ctx context.Context) error { return nil }

func (f *fakeAuth) SignUp(ctx context.Context, email, password, name string) (*auth.User, error) {
	return nil, errors.New("not supported")
}

func (f *fakeAuth) UserFromToken(ctx context.Context, token string) (*auth.User, error) {
	return nil, errors.New("not supported")
}

func validDraft(title string) domain.Draft {
	return domain.Draft{
		Title:    title,
		Assignee: "Anna",
		Manager:  "Boris",
		Deadline: "2026-09-30",
	}
}

func seedCache(t *testing.T, store cache.Store, email string, list []domain.Project) {
	t.Helper()
	raw, err := json.Marshal(list)
	require.NoError(t, err)
	require.NoError(t, store.Set(cache.NamespaceKey(email), string(raw)))
}

func readCache(t *testing.T, store cache.Store, email string) []domain.Project {
	t.Helper()
	raw, ok := store.Get(cache.NamespaceKey(email))
	require.True(t, ok, "expected cache entry for %s", email)
	var list []domain.Project
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	return list
}

func loggedInSyncer(t *testing.T, remote RemoteClient, store cache.Store) *Syncer {
	t.Helper()
	s := New(remote, store, auth.NewManager(&fakeAuth{}))
	_, err := s.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	return s
}

func titles(list []domain.Project) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.Title
	}
	return out
}

func TestStartAnonymous(t *testing.T) {
	t.Run("adopts a previously cached set", func(t *testing.T) {
		store := cache.NewMemoryStore()
		seedCache(t, store, "alice@example.com", []domain.Project{{ID: "1", Title: "Cached"}})

		s := New(&fakeRemote{}, store, auth.NewManager(&fakeAuth{}))
		s.Start(context.Background())

		assert.Nil(t, s.Session())
		assert.Equal(t, []string{"Cached"}, titles(s.Projects()))
		assert.Equal(t, StateOfflinePublic, s.State())
		assert.Equal(t, ModeDemo, s.Mode())
	})

	t.Run("empty cache shows empty list", func(t *testing.T) {
		s := New(&fakeRemote{}, cache.NewMemoryStore(), auth.NewManager(&fakeAuth{}))
		s.Start(context.Background())

		assert.NotNil(t, s.Projects())
		assert.Empty(t, s.Projects())
		assert.Equal(t, ModeDemo, s.Mode())
	})

	t.Run("skips empty namespaces for a populated one", func(t *testing.T) {
		store := cache.NewMemoryStore()
		seedCache(t, store, "empty@example.com", []domain.Project{})
		seedCache(t, store, "full@example.com", []domain.Project{{ID: "1", Title: "Found"}})

		s := New(&fakeRemote{}, store, auth.NewManager(&fakeAuth{}))
		s.Start(context.Background())
		assert.Equal(t, []string{"Found"}, titles(s.Projects()))
	})
}

func TestStartRestoredSession(t *testing.T) {
	remote := &fakeRemote{
		list: func(ctx context.Context, token string) ([]domain.Project, error) {
			assert.Equal(t, "tok-alice", token)
			return []domain.Project{{ID: "r1", Title: "Remote"}}, nil
		},
	}

	s := New(remote, cache.NewMemoryStore(), auth.NewManager(&fakeAuth{stored: aliceSession()}))
	s.Start(context.Background())

	require.NotNil(t, s.Session())
	assert.Equal(t, []string{"Remote"}, titles(s.Projects()))
	assert.Equal(t, StateConnected, s.State())
	assert.Equal(t, ModeConnected, s.Mode())
}

func TestLoadReplacesCachedWithRemote(t *testing.T) {
	t.Run("authoritative empty list wins over cache", func(t *testing.T) {
		store := cache.NewMemoryStore()
		seedCache(t, store, "alice@example.com", []domain.Project{{ID: "stale", Title: "P1"}})

		remote := &fakeRemote{
			list: func(ctx context.Context, token string) ([]domain.Project, error) {
				return []domain.Project{}, nil
			},
		}

		s := loggedInSyncer(t, remote, store)
		assert.Empty(t, s.Projects())
		assert.Empty(t, readCache(t, store, "alice@example.com"), "mirror follows the remote result")
	})

	t.Run("remote failure keeps the cached view", func(t *testing.T) {
		store := cache.NewMemoryStore()
		seedCache(t, store, "alice@example.com", []domain.Project{{ID: "1", Title: "Cached"}})

		remote := &fakeRemote{
			list: func(ctx context.Context, token string) ([]domain.Project, error) {
				return nil, errRemoteDown
			},
		}

		s := loggedInSyncer(t, remote, store)
		assert.Equal(t, []string{"Cached"}, titles(s.Projects()))
		assert.Equal(t, StateDegraded, s.State())
		assert.Equal(t, ModeDemo, s.Mode())
		assert.Equal(t, []string{"Cached"}, titles(readCache(t, store, "alice@example.com")),
			"failed load must not clobber the cache")
	})
}

func TestAdd(t *testing.T) {
	t.Run("uses the server-assigned project", func(t *testing.T) {
		remote := &fakeRemote{
			create: func(ctx context.Context, draft domain.Draft, token string) (*domain.Project, error) {
				return &domain.Project{ID: "srv-1", Title: draft.Title, UserID: "u-alice", CreatedAt: "2026-08-28T10:00:00Z"}, nil
			},
		}
		store := cache.NewMemoryStore()
		s := loggedInSyncer(t, remote, store)

		p, err := s.Add(context.Background(), validDraft("From server"))
		require.NoError(t, err)
		assert.Equal(t, "srv-1", p.ID)
		assert.Equal(t, ModeConnected, s.Mode())
		assert.Equal(t, []string{"From server"}, titles(readCache(t, store, "alice@example.com")))
	})

	t.Run("remote failure falls back to a local project", func(t *testing.T) {
		store := cache.NewMemoryStore()
		s := loggedInSyncer(t, &fakeRemote{}, store)

		p, err := s.Add(context.Background(), validDraft("Offline add"))
		require.NoError(t, err, "the operation itself must not fail")
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.CreatedAt)
		assert.Equal(t, domain.StatusPlanned, p.Status, "defaults applied")
		assert.Equal(t, domain.PriorityMedium, p.Priority)

		assert.Equal(t, []string{"Offline add"}, titles(s.Projects()))
		assert.Equal(t, []string{"Offline add"}, titles(readCache(t, store, "alice@example.com")))
		assert.Equal(t, StateDegraded, s.State())
		assert.Equal(t, ModeDemo, s.Mode())
	})

	t.Run("two offline adds get distinct ids", func(t *testing.T) {
		s := loggedInSyncer(t, &fakeRemote{}, cache.NewMemoryStore())

		p1, err := s.Add(context.Background(), validDraft("A"))
		require.NoError(t, err)
		p2, err := s.Add(context.Background(), validDraft("B"))
		require.NoError(t, err)
		assert.NotEqual(t, p1.ID, p2.ID)
	})

	t.Run("invalid draft is rejected before any call", func(t *testing.T) {
		created := false
		remote := &fakeRemote{
			create: func(ctx context.Context, draft domain.Draft, token string) (*domain.Project, error) {
				created = true
				return nil, nil
			},
		}
		s := loggedInSyncer(t, remote, cache.NewMemoryStore())

		_, err := s.Add(context.Background(), domain.Draft{Title: "No assignee"})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.False(t, created)
		assert.Empty(t, s.Projects())
	})
}

func TestUpdate(t *testing.T) {
	existing := domain.Project{
		ID: "p1", Title: "Original", Assignee: "Anna", Manager: "Boris",
		Deadline: "2026-09-30", Status: domain.StatusPlanned, Priority: domain.PriorityLow,
		CreatedAt: "2026-01-01T00:00:00Z",
	}

	newSyncerWith := func(t *testing.T, update func(ctx context.Context, p domain.Project, token string) (*domain.Project, error)) (*Syncer, *cache.MemoryStore) {
		store := cache.NewMemoryStore()
		remote := &fakeRemote{
			list: func(ctx context.Context, token string) ([]domain.Project, error) {
				return []domain.Project{existing}, nil
			},
			update: update,
		}
		return loggedInSyncer(t, remote, store), store
	}

	t.Run("applies optimistically and mirrors", func(t *testing.T) {
		s, store := newSyncerWith(t, func(ctx context.Context, p domain.Project, token string) (*domain.Project, error) {
			return &p, nil
		})

		changed := existing
		changed.Title = "Renamed"
		changed.Status = domain.StatusInProgress
		require.NoError(t, s.Update(context.Background(), changed))

		assert.Equal(t, []string{"Renamed"}, titles(s.Projects()))
		assert.Equal(t, []string{"Renamed"}, titles(readCache(t, store, "alice@example.com")))
		assert.Equal(t, ModeConnected, s.Mode())
	})

	t.Run("keeps local state when the remote write fails", func(t *testing.T) {
		s, store := newSyncerWith(t, nil)

		changed := existing
		changed.Title = "Renamed offline"
		require.NoError(t, s.Update(context.Background(), changed), "remote failure is not surfaced")

		assert.Equal(t, []string{"Renamed offline"}, titles(s.Projects()))
		assert.Equal(t, []string{"Renamed offline"}, titles(readCache(t, store, "alice@example.com")))
		assert.Equal(t, StateDegraded, s.State())
	})

	t.Run("empty status is rejected before any state change", func(t *testing.T) {
		called := false
		s, store := newSyncerWith(t, func(ctx context.Context, p domain.Project, token string) (*domain.Project, error) {
			called = true
			return &p, nil
		})

		changed := existing
		changed.Status = ""
		err := s.Update(context.Background(), changed)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.False(t, called, "remote must not see an invalid project")

		got := s.Projects()
		require.Len(t, got, 1)
		assert.Equal(t, "Original", got[0].Title)
		assert.Equal(t, domain.StatusPlanned, got[0].Status, "in-memory state keeps the valid value")

		cached := readCache(t, store, "alice@example.com")
		require.Len(t, cached, 1)
		assert.Equal(t, domain.StatusPlanned, cached[0].Status, "cache keeps the valid value")
	})

	t.Run("empty priority is rejected the same way", func(t *testing.T) {
		s, _ := newSyncerWith(t, nil)

		changed := existing
		changed.Priority = ""
		err := s.Update(context.Background(), changed)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("creation timestamp is preserved", func(t *testing.T) {
		s, _ := newSyncerWith(t, func(ctx context.Context, p domain.Project, token string) (*domain.Project, error) {
			return &p, nil
		})

		changed := existing
		changed.CreatedAt = "2030-12-31T23:59:59Z" // must be ignored
		changed.Title = "Tampered"
		require.NoError(t, s.Update(context.Background(), changed))

		got := s.Projects()
		require.Len(t, got, 1)
		assert.Equal(t, "2026-01-01T00:00:00Z", got[0].CreatedAt)
	})
}

func TestDelete(t *testing.T) {
	seed := []domain.Project{{ID: "p1", Title: "Keep"}, {ID: "p2", Title: "Drop"}}

	t.Run("removes locally even when the remote delete fails", func(t *testing.T) {
		store := cache.NewMemoryStore()
		remote := &fakeRemote{
			list: func(ctx context.Context, token string) ([]domain.Project, error) {
				return seed, nil
			},
		}
		s := loggedInSyncer(t, remote, store)

		require.NoError(t, s.Delete(context.Background(), "p2"))
		assert.Equal(t, []string{"Keep"}, titles(s.Projects()))
		assert.Equal(t, []string{"Keep"}, titles(readCache(t, store, "alice@example.com")))
		assert.Equal(t, ModeDemo, s.Mode())
	})

	t.Run("successful delete keeps connected mode", func(t *testing.T) {
		store := cache.NewMemoryStore()
		remote := &fakeRemote{
			list: func(ctx context.Context, token string) ([]domain.Project, error) {
				return seed, nil
			},
			del: func(ctx context.Context, id, token string) error {
				assert.Equal(t, "p2", id)
				return nil
			},
		}
		s := loggedInSyncer(t, remote, store)

		require.NoError(t, s.Delete(context.Background(), "p2"))
		assert.Equal(t, []string{"Keep"}, titles(s.Projects()))
		assert.Equal(t, ModeConnected, s.Mode())
	})

	t.Run("failed delete does not resurrect on a degraded reload", func(t *testing.T) {
		store := cache.NewMemoryStore()
		remote := &fakeRemote{
			list: func(ctx context.Context, token string) ([]domain.Project, error) {
				return seed, nil
			},
		}
		s := loggedInSyncer(t, remote, store)
		require.NoError(t, s.Delete(context.Background(), "p2"))

		// Remote goes fully down; reload paints from the mirrored cache.
		remote.list = func(ctx context.Context, token string) ([]domain.Project, error) {
			return nil, errRemoteDown
		}
		s.Load(context.Background())

		assert.Equal(t, []string{"Keep"}, titles(s.Projects()))
	})
}

func TestMutationsRequireSession(t *testing.T) {
	store := cache.NewMemoryStore()
	seedCache(t, store, "alice@example.com", []domain.Project{{ID: "1", Title: "Cached"}})

	s := New(&fakeRemote{}, store, auth.NewManager(&fakeAuth{}))
	s.Start(context.Background())
	before := titles(s.Projects())

	_, err := s.Add(context.Background(), validDraft("Nope"))
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	err = s.Update(context.Background(), domain.Project{ID: "1", Title: "Nope"})
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	err = s.Delete(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	assert.Equal(t, before, titles(s.Projects()), "gated operations change nothing")
	assert.Equal(t, []string{"Cached"}, titles(readCache(t, store, "alice@example.com")))
}

func TestLogout(t *testing.T) {
	store := cache.NewMemoryStore()
	remote := &fakeRemote{
		list: func(ctx context.Context, token string) ([]domain.Project, error) {
			return []domain.Project{{ID: "1", Title: "Mine"}}, nil
		},
	}
	s := loggedInSyncer(t, remote, store)
	require.NotNil(t, s.Session())

	s.Logout(context.Background())

	assert.Nil(t, s.Session())
	assert.Equal(t, ModeDemo, s.Mode())
	// The mirrored set survives logout and feeds the anonymous view.
	assert.Equal(t, []string{"Mine"}, titles(s.Projects()))
}

func TestSessionReturnsACopy(t *testing.T) {
	s := loggedInSyncer(t, &fakeRemote{}, cache.NewMemoryStore())

	first := s.Session()
	require.NotNil(t, first)
	require.NotEmpty(t, first.Roles)
	first.Roles[0] = "admin"
	first.AccessToken = "tampered"

	fresh := s.Session()
	assert.Equal(t, []string{"user"}, fresh.Roles)
	assert.Equal(t, "tok-alice", fresh.AccessToken)
}

func TestLoginFailureLeavesStateAlone(t *testing.T) {
	store := cache.NewMemoryStore()
	seedCache(t, store, "alice@example.com", []domain.Project{{ID: "1", Title: "Cached"}})

	s := New(&fakeRemote{}, store, auth.NewManager(&fakeAuth{}))
	s.Start(context.Background())

	_, err := s.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, auth.KindInvalidCredentials, auth.KindOf(err))
	assert.Nil(t, s.Session())
	assert.Equal(t, []string{"Cached"}, titles(s.Projects()))
}

// The cache must equal the in-memory list after every authenticated
// mutation, whatever the remote outcome of each step was.
func TestMirrorInvariant(t *testing.T) {
	store := cache.NewMemoryStore()
	remoteUp := true
	remote := &fakeRemote{
		list: func(ctx context.Context, token string) ([]domain.Project, error) {
			return []domain.Project{}, nil
		},
		create: func(ctx context.Context, draft domain.Draft, token string) (*domain.Project, error) {
			if !remoteUp {
				return nil, errRemoteDown
			}
			return &domain.Project{ID: "srv-" + draft.Title, Title: draft.Title}, nil
		},
		update: func(ctx context.Context, p domain.Project, token string) (*domain.Project, error) {
			if !remoteUp {
				return nil, errRemoteDown
			}
			return &p, nil
		},
		del: func(ctx context.Context, id, token string) error {
			if !remoteUp {
				return errRemoteDown
			}
			return nil
		},
	}
	s := loggedInSyncer(t, remote, store)
	ctx := context.Background()

	checkMirror := func(step string) {
		assert.Equal(t, s.Projects(), readCache(t, store, "alice@example.com"), "mirror broken after %s", step)
	}

	_, err := s.Add(ctx, validDraft("A"))
	require.NoError(t, err)
	checkMirror("online add")

	remoteUp = false
	offline, err := s.Add(ctx, validDraft("B"))
	require.NoError(t, err)
	checkMirror("offline add")

	changed := *offline
	changed.Title = "B2"
	require.NoError(t, s.Update(ctx, changed))
	checkMirror("offline update")

	require.NoError(t, s.Delete(ctx, "srv-A"))
	checkMirror("offline delete")

	remoteUp = true
	require.NoError(t, s.Delete(ctx, changed.ID))
	checkMirror("online delete")
}
