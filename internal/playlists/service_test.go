package playlists

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"harmonia/internal/cache"
	"harmonia/internal/store"
)

// fakeStore implements Store with overridable behavior per method. Methods a
// test does not expect to run panic with a clear message.
type fakeStore struct {
	createPlaylist         func(ctx context.Context, id, name, owner string) error
	playlistsByUser        func(ctx context.Context, userID string) ([]store.Playlist, error)
	playlistOwner          func(ctx context.Context, id string) (string, error)
	playlistWithOwner      func(ctx context.Context, id string) (store.Playlist, error)
	deletePlaylist         func(ctx context.Context, id string) error
	collaboratorIDs        func(ctx context.Context, playlistID string) ([]string, error)
	songByID               func(ctx context.Context, id string) (store.Song, error)
	songsInPlaylist        func(ctx context.Context, playlistID string) ([]store.Song, error)
	playlistHasSong        func(ctx context.Context, playlistID, songID string) (bool, error)
	addSongToPlaylist      func(ctx context.Context, playlistID, songID string) error
	removeSongFromPlaylist func(ctx context.Context, playlistID, songID string) error
	insertActivity         func(ctx context.Context, playlistID, userID, songID, action string) error
	activitiesByPlaylist   func(ctx context.Context, playlistID string) ([]store.Activity, error)
}

func (f *fakeStore) CreatePlaylist(ctx context.Context, id, name, owner string) error {
	if f.createPlaylist == nil {
		panic("unexpected CreatePlaylist")
	}
	return f.createPlaylist(ctx, id, name, owner)
}

func (f *fakeStore) PlaylistsByUser(ctx context.Context, userID string) ([]store.Playlist, error) {
	if f.playlistsByUser == nil {
		panic("unexpected PlaylistsByUser")
	}
	return f.playlistsByUser(ctx, userID)
}

func (f *fakeStore) PlaylistOwner(ctx context.Context, id string) (string, error) {
	if f.playlistOwner == nil {
		panic("unexpected PlaylistOwner")
	}
	return f.playlistOwner(ctx, id)
}

func (f *fakeStore) PlaylistWithOwner(ctx context.Context, id string) (store.Playlist, error) {
	if f.playlistWithOwner == nil {
		panic("unexpected PlaylistWithOwner")
	}
	return f.playlistWithOwner(ctx, id)
}

func (f *fakeStore) DeletePlaylist(ctx context.Context, id string) error {
	if f.deletePlaylist == nil {
		panic("unexpected DeletePlaylist")
	}
	return f.deletePlaylist(ctx, id)
}

func (f *fakeStore) CollaboratorIDs(ctx context.Context, playlistID string) ([]string, error) {
	if f.collaboratorIDs == nil {
		panic("unexpected CollaboratorIDs")
	}
	return f.collaboratorIDs(ctx, playlistID)
}

func (f *fakeStore) SongByID(ctx context.Context, id string) (store.Song, error) {
	if f.songByID == nil {
		panic("unexpected SongByID")
	}
	return f.songByID(ctx, id)
}

func (f *fakeStore) SongsInPlaylist(ctx context.Context, playlistID string) ([]store.Song, error) {
	if f.songsInPlaylist == nil {
		panic("unexpected SongsInPlaylist")
	}
	return f.songsInPlaylist(ctx, playlistID)
}

func (f *fakeStore) PlaylistHasSong(ctx context.Context, playlistID, songID string) (bool, error) {
	if f.playlistHasSong == nil {
		panic("unexpected PlaylistHasSong")
	}
	return f.playlistHasSong(ctx, playlistID, songID)
}

func (f *fakeStore) AddSongToPlaylist(ctx context.Context, playlistID, songID string) error {
	if f.addSongToPlaylist == nil {
		panic("unexpected AddSongToPlaylist")
	}
	return f.addSongToPlaylist(ctx, playlistID, songID)
}

func (f *fakeStore) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error {
	if f.removeSongFromPlaylist == nil {
		panic("unexpected RemoveSongFromPlaylist")
	}
	return f.removeSongFromPlaylist(ctx, playlistID, songID)
}

func (f *fakeStore) InsertActivity(ctx context.Context, playlistID, userID, songID, action string) error {
	if f.insertActivity == nil {
		panic("unexpected InsertActivity")
	}
	return f.insertActivity(ctx, playlistID, userID, songID, action)
}

func (f *fakeStore) ActivitiesByPlaylist(ctx context.Context, playlistID string) ([]store.Activity, error) {
	if f.activitiesByPlaylist == nil {
		panic("unexpected ActivitiesByPlaylist")
	}
	return f.activitiesByPlaylist(ctx, playlistID)
}

// fakeCache is an in-memory Cache; getErr and deleteErr simulate an
// unreachable cache on the respective operation.
type fakeCache struct {
	entries   map[string][]byte
	getErr    error
	deleteErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	value, hit := c.entries[key]
	return value, hit, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.entries, key)
	return nil
}

type resolverFunc func(ctx context.Context, playlistID, userID string) error

func (f resolverFunc) VerifyCollaborator(ctx context.Context, playlistID, userID string) error {
	return f(ctx, playlistID, userID)
}

func newTestService(st Store, c cache.Cache, resolver CollaborationResolver) *Service {
	if resolver == nil {
		resolver = resolverFunc(func(context.Context, string, string) error {
			return store.ErrCollaborationNotFound
		})
	}
	return New(st, c, resolver, zerolog.Nop())
}

func TestVerifyAccess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		owner        string
		ownerErr     error
		collaborator bool
		wantErr      error
	}{
		{name: "owner", owner: "user-1"},
		{name: "collaborator", owner: "user-2", collaborator: true},
		{name: "stranger", owner: "user-2", wantErr: ErrForbidden},
		{name: "missing playlist", ownerErr: store.ErrPlaylistNotFound, wantErr: store.ErrPlaylistNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolverCalled := false
			st := &fakeStore{
				playlistOwner: func(ctx context.Context, id string) (string, error) {
					if tc.ownerErr != nil {
						return "", tc.ownerErr
					}
					return tc.owner, nil
				},
			}
			resolver := resolverFunc(func(ctx context.Context, playlistID, userID string) error {
				resolverCalled = true
				if tc.collaborator {
					return nil
				}
				return store.ErrCollaborationNotFound
			})

			svc := newTestService(st, newFakeCache(), resolver)
			err := svc.VerifyAccess(ctx, "playlist-1", "user-1")

			if tc.wantErr == nil && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			// A missing playlist is never reinterpreted as a permission issue.
			if errors.Is(tc.ownerErr, store.ErrPlaylistNotFound) && resolverCalled {
				t.Fatal("collaborator check consulted for a missing playlist")
			}
		})
	}
}

func TestListByUserCacheAside(t *testing.T) {
	ctx := context.Background()
	storeCalls := 0
	items := []store.Playlist{{ID: "playlist-1", Name: "Road Trip", Username: "alice"}}

	st := &fakeStore{
		playlistsByUser: func(ctx context.Context, userID string) ([]store.Playlist, error) {
			storeCalls++
			return items, nil
		},
	}
	svc := newTestService(st, newFakeCache(), nil)

	got, provenance, err := svc.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if provenance != FromStore {
		t.Fatalf("first read: expected provenance %q, got %q", FromStore, provenance)
	}
	if len(got) != 1 || got[0].Name != "Road Trip" {
		t.Fatalf("unexpected playlists: %#v", got)
	}

	got, provenance, err = svc.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser (cached): %v", err)
	}
	if provenance != FromCache {
		t.Fatalf("second read: expected provenance %q, got %q", FromCache, provenance)
	}
	if len(got) != 1 || got[0].Name != "Road Trip" {
		t.Fatalf("cached playlists differ: %#v", got)
	}
	if storeCalls != 1 {
		t.Fatalf("expected 1 store read, got %d", storeCalls)
	}
}

func TestCacheFailureDegradesToStore(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		playlistsByUser: func(ctx context.Context, userID string) ([]store.Playlist, error) {
			return []store.Playlist{{ID: "playlist-1", Name: "Road Trip"}}, nil
		},
	}
	c := newFakeCache()
	c.getErr = errors.New("connection refused")

	svc := newTestService(st, c, nil)

	got, provenance, err := svc.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser with broken cache: %v", err)
	}
	if provenance != FromStore || len(got) != 1 {
		t.Fatalf("expected store fallback, got provenance=%q items=%#v", provenance, got)
	}
}

func TestAddInvalidatesOwnerKey(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		createPlaylist: func(ctx context.Context, id, name, owner string) error { return nil },
	}
	c := newFakeCache()
	c.entries[cache.KeyUserPlaylists("user-1")] = []byte(`[]`)

	svc := newTestService(st, c, nil)

	id, err := svc.Add(ctx, "Road Trip", "user-1")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty playlist id")
	}
	if _, hit := c.entries[cache.KeyUserPlaylists("user-1")]; hit {
		t.Fatal("owner playlists key still cached after Add")
	}
}

func TestDeleteInvalidatesAllKeys(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		playlistOwner: func(ctx context.Context, id string) (string, error) { return "user-1", nil },
		collaboratorIDs: func(ctx context.Context, playlistID string) ([]string, error) {
			return []string{"user-2", "user-3"}, nil
		},
		deletePlaylist: func(ctx context.Context, id string) error { return nil },
	}
	c := newFakeCache()
	c.entries[cache.KeyUserPlaylists("user-1")] = []byte(`[]`)
	c.entries[cache.KeyUserPlaylists("user-2")] = []byte(`[]`)
	c.entries[cache.KeyUserPlaylists("user-3")] = []byte(`[]`)
	c.entries[cache.KeyPlaylistSongs("playlist-1")] = []byte(`{}`)
	c.entries[cache.KeyPlaylistActivity("playlist-1")] = []byte(`[]`)

	svc := newTestService(st, c, nil)

	if err := svc.Delete(ctx, "playlist-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(c.entries) != 0 {
		t.Fatalf("expected all keys invalidated, still cached: %v", c.entries)
	}
}

func TestCorruptCacheEntryFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	storeCalls := 0
	st := &fakeStore{
		playlistsByUser: func(ctx context.Context, userID string) ([]store.Playlist, error) {
			storeCalls++
			return []store.Playlist{{ID: "playlist-1", Name: "Road Trip", Username: "alice"}}, nil
		},
	}
	c := newFakeCache()
	c.entries[cache.KeyUserPlaylists("user-1")] = []byte(`{not json`)

	svc := newTestService(st, c, nil)

	got, provenance, err := svc.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser with corrupt entry: %v", err)
	}
	if provenance != FromStore || len(got) != 1 {
		t.Fatalf("expected store fallback, got provenance=%q items=%#v", provenance, got)
	}

	// The store read replaces the corrupt entry, so the next read hits.
	got, provenance, err = svc.ListByUser(ctx, "user-1")
	if err != nil || provenance != FromCache {
		t.Fatalf("read after repopulation: err=%v provenance=%q", err, provenance)
	}
	if storeCalls != 1 || len(got) != 1 {
		t.Fatalf("expected 1 store read and cached items, got calls=%d items=%#v", storeCalls, got)
	}
}

func TestInvalidationFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		createPlaylist: func(ctx context.Context, id, name, owner string) error { return nil },
	}
	c := newFakeCache()
	c.deleteErr = errors.New("connection refused")

	svc := newTestService(st, c, nil)

	id, err := svc.Add(ctx, "Road Trip", "user-1")
	if err != nil {
		t.Fatalf("Add with failing invalidation: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty playlist id")
	}
}

func TestAddSongRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	inserted := false
	st := &fakeStore{
		songByID: func(ctx context.Context, id string) (store.Song, error) {
			return store.Song{ID: id}, nil
		},
		playlistHasSong: func(ctx context.Context, playlistID, songID string) (bool, error) {
			return true, nil
		},
		addSongToPlaylist: func(ctx context.Context, playlistID, songID string) error {
			inserted = true
			return nil
		},
	}
	svc := newTestService(st, newFakeCache(), nil)

	err := svc.AddSong(ctx, "playlist-1", "song-1")
	if !errors.Is(err, store.ErrDuplicateSong) {
		t.Fatalf("expected ErrDuplicateSong, got %v", err)
	}
	if inserted {
		t.Fatal("duplicate song was inserted anyway")
	}
}

func TestAddSongUnknownSong(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		songByID: func(ctx context.Context, id string) (store.Song, error) {
			return store.Song{}, store.ErrSongNotFound
		},
	}
	svc := newTestService(st, newFakeCache(), nil)

	if err := svc.AddSong(ctx, "playlist-1", "song-missing"); !errors.Is(err, store.ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestAddSongInvalidatesSongsKey(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		songByID: func(ctx context.Context, id string) (store.Song, error) {
			return store.Song{ID: id}, nil
		},
		playlistHasSong: func(ctx context.Context, playlistID, songID string) (bool, error) {
			return false, nil
		},
		addSongToPlaylist: func(ctx context.Context, playlistID, songID string) error { return nil },
	}
	c := newFakeCache()
	c.entries[cache.KeyPlaylistSongs("playlist-1")] = []byte(`{}`)

	svc := newTestService(st, c, nil)

	if err := svc.AddSong(ctx, "playlist-1", "song-1"); err != nil {
		t.Fatalf("AddSong: %v", err)
	}
	if _, hit := c.entries[cache.KeyPlaylistSongs("playlist-1")]; hit {
		t.Fatal("songs key still cached after AddSong")
	}
}

func TestSongsNotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		playlistWithOwner: func(ctx context.Context, id string) (store.Playlist, error) {
			return store.Playlist{}, store.ErrPlaylistNotFound
		},
	}
	c := newFakeCache()
	svc := newTestService(st, c, nil)

	_, _, err := svc.Songs(ctx, "playlist-missing")
	if !errors.Is(err, store.ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
	if len(c.entries) != 0 {
		t.Fatalf("negative result was cached: %v", c.entries)
	}
}

func TestSongsCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	storeCalls := 0
	st := &fakeStore{
		playlistWithOwner: func(ctx context.Context, id string) (store.Playlist, error) {
			storeCalls++
			return store.Playlist{ID: id, Name: "Road Trip", Username: "alice"}, nil
		},
		songsInPlaylist: func(ctx context.Context, playlistID string) ([]store.Song, error) {
			return []store.Song{{ID: "song-1", Title: "Life on Mars?", Performer: "David Bowie"}}, nil
		},
	}
	svc := newTestService(st, newFakeCache(), nil)

	first, provenance, err := svc.Songs(ctx, "playlist-1")
	if err != nil || provenance != FromStore {
		t.Fatalf("first read: err=%v provenance=%q", err, provenance)
	}

	second, provenance, err := svc.Songs(ctx, "playlist-1")
	if err != nil || provenance != FromCache {
		t.Fatalf("second read: err=%v provenance=%q", err, provenance)
	}
	if storeCalls != 1 {
		t.Fatalf("expected 1 store read, got %d", storeCalls)
	}
	if len(second.Songs) != 1 || second.Songs[0].Title != first.Songs[0].Title {
		t.Fatalf("cached playlist differs: %#v vs %#v", second, first)
	}
}

func TestRemoveSongInvalidatesSongsKey(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		removeSongFromPlaylist: func(ctx context.Context, playlistID, songID string) error { return nil },
	}
	c := newFakeCache()
	c.entries[cache.KeyPlaylistSongs("playlist-1")] = []byte(`{}`)

	svc := newTestService(st, c, nil)

	if err := svc.RemoveSong(ctx, "playlist-1", "song-1"); err != nil {
		t.Fatalf("RemoveSong: %v", err)
	}
	if _, hit := c.entries[cache.KeyPlaylistSongs("playlist-1")]; hit {
		t.Fatal("songs key still cached after RemoveSong")
	}
}

func TestRecordActivityInvalidatesActivityKey(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		insertActivity: func(ctx context.Context, playlistID, userID, songID, action string) error {
			return nil
		},
	}
	c := newFakeCache()
	c.entries[cache.KeyPlaylistActivity("playlist-1")] = []byte(`[]`)

	svc := newTestService(st, c, nil)

	if err := svc.RecordActivity(ctx, "playlist-1", "user-1", "song-1", ActionAdd); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if _, hit := c.entries[cache.KeyPlaylistActivity("playlist-1")]; hit {
		t.Fatal("activity key still cached after RecordActivity")
	}
}

func TestRecordActivityPropagatesInsertFailure(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		insertActivity: func(ctx context.Context, playlistID, userID, songID, action string) error {
			return store.ErrNothingInserted
		},
	}
	svc := newTestService(st, newFakeCache(), nil)

	err := svc.RecordActivity(ctx, "playlist-1", "user-1", "song-1", ActionDelete)
	if !errors.Is(err, store.ErrNothingInserted) {
		t.Fatalf("expected ErrNothingInserted, got %v", err)
	}
}

func TestActivitiesRequireExistingPlaylist(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		playlistOwner: func(ctx context.Context, id string) (string, error) {
			return "", store.ErrPlaylistNotFound
		},
	}
	svc := newTestService(st, newFakeCache(), nil)

	_, _, err := svc.Activities(ctx, "playlist-missing")
	if !errors.Is(err, store.ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestActivitiesCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	first := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	trail := []store.Activity{
		{Username: "alice", Title: "Life on Mars?", Action: ActionAdd, Time: first},
		{Username: "alice", Title: "Life on Mars?", Action: ActionDelete, Time: first.Add(time.Minute)},
	}
	storeCalls := 0
	st := &fakeStore{
		playlistOwner: func(ctx context.Context, id string) (string, error) { return "user-1", nil },
		activitiesByPlaylist: func(ctx context.Context, playlistID string) ([]store.Activity, error) {
			storeCalls++
			return trail, nil
		},
	}
	svc := newTestService(st, newFakeCache(), nil)

	got, provenance, err := svc.Activities(ctx, "playlist-1")
	if err != nil || provenance != FromStore {
		t.Fatalf("first read: err=%v provenance=%q", err, provenance)
	}
	if len(got) != 2 || got[0].Action != ActionAdd || got[1].Action != ActionDelete {
		t.Fatalf("unexpected trail: %#v", got)
	}

	got, provenance, err = svc.Activities(ctx, "playlist-1")
	if err != nil || provenance != FromCache {
		t.Fatalf("second read: err=%v provenance=%q", err, provenance)
	}
	if storeCalls != 1 {
		t.Fatalf("expected 1 store read, got %d", storeCalls)
	}
	if !got[0].Time.Equal(first) || got[1].Time.Before(got[0].Time) {
		t.Fatalf("cached trail out of order: %#v", got)
	}
}
