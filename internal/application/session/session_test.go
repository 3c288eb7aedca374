package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rudiwatch/internal/application"
	"rudiwatch/internal/domain"
	"rudiwatch/internal/ports"
)

type fakeSource struct {
	model *domain.RuleModel
	err   error
}

func (f *fakeSource) Load(context.Context) (*domain.RuleModel, error) {
	return f.model, f.err
}

type fakeStore struct {
	files map[string]*domain.MemoryNode
}

func (f *fakeStore) Save(root *domain.MemoryNode, path string) error {
	f.files[path] = root.Clone()
	return nil
}

func (f *fakeStore) Load(path string) (*domain.MemoryNode, error) {
	m, ok := f.files[path]
	if !ok {
		return nil, &application.IOError{Op: "open", Path: path, Err: application.ErrNotFound}
	}
	return m.Clone(), nil
}

func (f *fakeStore) ListRecent(dir string, limit int) ([]domain.SnapshotEntry, error) {
	var out []domain.SnapshotEntry
	for p := range f.files {
		out = append(out, domain.SnapshotEntry{Path: p})
	}
	return out, nil
}

type recorder struct {
	rebuilds int
	usage    map[string]domain.Usage
}

func (r *recorder) RebuildCompleted(*domain.Tree) { r.rebuilds++ }
func (r *recorder) FileUsageChanged(path string, u domain.Usage) {
	r.usage[path] = u
}

type fakeIndex struct {
	rows map[string]domain.Usage
}

func (f *fakeIndex) Close() error                        { return nil }
func (f *fakeIndex) List() ([]domain.UsageChange, error) { return nil, nil }
func (f *fakeIndex) BeginTx() (ports.UsageTx, error) {
	return &fakeTx{idx: f, staged: map[string]*domain.Usage{}}, nil
}

type fakeTx struct {
	idx    *fakeIndex
	staged map[string]*domain.Usage
}

func (t *fakeTx) Upsert(c domain.UsageChange) error {
	u := c.Usage
	t.staged[c.Path] = &u
	return nil
}

func (t *fakeTx) Delete(path string) error {
	t.staged[path] = nil
	return nil
}

func (t *fakeTx) Commit() error {
	for p, u := range t.staged {
		if u == nil {
			delete(t.idx.rows, p)
		} else {
			t.idx.rows[p] = *u
		}
	}
	return nil
}

func (t *fakeTx) Rollback() error { return nil }

func model(rules ...string) *domain.RuleModel {
	root := &domain.Import{Name: "main", File: "/p/main.rudi"}
	for _, r := range rules {
		root.Nodes = append(root.Nodes, &domain.Rule{Name: r})
	}
	return &domain.RuleModel{
		Root:        root,
		MainFile:    "/p/main.rudi",
		WrapperFile: "/p/wrapper.rudi",
		ImportFiles: []string{"/p/sub.rudi"},
	}
}

func newSession(src *fakeSource) (*Session, *recorder, *fakeStore, *fakeIndex) {
	rec := &recorder{usage: map[string]domain.Usage{}}
	store := &fakeStore{files: map[string]*domain.MemoryNode{}}
	idx := &fakeIndex{rows: map[string]domain.Usage{}}
	s := New(Project{Name: "demo", SnapshotDir: "/p/snaps", RecentLimit: 10}, src, store,
		WithNotifier(rec), WithUsageIndex(idx))
	return s, rec, store, idx
}

func path(s string) domain.IdentityPath { return domain.ParsePath(s) }

func TestSession_RebuildCarriesAttributes(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{model: model("A", "B")}
	s, rec, _, _ := newSession(src)

	require.NoError(t, s.Rebuild(ctx))
	require.NoError(t, s.SetLevel(path("main/B"), domain.LevelAlways))
	require.NoError(t, s.SetExpanded(path("main"), false))

	src.model = model("A")
	require.NoError(t, s.Rebuild(ctx))
	assert.False(t, s.Tree().Node(s.Tree().Root()).Expanded)
	_, ok := s.Tree().Find(path("main/B"))
	assert.False(t, ok)

	src.model = model("A", "B")
	require.NoError(t, s.Rebuild(ctx))
	id, ok := s.Tree().Find(path("main/B"))
	require.True(t, ok)
	assert.Equal(t, domain.LevelAlways, s.Tree().Node(id).Level)
	assert.Equal(t, 3, rec.rebuilds)
}

func TestSession_FailedRebuildKeepsTree(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{model: model("A")}
	s, _, _, _ := newSession(src)
	require.NoError(t, s.Rebuild(ctx))
	before := s.Tree()

	src.model = &domain.RuleModel{Root: &domain.Import{Name: "main", Nodes: []domain.StructuralNode{nil}}}
	err := s.Rebuild(ctx)
	assert.ErrorIs(t, err, application.ErrStructuralInconsistency)
	assert.Same(t, before, s.Tree())

	src.err = errors.New("compiler crashed")
	assert.Error(t, s.Rebuild(ctx))
	assert.Same(t, before, s.Tree())
}

func TestSession_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s, rec, store, _ := newSession(&fakeSource{model: model("A", "B")})
	require.NoError(t, s.Rebuild(ctx))
	require.NoError(t, s.SetLevel(path("main/A"), domain.LevelIfTrue))

	p, err := s.Save("session1.snap")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/p/snaps", "session1.snap"), p)
	assert.Contains(t, store.files, p)

	require.NoError(t, s.SetLevel(path("main/A"), domain.LevelAlways))
	require.NoError(t, s.Load(p))

	id, _ := s.Tree().Find(path("main/A"))
	assert.Equal(t, domain.LevelIfTrue, s.Tree().Node(id).Level)
	assert.Equal(t, 2, rec.rebuilds)

	recent, err := s.RecentSnapshots()
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestSession_LoadFailureIsNonDestructive(t *testing.T) {
	s, _, _, _ := newSession(&fakeSource{model: model("A")})
	require.NoError(t, s.Rebuild(context.Background()))
	require.NoError(t, s.SetLevel(path("main/A"), domain.LevelAlways))
	before := s.Memory().Clone()

	err := s.Load("/p/snaps/missing.snap")
	assert.ErrorIs(t, err, application.ErrNotFound)
	assert.True(t, before.Equal(s.Memory()))
}

func TestSession_HandleEventTracksUsage(t *testing.T) {
	ctx := context.Background()
	s, rec, _, idx := newSession(&fakeSource{model: model("A")})

	for _, ev := range []ports.FileEvent{
		{Kind: ports.FileAdded, Path: "/p/main.rudi"},
		{Kind: ports.FileAdded, Path: "/p/sub.rudi"},
		{Kind: ports.FileAdded, Path: "/p/old.rudi"},
		{Kind: ports.FileAdded, Path: "/p/dir", IsDir: true},
	} {
		require.NoError(t, s.HandleEvent(ctx, ev))
	}

	assert.Equal(t, domain.UsageMainFile, rec.usage["/p/main.rudi"])
	assert.Equal(t, domain.UsageUsed, rec.usage["/p/sub.rudi"])
	assert.Equal(t, domain.UsageUnused, rec.usage["/p/old.rudi"])
	assert.Equal(t, domain.UsageFolder, rec.usage["/p/dir"])
	assert.Equal(t, domain.UsageUnused, idx.rows["/p/old.rudi"])

	require.NoError(t, s.HandleEvent(ctx, ports.FileEvent{Kind: ports.FileRemoved, Path: "/p/old.rudi"}))
	assert.Equal(t, domain.UsageUnknown, rec.usage["/p/old.rudi"])
	assert.NotContains(t, idx.rows, "/p/old.rudi")
	assert.Len(t, s.Usage(), 3)

	boom := errors.New("root vanished")
	err := s.HandleEvent(ctx, ports.FileEvent{Kind: ports.WatchFailed, Path: "/p", Err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestSession_NodeLookupErrors(t *testing.T) {
	s, _, _, _ := newSession(&fakeSource{model: model("A")})

	assert.ErrorIs(t, s.SetLevel(path("main/A"), domain.LevelAlways), application.ErrNoRuleModel)
	assert.Nil(t, s.Memory())

	require.NoError(t, s.Rebuild(context.Background()))
	assert.ErrorIs(t, s.SetExpanded(path("main/Z"), true), application.ErrNotFound)
	assert.Error(t, s.SetLevel(path("main/A"), domain.LoggingLevel(42)))
}

func TestSession_SetSubtreeLevel(t *testing.T) {
	m := model("A")
	m.Root.Nodes = append(m.Root.Nodes, &domain.Import{Name: "Sub", Nodes: []domain.StructuralNode{
		&domain.Rule{Name: "c"},
		&domain.Rule{Name: "d", Level: domain.LevelIfTrue},
	}})
	s, _, _, _ := newSession(&fakeSource{model: m})
	require.NoError(t, s.Rebuild(context.Background()))

	require.NoError(t, s.SetSubtreeLevel(path("main/Sub"), domain.LevelAlways))

	tree := s.Tree()
	sub, _ := tree.Find(path("main/Sub"))
	assert.Equal(t, domain.LevelAlways, domain.Aggregate(tree, sub))
	assert.True(t, tree.Node(sub).HasLevel)
	a, _ := tree.Find(path("main/A"))
	assert.Equal(t, domain.LevelNever, tree.Node(a).Level)

	assert.Error(t, s.SetSubtreeLevel(path("main/Sub"), domain.LoggingLevel(5)))
}

func TestSession_PartlyIsNotARuleLevel(t *testing.T) {
	m := model("A")
	m.Root.Nodes = append(m.Root.Nodes, &domain.Import{Name: "Sub", Nodes: []domain.StructuralNode{
		&domain.Rule{Name: "c", Level: domain.LevelIfTrue},
	}})
	s, _, _, _ := newSession(&fakeSource{model: m})
	require.NoError(t, s.Rebuild(context.Background()))

	var verr *application.ValidationError
	require.ErrorAs(t, s.SetLevel(path("main/A"), domain.LevelPartly), &verr)
	assert.Equal(t, "level", verr.Field)
	assert.ErrorAs(t, s.SetSubtreeLevel(path("main/Sub"), domain.LevelPartly), &verr)

	tree := s.Tree()
	a, _ := tree.Find(path("main/A"))
	assert.Equal(t, domain.LevelNever, tree.Node(a).Level)
	c, _ := tree.Find(path("main/Sub/c"))
	assert.Equal(t, domain.LevelIfTrue, tree.Node(c).Level)
	mem, ok := s.Memory().Lookup(path("main/Sub/c"))
	require.True(t, ok)
	assert.Equal(t, domain.LevelIfTrue, mem.Record.Level)
}
