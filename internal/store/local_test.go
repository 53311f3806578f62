package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/model"
)

type recordingSink struct {
	names []string
	err   error
}

func (s *recordingSink) Upload(ctx context.Context, name string, data []byte) error {
	s.names = append(s.names, name)
	return s.err
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestLocalStoreLoadMissingFile(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "data", "glossary.csv"))
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Exists)
	assert.Empty(t, snap.Records)
}

func TestLocalStoreSaveSortsAndBacksUp(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "glossary.csv")
	sink := &recordingSink{}
	s := NewLocalStore(path, WithClock(fixedClock(1700000000000)), WithBackupSink(sink))

	_, err := s.Save(ctx, []model.Record{
		{Letter: "B", Term: "Bug", Definition: "Defect"},
		{Letter: "A", Term: "API", Definition: "Interface"},
	}, "", Change{Action: model.ActionUpload})
	require.NoError(t, err)
	assert.Empty(t, sink.names, "first save has nothing to back up")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, csvcodec.Header+"\n"+
		`A,"API","Interface",`+"\n"+
		`B,"Bug","Defect",`+"\n", string(data))

	rev, err := s.Save(ctx, []model.Record{{Letter: "C", Term: "CSS", Definition: "Style"}}, "", Change{})
	require.NoError(t, err)

	backup, err := os.ReadFile(path + ".backup-1700000000000")
	require.NoError(t, err)
	assert.Equal(t, string(data), string(backup))
	assert.Equal(t, []string{"glossary.csv.backup-1700000000000"}, sink.names)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Equal(t, rev, snap.Revision)
	assert.Equal(t, []model.Record{{Letter: "C", Term: "CSS", Definition: "Style"}}, snap.Records)
}

func TestLocalStoreSameMillisecondBackupsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "glossary.csv")
	s := NewLocalStore(path, WithClock(fixedClock(1700000000000)))

	for _, term := range []string{"API", "Bug", "CSS", "DOM"} {
		_, err := s.Save(ctx, []model.Record{{Letter: model.LetterFor(term), Term: term, Definition: "x"}}, "", Change{})
		require.NoError(t, err)
	}

	backups, err := ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, path+".backup-1700000000000-2", backups[0].Path, "newest first")
	assert.Equal(t, path+".backup-1700000000000-1", backups[1].Path)
	assert.Equal(t, path+".backup-1700000000000", backups[2].Path)

	first, err := os.ReadFile(backups[2].Path)
	require.NoError(t, err)
	assert.Contains(t, string(first), `"API"`)
	newest, err := os.ReadFile(backups[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(newest), `"CSS"`)
}

func TestLocalStoreNewFileIsWorldReadable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "glossary.csv")
	s := NewLocalStore(path)

	_, err := s.Save(ctx, []model.Record{{Letter: "A", Term: "API", Definition: "x"}}, "", Change{})
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, os.Chmod(path, 0o640))
	_, err = s.Save(ctx, []model.Record{{Letter: "B", Term: "Bug", Definition: "y"}}, "", Change{})
	require.NoError(t, err)
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm(), "an existing file keeps its mode")
}

func TestListBackupsIgnoresForeignSuffixes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.csv")
	for _, suffix := range []string{"1700000000000", "1700000000000-3", "1700000000000-x", "1700000000000-0", "notes"} {
		require.NoError(t, os.WriteFile(path+".backup-"+suffix, []byte("x"), 0o644))
	}

	backups, err := ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, path+".backup-1700000000000-3", backups[0].Path)
}

func TestLocalStoreMirrorFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "glossary.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvcodec.Header+"\n"), 0o644))

	s := NewLocalStore(path, WithBackupSink(&recordingSink{err: errors.New("bucket gone")}))
	_, err := s.Save(ctx, []model.Record{{Letter: "A", Term: "A", Definition: "a"}}, "", Change{})
	assert.NoError(t, err)
}

func TestLocalStoreKeepsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.csv")
	doc := csvcodec.Header + "\n" + `A,"API","Interface",` + "\n" + `B,"Bad` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	snap, err := NewLocalStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)
	assert.Len(t, snap.Errors, 1)
}

func TestPruneBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glossary.csv")
	now := time.UnixMilli(10 * 24 * 3600 * 1000)
	day := 24 * time.Hour

	for _, age := range []time.Duration{0, day, 2 * day, 3 * day, 8 * day} {
		require.NoError(t, os.WriteFile(BackupPath(path, now.Add(-age)), []byte("x"), 0o644))
	}
	require.NoError(t, os.WriteFile(path+".backup-notanumber", []byte("x"), 0o644))

	backups, err := ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 5)
	assert.True(t, backups[0].CreatedAt.Equal(now))

	removed, err := PruneBackups(path, 3, 7*day, now)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	backups, err = ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 3)

	_, err = os.Stat(path + ".backup-notanumber")
	assert.NoError(t, err)
}

func TestPruneBackupsKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.csv")
	now := time.UnixMilli(100 * 24 * 3600 * 1000)
	require.NoError(t, os.WriteFile(BackupPath(path, now.Add(-60*24*time.Hour)), []byte("x"), 0o644))

	removed, err := PruneBackups(path, 0, 24*time.Hour, now)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
