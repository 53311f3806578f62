package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glossary/api/internal/config"
	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/model"
	"github.com/glossary/api/internal/store"
)

const seedCSV = csvcodec.Header + "\n" +
	`A,"API","interface",API` + "\n" +
	`C,"CSS","styles",` + "\n"

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "glossary.csv")
	require.NoError(t, os.WriteFile(path, []byte(seedCSV), 0o644))

	logger = zap.NewNop()
	cfg = &config.Config{
		StoreBackend:     config.BackendLocal,
		DataPath:         path,
		UploadErrorLimit: 10,
		Backup:           config.BackupConfig{Keep: 20},
	}
	importDryRun = false
	exportOutput = ""
	exportFormat = "csv"
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestValidate(t *testing.T) {
	path := setup(t)

	out, err := run(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Records: 2")
	assert.Contains(t, out, "OK")

	bad := writeFile(t, t.TempDir(), "bad.csv", seedCSV+`B,"Apple","misfiled",`+"\n"+`D,"DOM",`+"\n")
	out, err = run(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, "Parse errors: 1")
	assert.Contains(t, out, "[letter_mismatch] Apple")
}

func TestImport(t *testing.T) {
	path := setup(t)
	incoming := writeFile(t, t.TempDir(), "in.csv", csvcodec.Header+"\n"+`A,"api","updated",`+"\n"+`D,"DOM","tree",`+"\n")

	out, err := run(t, "import", "--dry-run", incoming)
	require.NoError(t, err)
	assert.Contains(t, out, "Added: 1")
	assert.Contains(t, out, "Updated: 1")
	assert.Contains(t, out, "Dry run")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, seedCSV, string(data))

	importDryRun = false
	_, err = run(t, "import", "--dry-run=false", incoming)
	require.NoError(t, err)

	snap, err := store.NewLocalStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Records, 3)
	assert.Equal(t, "updated", snap.Records[0].Definition)
}

func TestExportJSON(t *testing.T) {
	setup(t)
	dest := filepath.Join(t.TempDir(), "out.json")

	_, err := run(t, "export", "--format", "json", "-o", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var records []model.Record
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 2)

	_, err = run(t, "export", "--format", "xml", "-o", "")
	assert.Error(t, err)
}

func TestExportCSVToStdout(t *testing.T) {
	setup(t)
	out, err := run(t, "export", "--format", "csv", "-o", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, csvcodec.Header))
}

func TestPruneBackups(t *testing.T) {
	path := setup(t)
	now := time.Now()
	for i := 1; i <= 3; i++ {
		require.NoError(t, os.WriteFile(store.BackupPath(path, now.Add(-time.Duration(i)*time.Minute)), []byte("x"), 0o644))
	}

	out, err := run(t, "prune-backups", "--keep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 2 backups")

	left, err := store.ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
