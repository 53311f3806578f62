package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const backupMarker = ".backup-"

// Backup is one timestamped copy of the local glossary file.
type Backup struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
	seq       int
}

// BackupPath names the backup for path taken at t.
func BackupPath(path string, t time.Time) string {
	return fmt.Sprintf("%s%s%d", path, backupMarker, t.UnixMilli())
}

// writeBackup stores data under BackupPath, adding a -N suffix when a
// backup from the same millisecond already exists.
func writeBackup(path string, t time.Time, data []byte) (string, error) {
	base := BackupPath(path, t)
	name := base
	for seq := 1; ; seq++ {
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			name = fmt.Sprintf("%s-%d", base, seq)
			continue
		}
		if err != nil {
			return "", err
		}
		_, err = f.Write(data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return name, err
	}
}

// ListBackups returns the backups of path, newest first. Files whose suffix
// is not a millisecond timestamp with an optional -N counter are ignored.
func ListBackups(path string) ([]Backup, error) {
	matches, err := filepath.Glob(path + backupMarker + "*")
	if err != nil {
		return nil, err
	}

	var backups []Backup
	for _, m := range matches {
		suffix := strings.TrimPrefix(m, path+backupMarker)
		stamp, counter, hasCounter := strings.Cut(suffix, "-")
		ms, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			continue
		}
		seq := 0
		if hasCounter {
			if seq, err = strconv.Atoi(counter); err != nil || seq < 1 {
				continue
			}
		}
		backups = append(backups, Backup{Path: m, CreatedAt: time.UnixMilli(ms), seq: seq})
	}
	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.After(backups[j].CreatedAt)
		}
		return backups[i].seq > backups[j].seq
	})
	return backups, nil
}

// PruneBackups removes backups beyond the newest keep copies and backups
// older than maxAge. Zero disables the respective rule. The newest backup
// is never removed.
func PruneBackups(path string, keep int, maxAge time.Duration, now time.Time) ([]string, error) {
	backups, err := ListBackups(path)
	if err != nil {
		return nil, err
	}

	var removed []string
	for i, b := range backups {
		if i == 0 {
			continue
		}
		tooMany := keep > 0 && i >= keep
		tooOld := maxAge > 0 && now.Sub(b.CreatedAt) > maxAge
		if !tooMany && !tooOld {
			continue
		}
		if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", b.Path, err)
		}
		removed = append(removed, b.Path)
	}
	return removed, nil
}
