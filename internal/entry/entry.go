package entry

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is an immutable snapshot of one filesystem node. A new listing
// produces entirely new entries; nothing mutates them in place.
type Entry struct {
	Path      string
	Name      string
	IsDir     bool
	IsSymlink bool
	Size      int64
	ModTime   time.Time
	Ext       string // lowercased, without the leading dot
}

// FromPath builds an Entry from link metadata. Size and ModTime come from
// Lstat so a symlink reports itself, not its target; the target is only
// consulted to classify symlinked directories so they stay enterable.
func FromPath(path string) (Entry, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		Path:      path,
		Name:      filepath.Base(path),
		IsDir:     info.IsDir(),
		IsSymlink: info.Mode()&os.ModeSymlink != 0,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Ext:       strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
	}

	if e.IsSymlink {
		if target, err := os.Stat(path); err == nil {
			e.IsDir = target.IsDir()
		}
	}
	return e, nil
}

// DisplayName returns the name with a symlink marker appended.
func (e Entry) DisplayName() string {
	if e.IsSymlink {
		return e.Name + " →"
	}
	return e.Name
}

// ReadDirectory enumerates the entries of path. Entries whose metadata
// cannot be read are skipped; the second return value counts them so the
// caller can surface the loss instead of hiding it. Runs only inside the
// I/O worker, never on the interactive goroutine.
func ReadDirectory(path string, showHidden bool) ([]Entry, int, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]Entry, 0, len(dirents))
	skipped := 0
	for _, d := range dirents {
		if !showHidden && strings.HasPrefix(d.Name(), ".") {
			continue
		}
		e, err := FromPath(filepath.Join(path, d.Name()))
		if err != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}
