package code_context

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/zeebo/xxh3"
)

// computeFingerprint produces a cheap, non-cryptographic staleness signature
// for a workspace: file count + latest modification time + root path hash.
// It stats every non-ignored file but never reads content, so it is safe to
// run on every cache lookup.
func computeFingerprint(rootDir string, ign *ignore.GitIgnore, maxFiles int) (uint64, error) {
	var (
		fileCount int
		latestMod time.Time
	)

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			return relErr
		}
		relPath = strings.ReplaceAll(relPath, "\\", "/")
		if relPath == "." {
			return nil
		}

		if ign.MatchesPath(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			return nil // file vanished mid-walk; not a staleness signal
		}
		fileCount++
		if info.ModTime().After(latestMod) {
			latestMod = info.ModTime()
		}
		if maxFiles > 0 && fileCount > maxFiles {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	signature := fmt.Sprintf("%s|%d|%d", rootDir, fileCount, latestMod.UnixNano())
	return xxh3.HashString(signature), nil
}
