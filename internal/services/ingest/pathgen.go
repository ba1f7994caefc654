package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// pathResolver picks a storage path for an uploaded file. When another file
// already uses the same display name, it appends a short random suffix
// before the extension and retries a bounded number of times, checking both
// the filesystem and the path-uniqueness query. On exhaustion it falls back
// to a timestamp-derived suffix. The visible name field stays unchanged.
type pathResolver struct {
	store       Store
	uploadDir   string
	maxAttempts int
	// now and randSuffix are injection points for deterministic tests.
	now        func() time.Time
	randSuffix func() string
}

func newPathResolver(store Store, uploadDir string, maxAttempts int) *pathResolver {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &pathResolver{
		store:       store,
		uploadDir:   uploadDir,
		maxAttempts: maxAttempts,
		now:         time.Now,
		randSuffix:  func() string { return uuid.NewString()[:8] },
	}
}

type pathState int

const (
	stateGenerate pathState = iota
	stateCheck
	stateAccept
	stateFallback
)

// Resolve runs the Generate -> Check -> {Accept, Retry, Fallback} machine.
func (p *pathResolver) Resolve(name string) (string, error) {
	base := filepath.Join(p.uploadDir, filepath.Base(name))

	// A fresh name with a free path needs no suffixing.
	taken, err := p.store.NameTaken(name)
	if err != nil {
		return "", err
	}
	free, err := p.pathFree(base)
	if err != nil {
		return "", err
	}
	if !taken && free {
		return base, nil
	}

	var candidate string
	attempt := 0
	state := stateGenerate
	for {
		switch state {
		case stateGenerate:
			if attempt >= p.maxAttempts {
				state = stateFallback
				continue
			}
			candidate = suffixPath(base, p.randSuffix())
			attempt++
			state = stateCheck

		case stateCheck:
			free, err := p.pathFree(candidate)
			if err != nil {
				return "", err
			}
			if free {
				state = stateAccept
			} else {
				state = stateGenerate
			}

		case stateAccept:
			return candidate, nil

		case stateFallback:
			// Deterministic last resort derived from the clock.
			candidate = suffixPath(base, fmt.Sprintf("%d", p.now().UnixNano()))
			free, err := p.pathFree(candidate)
			if err != nil {
				return "", err
			}
			if !free {
				return "", ErrPathExhausted
			}
			return candidate, nil
		}
	}
}

// pathFree requires the candidate to be absent both on disk and in the
// files table.
func (p *pathResolver) pathFree(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	exists, err := p.store.LinkExists(path)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func suffixPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}
