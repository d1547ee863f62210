package batch

import (
	"sync"

	"github.com/kbukum/openbatch/errors"
)

// pathLocks records the destinations held by open writers in this process.
// It holds paths only; all per-file state lives in the Writer.
type pathLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var locks = &pathLocks{held: make(map[string]struct{})}

func (l *pathLocks) acquire(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[path]; ok {
		return errors.AlreadyExists("writer session for " + path).WithDetail("path", path)
	}
	l.held[path] = struct{}{}
	return nil
}

func (l *pathLocks) release(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, path)
}
