// Package workspace provisions the per-node working directory. Each node gets
// a fresh directory under the OS temp dir; the daemon keeps its chain state
// and control socket in there, and the whole tree is discarded on teardown.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/xid"

	"github.com/RCasatta/lightningd/pkg/logging"
)

// Workspace is an exclusively owned scratch directory. It is never shared
// between nodes and is deleted exactly once, no matter how many times Remove
// is invoked.
type Workspace struct {
	path string

	removeOnce sync.Once
	removeErr  error
}

// New creates a uniquely named workspace directory.
func New(prefix string) (*Workspace, error) {
	// xid keeps the path short; unix socket paths inside the workspace must
	// stay under the sockaddr_un limit.
	path := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s", prefix, xid.New()))
	if err := os.Mkdir(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	logging.S().Debugw("created workspace", "path", path)
	return &Workspace{path: path}, nil
}

// Path returns the workspace root directory.
func (w *Workspace) Path() string {
	return w.path
}

// Remove deletes the workspace tree. Calling it again is a no-op returning
// the outcome of the first call.
func (w *Workspace) Remove() error {
	w.removeOnce.Do(func() {
		w.removeErr = os.RemoveAll(w.path)
	})
	return w.removeErr
}
