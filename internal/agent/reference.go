package agent

import (
	"fmt"
	"os"
	"path/filepath"

	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
)

const referenceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// reference is a diff written to disk for an agent to read. Each invocation
// gets its own file so concurrent runs in one directory do not collide.
type reference struct {
	path string
	log  logrus.FieldLogger
}

// writeReference writes diff to a uniquely named file in dir.
func writeReference(dir, diff string, log logrus.FieldLogger) (*reference, error) {
	id, err := nanoid.Generate(referenceAlphabet, 12)
	if err != nil {
		return nil, fmt.Errorf("generating reference name: %w", err)
	}

	path := filepath.Join(dir, ".mrkt-diff-"+id+".md")
	if err := os.WriteFile(path, []byte(diff), 0600); err != nil {
		return nil, fmt.Errorf("writing diff reference: %w", err)
	}
	return &reference{path: path, log: log}, nil
}

// Name is the file name as the agent sees it from its working directory.
func (r *reference) Name() string {
	return filepath.Base(r.path)
}

// Remove deletes the file. Failures are logged and otherwise ignored.
func (r *reference) Remove() {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		logger(r.log).WithError(err).WithField("path", r.path).Warn("removing diff reference")
	}
}
