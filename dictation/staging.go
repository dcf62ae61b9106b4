package dictation

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"limbo/encoder"
)

// stager writes chunks of one session to uniquely named temp files.
type stager struct {
	dir     string
	session string
	format  encoder.Format
}

func (s stager) name(seq int) string {
	return fmt.Sprintf("limbo_%s_%d_%s%s", shortID(s.session), seq, shortID(uuid.NewString()), s.format.Ext())
}

func (s stager) write(seq int, samples []float32) (string, error) {
	dir := s.dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, s.name(seq))
	if err := encoder.WriteFile(path, samples, s.format); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStaging, err)
	}
	return path, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
