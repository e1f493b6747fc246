package ipc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxPipeNameLength is the longest accepted channel name.
const MaxPipeNameLength = 250

// NewPipeName returns a unique channel name. It is kept short because the
// Unix socket path, temp dir included, must fit in sun_path.
func NewPipeName() string {
	id := uuid.New()
	return fmt.Sprintf("corehost-%x", id[:8])
}

// ValidateName reports whether name can identify a channel.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("ipc: empty pipe name")
	case len(name) > MaxPipeNameLength:
		return fmt.Errorf("ipc: pipe name is %d characters, limit is %d", len(name), MaxPipeNameLength)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("ipc: pipe name contains NUL")
	}
	return nil
}
