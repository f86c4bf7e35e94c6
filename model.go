package boxblur

import (
	"fmt"
	"strings"
)

// Model selects how a blur run is parallelized.
type Model int

const (
	// ModelShared runs goroutines over one shared double buffer with a
	// barrier between passes.
	ModelShared Model = iota

	// ModelDistributed runs ranks with private row-blocks that exchange halo
	// rows by message passing, with a scatter before and a gather after.
	ModelDistributed
)

// String returns the model name.
func (m Model) String() string {
	switch m {
	case ModelShared:
		return "shared"
	case ModelDistributed:
		return "distributed"
	default:
		return "unknown"
	}
}

// ParseModel converts a model name as printed by String back into a Model.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shared", "shared-memory", "threads":
		return ModelShared, nil
	case "distributed", "distributed-memory", "mpi":
		return ModelDistributed, nil
	default:
		return 0, fmt.Errorf("%w: unknown model %q", ErrInvalidConfig, s)
	}
}
