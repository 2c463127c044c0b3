package weft

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timestampIDGenerator is the default IDGenerator: it combines a
// unix-millisecond timestamp with a random suffix, giving ids of the
// form "task-1700000000000-3f2a9b1c" that sort roughly by creation time
// while remaining globally unique.
type timestampIDGenerator struct{}

func (timestampIDGenerator) NewID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("task-%d-%s", time.Now().UnixMilli(), suffix)
}
