// Package snowflake generates the per-run invocation ID attached to every
// log line for a watchdog run. Unlike a long-running server that needs a
// stable, coordinated machine ID across many instances, this tool runs one
// short-lived process per sandboxed command: a resolvable machine ID is
// nice for demultiplexing logs but never worth failing the run over.
package snowflake

import (
	"sync"
	"time"

	"github.com/sony/sonyflake/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	node     *sonyflake.Sonyflake
	nodeOnce sync.Once
)

// defaultStartTime anchors the ID's time component; it only needs to
// predate any real invocation, unlike a server's epoch which typically
// tracks its own launch date.
var defaultStartTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// newGenerator builds the generator, resolving the machine ID from v if
// given. Failure to resolve one falls back to 0 rather than panicking:
// invocation IDs are a debugging aid, not a correctness requirement.
func newGenerator(v *viper.Viper) *sonyflake.Sonyflake {
	settings := sonyflake.Settings{
		StartTime: defaultStartTime,
		MachineID: func() (int, error) {
			if v != nil && v.IsSet("snowflake.machine_id") {
				return v.GetInt("snowflake.machine_id"), nil
			}
			return 0, nil
		},
		CheckMachineID: func(int) bool { return true },
	}
	sf, err := sonyflake.New(settings)
	if err != nil {
		zap.L().Warn("snowflake: falling back to a zero invocation id", zap.Error(err))
		return nil
	}
	return sf
}

// Init resolves the generator once, from an optional tuning file. Safe to
// call multiple times; only the first call's viper value takes effect.
func Init(v *viper.Viper) {
	nodeOnce.Do(func() {
		node = newGenerator(v)
	})
}

// NextInvocationID returns a new k-sortable ID for this run. If the
// generator failed to initialize, it returns 0 rather than an error: the
// caller should log and move on, never abort a run over this.
func NextInvocationID() int64 {
	Init(nil)
	if node == nil {
		return 0
	}
	id, err := node.NextID()
	if err != nil {
		zap.L().Warn("snowflake: NextID failed, using 0", zap.Error(err))
		return 0
	}
	return id
}
