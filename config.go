package ecs

import (
	"strings"

	"github.com/TheBitDrifter/table"
	"github.com/spf13/viper"
)

// Config holds process-wide configuration for the underlying table system.
// Kept from the teacher: dense tables accept event callbacks at
// construction time (see dense_table.go and sparse_relation.go), and those callbacks are the one
// piece of table-level configuration that genuinely needs to be global
// rather than threaded through every call, since the table package itself
// exposes it that way.
var Config tableConfig = tableConfig{}

type tableConfig struct {
	tableEvents table.TableEvents
}

// SetTableEvents configures the table event callbacks used by every
// archetype's dense table.
func (c *tableConfig) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

// AmbiguityPolicy controls what the scheduler does when it finds two
// conflicting systems with no ordering constraint between them.
type AmbiguityPolicy string

const (
	AmbiguityWarn  AmbiguityPolicy = "warn"
	AmbiguityError AmbiguityPolicy = "error"
)

// RuntimeConfig holds the environment-driven knobs named in spec SS6. The
// caller passes it explicitly to NewWorldBuilder (or NewWorld), and
// LoadRuntimeConfig builds one from the environment — nothing deeper in the
// scheduler or observer registry reads viper (or the environment) itself.
type RuntimeConfig struct {
	ObserverRecursionLimit int
	DefaultTableCapacity   int
	SchedulerAmbiguity     AmbiguityPolicy
}

// DefaultRuntimeConfig returns the spec-mandated defaults.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		ObserverRecursionLimit: 64,
		DefaultTableCapacity:   32,
		SchedulerAmbiguity:     AmbiguityWarn,
	}
}

// LoadRuntimeConfig reads ECS_OBSERVER_RECURSION_LIMIT, ECS_DEFAULT_TABLE_CAPACITY
// and ECS_SCHEDULER_AMBIGUITY from the environment via viper, following the
// same SetEnvPrefix/AutomaticEnv/SetDefault/BindEnv idiom the wider example
// pack uses for its services.
func LoadRuntimeConfig() RuntimeConfig {
	v := viper.New()
	v.SetEnvPrefix("ecs")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := DefaultRuntimeConfig()
	v.SetDefault("observer_recursion_limit", defaults.ObserverRecursionLimit)
	v.SetDefault("default_table_capacity", defaults.DefaultTableCapacity)
	v.SetDefault("scheduler_ambiguity", string(defaults.SchedulerAmbiguity))
	_ = v.BindEnv("observer_recursion_limit")
	_ = v.BindEnv("default_table_capacity")
	_ = v.BindEnv("scheduler_ambiguity")

	policy := AmbiguityPolicy(strings.ToLower(v.GetString("scheduler_ambiguity")))
	if policy != AmbiguityWarn && policy != AmbiguityError {
		policy = AmbiguityWarn
	}

	return RuntimeConfig{
		ObserverRecursionLimit: v.GetInt("observer_recursion_limit"),
		DefaultTableCapacity:   v.GetInt("default_table_capacity"),
		SchedulerAmbiguity:     policy,
	}
}
