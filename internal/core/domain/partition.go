// internal/core/domain/partition.go
package domain

// Partition is a group of targets sharing one effective InvocationConfig.
// Each partition becomes exactly one tool process.
type Partition struct {
	Config  InvocationConfig
	Targets []Target
}

// Names returns the partition's target names.
func (p Partition) Names() []string {
	names := make([]string, len(p.Targets))
	for i, t := range p.Targets {
		names[i] = t.Name
	}
	return names
}

// PartitionTargets groups targets by their effective config. Partitions
// are ordered by the first target that produced them.
func PartitionTargets(goal Goal, targets []Target, base InvocationConfig) []Partition {
	var parts []Partition
	index := make(map[string]int)
	for _, t := range targets {
		cfg := t.Override(goal, base)
		key := cfg.Key()
		i, ok := index[key]
		if !ok {
			i = len(parts)
			index[key] = i
			parts = append(parts, Partition{Config: cfg})
		}
		parts[i].Targets = append(parts[i].Targets, t)
	}
	return parts
}
