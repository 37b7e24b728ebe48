package resource

import (
	"fmt"
	"log/slog"

	"github.com/costpilot/costpilot/pkg/quantity"
)

// Policy selects how the aggregator treats a quantity string that does
// not parse.
type Policy string

const (
	// PolicyLenient counts the field as zero, logs it, and keeps
	// going. Suited to advisory sweeps over clusters that may carry
	// junk values.
	PolicyLenient Policy = "lenient"
	// PolicyStrict aborts on the first unparsable field. Suited to
	// validating manifests before they ship.
	PolicyStrict Policy = "strict"
)

// ParsePolicy validates a policy name from config or a request field.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown aggregation policy %q: must be %q or %q", s, PolicyLenient, PolicyStrict)
}

// Aggregation is the outcome of one aggregation pass. Skipped counts
// the fields dropped under the lenient policy; under the strict policy
// it is always zero because the pass fails instead of dropping. Nodes
// is set only by Capacity.
type Aggregation struct {
	Totals  Totals `json:"totals"`
	Skipped int    `json:"skippedFields"`
	Nodes   int    `json:"nodeCount,omitempty"`
}

// Aggregator sums request records into totals. It holds no mutable
// state, so one aggregator serves concurrent callers.
type Aggregator struct {
	policy Policy
	logger *slog.Logger
}

// NewAggregator builds an aggregator with the given skip policy. A nil
// logger falls back to slog.Default.
func NewAggregator(policy Policy, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{policy: policy, logger: logger}
}

// Policy reports the skip policy the aggregator was built with.
func (a *Aggregator) Policy() Policy { return a.policy }

// Aggregate sums the container requests of pods and the storage
// requests of claims. Duplicate claims (same namespace/name) are
// counted once. Under the strict policy the first unparsable field
// aborts with an error naming the record it came from.
func (a *Aggregator) Aggregate(pods []Pod, claims []Claim) (Aggregation, error) {
	var agg Aggregation

	for _, pod := range pods {
		agg.Totals.PodCount++
		for _, c := range pod.Containers {
			cores, err := quantity.ParseCPU(c.CPU)
			if err != nil {
				if a.policy == PolicyStrict {
					return Aggregation{}, fmt.Errorf("pod %q container %q cpu: %w", pod.Name, c.Name, err)
				}
				a.logger.Warn("skipping unparsable cpu request",
					"pod", pod.Name, "container", c.Name, "value", c.CPU)
				agg.Skipped++
			}
			agg.Totals.CPUCores += cores

			if c.Memory == "" {
				continue
			}
			bytes, err := quantity.ParseBytes(c.Memory)
			if err != nil {
				if a.policy == PolicyStrict {
					return Aggregation{}, fmt.Errorf("pod %q container %q memory: %w", pod.Name, c.Name, err)
				}
				a.logger.Warn("skipping unparsable memory request",
					"pod", pod.Name, "container", c.Name, "value", c.Memory)
				agg.Skipped++
			}
			agg.Totals.MemoryGB += bytes / quantity.GiB
		}
	}

	seen := make(map[string]struct{}, len(claims))
	for _, claim := range claims {
		key := claim.Namespace + "/" + claim.Name
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if claim.Storage == "" {
			continue
		}
		bytes, err := quantity.ParseBytes(claim.Storage)
		if err != nil {
			if a.policy == PolicyStrict {
				return Aggregation{}, fmt.Errorf("claim %q storage: %w", key, err)
			}
			a.logger.Warn("skipping unparsable storage request",
				"claim", key, "value", claim.Storage)
			agg.Skipped++
		}
		agg.Totals.StorageGB += bytes / quantity.GiB
	}

	return agg, nil
}

// Capacity sums node allocatable CPU and memory into cluster-level
// totals. PodCount stays zero: nodes provide capacity, they do not
// consume it.
func (a *Aggregator) Capacity(nodes []NodeCapacity) (Aggregation, error) {
	agg := Aggregation{Nodes: len(nodes)}

	for _, node := range nodes {
		cores, err := quantity.ParseCPU(node.CPU)
		if err != nil {
			if a.policy == PolicyStrict {
				return Aggregation{}, fmt.Errorf("node %q cpu: %w", node.Name, err)
			}
			a.logger.Warn("skipping unparsable node cpu",
				"node", node.Name, "value", node.CPU)
			agg.Skipped++
		}
		agg.Totals.CPUCores += cores

		if node.Memory == "" {
			continue
		}
		bytes, err := quantity.ParseBytes(node.Memory)
		if err != nil {
			if a.policy == PolicyStrict {
				return Aggregation{}, fmt.Errorf("node %q memory: %w", node.Name, err)
			}
			a.logger.Warn("skipping unparsable node memory",
				"node", node.Name, "value", node.Memory)
			agg.Skipped++
		}
		agg.Totals.MemoryGB += bytes / quantity.GiB
	}

	return agg, nil
}
