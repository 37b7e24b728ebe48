// Package resource models resource request records and aggregates them
// into the canonical totals the estimator prices. Records carry their
// quantities as raw strings so that everything, whatever its source,
// flows through the same parser.
package resource

// Container is one container's resource requests. Empty fields mean
// the request was not set and contribute zero.
type Container struct {
	Name   string `json:"name"`
	CPU    string `json:"cpu,omitempty"`
	Memory string `json:"memory,omitempty"`
}

// Pod groups the container requests of one pod. A pod with no
// containers (or no requests) still counts toward the pod total.
type Pod struct {
	Name       string      `json:"name"`
	Containers []Container `json:"containers,omitempty"`
}

// Claim is a persistent volume claim's storage request. Claims are
// identified by namespace/name: the same claim mounted by several pods
// is still one disk and is counted once.
type Claim struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Storage   string `json:"storage,omitempty"`
}

// NodeCapacity is one node's allocatable compute, for pricing what a
// cluster provides rather than what its pods request.
type NodeCapacity struct {
	Name   string `json:"name"`
	CPU    string `json:"cpu,omitempty"`
	Memory string `json:"memory,omitempty"`
}

// Totals is the canonical aggregate over a set of records: CPU in
// cores, memory and storage in binary gigabytes. Components are never
// negative.
type Totals struct {
	CPUCores  float64 `json:"cpuCores"`
	MemoryGB  float64 `json:"memoryGB"`
	StorageGB float64 `json:"storageGB"`
	PodCount  int     `json:"podCount"`
}

// Add returns the component-wise sum of two totals.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		CPUCores:  t.CPUCores + o.CPUCores,
		MemoryGB:  t.MemoryGB + o.MemoryGB,
		StorageGB: t.StorageGB + o.StorageGB,
		PodCount:  t.PodCount + o.PodCount,
	}
}

// IsZero reports whether the totals carry no resources and no pods.
func (t Totals) IsZero() bool {
	return t.CPUCores == 0 && t.MemoryGB == 0 && t.StorageGB == 0 && t.PodCount == 0
}
