package resource

import (
	"strconv"

	corev1 "k8s.io/api/core/v1"
)

// FromPod converts a decoded pod object into a request record. Typed
// quantities are rendered back into the string grammar (millicores for
// CPU, raw bytes for memory) so that every source feeds the same
// parser.
func FromPod(pod *corev1.Pod) Pod {
	out := Pod{Name: pod.Name}
	for _, c := range pod.Spec.Containers {
		rec := Container{Name: c.Name}
		if cpu, ok := c.Resources.Requests[corev1.ResourceCPU]; ok {
			rec.CPU = strconv.FormatInt(cpu.MilliValue(), 10) + "m"
		}
		if mem, ok := c.Resources.Requests[corev1.ResourceMemory]; ok {
			rec.Memory = strconv.FormatInt(mem.Value(), 10)
		}
		out.Containers = append(out.Containers, rec)
	}
	return out
}

// FromClaim converts a decoded persistent volume claim into a storage
// record.
func FromClaim(pvc *corev1.PersistentVolumeClaim) Claim {
	out := Claim{Namespace: pvc.Namespace, Name: pvc.Name}
	if storage, ok := pvc.Spec.Resources.Requests[corev1.ResourceStorage]; ok {
		out.Storage = strconv.FormatInt(storage.Value(), 10)
	}
	return out
}

// FromNode converts a decoded node into a capacity record, preferring
// allocatable over raw capacity when both are present.
func FromNode(node *corev1.Node) NodeCapacity {
	out := NodeCapacity{Name: node.Name}
	resources := node.Status.Allocatable
	if len(resources) == 0 {
		resources = node.Status.Capacity
	}
	if cpu, ok := resources[corev1.ResourceCPU]; ok {
		out.CPU = strconv.FormatInt(cpu.MilliValue(), 10) + "m"
	}
	if mem, ok := resources[corev1.ResourceMemory]; ok {
		out.Memory = strconv.FormatInt(mem.Value(), 10)
	}
	return out
}
