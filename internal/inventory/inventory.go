// Package inventory decodes Kubernetes object dumps (kubectl get -o
// json or -o yaml output) into request records. It only ever reads
// bytes handed to it; nothing here talks to a cluster.
package inventory

import (
	"bytes"
	"fmt"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/scheme"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/costpilot/costpilot/internal/metrics"
	"github.com/costpilot/costpilot/pkg/resource"
)

// Dump is the decoded content of one inventory file: the request
// records extracted from it, plus a count of objects whose kind the
// estimator has no use for.
type Dump struct {
	Pods    []resource.Pod
	Claims  []resource.Claim
	Nodes   []resource.NodeCapacity
	Unknown int
}

// Decoder turns serialized Kubernetes objects into a Dump.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder builds a decoder. A nil logger falls back to slog.Default.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// Decode reads one dump in JSON or YAML. It accepts single objects,
// typed lists (PodList, PersistentVolumeClaimList, NodeList) and the
// generic v1 List that kubectl emits. Objects of other kinds are
// skipped with a warning, never an error: dumps routinely carry
// services and config alongside the workloads being priced.
func (d *Decoder) Decode(data []byte) (*Dump, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty inventory")
	}

	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("converting inventory to JSON: %w", err)
	}

	obj, gvk, err := scheme.Codecs.UniversalDeserializer().Decode(jsonData, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("decoding inventory: %w", err)
	}

	dump := &Dump{}
	d.collect(obj, gvk.Kind, dump)
	return dump, nil
}

func (d *Decoder) collect(obj runtime.Object, kind string, dump *Dump) {
	switch o := obj.(type) {
	case *corev1.Pod:
		dump.Pods = append(dump.Pods, resource.FromPod(o))
		metrics.InventoryObjectsTotal.WithLabelValues("Pod").Inc()

	case *corev1.PodList:
		for i := range o.Items {
			dump.Pods = append(dump.Pods, resource.FromPod(&o.Items[i]))
		}
		metrics.InventoryObjectsTotal.WithLabelValues("Pod").Add(float64(len(o.Items)))

	case *corev1.PersistentVolumeClaim:
		dump.Claims = append(dump.Claims, resource.FromClaim(o))
		metrics.InventoryObjectsTotal.WithLabelValues("PersistentVolumeClaim").Inc()

	case *corev1.PersistentVolumeClaimList:
		for i := range o.Items {
			dump.Claims = append(dump.Claims, resource.FromClaim(&o.Items[i]))
		}
		metrics.InventoryObjectsTotal.WithLabelValues("PersistentVolumeClaim").Add(float64(len(o.Items)))

	case *corev1.Node:
		dump.Nodes = append(dump.Nodes, resource.FromNode(o))
		metrics.InventoryObjectsTotal.WithLabelValues("Node").Inc()

	case *corev1.NodeList:
		for i := range o.Items {
			dump.Nodes = append(dump.Nodes, resource.FromNode(&o.Items[i]))
		}
		metrics.InventoryObjectsTotal.WithLabelValues("Node").Add(float64(len(o.Items)))

	case *corev1.List:
		for i := range o.Items {
			nested, nestedGVK, err := scheme.Codecs.UniversalDeserializer().Decode(o.Items[i].Raw, nil, nil)
			if err != nil {
				d.logger.Warn("skipping undecodable inventory item", "index", i, "error", err)
				dump.Unknown++
				continue
			}
			d.collect(nested, nestedGVK.Kind, dump)
		}

	default:
		d.logger.Warn("skipping inventory object of unsupported kind", "kind", kind)
		dump.Unknown++
	}
}
