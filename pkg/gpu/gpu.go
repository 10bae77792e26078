// Package gpu maps GPU class selections to Docker device requests and
// reports GPUs available on the host.
package gpu

import (
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/jaypipes/ghw"
)

// Class identifies a supported GPU hardware class.
type Class string

const (
	// ClassNone indicates that no GPU was requested.
	ClassNone Class = ""
	ClassA10G Class = "A10G"
	ClassA100 Class = "A100"
	ClassH100 Class = "H100"
	ClassL4   Class = "L4"
)

// ParseClass resolves a GPU selection string to a Class. The match is
// case-insensitive. Unknown values, including the empty string, resolve to
// ClassNone rather than failing.
func ParseClass(value string) Class {
	switch Class(strings.ToUpper(strings.TrimSpace(value))) {
	case ClassA10G:
		return ClassA10G
	case ClassA100:
		return ClassA100
	case ClassH100:
		return ClassH100
	case ClassL4:
		return ClassL4
	default:
		return ClassNone
	}
}

// String implements fmt.Stringer.
func (c Class) String() string {
	if c == ClassNone {
		return "none"
	}
	return string(c)
}

// DeviceRequests returns the Docker device requests for the class. ClassNone
// yields no requests, so the container runs CPU-only.
func (c Class) DeviceRequests() []container.DeviceRequest {
	if c == ClassNone {
		return nil
	}
	return []container.DeviceRequest{
		{
			Count:        -1,
			Capabilities: [][]string{{"gpu"}},
		},
	}
}

// HostGPUs returns a human-readable description of each graphics card found
// on the host. Detection failures are returned as errors so callers can
// degrade to "unknown" rather than aborting.
func HostGPUs() ([]string, error) {
	info, err := ghw.GPU()
	if err != nil {
		return nil, fmt.Errorf("failed to detect host GPUs: %w", err)
	}
	cards := make([]string, 0, len(info.GraphicsCards))
	for _, card := range info.GraphicsCards {
		if card.DeviceInfo == nil {
			cards = append(cards, "unknown graphics card")
			continue
		}
		cards = append(cards, fmt.Sprintf("%s %s", card.DeviceInfo.Vendor.Name, card.DeviceInfo.Product.Name))
	}
	return cards, nil
}
