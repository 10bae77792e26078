package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClass(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected Class
	}{
		{name: "A10G", value: "A10G", expected: ClassA10G},
		{name: "A100", value: "A100", expected: ClassA100},
		{name: "H100", value: "H100", expected: ClassH100},
		{name: "L4", value: "L4", expected: ClassL4},
		{name: "lowercase", value: "a100", expected: ClassA100},
		{name: "surrounding whitespace", value: " h100 ", expected: ClassH100},
		{name: "empty", value: "", expected: ClassNone},
		{name: "unknown", value: "V100", expected: ClassNone},
		{name: "garbage", value: "definitely-not-a-gpu", expected: ClassNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseClass(tt.value))
		})
	}
}

func TestDeviceRequests(t *testing.T) {
	assert.Nil(t, ClassNone.DeviceRequests())

	requests := ClassA100.DeviceRequests()
	if assert.Len(t, requests, 1) {
		assert.Equal(t, -1, requests[0].Count)
		assert.Equal(t, [][]string{{"gpu"}}, requests[0].Capabilities)
	}
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "none", ClassNone.String())
	assert.Equal(t, "L4", ClassL4.String())
}
