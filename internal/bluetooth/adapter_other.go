//go:build !linux

package bluetooth

import "tinygo.org/x/bluetooth"

// hostAdapter ignores id; only one adapter is available.
func hostAdapter(string) *bluetooth.Adapter {
	return bluetooth.DefaultAdapter
}
