//go:build linux

package bluetooth

import "tinygo.org/x/bluetooth"

// hostAdapter returns the BlueZ adapter with the given id, e.g. "hci1".
func hostAdapter(id string) *bluetooth.Adapter {
	if id == "" || id == "hci0" {
		return bluetooth.DefaultAdapter
	}
	return bluetooth.NewAdapter(id)
}
