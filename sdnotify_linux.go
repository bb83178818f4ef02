//go:build linux

package main

import "github.com/coreos/go-systemd/v22/daemon"

// sdNotifyReady tells systemd the metrics endpoint is up.
// It returns false if the process isn't running under systemd.
func sdNotifyReady() (bool, error) {
	return daemon.SdNotify(false, daemon.SdNotifyReady)
}
