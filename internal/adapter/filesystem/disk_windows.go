//go:build windows
// +build windows

package filesystem

import (
	"errors"

	"github.com/vertextoedge/netfetch/internal/port"
)

// GetDiskUsage is not supported on windows
func (m *Manager) GetDiskUsage() (*port.DiskUsage, error) {
	return nil, errors.New("disk usage not supported on windows")
}
