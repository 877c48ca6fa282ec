//go:build !wasm

package serial

import (
	"errors"
	"strings"

	"go.bug.st/serial/enumerator"
)

var ErrPortNotFound = errors.New("no matching serial port found")

// PortInfo describes one serial device present on the host
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// ListPorts returns every serial device the OS reports
func ListPorts() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	infos := make([]PortInfo, 0, len(ports))
	for _, port := range ports {
		infos = append(infos, PortInfo{
			Name:         port.Name,
			IsUSB:        port.IsUSB,
			VID:          port.VID,
			PID:          port.PID,
			SerialNumber: port.SerialNumber,
			Product:      port.Product,
		})
	}
	return infos, nil
}

// FindPort returns the first USB device with the given IDs. An empty VID
// matches any vendor.
func FindPort(vid, pid string) (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	return matchPort(ports, vid, pid)
}

func matchPort(ports []PortInfo, vid, pid string) (string, error) {
	if pid == "" {
		return "", ErrPortNotFound
	}
	for _, port := range ports {
		if !port.IsUSB || !strings.EqualFold(port.PID, pid) {
			continue
		}
		if vid == "" || strings.EqualFold(port.VID, vid) {
			return port.Name, nil
		}
	}
	return "", ErrPortNotFound
}
