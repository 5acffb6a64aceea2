package hid

import (
	"errors"

	"github.com/karalabe/hid"
)

var ErrNotFound = errors.New("device not connected")

// DeviceInfo describes a HID device found on the system. Interfaces counts
// the interfaces folded into this entry by Unique.
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Path         string
	Manufacturer string
	Product      string
	Interfaces   int
}

// ListDevices returns every HID interface on the system
func ListDevices() ([]DeviceInfo, error) {
	return enumerate(0, 0), nil
}

// FindDevice returns the first interface matching the ids, or ErrNotFound
func FindDevice(vendorID, productID uint16) (*DeviceInfo, error) {
	devices := enumerate(vendorID, productID)
	if len(devices) == 0 {
		return nil, ErrNotFound
	}
	return &devices[0], nil
}

func enumerate(vendorID, productID uint16) []DeviceInfo {
	var out []DeviceInfo
	for _, d := range hid.Enumerate(vendorID, productID) {
		out = append(out, DeviceInfo{
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Path:         d.Path,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
			Interfaces:   1,
		})
	}
	return out
}

// Unique folds the interfaces of each device into its first one and drops
// devices without a vendor or product id
func Unique(devices []DeviceInfo) []DeviceInfo {
	index := make(map[uint32]int)
	var unique []DeviceInfo

	for _, d := range devices {
		if d.VendorID == 0 && d.ProductID == 0 {
			continue
		}
		key := uint32(d.VendorID)<<16 | uint32(d.ProductID)
		if i, ok := index[key]; ok {
			unique[i].Interfaces += max(d.Interfaces, 1)
			continue
		}
		d.Interfaces = max(d.Interfaces, 1)
		index[key] = len(unique)
		unique = append(unique, d)
	}
	return unique
}
