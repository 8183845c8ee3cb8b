package utils

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/relief-ops/supply-allocator/pkg/config"
)

// unmarshal a byte array to its corresponding object
func FromDataToSpec[T interface{}](byteValue []byte, t T) (*T, error) {
	var d T
	if err := json.Unmarshal(byteValue, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// unmarshal a YAML byte array to its corresponding object
func FromYAMLToSpec[T interface{}](byteValue []byte, t T) (*T, error) {
	var d T
	if err := yaml.Unmarshal(byteValue, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadSystemData reads system data from a JSON (.json) or YAML (any other extension) file
func LoadSystemData(path string) (*config.SystemData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d *config.SystemData
	if strings.EqualFold(filepath.Ext(path), ".json") {
		d, err = FromDataToSpec(data, config.SystemData{})
	} else {
		d, err = FromYAMLToSpec(data, config.SystemData{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return d, nil
}

// LocalIP returns the address of the interface used for outbound traffic.
// No packet is sent: connecting a UDP socket only selects a route.
func LocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address %v", conn.LocalAddr())
	}
	return addr.IP.String(), nil
}
