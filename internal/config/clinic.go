package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"physiobill/pkg/domain"
)

// LoadClinic reads the clinic profile from a YAML file. A missing file yields
// the default profile; missing fields are filled from the defaults.
func LoadClinic(path string) (domain.ClinicInfo, error) {
	if path == "" {
		return domain.DefaultClinicInfo(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultClinicInfo(), nil
	}
	if err != nil {
		return domain.ClinicInfo{}, fmt.Errorf("read clinic profile: %w", err)
	}
	var info domain.ClinicInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return domain.ClinicInfo{}, fmt.Errorf("parse clinic profile %s: %w", path, err)
	}
	return info.WithDefaults(), nil
}

// SaveClinic writes the clinic profile as YAML.
func SaveClinic(path string, info domain.ClinicInfo) error {
	data, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode clinic profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write clinic profile: %w", err)
	}
	return nil
}
