package flashring

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes the static geometry of the managed flash region.
type Config struct {
	// TotalMemoryBytes is the full capacity of the device.
	TotalMemoryBytes int64 `yaml:"total_memory_bytes"`

	// ReservedOffsetBytes is the size of the leading region excluded from
	// management, e.g. firmware or configuration storage.
	ReservedOffsetBytes int64 `yaml:"reserved_offset_bytes"`

	// SectorSizeBytes is the erase unit of the device.
	SectorSizeBytes int64 `yaml:"sector_size_bytes"`
}

// DefaultConfig matches a typical 8 MiB NOR chip with the first MiB
// reserved.
func DefaultConfig() Config {
	return Config{
		TotalMemoryBytes:    2 * 4194304,
		ReservedOffsetBytes: 1048576,
		SectorSizeBytes:     4096,
	}
}

// LoadConfig reads and validates yaml configuration.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, errors.WithStack(err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TotalSectors returns the sector count of the whole device.
func (c Config) TotalSectors() int64 {
	return c.TotalMemoryBytes / c.SectorSizeBytes
}

// AvailableSectors returns the number of managed sectors, the status sector
// included.
func (c Config) AvailableSectors() int64 {
	return (c.TotalMemoryBytes - c.ReservedOffsetBytes) / c.SectorSizeBytes
}

// DataSectors returns the number of sectors usable for payloads.
func (c Config) DataSectors() int64 {
	return c.AvailableSectors() - 1
}

// Validate checks that the geometry is consistent and that the status table
// fits into the single status sector.
func (c Config) Validate() error {
	switch {
	case c.SectorSizeBytes <= 0:
		return errors.Errorf("invalid sector size: %d", c.SectorSizeBytes)
	case c.TotalMemoryBytes <= 0 || c.TotalMemoryBytes%c.SectorSizeBytes != 0:
		return errors.Errorf("total size %d is not a multiple of the sector size %d",
			c.TotalMemoryBytes, c.SectorSizeBytes)
	case c.ReservedOffsetBytes < 0 || c.ReservedOffsetBytes%c.SectorSizeBytes != 0:
		return errors.Errorf("reserved offset %d is not a multiple of the sector size %d",
			c.ReservedOffsetBytes, c.SectorSizeBytes)
	case c.ReservedOffsetBytes >= c.TotalMemoryBytes:
		return errors.Errorf("reserved offset %d leaves no managed region on %d bytes",
			c.ReservedOffsetBytes, c.TotalMemoryBytes)
	case c.AvailableSectors() < 2:
		return errors.Errorf("managed region needs the status sector and at least one data sector, got %d sectors",
			c.AvailableSectors())
	case c.AvailableSectors() > c.SectorSizeBytes:
		return errors.Errorf("status table of %d entries does not fit into one %d byte sector",
			c.AvailableSectors(), c.SectorSizeBytes)
	}
	return nil
}
