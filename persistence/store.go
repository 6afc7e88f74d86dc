package persistence

import (
	"github.com/pkg/errors"
)

// Params describe the managed region of the device. The reserved leading
// region holds unrelated data (firmware, configuration) and is never
// touched. The first sector after it persists the status table, the
// following sectors hold payloads.
type Params struct {
	ReservedOffsetBytes int64
	SectorSizeBytes     int64
	AvailableSectors    int64
}

// ErrWriteVerification is returned when a single-byte write read back from
// the device does not match the written value.
var ErrWriteVerification = errors.New("write verification failed")

// Store gives sector-granular access to the managed region of the device.
// Sector 0 is the status sector, the first sector after the reserved region.
type Store struct {
	dev             Dev
	params          Params
	reservedSectors int64
}

// OpenStore initializes the device and validates the reported geometry
// against the configured one.
func OpenStore(dev Dev, params Params) (*Store, error) {
	if err := dev.Init(); err != nil {
		return nil, errors.WithStack(err)
	}

	totalBytes, sectorSize, sectorCount := dev.Geometry()
	if sectorSize != params.SectorSizeBytes {
		return nil, errors.Errorf("sector size reported by the device: %d, configured: %d",
			sectorSize, params.SectorSizeBytes)
	}
	if totalBytes != sectorCount*sectorSize {
		return nil, errors.Errorf("device geometry is inconsistent: %d bytes, %d sectors of %d bytes",
			totalBytes, sectorCount, sectorSize)
	}
	if available := (totalBytes - params.ReservedOffsetBytes) / sectorSize; available != params.AvailableSectors {
		return nil, errors.Errorf("available sectors on the device: %d, configured: %d",
			available, params.AvailableSectors)
	}

	return &Store{
		dev:             dev,
		params:          params,
		reservedSectors: params.ReservedOffsetBytes / params.SectorSizeBytes,
	}, nil
}

// AvailableSectors returns the number of managed sectors including the
// status sector.
func (s *Store) AvailableSectors() int64 {
	return s.params.AvailableSectors
}

// SectorSize returns the byte size of one sector.
func (s *Store) SectorSize() int64 {
	return s.params.SectorSizeBytes
}

// ReadSector reads one full sector into p.
func (s *Store) ReadSector(p []byte, sector int64) error {
	if err := s.checkSector(sector); err != nil {
		return err
	}
	if int64(len(p)) != s.params.SectorSizeBytes {
		return errors.Errorf("invalid size of output buffer: %d", len(p))
	}
	return s.dev.ReadRegion(p, s.sectorAddress(sector))
}

// WriteSector writes one full sector, erasing it first when it does not read
// as empty.
func (s *Store) WriteSector(p []byte, sector int64) error {
	if err := s.checkSector(sector); err != nil {
		return err
	}
	if int64(len(p)) != s.params.SectorSizeBytes {
		return errors.Errorf("invalid size of input buffer: %d", len(p))
	}

	address := s.sectorAddress(sector)
	erased, err := s.dev.IsErased(address, s.params.SectorSizeBytes)
	if err != nil {
		return err
	}
	if !erased {
		if err := s.dev.EraseSector(s.reservedSectors + sector); err != nil {
			return err
		}
	}
	return s.dev.WriteRegion(p, address)
}

// EraseSector erases one managed sector.
func (s *Store) EraseSector(sector int64) error {
	if err := s.checkSector(sector); err != nil {
		return err
	}
	return s.dev.EraseSector(s.reservedSectors + sector)
}

// ReadStatusRegion reads the persisted status table from the status sector.
func (s *Store) ReadStatusRegion(p []byte) error {
	if int64(len(p)) != s.params.AvailableSectors {
		return errors.Errorf("invalid size of status buffer: %d", len(p))
	}
	return s.dev.ReadRegion(p, s.params.ReservedOffsetBytes)
}

// WriteStatusRegion erases the status sector and writes the full status
// table in one pass.
func (s *Store) WriteStatusRegion(p []byte) error {
	if int64(len(p)) != s.params.AvailableSectors {
		return errors.Errorf("invalid size of status buffer: %d", len(p))
	}
	if err := s.dev.EraseSector(s.reservedSectors); err != nil {
		return err
	}
	return s.dev.WriteRegion(p, s.params.ReservedOffsetBytes)
}

// WriteStatusByte writes one status byte in place, without erasing, and
// verifies it by reading it back. On flash only bit clearing takes effect,
// so a transition trying to set bits comes back different and fails here.
func (s *Store) WriteStatusByte(value byte, sector int64) error {
	if err := s.checkSector(sector); err != nil {
		return err
	}

	address := s.params.ReservedOffsetBytes + sector
	if err := s.dev.WriteByte(value, address); err != nil {
		return err
	}
	read, err := s.dev.ReadByte(address)
	if err != nil {
		return err
	}
	if read != value {
		return errors.Wrapf(ErrWriteVerification, "address %d: wrote %#02x, read %#02x", address, value, read)
	}
	return nil
}

func (s *Store) checkSector(sector int64) error {
	if sector < 0 || sector >= s.params.AvailableSectors {
		return errors.Errorf("invalid sector: %d", sector)
	}
	return nil
}

func (s *Store) sectorAddress(sector int64) int64 {
	return s.params.ReservedOffsetBytes + sector*s.params.SectorSizeBytes
}
