package filedev

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// FileDev adapts a file to the flash device contract. Flash semantics are
// emulated: erased bytes read 0xFF, writes are merged into the existing
// content by clearing bits only, erasing rewrites a whole sector. Every
// mutation is synced before returning, as a flash chip would block the
// caller until the operation completes.
type FileDev struct {
	file       *os.File
	size       int64
	sectorSize int64
}

// New returns new filedev.
func New(file *os.File, sectorSize int64) *FileDev {
	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		panic(errors.WithStack(err))
	}
	return &FileDev{
		file:       file,
		size:       size,
		sectorSize: sectorSize,
	}
}

// Init validates that the file can serve as a sector-granular device.
func (fd *FileDev) Init() error {
	if fd.sectorSize <= 0 || fd.size <= 0 || fd.size%fd.sectorSize != 0 {
		return errors.Errorf("invalid filedev geometry: size %d, sector size %d", fd.size, fd.sectorSize)
	}
	return nil
}

// Geometry returns the total size, the sector size and the sector count of the device.
func (fd *FileDev) Geometry() (totalBytes, sectorSize, sectorCount int64) {
	return fd.size, fd.sectorSize, fd.size / fd.sectorSize
}

// ReadRegion reads len(p) bytes starting at the byte address.
func (fd *FileDev) ReadRegion(p []byte, address int64) error {
	if err := fd.checkRegion(address, int64(len(p))); err != nil {
		return err
	}
	if _, err := fd.file.ReadAt(p, address); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// WriteRegion writes len(p) bytes starting at the byte address. Bits already
// cleared in the underlying storage stay cleared.
func (fd *FileDev) WriteRegion(p []byte, address int64) error {
	if err := fd.checkRegion(address, int64(len(p))); err != nil {
		return err
	}
	merged := make([]byte, len(p))
	if _, err := fd.file.ReadAt(merged, address); err != nil {
		return errors.WithStack(err)
	}
	for i, b := range p {
		merged[i] &= b
	}
	if _, err := fd.file.WriteAt(merged, address); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(fd.file.Sync())
}

// EraseSector resets every byte of the sector to 0xFF.
func (fd *FileDev) EraseSector(sector int64) error {
	if sector < 0 || sector >= fd.size/fd.sectorSize {
		return errors.Errorf("invalid sector: %d", sector)
	}
	erased := make([]byte, fd.sectorSize)
	for i := range erased {
		erased[i] = 0xff
	}
	if _, err := fd.file.WriteAt(erased, sector*fd.sectorSize); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(fd.file.Sync())
}

// IsErased reports whether every byte of the region reads as erased.
func (fd *FileDev) IsErased(address, length int64) (bool, error) {
	if err := fd.checkRegion(address, length); err != nil {
		return false, err
	}
	p := make([]byte, length)
	if _, err := fd.file.ReadAt(p, address); err != nil {
		return false, errors.WithStack(err)
	}
	for _, b := range p {
		if b != 0xff {
			return false, nil
		}
	}
	return true, nil
}

// WriteByte writes a single byte at the byte address. Only bit clearing
// takes effect.
func (fd *FileDev) WriteByte(value byte, address int64) error {
	return fd.WriteRegion([]byte{value}, address)
}

// ReadByte reads a single byte at the byte address.
func (fd *FileDev) ReadByte(address int64) (byte, error) {
	var p [1]byte
	if err := fd.ReadRegion(p[:], address); err != nil {
		return 0, err
	}
	return p[0], nil
}

func (fd *FileDev) checkRegion(address, length int64) error {
	if address < 0 || length < 0 || address+length > fd.size {
		return errors.Errorf("invalid region: address %d, length %d", address, length)
	}
	return nil
}
