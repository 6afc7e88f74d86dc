package memdev

import (
	"github.com/pkg/errors"
)

// MemDev simulates a NOR flash device in memory: erased bytes read 0xFF,
// writes can only clear bits and erasing is sector-granular. Erase cycles
// are counted per sector so wear can be inspected in tests.
type MemDev struct {
	sectorSize int64
	data       []byte
	eraseCount []int64
}

// New returns new memdev with every byte erased.
func New(size, sectorSize int64) *MemDev {
	if size <= 0 || sectorSize <= 0 || size%sectorSize != 0 {
		panic(errors.Errorf("invalid memdev geometry: size %d, sector size %d", size, sectorSize))
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xff
	}
	return &MemDev{
		sectorSize: sectorSize,
		data:       data,
		eraseCount: make([]int64, size/sectorSize),
	}
}

// Init initializes the device.
func (md *MemDev) Init() error {
	return nil
}

// Geometry returns the total size, the sector size and the sector count of the device.
func (md *MemDev) Geometry() (totalBytes, sectorSize, sectorCount int64) {
	return int64(len(md.data)), md.sectorSize, int64(len(md.eraseCount))
}

// ReadRegion reads len(p) bytes starting at the byte address.
func (md *MemDev) ReadRegion(p []byte, address int64) error {
	if err := md.checkRegion(address, int64(len(p))); err != nil {
		return err
	}
	copy(p, md.data[address:])
	return nil
}

// WriteRegion writes len(p) bytes starting at the byte address. Bits already
// cleared in the underlying storage stay cleared.
func (md *MemDev) WriteRegion(p []byte, address int64) error {
	if err := md.checkRegion(address, int64(len(p))); err != nil {
		return err
	}
	for i, b := range p {
		md.data[address+int64(i)] &= b
	}
	return nil
}

// EraseSector resets every byte of the sector to 0xFF.
func (md *MemDev) EraseSector(sector int64) error {
	if sector < 0 || sector >= int64(len(md.eraseCount)) {
		return errors.Errorf("invalid sector: %d", sector)
	}
	offset := sector * md.sectorSize
	for i := offset; i < offset+md.sectorSize; i++ {
		md.data[i] = 0xff
	}
	md.eraseCount[sector]++
	return nil
}

// IsErased reports whether every byte of the region reads as erased.
func (md *MemDev) IsErased(address, length int64) (bool, error) {
	if err := md.checkRegion(address, length); err != nil {
		return false, err
	}
	for _, b := range md.data[address : address+length] {
		if b != 0xff {
			return false, nil
		}
	}
	return true, nil
}

// WriteByte writes a single byte at the byte address. Only bit clearing
// takes effect.
func (md *MemDev) WriteByte(value byte, address int64) error {
	if err := md.checkRegion(address, 1); err != nil {
		return err
	}
	md.data[address] &= value
	return nil
}

// ReadByte reads a single byte at the byte address.
func (md *MemDev) ReadByte(address int64) (byte, error) {
	if err := md.checkRegion(address, 1); err != nil {
		return 0, err
	}
	return md.data[address], nil
}

// EraseCount returns the number of erase cycles the sector has absorbed.
func (md *MemDev) EraseCount(sector int64) int64 {
	return md.eraseCount[sector]
}

func (md *MemDev) checkRegion(address, length int64) error {
	if address < 0 || length < 0 || address+length > int64(len(md.data)) {
		return errors.Errorf("invalid region: address %d, length %d", address, length)
	}
	return nil
}
