package persistence

// Dev is the interface required from the flash device. One implementation
// exists per chip or medium; the instance is injected at construction time
// so the core can run against simulated devices as well.
//
// Flash write semantics leak through this contract on purpose: writes can
// only clear bits, setting a bit back requires erasing the whole sector.
type Dev interface {
	// Init initializes the device hardware.
	Init() error

	// Geometry returns the total size, the sector size and the sector count
	// reported by the device.
	Geometry() (totalBytes, sectorSize, sectorCount int64)

	// ReadRegion reads len(p) bytes starting at the byte address.
	ReadRegion(p []byte, address int64) error

	// WriteRegion writes len(p) bytes starting at the byte address. The
	// caller is responsible for ensuring the target region is erased.
	WriteRegion(p []byte, address int64) error

	// EraseSector erases one sector. Erasing is the only way to set bits
	// back to 1.
	EraseSector(sector int64) error

	// IsErased reports whether every byte of the region reads as erased.
	IsErased(address, length int64) (bool, error)

	// WriteByte writes a single byte at the byte address. Only bit clearing
	// takes effect.
	WriteByte(value byte, address int64) error

	// ReadByte reads a single byte at the byte address.
	ReadByte(address int64) (byte, error)
}
