package memdev

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/flashring/persistence"
)

var _ persistence.Dev = &MemDev{}

const (
	devSize    = 1024
	sectorSize = 64
)

func TestNewDevIsErased(t *testing.T) {
	requireT := require.New(t)

	dev := New(devSize, sectorSize)

	erased, err := dev.IsErased(0, devSize)
	requireT.NoError(err)
	requireT.True(erased)

	totalBytes, sSize, sectorCount := dev.Geometry()
	requireT.EqualValues(devSize, totalBytes)
	requireT.EqualValues(sectorSize, sSize)
	requireT.EqualValues(devSize/sectorSize, sectorCount)
}

func TestWriteOnlyClearsBits(t *testing.T) {
	requireT := require.New(t)

	dev := New(devSize, sectorSize)

	requireT.NoError(dev.WriteByte(0b11110000, 10))
	requireT.NoError(dev.WriteByte(0b10101111, 10))

	b, err := dev.ReadByte(10)
	requireT.NoError(err)
	requireT.EqualValues(0b10100000, b)
}

func TestWriteRegionMergesIntoExistingContent(t *testing.T) {
	requireT := require.New(t)

	dev := New(devSize, sectorSize)

	requireT.NoError(dev.WriteRegion([]byte{0x0f, 0xff, 0xf0}, 0))
	requireT.NoError(dev.WriteRegion([]byte{0xff, 0x0f, 0x0f}, 0))

	p := make([]byte, 3)
	requireT.NoError(dev.ReadRegion(p, 0))
	requireT.Equal([]byte{0x0f, 0x0f, 0x00}, p)
}

func TestEraseSectorRestoresBits(t *testing.T) {
	requireT := require.New(t)

	dev := New(devSize, sectorSize)

	requireT.NoError(dev.WriteByte(0x00, sectorSize))
	erased, err := dev.IsErased(sectorSize, sectorSize)
	requireT.NoError(err)
	requireT.False(erased)

	requireT.NoError(dev.EraseSector(1))
	erased, err = dev.IsErased(sectorSize, sectorSize)
	requireT.NoError(err)
	requireT.True(erased)

	requireT.EqualValues(1, dev.EraseCount(1))
	requireT.EqualValues(0, dev.EraseCount(0))
}

func TestEraseIsSectorGranular(t *testing.T) {
	requireT := require.New(t)

	dev := New(devSize, sectorSize)

	requireT.NoError(dev.WriteByte(0x00, 0))
	requireT.NoError(dev.WriteByte(0x00, sectorSize))
	requireT.NoError(dev.EraseSector(0))

	b, err := dev.ReadByte(0)
	requireT.NoError(err)
	requireT.EqualValues(0xff, b)

	b, err = dev.ReadByte(sectorSize)
	requireT.NoError(err)
	requireT.EqualValues(0x00, b)
}

func TestInvalidRegions(t *testing.T) {
	requireT := require.New(t)

	dev := New(devSize, sectorSize)

	requireT.Error(dev.WriteByte(0x00, -1))
	requireT.Error(dev.WriteByte(0x00, devSize))
	requireT.Error(dev.ReadRegion(make([]byte, 2), devSize-1))
	requireT.Error(dev.EraseSector(devSize/sectorSize))

	_, err := dev.IsErased(devSize-1, 2)
	requireT.Error(err)
}
