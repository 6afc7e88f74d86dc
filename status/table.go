package status

import (
	"github.com/cespare/xxhash"
	"github.com/pkg/errors"

	"github.com/outofforest/flashring/persistence"
)

// Table mirrors the persisted status sector in memory. Byte 0 holds the
// signature, bytes 1..N-1 hold one status per managed data sector. The
// persisted copy is authoritative and is reconciled by Load at startup.
//
// SetInPlace and ReplaceAll are the only mutation paths. Keeping it that way
// prevents accidental writes that would need to set bits and silently fail
// on hardware that can only clear them.
type Table struct {
	store   *persistence.Store
	bytes   []byte
	corrupt int64
}

// Load reads the persisted status region into a new table.
func Load(store *persistence.Store) (*Table, error) {
	b := make([]byte, store.AvailableSectors())
	if err := store.ReadStatusRegion(b); err != nil {
		return nil, err
	}
	t := &Table{
		store: store,
		bytes: b,
	}
	t.countCorrupt()
	return t, nil
}

// VerifySignature reports whether the media has been formatted by this
// scheme.
func (t *Table) VerifySignature() bool {
	return t.bytes[0] == Signature
}

// Sectors returns the number of table entries, the signature slot included.
// Data sectors occupy indices 1..Sectors()-1.
func (t *Table) Sectors() int64 {
	return int64(len(t.bytes))
}

// Get returns the status of the data sector.
func (t *Table) Get(sector int64) Status {
	return Status(t.bytes[sector])
}

// SetInPlace transitions the status of one data sector without erasing the
// status region. The transition must only clear bits. The byte is persisted
// with read-back verification first, memory is updated only after the device
// confirms the write.
func (t *Table) SetInPlace(sector int64, next Status) error {
	if sector <= 0 || sector >= t.Sectors() {
		return errors.Errorf("invalid data sector: %d", sector)
	}
	if !next.Defined() {
		return errors.Errorf("undefined status: %s", next)
	}
	current := t.Get(sector)
	if !current.CanClearTo(next) {
		return errors.Errorf("transition %s -> %s sets bits and requires an erase", current, next)
	}

	if err := t.store.WriteStatusByte(byte(next), sector); err != nil {
		return err
	}
	t.bytes[sector] = byte(next)
	return nil
}

// ReplaceAll substitutes the status of every data sector at once, persisting
// the whole region in a single erase and write. statuses must cover all
// table entries; the slot at index 0 is stamped with the signature.
func (t *Table) ReplaceAll(statuses []Status) error {
	if int64(len(statuses)) != t.Sectors() {
		return errors.Errorf("invalid size of status slice: %d, table has %d entries", len(statuses), t.Sectors())
	}

	b := make([]byte, len(statuses))
	for i, s := range statuses {
		b[i] = byte(s)
	}
	b[0] = Signature

	if err := t.store.WriteStatusRegion(b); err != nil {
		return err
	}
	t.bytes = b
	t.countCorrupt()
	return nil
}

// CorruptSectors returns the number of data sectors whose status byte is
// outside the defined values. Scans skip such sectors, so until a compaction
// reclaims them they reduce the effective capacity.
func (t *Table) CorruptSectors() int64 {
	return t.corrupt
}

// Fingerprint returns a hash of the in-memory table, a cheap way to detect
// table changes.
func (t *Table) Fingerprint() uint64 {
	return xxhash.Sum64(t.bytes)
}

func (t *Table) countCorrupt() {
	var n int64
	for _, b := range t.bytes[1:] {
		if !Status(b).Defined() {
			n++
		}
	}
	t.corrupt = n
}
