package flashring

import (
	"github.com/pkg/errors"

	"github.com/outofforest/flashring/allocator"
	"github.com/outofforest/flashring/persistence"
	"github.com/outofforest/flashring/status"
)

var (
	// ErrNoSpace is returned by Push when no empty sector exists even after
	// compaction, meaning every data sector holds an unread payload. The
	// consumer must pop before more data can be pushed.
	ErrNoSpace = errors.New("no space left on the managed region")

	// ErrNoData is returned by Pop when no sector holds an unread payload.
	ErrNoData = errors.New("no unread payload on the managed region")
)

// Ring is a wear-leveled circular payload buffer on top of a raw flash
// device. Payloads are pushed into the lowest-indexed free sector and popped
// from the lowest-indexed unread one; consumed sectors are reclaimed in bulk
// once no free sector remains, so erase cycles spread across the whole
// managed region instead of grinding down the first sectors.
//
// A Ring is owned by a single logical caller. It does no internal locking;
// concurrent use must be serialized externally.
type Ring struct {
	cfg     Config
	store   *persistence.Store
	table   *status.Table
	observe Observer
}

// New opens the ring on the device. The device geometry must match the
// configuration. Media without a valid signature is formatted automatically,
// which covers both virgin media and a corrupted status sector. A nil
// observer is replaced with a no-op one.
func New(dev persistence.Dev, cfg Config, observe Observer) (*Ring, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if observe == nil {
		observe = func(Event) {}
	}

	store, err := persistence.OpenStore(dev, persistence.Params{
		ReservedOffsetBytes: cfg.ReservedOffsetBytes,
		SectorSizeBytes:     cfg.SectorSizeBytes,
		AvailableSectors:    cfg.AvailableSectors(),
	})
	if err != nil {
		return nil, err
	}

	table, err := status.Load(store)
	if err != nil {
		return nil, err
	}
	if !table.VerifySignature() {
		if err := table.Format(); err != nil {
			return nil, err
		}
		// The persisted copy is authoritative, reload it after formatting.
		table, err = status.Load(store)
		if err != nil {
			return nil, err
		}
		observe(Event{Kind: EventFormatted})
	}
	if corrupt := table.CorruptSectors(); corrupt > 0 {
		observe(Event{Kind: EventCorruptDetected, Count: corrupt})
	}

	return &Ring{
		cfg:     cfg,
		store:   store,
		table:   table,
		observe: observe,
	}, nil
}

// Push writes one payload into the lowest-indexed empty sector and marks it
// unread. The payload must cover exactly one sector. When no empty sector
// exists, consumed sectors are compacted back to empty first; if that frees
// nothing, Push fails with ErrNoSpace.
//
// The payload write and the status update are two separate device
// operations. Power loss between them leaves the payload on the media with
// its sector still marked empty, so it is treated as absent on the next
// startup.
func (r *Ring) Push(p []byte) error {
	if int64(len(p)) != r.cfg.SectorSizeBytes {
		return errors.Errorf("invalid payload size: %d, sector size is %d", len(p), r.cfg.SectorSizeBytes)
	}

	sector, found := allocator.FindSectorToWrite(r.table)
	if !found {
		freed, err := allocator.Compact(r.table)
		if err != nil {
			return err
		}
		if freed == 0 {
			return errors.WithStack(ErrNoSpace)
		}
		r.observe(Event{Kind: EventCompacted, Count: freed})

		sector, found = allocator.FindSectorToWrite(r.table)
		if !found {
			return errors.WithStack(ErrNoSpace)
		}
	}

	if err := r.store.WriteSector(p, sector); err != nil {
		return err
	}
	if err := r.table.SetInPlace(sector, status.Unread); err != nil {
		return err
	}

	r.observe(Event{Kind: EventPushed, Sector: sector})
	return nil
}

// Pop reads the payload of the lowest-indexed unread sector into p and marks
// that sector read. p must cover exactly one sector. When no unread sector
// exists, Pop fails with ErrNoData.
func (r *Ring) Pop(p []byte) error {
	if int64(len(p)) != r.cfg.SectorSizeBytes {
		return errors.Errorf("invalid size of output buffer: %d, sector size is %d", len(p), r.cfg.SectorSizeBytes)
	}

	sector, found := allocator.FindSectorToRead(r.table)
	if !found {
		return errors.WithStack(ErrNoData)
	}

	if err := r.store.ReadSector(p, sector); err != nil {
		return err
	}
	if err := r.table.SetInPlace(sector, status.Read); err != nil {
		return err
	}

	r.observe(Event{Kind: EventPopped, Sector: sector})
	return nil
}
