package allocator

import (
	"github.com/outofforest/flashring/status"
)

// FindSectorToWrite returns the lowest-indexed empty data sector. The scan
// is deterministic lowest-index-first; wear distribution comes from the
// compaction policy, not from rotating the allocation order.
func FindSectorToWrite(t *status.Table) (int64, bool) {
	for sector := int64(1); sector < t.Sectors(); sector++ {
		if t.Get(sector) == status.Empty {
			return sector, true
		}
	}
	return 0, false
}

// FindSectorToRead returns the lowest-indexed unread data sector. Because
// writes also take the lowest free index, read order approximates write
// order but is not a strict FIFO guarantee across compaction cycles.
func FindSectorToRead(t *status.Table) (int64, bool) {
	for sector := int64(1); sector < t.Sectors(); sector++ {
		if t.Get(sector) == status.Unread {
			return sector, true
		}
	}
	return 0, false
}

// Compact reclaims every data sector not holding an unread payload,
// corrupted status bytes included, and persists the whole table in one
// erase and write of the status region. The erase is mandatory: turning a
// read sector back to empty sets bits, which in-place writes cannot do.
//
// It returns the number of reclaimed sectors. When nothing is reclaimable
// the persisted region is left untouched.
func Compact(t *status.Table) (int64, error) {
	statuses := make([]status.Status, t.Sectors())
	var freed int64
	for sector := int64(1); sector < t.Sectors(); sector++ {
		current := t.Get(sector)
		if current == status.Unread {
			statuses[sector] = status.Unread
			continue
		}
		statuses[sector] = status.Empty
		if current != status.Empty {
			freed++
		}
	}

	if freed == 0 {
		return 0, nil
	}
	if err := t.ReplaceAll(statuses); err != nil {
		return 0, err
	}
	return freed, nil
}
