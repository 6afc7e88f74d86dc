package status

import "fmt"

// Status describes the lifecycle of one managed sector. The values are
// chosen so that the allowed in-place transitions only clear bits, which is
// the only change flash accepts without an erase.
type Status byte

const (
	// Unformatted is a fresh sector never touched by this scheme.
	Unformatted Status = 0b11111111
	// Empty is a sector ready to accept a payload.
	Empty Status = 0b01011111
	// Unread is a sector holding a payload not consumed yet.
	Unread Status = 0b01011110
	// Read is a sector whose payload has been consumed, reclaimable.
	Read Status = 0b01011100
)

// Signature is the sentinel stored at byte 0 of the status region to mark
// media formatted by this scheme.
const Signature byte = 0b01010101

// Defined reports whether s is one of the defined lifecycle values. Any
// other byte means a corrupted status.
func (s Status) Defined() bool {
	switch s {
	case Unformatted, Empty, Unread, Read:
		return true
	}
	return false
}

// CanClearTo reports whether s can transition to next without an erase,
// meaning the change only clears bits.
func (s Status) CanClearTo(next Status) bool {
	return s&next == next
}

func (s Status) String() string {
	switch s {
	case Unformatted:
		return "unformatted"
	case Empty:
		return "empty"
	case Unread:
		return "unread"
	case Read:
		return "read"
	}
	return fmt.Sprintf("corrupted(%#02x)", byte(s))
}
