package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLifecycleTransitionsOnlyClearBits(t *testing.T) {
	requireT := require.New(t)

	// The transitions performed in place, without an erase.
	requireT.True(Unformatted.CanClearTo(Empty))
	requireT.True(Empty.CanClearTo(Unread))
	requireT.True(Unread.CanClearTo(Read))

	// Going back to empty sets bits, so it must require an erase.
	requireT.False(Read.CanClearTo(Empty))
	requireT.False(Read.CanClearTo(Unread))
	requireT.False(Unread.CanClearTo(Empty))
	requireT.False(Empty.CanClearTo(Unformatted))
}

func TestDefined(t *testing.T) {
	requireT := require.New(t)

	requireT.True(Unformatted.Defined())
	requireT.True(Empty.Defined())
	requireT.True(Unread.Defined())
	requireT.True(Read.Defined())

	requireT.False(Status(0x00).Defined())
	requireT.False(Status(0b01011000).Defined())
	requireT.False(Status(Signature).Defined())
}

func TestString(t *testing.T) {
	requireT := require.New(t)

	requireT.Equal("empty", Empty.String())
	requireT.Equal("unread", Unread.String())
	requireT.Equal("read", Read.String())
	requireT.Equal("unformatted", Unformatted.String())
	requireT.Equal("corrupted(0x13)", Status(0x13).String())
}
