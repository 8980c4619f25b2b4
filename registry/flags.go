package registry

// OpenFlags packs the permission bits (a tri-state access mode) and the
// create/exclusive/non-blocking bits.
type OpenFlags uint32

const (
	ReadOnly  OpenFlags = 0
	WriteOnly OpenFlags = 1
	ReadWrite OpenFlags = 2

	accessModeMask OpenFlags = 0x3

	NonBlock  OpenFlags = 1 << 2
	Create    OpenFlags = 1 << 3
	Exclusive OpenFlags = 1 << 4
)

// AccessMode returns the permission sub-field (ReadOnly/WriteOnly/ReadWrite).
func (f OpenFlags) AccessMode() OpenFlags { return f & accessModeMask }

func (f OpenFlags) CanRead() bool {
	m := f.AccessMode()
	return m == ReadOnly || m == ReadWrite
}

func (f OpenFlags) CanWrite() bool {
	m := f.AccessMode()
	return m == WriteOnly || m == ReadWrite
}

func (f OpenFlags) NonBlocking() bool { return f&NonBlock != 0 }
func (f OpenFlags) WantCreate() bool  { return f&Create != 0 }
func (f OpenFlags) WantExclusive() bool { return f&Exclusive != 0 }

// RuntimeFlags is the subset of OpenFlags a descriptor carries at runtime:
// permission bits (fixed at open time) plus the mutable non-blocking bit.
func (f OpenFlags) RuntimeFlags() OpenFlags {
	return f.AccessMode() | (f & NonBlock)
}
