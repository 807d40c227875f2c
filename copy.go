package hetmem

import (
	"fmt"

	"github.com/LynnColeArt/hetmem/device"
)

// transfer describes how bytes move from one space to another. Pairs that
// are not native stay in process memory.
type transfer struct {
	native bool
	kind   device.MemcpyKind
}

var transfers = [numSpaces][numSpaces]transfer{
	SpaceHost: {
		SpaceHost:   {native: false, kind: device.MemcpyHostToHost},
		SpaceDevice: {native: true, kind: device.MemcpyHostToDevice},
	},
	SpaceDevice: {
		SpaceHost:   {native: true, kind: device.MemcpyDeviceToHost},
		SpaceDevice: {native: true, kind: device.MemcpyDeviceToDevice},
	},
}

// Copy copies the first n bytes of src into dst. Copies that involve the
// device are a single blocking runtime transfer checked at Fatal severity;
// host to host copies never touch the runtime. src is not modified.
func Copy[S, D Residency](n int, src *Buffer[S], dst *Buffer[D]) error {
	if err := src.usable(); err != nil {
		return err
	}
	if err := dst.usable(); err != nil {
		return err
	}
	if n < 0 || n > src.size || n > dst.size {
		return fmt.Errorf("%w: copy of %d bytes from %d-byte %s buffer to %d-byte %s buffer",
			ErrOutOfRange, n, src.size, src.Space(), dst.size, dst.Space())
	}
	if n == 0 {
		return nil
	}

	t := transfers[src.Space()][dst.Space()]
	if !t.native {
		copy(dst.reg.host[:n], src.reg.host[:n])
		return nil
	}
	err := device.Memcpy(dst.reg.operand(), src.reg.operand(), n, t.kind)
	return Check(Fatal, err, fmt.Sprintf("device.Memcpy(dst, src, %d, device.Memcpy%s)", n, t.kind))
}
