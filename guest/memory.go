package guest

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/script-bridge/errors"
)

// memory adapts a guest's linear memory to scriptbridge.Memory.
type memory struct {
	mem api.Memory
}

func (m memory) Read(offset, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseGuest, offset, length)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseGuest, offset, uint32(len(data)))
	}
	return nil
}

func (m memory) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.mem.ReadUint16Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseGuest, offset, 2)
	}
	return v, nil
}

func (m memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseGuest, offset, 4)
	}
	return v, nil
}

func (m memory) ReadF32(offset uint32) (float32, error) {
	v, ok := m.mem.ReadFloat32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseGuest, offset, 4)
	}
	return v, nil
}

func (m memory) WriteU16(offset uint32, value uint16) error {
	if !m.mem.WriteUint16Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseGuest, offset, 2)
	}
	return nil
}

func (m memory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseGuest, offset, 4)
	}
	return nil
}

func (m memory) WriteF32(offset uint32, value float32) error {
	if !m.mem.WriteFloat32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseGuest, offset, 4)
	}
	return nil
}

// allocator obtains guest memory through the guest's exported alloc.
// The guest owns and frees everything it hands out.
type allocator struct {
	ctx context.Context
	fn  api.Function
}

func (a allocator) Alloc(size, align uint32) (uint32, error) {
	if a.fn == nil {
		return 0, errors.New(errors.PhaseGuest, errors.KindAllocation).
			Detail("guest does not export %s", ExportAlloc).
			Build()
	}
	res, err := a.fn.Call(a.ctx, uint64(size))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseGuest, errors.KindAllocation, err, "guest alloc trapped")
	}
	ptr := api.DecodeU32(res[0])
	if ptr == 0 {
		return 0, errors.New(errors.PhaseGuest, errors.KindAllocation).
			Value(size).
			Detail("guest alloc(%d) returned null", size).
			Build()
	}
	if align > 1 && ptr%align != 0 {
		return 0, errors.New(errors.PhaseGuest, errors.KindAllocation).
			Value(ptr).
			Detail("guest alloc returned %d, not aligned to %d", ptr, align).
			Build()
	}
	return ptr, nil
}
