package wasmhost

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

func memoryOf(m api.Module) (api.Memory, error) {
	mem := m.Memory()
	if mem == nil {
		return nil, ErrNoMemory
	}
	return mem, nil
}

// readCString reads the NUL-terminated string at ptr.
func readCString(m api.Module, ptr uint32) (string, error) {
	mem, err := memoryOf(m)
	if err != nil {
		return "", err
	}
	size := mem.Size()
	if ptr >= size {
		return "", fmt.Errorf("%w: string at %#x", ErrOutOfBounds, ptr)
	}
	buf, ok := mem.Read(ptr, size-ptr)
	if !ok {
		return "", fmt.Errorf("%w: string at %#x", ErrOutOfBounds, ptr)
	}
	end := bytes.IndexByte(buf, 0)
	if end < 0 {
		return "", fmt.Errorf("%w at %#x", ErrUnterminated, ptr)
	}
	return string(buf[:end]), nil
}

// readBytes copies n bytes at ptr.
func readBytes(m api.Module, ptr, n uint32) ([]byte, error) {
	mem, err := memoryOf(m)
	if err != nil {
		return nil, err
	}
	buf, ok := mem.Read(ptr, n)
	if !ok {
		return nil, fmt.Errorf("%w: %d bytes at %#x", ErrOutOfBounds, n, ptr)
	}
	return bytes.Clone(buf), nil
}

// readPointerList reads u32 values at ptr until the first zero.
func readPointerList(m api.Module, ptr uint32) ([]uint32, error) {
	mem, err := memoryOf(m)
	if err != nil {
		return nil, err
	}
	var out []uint32
	for off := ptr; ; off += 4 {
		v, ok := mem.ReadUint32Le(off)
		if !ok {
			return nil, fmt.Errorf("%w: list entry at %#x", ErrOutOfBounds, off)
		}
		if v == 0 {
			return out, nil
		}
		out = append(out, v)
	}
}

func writeUint32(m api.Module, ptr, v uint32) error {
	mem, err := memoryOf(m)
	if err != nil {
		return err
	}
	if !mem.WriteUint32Le(ptr, v) {
		return fmt.Errorf("%w: u32 at %#x", ErrOutOfBounds, ptr)
	}
	return nil
}

func writeFloat32(m api.Module, ptr uint32, v float32) error {
	mem, err := memoryOf(m)
	if err != nil {
		return err
	}
	if !mem.WriteFloat32Le(ptr, v) {
		return fmt.Errorf("%w: f32 at %#x", ErrOutOfBounds, ptr)
	}
	return nil
}

func writeBytes(m api.Module, ptr uint32, data []byte) error {
	mem, err := memoryOf(m)
	if err != nil {
		return err
	}
	if !mem.Write(ptr, data) {
		return fmt.Errorf("%w: %d bytes at %#x", ErrOutOfBounds, len(data), ptr)
	}
	return nil
}

// alloc copies data into a buffer from the guest's malloc.
func alloc(ctx context.Context, m api.Module, data []byte) (uint32, error) {
	malloc := m.ExportedFunction("malloc")
	if malloc == nil {
		return 0, fmt.Errorf("%w: malloc", ErrNoExport)
	}
	res, err := malloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("malloc(%d): %w", len(data), err)
	}
	ptr := api.DecodeU32(res[0])
	if ptr == 0 {
		// malloc(0) may return NULL.
		if len(data) == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %d bytes", ErrAllocFailed, len(data))
	}
	if err := writeBytes(m, ptr, data); err != nil {
		return 0, err
	}
	return ptr, nil
}

// allocCString copies s and a NUL terminator into guest memory.
func allocCString(ctx context.Context, m api.Module, s string) (uint32, error) {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return alloc(ctx, m, buf)
}
