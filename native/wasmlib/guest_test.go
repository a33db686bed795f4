package wasmlib

import (
	"context"
	"testing"
)

// A tiny guest standing in for a cairo build. It keeps one surface whose
// reference count, user data and mime data live in fixed memory cells, runs
// its destroy callbacks through the table exactly like cairo does, and
// exports callers for the host trampolines.
const (
	cellRefs        = 8
	cellUserData    = 12
	cellUserDestroy = 16
	cellFrees       = 20
	cellMimeData    = 24
	cellMimeDestroy = 28
	cellHeap        = 32
	versionAddr     = 64
	heapBase        = 1024

	stubSurface = 4096
	stubVersion = "1.18.0-stub"
)

const (
	opIf           = 0x04
	opEnd          = 0x0b
	opCall         = 0x10
	opCallIndirect = 0x11
	opLocalGet     = 0x20
	opI32Load      = 0x28
	opI32Store     = 0x36
	opI32Const     = 0x41
	opI32Eqz       = 0x45
	opI32Add       = 0x6a
	opI32Sub       = 0x6b
	opI32And       = 0x71
	blockEmpty     = 0x40

	valI32 = 0x7f
	valF64 = 0x7c
)

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func wasmName(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func wasmVec(items ...[]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func wasmSection(id byte, body []byte) []byte {
	out := append([]byte{id}, uleb(uint32(len(body)))...)
	return append(out, body...)
}

func funcType(params, results []byte) []byte {
	out := []byte{0x60}
	out = append(out, uleb(uint32(len(params)))...)
	out = append(out, params...)
	out = append(out, uleb(uint32(len(results)))...)
	return append(out, results...)
}

// asm appends instructions.
type asm []byte

func (a asm) i32(v int32) asm   { return append(append(a, opI32Const), sleb(v)...) }
func (a asm) get(i uint32) asm  { return append(append(a, opLocalGet), uleb(i)...) }
func (a asm) call(f uint32) asm { return append(append(a, opCall), uleb(f)...) }
func (a asm) load() asm         { return append(a, opI32Load, 2, 0) }
func (a asm) store() asm        { return append(a, opI32Store, 2, 0) }

func (a asm) op(codes ...byte) asm { return append(a, codes...) }

func (a asm) callIndirect(typ uint32) asm {
	return append(append(append(a, opCallIndirect), uleb(typ)...), 0)
}

// add adds delta to the cell at addr.
func (a asm) add(addr, delta int32) asm {
	return a.i32(addr).i32(addr).load().i32(delta).op(opI32Add).store()
}

// fire calls the destroy function stored at fn with the closure stored at
// data, when one is set.
func (a asm) fire(data, fn int32) asm {
	return a.i32(fn).load().op(opIf, blockEmpty).
		i32(data).load().i32(fn).load().callIndirect(typeVoid1).
		op(opEnd)
}

const (
	typeVoid0 = iota
	typeI32Of0
	typeI32Of1
	typeVoid1
	typeI32Of4
	typeI32Of6
	typeI32Of5
	typeStreamCreate
	typeI32Of3
)

type guestFunc struct {
	typ     uint32
	code    asm
	exports []string
}

// stubGuest encodes the guest module. Function 0..2 are the imported host
// trampolines; the trampoline function the guest hands to cairo sits at
// table index 1.
func stubGuest() []byte {
	i32s := func(n int) []byte {
		b := make([]byte, n)
		for i := range b {
			b[i] = valI32
		}
		return b
	}
	types := [][]byte{
		typeVoid0:        funcType(nil, nil),
		typeI32Of0:       funcType(nil, i32s(1)),
		typeI32Of1:       funcType(i32s(1), i32s(1)),
		typeVoid1:        funcType(i32s(1), nil),
		typeI32Of4:       funcType(i32s(4), i32s(1)),
		typeI32Of6:       funcType(i32s(6), i32s(1)),
		typeI32Of5:       funcType(i32s(5), i32s(1)),
		typeStreamCreate: funcType([]byte{valI32, valI32, valF64, valF64}, i32s(1)),
		typeI32Of3:       funcType(i32s(3), i32s(1)),
	}

	imports := [][]byte{
		append(append(wasmName(HostModule), wasmName("destroy")...), 0x00, typeVoid1),
		append(append(wasmName(HostModule), wasmName("read")...), 0x00, typeI32Of3),
		append(append(wasmName(HostModule), wasmName("write")...), 0x00, typeI32Of3),
	}
	const hostDestroy, hostRead, hostWrite = 0, 1, 2
	const firstFunc = 3

	create := asm{}.i32(cellRefs).i32(1).store().i32(stubSurface)
	funcs := []guestFunc{
		{typeVoid1, asm{}.get(0).call(hostDestroy), []string{"call_destroy"}},
		{typeVoid0, asm{}, nil},
		{typeI32Of0, asm{}.i32(1), []string{"bind_destroy_func"}},
		{typeI32Of0, asm{}.i32(0), []string{"bind_read_func", "bind_write_func"}},
		{typeI32Of0, asm{}.i32(versionAddr), []string{"cairo_version_string"}},
		{typeI32Of1, asm{}.add(cellRefs, 1).get(0), []string{"cairo_surface_reference"}},
		{typeI32Of1, asm{}.i32(cellRefs).load(), []string{"cairo_surface_get_reference_count"}},
		{typeI32Of1, asm{}.i32(0), []string{"cairo_surface_status", "cairo_surface_get_type"}},
		{typeVoid1, asm{}.add(cellRefs, -1).
			i32(cellRefs).load().op(opI32Eqz, opIf, blockEmpty).
			fire(cellUserData, cellUserDestroy).
			fire(cellMimeData, cellMimeDestroy).
			op(opEnd), []string{"cairo_surface_destroy"}},
		{typeI32Of4, asm{}.i32(cellUserData).get(2).store().
			i32(cellUserDestroy).get(3).store().i32(0), []string{"cairo_surface_set_user_data"}},
		{typeI32Of6, asm{}.i32(cellMimeData).get(5).store().
			i32(cellMimeDestroy).get(4).store().i32(0), []string{"cairo_surface_set_mime_data"}},
		{typeI32Of1, asm{}.i32(cellHeap).load().op(opI32Eqz, opIf, blockEmpty).
			i32(cellHeap).i32(heapBase).store().op(opEnd).
			i32(cellHeap).load().
			i32(cellHeap).i32(cellHeap).load().get(0).i32(7).op(opI32Add).i32(-8).op(opI32And).op(opI32Add).store(),
			[]string{"malloc"}},
		{typeVoid1, asm{}.add(cellFrees, 1), []string{"free"}},
		{typeI32Of5, create, []string{"cairo_image_surface_create_for_data"}},
		{typeStreamCreate, create, []string{"cairo_svg_surface_create_for_stream"}},
		{typeI32Of3, asm{}.get(0).get(1).get(2).call(hostRead), []string{"call_read"}},
		{typeI32Of3, asm{}.get(0).get(1).get(2).call(hostWrite), []string{"call_write"}},
	}
	const noop = firstFunc + 1

	var fnTypes, codes, exports [][]byte
	named := make(map[string]bool)
	for i, f := range funcs {
		fnTypes = append(fnTypes, uleb(f.typ))
		body := append([]byte{0x00}, f.code...)
		body = append(body, opEnd)
		codes = append(codes, append(uleb(uint32(len(body))), body...))
		for _, n := range f.exports {
			named[n] = true
			exports = append(exports, append(append(wasmName(n), 0x00), uleb(uint32(firstFunc+i))...))
		}
	}
	for _, n := range requiredExports() {
		if !named[n] {
			exports = append(exports, append(append(wasmName(n), 0x00), uleb(noop)...))
		}
	}
	exports = append(exports, append(wasmName("memory"), 0x02, 0x00))

	offset := func(v int32) []byte { return append(asm{}.i32(v), opEnd) }
	table := []byte{0x70, 0x00, 0x02}
	elem := append(append([]byte{0x00}, offset(1)...), wasmVec(uleb(firstFunc))...)
	data := append(append([]byte{0x00}, offset(versionAddr)...), wasmName(stubVersion+"\x00")...)

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, wasmSection(1, wasmVec(types...))...)
	out = append(out, wasmSection(2, wasmVec(imports...))...)
	out = append(out, wasmSection(3, wasmVec(fnTypes...))...)
	out = append(out, wasmSection(4, wasmVec(table))...)
	out = append(out, wasmSection(5, wasmVec([]byte{0x00, 0x01}))...)
	out = append(out, wasmSection(7, wasmVec(exports...))...)
	out = append(out, wasmSection(9, wasmVec(elem))...)
	out = append(out, wasmSection(10, wasmVec(codes...))...)
	out = append(out, wasmSection(11, wasmVec(data))...)
	return out
}

func loadStub(t *testing.T) *Library {
	t.Helper()
	l, err := LoadWithDefaults(context.Background(), stubGuest())
	if err != nil {
		t.Fatalf("Load stub guest: %v", err)
	}
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return l
}

func cell(t *testing.T, l *Library, addr uint32) int32 {
	t.Helper()
	v, err := l.mem.ReadU32(addr)
	if err != nil {
		t.Fatalf("read cell %d: %v", addr, err)
	}
	return int32(v)
}

func setCell(t *testing.T, l *Library, addr uint32, v int32) {
	t.Helper()
	if err := l.mem.WriteU32(addr, uint32(v)); err != nil {
		t.Fatalf("write cell %d: %v", addr, err)
	}
}
