// Package native reinterprets component storage owned by an ECS world as
// fixed-length views that job workers index without copying.
//
// This is the only package in the module that turns unsafe.Pointer into typed
// data. Everything else holds an Array, a Column or a Block. A view is valid
// from the moment it is created until Release; during that window the memory
// under it must not be reallocated or resized by its owner. Checked builds
// enforce this through the view's safety.Token; release builds trust the caller.
package native

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/l1jgo/ecsjobs/internal/jobs/safety"
)

var (
	ErrLayout   = errors.New("native: incompatible element layout")
	ErrNotPlain = errors.New("native: element type is not plain data")
)

// Raw describes memory reported by a storage provider: Len elements, Stride
// bytes apart, with the payload Offset bytes into each element.
type Raw struct {
	Ptr    unsafe.Pointer
	Len    int
	Stride uintptr
	Offset uintptr
}

// RawOf describes the memory of s as identity-layout elements.
func RawOf[S any](s []S) Raw {
	return Raw{
		Ptr:    unsafe.Pointer(unsafe.SliceData(s)),
		Len:    len(s),
		Stride: sizeOf[S](),
	}
}

// Padded is the record shape of storage that prefixes every payload with a
// one-byte tag. Field order is fixed: a view of Padded[T] over such storage
// reads and writes Data at the same address the storage itself uses.
type Padded[T any] struct {
	_    byte
	Data T
}

// Array is a view whose element type has the same layout as the memory under it.
type Array[T any] struct {
	ptr unsafe.Pointer
	n   int
	tok safety.Token
}

// Wrap views src as a []D without copying. D must be plain data with the
// same size as S, no stricter alignment, and (for structs) the same field
// offsets. The returned view holds a token named name; src may be nil.
func Wrap[S, D any](src []S, name string, ver safety.Versioned) (Array[D], error) {
	st, dt := reflect.TypeFor[S](), reflect.TypeFor[D]()
	if !Plain(st) || !Plain(dt) {
		return Array[D]{}, fmt.Errorf("wrap %s as %s: %w", st, dt, ErrNotPlain)
	}
	if dt.Align() > st.Align() || !sameShape(st, dt) {
		return Array[D]{}, fmt.Errorf("wrap %s as %s: %w", st, dt, ErrLayout)
	}
	ptr := unsafe.Pointer(unsafe.SliceData(src))
	if len(src) == 0 {
		ptr = nil
	}
	return Array[D]{ptr: ptr, n: len(src), tok: safety.Acquire(name, ptr, ver)}, nil
}

func (a Array[T]) Len() int { return a.n }

// Ref returns a pointer to element i.
func (a Array[T]) Ref(i int) *T {
	a.tok.Check()
	if uint(i) >= uint(a.n) {
		panic(outOfRange(i, a.n))
	}
	return (*T)(unsafe.Add(a.ptr, uintptr(i)*sizeOf[T]()))
}

func (a Array[T]) At(i int) T     { return *a.Ref(i) }
func (a Array[T]) Set(i int, v T) { *a.Ref(i) = v }

// Release ends the view. The view must not be used afterwards.
func (a Array[T]) Release() { a.tok.Release() }

// Block is an acquired, untyped view over Raw memory. ColumnOf gives it a type.
type Block struct {
	raw  Raw
	name string
	tok  safety.Token
}

// Alias acquires a view over raw named name. ver is consulted on Release to
// detect storage that changed while the view was live; it may be nil.
func Alias(raw Raw, name string, ver safety.Versioned) (Block, error) {
	if raw.Len < 0 {
		return Block{}, fmt.Errorf("alias %s: negative length %d: %w", name, raw.Len, ErrLayout)
	}
	if raw.Len > 0 && (raw.Ptr == nil || raw.Stride == 0 || raw.Offset >= raw.Stride) {
		return Block{}, fmt.Errorf("alias %s: stride %d offset %d: %w", name, raw.Stride, raw.Offset, ErrLayout)
	}
	if raw.Len == 0 {
		raw.Ptr = nil
	}
	return Block{raw: raw, name: name, tok: safety.Acquire(name, raw.Ptr, ver)}, nil
}

func (b Block) Len() int     { return b.raw.Len }
func (b Block) Name() string { return b.name }
func (b Block) Release()     { b.tok.Release() }

// Column is a strided view of the T payload inside each element of a Block.
// It shares the Block's token.
type Column[T any] struct {
	ptr    unsafe.Pointer
	n      int
	stride uintptr
	tok    safety.Token
}

// ColumnOf types b as a column of T. The payload must fit inside the stride
// the provider reported and sit on a T-aligned offset.
func ColumnOf[T any](b Block) (Column[T], error) {
	typ := reflect.TypeFor[T]()
	if !Plain(typ) {
		return Column[T]{}, fmt.Errorf("column %s of %s: %w", b.name, typ, ErrNotPlain)
	}
	if b.raw.Len == 0 {
		return Column[T]{tok: b.tok}, nil
	}
	align := uintptr(typ.Align())
	if b.raw.Offset+typ.Size() > b.raw.Stride || b.raw.Offset%align != 0 || b.raw.Stride%align != 0 {
		return Column[T]{}, fmt.Errorf("column %s of %s (stride %d, offset %d): %w",
			b.name, typ, b.raw.Stride, b.raw.Offset, ErrLayout)
	}
	return Column[T]{
		ptr:    unsafe.Add(b.raw.Ptr, b.raw.Offset),
		n:      b.raw.Len,
		stride: b.raw.Stride,
		tok:    b.tok,
	}, nil
}

func (c Column[T]) Len() int { return c.n }

// Ref returns a pointer to the payload of element i.
func (c Column[T]) Ref(i int) *T {
	c.tok.Check()
	if uint(i) >= uint(c.n) {
		panic(outOfRange(i, c.n))
	}
	return (*T)(unsafe.Add(c.ptr, uintptr(i)*c.stride))
}

func (c Column[T]) At(i int) T     { return *c.Ref(i) }
func (c Column[T]) Set(i int, v T) { *c.Ref(i) = v }

var plainTypes sync.Map // reflect.Type -> bool

// Plain reports whether t holds no pointers of any kind, so its bytes can be
// shared with another goroutine through an aliased view.
func Plain(t reflect.Type) bool {
	if v, ok := plainTypes.Load(t); ok {
		return v.(bool)
	}
	ok := plain(t)
	plainTypes.Store(t, ok)
	return ok
}

func plain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return plain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !plain(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// sameShape reports whether memory laid out as s can be read as d.
func sameShape(s, d reflect.Type) bool {
	if s == d {
		return true
	}
	if s.Size() != d.Size() {
		return false
	}
	switch {
	case s.Kind() == reflect.Struct && d.Kind() == reflect.Struct:
		if s.NumField() != d.NumField() {
			return false
		}
		for i := 0; i < s.NumField(); i++ {
			sf, df := s.Field(i), d.Field(i)
			if sf.Offset != df.Offset || !sameShape(sf.Type, df.Type) {
				return false
			}
		}
		return true
	case s.Kind() == reflect.Array && d.Kind() == reflect.Array:
		return s.Len() == d.Len() && sameShape(s.Elem(), d.Elem())
	default:
		return s.Kind() == d.Kind()
	}
}

func sizeOf[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

func outOfRange(i, n int) string {
	return fmt.Sprintf("native: index out of range [%d] with length %d", i, n)
}
