package glcore

import (
	"errors"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
)

// Target names a GL buffer binding point.
type Target uint32

const (
	TargetArray         Target = gl.ARRAY_BUFFER
	TargetElementArray  Target = gl.ELEMENT_ARRAY_BUFFER
	TargetShaderStorage Target = gl.SHADER_STORAGE_BUFFER
	TargetAtomicCounter Target = gl.ATOMIC_COUNTER_BUFFER
	TargetCopyRead      Target = gl.COPY_READ_BUFFER
	TargetCopyWrite     Target = gl.COPY_WRITE_BUFFER
)

// StorageFlag controls how a Buffer's storage is allocated. See NewBuffer.
type StorageFlag uint32

const (
	FlagNone           StorageFlag = 0
	FlagDynamicStorage StorageFlag = gl.DYNAMIC_STORAGE_BIT
	FlagMapRead        StorageFlag = gl.MAP_READ_BIT
	FlagMapWrite       StorageFlag = gl.MAP_WRITE_BIT
)

// Usage hints a mutable Buffer's access pattern to the driver, used only
// by NewMutableBuffer (glBufferData path).
type Usage uint32

const (
	UsageStaticDraw  Usage = gl.STATIC_DRAW
	UsageDynamicDraw Usage = gl.DYNAMIC_DRAW
	UsageStreamDraw  Usage = gl.STREAM_DRAW
)

// Buffer is an owning handle to a GPU buffer object: a shader-storage
// buffer, index buffer, vertex buffer or atomic-counter buffer, per spec
// §4.1's BufferObject. Buffers created with NewBuffer use immutable
// storage (glBufferStorage); content is only updatable if FlagDynamicStorage
// was given at creation. Buffers created with NewMutableBuffer use classic
// glBufferData storage and can always be updated, orphaning when the new
// content's size differs from the buffer's current allocation.
type Buffer struct {
	id       uint32
	target   uint32
	size     int
	elemSize int
	storage  bool // true if allocated via glBufferStorage (NewBuffer)
	mutable  bool // true if content can be written after creation
	usage    uint32
}

// NewBuffer allocates an immutable-storage buffer of target holding data,
// with the given storage flags. Pass FlagDynamicStorage to allow later
// Update calls.
func NewBuffer[T any](target Target, data []T, flags StorageFlag) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, errors.New("glcore: NewBuffer requires non-empty data")
	}
	var b Buffer
	b.target = uint32(target)
	b.elemSize = int(unsafe.Sizeof(data[0]))
	b.size = b.elemSize * len(data)
	b.storage = true
	b.mutable = flags&FlagDynamicStorage != 0
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(b.target, b.id)
	gl.BufferStorage(b.target, b.size, unsafe.Pointer(&data[0]), uint32(flags))
	return b, Err()
}

// NewBufferUninitialized allocates count elements of immutable storage
// whose initial contents are undefined (no data is uploaded), used for
// buffers the GPU writes into before any CPU-side data
// exists (e.g. the histogram buffer, which the histogram kernel clears
// implicitly on each pass).
func NewBufferUninitialized[T any](target Target, count int, flags StorageFlag) (Buffer, error) {
	if count <= 0 {
		return Buffer{}, errors.New("glcore: NewBufferUninitialized requires count > 0")
	}
	var z T
	var b Buffer
	b.target = uint32(target)
	b.elemSize = int(unsafe.Sizeof(z))
	b.size = b.elemSize * count
	b.storage = true
	b.mutable = flags&FlagDynamicStorage != 0
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(b.target, b.id)
	gl.BufferStorage(b.target, b.size, nil, uint32(flags))
	return b, Err()
}

// NewMutableBuffer allocates a classic glBufferData buffer. Content can
// always be updated via Update, orphaning on a size change.
func NewMutableBuffer[T any](target Target, data []T, usage Usage) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, errors.New("glcore: NewMutableBuffer requires non-empty data")
	}
	var b Buffer
	b.target = uint32(target)
	b.elemSize = int(unsafe.Sizeof(data[0]))
	b.size = b.elemSize * len(data)
	b.mutable = true
	b.usage = uint32(usage)
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(b.target, b.id)
	gl.BufferData(b.target, b.size, unsafe.Pointer(&data[0]), b.usage)
	return b, Err()
}

// ID returns the underlying GL buffer name.
func (b Buffer) ID() uint32 { return b.id }

// Size returns the buffer's allocated size in bytes.
func (b Buffer) Size() int { return b.size }

// Bind binds b to its target.
func (b Buffer) Bind() { gl.BindBuffer(b.target, b.id) }

// BindBase binds b to an indexed binding point on its target, used for
// SSBO and atomic-counter-buffer bindings read by compute shaders.
func (b Buffer) BindBase(index uint32) {
	gl.BindBufferBase(b.target, index, b.id)
}

// Update writes data to the buffer starting at offset 0. For immutable
// storage (NewBuffer) this requires FlagDynamicStorage to have been set
// at creation and the byte length must match exactly (subdata path only:
// immutable storage cannot be resized). For mutable buffers
// (NewMutableBuffer) a size change orphans the allocation via a fresh
// BufferData call before the subdata write.
func Update[T any](b Buffer, data []T) error {
	if !b.mutable {
		return NewError(KindPrecondition, "Update called on a buffer without FlagDynamicStorage", nil)
	}
	if len(data) == 0 {
		return errors.New("glcore: Update requires non-empty data")
	}
	elemSize := int(unsafe.Sizeof(data[0]))
	newSize := elemSize * len(data)
	b.Bind()
	if b.storage {
		if newSize != b.size {
			return NewError(KindPrecondition, "Update size mismatch on immutable storage buffer", nil)
		}
		gl.BufferSubData(b.target, 0, newSize, unsafe.Pointer(&data[0]))
		return Err()
	}
	if newSize != b.size {
		// Orphan: reallocate storage so the driver doesn't stall on
		// in-flight GPU reads of the previous contents.
		gl.BufferData(b.target, newSize, nil, b.usage)
	}
	gl.BufferSubData(b.target, 0, newSize, unsafe.Pointer(&data[0]))
	return Err()
}

// Read maps b for reading and copies its contents into dst. b must have
// been created with FlagMapRead.
func Read[T any](dst []T, b Buffer) error {
	if len(dst) == 0 {
		return errors.New("glcore: Read requires non-empty dst")
	}
	elemSize := int(unsafe.Sizeof(dst[0]))
	n := elemSize * len(dst)
	if n > b.size {
		return errors.New("glcore: Read requested more bytes than the buffer holds")
	}
	b.Bind()
	ptr := gl.MapBufferRange(b.target, 0, n, gl.MAP_READ_BIT)
	if ptr == nil {
		if err := Err(); err != nil {
			return err
		}
		return errors.New("glcore: MapBufferRange returned nil")
	}
	defer gl.UnmapBuffer(b.target)
	src := unsafe.Slice((*byte)(ptr), n)
	dstBytes := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), n)
	copy(dstBytes, src)
	return Err()
}

// CopyBufferSubData copies n bytes from src to dst via a GPU-to-GPU
// buffer copy, binding both to the COPY_READ/COPY_WRITE targets. This is
// how the sort pipeline promotes its winning value buffer into the splat
// VAO's element buffer (spec §4.3 Stage D).
func CopyBufferSubData(src, dst Buffer, n int) error {
	gl.BindBuffer(gl.COPY_READ_BUFFER, src.id)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, dst.id)
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, n)
	return Err()
}

// Delete releases the buffer's GL name. b must not be used afterward.
func (b Buffer) Delete() {
	id := b.id
	gl.DeleteBuffers(1, &id)
}
