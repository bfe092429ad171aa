package glcore

import (
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
)

// AttribLayout describes one vertex attribute's binding within a
// VertexArray, per spec §4.1's VertexArrayObject.AddAttribute.
type AttribLayout struct {
	Location  uint32
	Type      uint32 // gl.FLOAT, gl.UNSIGNED_INT, ...
	Count     int32  // components per attribute, e.g. 3 for a vec3
	Normalize bool
}

// VertexArray is an owning handle to a GPU vertex array object binding
// together a vertex buffer's attribute layout and an optional index
// buffer.
type VertexArray struct {
	id      uint32
	stride  int32
	nextOff int32
}

// NewVAO allocates an empty vertex array object.
func NewVAO() VertexArray {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return VertexArray{id: id}
}

// ID returns the underlying GL vertex array name.
func (v VertexArray) ID() uint32 { return v.id }

// Bind makes v the current vertex array.
func (v VertexArray) Bind() { gl.BindVertexArray(v.id) }

// Unbind clears the current vertex array binding.
func (v VertexArray) Unbind() { gl.BindVertexArray(0) }

// Delete releases v's GL name. Attached buffers are not affected.
func (v VertexArray) Delete() {
	id := v.id
	gl.DeleteVertexArrays(1, &id)
}

func sizeOfGLType(xtype uint32) int32 {
	switch xtype {
	case gl.FLOAT, gl.UNSIGNED_INT, gl.INT:
		return 4
	case gl.UNSIGNED_SHORT, gl.SHORT:
		return 2
	case gl.UNSIGNED_BYTE, gl.BYTE:
		return 1
	case gl.DOUBLE:
		return 8
	default:
		return 4
	}
}

// AddAttribute binds buf as the source of a vertex attribute at the
// layout's location, assuming tightly packed, sequentially offset
// attributes within a single interleaved buffer: call AddAttribute once
// per attribute in declaration order after SetStride. v must be bound.
func (v *VertexArray) AddAttribute(buf Buffer, layout AttribLayout) {
	buf.Bind()
	gl.EnableVertexAttribArray(layout.Location)
	offset := v.nextOff
	if layout.Type == gl.FLOAT || layout.Normalize {
		gl.VertexAttribPointer(layout.Location, layout.Count, layout.Type, layout.Normalize, v.stride, unsafe.Pointer(uintptr(offset)))
	} else {
		gl.VertexAttribIPointer(layout.Location, layout.Count, layout.Type, v.stride, unsafe.Pointer(uintptr(offset)))
	}
	v.nextOff += layout.Count * sizeOfGLType(layout.Type)
}

// SetStride fixes the interleaved vertex stride in bytes, must be called
// before the first AddAttribute if the buffer is interleaved; a stride
// of 0 tells GL to infer tight packing from the most recent
// AddAttribute call alone, which only works for single-attribute
// buffers.
func (v *VertexArray) SetStride(stride int32) {
	v.stride = stride
	v.nextOff = 0
}

// AddAttributeAt binds a vertex attribute at an explicit byte offset
// within buf, for interleaved layouts whose per-attribute offsets are
// supplied by an external source (e.g. a point cloud's record layout)
// rather than packed sequentially by AddAttribute. v must be bound.
func (v *VertexArray) AddAttributeAt(buf Buffer, layout AttribLayout, stride int32, offset int) {
	buf.Bind()
	gl.EnableVertexAttribArray(layout.Location)
	gl.VertexAttribPointer(layout.Location, layout.Count, layout.Type, layout.Normalize, stride, unsafe.Pointer(uintptr(offset)))
}

// SetElementBuffer binds buf as v's element array (index) buffer. v must
// be bound first.
func (v *VertexArray) SetElementBuffer(buf Buffer) {
	buf.Bind()
}

// DrawArrays issues a non-indexed draw call of count vertices, starting
// at first, using the given primitive mode. v must be bound and a
// program must be in use.
func DrawArrays(mode uint32, first, count int32) error {
	gl.DrawArrays(mode, first, count)
	return Err()
}

// DrawElements issues an indexed draw of count uint32 indices starting at
// the bound element buffer's beginning, the call the rasterizer uses for
// both the AB-mode sorted prefix and the non-AB full-N draw.
func DrawElements(mode uint32, count int32) error {
	gl.DrawElements(mode, count, gl.UNSIGNED_INT, nil)
	return Err()
}

const (
	PrimitiveTriangles     = gl.TRIANGLES
	PrimitiveTriangleStrip = gl.TRIANGLE_STRIP
	PrimitivePoints        = gl.POINTS
)
