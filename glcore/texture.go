package glcore

import (
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
)

// FilterMode is a texture minification/magnification filter.
type FilterMode int32

const (
	Nearest FilterMode = gl.NEAREST
	Linear  FilterMode = gl.LINEAR
)

// WrapMode is a texture coordinate wrap mode.
type WrapMode int32

const (
	ClampToEdge WrapMode = gl.CLAMP_TO_EDGE
	Repeat      WrapMode = gl.REPEAT
)

// TextureParams groups the sampler parameters of a Texture, per spec
// §4.1's Texture params enumeration.
type TextureParams struct {
	MagFilter FilterMode
	MinFilter FilterMode
	SWrap     WrapMode
	TWrap     WrapMode
}

// DefaultTAAParams is the sampler configuration the temporal pipeline's
// ping-pong and scene textures use: nearest filtering, clamped edges, so
// reprojection never blends across the image border.
var DefaultTAAParams = TextureParams{
	MagFilter: Nearest,
	MinFilter: Nearest,
	SWrap:     ClampToEdge,
	TWrap:     ClampToEdge,
}

// Texture is an owning handle to a 2D GPU texture.
type Texture struct {
	id             uint32
	width, height  int
	internalFormat int32
	format         uint32
	xtype          uint32
}

// NewTexture2D allocates a 2D texture with the given dimensions and
// formats. data may be nil to allocate storage without initial content,
// as is done for every render-target texture in the TAA pipeline.
func NewTexture2D[T any](width, height int, internalFormat int32, format, xtype uint32, params TextureParams, data []T) (Texture, error) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}
	var id uint32
	gl.GenTextures(1, &id)
	tex := Texture{id: id, width: width, height: height, internalFormat: internalFormat, format: format, xtype: xtype}
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, int32(width), int32(height), 0, format, xtype, ptr)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(params.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, int32(params.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, int32(params.SWrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, int32(params.TWrap))
	return tex, Err()
}

// ID returns the underlying GL texture name.
func (t Texture) ID() uint32 { return t.id }

// Width and Height return the texture's dimensions in texels.
func (t Texture) Width() int  { return t.width }
func (t Texture) Height() int { return t.height }

// BindUnit binds t to the given texture unit for sampling.
func (t Texture) BindUnit(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

// BindImage binds t to an image unit for image-load-store access, as the
// warp pass's output textures require (spec §4.5).
func (t Texture) BindImage(unit uint32, access uint32) {
	gl.BindImageTexture(unit, t.id, 0, false, 0, access, uint32(t.internalFormat))
}

// ClearToZero clears the whole texture to zero, the operation
// resetTemporalTextures uses on every warp texture.
func (t Texture) ClearToZero() error {
	zeros := [4]float32{}
	gl.ClearTexImage(t.id, 0, t.format, t.xtype, unsafe.Pointer(&zeros[0]))
	return Err()
}

// Delete releases t's GL name. t must not be used afterward.
func (t Texture) Delete() {
	id := t.id
	gl.DeleteTextures(1, &id)
}
