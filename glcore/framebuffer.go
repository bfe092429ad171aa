package glcore

import "github.com/go-gl/gl/v4.6-core/gl"

// FrameBuffer is an owning handle to a GPU framebuffer object. Its color,
// depth and stencil attachments are shared references to Textures that
// outlive the FrameBuffer: destroying a FrameBuffer never destroys its
// attached textures, since Texture's GL name is owned independently and a
// FrameBuffer only ever holds a copy of the small Texture value (Go's GC,
// not reference counting, keeps the underlying GPU object's Go-side
// bookkeeping alive as long as any Texture value referencing it is live;
// the GPU-side texture name itself is released only by an explicit
// Texture.Delete call from whichever owner is responsible for it).
type FrameBuffer struct {
	id      uint32
	colors  map[uint32]Texture // keyed by GL attachment enum (COLOR_ATTACHMENT0, ...)
	depth   *Texture
	stencil *Texture
}

// NewFrameBuffer allocates an empty framebuffer with no attachments.
func NewFrameBuffer() FrameBuffer {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return FrameBuffer{id: id, colors: make(map[uint32]Texture)}
}

// ID returns the underlying GL framebuffer name.
func (f FrameBuffer) ID() uint32 { return f.id }

// Bind binds f as the current draw/read framebuffer.
func (f FrameBuffer) Bind() { gl.BindFramebuffer(gl.FRAMEBUFFER, f.id) }

// UnbindToDefault binds the default (window-system) framebuffer, fbo 0.
func UnbindToDefault() { gl.BindFramebuffer(gl.FRAMEBUFFER, 0) }

// BindExternal binds an externally-owned framebuffer name, used for the
// caller-supplied present framebuffer (spec §4.6 SetPresentFbo).
func BindExternal(fbo uint32) { gl.BindFramebuffer(gl.FRAMEBUFFER, fbo) }

// AttachColor attaches tex as the color attachment at the given slot
// (e.g. gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1). Attaching to an
// already-occupied slot replaces the previous attachment; f must be bound.
func (f *FrameBuffer) AttachColor(tex Texture, attachment uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, tex.id, 0)
	f.colors[attachment] = tex
}

// ColorAttachment returns the texture attached at the given slot, if any.
func (f FrameBuffer) ColorAttachment(attachment uint32) (Texture, bool) {
	t, ok := f.colors[attachment]
	return t, ok
}

// AttachDepth attaches tex as the depth attachment; f must be bound.
func (f *FrameBuffer) AttachDepth(tex Texture) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, tex.id, 0)
	f.depth = &tex
}

// AttachStencil attaches tex as the stencil attachment; f must be bound.
func (f *FrameBuffer) AttachStencil(tex Texture) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.STENCIL_ATTACHMENT, gl.TEXTURE_2D, tex.id, 0)
	f.stencil = &tex
}

// SetDrawBuffers declares which color attachments receive fragment shader
// outputs, used by the average pass which writes to two color targets at
// once.
func SetDrawBuffers(attachments ...uint32) {
	gl.DrawBuffers(int32(len(attachments)), &attachments[0])
}

// IsComplete queries GPU-side framebuffer completeness. f must be bound.
func (f FrameBuffer) IsComplete() bool {
	return gl.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
}

// Delete releases f's GL name. Attached textures are not affected.
func (f FrameBuffer) Delete() {
	id := f.id
	gl.DeleteFramebuffers(1, &id)
}
