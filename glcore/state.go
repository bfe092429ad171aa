package glcore

import "github.com/go-gl/gl/v4.6-core/gl"

// SetViewport sets the GL viewport rectangle.
func SetViewport(x, y, w, h int32) {
	gl.Viewport(x, y, w, h)
}

// EnableDepthTestLess enables the depth test with the LESS comparison
// function, the rasterizer's non-AB-mode scene pass setup.
func EnableDepthTestLess() {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
}

// DisableDepthTest disables the depth test, used by the TAA display pass.
func DisableDepthTest() {
	gl.Disable(gl.DEPTH_TEST)
}

// DisableBlend disables blending, used by the warp and average passes.
func DisableBlend() {
	gl.Disable(gl.BLEND)
}

// ClearColorDepth clears the currently bound framebuffer's color and
// depth buffers.
func ClearColorDepth() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// HasExtension reports whether the current context advertises the named
// GL extension, queried via the indexed extension string API (core
// profile has no single GL_EXTENSIONS string). Used to decide between
// the multi-pass subgroup radix sort and the fallback sorter at Init.
func HasExtension(name string) bool {
	var count int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &count)
	for i := int32(0); i < count; i++ {
		if gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))) == name {
			return true
		}
	}
	return false
}
