package splat

import (
	"testing"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gsplat/core/glcore"
)

// newTestContext creates a hidden 1x1 GL 4.6 core context, skipping the
// test when no display is available.
func newTestContext(t *testing.T) func() {
	t.Helper()
	if err := glfw.Init(); err != nil {
		t.Skip("no display available:", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.False)
	window, err := glfw.CreateWindow(1, 1, "splat_test", nil, nil)
	if err != nil {
		glfw.Terminate()
		t.Skip("no window available:", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		t.Skip("gl.Init failed:", err)
	}
	glcore.ClearErrors()
	return glfw.Terminate
}
