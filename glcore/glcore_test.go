package glcore

import (
	"testing"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// newTestContext creates a hidden 1x1 GL 4.6 core context for exercising
// real GPU resource calls in tests, skipping the test when no display is
// available (CI, headless containers), matching the teacher's own
// attempt-then-skip convention for GL-dependent tests.
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
	window, err := glfw.CreateWindow(1, 1, "glcore_test", nil, nil)
	if err != nil {
		glfw.Terminate()
		t.Skip("no window available:", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		t.Skip("gl.Init failed:", err)
	}
	ClearErrors()
	return glfw.Terminate
}

func TestBufferUploadAndRead(t *testing.T) {
	term := newTestContext(t)
	defer term()

	data := []float32{1, 2, 3, 4}
	buf, err := NewBuffer(TargetArray, data, FlagMapRead)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Delete()

	got := make([]float32, len(data))
	if err := Read(got, buf); err != nil {
		t.Fatal(err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("element %d: want %v, got %v", i, data[i], got[i])
		}
	}
}

func TestMutableBufferUpdate(t *testing.T) {
	term := newTestContext(t)
	defer term()

	buf, err := NewMutableBuffer(TargetArray, []uint32{0, 0, 0}, UsageDynamicDraw)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Delete()

	want := []uint32{5, 6, 7}
	if err := Update(buf, want); err != nil {
		t.Fatal(err)
	}
	got := make([]uint32, 3)
	if err := Read(got, buf); err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestVAOAttributeBinding(t *testing.T) {
	term := newTestContext(t)
	defer term()

	data := []float32{0, 0, 1, 0, 0, 1}
	buf, err := NewBuffer(TargetArray, data, FlagNone)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Delete()

	vao := NewVAO()
	defer vao.Delete()
	vao.Bind()
	defer vao.Unbind()
	vao.AddAttributeAt(buf, AttribLayout{Location: 0, Type: gl.FLOAT, Count: 2}, 2*4, 0)
	if err := Err(); err != nil {
		t.Fatal(err)
	}
}

func TestFrameBufferCompleteness(t *testing.T) {
	term := newTestContext(t)
	defer term()

	tex, err := NewTexture2D[float32](4, 4, gl.RGBA32F, gl.RGBA, gl.FLOAT, DefaultTAAParams, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Delete()

	fbo := NewFrameBuffer()
	defer fbo.Delete()
	fbo.Bind()
	fbo.AttachColor(tex, gl.COLOR_ATTACHMENT0)
	if !fbo.IsComplete() {
		t.Error("want complete framebuffer with a single RGBA32F color attachment")
	}
	UnbindToDefault()
}

func TestHasExtensionDoesNotPanic(t *testing.T) {
	term := newTestContext(t)
	defer term()
	_ = HasExtension("GL_ARB_shader_subgroup")
}
