package splat

import (
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/gsplat/core/glcore"
	"github.com/gsplat/core/msmath"
)

// viewChangeEpsilon is the matrix-wise absolute-value threshold of the
// view-change predicate (spec §4.5).
const viewChangeEpsilon = 1e-3

// quadVertices is a fullscreen quad as two triangles (position.xy,
// texCoord.xy interleaved), matching the original renderer's
// drawFullscreenQuad geometry exactly.
var quadVertices = []float32{
	-1, 1, 0, 1,
	-1, -1, 0, 0,
	1, -1, 1, 0,

	-1, 1, 0, 1,
	1, -1, 1, 0,
	1, 1, 1, 1,
}

// eyeTemporalState is the per-eye bookkeeping of spec §3's "Per-eye
// temporal state": the projection·view history and accumulated frame
// count the view-change predicate and bootstrap rule depend on.
type eyeTemporalState struct {
	pvmat      msmath.Mat4
	prevPvmat  msmath.Mat4
	frameCount int
}

// eyeTemporalTextures holds one eye's scene FBO and ping-pong warp
// textures.
type eyeTemporalTextures struct {
	warpAvg pingPong[glcore.Texture]
	warpXYZ pingPong[glcore.Texture]

	currentFrameTex glcore.Texture
	depthTex        glcore.Texture
	sceneFBO        glcore.FrameBuffer
}

// delete releases every GPU object e owns, used by resize before
// replacing an eye's textures at a new resolution.
func (e eyeTemporalTextures) delete() {
	e.warpAvg.Front().Delete()
	e.warpAvg.Back().Delete()
	e.warpXYZ.Front().Delete()
	e.warpXYZ.Back().Delete()
	e.currentFrameTex.Delete()
	e.depthTex.Delete()
	e.sceneFBO.Delete()
}

// taaPipeline is the mode-specific state of the non-AB render modes: the
// reprojection/average/display program trio, the fullscreen quad
// geometry, and every eye's temporal textures and state (spec §4.5, C5).
type taaPipeline struct {
	warpProg    *glcore.Program
	avgProg     *glcore.Program
	displayProg *glcore.Program

	quadVAO glcore.VertexArray
	quadVBO glcore.Buffer

	sumFBO glcore.FrameBuffer

	width, height int
	eyes          []eyeTemporalTextures
	states        []eyeTemporalState
}

// newTAAPipeline compiles the warp/average/display programs and
// allocates per-eye temporal textures for eyeCount eyes at width×height,
// per §4.6 Init step 5 and §9's "InitializeTAA"/"CreateTAATextureBuffers"
// lineage. sumFBO is left unattached: its initial attachment in the
// original exists only to satisfy a completeness check never otherwise
// relied upon (spec §9 open question — either choice is acceptable, and
// lazy attachment avoids a dependency on eye 0 existing before the
// average pass needs it).
func newTAAPipeline(eyeCount, width, height int) (*taaPipeline, error) {
	t := &taaPipeline{width: width, height: height}

	warpProg := glcore.NewProgram()
	if err := warpProg.LoadVertFrag("shader/warp_vert.glsl", "shader/warp_frag.glsl"); err != nil {
		return nil, glcore.NewError(glcore.KindGpuResource, "loading warp shader", err)
	}
	t.warpProg = warpProg

	avgProg := glcore.NewProgram()
	if err := avgProg.LoadVertFrag("shader/avg_vert.glsl", "shader/avg_frag.glsl"); err != nil {
		return nil, glcore.NewError(glcore.KindGpuResource, "loading avg shader", err)
	}
	t.avgProg = avgProg

	displayProg := glcore.NewProgram()
	if err := displayProg.LoadVertFrag("shader/avg_vert.glsl", "shader/display_frag.glsl"); err != nil {
		return nil, glcore.NewError(glcore.KindGpuResource, "loading display shader", err)
	}
	t.displayProg = displayProg

	quadVBO, err := glcore.NewMutableBuffer(glcore.TargetArray, quadVertices, glcore.UsageStaticDraw)
	if err != nil {
		return nil, glcore.NewError(glcore.KindGpuResource, "allocating fullscreen quad", err)
	}
	t.quadVBO = quadVBO
	t.quadVAO = glcore.NewVAO()
	t.quadVAO.Bind()
	t.quadVAO.AddAttributeAt(quadVBO, glcore.AttribLayout{Location: 0, Type: gl.FLOAT, Count: 2}, 4*4, 0)
	t.quadVAO.AddAttributeAt(quadVBO, glcore.AttribLayout{Location: 1, Type: gl.FLOAT, Count: 2}, 4*4, 2*4)

	if err := t.allocateEyes(eyeCount, width, height); err != nil {
		return nil, err
	}
	t.sumFBO = glcore.NewFrameBuffer()

	return t, nil
}

func (t *taaPipeline) allocateEyes(eyeCount, width, height int) error {
	t.eyes = make([]eyeTemporalTextures, eyeCount)
	t.states = make([]eyeTemporalState, eyeCount)
	for i := range t.eyes {
		eye, err := newEyeTextures(width, height)
		if err != nil {
			return err
		}
		t.eyes[i] = eye
	}
	return nil
}

func newEyeTextures(width, height int) (eyeTemporalTextures, error) {
	mk := func() (glcore.Texture, error) {
		return glcore.NewTexture2D[float32](width, height, gl.RGBA32F, gl.RGBA, gl.FLOAT, glcore.DefaultTAAParams, nil)
	}
	avgA, err := mk()
	if err != nil {
		return eyeTemporalTextures{}, glcore.NewError(glcore.KindGpuResource, "allocating warpAvg A", err)
	}
	avgB, err := mk()
	if err != nil {
		return eyeTemporalTextures{}, glcore.NewError(glcore.KindGpuResource, "allocating warpAvg B", err)
	}
	xyzA, err := mk()
	if err != nil {
		return eyeTemporalTextures{}, glcore.NewError(glcore.KindGpuResource, "allocating warpXYZ A", err)
	}
	xyzB, err := mk()
	if err != nil {
		return eyeTemporalTextures{}, glcore.NewError(glcore.KindGpuResource, "allocating warpXYZ B", err)
	}
	curFrame, err := mk()
	if err != nil {
		return eyeTemporalTextures{}, glcore.NewError(glcore.KindGpuResource, "allocating currentFrameTex", err)
	}
	depth, err := glcore.NewTexture2D[float32](width, height, gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT, glcore.DefaultTAAParams, nil)
	if err != nil {
		return eyeTemporalTextures{}, glcore.NewError(glcore.KindGpuResource, "allocating depthTex", err)
	}

	scene := glcore.NewFrameBuffer()
	scene.Bind()
	scene.AttachColor(curFrame, gl.COLOR_ATTACHMENT0)
	scene.AttachDepth(depth)
	if !scene.IsComplete() {
		return eyeTemporalTextures{}, glcore.NewError(glcore.KindGpuResource, "sceneFBO incomplete", nil)
	}

	return eyeTemporalTextures{
		warpAvg:         newPingPong(avgA, avgB),
		warpXYZ:         newPingPong(xyzA, xyzB),
		currentFrameTex: curFrame,
		depthTex:        depth,
		sceneFBO:        scene,
	}, nil
}

// resetCurrent clears eye's warp history and frame count (spec §4.5
// resetTemporalTextures()).
func (t *taaPipeline) resetCurrent(eye int) error {
	e := &t.eyes[eye]
	for _, tex := range []glcore.Texture{e.warpAvg.Front(), e.warpAvg.Back(), e.warpXYZ.Front(), e.warpXYZ.Back()} {
		if err := tex.ClearToZero(); err != nil {
			return err
		}
	}
	s := &t.states[eye]
	s.frameCount = 0
	s.prevPvmat = s.pvmat
	return nil
}

// resize reallocates eye's textures and scene FBO at the new dimensions
// (spec §4.5 resetTemporalTextures(newW, newH)).
func (t *taaPipeline) resize(eye, newW, newH int) error {
	tex, err := newEyeTextures(newW, newH)
	if err != nil {
		return err
	}
	t.eyes[eye].delete()
	t.eyes[eye] = tex
	t.width, t.height = newW, newH
	t.states[eye].frameCount = 0
	return nil
}

func drawFullscreenQuad(vao glcore.VertexArray) error {
	vao.Bind()
	err := glcore.DrawArrays(glcore.PrimitiveTriangles, 0, 6)
	vao.Unbind()
	return err
}

func bindTex2D(prog *glcore.Program, uniform string, unit int, tex glcore.Texture) error {
	tex.BindUnit(unit)
	return prog.SetInt(uniform, int32(unit))
}

func (t *taaPipeline) runWarpPass(inAvg, inXYZ, outAvg, outXYZ glcore.Texture, pv msmath.Mat4) error {
	if err := outAvg.ClearToZero(); err != nil {
		return err
	}
	if err := outXYZ.ClearToZero(); err != nil {
		return err
	}

	t.warpProg.Bind()
	if err := bindTex2D(t.warpProg, "colorTexture", 0, inAvg); err != nil {
		return err
	}
	if err := bindTex2D(t.warpProg, "xyzTexture", 1, inXYZ); err != nil {
		return err
	}
	if err := t.warpProg.SetMat4("currentViewMatrix", pv.Array()); err != nil {
		return err
	}

	outAvg.BindImage(0, glcore.ImageAccessWriteOnly)
	outXYZ.BindImage(1, glcore.ImageAccessWriteOnly)

	if err := drawFullscreenQuad(t.quadVAO); err != nil {
		return err
	}
	return glcore.Barrier(glcore.BarrierShaderImage | glcore.BarrierTextureFetch)
}

func (t *taaPipeline) runAveragePass(eye *eyeTemporalTextures, inAvg, inXYZ, outAvg, outXYZ glcore.Texture, state eyeTemporalState, viewChanged bool) error {
	t.avgProg.Bind()
	if err := t.avgProg.SetMat4("invProjViewMat", state.pvmat.Inverse().Array()); err != nil {
		return err
	}
	if err := t.avgProg.SetBool("viewChanged", viewChanged); err != nil {
		return err
	}

	if err := bindTex2D(t.avgProg, "currentColorTexture", 0, eye.currentFrameTex); err != nil {
		return err
	}
	if err := bindTex2D(t.avgProg, "warpedXYZTexture", 1, inXYZ); err != nil {
		return err
	}
	if err := bindTex2D(t.avgProg, "currentDepthTexture", 2, eye.depthTex); err != nil {
		return err
	}
	if err := bindTex2D(t.avgProg, "warpedColorTexture", 3, inAvg); err != nil {
		return err
	}

	t.sumFBO.Bind()
	glcore.SetViewport(0, 0, int32(t.width), int32(t.height))
	t.sumFBO.AttachColor(outAvg, gl.COLOR_ATTACHMENT0)
	t.sumFBO.AttachColor(outXYZ, gl.COLOR_ATTACHMENT1)
	glcore.SetDrawBuffers(gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1)

	if err := drawFullscreenQuad(t.quadVAO); err != nil {
		return err
	}
	return glcore.Barrier(glcore.BarrierShaderImage | glcore.BarrierTextureFetch)
}

// run executes the warp/average/display chain for the active eye after
// the raster stage has written into its scene FBO. viewport is the
// caller's present-framebuffer viewport; presentFbo is the externally
// supplied target of the display pass.
func (t *taaPipeline) run(activeEye int, viewportX, viewportY, viewportW, viewportH int32, presentFbo uint32) error {
	glcore.DisableBlend()
	glcore.DisableDepthTest()

	e := &t.eyes[activeEye]
	s := &t.states[activeEye]

	viewChanged := !msmath.AlmostEqual(s.pvmat, s.prevPvmat, viewChangeEpsilon)

	currAvg, nextAvg := e.warpAvg.Front(), e.warpAvg.Back()
	currXYZ, nextXYZ := e.warpXYZ.Front(), e.warpXYZ.Back()

	switch {
	case s.frameCount <= 1:
		nextAvg, nextXYZ = currAvg, currXYZ
	case viewChanged:
		if err := t.runWarpPass(currAvg, currXYZ, nextAvg, nextXYZ, s.pvmat); err != nil {
			return err
		}
	default:
		e.warpAvg.Swap()
		e.warpXYZ.Swap()
		currAvg, nextAvg = e.warpAvg.Front(), e.warpAvg.Back()
		currXYZ, nextXYZ = e.warpXYZ.Front(), e.warpXYZ.Back()
	}

	if err := t.runAveragePass(e, nextAvg, nextXYZ, currAvg, currXYZ, *s, viewChanged); err != nil {
		return err
	}

	glcore.BindExternal(presentFbo)
	glcore.SetViewport(viewportX, viewportY, viewportW, viewportH)
	glcore.DisableDepthTest()

	t.displayProg.Bind()
	if err := bindTex2D(t.displayProg, "textureSum", 0, currAvg); err != nil {
		return err
	}
	return drawFullscreenQuad(t.quadVAO)
}

// advance runs the bootstrap/rotation step of §4.5: increments
// frameCount, rotates prev_pvmat, and stores the new pvmat. The
// frameCount++ / "> 1" ordering is preserved exactly as the original
// source has it — on frame 1 this takes the else branch, per spec §9's
// explicit instruction not to invent intent around this.
func (t *taaPipeline) advance(activeEye int, pv msmath.Mat4) {
	s := &t.states[activeEye]
	s.frameCount++
	if s.frameCount > 1 {
		s.prevPvmat = s.pvmat
	} else {
		s.prevPvmat = pv
	}
	s.pvmat = pv
}
