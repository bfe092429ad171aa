package splat

import (
	"github.com/gsplat/core/glcore"
	"github.com/gsplat/core/msmath"
)

// rasterParams bundles the per-frame inputs C4's Render needs, mirroring
// the original Render(cameraMat, projMat, viewport, nearFar) signature.
type rasterParams struct {
	cameraMat msmath.Mat4
	projMat   msmath.Mat4
	viewportX int32
	viewportY int32
	viewportW int32
	viewportH int32
	nearFar   [2]float32
}

// renderSplats implements §4.4 steps 1-4: viewport, splat program
// uniforms, and the indexed point draw. Step 5 (invoking the temporal
// pipeline) is the caller's responsibility since it only applies outside
// AB mode and needs mode-specific state this function doesn't hold.
//
// isAB selects between the AB-mode sorted-prefix draw (into whatever
// framebuffer the caller already has bound) and the non-AB full-N draw
// (into sceneFBO when non-nil, clearing color+depth and enabling the
// depth test first, matching the original's TAA-on scene pass).
func renderSplats(prog *glcore.Program, vao glcore.VertexArray, n, sortCount int, p rasterParams, isAB bool, randomSeed uint32, sceneFBO *glcore.FrameBuffer) error {
	glcore.SetViewport(p.viewportX, p.viewportY, p.viewportW, p.viewportH)

	viewMat := p.cameraMat.Inverse()
	eyeVec := p.cameraMat.Column(3)
	multiplier := (p.nearFar[0] - p.nearFar[1]) * p.projMat.At(2, 3)

	prog.Bind()
	if err := prog.SetMat4("viewMat", viewMat.Array()); err != nil {
		return err
	}
	if err := prog.SetMat4("projMat", p.projMat.Array()); err != nil {
		return err
	}
	if err := prog.SetVec3("projParams", float32(p.viewportW), float32(p.viewportH), multiplier); err != nil {
		return err
	}
	if err := prog.SetVec3("eye", eyeVec.X, eyeVec.Y, eyeVec.Z); err != nil {
		return err
	}
	if !isAB {
		if err := prog.SetUint("u_randomSeed", randomSeed); err != nil {
			return err
		}
	}

	vao.Bind()
	defer vao.Unbind()

	if isAB {
		return glcore.DrawElements(glcore.PrimitivePoints, int32(sortCount))
	}

	if sceneFBO != nil {
		sceneFBO.Bind()
		glcore.SetViewport(0, 0, p.viewportW, p.viewportH)
		glcore.EnableDepthTestLess()
		glcore.ClearColorDepth()
	}
	return glcore.DrawElements(glcore.PrimitivePoints, int32(n))
}
