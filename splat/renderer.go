package splat

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/gsplat/core/glcore"
	"github.com/gsplat/core/msmath"
)

// Shader source paths for the splat program variants per spec §6's mode
// table (the sort and TAA pipelines load their own shaders). Shader text
// itself is an external collaborator, opaque named GLSL files.
const (
	pathSplatVert    = "shader/splat_vert.glsl"
	pathSplatGeom    = "shader/splat_geom.glsl"
	pathSplatFrag    = "shader/splat_frag.glsl"
	pathSplatFragST  = "shader/splat_frag_ST.glsl"
	pathSplatGeomPop = "shader/splat_geom_ST_popfree.glsl"
	pathSplatVertPop = "shader/splat_vert_ST_popfree.glsl"
)

// defaultNumBlocksPerWorkgroup is the scatter kernel's default block
// count, per spec §6 ("defaults to 1024 and must be ≤ 1024").
const defaultNumBlocksPerWorkgroup = 1024

// Renderer is the C6 façade: it owns the GPU program, vertex array and
// index buffer shared by every mode, plus the mode-specific pipeline
// (sort buffers for AB, TAA textures for ST/ST-popfree), and exposes the
// four operations an embedder drives per frame.
type Renderer struct {
	cloud     Cloud
	splatProg *glcore.Program
	vao       glcore.VertexArray
	dataBuf   glcore.Buffer
	elemBuf   glcore.Buffer
	n         int

	mode Mode

	eyeCount      int
	activeEye     int
	width, height int
	presentFbo    uint32

	// NumBlocksPerWorkgroup configures the radix scatter kernel; must be
	// set before Init if overridden, otherwise defaults to 1024.
	NumBlocksPerWorkgroup uint32

	// DetectSubgroupSupport decides whether the device advertises
	// shader-subgroup operations. Defaults to querying the
	// GL_ARB_shader_subgroup extension string; overridable for testing
	// or for platforms exposing subgroup ops under a different name.
	DetectSubgroupSupport func() bool

	// randomSeed supplies u_randomSeed for non-AB modes (spec §4.4): a
	// per-frame value from a weakly-random source, not cryptographic, that
	// only needs to change frame-to-frame. Overridable in tests for a
	// deterministic sequence.
	randomSeed func() uint32

	log *slog.Logger
}

// NewRenderer builds an unstarted Renderer. Init must be called before
// Sort or Render.
func NewRenderer(log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Renderer{
		NumBlocksPerWorkgroup: defaultNumBlocksPerWorkgroup,
		DetectSubgroupSupport: func() bool { return glcore.HasExtension("GL_ARB_shader_subgroup") },
		randomSeed:            func() uint32 { return rng.Uint32() },
		log:                   log,
	}
}

// Init implements spec §4.6's Init responsibilities: decide the sort
// variant, add the splat program's DEFINES macro block, load the
// mode's shaders, build the mode-specific pipeline, and build the splat
// vertex array. fallback is consumed only when the fallback sorter is
// selected (AB mode, multi-radix unavailable or forced off); it may be
// nil otherwise.
func (r *Renderer) Init(cloud Cloud, sRGB, forceFallbackSort bool, renderMode string, eyeCount, width, height int, taa bool, fallback Sorter) error {
	if cloud == nil {
		return glcore.NewError(glcore.KindPrecondition, "Init: cloud is nil", nil)
	}
	if eyeCount < 1 {
		return glcore.NewError(glcore.KindPrecondition, "Init: eyeCount must be >= 1", nil)
	}
	r.cloud = cloud
	r.n = cloud.NumGaussians()
	r.eyeCount = eyeCount
	r.width, r.height = width, height
	if r.NumBlocksPerWorkgroup == 0 {
		r.NumBlocksPerWorkgroup = defaultNumBlocksPerWorkgroup
	}
	if r.NumBlocksPerWorkgroup > defaultNumBlocksPerWorkgroup {
		return glcore.NewError(glcore.KindPrecondition, "Init: NumBlocksPerWorkgroup must be <= 1024", nil)
	}

	r.splatProg = glcore.NewProgram()
	defines := ""
	if sRGB {
		defines += "#define FRAMEBUFFER_SRGB\n"
	}
	if cloud.HasFullSH() {
		defines += "#define FULL_SH\n"
	}
	if defines != "" {
		r.splatProg.AddMacro("DEFINES", defines)
	}

	switch renderMode {
	case "AB":
		if err := r.splatProg.LoadVertGeomFrag(pathSplatVert, pathSplatGeom, pathSplatFrag); err != nil {
			return err
		}
		useMultiRadix := r.DetectSubgroupSupport() && !forceFallbackSort
		sp, err := newSortPipeline(cloud, r.n, useMultiRadix, r.NumBlocksPerWorkgroup, fallback, r.log)
		if err != nil {
			return err
		}
		r.mode = &ABMode{sort: sp}
		r.log.Debug("splat renderer initialized", "mode", "AB", "n", r.n, "useMultiRadix", useMultiRadix)

	case "ST", "ST-popfree":
		popfree := renderMode == "ST-popfree"
		var err error
		if popfree {
			err = r.splatProg.LoadVertGeomFrag(pathSplatVertPop, pathSplatGeomPop, pathSplatFragST)
		} else {
			err = r.splatProg.LoadVertGeomFrag(pathSplatVert, pathSplatGeom, pathSplatFragST)
		}
		if err != nil {
			return err
		}
		st := &STMode{Popfree: popfree}
		if taa {
			tp, err := newTAAPipeline(eyeCount, width, height)
			if err != nil {
				return err
			}
			st.taa = tp
		}
		r.mode = st
		r.log.Debug("splat renderer initialized", "mode", st.modeName(), "n", r.n, "taa", taa)

	default:
		return glcore.NewError(glcore.KindPrecondition, "Init: unknown renderMode "+renderMode, nil)
	}

	vao, dataBuf, elemBuf, err := buildSplatVAO(cloud, r.splatProg)
	if err != nil {
		return err
	}
	r.vao, r.dataBuf, r.elemBuf = vao, dataBuf, elemBuf
	return nil
}

// Sort implements spec §4.6's Sort: a no-op outside AB mode.
func (r *Renderer) Sort(cameraMat, projMat msmath.Mat4, nearFar [2]float32) error {
	ab, ok := r.mode.(*ABMode)
	if !ok {
		return nil
	}
	_, err := ab.sort.run(cameraMat, projMat, nearFar, r.elemBuf)
	return err
}

// Render implements spec §4.6's Render: mode-dispatching draw, followed
// by the TAA passes outside AB mode when temporal accumulation is
// enabled. Non-AB modes draw u_randomSeed from r.randomSeed internally;
// callers never supply it.
func (r *Renderer) Render(cameraMat, projMat msmath.Mat4, viewportX, viewportY, viewportW, viewportH int32, nearFar [2]float32) error {
	p := rasterParams{
		cameraMat: cameraMat,
		projMat:   projMat,
		viewportX: viewportX,
		viewportY: viewportY,
		viewportW: viewportW,
		viewportH: viewportH,
		nearFar:   nearFar,
	}

	switch m := r.mode.(type) {
	case *ABMode:
		return renderSplats(r.splatProg, r.vao, r.n, m.sort.sortCount, p, true, 0, nil)

	case *STMode:
		var sceneFBO *glcore.FrameBuffer
		if m.taa != nil {
			sceneFBO = &m.taa.eyes[r.activeEye].sceneFBO
		}
		if err := renderSplats(r.splatProg, r.vao, r.n, r.n, p, false, r.randomSeed(), sceneFBO); err != nil {
			return err
		}
		if m.taa == nil {
			return nil
		}
		pv := msmath.Mul(projMat, cameraMat.Inverse())
		m.taa.advance(r.activeEye, pv)
		return m.taa.run(r.activeEye, viewportX, viewportY, viewportW, viewportH, r.presentFbo)

	default:
		return glcore.NewError(glcore.KindPrecondition, "Render: Init was not called", nil)
	}
}

// Reset implements spec §4.5/§4.6's reset operations for the active eye.
// With newW/newH both zero it clears temporal history in place
// (resetTemporalTextures()); with nonzero dimensions it additionally
// reallocates that eye's textures and scene framebuffer at the new size
// (resetTemporalTextures(newW, newH)). A no-op outside ST/ST-popfree
// modes or when TAA was not enabled at Init.
func (r *Renderer) Reset(newW, newH int) error {
	st, ok := r.mode.(*STMode)
	if !ok || st.taa == nil {
		return nil
	}
	if newW == 0 && newH == 0 {
		return st.taa.resetCurrent(r.activeEye)
	}
	return st.taa.resize(r.activeEye, newW, newH)
}

// SetActiveEye selects which eye's per-eye state subsequent Render calls
// operate on. Out-of-range i is a Precondition error.
func (r *Renderer) SetActiveEye(i int) error {
	if i < 0 || i >= r.eyeCount {
		return glcore.NewError(glcore.KindPrecondition, "SetActiveEye: index out of range", nil)
	}
	r.activeEye = i
	return nil
}

// SetPresentFbo sets the externally owned framebuffer the TAA display
// pass composites into (spec §4.5's Display pass). AB mode and ST/
// ST-popfree without TAA draw directly into whatever framebuffer the
// caller already has bound when calling Render; presentFbo only matters
// once TAA is enabled. A value of 0 targets the default framebuffer.
func (r *Renderer) SetPresentFbo(fbo uint32) {
	r.presentFbo = fbo
}
