package glcore

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
)

// CompileFlags controls how shader compilation reports errors, trading
// strictness for the cost of extra driver queries.
type CompileFlags uint64

const (
	// CompileFlagValidateProgram runs glValidateProgram after linking.
	// Can be expensive; reserve for debug/test builds.
	CompileFlagValidateProgram CompileFlags = 1 << iota
	CompileFlagNoCompileCheck
	CompileFlagNoLinkCheck
)

const (
	CompileFlagsLax    = CompileFlagNoCompileCheck | CompileFlagNoLinkCheck
	CompileFlagsStrict = CompileFlagValidateProgram
)

// has reports whether every bit in mask is set in cf.
func (cf CompileFlags) has(mask CompileFlags) bool { return cf&mask == mask }

func (cf CompileFlags) checkCompile() bool    { return !cf.has(CompileFlagNoCompileCheck) }
func (cf CompileFlags) checkLink() bool       { return !cf.has(CompileFlagNoLinkCheck) }
func (cf CompileFlags) validateProgram() bool { return cf.has(CompileFlagValidateProgram) }

// Program is an owning handle to a linked GL program: either a
// vertex+fragment (+optional geometry) graphics program or a standalone
// compute program, per spec §4.1.
type Program struct {
	rid    uint32
	macros map[string]string
	Flags  CompileFlags
}

// NewProgram returns a zero-value Program ready to have shaders loaded
// into it. AddMacro can be called before any Load* call.
func NewProgram() *Program {
	return &Program{macros: make(map[string]string)}
}

// AddMacro records a #define block to be prepended (just after a leading
// #version line, if present) to every subsequent (re)compile, per spec
// §4.1. Typical use is AddMacro("DEFINES", "#define FULL_SH\n").
func (p *Program) AddMacro(name, text string) {
	p.macros[name] = text
}

func (p *Program) macroHeader() string {
	if len(p.macros) == 0 {
		return ""
	}
	names := make([]string, 0, len(p.macros))
	for n := range p.macros {
		names = append(names, n)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(p.macros[n])
	}
	return sb.String()
}

func (p *Program) withMacros(src string) string {
	header := p.macroHeader()
	if header == "" {
		return src
	}
	if strings.HasPrefix(src, "#version") {
		nl := strings.IndexByte(src, '\n')
		if nl < 0 {
			return src + "\n" + header
		}
		return src[:nl+1] + header + src[nl+1:]
	}
	return header + src
}

func readShaderFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("glcore: reading shader %q: %w", path, err)
	}
	s := string(b)
	if !strings.HasSuffix(s, "\x00") {
		s += "\x00"
	}
	return s, nil
}

// LoadVertFrag compiles and links a vertex+fragment program from the
// given file paths.
func (p *Program) LoadVertFrag(vertPath, fragPath string) error {
	vsrc, err := readShaderFile(vertPath)
	if err != nil {
		return err
	}
	fsrc, err := readShaderFile(fragPath)
	if err != nil {
		return err
	}
	return p.compile(p.withMacros(vsrc), "", p.withMacros(fsrc), "")
}

// LoadVertGeomFrag compiles and links a vertex+geometry+fragment program.
func (p *Program) LoadVertGeomFrag(vertPath, geomPath, fragPath string) error {
	vsrc, err := readShaderFile(vertPath)
	if err != nil {
		return err
	}
	gsrc, err := readShaderFile(geomPath)
	if err != nil {
		return err
	}
	fsrc, err := readShaderFile(fragPath)
	if err != nil {
		return err
	}
	return p.compile(p.withMacros(vsrc), p.withMacros(gsrc), p.withMacros(fsrc), "")
}

// LoadCompute compiles and links a standalone compute program.
func (p *Program) LoadCompute(computePath string) error {
	csrc, err := readShaderFile(computePath)
	if err != nil {
		return err
	}
	return p.compile("", "", "", p.withMacros(csrc))
}

func (p *Program) compile(vert, geom, frag, compute string) error {
	if p.rid != 0 {
		gl.DeleteProgram(p.rid)
		p.rid = 0
	}
	p.rid = gl.CreateProgram()
	if p.rid == 0 {
		return NewError(KindGpuResource, "glCreateProgram returned 0; is an OpenGL context current on this thread?", nil)
	}

	var shaders []uint32
	var linked bool
	defer func() {
		for _, sid := range shaders {
			if linked {
				gl.DetachShader(p.rid, sid)
			}
			gl.DeleteShader(sid)
		}
	}()

	compileOne := func(kind uint32, src, label string) error {
		id, err := compileShader(kind, p.Flags, src)
		if err != nil {
			return NewError(KindGpuResource, label+" shader compile failed", err)
		}
		gl.AttachShader(p.rid, id)
		shaders = append(shaders, id)
		return nil
	}

	if vert != "" {
		if err := compileOne(gl.VERTEX_SHADER, vert, "vertex"); err != nil {
			return err
		}
	}
	if geom != "" {
		if err := compileOne(gl.GEOMETRY_SHADER, geom, "geometry"); err != nil {
			return err
		}
	}
	if frag != "" {
		if err := compileOne(gl.FRAGMENT_SHADER, frag, "fragment"); err != nil {
			return err
		}
	}
	if compute != "" {
		if err := compileOne(gl.COMPUTE_SHADER, compute, "compute"); err != nil {
			return err
		}
	}

	gl.LinkProgram(p.rid)
	if p.Flags.checkLink() {
		if err := ivLogErr(p.rid, gl.LINK_STATUS, gl.GetProgramiv, gl.GetProgramInfoLog); err != nil {
			return NewError(KindGpuResource, "program link failed", err)
		}
	}
	linked = true

	if p.Flags.validateProgram() {
		gl.ValidateProgram(p.rid)
		if err := ivLogErr(p.rid, gl.VALIDATE_STATUS, gl.GetProgramiv, gl.GetProgramInfoLog); err != nil {
			return NewError(KindGpuResource, "program validation failed", err)
		}
	}
	return nil
}

func compileShader(kind uint32, flags CompileFlags, source string) (uint32, error) {
	if !strings.HasSuffix(source, "\x00") {
		return 0, errors.New("glcore: shader source missing null terminator")
	}
	id := gl.CreateShader(kind)
	if id == 0 {
		if err := Err(); err != nil {
			return 0, err
		}
		return 0, errors.New("glcore: glCreateShader returned 0")
	}
	csources, free := gl.Strs(source)
	length := int32(len(source))
	gl.ShaderSource(id, 1, csources, &length)
	free()
	gl.CompileShader(id)
	if flags.checkCompile() {
		if err := ivLogErr(id, gl.COMPILE_STATUS, gl.GetShaderiv, gl.GetShaderInfoLog); err != nil {
			gl.DeleteShader(id)
			return 0, err
		}
	}
	return id, nil
}

func ivLogErr(id, plName uint32, getIV func(uint32, uint32, *int32), getInfo func(uint32, int32, *int32, *uint8)) error {
	var status int32
	getIV(id, plName, &status)
	if status == gl.FALSE {
		var logLen int32
		getIV(id, gl.INFO_LOG_LENGTH, &logLen)
		if logLen == 0 {
			return errors.New("glcore: compile/link failed with no info log")
		}
		log := make([]byte, logLen)
		getInfo(id, logLen, &logLen, &log[0])
		return errors.New(string(log[:len(log)-1]))
	}
	return nil
}

// ID returns the underlying GL program name.
func (p *Program) ID() uint32 { return p.rid }

// Bind makes p the current program.
func (p *Program) Bind() { gl.UseProgram(p.rid) }

// Unbind clears the current program binding.
func (p *Program) Unbind() { gl.UseProgram(0) }

// Delete releases p's GL name. p must not be used afterward.
func (p *Program) Delete() {
	gl.UseProgram(0)
	gl.DeleteProgram(p.rid)
}

// AttribLocation returns the location of a vertex attribute, or an error
// if it was not found (e.g. stripped by the compiler because unused).
func (p *Program) AttribLocation(name string) (uint32, error) {
	loc := gl.GetAttribLocation(p.rid, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, NewError(KindPrecondition, "attribute not found: "+name, nil)
	}
	return uint32(loc), nil
}

// UniformLocation returns the location of a uniform, or an error if not
// found.
func (p *Program) UniformLocation(name string) (int32, error) {
	loc := gl.GetUniformLocation(p.rid, gl.Str(name+"\x00"))
	if loc < 0 {
		return loc, NewError(KindPrecondition, "uniform not found: "+name, nil)
	}
	return loc, nil
}

// setUniformByName is the common lookup-then-set path every typed setter
// below shares.
func (p *Program) setUniformByName(name string, set func(loc int32)) error {
	loc, err := p.UniformLocation(name)
	if err != nil {
		return err
	}
	set(loc)
	return Err()
}

// SetMat4 uploads a row-major 4x4 matrix as GLSL's column-major mat4 via
// the transpose=true flag.
func (p *Program) SetMat4(name string, m [16]float32) error {
	return p.setUniformByName(name, func(loc int32) {
		gl.UniformMatrix4fv(loc, 1, true, &m[0])
	})
}

// SetVec3 uploads a 3-component float uniform.
func (p *Program) SetVec3(name string, x, y, z float32) error {
	return p.setUniformByName(name, func(loc int32) { gl.Uniform3f(loc, x, y, z) })
}

// SetVec2 uploads a 2-component float uniform.
func (p *Program) SetVec2(name string, x, y float32) error {
	return p.setUniformByName(name, func(loc int32) { gl.Uniform2f(loc, x, y) })
}

// SetFloat uploads a single float uniform.
func (p *Program) SetFloat(name string, v float32) error {
	return p.setUniformByName(name, func(loc int32) { gl.Uniform1f(loc, v) })
}

// SetInt uploads a single int uniform, used for texture-unit bindings.
func (p *Program) SetInt(name string, v int32) error {
	return p.setUniformByName(name, func(loc int32) { gl.Uniform1i(loc, v) })
}

// SetUint uploads a single uint uniform.
func (p *Program) SetUint(name string, v uint32) error {
	return p.setUniformByName(name, func(loc int32) { gl.Uniform1ui(loc, v) })
}

// SetBool uploads a boolean uniform as a GLSL bool (0/1 int).
func (p *Program) SetBool(name string, v bool) error {
	var i int32
	if v {
		i = 1
	}
	return p.setUniformByName(name, func(loc int32) { gl.Uniform1i(loc, i) })
}

// RunCompute dispatches p's compute shader over the given work-group
// counts and issues a full barrier, waiting for the dispatch to become
// visible to subsequent shader-storage and image reads.
func (p *Program) RunCompute(groupsX, groupsY, groupsZ uint32) error {
	gl.DispatchCompute(groupsX, groupsY, groupsZ)
	if err := Err(); err != nil {
		return err
	}
	gl.MemoryBarrier(gl.ALL_BARRIER_BITS)
	return Err()
}

// Dispatch issues a compute dispatch without any barrier, leaving
// producer/consumer ordering to a subsequent explicit Barrier call. The
// sort pipeline uses this to apply the narrower barrier masks spec §5
// specifies between its individual stages instead of RunCompute's blanket
// ALL_BARRIER_BITS.
func (p *Program) Dispatch(groupsX, groupsY, groupsZ uint32) error {
	gl.DispatchCompute(groupsX, groupsY, groupsZ)
	return Err()
}

// Barrier issues a memory barrier restricted to the given bit mask,
// matching the finer-grained barriers the sort and TAA pipelines use
// between specific stages (spec §5).
func Barrier(bits uint32) error {
	gl.MemoryBarrier(bits)
	return Err()
}

const (
	BarrierShaderStorage  = gl.SHADER_STORAGE_BARRIER_BIT
	BarrierAtomicCounter  = gl.ATOMIC_COUNTER_BARRIER_BIT
	BarrierShaderImage    = gl.SHADER_IMAGE_ACCESS_BARRIER_BIT
	BarrierTextureFetch   = gl.TEXTURE_FETCH_BARRIER_BIT
	ImageAccessReadOnly   = gl.READ_ONLY
	ImageAccessWriteOnly  = gl.WRITE_ONLY
	ImageAccessReadWrite  = gl.READ_WRITE
)
