package splat

import (
	"fmt"
	"math"

	"github.com/gsplat/core/glcore"

	"github.com/go-gl/gl/v4.6-core/gl"
)

type namedAttr struct {
	name  string
	attr  Attribute
	count int32
}

// splatAttributes lists every attribute the splat VAO wires, in the
// order the original renderer binds them: position+alpha, the three
// band-0 SH channels, the nine band 1-3 channels when present, then the
// three covariance columns.
func splatAttributes(cloud Cloud) []namedAttr {
	attrs := []namedAttr{
		{"position", cloud.PosWithAlpha(), 4},
		{"r_sh0", cloud.RSH0(), 4},
		{"g_sh0", cloud.GSH0(), 4},
		{"b_sh0", cloud.BSH0(), 4},
	}
	if cloud.HasFullSH() {
		for band := 1; band <= 3; band++ {
			attrs = append(attrs,
				namedAttr{fmt.Sprintf("r_sh%d", band), cloud.RSH(band), 4},
				namedAttr{fmt.Sprintf("g_sh%d", band), cloud.GSH(band), 4},
				namedAttr{fmt.Sprintf("b_sh%d", band), cloud.BSH(band), 4},
			)
		}
	}
	for col := 0; col < 3; col++ {
		attrs = append(attrs, namedAttr{fmt.Sprintf("cov3_col%d", col), cloud.Cov3Col(col), 3})
	}
	return attrs
}

// buildSplatVAO implements C2: it binds the cloud's interleaved vertex
// bytes into the active splat program's attributes and builds the
// identity element buffer. N == 0 is a valid boundary case: the VAO is
// allocated but no data/element buffers are, and the returned buffers
// are zero values.
func buildSplatVAO(cloud Cloud, prog *glcore.Program) (glcore.VertexArray, glcore.Buffer, glcore.Buffer, error) {
	if cloud == nil {
		return glcore.VertexArray{}, glcore.Buffer{}, glcore.Buffer{}, glcore.NewError(glcore.KindPrecondition, "nil cloud", nil)
	}
	n := cloud.NumGaussians()
	if n < 0 {
		return glcore.VertexArray{}, glcore.Buffer{}, glcore.Buffer{}, glcore.NewError(glcore.KindPrecondition, "negative splat count", nil)
	}
	if uint64(n) > math.MaxUint32 {
		return glcore.VertexArray{}, glcore.Buffer{}, glcore.Buffer{}, glcore.NewError(glcore.KindPrecondition, "splat count exceeds uint32 range", nil)
	}

	vao := glcore.NewVAO()
	if n == 0 {
		return vao, glcore.Buffer{}, glcore.Buffer{}, nil
	}

	dataBuf, err := glcore.NewBuffer(glcore.TargetArray, cloud.RawData(), glcore.FlagNone)
	if err != nil {
		return vao, glcore.Buffer{}, glcore.Buffer{}, glcore.NewError(glcore.KindGpuResource, "allocating splat vertex buffer", err)
	}

	indices := make([]uint32, n)
	for i := range indices {
		indices[i] = uint32(i)
	}
	elemBuf, err := glcore.NewBuffer(glcore.TargetElementArray, indices, glcore.FlagDynamicStorage)
	if err != nil {
		return vao, dataBuf, glcore.Buffer{}, glcore.NewError(glcore.KindGpuResource, "allocating element buffer", err)
	}

	vao.Bind()
	stride := int32(cloud.Stride())
	for _, a := range splatAttributes(cloud) {
		if a.attr.Type != Float {
			return vao, dataBuf, elemBuf, glcore.NewError(glcore.KindPrecondition, "attribute "+a.name+" must be Float", nil)
		}
		loc, err := prog.AttribLocation(a.name)
		if err != nil {
			// Attribute stripped by the compiler because unused by this
			// shader variant (e.g. popfree geometry shader) — not fatal.
			continue
		}
		vao.AddAttributeAt(dataBuf, glcore.AttribLayout{
			Location:  loc,
			Type:      gl.FLOAT,
			Count:     a.count,
			Normalize: false,
		}, stride, a.attr.Offset)
	}
	vao.SetElementBuffer(elemBuf)

	return vao, dataBuf, elemBuf, glcore.Err()
}
