package splat

// Mode is the render-mode sum type of spec §9's design note: the
// original's string-typed renderMode becomes a tagged variant at the
// type level, with mode-specific state (sort buffers vs TAA texture
// sets) living inside the variant instead of beside it.
type Mode interface {
	modeName() string
	isMode()
}

// ABMode is the alpha-blending path: requires a per-frame depth sort
// (spec glossary "AB mode").
type ABMode struct {
	sort *sortPipeline
}

func (*ABMode) isMode()          {}
func (*ABMode) modeName() string { return "AB" }

// STMode is a stochastic-transparency path (spec glossary "ST / ST-popfree
// modes"); Popfree selects the popfree vertex/geometry shader variant.
// TAA is nil when temporal accumulation is disabled.
type STMode struct {
	Popfree bool
	taa     *taaPipeline
}

func (*STMode) isMode() {}
func (m *STMode) modeName() string {
	if m.Popfree {
		return "ST-popfree"
	}
	return "ST"
}
