package splat

import (
	"testing"

	"github.com/gsplat/core/msmath"
)

func TestInitRejectsNilCloud(t *testing.T) {
	r := NewRenderer(nil)
	err := r.Init(nil, false, false, "AB", 1, 64, 64, false, nil)
	if err == nil {
		t.Fatal("want error for nil cloud")
	}
}

func TestInitRejectsZeroEyeCount(t *testing.T) {
	r := NewRenderer(nil)
	cloud := newMockCloud(4, false)
	err := r.Init(cloud, false, false, "AB", 0, 64, 64, false, nil)
	if err == nil {
		t.Fatal("want error for eyeCount < 1")
	}
}

func TestInitRejectsUnknownRenderMode(t *testing.T) {
	r := NewRenderer(nil)
	cloud := newMockCloud(4, false)
	err := r.Init(cloud, false, false, "bogus", 1, 64, 64, false, nil)
	if err == nil {
		t.Fatal("want error for an unrecognized render mode")
	}
}

func TestSortIsNoopOutsideABMode(t *testing.T) {
	r := &Renderer{mode: &STMode{}}
	err := r.Sort(msmath.Identity(), msmath.Identity(), [2]float32{0.1, 100})
	if err != nil {
		t.Fatalf("Sort outside AB mode must be a no-op, got %v", err)
	}
}

func TestSetActiveEyeBounds(t *testing.T) {
	r := &Renderer{eyeCount: 2}
	if err := r.SetActiveEye(1); err != nil {
		t.Fatalf("SetActiveEye(1) with eyeCount=2: want no error, got %v", err)
	}
	if err := r.SetActiveEye(2); err == nil {
		t.Fatal("want error for out-of-range eye index")
	}
	if err := r.SetActiveEye(-1); err == nil {
		t.Fatal("want error for negative eye index")
	}
}

func TestSetPresentFbo(t *testing.T) {
	r := &Renderer{}
	r.SetPresentFbo(7)
	if r.presentFbo != 7 {
		t.Errorf("want presentFbo 7, got %v", r.presentFbo)
	}
}
