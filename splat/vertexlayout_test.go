package splat

import "testing"

func TestSplatAttributesMinimalSH(t *testing.T) {
	cloud := newMockCloud(4, false)
	attrs := splatAttributes(cloud)

	wantNames := []string{"position", "r_sh0", "g_sh0", "b_sh0", "cov3_col0", "cov3_col1", "cov3_col2"}
	if len(attrs) != len(wantNames) {
		t.Fatalf("want %d attributes, got %d", len(wantNames), len(attrs))
	}
	for i, name := range wantNames {
		if attrs[i].name != name {
			t.Errorf("attribute %d: want %q, got %q", i, name, attrs[i].name)
		}
	}
}

func TestSplatAttributesFullSH(t *testing.T) {
	cloud := newMockCloud(4, true)
	attrs := splatAttributes(cloud)

	// 4 base + 9 band1-3 + 3 covariance columns.
	if want := 4 + 9 + 3; len(attrs) != want {
		t.Fatalf("want %d attributes, got %d", want, len(attrs))
	}
	if attrs[4].name != "r_sh1" {
		t.Errorf("attribute 4: want r_sh1, got %v", attrs[4].name)
	}
	last := attrs[len(attrs)-1]
	if last.name != "cov3_col2" {
		t.Errorf("last attribute: want cov3_col2, got %v", last.name)
	}
}

func TestBuildSplatVAONilCloud(t *testing.T) {
	_, _, _, err := buildSplatVAO(nil, nil)
	if err == nil {
		t.Fatal("want error for nil cloud")
	}
}

func TestBuildSplatVAOZeroSplats(t *testing.T) {
	term := newTestContext(t)
	defer term()

	cloud := newMockCloud(0, false)
	vao, data, elem, err := buildSplatVAO(cloud, nil)
	if err != nil {
		t.Fatalf("N==0 must succeed, got %v", err)
	}
	if data.Size() != 0 || elem.Size() != 0 {
		t.Errorf("N==0 must not allocate GPU buffers, got data.Size()=%d elem.Size()=%d", data.Size(), elem.Size())
	}
	_ = vao
}
