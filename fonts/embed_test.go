package fonts

import "testing"

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"gobold", "embed:gobold", "GoRegular", SansSerif} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("加载 %s 失败: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("font %s is empty", name)
		}
	}
	if _, err := Load("Impact"); err == nil {
		t.Fatalf("expected error for non-embedded font")
	}
}
