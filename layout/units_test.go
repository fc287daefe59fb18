package layout

import (
	"math"
	"testing"
)

// TestPtPxRoundTrip 验证 pt↔px 换算的往返精度（允许极小的浮点误差）。
func TestPtPxRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 48, 96, 144, 1000}
	for _, px := range samples {
		back := PtToPx(PxToPt(px))
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→pt→px 往返误差过大: in=%gpx back=%g diff=%g", px, back, diff)
		}
	}
}

// TestParseNumber 覆盖脚本数值的单位解析。
func TestParseNumber(t *testing.T) {
	n, ok := ParseNumber("48px")
	if !ok || n.Value != 48 || n.Unit != UnitPX {
		t.Fatalf("48px 解析错误: %+v ok=%v", n, ok)
	}
	n, ok = ParseNumber(" 20% ")
	if !ok || n.Value != 20 || n.Unit != UnitPercent {
		t.Fatalf("20%% 解析错误: %+v ok=%v", n, ok)
	}
	n, ok = ParseNumber("36pt")
	if !ok || math.Abs(n.Px()-36*PtToMm) > 1e-9 {
		t.Fatalf("36pt 转 px 错误: %+v", n)
	}
	n, ok = ParseNumber("3")
	if !ok || n.Unit != UnitNone || n.Px() != 3 {
		t.Fatalf("纯数字解析错误: %+v", n)
	}
	if _, ok := ParseNumber("abc"); ok {
		t.Fatalf("非法数值应返回 false")
	}
	if _, ok := ParseNumber(""); ok {
		t.Fatalf("空字符串应返回 false")
	}
}
