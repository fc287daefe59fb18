package layout

import (
	"strconv"
	"strings"
)

// This file defines unit helpers for script values and the raster bridge.

// Unit represents the original unit of a numeric value in a script.
type Unit int

const (
	UnitNone    Unit = iota // plain numbers
	UnitPX                  // pixels at the reference width
	UnitPT                  // points
	UnitPercent             // percent of canvas height
)

// Conversion constants between pt and mm. The rasteriser runs at one pixel per
// millimetre, so a pixel length is numerically a millimetre length.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// PxToPt 将像素（=毫米）字号转换为字体系统使用的 pt。
func PxToPt(px float64) float64 { return px * MmToPt }

// PtToPx 将 pt 转换回像素。
func PtToPx(pt float64) float64 { return pt * PtToMm }

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Number preserves a numeric value with its unit.
type Number struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Px 返回像素值；pt 会换算，其它单位按原值返回。
func (n Number) Px() float64 {
	if n.Unit == UnitPT {
		return PtToPx(n.Value)
	}
	return n.Value
}

// ParseNumber parses a script number such as "48", "48px", "36pt" or "20%".
func ParseNumber(value string) (Number, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Number{}, false
	}
	unit := UnitNone
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			v = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Number{}, false
	}
	return Number{Value: f, Unit: unit}, true
}
