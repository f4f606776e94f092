package vehicle

import "math"

// Heading 车辆朝向
type Heading int32

const (
	HeadingEast Heading = iota
	HeadingNorth
	HeadingWest
	HeadingSouth
)

func (h Heading) String() string {
	switch h {
	case HeadingEast:
		return "E"
	case HeadingNorth:
		return "N"
	case HeadingWest:
		return "W"
	default:
		return "S"
	}
}

// Degrees 朝向角度，正东为0，逆时针
func (h Heading) Degrees() float64 {
	return float64(h) * 90
}

// headingOf 根据剩余位移中较大分量的符号确定朝向
func headingOf(dx, dy float64) Heading {
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return HeadingEast
		}
		return HeadingWest
	}
	if dy > 0 {
		return HeadingNorth
	}
	return HeadingSouth
}
