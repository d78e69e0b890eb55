package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/OCAP2/missioneditor/internal/util"
	"github.com/OCAP2/missioneditor/pkg/core"
)

// AimTarget is where the aim command points the ray. Entity is NoHandle when
// aiming at Point.
type AimTarget struct {
	Entity core.Handle
	Point  core.Position3D
}

// ParseAim parses "<x> <y> <z>" or "entity <handle>".
func (p *Parser) ParseAim(data []string) (AimTarget, error) {
	var t AimTarget

	if len(data) > 0 && strings.EqualFold(data[0], "entity") {
		id, err := arg(data, 1, "handle")
		if err != nil {
			return t, err
		}
		v, err := parseIntFromFloat(id)
		if err != nil {
			return t, fmt.Errorf("error converting handle to int: %w", err)
		}
		if v <= 0 || v > math.MaxUint32 {
			return t, fmt.Errorf("handle %d out of range", v)
		}
		t.Entity = core.Handle(v)
		return t, nil
	}

	if len(data) != 3 {
		return t, fmt.Errorf("expected x y z, got %d values", len(data))
	}
	var coords [3]float64
	for i, d := range data {
		f, err := strconv.ParseFloat(util.CleanText(d), 64)
		if err != nil {
			return t, fmt.Errorf("error converting coordinate to float: %w", err)
		}
		coords[i] = f
	}
	t.Point = core.Position3D{X: coords[0], Y: coords[1], Z: coords[2]}

	p.logger.Debug("Parsed aim", "x", t.Point.X, "y", t.Point.Y, "z", t.Point.Z)
	return t, nil
}
