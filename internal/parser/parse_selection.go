package parser

import (
	"fmt"
	"strings"

	"github.com/OCAP2/missioneditor/internal/placement"
	"github.com/OCAP2/missioneditor/internal/util"
	"github.com/OCAP2/missioneditor/pkg/core"
)

// defaultMarkerType is the cylinder trigger marker.
const defaultMarkerType = 1

// ParseSelection parses "<kind> <id>" into a placement selection. The id is a
// model for peds, vehicles and objects, a pickup hash for pickups and an
// optional marker type for trigger markers. Ids may be hex, decimal or names.
func (p *Parser) ParseSelection(data []string) (placement.Selection, error) {
	var sel placement.Selection

	name, err := arg(data, 0, "kind")
	if err != nil {
		return sel, err
	}
	kind, ok := core.ParseRecordKind(strings.ToLower(name))
	if !ok {
		return sel, fmt.Errorf("unknown kind %q", name)
	}
	sel.Kind = kind

	switch kind {
	case core.KindTriggerMarker:
		sel.MarkerType = defaultMarkerType
		if len(data) > 1 {
			v, err := parseIntFromFloat(util.CleanText(data[1]))
			if err != nil {
				return sel, fmt.Errorf("error converting marker type to int: %w", err)
			}
			sel.MarkerType = int(v)
		}
	case core.KindPickup, core.KindPickupObjective:
		id, err := arg(data, 1, "pickup hash")
		if err != nil {
			return sel, err
		}
		if sel.PickupHash, err = util.ParseHash(id); err != nil {
			return sel, fmt.Errorf("error parsing pickup hash: %w", err)
		}
	default:
		id, err := arg(data, 1, "model")
		if err != nil {
			return sel, err
		}
		if sel.Model, err = util.ParseHash(id); err != nil {
			return sel, fmt.Errorf("error parsing model: %w", err)
		}
	}

	p.logger.Debug("Parsed selection", "kind", sel.Kind.String(), "model", sel.Model, "pickup", sel.PickupHash)
	return sel, nil
}
