// Package classify maps live scene handles and world positions back to the
// mission records that own them.
package classify

import (
	"log/slog"

	"github.com/OCAP2/missioneditor/internal/mission"
	"github.com/OCAP2/missioneditor/internal/scene"
	"github.com/OCAP2/missioneditor/pkg/core"
)

// ProximityRadius is the distance within which a proximity-only record counts
// as under the aim point.
const ProximityRadius = 1.5

// SemanticType is what a live handle or proximity match means to the editor.
type SemanticType uint8

const (
	None SemanticType = iota
	Vehicle
	Actor
	StaticObject
	Pickup
	Spawnpoint
	ObjectiveActor
	ObjectiveVehicle
	ObjectivePickup
	ObjectiveMarker
)

var semanticTypeNames = [...]string{
	None:             "none",
	Vehicle:          "vehicle",
	Actor:            "actor",
	StaticObject:     "object",
	Pickup:           "pickup",
	Spawnpoint:       "spawnpoint",
	ObjectiveActor:   "objective_actor",
	ObjectiveVehicle: "objective_vehicle",
	ObjectivePickup:  "objective_pickup",
	ObjectiveMarker:  "objective_marker",
}

func (t SemanticType) String() string {
	if int(t) < len(semanticTypeNames) {
		return semanticTypeNames[t]
	}
	return "unknown"
}

// TypeOf returns the semantic type of a record.
func TypeOf(r core.Record) SemanticType {
	switch r.Kind() {
	case core.KindVehicle:
		return Vehicle
	case core.KindActor:
		return Actor
	case core.KindStaticObject:
		return StaticObject
	case core.KindPickup:
		return Pickup
	case core.KindSpawnpoint:
		return Spawnpoint
	case core.KindActorObjective:
		return ObjectiveActor
	case core.KindVehicleObjective:
		return ObjectiveVehicle
	case core.KindPickupObjective:
		return ObjectivePickup
	case core.KindTriggerMarker:
		return ObjectiveMarker
	}
	return None
}

// Match is a classified record.
type Match struct {
	Record core.Record
	Type   SemanticType
}

// Classifier answers ownership questions against the current document. It
// holds no state between calls, so every answer reflects the document and the
// scene as they are right now.
type Classifier struct {
	host   scene.Host
	doc    func() *mission.Document
	logger *slog.Logger
}

// New creates a Classifier. doc is called on every lookup so the classifier
// follows document replacement.
func New(host scene.Host, doc func() *mission.Document, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{host: host, doc: doc, logger: logger}
}

// Classify returns the semantic type of a live handle.
func (c *Classifier) Classify(h core.Handle) SemanticType {
	m, ok := c.Owner(h)
	if !ok {
		return None
	}
	return m.Type
}

// Owner returns the record owning h. Invalid handles have no owner. The scan
// order within a coarse kind puts plain records before objectives; when two
// records claim the same handle the first wins and the conflict is logged.
func (c *Classifier) Owner(h core.Handle) (Match, bool) {
	doc := c.doc()
	if doc == nil || h == core.NoHandle || !c.host.IsValid(h) {
		return Match{}, false
	}

	var candidates []core.Record
	switch c.host.KindOf(h) {
	case scene.KindPed:
		candidates = pedScan(doc)
	case scene.KindVehicle:
		candidates = vehicleScan(doc)
	case scene.KindObject:
		candidates = objectScan(doc)
	default:
		return Match{}, false
	}

	var first core.Record
	owners := 0
	for _, r := range candidates {
		if r.Base().Handle() != h {
			continue
		}
		owners++
		if first == nil {
			first = r
		}
	}
	if first == nil {
		return Match{}, false
	}
	if owners > 1 {
		c.logger.Warn("ambiguous classification", "handle", h, "owners", owners, "chosen", first.Kind().String())
	}
	return Match{Record: first, Type: TypeOf(first)}, true
}

func pedScan(doc *mission.Document) []core.Record {
	out := make([]core.Record, 0, len(doc.Actors)+len(doc.Spawnpoints))
	for _, r := range doc.Actors {
		out = append(out, r)
	}
	for _, r := range doc.Spawnpoints {
		out = append(out, r)
	}
	for _, o := range doc.Objectives {
		if o.Kind() == core.KindActorObjective {
			out = append(out, o)
		}
	}
	return out
}

func vehicleScan(doc *mission.Document) []core.Record {
	out := make([]core.Record, 0, len(doc.Vehicles))
	for _, r := range doc.Vehicles {
		out = append(out, r)
	}
	for _, o := range doc.Objectives {
		if o.Kind() == core.KindVehicleObjective {
			out = append(out, o)
		}
	}
	return out
}

func objectScan(doc *mission.Document) []core.Record {
	out := make([]core.Record, 0, len(doc.Objects)+len(doc.Pickups))
	for _, r := range doc.Objects {
		out = append(out, r)
	}
	for _, r := range doc.Pickups {
		out = append(out, r)
	}
	for _, o := range doc.Objectives {
		if o.Kind() == core.KindPickupObjective {
			out = append(out, o)
		}
	}
	return out
}

// ClassifyByProximity returns the first pickup, objective pickup or trigger
// marker stored within radius of pos. Order is scan order, not distance.
func (c *Classifier) ClassifyByProximity(pos core.Position3D, radius float64) (Match, bool) {
	return c.ClassifyByProximityOf(pos, radius)
}

// ClassifyByProximityOf is ClassifyByProximity restricted to the given types.
// No types means every proximity type is accepted.
func (c *Classifier) ClassifyByProximityOf(pos core.Position3D, radius float64, accept ...SemanticType) (Match, bool) {
	doc := c.doc()
	if doc == nil {
		return Match{}, false
	}
	for _, r := range proximityScan(doc) {
		t := TypeOf(r)
		if len(accept) > 0 && !contains(accept, t) {
			continue
		}
		if r.Base().Position.DistanceTo(pos) <= radius {
			return Match{Record: r, Type: t}, true
		}
	}
	return Match{}, false
}

func proximityScan(doc *mission.Document) []core.Record {
	out := make([]core.Record, 0, len(doc.Pickups)+len(doc.Objectives))
	for _, r := range doc.Pickups {
		out = append(out, r)
	}
	for _, o := range doc.Objectives {
		if o.Kind() == core.KindPickupObjective {
			out = append(out, o)
		}
	}
	for _, o := range doc.Objectives {
		if o.Kind() == core.KindTriggerMarker {
			out = append(out, o)
		}
	}
	return out
}

func contains(types []SemanticType, t SemanticType) bool {
	for _, have := range types {
		if have == t {
			return true
		}
	}
	return false
}
