// Package convert provides functions to convert between GORM models and core missions
package convert

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/OCAP2/missioneditor/internal/model"
	"github.com/OCAP2/missioneditor/pkg/core"

	"gorm.io/datatypes"
)

// Collection names of the flat dump, in dump order.
const (
	CollectionSpawnpoints = "spawnpoints"
	CollectionActors      = "actors"
	CollectionVehicles    = "vehicles"
	CollectionObjects     = "objects"
	CollectionPickups     = "pickups"
	CollectionObjectives  = "objectives"
)

var collectionOrder = map[string]int{
	CollectionSpawnpoints: 0,
	CollectionActors:      1,
	CollectionVehicles:    2,
	CollectionObjects:     3,
	CollectionPickups:     4,
	CollectionObjectives:  5,
}

// MissionToModel converts a flat mission into a GORM Mission saved under key.
func MissionToModel(key string, data *core.MissionData) (model.Mission, error) {
	interiors, err := json.Marshal(data.Info.Interiors)
	if err != nil {
		return model.Mission{}, fmt.Errorf("marshal interiors: %w", err)
	}
	names, err := json.Marshal(data.ObjectiveNames)
	if err != nil {
		return model.Mission{}, fmt.Errorf("marshal objective names: %w", err)
	}

	m := model.Mission{
		Key:            key,
		Name:           data.Info.Name,
		Description:    data.Info.Description,
		Author:         data.Info.Author,
		Weather:        data.Info.Weather,
		Hour:           data.Info.Hour,
		Minute:         data.Info.Minute,
		MinWanted:      data.Info.MinWanted,
		MaxWanted:      data.Info.MaxWanted,
		TimeLimit:      data.Info.TimeLimit,
		Interiors:      datatypes.JSON(interiors),
		ObjectiveNames: datatypes.JSON(names),
		Records:        make([]model.MissionRecord, 0, data.RecordCount()),
	}

	add := func(collection string, i int, kind core.RecordKind, p core.Placement, v any) error {
		r, err := recordToModel(collection, i, kind.String(), p, v)
		if err != nil {
			return err
		}
		m.Records = append(m.Records, r)
		return nil
	}

	for i := range data.Spawnpoints {
		r := &data.Spawnpoints[i]
		if err := add(CollectionSpawnpoints, i, r.Kind(), r.Placement, r); err != nil {
			return model.Mission{}, err
		}
	}
	for i := range data.Actors {
		r := &data.Actors[i]
		if err := add(CollectionActors, i, r.Kind(), r.Placement, r); err != nil {
			return model.Mission{}, err
		}
	}
	for i := range data.Vehicles {
		r := &data.Vehicles[i]
		if err := add(CollectionVehicles, i, r.Kind(), r.Placement, r); err != nil {
			return model.Mission{}, err
		}
	}
	for i := range data.Objects {
		r := &data.Objects[i]
		if err := add(CollectionObjects, i, r.Kind(), r.Placement, r); err != nil {
			return model.Mission{}, err
		}
	}
	for i := range data.Pickups {
		r := &data.Pickups[i]
		if err := add(CollectionPickups, i, r.Kind(), r.Placement, r); err != nil {
			return model.Mission{}, err
		}
	}
	for i := range data.Objectives {
		o := &data.Objectives[i]
		kind, ok := core.ParseRecordKind(o.Type)
		if !ok || !kind.IsObjective() {
			return model.Mission{}, fmt.Errorf("objective %d: unknown type %q", i, o.Type)
		}
		if err := add(CollectionObjectives, i, kind, o.Placement, o); err != nil {
			return model.Mission{}, err
		}
	}
	return m, nil
}

func recordToModel(collection string, ordinal int, kind string, p core.Placement, v any) (model.MissionRecord, error) {
	props, err := json.Marshal(v)
	if err != nil {
		return model.MissionRecord{}, fmt.Errorf("marshal %s %d: %w", kind, ordinal, err)
	}
	return model.MissionRecord{
		Collection: collection,
		Ordinal:    ordinal,
		Kind:       kind,
		PosX:       p.Position.X,
		PosY:       p.Position.Y,
		PosZ:       p.Position.Z,
		Pitch:      p.Rotation.Pitch,
		Roll:       p.Rotation.Roll,
		Yaw:        p.Rotation.Yaw,
		Model:      int64(p.Model),
		Props:      datatypes.JSON(props),
	}, nil
}

// placementFromModel restores the placement columns, which take precedence
// over whatever Props carries.
func placementFromModel(r model.MissionRecord, p *core.Placement) {
	p.Position = core.Position3D{X: r.PosX, Y: r.PosY, Z: r.PosZ}
	p.Rotation = core.Rotation3D{Pitch: r.Pitch, Roll: r.Roll, Yaw: r.Yaw}
	p.Model = uint32(r.Model)
}

// MissionToCore converts a GORM Mission back into its flat form. Records are
// returned in dump order regardless of row order.
func MissionToCore(m model.Mission) (*core.MissionData, error) {
	data := &core.MissionData{
		Info: core.MissionInfo{
			Name:        m.Name,
			Description: m.Description,
			Author:      m.Author,
			Weather:     m.Weather,
			Hour:        m.Hour,
			Minute:      m.Minute,
			MinWanted:   m.MinWanted,
			MaxWanted:   m.MaxWanted,
			TimeLimit:   m.TimeLimit,
		},
		Spawnpoints: []core.Spawnpoint{},
		Actors:      []core.Actor{},
		Vehicles:    []core.Vehicle{},
		Objects:     []core.StaticObject{},
		Pickups:     []core.Pickup{},
		Objectives:  []core.ObjectiveData{},
	}
	if len(m.Interiors) > 0 {
		if err := json.Unmarshal(m.Interiors, &data.Info.Interiors); err != nil {
			return nil, fmt.Errorf("unmarshal interiors: %w", err)
		}
	}
	if len(m.ObjectiveNames) > 0 {
		if err := json.Unmarshal(m.ObjectiveNames, &data.ObjectiveNames); err != nil {
			return nil, fmt.Errorf("unmarshal objective names: %w", err)
		}
	}

	records := append([]model.MissionRecord(nil), m.Records...)
	sort.SliceStable(records, func(i, j int) bool {
		ci, cj := collectionOrder[records[i].Collection], collectionOrder[records[j].Collection]
		if ci != cj {
			return ci < cj
		}
		return records[i].Ordinal < records[j].Ordinal
	})

	for _, r := range records {
		if err := appendRecord(data, r); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func appendRecord(data *core.MissionData, r model.MissionRecord) error {
	decode := func(v any) error {
		if err := json.Unmarshal(r.Props, v); err != nil {
			return fmt.Errorf("unmarshal %s %d: %w", r.Kind, r.Ordinal, err)
		}
		return nil
	}

	switch r.Collection {
	case CollectionSpawnpoints:
		var v core.Spawnpoint
		if err := decode(&v); err != nil {
			return err
		}
		placementFromModel(r, &v.Placement)
		data.Spawnpoints = append(data.Spawnpoints, v)
	case CollectionActors:
		var v core.Actor
		if err := decode(&v); err != nil {
			return err
		}
		placementFromModel(r, &v.Placement)
		data.Actors = append(data.Actors, v)
	case CollectionVehicles:
		var v core.Vehicle
		if err := decode(&v); err != nil {
			return err
		}
		placementFromModel(r, &v.Placement)
		data.Vehicles = append(data.Vehicles, v)
	case CollectionObjects:
		var v core.StaticObject
		if err := decode(&v); err != nil {
			return err
		}
		placementFromModel(r, &v.Placement)
		data.Objects = append(data.Objects, v)
	case CollectionPickups:
		var v core.Pickup
		if err := decode(&v); err != nil {
			return err
		}
		placementFromModel(r, &v.Placement)
		data.Pickups = append(data.Pickups, v)
	case CollectionObjectives:
		var v core.ObjectiveData
		if err := decode(&v); err != nil {
			return err
		}
		placementFromModel(r, &v.Placement)
		v.Type = r.Kind
		data.Objectives = append(data.Objectives, v)
	default:
		return fmt.Errorf("record %d: unknown collection %q", r.ID, r.Collection)
	}
	return nil
}
