package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&EditorInfo{},
	&Mission{},
	&MissionRecord{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// EditorInfo identifies the editor installation that owns the database
type EditorInfo struct {
	gorm.Model
	GroupName        string `json:"groupName" gorm:"size:127"`
	GroupDescription string `json:"groupDescription" gorm:"size:255"`
}

func (*EditorInfo) TableName() string {
	return "editor_infos"
}

////////////////////////
// MISSION MODELS
////////////////////////

// Mission is one saved mission. Key is the name the operator saved it under.
type Mission struct {
	gorm.Model
	Key            string         `json:"key" gorm:"size:200;uniqueIndex:idx_mission_key"`
	Name           string         `json:"name" gorm:"size:200"`
	Description    string         `json:"description"`
	Author         string         `json:"author" gorm:"size:200"`
	Weather        string         `json:"weather" gorm:"size:64"`
	Hour           int            `json:"hour"`
	Minute         int            `json:"minute"`
	MinWanted      int            `json:"minWanted"`
	MaxWanted      int            `json:"maxWanted"`
	TimeLimit      int            `json:"timeLimit"`
	Interiors      datatypes.JSON `json:"interiors"`
	ObjectiveNames datatypes.JSON `json:"objectiveNames"`

	Records []MissionRecord `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
}

func (*Mission) TableName() string {
	return "missions"
}

// MissionRecord is one placed record. Collection and Ordinal keep the flat
// dump order; Props holds the kind-specific fields as JSON.
type MissionRecord struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	MissionID  uint           `json:"missionId" gorm:"index:idx_record_mission_id"`
	Collection string         `json:"collection" gorm:"size:32"`
	Ordinal    int            `json:"ordinal"`
	Kind       string         `json:"kind" gorm:"size:32;index:idx_record_kind"`
	PosX       float64        `json:"posX"`
	PosY       float64        `json:"posY"`
	PosZ       float64        `json:"posZ"`
	Pitch      float64        `json:"pitch"`
	Roll       float64        `json:"roll"`
	Yaw        float64        `json:"yaw"`
	Model      int64          `json:"model"`
	Props      datatypes.JSON `json:"props"`
}

func (*MissionRecord) TableName() string {
	return "mission_records"
}
