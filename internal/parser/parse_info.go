package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OCAP2/missioneditor/internal/util"
	"github.com/OCAP2/missioneditor/pkg/core"
)

// Wanted level bounds of the game.
const (
	minWantedLevel = 0
	maxWantedLevel = 5
)

// InfoUpdate changes one mission setting.
type InfoUpdate func(*core.MissionInfo) error

// ParseInfo parses "<field> <value...>" into an update of the mission
// settings. Fields: name, description, author, weather, time (HH:MM),
// wanted (min max), timelimit (seconds), interiors (comma separated).
func (p *Parser) ParseInfo(data []string) (InfoUpdate, error) {
	field, err := arg(data, 0, "field")
	if err != nil {
		return nil, err
	}
	values := data[1:]
	text := p.ParseName(values)

	switch strings.ToLower(field) {
	case "name":
		return func(info *core.MissionInfo) error { info.Name = text; return nil }, nil
	case "description":
		return func(info *core.MissionInfo) error { info.Description = text; return nil }, nil
	case "author":
		return func(info *core.MissionInfo) error { info.Author = text; return nil }, nil
	case "weather":
		if text == "" {
			return nil, fmt.Errorf("missing weather")
		}
		weather := strings.ToUpper(text)
		return func(info *core.MissionInfo) error { info.Weather = weather; return nil }, nil
	case "time":
		hour, minute, err := parseClock(text)
		if err != nil {
			return nil, err
		}
		return func(info *core.MissionInfo) error {
			info.Hour, info.Minute = hour, minute
			return nil
		}, nil
	case "wanted":
		lo, hi, err := parseWanted(values)
		if err != nil {
			return nil, err
		}
		return func(info *core.MissionInfo) error {
			info.MinWanted, info.MaxWanted = lo, hi
			return nil
		}, nil
	case "timelimit":
		v, err := parseIntFromFloat(text)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid time limit %q", text)
		}
		return func(info *core.MissionInfo) error { info.TimeLimit = int(v); return nil }, nil
	case "interiors":
		var interiors []string
		for _, s := range strings.Split(text, ",") {
			if s = strings.TrimSpace(s); s != "" {
				interiors = append(interiors, s)
			}
		}
		return func(info *core.MissionInfo) error { info.Interiors = interiors; return nil }, nil
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
}

func parseClock(s string) (int, int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour %q", h)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute %q", m)
	}
	return hour, minute, nil
}

func parseWanted(values []string) (int, int, error) {
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("wanted takes a minimum and a maximum")
	}
	lo, err := strconv.Atoi(util.CleanText(values[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("error converting min wanted to int: %w", err)
	}
	hi, err := strconv.Atoi(util.CleanText(values[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("error converting max wanted to int: %w", err)
	}
	if lo < minWantedLevel || hi > maxWantedLevel || lo > hi {
		return 0, 0, fmt.Errorf("wanted range %d-%d outside %d-%d", lo, hi, minWantedLevel, maxWantedLevel)
	}
	return lo, hi, nil
}
