// Package parser turns operator command arguments into editor values. It never
// touches the session; handlers apply what it returns.
package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/OCAP2/missioneditor/internal/util"
)

// parseIntFromFloat parses a string that may be an integer ("3") or a whole
// float ("3.00") into int64.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// Parser provides pure []string -> editor value conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// arg returns the cleaned argument at i, or an error naming what is missing.
func arg(data []string, i int, what string) (string, error) {
	if i >= len(data) {
		return "", fmt.Errorf("missing %s", what)
	}
	return util.CleanText(data[i]), nil
}

// ParseSlot reads an objective chain slot.
func (p *Parser) ParseSlot(data []string) (int, error) {
	s, err := arg(data, 0, "slot")
	if err != nil {
		return 0, err
	}
	v, err := parseIntFromFloat(s)
	if err != nil {
		return 0, fmt.Errorf("error converting slot to int: %w", err)
	}
	return int(v), nil
}

// ParseName joins the arguments into one free-text name.
func (p *Parser) ParseName(data []string) string {
	parts := make([]string, 0, len(data))
	for _, d := range data {
		parts = append(parts, util.CleanText(d))
	}
	return strings.Join(parts, " ")
}
