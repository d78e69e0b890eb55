package parser

import (
	"fmt"

	"github.com/OCAP2/missioneditor/internal/input"
)

// ParseActions maps each argument to a placement action. One unknown word
// rejects the whole batch.
func (p *Parser) ParseActions(data []string) ([]input.Action, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing action")
	}
	actions := make([]input.Action, 0, len(data))
	for _, d := range data {
		a, ok := input.ParseAction(d)
		if !ok {
			return nil, fmt.Errorf("unknown action %q", d)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
