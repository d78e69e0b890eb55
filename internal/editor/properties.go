package editor

import (
	"github.com/OCAP2/missioneditor/pkg/core"
)

// Properties tracks the record whose property editor is open. It is the
// editor-side half of placement.PropertyEditors: the menu layer renders the
// record and calls Close when the operator backs out.
type Properties struct {
	current core.Record
	onClose func()
}

// Open binds the editor to r. Only one editor is open at a time.
func (p *Properties) Open(r core.Record, onClose func()) bool {
	if p.current != nil || r == nil {
		return false
	}
	p.current = r
	p.onClose = onClose
	return true
}

// Current returns the record being edited.
func (p *Properties) Current() (core.Record, bool) {
	return p.current, p.current != nil
}

// Objective returns the edited record when it belongs to the objective chain.
func (p *Properties) Objective() (core.Objective, bool) {
	o, ok := p.current.(core.Objective)
	return o, ok
}

// Close releases the record and fires the close callback once.
func (p *Properties) Close() {
	if p.current == nil {
		return
	}
	cb := p.onClose
	p.current, p.onClose = nil, nil
	if cb != nil {
		cb()
	}
}
