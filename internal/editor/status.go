package editor

// Status is a snapshot of the session for the status command and the status
// file. Take it on the frame thread.
type Status struct {
	Open      bool   `json:"open"`
	Mission   string `json:"mission,omitempty"`
	Path      string `json:"path,omitempty"`
	Records   int    `json:"records"`
	State     string `json:"state"`
	Hover     string `json:"hover,omitempty"`
	Editing   string `json:"editing,omitempty"`
	Loading   bool   `json:"loading"`
	Saving    bool   `json:"saving"`
	Prompting bool   `json:"prompting"`
}

// Status snapshots the session.
func (s *Session) Status() Status {
	st := Status{
		State:     s.placement.State().String(),
		Loading:   s.Loading(),
		Saving:    s.Saving(),
		Prompting: s.Prompting(),
	}
	doc := s.deps.Mission.GetDocument()
	if doc == nil {
		return st
	}
	st.Open = true
	st.Mission = doc.Info.Name
	st.Path = s.deps.Mission.GetPath()
	st.Records = doc.Count()
	if t, ok := s.hover.Target(); ok {
		st.Hover = t.Type.String()
	}
	if r, ok := s.properties.Current(); ok {
		st.Editing = r.Kind().String()
	}
	return st
}
