package logging

import (
	"fmt"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGraylogWriter opens a UDP GELF writer to addr (host:port). Pass it to
// Setup with WithGraylog.
func NewGraylogWriter(addr, facility string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create graylog writer: %w", err)
	}
	if facility != "" {
		w.Facility = facility
	}
	return w, nil
}
