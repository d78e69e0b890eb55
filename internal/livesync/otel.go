package livesync

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/missioneditor/internal/livesync"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
