// Package livesync moves missions between their flat persisted form and the
// live scene. Save pulls live state back into records before flattening; Load
// streams models in and instantiates every record it can.
package livesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/OCAP2/missioneditor/internal/cache"
	"github.com/OCAP2/missioneditor/internal/mission"
	"github.com/OCAP2/missioneditor/internal/scene"
	"github.com/OCAP2/missioneditor/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReseatRadius is how far from its stored position a seated actor looks for
// its vehicle on load.
const ReseatRadius = 3.0

// Skip describes a record that could not be instantiated.
type Skip struct {
	Kind  core.RecordKind
	Model uint32
	Err   error
}

// Report summarises a load.
type Report struct {
	Loaded   int
	Skipped  []Skip
	Reseated int
}

// SkippedCount returns the number of records left out of the document.
func (r Report) SkippedCount() int {
	return len(r.Skipped)
}

// Prepared is a mission whose models were requested but whose records have no
// live handles yet.
type Prepared struct {
	Document *mission.Document
	models   map[uint32]error
}

// Service syncs documents with the scene.
type Service struct {
	host        scene.Host
	models      *cache.ModelCache
	pickupModel uint32
	logger      *slog.Logger

	loaded  metric.Int64Counter
	skipped metric.Int64Counter
}

// New creates a Service. models may be shared with other loaders.
func New(host scene.Host, models *cache.ModelCache, pickupModel uint32, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if models == nil {
		models = cache.NewModelCache()
	}
	s := &Service{host: host, models: models, pickupModel: pickupModel, logger: logger}

	m := meter()
	var err error
	s.loaded, err = m.Int64Counter(
		"livesync.records.loaded",
		metric.WithDescription("Records instantiated from saved missions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating loaded counter: %w", err)
	}
	s.skipped, err = m.Int64Counter(
		"livesync.records.skipped",
		metric.WithDescription("Records skipped on load because their model failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}
	return s, nil
}

// Pull copies the live transform of every spawned record back into the record.
// Vehicles also get their live colours; pickups keep their stored model since
// the live prop is shared. Records whose handle died out of band keep their
// stored values. Actors whose vehicle vanished out of band lose their seat.
func (s *Service) Pull(doc *mission.Document) {
	for _, r := range doc.Records() {
		h := r.Base().Handle()
		if h == core.NoHandle || !s.host.IsValid(h) {
			continue
		}
		if t, ok := s.host.Transform(h); ok {
			r.Base().SetTransform(t)
		}
		switch v := r.(type) {
		case *core.Vehicle:
			v.Model = s.host.Model(h)
			v.PrimaryColor, v.SecondaryColor = s.host.Colors(h)
		case *core.VehicleObjective:
			v.Model = s.host.Model(h)
			v.PrimaryColor, v.SecondaryColor = s.host.Colors(h)
		case *core.Pickup, *core.PickupObjective:
		default:
			r.Base().Model = s.host.Model(h)
		}
	}
	s.disembarkOrphans(doc)
}

func (s *Service) disembarkOrphans(doc *mission.Document) {
	seated := make(map[core.Handle]bool)
	for _, v := range vehicleRecords(doc) {
		h := v.Base().Handle()
		if h == core.NoHandle || !s.host.IsValid(h) {
			continue
		}
		for _, ped := range s.host.Occupants(h) {
			seated[ped] = true
		}
	}
	for _, r := range doc.Records() {
		ped, ok := core.Seated(r)
		if !ok || !ped.SpawnInVehicle {
			continue
		}
		h := r.Base().Handle()
		if h == core.NoHandle || !s.host.IsValid(h) || seated[h] {
			continue
		}
		s.logger.Debug("disembarking actor without vehicle", "kind", r.Kind().String(), "seat", ped.VehicleSeat)
		ped.Disembark()
	}
}

func vehicleRecords(doc *mission.Document) []core.Record {
	var vehicles []core.Record
	for _, v := range doc.Vehicles {
		vehicles = append(vehicles, v)
	}
	for _, o := range doc.Objectives {
		if o.Kind() == core.KindVehicleObjective {
			vehicles = append(vehicles, o)
		}
	}
	return vehicles
}

// Save pulls live state into doc and returns its flat form.
func (s *Service) Save(doc *mission.Document) *core.MissionData {
	s.Pull(doc)
	return doc.Data()
}

// Prepare rebuilds the document and requests every model it needs. It does not
// touch live entities, so it can run off the frame thread.
func (s *Service) Prepare(ctx context.Context, data *core.MissionData, progress *cache.SafeCounter) (*Prepared, error) {
	doc, err := mission.FromData(data)
	if err != nil {
		return nil, fmt.Errorf("rebuild mission: %w", err)
	}

	p := &Prepared{Document: doc, models: make(map[uint32]error)}
	for _, r := range doc.Records() {
		model := scene.ModelFor(r, s.pickupModel)
		if model == 0 {
			continue
		}
		if _, seen := p.models[model]; seen {
			continue
		}
		err := s.models.Ensure(ctx, model, s.host.RequestModel)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("prepare mission: %w", ctxErr)
		}
		p.models[model] = err
		if progress != nil {
			progress.Inc()
		}
	}
	return p, nil
}

// Instantiate spawns the live entity of every prepared record on the calling
// (frame) thread. Records whose model failed, or whose spawn fails, are removed
// from the document and reported; siblings are unaffected.
func (s *Service) Instantiate(ctx context.Context, p *Prepared) (*mission.Document, Report) {
	doc := p.Document
	var report Report

	for _, r := range doc.Records() {
		model := scene.ModelFor(r, s.pickupModel)
		if err := p.models[model]; model != 0 && err != nil {
			s.skip(ctx, doc, r, model, err, &report)
			continue
		}
		h, err := scene.Spawn(s.host, r, s.pickupModel)
		if err != nil {
			s.skip(ctx, doc, r, model, err, &report)
			continue
		}
		r.Base().Attach(h)
		report.Loaded++
		s.loaded.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", r.Kind().String())))
	}

	report.Reseated = s.reseat(doc)

	if n := report.SkippedCount(); n > 0 {
		s.logger.Warn("mission loaded with skipped records", "loaded", report.Loaded, "skipped", n)
	} else {
		s.logger.Info("mission loaded", "loaded", report.Loaded, "reseated", report.Reseated)
	}
	return doc, report
}

// Load prepares and instantiates data in one go.
func (s *Service) Load(ctx context.Context, data *core.MissionData) (*mission.Document, Report, error) {
	p, err := s.Prepare(ctx, data, nil)
	if err != nil {
		return nil, Report{}, err
	}
	doc, report := s.Instantiate(ctx, p)
	return doc, report, nil
}

func (s *Service) skip(ctx context.Context, doc *mission.Document, r core.Record, model uint32, err error, report *Report) {
	if !errors.Is(err, core.ErrModelLoad) {
		err = fmt.Errorf("%w: %w", core.ErrModelLoad, err)
	}
	_ = doc.Remove(r)
	report.Skipped = append(report.Skipped, Skip{Kind: r.Kind(), Model: model, Err: err})
	s.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", r.Kind().String())))
	s.logger.Warn("skipping record", "kind", r.Kind().String(), "model", model, "error", err)
}

// reseat warps actors that were saved inside a vehicle back into the nearest
// vehicle at their stored seat. Actors with no vehicle in range are disembarked.
func (s *Service) reseat(doc *mission.Document) int {
	vehicles := vehicleRecords(doc)
	n := 0
	for _, r := range doc.Records() {
		ped, ok := core.Seated(r)
		if !ok || !ped.SpawnInVehicle || !r.Base().Spawned() {
			continue
		}
		v := nearest(vehicles, r.Base().Position)
		if v == nil {
			s.logger.Warn("no vehicle for seated actor", "kind", r.Kind().String(), "seat", ped.VehicleSeat)
			ped.Disembark()
			continue
		}
		s.host.WarpIntoVehicle(r.Base().Handle(), v.Base().Handle(), ped.VehicleSeat)
		n++
	}
	return n
}

func nearest(vehicles []core.Record, pos core.Position3D) core.Record {
	var (
		best     core.Record
		bestDist = math.Inf(1)
	)
	for _, v := range vehicles {
		if !v.Base().Spawned() {
			continue
		}
		if d := v.Base().Position.DistanceTo(pos); d <= ReseatRadius && d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}
