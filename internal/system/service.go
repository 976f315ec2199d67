package system

import (
	"context"
	"log/slog"
	"math/rand"

	"starsystem-server/internal/body"
	"starsystem-server/internal/collision"
	"starsystem-server/internal/mass"
	"starsystem-server/internal/metrics"
	"starsystem-server/internal/route"
	"starsystem-server/internal/shared/errors"
	"starsystem-server/internal/snapshot"

	"github.com/google/uuid"
)

type Service struct {
	registry *Registry
	store    snapshot.Store
	metrics  *metrics.Collector
	logger   *slog.Logger

	// newSource seeds the id allocator of each new or restored session.
	// nil seeds from the clock.
	newSource func() rand.Source
}

func NewService(registry *Registry, store snapshot.Store, collector *metrics.Collector, logger *slog.Logger) *Service {
	logger.Debug("Initializing star system service", "snapshot_backend", store.Backend())

	return &Service{
		registry: registry,
		store:    store,
		metrics:  collector,
		logger:   logger,
	}
}

func (s *Service) allocator() *body.IDAllocator {
	if s.newSource == nil {
		return body.NewIDAllocator(nil)
	}
	return body.NewIDAllocator(s.newSource())
}

// SnapshotBackend names the configured snapshot store and reports whether it
// answers.
func (s *Service) SnapshotBackend(ctx context.Context) (string, error) {
	return s.store.Backend(), s.store.Ping(ctx)
}

func (s *Service) CreateSystem(ctx context.Context, req CreateSystemRequest) (view *SystemView, err error) {
	defer func() { s.metrics.RecordOperation("create_system", err) }()

	logger := s.logger.With("component", "system_service", "operation", "create_system")
	logger.Debug("Creating star system", "name", req.Name, "demo", req.Demo)

	ids := s.allocator()
	relative := req.RelativePositioning

	var star *body.Star
	if req.Demo {
		star, err = buildDemo(ids)
		relative = false
	} else {
		star, err = body.NewStar(ids, req.Name, req.Mass)
	}
	if err != nil {
		return nil, err
	}

	session := &Session{ID: uuid.New(), star: star, ids: ids, relativePositioning: relative}
	if _, err := s.registry.Put(session); err != nil {
		return nil, err
	}
	s.metrics.SetSessions(s.registry.Len())

	session.mu.RLock()
	defer session.mu.RUnlock()
	s.persist(ctx, session)

	logger.Info("Star system created",
		"system_id", session.ID,
		"star", star.Name(),
		"planets", star.PlanetCount())
	return session.view(), nil
}

func (s *Service) GetSystem(ctx context.Context, id uuid.UUID) (view *SystemView, err error) {
	defer func() { s.metrics.RecordOperation("get_system", err) }()

	err = s.read(ctx, id, func(session *Session) error {
		view = session.view()
		return nil
	})
	return view, err
}

func (s *Service) DeleteSystem(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.metrics.RecordOperation("delete_system", err) }()

	logger := s.logger.With("component", "system_service", "operation", "delete_system", "system_id", id)

	session, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.deleted {
		return errNoSystem(id)
	}

	// The snapshot goes first so a failed delete leaves the system fully
	// in place.
	if err := s.store.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete snapshot", "error", err)
		return err
	}
	session.deleted = true
	s.registry.Delete(id)
	s.metrics.SetSessions(s.registry.Len())

	logger.Info("Star system deleted")
	return nil
}

func (s *Service) SetRelativePositioning(ctx context.Context, id uuid.UUID, relative bool) (view *SystemView, err error) {
	defer func() { s.metrics.RecordOperation("set_positioning", err) }()

	err = s.mutate(ctx, id, func(session *Session) error {
		session.relativePositioning = relative
		view = session.view()
		return nil
	})
	return view, err
}

func (s *Service) AddPlanet(ctx context.Context, id uuid.UUID, req BodyRequest) (view *PlanetView, err error) {
	defer func() { s.metrics.RecordOperation("add_planet", err) }()

	logger := s.logger.With("component", "system_service", "operation", "add_planet", "system_id", id)
	logger.Debug("Adding planet", "name", req.Name, "x", req.X, "y", req.Y)

	err = s.mutate(ctx, id, func(session *Session) error {
		position := body.NewPosition(req.X, req.Y)
		if err := session.checkVacant(position); err != nil {
			return err
		}

		planet, err := body.NewPlanet(session.ids, req.Name, req.Mass, position)
		if err != nil {
			return err
		}
		if err := session.star.AddPlanet(planet); err != nil {
			return err
		}

		pv := session.planetView(planet)
		view = &pv
		logger.Info("Planet added", "planet_id", planet.ID(), "planet", planet.Name())
		return nil
	})
	return view, err
}

// AddSatellite adds a satellite to the planet matching planetQuery. The
// request position is relative to the planet when the system uses relative
// positioning.
func (s *Service) AddSatellite(ctx context.Context, id uuid.UUID, planetQuery string, req BodyRequest) (view *SatelliteView, err error) {
	defer func() { s.metrics.RecordOperation("add_satellite", err) }()

	logger := s.logger.With("component", "system_service", "operation", "add_satellite", "system_id", id)
	logger.Debug("Adding satellite", "planet_query", planetQuery, "name", req.Name, "x", req.X, "y", req.Y)

	err = s.mutate(ctx, id, func(session *Session) error {
		planet, ok := session.star.FindPlanet(planetQuery)
		if !ok {
			return errors.NotFoundf("no planet matches %q in the system of %s", planetQuery, session.star.Name())
		}

		position := body.NewPosition(req.X, req.Y)
		absolute := position
		if session.relativePositioning {
			absolute = position.Add(planet.Position())
		}
		if err := session.checkVacant(absolute); err != nil {
			return err
		}

		sat, err := body.NewSatellite(session.ids, req.Name, req.Mass, position, session.relativePositioning, planet)
		if err != nil {
			return err
		}
		if err := planet.AddSatellite(sat); err != nil {
			return err
		}

		sv := session.satelliteView(sat)
		view = &sv
		logger.Info("Satellite added",
			"satellite_id", sat.ID(),
			"satellite", sat.Name(),
			"planet_id", planet.ID())
		return nil
	})
	return view, err
}

// RemovePlanet removes the planet matching query together with its
// satellites.
func (s *Service) RemovePlanet(ctx context.Context, id uuid.UUID, query string) (removed *BodyRef, err error) {
	defer func() { s.metrics.RecordOperation("remove_planet", err) }()

	logger := s.logger.With("component", "system_service", "operation", "remove_planet", "system_id", id)

	err = s.mutate(ctx, id, func(session *Session) error {
		planet, ok := session.star.FindPlanet(query)
		if !ok {
			return errors.NotFoundf("no planet matches %q in the system of %s", query, session.star.Name())
		}
		satellites := planet.SatelliteCount()
		session.star.RemovePlanet(planet)

		ref := refOf(planet)
		removed = &ref
		logger.Info("Planet removed", "planet_id", planet.ID(), "satellites_removed", satellites)
		return nil
	})
	return removed, err
}

func (s *Service) RemoveSatellite(ctx context.Context, id uuid.UUID, query string) (removed *BodyRef, err error) {
	defer func() { s.metrics.RecordOperation("remove_satellite", err) }()

	logger := s.logger.With("component", "system_service", "operation", "remove_satellite", "system_id", id)

	err = s.mutate(ctx, id, func(session *Session) error {
		sat, planet, ok := session.star.FindSatellite(query)
		if !ok {
			return errors.NotFoundf("no satellite matches %q in the system of %s", query, session.star.Name())
		}
		planet.RemoveSatellite(sat)

		ref := refOf(sat)
		removed = &ref
		logger.Info("Satellite removed", "satellite_id", sat.ID(), "planet_id", planet.ID())
		return nil
	})
	return removed, err
}

func (s *Service) DescribeBody(ctx context.Context, id uuid.UUID, query string) (desc *BodyDescription, err error) {
	defer func() { s.metrics.RecordOperation("describe_body", err) }()

	err = s.read(ctx, id, func(session *Session) error {
		b, err := session.find(query)
		if err != nil {
			return err
		}
		desc = session.describe(b)
		return nil
	})
	return desc, err
}

func (s *Service) Route(ctx context.Context, id uuid.UUID, from, to string) (view *RouteView, err error) {
	defer func() { s.metrics.RecordOperation("route", err) }()

	err = s.read(ctx, id, func(session *Session) error {
		start, err := session.find(from)
		if err != nil {
			return err
		}
		finish, err := session.find(to)
		if err != nil {
			return err
		}

		hops, err := route.Plan(session.star, start, finish)
		if err != nil {
			return err
		}
		view = &RouteView{
			From:   refOf(start),
			To:     refOf(finish),
			Hops:   refsOf(hops),
			Length: route.Length(hops),
		}
		return nil
	})
	return view, err
}

func (s *Service) Collisions(ctx context.Context, id uuid.UUID) (view *CollisionView, err error) {
	defer func() { s.metrics.RecordOperation("collisions", err) }()

	err = s.read(ctx, id, func(session *Session) error {
		view = &CollisionView{}
		if pair, found := collision.FirstCollision(session.star); found {
			view.Collision = true
			view.First = []BodyRef{refOf(pair.A), refOf(pair.B)}
		}
		return nil
	})
	return view, err
}

func (s *Service) CenterOfMass(ctx context.Context, id uuid.UUID) (view *CenterOfMassView, err error) {
	defer func() { s.metrics.RecordOperation("center_of_mass", err) }()

	err = s.read(ctx, id, func(session *Session) error {
		center, err := mass.CenterOfMass(session.star)
		if err != nil {
			return err
		}
		view = &CenterOfMassView{Position: center, TotalMass: mass.Total(session.star)}
		return nil
	})
	return view, err
}

func errNoSystem(id uuid.UUID) error {
	return errors.NotFoundf("star system %s not found", id)
}

// session returns the held session for id, restoring it from the snapshot
// store when the registry does not hold it.
func (s *Service) session(ctx context.Context, id uuid.UUID) (*Session, error) {
	if session, ok := s.registry.Get(id); ok {
		return session, nil
	}

	logger := s.logger.With("component", "system_service", "operation", "restore_system", "system_id", id)

	doc, err := s.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrorTypeNotFound) {
			return nil, errNoSystem(id)
		}
		logger.Error("Failed to load snapshot", "error", err)
		return nil, err
	}

	ids := s.allocator()
	star, err := snapshot.Decode(doc, ids)
	if err != nil {
		logger.Error("Failed to decode snapshot", "error", err)
		return nil, errors.WrapInternal("failed to restore star system", err)
	}

	session, err := s.registry.Put(&Session{
		ID:                  id,
		star:                star,
		ids:                 ids,
		relativePositioning: doc.RelativePositioning,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.SetSessions(s.registry.Len())

	logger.Info("Star system restored from snapshot", "planets", star.PlanetCount())
	return session, nil
}

func (s *Service) read(ctx context.Context, id uuid.UUID, fn func(*Session) error) error {
	session, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	session.mu.RLock()
	defer session.mu.RUnlock()
	if session.deleted {
		return errNoSystem(id)
	}
	return fn(session)
}

// mutate applies fn under the write lock and snapshots the session when fn
// succeeds.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(*Session) error) error {
	session, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.deleted {
		return errNoSystem(id)
	}

	if err := fn(session); err != nil {
		return err
	}
	s.persist(ctx, session)
	return nil
}

// persist writes the session snapshot. The in-memory session stays
// authoritative, so a failed write is logged and counted but not returned.
func (s *Service) persist(ctx context.Context, session *Session) {
	doc := snapshot.Encode(session.ID, session.star, session.relativePositioning)
	err := s.store.Save(ctx, doc)
	s.metrics.RecordOperation("snapshot_save", err)
	if err != nil {
		s.logger.Error("Failed to save snapshot",
			"component", "system_service",
			"operation", "persist",
			"system_id", session.ID,
			"backend", s.store.Backend(),
			"error", err)
	}
}

func (session *Session) find(query string) (body.Body, error) {
	b, ok := session.star.FindCelestialBody(query)
	if !ok {
		return nil, errors.NotFoundf("no celestial body matches %q in the system of %s", query, session.star.Name())
	}
	return b, nil
}

// checkVacant rejects a position already held by any body of the system.
func (session *Session) checkVacant(position body.Position) error {
	for _, b := range session.star.Bodies() {
		if b.Position().Equal(position) {
			return errors.Conflictf("position already taken: %s %s is at %s", b.Kind(), b.Name(), position)
		}
	}
	return nil
}
