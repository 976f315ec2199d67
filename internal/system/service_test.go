package system

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"starsystem-server/internal/body"
	"starsystem-server/internal/metrics"
	"starsystem-server/internal/shared/errors"
	"starsystem-server/internal/snapshot"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testCollector(t *testing.T) *metrics.Collector {
	t.Helper()
	c, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}
	return c
}

func newTestService(t *testing.T, store snapshot.Store, maxSessions int) *Service {
	t.Helper()
	svc := NewService(NewRegistry(maxSessions), store, testCollector(t), testLogger())
	var seed int64
	svc.newSource = func() rand.Source {
		seed++
		return rand.NewSource(seed)
	}
	return svc
}

func createSystem(t *testing.T, svc *Service, req CreateSystemRequest) *SystemView {
	t.Helper()
	view, err := svc.CreateSystem(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateSystem error = %v", err)
	}
	return view
}

func names(refs []BodyRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}

func TestCreateSystem(t *testing.T) {
	svc := newTestService(t, snapshot.NewMemoryStore(), 10)

	view := createSystem(t, svc, CreateSystemRequest{Name: "Vega", Mass: 12, RelativePositioning: true})
	if view.Star.Name != "Vega" || view.Star.Mass != 12 {
		t.Errorf("star = %s/%v, want Vega/12", view.Star.Name, view.Star.Mass)
	}
	if !view.Star.Position.Equal(body.Origin) {
		t.Errorf("star position = %v, want origin", view.Star.Position)
	}
	if !view.RelativePositioning {
		t.Error("relative positioning flag was dropped")
	}
	if len(view.Planets) != 0 {
		t.Errorf("new system has %d planets, want 0", len(view.Planets))
	}

	if _, err := svc.CreateSystem(context.Background(), CreateSystemRequest{Name: "  ", Mass: 1}); !errors.Is(err, errors.ErrorTypeValidation) {
		t.Errorf("blank name error = %v, want validation", err)
	}
	if _, err := svc.CreateSystem(context.Background(), CreateSystemRequest{Name: "Neg", Mass: -1}); !errors.Is(err, errors.ErrorTypeValidation) {
		t.Errorf("negative mass error = %v, want validation", err)
	}
}

func TestCreateSystemRespectsSessionLimit(t *testing.T) {
	svc := newTestService(t, snapshot.NewMemoryStore(), 1)
	createSystem(t, svc, CreateSystemRequest{Name: "One", Mass: 1})

	_, err := svc.CreateSystem(context.Background(), CreateSystemRequest{Name: "Two", Mass: 1})
	if !errors.Is(err, errors.ErrorTypeCapacityExceeded) {
		t.Fatalf("second CreateSystem error = %v, want capacity_exceeded", err)
	}
}

func TestDemoSystem(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, snapshot.NewMemoryStore(), 10)
	view := createSystem(t, svc, CreateSystemRequest{Demo: true, RelativePositioning: true})

	if view.Star.Name != "Sole" || view.RelativePositioning {
		t.Fatalf("demo header = %s relative=%v, want Sole relative=false", view.Star.Name, view.RelativePositioning)
	}
	if len(view.Planets) != 2 || len(view.Planets[0].Satellites) != 1 || len(view.Planets[1].Satellites) != 2 {
		t.Fatalf("demo layout = %+v", view.Planets)
	}

	r, err := svc.Route(ctx, view.ID, "luna1", "LUNA3")
	if err != nil {
		t.Fatalf("Route error = %v", err)
	}
	want := []string{"Luna1", "Pianeta1", "Sole", "Pianeta2", "Luna3"}
	if got := names(r.Hops); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("route = %v, want %v", got, want)
	}

	c, err := svc.Collisions(ctx, view.ID)
	if err != nil {
		t.Fatalf("Collisions error = %v", err)
	}
	if !c.Collision || fmt.Sprint(names(c.First)) != fmt.Sprint([]string{"Pianeta1", "Luna3"}) {
		t.Errorf("collisions = %+v, want Pianeta1 crossing Luna3", c)
	}

	com, err := svc.CenterOfMass(ctx, view.ID)
	if err != nil {
		t.Fatalf("CenterOfMass error = %v", err)
	}
	if !com.Position.Equal(body.NewPosition(28.0/46, 12.0/46)) || com.TotalMass != 46 {
		t.Errorf("center of mass = %v total %v, want (28/46, 12/46) total 46", com.Position, com.TotalMass)
	}
}

func TestAddPlanetAndSatellite(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, snapshot.NewMemoryStore(), 10)
	sys := createSystem(t, svc, CreateSystemRequest{Name: "Sole", Mass: 30})

	planet, err := svc.AddPlanet(ctx, sys.ID, BodyRequest{Name: "Pianeta1", Mass: 5, X: 0, Y: -3})
	if err != nil {
		t.Fatalf("AddPlanet error = %v", err)
	}

	sat, err := svc.AddSatellite(ctx, sys.ID, planet.ID, BodyRequest{Name: "Luna1", Mass: 1, X: -1, Y: -4})
	if err != nil {
		t.Fatalf("AddSatellite error = %v", err)
	}
	if sat.Relative || !sat.Position.Equal(body.NewPosition(-1, -4)) {
		t.Errorf("absolute satellite view = %+v", sat)
	}

	tests := []struct {
		name     string
		add      func() error
		wantType errors.ErrorType
	}{
		{"planet on the star", func() error {
			_, err := svc.AddPlanet(ctx, sys.ID, BodyRequest{Name: "P", Mass: 1, X: 0, Y: 0})
			return err
		}, errors.ErrorTypeConflict},
		{"planet on a planet", func() error {
			_, err := svc.AddPlanet(ctx, sys.ID, BodyRequest{Name: "P", Mass: 1, X: 0, Y: -3})
			return err
		}, errors.ErrorTypeConflict},
		{"planet on a satellite", func() error {
			_, err := svc.AddPlanet(ctx, sys.ID, BodyRequest{Name: "P", Mass: 1, X: -1, Y: -4})
			return err
		}, errors.ErrorTypeConflict},
		{"satellite on a satellite", func() error {
			_, err := svc.AddSatellite(ctx, sys.ID, "Pianeta1", BodyRequest{Name: "S", Mass: 1, X: -1, Y: -4})
			return err
		}, errors.ErrorTypeConflict},
		{"satellite of unknown planet", func() error {
			_, err := svc.AddSatellite(ctx, sys.ID, "Nowhere", BodyRequest{Name: "S", Mass: 1, X: 9, Y: 9})
			return err
		}, errors.ErrorTypeNotFound},
		{"unknown system", func() error {
			_, err := svc.AddPlanet(ctx, uuid.New(), BodyRequest{Name: "P", Mass: 1, X: 5, Y: 5})
			return err
		}, errors.ErrorTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.add(); !errors.Is(err, tt.wantType) {
				t.Errorf("error = %v, want %s", err, tt.wantType)
			}
		})
	}

	view, err := svc.GetSystem(ctx, sys.ID)
	if err != nil {
		t.Fatalf("GetSystem error = %v", err)
	}
	if len(view.Planets) != 1 || len(view.Planets[0].Satellites) != 1 {
		t.Errorf("failed insertions changed the system: %+v", view.Planets)
	}
}

func TestRelativePositioning(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, snapshot.NewMemoryStore(), 10)
	sys := createSystem(t, svc, CreateSystemRequest{Name: "Sole", Mass: 30, RelativePositioning: true})

	if _, err := svc.AddPlanet(ctx, sys.ID, BodyRequest{Name: "Pianeta2", Mass: 7, X: 3, Y: 3}); err != nil {
		t.Fatalf("AddPlanet error = %v", err)
	}
	sat, err := svc.AddSatellite(ctx, sys.ID, "pianeta2", BodyRequest{Name: "Luna2", Mass: 2, X: -1, Y: 0})
	if err != nil {
		t.Fatalf("AddSatellite error = %v", err)
	}
	if !sat.Relative || !sat.Position.Equal(body.NewPosition(-1, 0)) {
		t.Errorf("relative view = %+v, want relative (-1, 0)", sat)
	}

	// (-1, 0) relative to (3, 3) is the absolute position (2, 3).
	if _, err := svc.AddPlanet(ctx, sys.ID, BodyRequest{Name: "Blocked", Mass: 1, X: 2, Y: 3}); !errors.Is(err, errors.ErrorTypeConflict) {
		t.Errorf("planet on relative satellite error = %v, want conflict", err)
	}

	view, err := svc.SetRelativePositioning(ctx, sys.ID, false)
	if err != nil {
		t.Fatalf("SetRelativePositioning error = %v", err)
	}
	shown := view.Planets[0].Satellites[0]
	if shown.Relative || !shown.Position.Equal(body.NewPosition(2, 3)) {
		t.Errorf("absolute view after toggle = %+v, want absolute (2, 3)", shown)
	}
}

func TestRemoveBodies(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, snapshot.NewMemoryStore(), 10)
	sys := createSystem(t, svc, CreateSystemRequest{Demo: true})

	removed, err := svc.RemoveSatellite(ctx, sys.ID, "Luna2")
	if err != nil {
		t.Fatalf("RemoveSatellite error = %v", err)
	}
	if removed.Name != "Luna2" || removed.Kind != body.KindSatellite {
		t.Errorf("removed = %+v, want satellite Luna2", removed)
	}

	if _, err := svc.RemovePlanet(ctx, sys.ID, "Pianeta2"); err != nil {
		t.Fatalf("RemovePlanet error = %v", err)
	}
	if _, err := svc.DescribeBody(ctx, sys.ID, "Luna3"); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("satellite of removed planet is still findable: %v", err)
	}

	if _, err := svc.RemovePlanet(ctx, sys.ID, "Pianeta2"); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("second RemovePlanet error = %v, want not_found", err)
	}
	if _, err := svc.RemoveSatellite(ctx, sys.ID, "Pianeta1"); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("RemoveSatellite of a planet error = %v, want not_found", err)
	}
}

func TestDescribeBody(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, snapshot.NewMemoryStore(), 10)
	sys := createSystem(t, svc, CreateSystemRequest{Demo: true})

	tests := []struct {
		query    string
		kind     body.Kind
		path     string
		orbiting string
	}{
		{"sole", body.KindStar, "Sole", ""},
		{"Pianeta2", body.KindPlanet, "Sole > Pianeta2", ""},
		{"luna3", body.KindSatellite, "Sole > Pianeta2 > Luna3", "Pianeta2"},
		{sys.Planets[0].Satellites[0].ID, body.KindSatellite, "Sole > Pianeta1 > Luna1", "Pianeta1"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			desc, err := svc.DescribeBody(ctx, sys.ID, tt.query)
			if err != nil {
				t.Fatalf("DescribeBody error = %v", err)
			}
			if desc.Kind != tt.kind || desc.Path != tt.path {
				t.Errorf("kind/path = %s %q, want %s %q", desc.Kind, desc.Path, tt.kind, tt.path)
			}
			orbiting := ""
			if desc.OrbitingPlanet != nil {
				orbiting = desc.OrbitingPlanet.Name
			}
			if orbiting != tt.orbiting {
				t.Errorf("orbiting planet = %q, want %q", orbiting, tt.orbiting)
			}
		})
	}

	if _, err := svc.DescribeBody(ctx, sys.ID, "Pluto"); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("unknown body error = %v, want not_found", err)
	}
}

func TestCenterOfMassDegenerate(t *testing.T) {
	svc := newTestService(t, snapshot.NewMemoryStore(), 10)
	sys := createSystem(t, svc, CreateSystemRequest{Name: "Void", Mass: 0})

	_, err := svc.CenterOfMass(context.Background(), sys.ID)
	if !errors.Is(err, errors.ErrorTypeDegenerateSystem) {
		t.Fatalf("CenterOfMass error = %v, want degenerate_system", err)
	}
}

func TestRestoreFromSnapshot(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()

	first := newTestService(t, store, 10)
	sys := createSystem(t, first, CreateSystemRequest{Demo: true})
	if _, err := first.SetRelativePositioning(ctx, sys.ID, true); err != nil {
		t.Fatalf("SetRelativePositioning error = %v", err)
	}

	// A second service with an empty registry, as after a restart.
	second := newTestService(t, store, 10)
	restored, err := second.GetSystem(ctx, sys.ID)
	if err != nil {
		t.Fatalf("GetSystem after restart error = %v", err)
	}
	if !restored.RelativePositioning || len(restored.Planets) != 2 {
		t.Fatalf("restored view = %+v", restored)
	}
	if restored.Planets[1].Satellites[0].ID != sys.Planets[1].Satellites[0].ID {
		t.Errorf("restored satellite id = %s, want %s", restored.Planets[1].Satellites[0].ID, sys.Planets[1].Satellites[0].ID)
	}

	planet, err := second.AddPlanet(ctx, sys.ID, BodyRequest{Name: "Pianeta3", Mass: 1, X: 10, Y: 10})
	if err != nil {
		t.Fatalf("AddPlanet after restore error = %v", err)
	}
	for _, p := range sys.Planets {
		if p.ID == planet.ID {
			t.Fatalf("restored allocator reissued id %s", planet.ID)
		}
		for _, s := range p.Satellites {
			if s.ID == planet.ID {
				t.Fatalf("restored allocator reissued id %s", planet.ID)
			}
		}
	}
}

func TestDeleteSystem(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	svc := newTestService(t, store, 10)
	sys := createSystem(t, svc, CreateSystemRequest{Name: "Gone", Mass: 1})

	if err := svc.DeleteSystem(ctx, sys.ID); err != nil {
		t.Fatalf("DeleteSystem error = %v", err)
	}
	if _, err := svc.GetSystem(ctx, sys.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("GetSystem after delete error = %v, want not_found", err)
	}
	if _, err := store.Load(ctx, sys.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("snapshot survived delete: %v", err)
	}
	if err := svc.DeleteSystem(ctx, sys.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("second DeleteSystem error = %v, want not_found", err)
	}
}

type failingStore struct {
	*snapshot.MemoryStore
}

func (failingStore) Save(context.Context, *snapshot.Document) error {
	return errors.WrapExternal("failed to save snapshot", fmt.Errorf("connection refused"))
}

func TestSnapshotFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, failingStore{snapshot.NewMemoryStore()}, 10)
	sys := createSystem(t, svc, CreateSystemRequest{Name: "Sole", Mass: 30})

	if _, err := svc.AddPlanet(ctx, sys.ID, BodyRequest{Name: "Pianeta1", Mass: 5, X: 0, Y: -3}); err != nil {
		t.Fatalf("AddPlanet error = %v", err)
	}
	view, err := svc.GetSystem(ctx, sys.ID)
	if err != nil {
		t.Fatalf("GetSystem error = %v", err)
	}
	if len(view.Planets) != 1 {
		t.Errorf("planets = %d, want 1", len(view.Planets))
	}

	if got := testutil.ToFloat64(svc.metrics.Operations.WithLabelValues("snapshot_save", "external")); got != 2 {
		t.Errorf("failed snapshot saves = %v, want 2", got)
	}
}

// gatedStore parks the first Save after arm until release is closed.
type gatedStore struct {
	*snapshot.MemoryStore
	armed   atomic.Bool
	parked  chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: snapshot.NewMemoryStore(),
		parked:      make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Save(ctx context.Context, doc *snapshot.Document) error {
	if g.armed.CompareAndSwap(true, false) {
		close(g.parked)
		<-g.release
	}
	return g.MemoryStore.Save(ctx, doc)
}

func TestDeleteDuringMutationStaysDeleted(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()
	svc := newTestService(t, store, 10)
	sys := createSystem(t, svc, CreateSystemRequest{Name: "Sole", Mass: 30})

	store.armed.Store(true)
	addDone := make(chan error, 1)
	go func() {
		_, err := svc.AddPlanet(ctx, sys.ID, BodyRequest{Name: "Pianeta1", Mass: 5, X: 0, Y: -3})
		addDone <- err
	}()
	<-store.parked

	deleteDone := make(chan error, 1)
	go func() { deleteDone <- svc.DeleteSystem(ctx, sys.ID) }()

	// The delete must wait for the parked mutation to finish.
	select {
	case err := <-deleteDone:
		t.Fatalf("DeleteSystem returned %v while a mutation was saving", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(store.release)

	if err := <-addDone; err != nil {
		t.Fatalf("AddPlanet error = %v", err)
	}
	if err := <-deleteDone; err != nil {
		t.Fatalf("DeleteSystem error = %v", err)
	}

	if _, err := svc.GetSystem(ctx, sys.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("GetSystem after delete error = %v, want not_found", err)
	}
	if _, err := store.Load(ctx, sys.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("snapshot after delete error = %v, want not_found", err)
	}
}

func TestMutationOnDeletedSessionIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	svc := newTestService(t, store, 10)
	sys := createSystem(t, svc, CreateSystemRequest{Name: "Sole", Mass: 30})

	held, err := svc.session(ctx, sys.ID)
	if err != nil {
		t.Fatalf("session error = %v", err)
	}
	if err := svc.DeleteSystem(ctx, sys.ID); err != nil {
		t.Fatalf("DeleteSystem error = %v", err)
	}

	err = svc.mutate(ctx, sys.ID, func(*Session) error { return nil })
	if !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("mutate after delete error = %v, want not_found", err)
	}
	if !held.deleted {
		t.Error("held session not marked deleted")
	}
	if _, err := store.Load(ctx, sys.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("snapshot after delete error = %v, want not_found", err)
	}
}

type undeletableStore struct {
	*snapshot.MemoryStore
}

func (undeletableStore) Delete(context.Context, uuid.UUID) error {
	return errors.WrapExternal("failed to delete snapshot", fmt.Errorf("connection refused"))
}

func TestFailedDeleteKeepsSystem(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, undeletableStore{snapshot.NewMemoryStore()}, 10)
	sys := createSystem(t, svc, CreateSystemRequest{Name: "Sole", Mass: 30})

	if err := svc.DeleteSystem(ctx, sys.ID); !errors.Is(err, errors.ErrorTypeExternal) {
		t.Fatalf("DeleteSystem error = %v, want external", err)
	}
	if _, ok := svc.registry.Get(sys.ID); !ok {
		t.Error("registry dropped the system although its snapshot remains")
	}
	if _, err := svc.AddPlanet(ctx, sys.ID, BodyRequest{Name: "Pianeta1", Mass: 5, X: 0, Y: -3}); err != nil {
		t.Errorf("AddPlanet after failed delete error = %v", err)
	}
}
