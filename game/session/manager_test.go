package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/wricardo/puzzle-arcade/game/engine"
	"github.com/wricardo/puzzle-arcade/game/engine/enginetest"
)

func newTestManager(observer Observer) (*Manager, *enginetest.Scheduler) {
	sched := enginetest.NewScheduler()
	return NewManager(observer, engine.WithScheduler(sched)), sched
}

// withMockClock swaps the manager's clock for one the test advances by hand
func withMockClock(m *Manager) *clock.Mock {
	mock := clock.NewMock()
	m.clock = mock
	return mock
}

func TestManager_Create(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", engine.KindSlide, nil)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Engine == nil || session.Engine.Kind() != engine.KindSlide {
			t.Error("Expected slide engine to be initialized")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", engine.KindMemory, engine.DefaultTheme())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
		if session.Theme == nil || session.Theme.Name != "fruit" {
			t.Errorf("Expected fruit theme, got %v", session.Theme)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", engine.KindSlide, nil)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := manager.Create("bad-kind", "chess", nil)
		if err == nil {
			t.Error("Expected error for unknown game")
		}
		if _, err := manager.Get("bad-kind"); err != ErrSessionNotFound {
			t.Error("Failed creation must not leave a session behind")
		}
	})

	t.Run("invalid theme", func(t *testing.T) {
		_, err := manager.Create("bad-theme", engine.KindTileMatch, &engine.Theme{Name: "x", TileSymbols: []string{"a"}})
		if err == nil {
			t.Error("Expected error for invalid theme")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()

	created, _ := manager.Create("get-test", engine.KindTileMatch, nil)

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session.ID != created.ID || session.Engine != created.Engine {
			t.Errorf("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()

	first, err := manager.GetOrCreate("new-session", engine.KindMemory, nil)
	if err != nil {
		t.Fatalf("Failed to get or create session: %v", err)
	}
	second, err := manager.GetOrCreate("new-session", engine.KindSlide, nil)
	if err != nil {
		t.Fatalf("Failed to get existing session: %v", err)
	}
	if first.Engine != second.Engine || second.Kind != engine.KindMemory {
		t.Error("Expected the existing memory session to be returned")
	}
}

func TestManager_Delete(t *testing.T) {
	manager, sched := newTestManager(nil)

	session, _ := manager.Create("delete-test", engine.KindSlide, nil)

	if err := manager.Delete("DELETE-TEST"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("delete-test"); err != ErrSessionNotFound {
		t.Error("Expected session to be deleted")
	}
	if err := manager.Delete("delete-test"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	sched.Advance(3 * time.Second)
	if got := session.Engine.Snapshot().Slide.ElapsedSeconds; got != 0 {
		t.Errorf("Expected deleted session's timer to be stopped, elapsed=%d", got)
	}
	if sched.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", sched.Pending())
	}
}

func TestManager_List(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()

	for _, kind := range engine.Kinds() {
		if _, err := manager.Create("list-"+string(kind), kind, nil); err != nil {
			t.Fatalf("Failed to create %s session: %v", kind, err)
		}
	}

	sessions := manager.List()
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}
	kinds := make(map[engine.Kind]bool)
	for _, s := range sessions {
		kinds[s.Kind] = true
	}
	for _, kind := range engine.Kinds() {
		if !kinds[kind] {
			t.Errorf("No %s session in list", kind)
		}
	}
	if manager.Count() != 3 {
		t.Errorf("Expected count 3, got %d", manager.Count())
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager, sched := newTestManager(nil)
	defer manager.CloseAll()
	mock := withMockClock(manager)

	manager.Create("active", engine.KindSlide, nil)
	manager.Create("expired", engine.KindSlide, nil)

	mock.Add(2 * time.Hour)
	if err := manager.UpdateLastAccessed("active"); err != nil {
		t.Fatalf("Failed to touch session: %v", err)
	}

	deleted := manager.CleanupExpiredSessions(1 * time.Hour)
	if deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}
	if _, err := manager.Get("expired"); err != ErrSessionNotFound {
		t.Error("Expected expired session to be deleted")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
	if sched.Pending() != 1 {
		t.Errorf("Expected only the active session's timer to remain, got %d", sched.Pending())
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()
	mock := withMockClock(manager)

	session, _ := manager.Create("access-test", engine.KindTileMatch, nil)
	originalTime := session.LastAccessedAt

	mock.Add(time.Minute)

	if err := manager.UpdateLastAccessed("ACCESS-TEST"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessedAt.Equal(originalTime) {
		t.Error("Expected a session handed out earlier to keep its own timestamp")
	}

	current, err := manager.Get("access-test")
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if want := originalTime.Add(time.Minute); !current.LastAccessedAt.Equal(want) {
		t.Errorf("Expected LastAccessedAt %v, got %v", want, current.LastAccessedAt)
	}
	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ReturnsCopies(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()

	created, _ := manager.Create("copy-test", engine.KindSlide, nil)
	created.LastAccessedAt = time.Time{}
	created.Kind = engine.KindMemory

	stored, err := manager.Get("copy-test")
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if stored.LastAccessedAt.IsZero() || stored.Kind != engine.KindSlide {
		t.Error("Changes to a returned session must not reach the stored record")
	}
	if manager.CleanupExpiredSessions(time.Hour) != 0 {
		t.Error("Zeroing a copy's timestamp must not expire the session")
	}
}

func TestManager_ConcurrentTouchAndRead(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()

	manager.Create("busy", engine.KindSlide, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				manager.UpdateLastAccessed("busy")
				if s, err := manager.Get("busy"); err == nil {
					_ = s.LastAccessedAt
				}
				for _, s := range manager.List() {
					_ = s.LastAccessedAt
				}
			}
		}()
	}
	wg.Wait()
}

func TestManager_ObserverReceivesSnapshots(t *testing.T) {
	type event struct {
		id   string
		kind engine.Kind
	}
	var mu sync.Mutex
	var events []event
	manager, sched := newTestManager(func(id string, snap engine.Snapshot) {
		mu.Lock()
		events = append(events, event{id, snap.Kind})
		mu.Unlock()
	})

	if _, err := manager.Create("watched", engine.KindMemory, nil); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	sched.Advance(2 * time.Second)

	mu.Lock()
	if len(events) != 2 {
		t.Fatalf("Expected 2 tick snapshots, got %d", len(events))
	}
	for _, e := range events {
		if e.id != "watched" || e.kind != engine.KindMemory {
			t.Errorf("Unexpected event %+v", e)
		}
	}
	mu.Unlock()

	manager.Delete("watched")
	sched.Advance(2 * time.Second)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Errorf("Expected no snapshots after delete, got %d", len(events))
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()

	s1, _ := manager.Create("iso-1", engine.KindSlide, nil)
	s2, _ := manager.Create("iso-2", engine.KindSlide, nil)

	p1 := s1.Engine.(*engine.SlidePuzzle)
	p2 := s2.Engine.(*engine.SlidePuzzle)
	if err := p1.SetState(engine.SlideState{Tiles: []int{1, 2, 3, 4, 5, 6, 7, 0, 8}}); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	before := p2.State()

	p1.SlideTile(8)

	if !p1.State().IsSolved {
		t.Error("Session 1 should be solved")
	}
	after := p2.State()
	if after.Moves != before.Moves || fmt.Sprint(after.Tiles) != fmt.Sprint(before.Tiles) {
		t.Error("Session 2 should not be affected by session 1 moves")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			kind := engine.Kinds()[id%3]
			s, err := manager.Create("", kind, nil)
			if err != nil {
				errs <- err
				return
			}
			manager.Get(s.ID)
			manager.List()
			if id%2 == 0 {
				if err := manager.Delete(s.ID); err != nil {
					errs <- err
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager, _ := newTestManager(nil)
	defer manager.CloseAll()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", engine.KindTileMatch, nil)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %d", len(session.ID))
		}
	}
}
