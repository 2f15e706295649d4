package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/curiosinfo/curiosinfo/internal/models"
)

const rosterKey = "actors:all"

func roster(names ...string) []models.Actor {
	actors := make([]models.Actor, 0, len(names))
	for i, name := range names {
		actors = append(actors, models.Actor{ID: i + 1, Name: name, ActorType: "presse"})
	}
	return actors
}

func TestMemoryCache_RosterRoundTrip(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set(rosterKey, roster("Le Monde", "Libération"))

	got, ok := c.Get(rosterKey)
	if !ok {
		t.Fatal("Get() returned false for a freshly cached roster")
	}
	actors, ok := got.([]models.Actor)
	if !ok {
		t.Fatalf("cached value lost its type: %T", got)
	}
	if len(actors) != 2 || actors[0].Name != "Le Monde" {
		t.Errorf("roster = %+v", actors)
	}
}

func TestMemoryCache_MissingKey(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	got, ok := c.Get(rosterKey)
	if ok {
		t.Error("Get() should return false before anything is cached")
	}
	if got != nil {
		t.Errorf("Get() on a cold cache = %v, want nil", got)
	}
}

func TestMemoryCache_EntryExpires(t *testing.T) {
	c := NewMemory(50 * time.Millisecond)
	defer c.Stop()

	c.Set(rosterKey, roster("Le Monde"))

	if _, ok := c.Get(rosterKey); !ok {
		t.Error("Get() should return true before the TTL elapses")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get(rosterKey); ok {
		t.Error("Get() should return false once the TTL has elapsed")
	}
}

func TestMemoryCache_SetWithTTL_OverridesDefault(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.SetWithTTL(rosterKey, roster("Le Monde"), 50*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get(rosterKey); ok {
		t.Error("per-entry TTL shorter than the default should win")
	}

	c = NewMemory(50 * time.Millisecond)
	defer c.Stop()

	c.SetWithTTL(rosterKey, roster("Le Monde"), time.Minute)
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get(rosterKey); !ok {
		t.Error("per-entry TTL longer than the default should win")
	}
}

// An admin actor update deletes the roster entry so the next list re-reads
// storage.
func TestMemoryCache_DeleteInvalidatesRoster(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set(rosterKey, roster("Le Monde"))
	c.Delete(rosterKey)

	if _, ok := c.Get(rosterKey); ok {
		t.Error("Get() should return false after Delete()")
	}

	// Deleting again must stay a no-op.
	c.Delete(rosterKey)
}

// Startup seeding clears the whole cache rather than tracking which keys a
// roster change touches.
func TestMemoryCache_ClearAfterSeeding(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set(rosterKey, roster("Le Monde"))
	c.Set("other", "value")

	c.Clear()

	for _, key := range []string{rosterKey, "other"} {
		if _, ok := c.Get(key); ok {
			t.Errorf("Get(%q) should return false after Clear()", key)
		}
	}
}

func TestMemoryCache_OverwriteReplacesRoster(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set(rosterKey, roster("Le Monde"))
	c.Set(rosterKey, roster("Le Monde", "Libération", "Mediapart"))

	got, ok := c.Get(rosterKey)
	if !ok {
		t.Fatal("Get() returned false after overwrite")
	}
	if actors := got.([]models.Actor); len(actors) != 3 {
		t.Errorf("overwrite kept %d actors, want 3", len(actors))
	}
}

func TestMemoryCache_ConcurrentReadersAndInvalidation(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Set(rosterKey, roster("Le Monde"))
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Get(rosterKey)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Delete(rosterKey)
				time.Sleep(time.Millisecond)
			}
		}()
	}

	wg.Wait()
}
