package gfxcard

import (
	"errors"
	"slices"
	"testing"
)

func factoryFor(d Driver) DriverFactory {
	return func() (Driver, error) { return d, nil }
}

func TestRegistryPriority(t *testing.T) {
	r := NewRegistry()
	r.Register("low", 10, factoryFor(newMockDriver(AccelNone)), nil)
	r.Register("high", 100, factoryFor(newMockDriver(AccelNone)), nil)
	r.Register("absent", 200, factoryFor(newMockDriver(AccelNone)), func() bool { return false })
	r.Register("also-low", 10, factoryFor(newMockDriver(AccelNone)), nil)

	if got, want := r.List(), []string{"absent", "high", "also-low", "low"}; !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
	if got, want := r.Available(), []string{"high", "also-low", "low"}; !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}

	r.Unregister("high")
	if got, want := r.Available(), []string{"also-low", "low"}; !slices.Equal(got, want) {
		t.Errorf("Available() after Unregister = %v, want %v", got, want)
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("mock", 10, factoryFor(newMockDriver(AccelNone)), nil)

	e, ok := r.Get("mock")
	if !ok {
		t.Fatal("Get(mock) not found")
	}
	if e.Name != "mock" || e.Priority != 10 {
		t.Errorf("entry = %+v", e)
	}
	e.Priority = 999
	if again, _ := r.Get("mock"); again.Priority != 10 {
		t.Error("changing the returned entry changed the registry")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) found an entry")
	}
}

func TestRegistryCreate(t *testing.T) {
	boom := errors.New("no device")
	r := NewRegistry()
	r.Register("broken", 50, func() (Driver, error) { return nil, boom }, nil)
	r.Register("absent", 60, factoryFor(newMockDriver(AccelNone)), func() bool { return false })

	var notFound *DriverNotFoundError
	if _, err := r.Create("missing"); !errors.As(err, &notFound) || notFound.Name != "missing" {
		t.Errorf("Create(missing) = %v, want DriverNotFoundError", err)
	}
	var unavailable *DriverUnavailableError
	if _, err := r.Create("absent"); !errors.As(err, &unavailable) {
		t.Errorf("Create(absent) = %v, want DriverUnavailableError", err)
	}
	if _, err := r.Create("broken"); !errors.Is(err, boom) {
		t.Errorf("Create(broken) = %v, want the factory error", err)
	}
}

func TestRegistryProbe(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := NewRegistry().Probe(); !errors.Is(err, ErrNoDriver) {
			t.Errorf("Probe() = %v, want ErrNoDriver", err)
		}
	})

	t.Run("falls through failing drivers", func(t *testing.T) {
		want := newMockDriver(AccelNone)
		r := NewRegistry()
		r.Register("broken", 100, func() (Driver, error) { return nil, errors.New("no device") }, nil)
		r.Register("mock", 10, factoryFor(want), nil)

		d, err := r.Probe()
		if err != nil {
			t.Fatalf("Probe() = %v", err)
		}
		if d != Driver(want) {
			t.Error("Probe() returned the wrong driver")
		}
	})

	t.Run("all failing", func(t *testing.T) {
		boom := errors.New("no device")
		r := NewRegistry()
		r.Register("broken", 100, func() (Driver, error) { return nil, boom }, nil)
		if _, err := r.Probe(); !errors.Is(err, boom) {
			t.Errorf("Probe() = %v, want the factory error", err)
		}
	})
}

func TestRegisterDriverGlobal(t *testing.T) {
	m := newMockDriver(AccelNone)
	RegisterDriver("registry-test", -1, factoryFor(m), nil)
	t.Cleanup(func() { UnregisterDriver("registry-test") })

	if !slices.Contains(Drivers(), "registry-test") {
		t.Fatalf("Drivers() = %v, want registry-test", Drivers())
	}
	c, err := Open(WithDriverName("registry-test"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Driver() != Driver(m) {
		t.Error("Open returned a card for another driver")
	}
}
