package library

import (
	"testing"

	"github.com/inkwell-labs/corefont/cache"
	"github.com/inkwell-labs/corefont/face"
	"github.com/inkwell-labs/corefont/trace"
)

func TestNewRegistersDriversInProbeOrder(t *testing.T) {
	lib := New()
	names := make([]string, 0, 4)
	for _, d := range lib.Drivers.Drivers() {
		names = append(names, d.Name())
	}
	want := []string{"truetype", "cff", "cid", "type1"}
	if len(names) != len(want) {
		t.Fatalf("registered drivers = %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("driver[%d] = %q, want %q (cid must precede type1)", i, names[i], n)
		}
	}
}

func TestEnableCachingInstallsManager(t *testing.T) {
	lib := New()
	if lib.Cache != nil {
		t.Fatal("Cache should be nil before EnableCaching")
	}
	requester := func(id cache.FaceID) (*face.Face, error) {
		return nil, nil // requester itself is exercised in package cache's own tests
	}
	lib.EnableCaching(requester, 0, 0)
	if lib.Cache == nil {
		t.Fatal("Cache should be non-nil after EnableCaching")
	}
}

func TestSetAndGetTraceLevel(t *testing.T) {
	defer SetTraceLevel(trace.Off)
	SetTraceLevel(trace.Debug)
	if got := TraceLevel(); got != trace.Debug {
		t.Errorf("TraceLevel() = %v, want Debug", got)
	}
}

func TestDoneClearsLibrary(t *testing.T) {
	lib := New()
	lib.Done()
	if lib.Drivers != nil || lib.Cache != nil {
		t.Error("Done should clear both Drivers and Cache")
	}
}
