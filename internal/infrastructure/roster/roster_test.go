package roster

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	body := `
halls:
  A: ["301", "302"]
  B: ["401"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cases := []struct {
		roomBed string
		hall    string
		ok      bool
	}{
		{roomBed: "302-1", hall: "A", ok: true},
		{roomBed: "302/2", hall: "A", ok: true},
		{roomBed: "401", hall: "B", ok: true},
		{roomBed: "999-1", ok: false},
	}
	for _, tc := range cases {
		hall, ok := r.HallFor(tc.roomBed)
		if ok != tc.ok || hall != tc.hall {
			t.Fatalf("HallFor(%q) = %q,%v want %q,%v", tc.roomBed, hall, ok, tc.hall, tc.ok)
		}
	}
}

func TestEmptyRosterMissesEverything(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := r.HallFor("302-1"); ok {
		t.Fatalf("empty roster must miss")
	}
}
