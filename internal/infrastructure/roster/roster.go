// Package roster maps resident rooms to halls from a YAML roster
// document.
package roster

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileSchema struct {
	Halls map[string][]string `yaml:"halls"`
}

// Roster answers hall lookups for room-bed identifiers like "302-1".
type Roster struct {
	roomToHall map[string]string
}

// Load reads the roster document at path. An empty path yields an empty
// roster; every lookup then misses and the request's hall label is used
// as-is.
func Load(path string) (*Roster, error) {
	r := &Roster{roomToHall: make(map[string]string)}
	if path == "" {
		return r, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	var file fileSchema
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}

	for hall, roomList := range file.Halls {
		for _, room := range roomList {
			r.roomToHall[strings.TrimSpace(room)] = hall
		}
	}
	return r, nil
}

// HallFor resolves the hall of a room-bed identifier. The bed suffix is
// ignored; halls are assigned per room.
func (r *Roster) HallFor(roomBed string) (string, bool) {
	room := roomBed
	if i := strings.IndexAny(roomBed, "-/ "); i >= 0 {
		room = roomBed[:i]
	}
	hall, ok := r.roomToHall[room]
	return hall, ok
}
