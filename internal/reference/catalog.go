// Package reference holds the static catalog of maps and professions used to
// turn numeric ids into display names.
package reference

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Map is one game map.
type Map struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Continent int    `json:"continent,omitempty" yaml:"continent,omitempty"`
	Region    int    `json:"region,omitempty" yaml:"region,omitempty"`
}

// Profession is one character profession.
type Profession struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Alias string `json:"alias" yaml:"alias"`
}

// Catalog indexes maps and professions by id. It is read-only once built.
type Catalog struct {
	maps        []Map
	professions []Profession
	mapByID     map[int]int
	mapByName   map[string]int
	profByID    map[int]int
}

type catalogFile struct {
	Maps        []Map        `yaml:"maps"`
	Professions []Profession `yaml:"professions"`
}

// New builds a Catalog. Later duplicates of an id win.
func New(maps []Map, professions []Profession) *Catalog {
	c := &Catalog{
		maps:        slices.Clone(maps),
		professions: slices.Clone(professions),
		mapByID:     make(map[int]int, len(maps)),
		mapByName:   make(map[string]int, len(maps)),
		profByID:    make(map[int]int, len(professions)),
	}
	for i, m := range c.maps {
		c.mapByID[m.ID] = i
		c.mapByName[strings.ToLower(m.Name)] = i
	}
	for i, p := range c.professions {
		c.profByID[p.ID] = i
	}
	return c
}

// Load reads a catalog file. YAML and JSON are both accepted.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return New(f.Maps, f.Professions), nil
}

// Maps returns every map in file order.
func (c *Catalog) Maps() []Map { return slices.Clone(c.maps) }

// Professions returns every profession in file order.
func (c *Catalog) Professions() []Profession { return slices.Clone(c.professions) }

// MapByID looks up a map.
func (c *Catalog) MapByID(id int) (Map, bool) {
	i, ok := c.mapByID[id]
	if !ok {
		return Map{}, false
	}
	return c.maps[i], true
}

// MapByName looks up a map by display name, ignoring case.
func (c *Catalog) MapByName(name string) (Map, bool) {
	i, ok := c.mapByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Map{}, false
	}
	return c.maps[i], true
}

// Profession looks up a profession.
func (c *Catalog) Profession(id int) (Profession, bool) {
	i, ok := c.profByID[id]
	if !ok {
		return Profession{}, false
	}
	return c.professions[i], true
}
