// Package catalog parses the DLC shell catalog and answers lookups over it.
//
// The catalog is a headerless CSV where the first column names the row kind:
//
//	set,<id>,<name>
//	decorator,<id>,<name>
//	shell,<id>,<set name>,<asset type>,<url key>
//	chicken,<id>,<chicken name>,<asset type>,<url key>
//	shell_type,<asset type>
//	chicken_type,<chicken name>
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
)

// ErrMalformedRow is returned when a row has too few fields for its kind.
var ErrMalformedRow = errors.New("malformed catalog row")

// Kind distinguishes downloadable assets.
type Kind int

const (
	KindShell Kind = iota
	KindChicken
)

func (k Kind) String() string {
	switch k {
	case KindShell:
		return "shell"
	case KindChicken:
		return "chicken"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Set is a named group of shells. Decorators use the same shape.
type Set struct {
	ID   string
	Name string
}

// Asset is one downloadable RPOZ model.
type Asset struct {
	Kind  Kind
	ID    string
	Group string // Set or decorator name for shells, chicken name for chickens
	Type  string // Asset type, e.g. SILO or HATCHERY
	Key   string // File name under the DLC base URL
}

// URL returns the download location of the asset under base.
func (a Asset) URL(base string) (string, error) {
	return url.JoinPath(base, a.Key)
}

// FileName returns a local file name for the downloaded asset. Keys that
// would escape the target directory fall back to the asset ID.
func (a Asset) FileName() string {
	name := path.Base(strings.ReplaceAll(a.Key, "\\", "/"))
	switch name {
	case ".", "..", "/", "":
		return a.ID + ".rpoz"
	}
	return name
}

// Stats counts the rows of each kind.
type Stats struct {
	Sets, Decorators, Shells, ShellTypes, Chickens, ChickenTypes int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d sets, %d decorators, %d shells (%d types), and %d chickens (%d types)",
		s.Sets, s.Decorators, s.Shells, s.ShellTypes, s.Chickens, s.ChickenTypes)
}

// Catalog holds every parsed row. The zero value is an empty catalog.
type Catalog struct {
	Sets         []Set
	Decorators   []Set
	Shells       []Asset
	Chickens     []Asset
	ShellTypes   []string
	ChickenTypes []string
}

// minFields is the field count of each row kind, including the kind column.
var minFields = map[string]int{
	"set":          3,
	"decorator":    3,
	"shell":        5,
	"chicken":      5,
	"shell_type":   2,
	"chicken_type": 2,
}

// Parse reads a catalog CSV. Rows of unknown kind are skipped.
func Parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	c := &Catalog{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}

		kind := strings.TrimSpace(rec[0])
		want, ok := minFields[kind]
		if !ok {
			continue
		}
		if len(rec) < want {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: %s row has %d fields, want %d", ErrMalformedRow, line, kind, len(rec), want)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		c.add(kind, rec[1:])
	}
	return c, nil
}

func (c *Catalog) add(kind string, f []string) {
	switch kind {
	case "set":
		c.Sets = append(c.Sets, Set{ID: f[0], Name: f[1]})
	case "decorator":
		c.Decorators = append(c.Decorators, Set{ID: f[0], Name: f[1]})
	case "shell":
		c.Shells = append(c.Shells, Asset{Kind: KindShell, ID: f[0], Group: f[1], Type: f[2], Key: f[3]})
	case "chicken":
		c.Chickens = append(c.Chickens, Asset{Kind: KindChicken, ID: f[0], Group: f[1], Type: f[2], Key: f[3]})
	case "shell_type":
		c.ShellTypes = append(c.ShellTypes, f[0])
	case "chicken_type":
		c.ChickenTypes = append(c.ChickenTypes, f[0])
	}
}

// Stats returns the row counts.
func (c *Catalog) Stats() Stats {
	return Stats{
		Sets:         len(c.Sets),
		Decorators:   len(c.Decorators),
		Shells:       len(c.Shells),
		ShellTypes:   len(c.ShellTypes),
		Chickens:     len(c.Chickens),
		ChickenTypes: len(c.ChickenTypes),
	}
}

// Search returns every shell and chicken whose ID, group, type or key
// contains term, ignoring case. An empty term matches everything.
func (c *Catalog) Search(term string) []Asset {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(term))

	var out []Asset
	for _, list := range [][]Asset{c.Shells, c.Chickens} {
		for _, a := range list {
			for _, field := range []string{a.ID, a.Group, a.Type, a.Key} {
				if strings.Contains(fold.String(field), needle) {
					out = append(out, a)
					break
				}
			}
		}
	}
	return out
}

// ShellsInSet returns the shells of the set whose ID or name equals query.
func (c *Catalog) ShellsInSet(query string) []Asset {
	return c.shellsInGroup(c.Sets, query)
}

// ShellsInDecorator returns the shells of the decorator whose ID or name equals query.
func (c *Catalog) ShellsInDecorator(query string) []Asset {
	return c.shellsInGroup(c.Decorators, query)
}

func (c *Catalog) shellsInGroup(groups []Set, query string) []Asset {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	for _, g := range groups {
		if fold.String(g.ID) == q || fold.String(g.Name) == q {
			return filter(c.Shells, func(a Asset) bool { return a.Group == g.Name })
		}
	}
	return nil
}

// ShellsOfType returns the shells with the given asset type.
func (c *Catalog) ShellsOfType(assetType string) []Asset {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(assetType))
	return filter(c.Shells, func(a Asset) bool { return fold.String(a.Type) == q })
}

// ChickensOfType returns the chicken pieces belonging to the named chicken
// type (a chicken_type row).
func (c *Catalog) ChickensOfType(name string) []Asset {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(name))
	return filter(c.Chickens, func(a Asset) bool { return fold.String(a.Group) == q })
}

func filter(assets []Asset, keep func(Asset) bool) []Asset {
	var out []Asset
	for _, a := range assets {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
