// Package district holds the canonical list of administrative districts a
// roster may reference. Free-text eligibility fields are filtered against it.
package district

// Suffix marks a token as a district name ("左營區").
const Suffix = "區"

// Catalog is an immutable, ordered set of district names.
type Catalog struct {
	names []string
	index map[string]int
}

// New builds a catalog from names, keeping the first occurrence of duplicates
// and ignoring empty names.
func New(names []string) *Catalog {
	c := &Catalog{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := c.index[name]; ok {
			continue
		}
		c.index[name] = len(c.names)
		c.names = append(c.names, name)
	}
	return c
}

// IsValid reports whether name is an exact catalog member.
func (c *Catalog) IsValid(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Index returns the position of name in catalog order, or -1.
func (c *Catalog) Index(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return -1
}

// All returns the districts in catalog order. The slice is a copy.
func (c *Catalog) All() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of districts.
func (c *Catalog) Len() int {
	return len(c.names)
}
