package skill

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Catalog holds the skills found in a directory.
type Catalog struct {
	// Skills are sorted by name.
	Skills []*Skill
}

// LoadDir reads every *.md file under dir, recursively.
//
// A missing directory yields an empty catalog. Two skills that share a name or
// shortcut are an error.
func LoadDir(dir string) (*Catalog, error) {
	c := &Catalog{}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return c, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		s, err := Load(path)
		if err != nil {
			return err
		}
		c.Skills = append(c.Skills, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}

	sort.Slice(c.Skills, func(i, j int) bool {
		return strings.ToLower(c.Skills[i].Name) < strings.ToLower(c.Skills[j].Name)
	})

	if err := c.checkUnique(); err != nil {
		return nil, err
	}
	return c, nil
}

// Find returns the skill whose name or shortcut matches key.
func (c *Catalog) Find(key string) (*Skill, error) {
	for _, s := range c.Skills {
		if s.Matches(key) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, key)
}

// Names returns all skill names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Skills))
	for i, s := range c.Skills {
		names[i] = s.Name
	}
	return names
}

func (c *Catalog) checkUnique() error {
	seen := make(map[string]string)
	for _, s := range c.Skills {
		for _, key := range []string{s.Name, s.Shortcut} {
			k := normalizeKey(key)
			if k == "" {
				continue
			}
			if prev, ok := seen[k]; ok && prev != s.Path {
				return fmt.Errorf("skill key %q is used by both %s and %s", key, prev, s.Path)
			}
			seen[k] = s.Path
		}
	}
	return nil
}
