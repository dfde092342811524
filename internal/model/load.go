package model

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a composition: the root composition plus a
// library of named compositions that layers and elements may reference
// with ref.
type File struct {
	Composition `yaml:",inline"`
	Library     map[string]*Composition `yaml:"compositions,omitempty"`
}

// assetProps lists element properties holding file paths.
var assetProps = []string{"src", "font"}

// Load reads a composition file. Relative asset paths are resolved against
// the file's directory.
func Load(path string) (*Composition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open composition: %w", err)
	}
	defer func() { _ = f.Close() }()

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	comp, err := Decode(f, abs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if comp.ID == "" {
		comp.ID = filepath.Base(path)
	}
	return comp, nil
}

// Decode parses a composition from r. baseDir anchors relative asset
// paths; pass "" to leave them untouched.
func Decode(r io.Reader, baseDir string) (*Composition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty composition file")
		}
		return nil, fmt.Errorf("failed to parse composition: %w", err)
	}

	for name, lib := range file.Library {
		if lib == nil {
			return nil, fmt.Errorf("composition %q is empty", name)
		}
		if lib.ID == "" {
			lib.ID = name
		}
	}

	root := &file.Composition
	l := linker{library: file.Library, baseDir: baseDir, seen: map[*Composition]bool{}}
	if err := l.link(root); err != nil {
		return nil, err
	}
	for _, lib := range file.Library {
		if err := l.link(lib); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// DecodeBytes parses a composition held in memory.
func DecodeBytes(data []byte, baseDir string) (*Composition, error) {
	return Decode(bytes.NewReader(data), baseDir)
}

// Encode writes a composition as YAML. References are written out as
// inline compositions.
func Encode(w io.Writer, comp *Composition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(comp); err != nil {
		return fmt.Errorf("failed to encode composition: %w", err)
	}
	return enc.Close()
}

type linker struct {
	library map[string]*Composition
	baseDir string
	seen    map[*Composition]bool
}

// link resolves refs and asset paths once per composition. Reference
// cycles are left in place for scene.Compile to report.
func (l *linker) link(c *Composition) error {
	if c == nil || l.seen[c] {
		return nil
	}
	l.seen[c] = true

	for i, layer := range c.Layers {
		if layer == nil {
			return fmt.Errorf("composition %q: layer %d is empty", c.ID, i)
		}
		if layer.Ref != "" {
			target, err := l.lookup(layer.Ref)
			if err != nil {
				return fmt.Errorf("layer %q: %w", layer.Name, err)
			}
			layer.Composition = target
		}
		if err := l.link(layer.Composition); err != nil {
			return err
		}
		for j, el := range layer.Elements {
			if el == nil {
				return fmt.Errorf("layer %q: element %d is empty", layer.Name, j)
			}
			if err := l.linkElement(el); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *linker) linkElement(el *Element) error {
	if el.Ref != "" {
		target, err := l.lookup(el.Ref)
		if err != nil {
			return fmt.Errorf("element %s: %w", el.Label(), err)
		}
		el.Composition = target
		if el.Type == "" {
			el.Type = TypeComposition
		}
	}
	if l.baseDir != "" {
		for _, key := range assetProps {
			if p, ok := el.Props[key].(string); ok && p != "" && !filepath.IsAbs(p) {
				el.Props[key] = filepath.Join(l.baseDir, p)
			}
		}
	}
	return l.link(el.Composition)
}

func (l *linker) lookup(name string) (*Composition, error) {
	c, ok := l.library[name]
	if !ok {
		return nil, fmt.Errorf("unknown composition reference %q", name)
	}
	return c, nil
}
