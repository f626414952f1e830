// Package catalog holds the static mold category catalog: the categories a
// supplier can quote for and the form fields each category asks for.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category identifies the kind of mold or tooling being quoted.
type Category string

const (
	PlasticInjection     Category = "plastic-injection"
	PlasticExtrusion     Category = "plastic-extrusion"
	PlasticThermoforming Category = "plastic-thermoforming"
	AluminumDieCasting   Category = "aluminum-die-casting"
	AluminumStamping     Category = "aluminum-stamping"
	AluminumExtrusion    Category = "aluminum-extrusion"
	MetalStampingOther   Category = "metal-stamping-other"
	SiliconeDieCut       Category = "silicone-die-cut"
	CartonDieCut         Category = "carton-die-cut"
	StickerDieCut        Category = "sticker-die-cut"
	ScreenPrinting       Category = "screen-printing"
	Other                Category = "other"
)

// ErrUnknownCategory is returned when a category tag is not part of the catalog
var ErrUnknownCategory = errors.New("unknown category")

// FieldKind is the value kind a form field accepts
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindSelect   FieldKind = "select"
	KindTextarea FieldKind = "textarea"
)

// FieldDefinition describes one input of a quote form
type FieldDefinition struct {
	Key         string    `yaml:"key" json:"key"`
	Label       string    `yaml:"label" json:"label"`
	Kind        FieldKind `yaml:"kind" json:"kind"`
	Options     []string  `yaml:"options,omitempty" json:"options,omitempty"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Required    bool      `yaml:"required,omitempty" json:"required,omitempty"`
}

// CategoryInfo is a category together with its display name
type CategoryInfo struct {
	ID   Category `json:"id"`
	Name string   `json:"name"`
}

//go:embed categories.yaml
var categoriesYAML []byte

type categoryDoc struct {
	ID     Category          `yaml:"id"`
	Name   string            `yaml:"name"`
	Fields []FieldDefinition `yaml:"fields"`
}

type catalogDoc struct {
	Categories []categoryDoc     `yaml:"categories"`
	Common     []FieldDefinition `yaml:"common"`
}

type registry struct {
	order  []CategoryInfo
	fields map[Category][]FieldDefinition
	common []FieldDefinition
	byName map[string]Category // display name -> tag, for records that stored the name
}

var (
	loadOnce sync.Once
	loaded   *registry
)

func get() *registry {
	loadOnce.Do(func() {
		r, err := parse(categoriesYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded categories are invalid: %v", err))
		}
		loaded = r
	})
	return loaded
}

func parse(data []byte) (*registry, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("catalog defines no categories")
	}

	commonKeys := make(map[string]struct{}, len(doc.Common))
	for _, f := range doc.Common {
		if err := checkField(f); err != nil {
			return nil, fmt.Errorf("common field %q: %w", f.Key, err)
		}
		if _, dup := commonKeys[f.Key]; dup {
			return nil, fmt.Errorf("duplicate common field %q", f.Key)
		}
		commonKeys[f.Key] = struct{}{}
	}

	r := &registry{
		order:  make([]CategoryInfo, 0, len(doc.Categories)),
		fields: make(map[Category][]FieldDefinition, len(doc.Categories)),
		common: doc.Common,
		byName: make(map[string]Category, len(doc.Categories)),
	}
	for _, c := range doc.Categories {
		if c.ID == "" {
			return nil, fmt.Errorf("category without id")
		}
		if c.Name == "" {
			return nil, fmt.Errorf("category %q without name", c.ID)
		}
		if _, dup := r.fields[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category %q", c.ID)
		}
		if other, dup := r.byName[c.Name]; dup {
			return nil, fmt.Errorf("categories %q and %q share the name %q", other, c.ID, c.Name)
		}
		seen := make(map[string]struct{}, len(c.Fields))
		for _, f := range c.Fields {
			if err := checkField(f); err != nil {
				return nil, fmt.Errorf("category %q field %q: %w", c.ID, f.Key, err)
			}
			if _, clash := commonKeys[f.Key]; clash {
				return nil, fmt.Errorf("category %q field %q collides with a common field", c.ID, f.Key)
			}
			if _, dup := seen[f.Key]; dup {
				return nil, fmt.Errorf("category %q has duplicate field %q", c.ID, f.Key)
			}
			seen[f.Key] = struct{}{}
		}
		r.order = append(r.order, CategoryInfo{ID: c.ID, Name: c.Name})
		r.fields[c.ID] = c.Fields
		r.byName[c.Name] = c.ID
	}
	return r, nil
}

func checkField(f FieldDefinition) error {
	if f.Key == "" {
		return fmt.Errorf("missing key")
	}
	if f.Label == "" {
		return fmt.Errorf("missing label")
	}
	switch f.Kind {
	case KindText, KindNumber, KindDate, KindTextarea:
	case KindSelect:
		if len(f.Options) == 0 {
			return fmt.Errorf("select field without options")
		}
	default:
		return fmt.Errorf("unsupported kind %q", f.Kind)
	}
	return nil
}

// Categories returns every category in display order
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), get().order...)
}

// canonical maps a display name to its tag. Tags and unknown values pass through.
func (r *registry) canonical(c Category) Category {
	if _, ok := r.fields[c]; ok {
		return c
	}
	if tag, ok := r.byName[string(c)]; ok {
		return tag
	}
	return c
}

// Canonical returns the tag for c. Records written by the earlier web form
// stored the display name (e.g. "鋁壓鑄模具") instead of the tag.
func Canonical(c Category) Category {
	return get().canonical(c)
}

// UnmarshalJSON accepts either a tag or a display name. Unknown values are kept
// as they are so old records still load.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category must be a string: %w", err)
	}
	*c = Canonical(Category(s))
	return nil
}

// ParseCategory validates a category tag. Display names are accepted and
// resolved to their tag.
func ParseCategory(s string) (Category, error) {
	r := get()
	c := r.canonical(Category(s))
	if _, ok := r.fields[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// DisplayName returns the human-readable category name, or the tag itself if unknown
func DisplayName(c Category) string {
	c = Canonical(c)
	for _, info := range get().order {
		if info.ID == c {
			return info.Name
		}
	}
	return string(c)
}

// FieldsFor returns the category-specific fields in display order.
// Unknown categories yield an empty slice.
func FieldsFor(c Category) []FieldDefinition {
	r := get()
	return append([]FieldDefinition{}, r.fields[r.canonical(c)]...)
}

// CommonFields returns the fields shared by every category
func CommonFields() []FieldDefinition {
	return append([]FieldDefinition{}, get().common...)
}

// EffectiveFields returns the category-specific fields followed by the common fields
func EffectiveFields(c Category) []FieldDefinition {
	return append(FieldsFor(c), get().common...)
}

// Field looks up a definition in the effective field set of a category
func Field(c Category, key string) (FieldDefinition, bool) {
	r := get()
	for _, f := range r.fields[r.canonical(c)] {
		if f.Key == key {
			return f, true
		}
	}
	for _, f := range r.common {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// LabelFor returns the display label for a stored specification key,
// falling back to the key itself.
func LabelFor(c Category, key string) string {
	if f, ok := Field(c, key); ok {
		return f.Label
	}
	return key
}
