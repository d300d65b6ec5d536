package minimap

import (
	"fmt"
	"math"
	"strings"

	"github.com/minimapd/minimapd/internal/dom"
)

// Positions the preview can dock to.
const (
	PositionLeft  = "left"
	PositionRight = "right"
)

// Scale is the (x, y) ratio pair mapping real page dimensions to preview
// dimensions.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PreviewChangeFunc is invoked synchronously at the end of every layout
// pass with the preview element and the scale used for the pass.
type PreviewChangeFunc func(preview *dom.Node, scale Scale)

// Config holds the per-instance settings. Fields are validated on
// construction and on every setter call.
type Config struct {
	HeightRatio       float64           `json:"heightRatio"`
	WidthRatio        float64           `json:"widthRatio"`
	OffsetHeightRatio float64           `json:"offsetHeightRatio"`
	OffsetWidthRatio  float64           `json:"offsetWidthRatio"`
	AllowClick        bool              `json:"allowClick"`
	FadeHover         bool              `json:"fadeHover"`
	HoverOpacity      float64           `json:"hoverOpacity"`
	HoverFadeSpeed    float64           `json:"hoverFadeSpeed"` // seconds
	Position          string            `json:"position"`
	Touch             bool              `json:"touch"`
	SmoothScroll      bool              `json:"smoothScroll"`
	SmoothScrollDelay int               `json:"smoothScrollDelay"` // milliseconds
	DisableFind       bool              `json:"disableFind"`
	OnPreviewChange   PreviewChangeFunc `json:"-"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		HeightRatio:       0.6,
		WidthRatio:        0.05,
		OffsetHeightRatio: 0.035,
		OffsetWidthRatio:  0.035,
		AllowClick:        true,
		FadeHover:         false,
		HoverOpacity:      0.4,
		HoverFadeSpeed:    0.5,
		Position:          PositionRight,
		Touch:             true,
		SmoothScroll:      true,
		SmoothScrollDelay: 200,
		DisableFind:       false,
	}
}

// Field names accepted by SetField. They match the wire names clients use.
const (
	FieldHeightRatio       = "heightRatio"
	FieldWidthRatio        = "widthRatio"
	FieldOffsetHeightRatio = "offsetHeightRatio"
	FieldOffsetWidthRatio  = "offsetWidthRatio"
	FieldPosition          = "position"
	FieldSmoothScroll      = "smoothScroll"
	FieldSmoothScrollDelay = "smoothScrollDelay"
)

// redrawFields are the configuration fields whose change forces an
// immediate layout pass.
var redrawFields = map[string]bool{
	FieldHeightRatio:       true,
	FieldWidthRatio:        true,
	FieldOffsetHeightRatio: true,
	FieldOffsetWidthRatio:  true,
	FieldPosition:          true,
}

// ConfigError reports a rejected configuration value, naming the offending
// field and the value.
type ConfigError struct {
	Field string
	Value interface{}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("minimap: invalid value %v for option %q", e.Value, e.Field)
}

func invalid(field string, value interface{}) error {
	return &ConfigError{Field: field, Value: value}
}

// normalize canonicalizes case-insensitive inputs and nil callbacks.
func (c *Config) normalize() {
	c.Position = strings.ToLower(c.Position)
	if c.OnPreviewChange == nil {
		c.OnPreviewChange = func(*dom.Node, Scale) {}
	}
}

// validators is the static validation table; iteration order is fixed so a
// multi-field mistake always reports the same field first.
var validatorOrder = []string{
	"heightRatio", "widthRatio", "offsetHeightRatio", "offsetWidthRatio",
	"hoverOpacity", "hoverFadeSpeed", "position", "smoothScrollDelay",
}

var validators = map[string]func(c *Config) error{
	"heightRatio": func(c *Config) error {
		if !(c.HeightRatio > 0 && c.HeightRatio <= 1.0) {
			return invalid("heightRatio", c.HeightRatio)
		}
		return nil
	},
	"widthRatio": func(c *Config) error {
		if !(c.WidthRatio > 0 && c.WidthRatio <= 0.5) {
			return invalid("widthRatio", c.WidthRatio)
		}
		return nil
	},
	"offsetHeightRatio": func(c *Config) error {
		if !(c.OffsetHeightRatio >= 0 && c.OffsetHeightRatio <= 0.9) {
			return invalid("offsetHeightRatio", c.OffsetHeightRatio)
		}
		return nil
	},
	"offsetWidthRatio": func(c *Config) error {
		if !(c.OffsetWidthRatio >= 0 && c.OffsetWidthRatio <= 0.9) {
			return invalid("offsetWidthRatio", c.OffsetWidthRatio)
		}
		return nil
	},
	"hoverOpacity": func(c *Config) error {
		if !(c.HoverOpacity >= 0 && c.HoverOpacity <= 1.0) {
			return invalid("hoverOpacity", c.HoverOpacity)
		}
		return nil
	},
	"hoverFadeSpeed": func(c *Config) error {
		if !(c.HoverFadeSpeed >= 0) {
			return invalid("hoverFadeSpeed", c.HoverFadeSpeed)
		}
		return nil
	},
	"position": func(c *Config) error {
		if c.Position != PositionLeft && c.Position != PositionRight {
			return invalid("position", c.Position)
		}
		return nil
	},
	"smoothScrollDelay": func(c *Config) error {
		if c.SmoothScrollDelay < 4 {
			return invalid("smoothScrollDelay", c.SmoothScrollDelay)
		}
		return nil
	},
}

// Validate checks every field against the static table.
func (c *Config) Validate() error {
	for _, name := range validatorOrder {
		if err := validators[name](c); err != nil {
			return err
		}
	}
	return nil
}

// Set applies one named value with wire-level coercion and re-validates.
// Unknown or immutable fields are rejected with a ConfigError.
func (c *Config) Set(name string, value interface{}) error {
	switch name {
	case FieldHeightRatio:
		v, ok := toFloat(value)
		if !ok {
			return invalid(name, value)
		}
		c.HeightRatio = v
	case FieldWidthRatio:
		v, ok := toFloat(value)
		if !ok {
			return invalid(name, value)
		}
		c.WidthRatio = v
	case FieldOffsetHeightRatio:
		v, ok := toFloat(value)
		if !ok {
			return invalid(name, value)
		}
		c.OffsetHeightRatio = v
	case FieldOffsetWidthRatio:
		v, ok := toFloat(value)
		if !ok {
			return invalid(name, value)
		}
		c.OffsetWidthRatio = v
	case FieldPosition:
		v, ok := value.(string)
		if !ok {
			return invalid(name, value)
		}
		c.Position = strings.ToLower(v)
	case FieldSmoothScroll:
		v, ok := value.(bool)
		if !ok {
			return invalid(name, value)
		}
		c.SmoothScroll = v
	case FieldSmoothScrollDelay:
		v, ok := toInt(value)
		if !ok {
			return invalid(name, value)
		}
		c.SmoothScrollDelay = v
	default:
		return invalid(name, value)
	}
	return c.Validate()
}

// fieldValue returns the current value of a settable field for change
// detection.
func (c *Config) fieldValue(name string) interface{} {
	switch name {
	case FieldHeightRatio:
		return c.HeightRatio
	case FieldWidthRatio:
		return c.WidthRatio
	case FieldOffsetHeightRatio:
		return c.OffsetHeightRatio
	case FieldOffsetWidthRatio:
		return c.OffsetWidthRatio
	case FieldPosition:
		return c.Position
	case FieldSmoothScroll:
		return c.SmoothScroll
	case FieldSmoothScrollDelay:
		return c.SmoothScrollDelay
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// toInt accepts only integral numbers: 4.5 is rejected, 4.0 is not.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
