package minimap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"heightRatio at upper bound", func(c *Config) { c.HeightRatio = 1.0 }, false},
		{"heightRatio above upper bound", func(c *Config) { c.HeightRatio = 1.0001 }, true},
		{"heightRatio zero", func(c *Config) { c.HeightRatio = 0 }, true},
		{"widthRatio at upper bound", func(c *Config) { c.WidthRatio = 0.5 }, false},
		{"widthRatio above upper bound", func(c *Config) { c.WidthRatio = 0.51 }, true},
		{"widthRatio zero", func(c *Config) { c.WidthRatio = 0 }, true},
		{"offsetHeightRatio at zero", func(c *Config) { c.OffsetHeightRatio = 0 }, false},
		{"offsetHeightRatio at upper bound", func(c *Config) { c.OffsetHeightRatio = 0.9 }, false},
		{"offsetHeightRatio above upper bound", func(c *Config) { c.OffsetHeightRatio = 0.91 }, true},
		{"offsetWidthRatio negative", func(c *Config) { c.OffsetWidthRatio = -0.1 }, true},
		{"hoverOpacity at bounds", func(c *Config) { c.HoverOpacity = 1.0 }, false},
		{"hoverOpacity above one", func(c *Config) { c.HoverOpacity = 1.1 }, true},
		{"hoverFadeSpeed negative", func(c *Config) { c.HoverFadeSpeed = -1 }, true},
		{"position left", func(c *Config) { c.Position = "left" }, false},
		{"position unknown", func(c *Config) { c.Position = "top" }, true},
		{"smoothScrollDelay at lower bound", func(c *Config) { c.SmoothScrollDelay = 4 }, false},
		{"smoothScrollDelay below lower bound", func(c *Config) { c.SmoothScrollDelay = 3 }, true},
		{"smoothScrollDelay negative", func(c *Config) { c.SmoothScrollDelay = -5 }, true},
		{"smoothScrollDelay large", func(c *Config) { c.SmoothScrollDelay = 500 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				var cfgErr *ConfigError
				require.Error(t, err)
				assert.ErrorAs(t, err, &cfgErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetCoercion(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set(FieldHeightRatio, 0.8))
	assert.Equal(t, 0.8, cfg.HeightRatio)

	// Integral floats coerce to int; fractional ones do not.
	require.NoError(t, cfg.Set(FieldSmoothScrollDelay, 4.0))
	assert.Equal(t, 4, cfg.SmoothScrollDelay)
	assert.Error(t, cfg.Set(FieldSmoothScrollDelay, 4.5))

	// JSON decoders deliver ints as float64; plain ints work too.
	require.NoError(t, cfg.Set(FieldSmoothScrollDelay, 500))
	assert.Equal(t, 500, cfg.SmoothScrollDelay)

	require.NoError(t, cfg.Set(FieldSmoothScroll, false))
	assert.False(t, cfg.SmoothScroll)
	assert.Error(t, cfg.Set(FieldSmoothScroll, "yes"))
}

func TestSetPositionCaseInsensitive(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Set(FieldPosition, "Left"))
	assert.Equal(t, PositionLeft, cfg.Position)
}

func TestSetUnknownField(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Set("allowClick", false)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "allowClick", cfgErr.Field)
}

func TestSetRejectsInvalidValue(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Set(FieldWidthRatio, 0.7)
	assert.Error(t, err)
}

func TestConfigErrorMessage(t *testing.T) {
	err := invalid("heightRatio", 2.0)
	assert.Contains(t, err.Error(), "heightRatio")
	assert.Contains(t, err.Error(), "2")
}
