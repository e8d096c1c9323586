package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetTheme(t *testing.T) {
	t.Cleanup(func() { _ = ApplyTheme(ThemeConfig{}) })
}

func TestApplyTheme_Default(t *testing.T) {
	resetTheme(t)
	err := ApplyTheme(ThemeConfig{})
	assert.NoError(t, err)
	assert.Equal(t, DefaultPreset.Colors[TokenTextPrimary], TextPrimaryColor.Dark)
}

func TestApplyTheme_Preset(t *testing.T) {
	resetTheme(t)
	err := ApplyTheme(ThemeConfig{Preset: "amber"})
	assert.NoError(t, err)
	assert.Equal(t, "#FFB000", TextPrimaryColor.Dark)
	assert.Equal(t, "#FF6B3D", StatusErrorColor.Dark)
}

func TestApplyTheme_PresetWithOverride(t *testing.T) {
	resetTheme(t)
	err := ApplyTheme(ThemeConfig{
		Preset: "amber",
		Colors: map[string]string{"text.primary": "#00FF00"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "#00FF00", TextPrimaryColor.Dark)
	assert.Equal(t, "#E69A00", TextSecondaryColor.Dark)
}

func TestApplyTheme_InvalidPreset(t *testing.T) {
	resetTheme(t)
	err := ApplyTheme(ThemeConfig{Preset: "nonexistent"})
	assert.ErrorContains(t, err, "unknown theme preset")
	assert.Equal(t, DefaultPreset.Colors[TokenTextPrimary], TextPrimaryColor.Dark)
}

func TestApplyTheme_InvalidToken(t *testing.T) {
	resetTheme(t)
	err := ApplyTheme(ThemeConfig{Colors: map[string]string{"invalid.token": "#FF0000"}})
	assert.ErrorContains(t, err, "unknown color token")
}

func TestApplyTheme_InvalidHexColor(t *testing.T) {
	resetTheme(t)
	err := ApplyTheme(ThemeConfig{Colors: map[string]string{"text.primary": "not-a-color"}})
	assert.ErrorContains(t, err, "invalid hex color")
}

func TestPresets_DefineEveryToken(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			p := Presets[name]
			assert.Equal(t, name, p.Name)
			for _, token := range allTokens {
				c, ok := p.Colors[token]
				assert.True(t, ok, "missing %s", token)
				assert.True(t, isValidHexColor(c), "%s: %s", token, c)
			}
		})
	}
}

func TestIsValidToken(t *testing.T) {
	assert.True(t, isValidToken(TokenTextPrimary))
	assert.True(t, isValidToken(TokenCodeBox))
	assert.False(t, isValidToken("invalid.token"))
	assert.False(t, isValidToken(""))
}

func TestIsValidHexColor(t *testing.T) {
	tests := []struct {
		color string
		valid bool
	}{
		{"#FFF", true},
		{"#FFFFFF", true},
		{"#AbCdEf", true},
		{"FFFFFF", false},
		{"#FF", false},
		{"#FFFFFFF", false},
		{"#GGGGGG", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			assert.Equal(t, tt.valid, isValidHexColor(tt.color))
		})
	}
}
