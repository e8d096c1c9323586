package styles

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// ColorToken names a themable color.
type ColorToken string

const (
	TokenTextPrimary   ColorToken = "text.primary"
	TokenTextSecondary ColorToken = "text.secondary"
	TokenTextMuted     ColorToken = "text.muted"
	TokenStatusSuccess ColorToken = "status.success"
	TokenStatusWarning ColorToken = "status.warning"
	TokenStatusError   ColorToken = "status.error"
	TokenBorderDefault ColorToken = "border.default"
	TokenBorderFocus   ColorToken = "border.focus"
	TokenButtonText    ColorToken = "button.text"
	TokenButtonHover   ColorToken = "button.hover"
	TokenCodeBox       ColorToken = "code.box"
)

var allTokens = []ColorToken{
	TokenTextPrimary, TokenTextSecondary, TokenTextMuted,
	TokenStatusSuccess, TokenStatusWarning, TokenStatusError,
	TokenBorderDefault, TokenBorderFocus,
	TokenButtonText, TokenButtonHover, TokenCodeBox,
}

// Preset is a named palette.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// DefaultPreset is the green phosphor look.
var DefaultPreset = Preset{
	Name:        "crt-green",
	Description: "Green phosphor CRT",
	Colors: map[ColorToken]string{
		TokenTextPrimary:   "#33FF66",
		TokenTextSecondary: "#22C55E",
		TokenTextMuted:     "#15803D",
		TokenStatusSuccess: "#7CFFA0",
		TokenStatusWarning: "#E5FF5C",
		TokenStatusError:   "#FF5C5C",
		TokenBorderDefault: "#166534",
		TokenBorderFocus:   "#33FF66",
		TokenButtonText:    "#0B1F10",
		TokenButtonHover:   "#7CFFA0",
		TokenCodeBox:       "#B6FFC8",
	},
}

// Presets holds every built-in palette by name.
var Presets = map[string]Preset{
	"crt-green": DefaultPreset,
	"amber": {
		Name:        "amber",
		Description: "Amber monochrome terminal",
		Colors: map[ColorToken]string{
			TokenTextPrimary:   "#FFB000",
			TokenTextSecondary: "#E69A00",
			TokenTextMuted:     "#9A6700",
			TokenStatusSuccess: "#FFD166",
			TokenStatusWarning: "#FFE08A",
			TokenStatusError:   "#FF6B3D",
			TokenBorderDefault: "#7A5200",
			TokenBorderFocus:   "#FFB000",
			TokenButtonText:    "#1F1400",
			TokenButtonHover:   "#FFD166",
			TokenCodeBox:       "#FFE6A8",
		},
	},
	"white-phosphor": {
		Name:        "white-phosphor",
		Description: "Cool white P4 phosphor",
		Colors: map[ColorToken]string{
			TokenTextPrimary:   "#E8F1F2",
			TokenTextSecondary: "#B8C7CC",
			TokenTextMuted:     "#6B7F86",
			TokenStatusSuccess: "#A7F3D0",
			TokenStatusWarning: "#FDE68A",
			TokenStatusError:   "#FCA5A5",
			TokenBorderDefault: "#4B5D63",
			TokenBorderFocus:   "#E8F1F2",
			TokenButtonText:    "#111827",
			TokenButtonHover:   "#FFFFFF",
			TokenCodeBox:       "#FFFFFF",
		},
	},
	"high-contrast": {
		Name:        "high-contrast",
		Description: "Maximum contrast for accessibility",
		Colors: map[ColorToken]string{
			TokenTextPrimary:   "#FFFFFF",
			TokenTextSecondary: "#FFFFFF",
			TokenTextMuted:     "#C0C0C0",
			TokenStatusSuccess: "#00FF00",
			TokenStatusWarning: "#FFFF00",
			TokenStatusError:   "#FF0000",
			TokenBorderDefault: "#FFFFFF",
			TokenBorderFocus:   "#FFFF00",
			TokenButtonText:    "#000000",
			TokenButtonHover:   "#FFFF00",
			TokenCodeBox:       "#FFFF00",
		},
	},
}

// PresetNames returns the preset names sorted alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeConfig mirrors the theme section of the config file.
type ThemeConfig struct {
	Preset string
	Colors map[string]string
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func isValidHexColor(s string) bool { return hexColor.MatchString(s) }

func isValidToken(t ColorToken) bool {
	for _, known := range allTokens {
		if t == known {
			return true
		}
	}
	return false
}

// ApplyTheme sets the package colors from a preset plus overrides and
// rebuilds the derived styles. Nothing changes when it returns an error.
func ApplyTheme(cfg ThemeConfig) error {
	base := DefaultPreset
	if cfg.Preset != "" {
		p, ok := Presets[cfg.Preset]
		if !ok {
			return fmt.Errorf("unknown theme preset %q", cfg.Preset)
		}
		base = p
	}

	colors := make(map[ColorToken]string, len(allTokens))
	for _, t := range allTokens {
		colors[t] = DefaultPreset.Colors[t]
	}
	for t, c := range base.Colors {
		colors[t] = c
	}
	for key, c := range cfg.Colors {
		t := ColorToken(key)
		if !isValidToken(t) {
			return fmt.Errorf("unknown color token %q", key)
		}
		if !isValidHexColor(c) {
			return fmt.Errorf("invalid hex color %q for %s", c, key)
		}
		colors[t] = c
	}

	adaptive := func(t ColorToken) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: colors[t], Dark: colors[t]}
	}
	TextPrimaryColor = adaptive(TokenTextPrimary)
	TextSecondaryColor = adaptive(TokenTextSecondary)
	TextMutedColor = adaptive(TokenTextMuted)
	StatusSuccessColor = adaptive(TokenStatusSuccess)
	StatusWarningColor = adaptive(TokenStatusWarning)
	StatusErrorColor = adaptive(TokenStatusError)
	BorderDefaultColor = adaptive(TokenBorderDefault)
	BorderFocusColor = adaptive(TokenBorderFocus)
	ButtonTextColor = adaptive(TokenButtonText)
	ButtonHoverColor = adaptive(TokenButtonHover)
	CodeBoxColor = adaptive(TokenCodeBox)

	rebuildStyles()
	return nil
}
