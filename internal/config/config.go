// Package config defines the .bpatch.yml file: which patches run and with
// which parameters.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eykd/bundlepatch/internal/style"
)

// FileName is the default configuration file name.
const FileName = ".bpatch.yml"

// Config is the root of the configuration file.
type Config struct {
	// Bundle is the default bundle path used when none is given on the command line.
	Bundle string `yaml:"bundle,omitempty"`
	// Backup keeps a pristine copy of the bundle next to it before the first write.
	Backup  bool    `yaml:"backup"`
	Patches Patches `yaml:"patches"`
}

// Patches holds per-patch settings.
type Patches struct {
	ThinkerSymbolSpeed SymbolSpeed        `yaml:"thinkerSymbolSpeed"`
	SpinnerNoFreeze    Toggle             `yaml:"spinnerNoFreeze"`
	ThinkerFormat      ThinkerFormat      `yaml:"thinkerFormat"`
	ThinkingVisibility Toggle             `yaml:"thinkingVisibility"`
	UserMessageDisplay UserMessageDisplay `yaml:"userMessageDisplay"`
}

// Toggle configures a patch that takes no parameters.
type Toggle struct {
	Enabled bool `yaml:"enabled"`
}

// SymbolSpeed configures the spinner symbol animation interval.
type SymbolSpeed struct {
	Enabled    bool `yaml:"enabled"`
	IntervalMs int  `yaml:"intervalMs"`
}

// ThinkerFormat configures the spinner verb text. "{}" stands for the
// application's current verb.
type ThinkerFormat struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
}

// UserMessageDisplay configures how submitted user messages are echoed.
type UserMessageDisplay struct {
	Enabled         bool   `yaml:"enabled"`
	Format          string `yaml:"format"`
	Foreground      string `yaml:"foreground"`
	Background      string `yaml:"background"`
	Bold            bool   `yaml:"bold"`
	Italic          bool   `yaml:"italic"`
	Underline       bool   `yaml:"underline"`
	Strikethrough   bool   `yaml:"strikethrough"`
	Inverse         bool   `yaml:"inverse"`
	BorderStyle     string `yaml:"borderStyle"`
	BorderColor     string `yaml:"borderColor"`
	PaddingX        int    `yaml:"paddingX"`
	PaddingY        int    `yaml:"paddingY"`
	FitBoxToContent bool   `yaml:"fitBoxToContent"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Backup: true,
		Patches: Patches{
			ThinkerSymbolSpeed: SymbolSpeed{Enabled: false, IntervalMs: 120},
			SpinnerNoFreeze:    Toggle{Enabled: true},
			ThinkerFormat:      ThinkerFormat{Enabled: false, Format: "{}…"},
			ThinkingVisibility: Toggle{Enabled: true},
			UserMessageDisplay: UserMessageDisplay{
				Enabled:     false,
				Format:      " > {} ",
				Foreground:  "default",
				Background:  "default",
				BorderStyle: "none",
				BorderColor: "rgb(255,255,255)",
			},
		},
	}
}

// Parse decodes data over the defaults, so keys absent from the file keep
// their default values. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Comments only.
			return Default(), nil
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load reads and parses the file at path. A missing file yields the
// defaults with exists set to false.
func Load(path string) (cfg Config, exists bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return Config{}, false, fmt.Errorf("read config: %w", err)
	}
	cfg, err = Parse(data)
	return cfg, true, err
}

// Marshal encodes cfg as YAML with a leading comment header.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# bundlepatch configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks every parameter, including those of disabled patches,
// and joins all problems into one error.
func (c Config) Validate() error {
	var errs []error
	p := c.Patches

	if p.ThinkerSymbolSpeed.IntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("thinkerSymbolSpeed.intervalMs must be positive, got %d", p.ThinkerSymbolSpeed.IntervalMs))
	}
	if strings.ContainsAny(p.ThinkerFormat.Format, "\n\r") {
		errs = append(errs, errors.New("thinkerFormat.format must be a single line"))
	}

	u := p.UserMessageDisplay
	if strings.ContainsAny(u.Format, "\n\r") {
		errs = append(errs, errors.New("userMessageDisplay.format must be a single line"))
	}
	if fg, err := style.ParseColor(u.Foreground); err != nil {
		errs = append(errs, fmt.Errorf("userMessageDisplay.foreground: %w", err))
	} else if fg.Kind == style.ColorNone {
		errs = append(errs, errors.New("userMessageDisplay.foreground: none is not allowed; use default"))
	}
	if _, err := style.ParseColor(u.Background); err != nil {
		errs = append(errs, fmt.Errorf("userMessageDisplay.background: %w", err))
	}
	border, err := style.ParseBorder(u.BorderStyle)
	if err != nil {
		errs = append(errs, fmt.Errorf("userMessageDisplay.borderStyle: %w", err))
	}
	if err == nil && border != style.BorderNone {
		if bc, err := style.ParseColor(u.BorderColor); err != nil {
			errs = append(errs, fmt.Errorf("userMessageDisplay.borderColor: %w", err))
		} else if !bc.IsRGB() {
			errs = append(errs, errors.New("userMessageDisplay.borderColor must be an explicit color"))
		}
	}
	if u.PaddingX < 0 || u.PaddingY < 0 {
		errs = append(errs, fmt.Errorf("userMessageDisplay padding must not be negative, got x=%d y=%d", u.PaddingX, u.PaddingY))
	}

	return errors.Join(errs...)
}
