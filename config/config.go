// Package config loads the library's tunable properties from YAML files so
// the CLI and embedding applications can share one configuration format.
// Library callers that don't want a file can build the option structs in
// code; this package is convenience, not a requirement.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	dmtx "github.com/zmoth/libdmtx"
)

type Config struct {
	LogLevel string `yaml:"loglevel"`
	Encode   Encode `yaml:"encode"`
	Decode   Decode `yaml:"decode"`
}

// Encode mirrors the encoder tunables.
type Encode struct {
	// Scheme is one of auto, ascii, c40, text, x12, edifact, base256.
	Scheme         string `yaml:"scheme"`
	SizeIdxRequest int    `yaml:"size_idx_request"`
	MarginSize     int    `yaml:"margin_size"`
	ModuleSize     int    `yaml:"module_size"`
	FNC1           bool   `yaml:"fnc1"`
}

// Decode mirrors the decoder and detector tunables.
type Decode struct {
	SizeIdxExpected   int     `yaml:"size_idx_expected"`
	EdgeMin           int     `yaml:"edge_min"`
	EdgeMax           int     `yaml:"edge_max"`
	ScanGap           int     `yaml:"scan_gap"`
	SquareDevnDegrees float64 `yaml:"square_devn_degrees"`
	EdgeThresh        int     `yaml:"edge_thresh"`
	Shrink            int     `yaml:"shrink"`
	Timeout           string  `yaml:"timeout"`
	ROI               *ROI    `yaml:"roi"`
}

// ROI restricts detection to a rectangle of the image.
type ROI struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Defaults returns a Config populated with all default values.
func Defaults() *Config {
	return defaults()
}

func defaults() *Config {
	enc := dmtx.DefaultEncodeOptions()
	dec := dmtx.DefaultDecodeOptions()
	return &Config{
		LogLevel: "warn",
		Encode: Encode{
			Scheme:         "auto",
			SizeIdxRequest: enc.SizeIdxRequest,
			MarginSize:     enc.MarginSize,
			ModuleSize:     enc.ModuleSize,
		},
		Decode: Decode{
			SizeIdxExpected:   dec.SizeIdxExpected,
			ScanGap:           dec.ScanGap,
			SquareDevnDegrees: 50,
			EdgeThresh:        dec.EdgeThresh,
			Shrink:            1,
		},
	}
}

// Load reads a YAML config from path, applied on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EncodeOptions converts the loaded encode section into the option struct
// the writer consumes.
func (c *Config) EncodeOptions() (*dmtx.EncodeOptions, error) {
	scheme, err := ParseScheme(c.Encode.Scheme)
	if err != nil {
		return nil, err
	}
	return &dmtx.EncodeOptions{
		Scheme:         scheme,
		SizeIdxRequest: c.Encode.SizeIdxRequest,
		MarginSize:     c.Encode.MarginSize,
		ModuleSize:     c.Encode.ModuleSize,
		FNC1:           c.Encode.FNC1,
	}, nil
}

// DecodeOptions converts the loaded decode section into the option struct
// the reader consumes.
func (c *Config) DecodeOptions() *dmtx.DecodeOptions {
	opts := dmtx.DefaultDecodeOptions()
	opts.SizeIdxExpected = c.Decode.SizeIdxExpected
	opts.EdgeMin = c.Decode.EdgeMin
	opts.EdgeMax = c.Decode.EdgeMax
	if c.Decode.ScanGap > 0 {
		opts.ScanGap = c.Decode.ScanGap
	}
	if c.Decode.SquareDevnDegrees > 0 {
		opts.SquareDevn = c.Decode.SquareDevnDegrees * 0.017453292519943295
	}
	if c.Decode.EdgeThresh > 0 {
		opts.EdgeThresh = c.Decode.EdgeThresh
	}
	opts.Shrink = c.Decode.Shrink
	if r := c.Decode.ROI; r != nil {
		opts.ROI = &dmtx.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return opts
}

// ParseScheme maps a scheme name to its dmtx.Scheme value.
func ParseScheme(name string) (dmtx.Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return dmtx.SchemeAuto, nil
	case "ascii":
		return dmtx.SchemeASCII, nil
	case "c40":
		return dmtx.SchemeC40, nil
	case "text":
		return dmtx.SchemeText, nil
	case "x12":
		return dmtx.SchemeX12, nil
	case "edifact":
		return dmtx.SchemeEDIFACT, nil
	case "base256":
		return dmtx.SchemeBase256, nil
	}
	return dmtx.SchemeAuto, fmt.Errorf("%w: unknown scheme %q", dmtx.ErrIllegalParameter, name)
}
