package config

import (
	"os"
	"path/filepath"
	"testing"

	dmtx "github.com/zmoth/libdmtx"
)

func TestLoadAppliesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dmtx.yaml")
	yaml := `
loglevel: debug
encode:
  scheme: c40
  module_size: 3
decode:
  scan_gap: 4
  square_devn_degrees: 30
  roi:
    x: 10
    y: 20
    width: 100
    height: 80
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("loglevel %q, want debug", cfg.LogLevel)
	}
	if cfg.Encode.Scheme != "c40" {
		t.Errorf("scheme %q, want c40", cfg.Encode.Scheme)
	}
	if cfg.Encode.ModuleSize != 3 {
		t.Errorf("module size %d, want 3", cfg.Encode.ModuleSize)
	}
	// Unset fields keep their defaults.
	if cfg.Encode.MarginSize != Defaults().Encode.MarginSize {
		t.Errorf("margin size %d, want default %d", cfg.Encode.MarginSize, Defaults().Encode.MarginSize)
	}

	enc, err := cfg.EncodeOptions()
	if err != nil {
		t.Fatal(err)
	}
	if enc.Scheme != dmtx.SchemeC40 {
		t.Errorf("encode scheme %v, want SchemeC40", enc.Scheme)
	}

	dec := cfg.DecodeOptions()
	if dec.ScanGap != 4 {
		t.Errorf("scan gap %d, want 4", dec.ScanGap)
	}
	if dec.SquareDevn < 0.52 || dec.SquareDevn > 0.53 {
		t.Errorf("square devn %g, want about 0.5236 rad", dec.SquareDevn)
	}
	if dec.ROI == nil || dec.ROI.Width != 100 || dec.ROI.Y != 20 {
		t.Errorf("roi not carried through: %+v", dec.ROI)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in   string
		want dmtx.Scheme
	}{
		{"", dmtx.SchemeAuto},
		{"auto", dmtx.SchemeAuto},
		{"ASCII", dmtx.SchemeASCII},
		{"c40", dmtx.SchemeC40},
		{"Text", dmtx.SchemeText},
		{"x12", dmtx.SchemeX12},
		{"edifact", dmtx.SchemeEDIFACT},
		{"base256", dmtx.SchemeBase256},
	}
	for _, tc := range tests {
		got, err := ParseScheme(tc.in)
		if err != nil {
			t.Errorf("ParseScheme(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseScheme(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseScheme("qr"); err == nil {
		t.Error("expected error for unknown scheme")
	}
}
