package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadSpinnerConfig(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *SpinnerConfig)
	}{
		{
			name: "valid config",
			yamlContent: `
spinner:
  roomId: "1024"
  columns: 4
  sidesPath: assets/images/sides.png
  sideNumber: 8
tuning:
  minSpins: 10
  staggerMs: 150
audio:
  soundEnabled: false
  soundVolume: 0.5
`,
			validate: func(t *testing.T, cfg *SpinnerConfig) {
				if cfg.Spinner.RoomID != "1024" {
					t.Errorf("expected roomId = 1024, got %q", cfg.Spinner.RoomID)
				}
				if cfg.Spinner.Columns != 4 || cfg.Spinner.SideNumber != 8 {
					t.Errorf("expected 4 columns x 8 sides, got %d x %d", cfg.Spinner.Columns, cfg.Spinner.SideNumber)
				}
				if cfg.Tuning.Stagger() != 150*time.Millisecond {
					t.Errorf("expected stagger 150ms, got %v", cfg.Tuning.Stagger())
				}
				if cfg.Audio.SoundEnabled {
					t.Error("expected sound disabled")
				}
			},
		},
		{
			name: "missing fields keep defaults",
			yamlContent: `
spinner:
  roomId: "7"
`,
			validate: func(t *testing.T, cfg *SpinnerConfig) {
				def := DefaultSpinnerConfig()
				if cfg.Spinner.Columns != def.Spinner.Columns {
					t.Errorf("expected default columns %d, got %d", def.Spinner.Columns, cfg.Spinner.Columns)
				}
				if cfg.Tuning.MinSpins != 15 {
					t.Errorf("expected default minSpins 15, got %d", cfg.Tuning.MinSpins)
				}
				if cfg.Tuning.TickInterval() != 45*time.Millisecond {
					t.Errorf("expected default tick interval 45ms, got %v", cfg.Tuning.TickInterval())
				}
				if cfg.Round.BaseDuration() != 6*time.Second {
					t.Errorf("expected default base duration 6s, got %v", cfg.Round.BaseDuration())
				}
			},
		},
		{
			name: "zero columns",
			yamlContent: `
spinner:
  columns: 0
`,
			wantErr:     true,
			errContains: "columns",
		},
		{
			name: "volume out of range",
			yamlContent: `
audio:
  soundVolume: 1.5
`,
			wantErr:     true,
			errContains: "soundVolume",
		},
		{
			name:        "malformed yaml",
			yamlContent: "spinner: [",
			wantErr:     true,
			errContains: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "spinner.yaml")
			if err := os.WriteFile(path, []byte(tt.yamlContent), 0644); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}

			cfg, err := LoadSpinnerConfig(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %v", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadSpinnerConfigMissingFile(t *testing.T) {
	_, err := LoadSpinnerConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSpinnerOptionsValidate(t *testing.T) {
	base := DefaultSpinnerConfig().Spinner

	tests := []struct {
		name   string
		mutate func(o *SpinnerOptions)
		want   error
	}{
		{"默认参数有效", func(o *SpinnerOptions) {}, nil},
		{"列数为零", func(o *SpinnerOptions) { o.Columns = 0 }, ErrInvalidColumns},
		{"面数为一", func(o *SpinnerOptions) { o.SideNumber = 1 }, ErrInvalidSideNumber},
		{"缺少图集", func(o *SpinnerOptions) { o.SidesPath = "" }, ErrMissingSidesPath},
		{"音效可选", func(o *SpinnerOptions) { o.AudioPath = "" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestIdentityKey(t *testing.T) {
	opts := DefaultSpinnerConfig().Spinner

	k1, err := IdentityKey("room-1", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k2, _ := IdentityKey("room-1", opts)
	if k1 != k2 {
		t.Errorf("same inputs produced different keys:\n%s\n%s", k1, k2)
	}

	other := opts
	other.Columns = 5
	k3, _ := IdentityKey("room-1", other)
	if k1 == k3 {
		t.Error("different options should produce different keys")
	}

	k4, _ := IdentityKey("room-2", opts)
	if k1 == k4 {
		t.Error("different rooms should produce different keys")
	}

	if !strings.HasPrefix(k1, "room-1_") {
		t.Errorf("expected key to start with room id, got %q", k1)
	}
}

func TestDefaultSpinnerConfigIsValid(t *testing.T) {
	if err := DefaultSpinnerConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if DefaultSpinnerConfig().Spinner.SideNumber != len(SymbolNames) {
		t.Error("default sideNumber should match the symbol table")
	}
}
