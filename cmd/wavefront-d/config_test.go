package main

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_StepIntervalValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		envVars     map[string]string
		expectError bool
		errorSubstr string
	}{
		{
			name:        "valid step interval from flag",
			args:        []string{"-step-interval", "500ms"},
			expectError: false,
		},
		{
			name:        "zero step interval from flag",
			args:        []string{"-step-interval", "0s"},
			expectError: true,
			errorSubstr: "step interval must be positive",
		},
		{
			name:        "negative step interval from flag",
			args:        []string{"-step-interval", "-1s"},
			expectError: true,
			errorSubstr: "step interval must be positive",
		},
		{
			name:        "valid step interval from env",
			envVars:     map[string]string{"WAVEFRONT_STEP_INTERVAL": "2s"},
			expectError: false,
		},
		{
			name:        "invalid step interval format from env",
			envVars:     map[string]string{"WAVEFRONT_STEP_INTERVAL": "fast"},
			expectError: true,
			errorSubstr: "invalid WAVEFRONT_STEP_INTERVAL",
		},
		{
			name:        "invalid step interval format from flag",
			args:        []string{"-step-interval", "fast"},
			expectError: true,
			errorSubstr: "invalid step interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig(tt.args)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errorSubstr)
				} else if !strings.Contains(err.Error(), tt.errorSubstr) {
					t.Errorf("expected error containing %q, got %q", tt.errorSubstr, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				} else if cfg.StepInterval <= 0 {
					t.Errorf("expected positive step interval, got %v", cfg.StepInterval)
				}
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != defaultAddr {
		t.Errorf("expected default addr %s, got %s", defaultAddr, cfg.Addr)
	}
	if cfg.StepInterval != time.Second {
		t.Errorf("expected default step interval of 1s, got %v", cfg.StepInterval)
	}
	if !strings.HasSuffix(cfg.DBPath, "wavefront.db") {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
}

func TestLoadConfig_DBPathDisabling(t *testing.T) {
	// Set-but-empty env disables the event log.
	t.Setenv("WAVEFRONT_DB_PATH", "")
	cfg, err := LoadConfig([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBPath != "" {
		t.Errorf("empty WAVEFRONT_DB_PATH should disable the event log, got %q", cfg.DBPath)
	}
}

func TestLoadConfig_DBPathFlagOverridesEnv(t *testing.T) {
	t.Setenv("WAVEFRONT_DB_PATH", "/tmp/env.db")
	cfg, err := LoadConfig([]string{"-db", "/tmp/flag.db"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBPath != "/tmp/flag.db" {
		t.Errorf("flag should override env, got %q", cfg.DBPath)
	}
}
