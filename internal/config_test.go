package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLibraryConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     LibraryConfig
		wantErr bool
	}{
		{"valid", LibraryConfig{Path: "./library", MaxUpload: 1024}, false},
		{"zero upload uses default", LibraryConfig{Path: "./library"}, false},
		{"missing path", LibraryConfig{MaxUpload: 1024}, true},
		{"negative upload", LibraryConfig{Path: "./library", MaxUpload: -1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSearchConfig_Validate(t *testing.T) {
	for _, n := range []int{0, -5, 10001} {
		cfg := SearchConfig{MaxWindow: n}
		if err := cfg.Validate(); err == nil {
			t.Errorf("max_window %d accepted", n)
		}
	}
	cfg := SearchConfig{MaxWindow: 200}
	if err := cfg.Validate(); err != nil {
		t.Errorf("max_window 200 rejected: %v", err)
	}
}

func TestFullConfig_SearchValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Search.MaxWindow = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch search error")
	}
}
