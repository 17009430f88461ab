package config

import "testing"

func TestGet_AllKeys(t *testing.T) {
	cfg := Default()
	for _, key := range Keys() {
		if _, err := Get(cfg, key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}

	if _, err := Get(cfg, "anthropic.api_key"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"storage.driver", "sqlite3", false},
		{"storage.driver", "mysql", true},
		{"catalog.watch", "true", false},
		{"catalog.watch", "maybe", true},
		{"navigator.max_results", "25", false},
		{"navigator.max_results", "0", true},
		{"navigator.bom_top_n", "abc", true},
		{"session.max_history", "50", false},
		{"USER.ID", "carol", false},
		{"nope.key", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := Default()
			err := Set(cfg, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			got, err := Get(cfg, tt.key)
			if err != nil {
				t.Fatalf("Get(%q) failed: %v", tt.key, err)
			}
			if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}
