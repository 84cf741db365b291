package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBackupUserConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "joinindex")
	configPath := filepath.Join(configDir, "config.yaml")

	t.Run("no config exists", func(t *testing.T) {
		backupPath, err := BackupUserConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backupPath != "" {
			t.Errorf("expected empty backup path for non-existent config, got %s", backupPath)
		}
	})

	t.Run("backup existing config", func(t *testing.T) {
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		testContent := "version: 1\nindex:\n  backend: indexed\n"
		if err := os.WriteFile(configPath, []byte(testContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		backupPath, err := BackupUserConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backupPath == "" {
			t.Fatal("expected non-empty backup path")
		}

		backupContent, err := os.ReadFile(backupPath)
		if err != nil {
			t.Fatalf("failed to read backup: %v", err)
		}
		if string(backupContent) != testContent {
			t.Errorf("backup content mismatch:\ngot: %s\nwant: %s", backupContent, testContent)
		}
		if !strings.HasPrefix(filepath.Base(backupPath), "config.yaml"+BackupSuffix+".") {
			t.Errorf("unexpected backup name: %s", backupPath)
		}
	})
}

func TestListUserConfigBackups(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "joinindex")
	configPath := filepath.Join(configDir, "config.yaml")

	t.Run("missing config dir", func(t *testing.T) {
		backups, err := ListUserConfigBackups()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backups) != 0 {
			t.Errorf("expected 0 backups, got %d", len(backups))
		}
	})

	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	t.Run("list multiple backups newest first", func(t *testing.T) {
		base := time.Now().Add(-time.Hour)
		timestamps := []string{"20260101-100000", "20260101-110000", "20260101-120000"}
		for i, ts := range timestamps {
			name := filepath.Join(configDir, "config.yaml.bak."+ts)
			if err := os.WriteFile(name, []byte("test"), 0644); err != nil {
				t.Fatalf("failed to create backup: %v", err)
			}
			mod := base.Add(time.Duration(i) * time.Minute)
			if err := os.Chtimes(name, mod, mod); err != nil {
				t.Fatalf("failed to set mod time: %v", err)
			}
		}
		// Unrelated files are ignored.
		if err := os.WriteFile(filepath.Join(configDir, "other.bak.1"), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write unrelated file: %v", err)
		}

		backups, err := ListUserConfigBackups()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backups) != 3 {
			t.Fatalf("expected 3 backups, got %d", len(backups))
		}
		if !strings.HasSuffix(backups[0], "120000") || !strings.HasSuffix(backups[2], "100000") {
			t.Errorf("backups not sorted newest first: %v", backups)
		}
	})

	t.Run("cleanup keeps MaxBackups", func(t *testing.T) {
		if err := os.WriteFile(configPath, []byte("version: 1\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		for i := 0; i < 4; i++ {
			if _, err := BackupUserConfig(); err != nil {
				t.Fatalf("failed to create backup: %v", err)
			}
		}

		backups, err := ListUserConfigBackups()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backups) != MaxBackups {
			t.Errorf("expected %d backups, got %d", MaxBackups, len(backups))
		}
	})
}

func TestRestoreUserConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configPath := GetUserConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	original := "version: 1\nindex:\n  backend: indexed\n"
	if err := os.WriteFile(configPath, []byte(original), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	backupPath, err := BackupUserConfig()
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	if err := os.WriteFile(configPath, []byte("version: 1\n"), 0644); err != nil {
		t.Fatalf("failed to overwrite config: %v", err)
	}

	if err := RestoreUserConfig(backupPath); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read restored config: %v", err)
	}
	if string(data) != original {
		t.Errorf("restored content mismatch:\ngot: %s\nwant: %s", data, original)
	}

	backups, err := ListUserConfigBackups()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected the overwritten config to be backed up too, got %d backups", len(backups))
	}
}

func TestRestoreUserConfig_MissingBackup(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := RestoreUserConfig(filepath.Join(t.TempDir(), "nope.bak")); err == nil {
		t.Fatal("expected error for missing backup")
	}
}

func TestWriteYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := NewConfig()
	cfg.Index.Backend = "indexed"
	cfg.Bench.Facts = 123

	if err := cfg.WriteYAML(configPath); err != nil {
		t.Fatalf("failed to write YAML: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "backend: indexed") {
		t.Error("written file should contain backend: indexed")
	}
	if !strings.Contains(content, "facts: 123") {
		t.Error("written file should contain facts: 123")
	}
}
