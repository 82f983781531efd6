package common

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/viper"
)

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" a, ,b,c ")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("SplitCSV => %v", got)
	}
	if SplitCSV("") != nil {
		t.Fatal("SplitCSV(\"\") should be nil")
	}
}

func TestUniqueNonEmpty(t *testing.T) {
	got := UniqueNonEmpty([]string{"USER", " ", "ADMIN", "USER"})
	if !reflect.DeepEqual(got, []string{"USER", "ADMIN"}) {
		t.Fatalf("UniqueNonEmpty => %v", got)
	}
}

func TestSetupViper_FileOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(p, []byte("server:\n  addr: \":9999\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TESTAPP_CONFIG_DEFAULT_PATH", p)

	v := viper.New()
	if err := SetupViper(v, "TESTAPP", "testapp"); err != nil {
		t.Fatalf("SetupViper: %v", err)
	}
	if got := v.GetString("server.addr"); got != ":9999" {
		t.Fatalf("want :9999, got %q", got)
	}
}

func TestSetupViper_MissingOverrideFile(t *testing.T) {
	t.Setenv("TESTAPP_CONFIG_DEFAULT_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	if err := SetupViper(viper.New(), "TESTAPP", "testapp"); err == nil {
		t.Fatal("expected error for missing override file")
	}
}

func TestSetupViper_EnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TESTAPP_LOG_LEVEL", "debug")

	v := viper.New()
	v.SetDefault("log.level", "info")
	if err := SetupViper(v, "TESTAPP", "testapp"); err != nil {
		t.Fatalf("SetupViper: %v", err)
	}
	if got := v.GetString("log.level"); got != "debug" {
		t.Fatalf("want env override debug, got %q", got)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore cwd: %v", err)
		}
	})
}
