package settings

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFile(t *testing.T) {
	s, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if s.DefaultACS() != "" {
		t.Errorf("DefaultACS = %q, want empty", s.DefaultACS())
	}
}

func TestDefaults(t *testing.T) {
	s := &Settings{}
	if got := s.GetRedisAddr(); got != "localhost:6379" {
		t.Errorf("GetRedisAddr = %q", got)
	}
	if got := s.RequestTimeout(); got != 15*time.Second {
		t.Errorf("RequestTimeout = %v", got)
	}
	if got := s.SearchTimeout(); got != 5*time.Second {
		t.Errorf("SearchTimeout = %v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.yaml")

	s := &Settings{
		DefaultAcsServerID: "srv1",
		RedisAddr:          "redis.lab:6380",
		RedisDB:            2,
		RequestTimeoutSec:  30,
		SearchTimeoutSec:   3,
	}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.DefaultACS() != "srv1" {
		t.Errorf("DefaultACS = %q", got.DefaultACS())
	}
	if got.GetRedisAddr() != "redis.lab:6380" || got.RedisDB != 2 {
		t.Errorf("redis = %q/%d", got.GetRedisAddr(), got.RedisDB)
	}
	if got.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout = %v", got.RequestTimeout())
	}
	if got.SearchTimeout() != 3*time.Second {
		t.Errorf("SearchTimeout = %v", got.SearchTimeout())
	}
}

func TestClear(t *testing.T) {
	s := &Settings{DefaultAcsServerID: "srv1", RedisAddr: "x"}
	s.Clear()
	if s.DefaultACS() != "" || s.RedisAddr != "" {
		t.Errorf("Clear left %+v", s)
	}
}

func TestSetDefaultACS(t *testing.T) {
	s := &Settings{}
	s.SetDefaultACS("srv9")
	if s.DefaultACS() != "srv9" {
		t.Errorf("DefaultACS = %q", s.DefaultACS())
	}
}
