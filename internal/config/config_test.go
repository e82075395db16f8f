/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"testing"
)

// fakeStore stubs the OS keyring for tests.
type fakeStore struct{ m map[string]string }

func (f *fakeStore) Get(service, key string) (string, error) {
	v, ok := f.m[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (f *fakeStore) Set(service, key, value string) error {
	f.m[service+"/"+key] = value
	return nil
}
func (f *fakeStore) Delete(service, key string) error {
	delete(f.m, service+"/"+key)
	return nil
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.ConfigVersion != 1 {
		t.Fatalf("config_version = %d, want 1", cfg.ConfigVersion)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Backend.TimeoutMs != 15000 {
		t.Fatalf("backend timeout default = %d", cfg.Backend.TimeoutMs)
	}
}

func TestMergeInto(t *testing.T) {
	dst := Defaults()
	src := AppConfig{
		Backend: BackendConfig{PostgresDSN: "postgres://x/y", TimeoutMs: 500},
		Logging: LoggingConfig{Level: "DEBUG", Format: "JSON"},
	}
	mergeInto(&dst, &src)
	if dst.Backend.PostgresDSN != "postgres://x/y" || dst.Backend.TimeoutMs != 500 {
		t.Fatalf("backend not merged: %+v", dst.Backend)
	}
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" {
		t.Fatalf("logging not normalized: %+v", dst.Logging)
	}
	// empty fields in src must not clobber defaults
	if dst.General.Theme != "system" {
		t.Fatalf("theme clobbered: %q", dst.General.Theme)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvBackendDSN, "postgres://env/db")
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvTelemetryOptIn, "yes")
	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.Backend.PostgresDSN != "postgres://env/db" {
		t.Fatalf("dsn override missing: %q", cfg.Backend.PostgresDSN)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("log level override missing: %q", cfg.Logging.Level)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatal("telemetry opt-in override missing")
	}
}

func TestTokenStoreRoundTrip(t *testing.T) {
	old := tokenStore
	tokenStore = &fakeStore{m: map[string]string{}}
	defer func() { tokenStore = old }()

	if err := tokenStore.Set(keyringService, keyringToken, "secret"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := tokenStore.Get(keyringService, keyringToken)
	if err != nil || got != "secret" {
		t.Fatalf("get = %q, %v", got, err)
	}
	if err := ForgetToken(); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if _, err := tokenStore.Get(keyringService, keyringToken); err == nil {
		t.Fatal("token still present after ForgetToken")
	}
}
