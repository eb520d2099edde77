package userinfo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foliva/docengine/pkg/configs"
	"github.com/foliva/docengine/pkg/internal/userinfo"
)

func TestDisplayNameReturnsBareIDWhenDisabled(t *testing.T) {
	client := userinfo.New(configs.UserDataConfig{Enabled: false, BaseURL: "http://unused", TimeoutMS: 1000})

	got := client.DisplayName(context.Background(), "alice-uuid")
	if got != "alice-uuid" {
		t.Fatalf("expected bare id when disabled, got %q", got)
	}
}

func TestDisplayNameFetchesFromIdentityProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/alice-uuid" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"displayName":"Alice"}`))
	}))
	defer srv.Close()

	client := userinfo.New(configs.UserDataConfig{Enabled: true, BaseURL: srv.URL, TimeoutMS: 1000})

	got := client.DisplayName(context.Background(), "alice-uuid")
	if got != "Alice" {
		t.Fatalf("expected Alice, got %q", got)
	}
}

func TestDisplayNameDegradesToBareIDOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := userinfo.New(configs.UserDataConfig{Enabled: true, BaseURL: srv.URL, TimeoutMS: 1000})

	got := client.DisplayName(context.Background(), "bob-uuid")
	if got != "bob-uuid" {
		t.Fatalf("expected degraded bare id, got %q", got)
	}
}
