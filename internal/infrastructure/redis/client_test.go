package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClient_NamesConnection(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewClient(ctx, "redis://"+srv.Addr()+"/2")
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if db := client.Options().DB; db != 2 {
		t.Fatalf("expected database 2 from the URL, got %d", db)
	}
	name, err := client.ClientGetName(ctx).Result()
	if err != nil {
		t.Fatalf("client getname failed: %v", err)
	}
	if name != "caseledger" {
		t.Fatalf("expected connection name caseledger, got %q", name)
	}
}

func TestNewClient_Errors(t *testing.T) {
	down := miniredis.RunT(t)
	downURL := "redis://" + down.Addr()
	down.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"malformed url", "://bad-url"},
		{"wrong scheme", "http://localhost:6379"},
		{"server down", downURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(context.Background(), tt.url); err == nil {
				t.Fatalf("expected error for %s", tt.url)
			}
		})
	}
}
