// ABOUTME: Tests for the TTL cache
// ABOUTME: Covers expiry, custom TTLs, and one-shot Take semantics

package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "value")

	val, ok := c.Get("key")
	if !ok {
		t.Fatal("expected hit, got miss")
	}
	if val.(string) != "value" {
		t.Errorf("value = %v, want value", val)
	}
}

func TestGet_Miss(t *testing.T) {
	c := New(time.Minute)
	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestSetWithTTL_Expires(t *testing.T) {
	c := New(time.Minute)
	c.SetWithTTL("key", "value", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestTake_IsOneShot(t *testing.T) {
	c := New(time.Minute)
	c.Set("token", "payload")

	val, ok := c.Take("token")
	if !ok || val.(string) != "payload" {
		t.Fatalf("Take = (%v, %v), want (payload, true)", val, ok)
	}

	if _, ok := c.Take("token"); ok {
		t.Error("second Take succeeded, want miss")
	}
	if _, ok := c.Get("token"); ok {
		t.Error("Get after Take succeeded, want miss")
	}
}

func TestClear(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "value")
	c.Clear("key")

	if _, ok := c.Get("key"); ok {
		t.Error("expected miss after Clear")
	}
}
