// ABOUTME: Tests for circular ring buffer implementation
// ABOUTME: Verifies write, wrap-around, overflow, fill level and reset
package ring

import (
	"testing"
)

func TestLen(t *testing.T) {
	buf := New(100)
	if buf.Len() != 0 {
		t.Errorf("new buffer Len = %d, want 0", buf.Len())
	}

	buf.Write([]byte("abcde"))
	if buf.Len() != 5 {
		t.Errorf("Len = %d, want 5", buf.Len())
	}
}

func TestReset(t *testing.T) {
	buf := New(100)
	buf.Write([]byte("abcde"))
	buf.Reset()

	if buf.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", buf.Len())
	}
	if len(buf.Snapshot()) != 0 {
		t.Errorf("Snapshot after Reset should be empty")
	}
}

func TestNew(t *testing.T) {
	buf := New(1024)
	if buf == nil {
		t.Fatal("New should return non-nil buffer")
	}

	snap := buf.Snapshot()
	if len(snap) != 0 {
		t.Errorf("new buffer should be empty, got %d bytes", len(snap))
	}
}

func TestWrite_Simple(t *testing.T) {
	buf := New(1024)
	data := []byte("hello")

	buf.Write(data)

	snap := buf.Snapshot()
	if string(snap) != "hello" {
		t.Errorf("expected 'hello', got %q", snap)
	}
}

func TestWrite_Overflow(t *testing.T) {
	buf := New(100)

	// Write 150 bytes - should trigger overflow
	data := make([]byte, 150)
	for i := range data {
		data[i] = byte(i)
	}

	buf.Write(data)

	snap := buf.Snapshot()

	// Should have dropped oldest 25 bytes, kept newest 100
	if len(snap) != 100 {
		t.Errorf("expected 100 bytes, got %d", len(snap))
	}

	// Should contain bytes 50-149 (dropped 0-49)
	for i, v := range snap {
		expected := byte(50 + i)
		if v != expected {
			t.Errorf("byte %d: expected %d, got %d", i, expected, v)
			break
		}
	}
}
