package cache

import (
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("doc-1", "some content")
	b := Fingerprint("doc-1", "some content")
	if a != b {
		t.Error("same document produced different fingerprints")
	}
	if a == Fingerprint("doc-1", "changed content") {
		t.Error("changed content produced the same fingerprint")
	}
	if a == Fingerprint("doc-2", "some content") {
		t.Error("different document ID produced the same fingerprint")
	}
}

func TestIngestSeenMarkForget(t *testing.T) {
	c := NewIngest(time.Minute, time.Minute)
	key := Fingerprint("doc-1", "content")

	if c.Seen(key) {
		t.Error("fresh cache reported fingerprint as seen")
	}
	c.Mark(key)
	if !c.Seen(key) {
		t.Error("marked fingerprint not seen")
	}
	c.Forget(key)
	if c.Seen(key) {
		t.Error("forgotten fingerprint still seen")
	}
}

func TestIngestExpiry(t *testing.T) {
	c := NewIngest(10*time.Millisecond, time.Minute)
	key := Fingerprint("doc-1", "content")
	c.Mark(key)
	time.Sleep(30 * time.Millisecond)
	if c.Seen(key) {
		t.Error("fingerprint survived past its TTL")
	}
}
