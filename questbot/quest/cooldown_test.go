package quest

import (
	"testing"
	"time"
)

func TestCooldownCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(10 * time.Second)
	c.now = func() time.Time { return now }

	if _, ok := c.Check("user1", 1); !ok {
		t.Fatal("first click should pass")
	}

	remaining, ok := c.Check("user1", 1)
	if ok {
		t.Fatal("second click inside the window should be denied")
	}
	if remaining != 10*time.Second {
		t.Errorf("remaining = %v, want 10s", remaining)
	}

	// Different task and different user are independent keys.
	if _, ok := c.Check("user1", 2); !ok {
		t.Error("different task should not share the cooldown")
	}
	if _, ok := c.Check("user2", 1); !ok {
		t.Error("different user should not share the cooldown")
	}

	now = now.Add(4 * time.Second)
	remaining, ok = c.Check("user1", 1)
	if ok {
		t.Fatal("click at 4s should still be denied")
	}
	if remaining != 6*time.Second {
		t.Errorf("remaining = %v, want 6s", remaining)
	}

	now = now.Add(6 * time.Second)
	if _, ok := c.Check("user1", 1); !ok {
		t.Error("click after the window should pass")
	}
}

func TestCooldownDeniedClickDoesNotExtendWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(10 * time.Second)
	c.now = func() time.Time { return now }

	c.Check("user1", 1)
	now = now.Add(9 * time.Second)
	c.Check("user1", 1) // denied, must not re-stamp

	now = now.Add(1 * time.Second)
	if _, ok := c.Check("user1", 1); !ok {
		t.Error("window should be measured from the allowed click, not the denied one")
	}
}
