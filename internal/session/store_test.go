package session

import (
	"sync"
	"testing"
)

func TestStoreCreatesSessionOnFirstTouch(t *testing.T) {
	s := NewStore(0)

	key := Key{UserID: "u1", SessionID: "s1"}
	err := s.Do(key, func(st *State) error {
		if st.Profile == nil {
			t.Fatal("new session has nil profile")
		}
		st.Profile.Update(map[string]any{"degree": "本科"})
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestStoreKeysDoNotCollide(t *testing.T) {
	s := NewStore(0)

	// These would collide under naive string concatenation.
	a := Key{UserID: "user_1", SessionID: "2_session"}
	b := Key{UserID: "user_1_2", SessionID: "session"}

	s.Do(a, func(st *State) error {
		st.Profile.Update(map[string]any{"degree": "本科"})
		return nil
	})
	s.Do(b, func(st *State) error {
		if st.Profile.Degree != nil {
			t.Fatal("distinct keys share state")
		}
		return nil
	})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore(0)
	key := Key{UserID: "u1", SessionID: "s1"}

	if got := s.Snapshot(key); got != nil {
		t.Fatalf("snapshot of untouched session = %v, want nil", got)
	}

	s.Do(key, func(st *State) error {
		st.Profile.Update(map[string]any{"region": []string{"美国"}})
		return nil
	})

	snap := s.Snapshot(key)
	snap.Region[0] = "英国"

	s.Do(key, func(st *State) error {
		if st.Profile.Region[0] != "美国" {
			t.Fatal("snapshot mutation leaked into store")
		}
		return nil
	})
}

func TestAppendMessageTrimsHistory(t *testing.T) {
	s := NewStore(3)
	key := Key{UserID: "u1", SessionID: "s1"}

	s.Do(key, func(st *State) error {
		for i := 0; i < 5; i++ {
			st.AppendMessage("user", "msg", s.MaxHistory())
		}
		if len(st.Messages) != 3 {
			t.Fatalf("len = %d, want 3", len(st.Messages))
		}
		return nil
	})
}

func TestAppendMessageAssignsIDsAndOrder(t *testing.T) {
	s := NewStore(0)
	key := Key{UserID: "u1", SessionID: "s1"}

	s.Do(key, func(st *State) error {
		first := st.AppendMessage("user", "你好", s.MaxHistory())
		second := st.AppendMessage("assistant", "您好！", s.MaxHistory())

		if first.ID == "" || second.ID == "" || first.ID == second.ID {
			t.Fatalf("ids = %q, %q", first.ID, second.ID)
		}
		if st.Messages[0].Content != "你好" || st.Messages[1].Content != "您好！" {
			t.Fatalf("messages out of order: %+v", st.Messages)
		}
		return nil
	})
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		key := Key{UserID: "u1", SessionID: "shared"}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Do(key, func(st *State) error {
					st.AppendMessage("user", "m", s.MaxHistory())
					return nil
				})
			}
		}()
	}
	wg.Wait()

	s.Do(Key{UserID: "u1", SessionID: "shared"}, func(st *State) error {
		if len(st.Messages) != 50 {
			t.Fatalf("len = %d, want history cap %d", len(st.Messages), 50)
		}
		return nil
	})
}
