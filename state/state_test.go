package state

import (
	"testing"
)

type fooEvent struct{ n int }
type barEvent struct{}

func TestBindTrigger(t *testing.T) {
	s := New()
	var got []int
	s.Bind(fooEvent{}, func(e interface{}) {
		got = append(got, e.(fooEvent).n)
	})
	s.Trigger(fooEvent{n: 1})
	s.Trigger(fooEvent{n: 2})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}
}

func TestOneFiresOnce(t *testing.T) {
	s := New()
	count := 0
	s.One(fooEvent{}, func(interface{}) { count++ })
	s.Trigger(fooEvent{})
	s.Trigger(fooEvent{})

	if count != 1 {
		t.Fatalf("got %d calls, want 1", count)
	}
}

func TestUnbindByToken(t *testing.T) {
	s := New()
	count := 0
	tok := s.Bind(fooEvent{}, func(interface{}) { count++ })
	s.Unbind(fooEvent{}, tok)
	s.Trigger(fooEvent{})

	if count != 0 {
		t.Fatalf("got %d calls, want 0 after unbind", count)
	}
}

func TestTriggerSnapshotsDuringReentrantBind(t *testing.T) {
	s := New()
	var order []string
	s.Bind(fooEvent{}, func(interface{}) {
		order = append(order, "first")
		s.Bind(fooEvent{}, func(interface{}) {
			order = append(order, "late")
		})
	})
	s.Trigger(fooEvent{})

	if len(order) != 1 || order[0] != "first" {
		t.Fatalf("got %v, want a handler bound during Trigger to not fire in the same pass", order)
	}

	order = nil
	s.Trigger(fooEvent{})
	if len(order) != 2 {
		t.Fatalf("got %v, want both handlers to fire on the next trigger", order)
	}
}

func TestDifferentEventTypesAreIndependent(t *testing.T) {
	s := New()
	fooCalled, barCalled := false, false
	s.Bind(fooEvent{}, func(interface{}) { fooCalled = true })
	s.Bind(barEvent{}, func(interface{}) { barCalled = true })

	s.Trigger(barEvent{})
	if barCalled != true || fooCalled != false {
		t.Fatalf("got foo=%v bar=%v, want only bar's handler to fire", fooCalled, barCalled)
	}
}

func TestStanzaDispatch(t *testing.T) {
	s := New()
	var got interface{}
	if err := s.BindStanza("{jabber:client}iq", func(selector string, stanza interface{}) error {
		got = stanza
		return nil
	}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.TriggerStanza("{jabber:client}iq", "payload"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "payload" {
		t.Fatalf("got %v, want %q", got, "payload")
	}
}

func TestStanzaDispatchUnknownSelector(t *testing.T) {
	s := New()
	err := s.TriggerStanza("{jabber:client}iq", "payload")
	if err != ErrUnknownStanza {
		t.Fatalf("got %v, want ErrUnknownStanza", err)
	}
}

func TestOneStanzaFiresOnce(t *testing.T) {
	s := New()
	count := 0
	if err := s.OneStanza("{jabber:client}iq[id='1']", func(string, interface{}) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.TriggerStanza("{jabber:client}iq[id='1']", nil)
	err := s.TriggerStanza("{jabber:client}iq[id='1']", nil)
	if count != 1 {
		t.Fatalf("got %d calls, want 1", count)
	}
	if err != ErrUnknownStanza {
		t.Fatalf("got %v, want ErrUnknownStanza on the second dispatch", err)
	}
}

func TestRunScheduleWhileLocked(t *testing.T) {
	s := New()
	var order []string
	s.Run(func() {
		order = append(order, "outer-start")
		s.Run(func() { order = append(order, "inner") })
		order = append(order, "outer-end")
	})

	want := []string{"outer-start", "outer-end", "inner"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestResetReinstallsBindings(t *testing.T) {
	s := New()
	installed := false
	s.SetInstaller(func(st *State) { installed = true })
	s.Bind(fooEvent{}, func(interface{}) {})
	s.Set("plugin", 1)

	s.Reset()

	if !installed {
		t.Fatal("expected Reset to call the installer")
	}
	if _, ok := s.Get("plugin"); ok {
		t.Fatal("expected Reset to clear slots")
	}
}

func TestActivateRunsUnderLock(t *testing.T) {
	s := New()
	var lockedDuringActivate bool
	s.SetActivator(func(st *State) {
		lockedDuringActivate = st.locked
	})
	s.Activate()

	if !lockedDuringActivate {
		t.Fatal("expected Activate to hold the lock while running the activator")
	}
}
