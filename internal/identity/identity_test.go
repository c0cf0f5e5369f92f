package identity

import "testing"

func TestAdminList(t *testing.T) {
	policy := NewAdminList("alice", "", "bob")

	if !policy.IsAdmin("alice") {
		t.Error("alice should be an admin")
	}
	if !policy.IsAdmin("bob") {
		t.Error("bob should be an admin")
	}
	if policy.IsAdmin("carol") {
		t.Error("carol should not be an admin")
	}
	if policy.IsAdmin("") {
		t.Error("empty uid should never be an admin")
	}
}

func TestStaticProviderAppliesPolicy(t *testing.T) {
	p := NewStaticProvider(NewAdminList("alice"))

	if _, ok := p.CurrentUser(); ok {
		t.Fatal("fresh provider should be signed out")
	}

	p.SignIn("alice")
	u, ok := p.CurrentUser()
	if !ok || u.ID != "alice" {
		t.Fatalf("expected signed-in alice, got %+v ok=%v", u, ok)
	}
	if !u.Admin {
		t.Error("alice should carry the admin flag")
	}

	p.SignIn("carol")
	u, _ = p.CurrentUser()
	if u.Admin {
		t.Error("carol should not carry the admin flag")
	}

	p.SignOut()
	if _, ok := p.CurrentUser(); ok {
		t.Error("provider should be signed out after SignOut")
	}
}

func TestStaticProviderNilPolicy(t *testing.T) {
	p := NewStaticProvider(nil)
	p.SignIn("alice")

	u, _ := p.CurrentUser()
	if u.Admin {
		t.Error("nil policy should grant admin to nobody")
	}
}

func TestOnChangeNotifications(t *testing.T) {
	p := NewStaticProvider(nil)

	type event struct {
		uid      string
		signedIn bool
	}
	var events []event
	p.OnChange(func(u User, signedIn bool) {
		events = append(events, event{u.ID, signedIn})
	})

	p.SignIn("alice")
	p.SignOut()

	want := []event{{"alice", true}, {"alice", false}}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, e := range events {
		if e != want[i] {
			t.Errorf("event %d: got %+v, want %+v", i, e, want[i])
		}
	}
}
