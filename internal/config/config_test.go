package config

import "testing"

func TestValidateCommitWindow(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"0", false},
		{"0s", false},
		{"0m", false},
		{"5s", false},
		{"60m", false},
		{"5", true},
		{"5h", true},
		{"-5s", true},
		{"", true},
	}
	for _, c := range cases {
		err := ValidateCommitWindow(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ValidateCommitWindow(%q) error = %v, wantErr %v", c.in, err, c.wantErr)
		}
	}
}

func TestLogImmediate(t *testing.T) {
	for _, w := range []string{"0", "0s", "0m"} {
		l := &Log{CommitWindow: w}
		if !l.Immediate() {
			t.Errorf("Log{CommitWindow:%q}.Immediate() = false, want true", w)
		}
	}
	l := &Log{CommitWindow: "5s"}
	if l.Immediate() {
		t.Error("Log{CommitWindow:\"5s\"}.Immediate() = true, want false")
	}
}

func TestConfigValidate(t *testing.T) {
	c := Empty()
	c.Datastores["d1"] = &Datastore{Name: "d1", Bucket: "b1"}
	c.Logs["accesslog"] = &Log{Name: "accesslog", Datastores: []string{"d1"}, CommitWindow: "5s"}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Logs["broken"] = &Log{Name: "broken", Datastores: []string{"missing"}, CommitWindow: "5s"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for log referencing unknown datastore")
	}
	delete(c.Logs, "broken")

	c.Tokens["tok"] = &Token{AccessKey: "tok", Enabled: true}
	c.Auth["tok"] = map[string]*LogAuth{"nosuchlog": {TokenAccessKey: "tok", LogName: "nosuchlog"}}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for auth binding referencing unknown log")
	}
}

func TestAuthorize(t *testing.T) {
	c := Empty()
	c.Datastores["d1"] = &Datastore{Name: "d1"}
	c.Logs["accesslog"] = &Log{Name: "accesslog", Datastores: []string{"d1"}, CommitWindow: "0"}
	c.Tokens["adminkey"] = &Token{AccessKey: "adminkey", IsAdmin: true, Enabled: true}
	c.Tokens["normalkey"] = &Token{AccessKey: "normalkey", Enabled: true}
	c.Auth["normalkey"] = map[string]*LogAuth{
		"accesslog": {TokenAccessKey: "normalkey", LogName: "accesslog", API: []API{APIStore}, Status: "enabled"},
	}

	if err := c.Authorize("adminkey", "accesslog", APISearch); err != nil {
		t.Errorf("admin token should bypass LogAuth: %v", err)
	}
	if err := c.Authorize("normalkey", "accesslog", APIStore); err != nil {
		t.Errorf("expected store to be allowed: %v", err)
	}
	if err := c.Authorize("normalkey", "accesslog", APISearch); err == nil {
		t.Error("expected search to be denied")
	}
	if err := c.Authorize("unknown", "accesslog", APIStore); err == nil {
		t.Error("expected unknown token to fail")
	}
	if err := c.Authorize("normalkey", "nosuchlog", APIStore); err == nil {
		t.Error("expected unknown log to fail")
	}
}

func TestOwnerCloneAndSwap(t *testing.T) {
	o := NewOwner()
	base := o.Get()
	if len(base.Logs) != 0 {
		t.Fatal("expected empty config")
	}

	clone := o.BeginUpdate()
	clone.Logs["l1"] = &Log{Name: "l1", Datastores: []string{"d"}, CommitWindow: "0"}
	clone.Datastores["d"] = &Datastore{Name: "d"}
	o.CommitUpdate(clone)

	// The snapshot taken before the update must be unaffected.
	if len(base.Logs) != 0 {
		t.Fatal("earlier snapshot was mutated by a later update")
	}
	if len(o.Get().Logs) != 1 {
		t.Fatal("update was not observed after commit")
	}
}
