package secret_test

import (
	"testing"

	"invoicebuilder/internal/secret"
)

func TestEnvStore(t *testing.T) {
	t.Setenv("INVOICE_BUILDER_SECRET_PG_PASSWORD", "hunter2")

	got, err := secret.EnvStore{}.Get("pg-password")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hunter2" {
		t.Errorf("got %q, want hunter2", got)
	}

	missing, err := secret.EnvStore{}.Get("nothing-here")
	if err != nil || missing != nil {
		t.Errorf("missing = %q, err %v", missing, err)
	}
}

func TestChain_FirstHitWins(t *testing.T) {
	a := secret.NewMapStore()
	b := secret.NewMapStore()
	b.Set("redis", []byte("from-b"))
	chain := secret.Chain{a, b}

	got, _ := chain.Get("redis")
	if string(got) != "from-b" {
		t.Fatalf("got %q, want from-b", got)
	}

	a.Set("redis", []byte("from-a"))
	got, _ = chain.Get("redis")
	if string(got) != "from-a" {
		t.Fatalf("got %q, want from-a", got)
	}

	chain.Delete("redis")
	got, _ = chain.Get("redis")
	if string(got) != "from-b" {
		t.Fatalf("after delete got %q, want from-b", got)
	}
}
