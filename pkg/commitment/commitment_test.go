package commitment

import (
	"bytes"
	"testing"
)

func TestCanonicalizeJSON_SortsKeysRegardlessOfInputOrder(t *testing.T) {
	a, err := CanonicalizeJSON([]byte(`{"b":1,"a":2,"c":[3,2,1]}`))
	if err != nil {
		t.Fatalf("CanonicalizeJSON failed: %v", err)
	}
	b, err := CanonicalizeJSON([]byte(`{"c":[3,2,1],"a":2,"b":1}`))
	if err != nil {
		t.Fatalf("CanonicalizeJSON failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("expected identical canonical output regardless of input key order, got %s vs %s", a, b)
	}
}

func TestCanonicalizeJSON_ArrayOrderPreserved(t *testing.T) {
	out, err := CanonicalizeJSON([]byte(`{"arr":[3,1,2]}`))
	if err != nil {
		t.Fatalf("CanonicalizeJSON failed: %v", err)
	}
	if string(out) != `{"arr":[3,1,2]}` {
		t.Errorf("expected array order preserved, got %s", out)
	}
}

func TestMarshalCanonical_StructFieldOrderIrrelevant(t *testing.T) {
	type pair struct {
		B int `json:"b"`
		A int `json:"a"`
	}
	out, err := MarshalCanonical(pair{B: 1, A: 2})
	if err != nil {
		t.Fatalf("MarshalCanonical failed: %v", err)
	}
	if string(out) != `{"a":2,"b":1}` {
		t.Errorf("expected sorted keys, got %s", out)
	}
}

func TestHash_DeterministicAndSensitiveToContent(t *testing.T) {
	a := []byte(`{"a":1}`)
	b := []byte(`{"a":2}`)

	if Hash(a) != Hash(a) {
		t.Errorf("expected Hash to be deterministic for identical input")
	}
	if Hash(a) == Hash(b) {
		t.Errorf("expected different canonical content to produce different commitments")
	}
}
