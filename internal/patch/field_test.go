package patch

import (
	"encoding/json"
	"testing"
)

type payload struct {
	Title    Field[string] `json:"title"`
	Estimate Field[int]    `json:"estimate"`
}

func TestField_AbsentNullValue(t *testing.T) {
	var p payload
	if err := json.Unmarshal([]byte(`{"title": "write report"}`), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !p.Title.Present() || p.Title.IsNull() {
		t.Error("title should be present and non-null")
	}
	if p.Title.Value() != "write report" {
		t.Errorf("expected title %q, got %q", "write report", p.Title.Value())
	}
	if p.Estimate.Present() {
		t.Error("estimate was absent from the payload but reports present")
	}

	p = payload{}
	if err := json.Unmarshal([]byte(`{"estimate": null}`), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !p.Estimate.Present() || !p.Estimate.IsNull() {
		t.Error("explicit null should be present and null")
	}
	if p.Estimate.Ptr() != nil {
		t.Error("Ptr should be nil for an explicit null")
	}
}

func TestField_Ptr(t *testing.T) {
	f := Of(45)
	ptr := f.Ptr()
	if ptr == nil || *ptr != 45 {
		t.Fatalf("expected pointer to 45, got %v", ptr)
	}

	*ptr = 60
	if f.Value() != 45 {
		t.Error("Ptr must return a copy, not the internal value")
	}

	if (Field[int]{}).Ptr() != nil {
		t.Error("absent field should yield a nil pointer")
	}
	if Null[int]().Ptr() != nil {
		t.Error("null field should yield a nil pointer")
	}
}

func TestField_MarshalRoundTrip(t *testing.T) {
	p := payload{Title: Of("deep work"), Estimate: Null[int]()}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back payload
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.Title.Value() != "deep work" {
		t.Errorf("expected title %q, got %q", "deep work", back.Title.Value())
	}
	if !back.Estimate.IsNull() {
		t.Error("null estimate should survive the round trip")
	}
}
