package usecase

import (
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
)

func qty(n int) *int {
	return &n
}

func TestReconcileMergesDuplicates(t *testing.T) {
	lines, err := Reconcile([]model.RawComponent{
		{ComponentID: "A", Quantity: qty(2)},
		{ComponentID: "B", Quantity: qty(1)},
		{ComponentID: "A", Quantity: qty(3)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ComponentID != "A" || lines[0].Quantity != 5 {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].ComponentID != "B" || lines[1].Quantity != 1 {
		t.Fatalf("unexpected second line %+v", lines[1])
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	first, err := Reconcile([]model.RawComponent{
		{ComponentID: "cpu", Quantity: qty(1), Name: "Ryzen"},
		{ID: "ram", Quantity: qty(4)},
		{ComponentID: "ssd"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := Reconcile(RawFromLines(first))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("length changed: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ComponentID != second[i].ComponentID || first[i].Quantity != second[i].Quantity {
			t.Fatalf("line %d changed: %+v != %+v", i, first[i], second[i])
		}
	}
}

func TestReconcileDefaultsAndFallbackID(t *testing.T) {
	price := dec("199.90")
	lines, err := Reconcile([]model.RawComponent{
		{ID: "gpu", Name: "RTX", Price: &price},
		{ComponentID: "gpu", Name: "ignored"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected single line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("expected default quantities to add up to 2, got %d", lines[0].Quantity)
	}
	if lines[0].Name != "RTX" || !lines[0].Price.Equal(price) {
		t.Fatalf("first snapshot must be kept, got %+v", lines[0])
	}
}

func TestReconcileReportsEveryBrokenEntry(t *testing.T) {
	_, err := Reconcile([]model.RawComponent{
		{ComponentID: "ok"},
		{Quantity: qty(1)},
		{ComponentID: "neg", Quantity: qty(-1)},
		{ComponentID: "zero", Quantity: qty(0)},
	})

	var verr *domainErrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := []domainErrors.FieldError{
		{Index: 1, Field: "componentId", Message: "componentId or _id is required"},
		{Index: 2, Field: "quantity", Message: "quantity must be positive"},
		{Index: 3, Field: "quantity", Message: "quantity must be positive"},
	}
	if len(verr.Fields) != len(want) {
		t.Fatalf("expected %d failures, got %+v", len(want), verr.Fields)
	}
	for i := range want {
		if verr.Fields[i] != want[i] {
			t.Fatalf("failure %d: got %+v, want %+v", i, verr.Fields[i], want[i])
		}
	}
}

func TestReconcileRejectsNegativePrice(t *testing.T) {
	_, err := Reconcile([]model.RawComponent{
		{ComponentID: "cpu"},
		{ComponentID: "ghost", Price: decPtr("-1500")},
		{ComponentID: "free", Price: decPtr("0")},
	})

	var verr *domainErrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := domainErrors.FieldError{Index: 1, Field: "price", Message: "price must not be negative"}
	if len(verr.Fields) != 1 || verr.Fields[0] != want {
		t.Fatalf("unexpected failures %+v", verr.Fields)
	}
}

func TestReconcileQuantityLimit(t *testing.T) {
	cases := []struct {
		name  string
		raw   []model.RawComponent
		fails bool
	}{
		{"single entry at limit", []model.RawComponent{{ComponentID: "cpu", Quantity: qty(MaxQuantity)}}, false},
		{"single entry over limit", []model.RawComponent{{ComponentID: "cpu", Quantity: qty(MaxQuantity + 1)}}, true},
		{"merge reaching limit", []model.RawComponent{
			{ComponentID: "cpu", Quantity: qty(MaxQuantity - 1)},
			{ComponentID: "cpu", Quantity: qty(1)},
		}, false},
		{"merge over limit", []model.RawComponent{
			{ComponentID: "cpu", Quantity: qty(MaxQuantity)},
			{ComponentID: "cpu", Quantity: qty(1)},
		}, true},
		{"huge entries", []model.RawComponent{
			{ComponentID: "cpu", Quantity: qty(1 << 62)},
			{ComponentID: "cpu", Quantity: qty(1 << 62)},
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines, err := Reconcile(tc.raw)
			if !tc.fails {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(lines) != 1 || lines[0].Quantity > MaxQuantity {
					t.Fatalf("unexpected lines %+v", lines)
				}
				return
			}
			var verr *domainErrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			for _, fe := range verr.Fields {
				if fe.Field != "quantity" {
					t.Fatalf("unexpected failure %+v", fe)
				}
			}
		})
	}
}

func TestReconcileEmptyInput(t *testing.T) {
	lines, err := Reconcile(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(lines))
	}
}
