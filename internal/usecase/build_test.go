package usecase_test

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	testhelpers "github.com/polkiloo/rigshop/internal/test"
	"github.com/polkiloo/rigshop/internal/usecase"
)

func newBuildUseCase(builds ...model.Build) (*usecase.BuildUseCase, *testhelpers.BuildRepositoryStub) {
	repo := testhelpers.NewBuildRepositoryStub(builds...)
	return usecase.NewBuildUseCase(repo, seedCatalog()), repo
}

func buildInput() usecase.BuildInput {
	return usecase.BuildInput{
		Name: " Gaming rig ",
		Components: []model.RawComponent{
			{ComponentID: "cpu", Quantity: intPtr(1), Price: decPtr("1")},
			{ID: "ram", Quantity: intPtr(1)},
			{ComponentID: "ram"},
			{ComponentID: "fan", Name: "Noctua", Price: decPtr("25"), Quantity: intPtr(2)},
		},
	}
}

func TestBuildUseCaseCreate(t *testing.T) {
	uc, repo := newBuildUseCase()

	build, err := uc.Create(context.Background(), customer, buildInput())
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if build.Name != "Gaming rig" || build.UserID != "u1" {
		t.Fatalf("unexpected build %+v", build)
	}
	if len(build.Components) != 3 {
		t.Fatalf("expected duplicates merged into 3 lines, got %d", len(build.Components))
	}
	if !build.Components[0].Price.Equal(dec("300")) {
		t.Fatalf("catalog price must win, got %s", build.Components[0].Price)
	}
	if build.Components[1].Quantity != 2 || build.Components[1].Name != "32GB DDR5" {
		t.Fatalf("unexpected merged ram line %+v", build.Components[1])
	}
	// 300 + 2*45.50 + 2*25
	if !build.TotalPrice.Equal(dec("441")) {
		t.Fatalf("unexpected total %s", build.TotalPrice)
	}
	if repo.Get(build.ID) == nil {
		t.Fatal("expected build to be stored")
	}
}

func TestBuildUseCaseCreateRejects(t *testing.T) {
	uc, _ := newBuildUseCase()
	ctx := context.Background()

	if _, err := uc.Create(ctx, guest, buildInput()); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for guest, got %v", err)
	}

	cases := []struct {
		name  string
		in    usecase.BuildInput
		field string
	}{
		{"missing name", usecase.BuildInput{Components: buildInput().Components}, "name"},
		{"no components", usecase.BuildInput{Name: "x"}, "components"},
		{"zero quantity", usecase.BuildInput{Name: "x", Components: []model.RawComponent{{ComponentID: "cpu", Quantity: intPtr(0)}}}, "components.quantity"},
		{"unknown unpriced", usecase.BuildInput{Name: "x", Components: []model.RawComponent{{ComponentID: "gpu"}}}, "components.price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, customer, tc.in)
			var verr *domainErrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			for _, f := range verr.Fields {
				if f.Field == tc.field {
					return
				}
			}
			t.Fatalf("expected field %s, got %+v", tc.field, verr.Fields)
		})
	}
}

func TestBuildUseCaseVisibility(t *testing.T) {
	uc, _ := newBuildUseCase(
		model.Build{ID: "private", UserID: "u1", Name: "mine"},
		model.Build{ID: "public", UserID: "u1", Name: "shared", Published: true},
	)
	ctx := context.Background()

	if _, err := uc.Get(ctx, stranger, "private"); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	for _, actor := range []usecase.Actor{customer, admin} {
		if _, err := uc.Get(ctx, actor, "private"); err != nil {
			t.Fatalf("expected %v to see private build: %v", actor, err)
		}
	}
	if _, err := uc.Get(ctx, guest, "public"); err != nil {
		t.Fatalf("expected guest to see published build: %v", err)
	}
	if _, err := uc.Get(ctx, guest, "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	published, err := uc.ListPublished(ctx)
	if err != nil || len(published) != 1 || published[0].ID != "public" {
		t.Fatalf("unexpected published list %v %v", published, err)
	}
	mine, err := uc.ListMine(ctx, customer)
	if err != nil || len(mine) != 2 {
		t.Fatalf("unexpected own list %v %v", mine, err)
	}
	if _, err := uc.ListMine(ctx, guest); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for guest, got %v", err)
	}
}

func TestBuildUseCaseUpdateAndPublish(t *testing.T) {
	uc, repo := newBuildUseCase(model.Build{ID: "b1", UserID: "u1", Name: "old"})
	ctx := context.Background()

	if _, err := uc.Update(ctx, stranger, "b1", buildInput()); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	updated, err := uc.Update(ctx, customer, "b1", buildInput())
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if updated.Name != "Gaming rig" || len(repo.Get("b1").Components) != 3 {
		t.Fatalf("update not applied: %+v", repo.Get("b1"))
	}

	published, err := uc.SetPublished(ctx, customer, "b1", true)
	if err != nil || !published.Published || !repo.Get("b1").Published {
		t.Fatalf("expected build published, got %v %v", published, err)
	}
}

func TestBuildUseCaseOrderedBuildIsLocked(t *testing.T) {
	uc, repo := newBuildUseCase(model.Build{ID: "b1", UserID: "u1", Name: "old", OrderID: "o1"})
	ctx := context.Background()

	if _, err := uc.Update(ctx, customer, "b1", buildInput()); !errors.Is(err, domainErrors.ErrBuildLocked) {
		t.Fatalf("expected locked on update, got %v", err)
	}
	if err := uc.Delete(ctx, customer, "b1"); !errors.Is(err, domainErrors.ErrBuildLocked) {
		t.Fatalf("expected locked on delete, got %v", err)
	}
	if repo.Get("b1") == nil || repo.Get("b1").Name != "old" {
		t.Fatal("locked build must be untouched")
	}
}

func TestBuildUseCaseDelete(t *testing.T) {
	uc, repo := newBuildUseCase(model.Build{ID: "b1", UserID: "u1"})
	ctx := context.Background()

	if err := uc.Delete(ctx, stranger, "b1"); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := uc.Delete(ctx, admin, "b1"); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if repo.Get("b1") != nil {
		t.Fatal("expected build removed")
	}
}
