package positions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rmdelbarrio/adet/internal/domain/model"
	pgrepo "github.com/rmdelbarrio/adet/internal/repo/postgres"
)

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(newFakePositionStore())
	ctx := context.Background()

	cases := []CreateInput{
		{Code: "", Name: "Engineer", UserID: 1},
		{Code: "ENG-1", Name: "  ", UserID: 1},
		{Code: "ENG-1", Name: "Engineer", UserID: 0},
	}
	for i, in := range cases {
		if _, err := svc.Create(ctx, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("case #%d: want ErrValidation, got %v", i, err)
		}
	}
}

func TestCreateAndLookup(t *testing.T) {
	store := newFakePositionStore()
	svc := NewService(store)
	ctx := context.Background()

	salary := 75000.0
	dept := "Engineering"
	created, err := svc.Create(ctx, CreateInput{
		Code:       "ENG-1",
		Name:       "Engineer",
		MinSalary:  &salary,
		Department: &dept,
		UserID:     1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Code != "ENG-1" || byID.Name != "Engineer" {
		t.Fatalf("unexpected position: %+v", byID)
	}

	byCode, err := svc.GetByCode(ctx, "ENG-1")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if byCode.ID != created.ID {
		t.Fatalf("code lookup returned wrong position: %d != %d", byCode.ID, created.ID)
	}

	if _, err := svc.Create(ctx, CreateInput{Code: "ENG-1", Name: "Other", UserID: 2}); !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("duplicate code: want ErrCodeTaken, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	store := newFakePositionStore()
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Code: "ENG-1", Name: "Engineer", UserID: 1}); err != nil {
		t.Fatalf("create #1: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Code: "ENG-2", Name: "Senior Engineer", UserID: 2}); err != nil {
		t.Fatalf("create #2: %v", err)
	}

	mine, err := svc.ListByUser(ctx, 1)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 1 || mine[0].Code != "ENG-1" {
		t.Fatalf("unexpected user positions: %+v", mine)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unexpected total positions: %d", len(all))
	}
}

func TestPartialUpdate(t *testing.T) {
	store := newFakePositionStore()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Code: "ENG-1", Name: "Engineer", UserID: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Staff Engineer"
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Staff Engineer" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
	if updated.Code != "ENG-1" {
		t.Fatalf("code must survive partial update: %q", updated.Code)
	}

	empty := "  "
	if _, err := svc.Update(ctx, created.ID, UpdateInput{Code: &empty}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank code: want ErrValidation, got %v", err)
	}
	if _, err := svc.Update(ctx, 999, UpdateInput{Name: &newName}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing position: want ErrNotFound, got %v", err)
	}
}

func TestDeletePosition(t *testing.T) {
	store := newFakePositionStore()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Code: "ENG-1", Name: "Engineer", UserID: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeated delete: want ErrNotFound, got %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted position lookup: want ErrNotFound, got %v", err)
	}
}

type fakePositionStore struct {
	nextID    int64
	positions map[int64]model.Position
}

func newFakePositionStore() *fakePositionStore {
	return &fakePositionStore{nextID: 1, positions: make(map[int64]model.Position)}
}

func (f *fakePositionStore) Create(_ context.Context, code, name string, minSalary *float64, department *string, userID int64) (model.Position, error) {
	for _, p := range f.positions {
		if p.Code == code {
			return model.Position{}, pgrepo.ErrPositionCodeTaken
		}
	}
	p := model.Position{
		ID:         f.nextID,
		Code:       code,
		Name:       name,
		MinSalary:  minSalary,
		Department: department,
		UserID:     userID,
		CreatedAt:  time.Now().UTC(),
	}
	f.nextID++
	f.positions[p.ID] = p
	return p, nil
}

func (f *fakePositionStore) GetByID(_ context.Context, id int64) (model.Position, error) {
	p, ok := f.positions[id]
	if !ok {
		return model.Position{}, pgrepo.ErrPositionNotFound
	}
	return p, nil
}

func (f *fakePositionStore) GetByCode(_ context.Context, code string) (model.Position, error) {
	for _, p := range f.positions {
		if p.Code == code {
			return p, nil
		}
	}
	return model.Position{}, pgrepo.ErrPositionNotFound
}

func (f *fakePositionStore) List(_ context.Context) ([]model.Position, error) {
	out := make([]model.Position, 0, len(f.positions))
	for _, p := range f.positions {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePositionStore) ListByUser(_ context.Context, userID int64) ([]model.Position, error) {
	var out []model.Position
	for _, p := range f.positions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePositionStore) Update(_ context.Context, id int64, upd pgrepo.PositionUpdate) (model.Position, error) {
	p, ok := f.positions[id]
	if !ok {
		return model.Position{}, pgrepo.ErrPositionNotFound
	}
	if upd.Code != nil {
		for otherID, other := range f.positions {
			if otherID != id && other.Code == *upd.Code {
				return model.Position{}, pgrepo.ErrPositionCodeTaken
			}
		}
		p.Code = *upd.Code
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.MinSalary != nil {
		p.MinSalary = upd.MinSalary
	}
	if upd.Department != nil {
		p.Department = upd.Department
	}
	f.positions[id] = p
	return p, nil
}

func (f *fakePositionStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.positions[id]; !ok {
		return pgrepo.ErrPositionNotFound
	}
	delete(f.positions, id)
	return nil
}
