package resume

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore() *Store {
	store := NewStore()
	store.IDGenerator = sequentialIDs()
	return store
}

func strPtr(v string) *string { return &v }

func TestStoreDefaults(t *testing.T) {
	store := NewStore()
	data := store.Snapshot()
	if data.Template != TemplateCrimson || data.Theme != ThemeLight || data.Font != FontInter {
		t.Fatalf("unexpected defaults: %+v", data)
	}
	if data.HasContent() {
		t.Fatalf("expected empty resume")
	}
}

func TestStoreEducationLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	edu, err := store.AddEducation(ctx, Education{Institution: "MIT", Degree: "BSc"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if edu.ID != "id-1" {
		t.Fatalf("expected generated id, got %q", edu.ID)
	}

	updated, err := store.UpdateEducation(ctx, edu.ID, EducationPatch{Field: strPtr("Physics")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Field != "Physics" || updated.Institution != "MIT" {
		t.Fatalf("unexpected patch result: %+v", updated)
	}

	if _, err := store.UpdateEducation(ctx, "missing", EducationPatch{}); !IsKind(err, KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if err := store.RemoveEducation(ctx, "missing"); !IsKind(err, KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if err := store.RemoveEducation(ctx, edu.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := len(store.Snapshot().Education); got != 0 {
		t.Fatalf("expected no education, got %d", got)
	}
}

func TestStoreExperienceCurrentClearsEndDate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	exp, err := store.AddExperience(ctx, Experience{Company: "Acme", EndDate: "2024-01"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	current := true
	updated, err := store.UpdateExperience(ctx, exp.ID, ExperiencePatch{Current: &current})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.EndDate != "" || !updated.Current {
		t.Fatalf("expected current role without end date, got %+v", updated)
	}
}

func TestStoreSkills(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	skill, err := store.AddSkill(ctx, Skill{Name: "Go"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if skill.Level != LevelIntermediate || skill.Category != CategoryTechnical {
		t.Fatalf("expected form defaults, got %+v", skill)
	}
	if _, err := store.AddSkill(ctx, Skill{Name: "Go", Level: "Guru"}); !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := store.UpdateSkill(ctx, 3, Skill{Name: "Rust"}); !IsKind(err, KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if _, err := store.UpdateSkill(ctx, 0, Skill{Name: "Go", Level: LevelExpert}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := store.Snapshot().Skills[0].Level; got != LevelExpert {
		t.Fatalf("expected expert, got %s", got)
	}
	if err := store.RemoveSkill(ctx, -1); !IsKind(err, KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if err := store.RemoveSkill(ctx, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
}

func TestStoreAppearanceValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if err := store.SetTemplate(ctx, "gothic"); !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := store.SetFont(ctx, FontRoboto); err != nil {
		t.Fatalf("set font: %v", err)
	}
	if err := store.SetTheme(ctx, ThemeDark); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if err := store.SetTemplate(ctx, TemplateModern); err != nil {
		t.Fatalf("set template: %v", err)
	}
	data := store.Snapshot()
	if data.Font != FontRoboto || data.Theme != ThemeDark || data.Template != TemplateModern {
		t.Fatalf("unexpected appearance: %+v", data)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.Snapshot().Template != TemplateCrimson {
		t.Fatalf("expected defaults after reset")
	}
}

func TestStoreObserversReceiveCopiesInOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	var names []string
	var last Data
	cancel := store.Subscribe(ObserverFunc(func(_ context.Context, data Data) {
		names = append(names, data.PersonalInfo.FullName)
		last = data
	}))

	for _, name := range []string{"A", "B", "C"} {
		if _, err := store.UpdatePersonalInfo(ctx, PersonalInfoPatch{FullName: strPtr(name)}); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if fmt.Sprint(names) != "[A B C]" {
		t.Fatalf("unexpected notification order: %v", names)
	}

	last.PersonalInfo.FullName = "mutated"
	if store.Snapshot().PersonalInfo.FullName != "C" {
		t.Fatalf("observer copy leaked into store")
	}

	cancel()
	if _, err := store.UpdatePersonalInfo(ctx, PersonalInfoPatch{FullName: strPtr("D")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected no notification after cancel, got %v", names)
	}
}

func TestStoreFailedMutationDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	calls := 0
	store.Subscribe(ObserverFunc(func(context.Context, Data) { calls++ }))

	_ = store.RemoveExperience(ctx, "nope")
	if calls != 0 {
		t.Fatalf("expected no notification, got %d", calls)
	}
}

func TestStoreReplaceNormalizes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if err := store.Replace(ctx, Data{PersonalInfo: PersonalInfo{FullName: "Ada"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	data := store.Snapshot()
	if data.Template != TemplateCrimson || data.Skills == nil {
		t.Fatalf("expected normalized data, got %+v", data)
	}
	if err := store.Replace(ctx, Data{Font: "comic"}); !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
