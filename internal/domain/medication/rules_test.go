package medication

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Aspirin 81mg", CategoryAnticoagulant},
		{"ASA", CategoryAnticoagulant},
		{"Pasadena tablets", CategoryOther},
		{"Metoprolol 25mg", CategoryCardiac},
		{"Metformin", CategoryHypoglycemic},
		{"Sertraline", CategoryPsychiatric},
		{"Pantoprazole", CategoryOther},
		{"Docusate", CategoryGI},
		{"Polyethylene glycol 17g", CategoryGI},
		{"polyethylene-glycol-3350", CategoryGI},
		{"Vitamin D", CategorySupplements},
		{"B12", CategorySupplements},
		{"Eau-de-mer nasal spray", CategoryTopical},
		{"Hydrocortisone cream", CategoryTopical},
		{"Amoxicilline-clavulanate", CategoryOther},
		{"Unknownium", CategoryOther},
	}
	for _, tt := range tests {
		if got := Categorize(tt.name); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCategorizeWith_FirstMatchWins(t *testing.T) {
	rules := []Rule{
		{Match: func(n string) bool { return n == "x" }, Category: "First"},
		{Match: func(string) bool { return true }, Category: "Second"},
	}
	if got := CategorizeWith(rules, "X"); got != "First" {
		t.Errorf("expected First, got %q", got)
	}
	if got := CategorizeWith(nil, "anything"); got != CategoryOther {
		t.Errorf("expected default category, got %q", got)
	}
}

func TestCategoryPriority(t *testing.T) {
	if p := CategoryPriority(CategoryAnticoagulant); p != 1 {
		t.Errorf("expected 1, got %d", p)
	}
	if p := CategoryPriority(CategoryTopical); p != 8 {
		t.Errorf("expected 8, got %d", p)
	}
	if p := CategoryPriority("Made Up"); p != 9 {
		t.Errorf("expected 9 for unknown, got %d", p)
	}
}

func TestSortByImportance(t *testing.T) {
	in := []Medication{
		{Name: "Vitamin D", Category: CategorySupplements},
		{Name: "Warfarin", Category: CategoryAnticoagulant},
		{Name: "Atorvastatin", Category: CategoryCardiac},
		{Name: "Amlodipine", Category: CategoryCardiac},
		{Name: "Mystery", Category: "Unknown"},
	}
	got := SortByImportance(in)
	want := []string{"Warfarin", "Amlodipine", "Atorvastatin", "Vitamin D", "Mystery"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Name, name)
		}
	}
	if in[0].Name != "Vitamin D" {
		t.Error("input slice was reordered")
	}
}
