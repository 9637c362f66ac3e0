package medication

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	CategoryAnticoagulant = "Antiplatelet/Anticoagulant"
	CategoryCardiac       = "Cardiac/Hypertension"
	CategoryHypoglycemic  = "Hypoglycemic"
	CategoryPsychiatric   = "Psychiatric"
	CategoryOther         = "Other Important"
	CategoryGI            = "Gastrointestinal"
	CategorySupplements   = "Vitamins/Supplements"
	CategoryTopical       = "Low Priority/Topical"

	unknownCategoryPriority = 9
)

// Rule assigns Category to any lowercased medication name Match accepts.
type Rule struct {
	Match    func(name string) bool
	Category string
}

type group struct {
	category string
	priority int
	keywords []string
}

// groups is ordered by priority. The topical group is only used for its
// priority and by the special and route rules.
var groups = []group{
	{CategoryAnticoagulant, 1, []string{
		"aspirin", "bayer", "ecotrin", "asa", "warfarin", "coumadin", "jantoven", "clopidogrel", "plavix",
		"rivaroxaban", "xarelto", "apixaban", "eliquis", "dabigatran", "pradaxa", "enoxaparin", "lovenox",
		"heparin", "hep-lock", "fondaparinux", "arixtra", "edoxaban", "savaysa", "prasugrel", "effient",
		"ticagrelor", "brilinta", "bivalirudin", "angiomax",
	}},
	{CategoryCardiac, 2, []string{
		"metoprolol", "lopressor", "toprol-xl", "toprol", "atenolol", "tenormin", "carvedilol", "coreg",
		"bisoprolol", "zebeta", "sandoz", "lisinopril", "prinivil", "zestril", "enalapril", "vasotec",
		"losartan", "cozaar", "valsartan", "diovan", "amlodipine", "norvasc", "nifedipine", "adalat",
		"procardia", "diltiazem", "cardizem", "tiazac", "hydrochlorothiazide", "microzide", "hctz",
		"furosemide", "lasix", "spironolactone", "aldactone", "digoxin", "lanoxin", "amiodarone",
		"cordarone", "pacerone", "atorvastatin", "lipitor", "simvastatin", "zocor", "rosuvastatin",
		"crestor", "pravastatin", "pravachol", "isosorbide", "imdur", "nitroglycerin", "nitrostat",
		"hydralazine", "apresoline",
	}},
	{CategoryHypoglycemic, 3, []string{
		"metformin", "glucophage", "fortamet", "insulin", "humalog", "novolog", "lantus", "levemir",
		"glipizide", "glucotrol", "glyburide", "diabeta", "micronase", "glimepiride", "amaryl",
		"gliclazide", "diamicron", "pioglitazone", "actos", "sitagliptin", "januvia", "saxagliptin",
		"onglyza", "liraglutide", "victoza", "saxenda", "exenatide", "byetta", "bydureon", "semaglutide",
		"ozempic", "wegovy", "empagliflozin", "jardiance", "canagliflozin", "invokana", "dapagliflozin",
		"farxiga", "repaglinide", "prandin", "acarbose", "precose",
	}},
	{CategoryPsychiatric, 4, []string{
		"sertraline", "zoloft", "fluoxetine", "prozac", "paroxetine", "paxil", "citalopram", "celexa",
		"escitalopram", "lexapro", "venlafaxine", "effexor", "duloxetine", "cymbalta", "bupropion",
		"wellbutrin", "zyban", "mirtazapine", "remeron", "trazodone", "desyrel", "lorazepam", "ativan",
		"alprazolam", "xanax", "clonazepam", "klonopin", "diazepam", "valium", "zolpidem", "ambien",
		"quetiapine", "seroquel", "risperidone", "risperdal", "olanzapine", "zyprexa", "aripiprazole",
		"abilify", "lithium", "lithobid", "valproic", "depakote", "lamotrigine", "lamictal", "gabapentin",
		"neurontin", "pregabalin", "lyrica",
	}},
	{CategoryOther, 5, []string{
		"levothyroxine", "synthroid", "levoxyl", "prednisone", "deltasone", "rayos", "prednisolone",
		"prelone", "orapred", "albuterol", "proair", "ventolin", "proventil", "omeprazole", "prilosec",
		"losec", "pantoprazole", "protonix", "ciprofloxacin", "cipro", "azithromycin", "zithromax",
		"z-pak", "amoxicillin", "amoxicilline", "amoxil", "clavulanate", "augmentin", "phenytoin",
		"dilantin", "levetiracetam", "keppra", "doxycycline", "vibramycin", "formoterol", "foradil",
		"mometasone", "nasonex", "glycopyrronium", "spiriva", "salbutamol", "naloxone", "narcan",
	}},
	{CategoryGI, 6, []string{
		"polyethylene-glycol-3350", "miralax", "docusate", "colace", "bisacodyl", "dulcolax", "senna",
		"senokot", "lactulose", "enulose", "psyllium", "metamucil",
	}},
	{CategorySupplements, 7, []string{
		"vitamin", "drisdol", "calcitriol", "cholecalciferol", "cyanocobalamin", "calcium", "tums",
		"caltrate", "iron", "feosol", "slow fe", "magnesium", "mag-ox", "folic", "folate",
		"multivitamin", "centrum", "one-a-day", "omega-3", "fish oil", "supplement", "b12", "cobalamin",
		"thiamine", "riboflavin", "niacin", "biotin", "ascorbic", "carbonate",
	}},
	{CategoryTopical, 8, []string{
		"eau-de-mer", "saline", "nasal rinse", "rince nasal", "topique", "gel nasal", "nasal spray",
		"eye drops", "gouttes", "ointment", "cream", "lotion", "shampoo",
	}},
}

// DefaultRules is the ordered rule set used by Categorize. The first
// matching rule wins.
var DefaultRules = buildRules()

func buildRules() []Rule {
	rules := []Rule{
		{Match: func(n string) bool {
			return strings.Contains(n, "polyethylene-glycol-3350") ||
				(strings.Contains(n, "polyethylene") && strings.Contains(n, "17"))
		}, Category: CategoryGI},
		{Match: containsAny("topique", "gel nasal", "rince nasal", "eau-de-mer", "nasal spray", "gouttes"), Category: CategoryTopical},
		{Match: func(n string) bool {
			return strings.Contains(n, "amoxicilline") && strings.Contains(n, "clavulanate")
		}, Category: CategoryOther},
	}
	for _, g := range groups {
		if g.category == CategoryTopical {
			continue
		}
		for _, kw := range g.keywords {
			rules = append(rules, Rule{Match: keywordMatcher(kw), Category: g.category})
		}
	}
	return append(rules, Rule{
		Match:    containsAny("topique", "nasal", "eye", "ointment", "cream", "gel"),
		Category: CategoryTopical,
	})
}

// keywordMatcher uses a word-boundary match for keywords of three characters
// or fewer so "asa" does not match inside "losartan".
func keywordMatcher(kw string) func(string) bool {
	if len(kw) <= 3 {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		return re.MatchString
	}
	return func(n string) bool { return strings.Contains(n, kw) }
}

func containsAny(subs ...string) func(string) bool {
	return func(n string) bool {
		for _, s := range subs {
			if strings.Contains(n, s) {
				return true
			}
		}
		return false
	}
}

// Categorize assigns a therapeutic category to a medication name using
// DefaultRules.
func Categorize(name string) string {
	return CategorizeWith(DefaultRules, name)
}

// CategorizeWith applies rules in order and falls back to "Other Important".
func CategorizeWith(rules []Rule, name string) string {
	n := strings.ToLower(name)
	for _, r := range rules {
		if r.Match(n) {
			return r.Category
		}
	}
	return CategoryOther
}

// CategoryPriority ranks a category for display, 1 highest. Unknown
// categories rank 9.
func CategoryPriority(category string) int {
	for _, g := range groups {
		if g.category == category {
			return g.priority
		}
	}
	return unknownCategoryPriority
}

// Categories lists the known categories in priority order.
func Categories() []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.category
	}
	return out
}

// SortByImportance orders medications by category priority, then by name.
// The input slice is not modified.
func SortByImportance(meds []Medication) []Medication {
	out := make([]Medication, len(meds))
	copy(out, meds)
	coll := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := CategoryPriority(out[i].Category), CategoryPriority(out[j].Category)
		if pi != pj {
			return pi < pj
		}
		return coll.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}
