package medication

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

//go:embed formulary.csv
var embeddedFormulary []byte

// Entry is one generic/brand/strength combination from the formulary.
type Entry struct {
	ID          string `json:"id"`
	GenericName string `json:"genericName"`
	BrandName   string `json:"brandName"`
	Strength    string `json:"strength"`
	DosageForm  string `json:"dosageForm"`
	Route       string `json:"route"`
}

var dosageForms = map[string]string{
	"Tab":  "Tablet",
	"Cap":  "Capsule",
	"ECT":  "Enteric Coated Tablet",
	"SRC":  "Sustained Release Capsule",
	"SRT":  "Sustained Release Tablet",
	"ERT":  "Extended Release Tablet",
	"CDC":  "Controlled Delivery Capsule",
	"CDR":  "Controlled Delivery Release",
	"Liq":  "Liquid",
	"Sus":  "Suspension",
	"Syr":  "Syrup",
	"Dps":  "Drops",
	"Pws":  "Powder",
	"Gran": "Granules",
	"ODT":  "Orally Disintegrating Tablet",
	"Kit":  "Kit",
	"Evt":  "Effervescent Tablet",
	"ECC":  "Enteric Coated Capsule",
	"Aem":  "Aerosol",
	"Slt":  "Sublingual Tablet",
	"Crm":  "Cream",
	"Oin":  "Ointment",
	"Inh":  "Inhaler",
}

// commonDosages backs CommonDosages for medications missing from the
// formulary. Keys are upper case.
var commonDosages = map[string][]string{
	"METFORMIN":     {"500 mg", "850 mg", "1000 mg"},
	"JANUVIA":       {"25 mg", "50 mg", "100 mg"},
	"JARDIANCE":     {"10 mg", "25 mg"},
	"OZEMPIC":       {"0.25 mg", "0.5 mg", "1 mg"},
	"TRULICITY":     {"0.75 mg", "1.5 mg", "3 mg"},
	"XARELTO":       {"10 mg", "15 mg", "20 mg"},
	"ELIQUIS":       {"2.5 mg", "5 mg"},
	"COUMADIN":      {"1 mg", "2 mg", "5 mg"},
	"WARFARIN":      {"1 mg", "2 mg", "5 mg"},
	"LIPITOR":       {"10 mg", "20 mg", "40 mg"},
	"CRESTOR":       {"5 mg", "10 mg", "20 mg"},
	"ZOCOR":         {"5 mg", "10 mg", "20 mg"},
	"ATORVASTATIN":  {"10 mg", "20 mg", "40 mg"},
	"ROSUVASTATIN":  {"5 mg", "10 mg", "20 mg"},
	"NORVASC":       {"2.5 mg", "5 mg", "10 mg"},
	"AMLODIPINE":    {"2.5 mg", "5 mg", "10 mg"},
	"LISINOPRIL":    {"5 mg", "10 mg", "20 mg"},
	"RAMIPRIL":      {"1.25 mg", "2.5 mg", "5 mg"},
	"LOSARTAN":      {"25 mg", "50 mg", "100 mg"},
	"TELMISARTAN":   {"20 mg", "40 mg", "80 mg"},
	"LASIX":         {"20 mg", "40 mg", "80 mg"},
	"FUROSEMIDE":    {"20 mg", "40 mg", "80 mg"},
	"TYLENOL":       {"325 mg", "500 mg", "650 mg"},
	"ACETAMINOPHEN": {"325 mg", "500 mg", "650 mg"},
	"ADVIL":         {"200 mg", "400 mg"},
	"IBUPROFEN":     {"200 mg", "400 mg", "600 mg"},
	"NAPROXEN":      {"220 mg", "275 mg", "550 mg"},
	"CELEBREX":      {"100 mg", "200 mg"},
	"TRAMADOL":      {"50 mg", "100 mg"},
	"SERTRALINE":    {"25 mg", "50 mg", "100 mg"},
	"VENLAFAXINE":   {"37.5 mg", "75 mg", "150 mg"},
	"PANTOPRAZOLE":  {"20 mg", "40 mg"},
	"OMEPRAZOLE":    {"10 mg", "20 mg", "40 mg"},
	"AMOXICILLIN":   {"250 mg", "500 mg", "875 mg"},
	"AZITHROMYCIN":  {"250 mg", "500 mg"},
	"CIPROFLOXACIN": {"250 mg", "500 mg", "750 mg"},
	"SALBUTAMOL":    {"100 mcg", "200 mcg"},
	"SYMBICORT":     {"80/4.5 mcg", "160/4.5 mcg"},
	"LEVOTHYROXINE": {"25 mcg", "50 mcg", "75 mcg", "100 mcg"},
	"SYNTHROID":     {"25 mcg", "50 mcg", "75 mcg", "100 mcg"},
	"METOPROLOL":    {"25 mg", "50 mg", "100 mg"},
	"QUETIAPINE":    {"25 mg", "100 mg", "200 mg"},
	"LORAZEPAM":     {"0.5 mg", "1 mg", "2 mg"},
	"ZOPICLONE":     {"3.75 mg", "7.5 mg"},
	"TRAZODONE":     {"50 mg", "100 mg", "150 mg"},
	"ALENDRONATE":   {"35 mg", "70 mg"},
}

const maxDosageSuggestions = 3

var (
	posologyPattern = regexp.MustCompile(`^(\w+)\s+(.+)$`)
	idUnsafe        = regexp.MustCompile(`[^a-z0-9]`)
	nonNumeric      = regexp.MustCompile(`[^\d.]`)
)

// Formulary is an immutable, searchable list of formulary entries.
type Formulary struct {
	entries []Entry
}

// ParseFormulary reads a formulary CSV with the columns generic name, brand
// names (comma separated within the field) and up to three oral posologies
// such as "Tab 500mg". The first row is a header.
func ParseFormulary(r io.Reader) (*Formulary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return &Formulary{}, nil
		}
		return nil, fmt.Errorf("read formulary header: %w", err)
	}

	var entries []Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read formulary: %w", err)
		}
		if len(rec) < 3 {
			continue
		}
		generic := strings.TrimSpace(rec[0])
		brands := strings.TrimSpace(rec[1])
		if generic == "" || brands == "" {
			continue
		}
		for _, brand := range strings.Split(brands, ",") {
			brand = strings.TrimSpace(brand)
			for i, pos := range rec[2:min(len(rec), 5)] {
				form, strength, ok := parsePosology(pos)
				if !ok {
					continue
				}
				entries = append(entries, Entry{
					ID:          fmt.Sprintf("%s_%s_%d", slug(generic), slug(brand), i),
					GenericName: generic,
					BrandName:   brand,
					Strength:    strength,
					DosageForm:  expandDosageForm(form),
					Route:       "Oral",
				})
			}
		}
	}
	return &Formulary{entries: entries}, nil
}

// EmbeddedFormulary returns the formulary bundled with the binary.
func EmbeddedFormulary() *Formulary {
	f, err := ParseFormulary(bytes.NewReader(embeddedFormulary))
	if err != nil {
		panic(fmt.Sprintf("embedded formulary: %v", err))
	}
	return f
}

func parsePosology(s string) (form, strength string, ok bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, "(SA)", ""))
	if cleaned == "" {
		return "", "", false
	}
	m := posologyPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

func expandDosageForm(abbrev string) string {
	if f, ok := dosageForms[abbrev]; ok {
		return f
	}
	return abbrev
}

func slug(s string) string {
	return idUnsafe.ReplaceAllString(strings.ToLower(s), "_")
}

func (f *Formulary) Len() int { return len(f.entries) }

func (f *Formulary) matching(query string) []Entry {
	q := strings.ToLower(query)
	var out []Entry
	for _, e := range f.entries {
		if strings.Contains(strings.ToLower(e.GenericName), q) || strings.Contains(strings.ToLower(e.BrandName), q) {
			out = append(out, e)
		}
	}
	return out
}

// Search returns at most limit medications whose generic or brand name
// contains query, one per generic name, each carrying its most frequent
// brand. Queries shorter than two characters return nothing.
func (f *Formulary) Search(query string, limit int) []Entry {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 || limit <= 0 {
		return []Entry{}
	}
	matches := f.matching(query)

	type tally struct {
		first  Entry
		brands []string
		counts map[string]int
	}
	var order []string
	byGeneric := make(map[string]*tally)
	for _, m := range matches {
		t, ok := byGeneric[m.GenericName]
		if !ok {
			t = &tally{first: m, counts: make(map[string]int)}
			byGeneric[m.GenericName] = t
			order = append(order, m.GenericName)
		}
		if t.counts[m.BrandName] == 0 {
			t.brands = append(t.brands, m.BrandName)
		}
		t.counts[m.BrandName]++
	}

	out := make([]Entry, 0, min(limit, len(order)))
	for _, generic := range order {
		if len(out) == limit {
			break
		}
		t := byGeneric[generic]
		best := t.brands[0]
		for _, b := range t.brands[1:] {
			if t.counts[b] > t.counts[best] {
				best = b
			}
		}
		out = append(out, Entry{
			ID:          slug(generic),
			GenericName: generic,
			BrandName:   best,
			DosageForm:  t.first.DosageForm,
			Route:       t.first.Route,
		})
	}
	return out
}

// CommonDosages returns up to three distinct strengths for a generic or
// brand name, lowest first, falling back to a built-in table when the
// formulary has no match.
func (f *Formulary) CommonDosages(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return []string{}
	}

	seen := make(map[string]bool)
	var strengths []string
	for _, e := range f.matching(name) {
		if e.Strength == "" || seen[e.Strength] {
			continue
		}
		seen[e.Strength] = true
		strengths = append(strengths, e.Strength)
	}
	if len(strengths) == 0 {
		strengths = append(strengths, commonDosages[strings.ToUpper(name)]...)
	}
	sort.SliceStable(strengths, func(i, j int) bool {
		return strengthValue(strengths[i]) < strengthValue(strengths[j])
	})
	if len(strengths) > maxDosageSuggestions {
		strengths = strengths[:maxDosageSuggestions]
	}
	if strengths == nil {
		return []string{}
	}
	return strengths
}

func strengthValue(s string) float64 {
	v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(s, ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// Catalog holds the active formulary and can swap it for a freshly loaded
// one at runtime.
type Catalog struct {
	mu      sync.RWMutex
	current *Formulary
	path    string
	logger  zerolog.Logger
}

// NewCatalog loads the formulary at path, or the embedded one when path is
// empty. A file that cannot be read falls back to the embedded formulary.
func NewCatalog(path string, logger zerolog.Logger) *Catalog {
	c := &Catalog{path: path, logger: logger, current: EmbeddedFormulary()}
	if path != "" {
		if _, err := c.Reload(); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("formulary file unavailable, using embedded formulary")
		}
	}
	return c
}

// Formulary returns the active formulary.
func (c *Catalog) Formulary() *Formulary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Reload re-reads the formulary file and returns the number of entries
// loaded. On error the active formulary is left unchanged.
func (c *Catalog) Reload() (int, error) {
	if c.path == "" {
		f := EmbeddedFormulary()
		c.swap(f)
		return f.Len(), nil
	}

	file, err := os.Open(c.path)
	if err != nil {
		return 0, fmt.Errorf("open formulary: %w", err)
	}
	defer file.Close()

	f, err := ParseFormulary(file)
	if err != nil {
		return 0, err
	}
	c.swap(f)
	c.logger.Info().Int("entries", f.Len()).Str("path", c.path).Msg("formulary loaded")
	return f.Len(), nil
}

func (c *Catalog) swap(f *Formulary) {
	c.mu.Lock()
	c.current = f
	c.mu.Unlock()
}
