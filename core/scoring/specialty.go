package scoring

import "strings"

// specialtyKeywords maps symptom vocabulary found in free-text condition
// descriptions to the facility specialty that should handle them. Order is
// fixed to keep inferred specialty lists deterministic.
var specialtyKeywords = []struct {
	specialty string
	words     []string
}{
	{"cardiology", []string{"chest", "cardiac", "heart"}},
	{"neurology", []string{"stroke", "head", "seizure"}},
	{"trauma surgery", []string{"accident", "fracture", "trauma"}},
	{"pediatrics", []string{"child", "infant", "pediatric"}},
	{"obstetrics", []string{"labor", "pregnancy", "pregnant"}},
}

// InferSpecialties scans the condition text for known symptom keywords and
// returns the implied specialties, unioned with the explicitly required ones.
// Matching is a case-insensitive substring scan.
func InferSpecialties(conditionText string, explicit []string) []string {
	seen := make(map[string]bool, len(explicit))
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range explicit {
		add(s)
	}
	text := strings.ToLower(conditionText)
	if text == "" {
		return out
	}
	for _, kw := range specialtyKeywords {
		for _, w := range kw.words {
			if strings.Contains(text, w) {
				add(kw.specialty)
				break
			}
		}
	}
	return out
}
