package search

import "strings"

// synonymTable maps common Korean fashion terms to interchangeable
// alternatives. Order matters: earlier entries produce earlier
// expansions, and only the first few expansions are ever tried.
var synonymTable = []struct {
	term     string
	synonyms []string
}{
	{"코트", []string{"아우터", "자켓"}},
	{"자켓", []string{"재킷", "아우터"}},
	{"패딩", []string{"다운", "점퍼"}},
	{"티셔츠", []string{"티", "반팔"}},
	{"맨투맨", []string{"스웨트셔츠"}},
	{"후드", []string{"후드티", "후디"}},
	{"바지", []string{"팬츠", "슬랙스"}},
	{"청바지", []string{"데님", "진"}},
	{"신발", []string{"운동화", "스니커즈"}},
	{"운동화", []string{"스니커즈", "신발"}},
	{"가방", []string{"백", "백팩"}},
	{"니트", []string{"스웨터"}},
	{"셔츠", []string{"남방"}},
	{"원피스", []string{"드레스"}},
}

// genderPrefixes broaden a query when no term-level synonym applies
var genderPrefixes = []string{"남성", "여성"}

const maxExpansions = 3

// ExpandQuery builds alternative search queries for the last-resort
// search tier. The original query is never included; at most three
// expansions are returned, in deterministic order.
func ExpandQuery(query string) []string {
	var expansions []string
	seen := map[string]bool{query: true}

	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || seen[candidate] {
			return
		}
		seen[candidate] = true
		expansions = append(expansions, candidate)
	}

	for _, entry := range synonymTable {
		if !strings.Contains(query, entry.term) {
			continue
		}
		for _, syn := range entry.synonyms {
			add(strings.Replace(query, entry.term, syn, 1))
			if len(expansions) >= maxExpansions {
				return expansions
			}
		}
	}

	// No term matched: broaden with gender-qualified variants instead.
	if len(expansions) == 0 {
		for _, prefix := range genderPrefixes {
			if !strings.Contains(query, prefix) {
				add(prefix + " " + query)
			}
		}
	}

	if len(expansions) > maxExpansions {
		expansions = expansions[:maxExpansions]
	}
	return expansions
}
