package normalize

import "strings"

type cuisineKeywords struct {
	cuisine  string
	keywords []string
}

// cuisineTable is scanned in order; the first cuisine with a keyword found
// in any category wins.
var cuisineTable = []cuisineKeywords{
	{"Italian", []string{"italian"}},
	{"Mexican", []string{"mexican", "tex-mex"}},
	{"Chinese", []string{"chinese", "szechuan", "cantonese"}},
	{"Japanese", []string{"japanese"}},
	{"Indian", []string{"indian"}},
	{"Thai", []string{"thai"}},
	{"French", []string{"french"}},
	{"Greek", []string{"greek"}},
	{"Spanish", []string{"spanish"}},
	{"Korean", []string{"korean"}},
	{"Vietnamese", []string{"vietnamese"}},
	{"Middle Eastern", []string{"middle eastern", "middle-eastern", "lebanese", "turkish", "persian"}},
	{"Moroccan", []string{"moroccan"}},
	{"Caribbean", []string{"caribbean", "jamaican"}},
	{"Mediterranean", []string{"mediterranean"}},
	{"British", []string{"british", "english"}},
	{"Irish", []string{"irish"}},
	{"American", []string{"american", "southern", "cajun", "creole"}},
}

// DetectCuisine matches categories against the cuisine keyword table,
// case-insensitively by substring. Returns "" when nothing matches.
func DetectCuisine(categories []string) string {
	lowered := make([]string, len(categories))
	for i, c := range categories {
		lowered[i] = strings.ToLower(c)
	}

	for _, entry := range cuisineTable {
		for _, keyword := range entry.keywords {
			for _, category := range lowered {
				if strings.Contains(category, keyword) {
					return entry.cuisine
				}
			}
		}
	}
	return ""
}
