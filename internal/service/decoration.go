package service

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// decoratorApps are photo-editing applications whose output is treated as
// decorated. Names are matched case-sensitively against paths.
var decoratorApps = []string{"BeautyPlus", "Instagram", "aillis"}

// maxToolEditDistance tolerates small spelling variants in metadata, such
// as "Instagran" or "BeautyPlus2".
const maxToolEditDistance = 2

// IsDecorated reports whether ref names a known editing application.
func (s *classificationService) IsDecorated(ref string) bool {
	for _, app := range decoratorApps {
		if strings.Contains(ref, app) {
			return true
		}
	}
	return false
}

// matchesDecorator checks a metadata software string: exact substring first,
// then a fuzzy match of each token.
func matchesDecorator(tool string) bool {
	for _, app := range decoratorApps {
		if strings.Contains(tool, app) {
			return true
		}
	}
	tokens := strings.FieldsFunc(strings.ToLower(tool), func(r rune) bool {
		return r == ' ' || r == '/' || r == '(' || r == ')' || r == ';' || r == ','
	})
	for _, token := range tokens {
		for _, app := range decoratorApps {
			if levenshtein.Distance(token, strings.ToLower(app)) <= maxToolEditDistance {
				return true
			}
		}
	}
	return false
}
