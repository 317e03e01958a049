package rank

import (
	"strings"

	"signalsource-engine/internal/domain"
)

// ClassifyRepo picks a signal type from repo name/description. Rules are
// priority-ordered; the first match wins.
func ClassifyRepo(name, description string) domain.SignalType {
	switch {
	case containsAny(description, "startup", "business", "saas"):
		return domain.TypeProduct
	case containsAny(description, "mvp", "prototype"):
		return domain.TypeProduct
	case containsAny(name, "api", "backend", "service"):
		return domain.TypeTechnical
	default:
		return domain.TypeTechnical
	}
}

// ClassifyPost picks a signal type from the post body.
func ClassifyPost(text string) domain.SignalType {
	switch {
	case containsAny(text, "funding", "raised"):
		return domain.TypeFunding
	case containsAny(text, "launch", "mvp"):
		return domain.TypeProduct
	case containsAny(text, "hiring", "engineer"):
		return domain.TypeHiring
	default:
		return domain.TypeRecognition
	}
}

func containsAny(text string, needles ...string) bool {
	t := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(t, n) {
			return true
		}
	}
	return false
}
