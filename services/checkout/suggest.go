package checkout

import "strings"

var suggestedDomains = []string{
	"gmail.com",
	"hotmail.com",
	"icloud.com",
	"yahoo.com",
	"outlook.com",
}

// suggestEmailCompletions proposes full addresses once the shopper has typed
// an "@" but no "." yet. The typed domain fragment is prefix-matched
// case-insensitively against the supported domains.
func suggestEmailCompletions(value string) []string {
	at := strings.Index(value, "@")
	if at < 0 {
		return nil
	}

	localPart := value[:at]
	fragment := value[at+1:]
	if strings.Contains(fragment, ".") {
		return nil
	}

	suggestions := []string{}
	for _, domain := range suggestedDomains {
		if strings.HasPrefix(domain, strings.ToLower(fragment)) {
			suggestions = append(suggestions, localPart+"@"+domain)
		}
	}

	if len(suggestions) == 0 {
		return nil
	}
	return suggestions
}
