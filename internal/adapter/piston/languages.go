package piston

import (
	"fmt"

	"gitlab.com/codequest-2025.net/internal/static/errs"
)

// language is the instant-run backend's identifier: name plus pinned version
type language struct {
	Name    string
	Version string
	File    string
}

// languageTable translates the numeric language IDs used everywhere else in
// the system into the backend's name+version pairs. An ID missing here is a
// configuration error, failed fast and never retried.
var languageTable = map[int]language{
	50: {Name: "c", Version: "10.2.0", File: "main.c"},
	54: {Name: "c++", Version: "10.2.0", File: "main.cpp"},
	60: {Name: "go", Version: "1.16.2", File: "main.go"},
	62: {Name: "java", Version: "15.0.2", File: "Main.java"},
	63: {Name: "javascript", Version: "18.15.0", File: "main.js"},
	68: {Name: "php", Version: "8.2.3", File: "main.php"},
	71: {Name: "python", Version: "3.10.0", File: "main.py"},
	72: {Name: "ruby", Version: "3.0.1", File: "main.rb"},
	73: {Name: "rust", Version: "1.68.2", File: "main.rs"},
	74: {Name: "typescript", Version: "5.0.3", File: "main.ts"},
}

// lookupLanguage resolves a numeric language ID or fails with UnsupportedLanguage
func lookupLanguage(languageID int) (language, error) {
	lang, ok := languageTable[languageID]
	if !ok {
		return language{}, fmt.Errorf("%w: %d", errs.UnsupportedLanguage, languageID)
	}
	return lang, nil
}

// SupportedLanguage reports whether the numeric ID has a mapping
func SupportedLanguage(languageID int) bool {
	_, ok := languageTable[languageID]
	return ok
}
