package lesson

import (
	"regexp"
	"strings"
)

var (
	separatorPattern     = regexp.MustCompile(`[-_.]`)
	ordinalPrefixPattern = regexp.MustCompile(`^(\d{1,3} )+`)
)

// ChapterName normalizes the name of a lesson folder into the title of the
// chapter the lesson belongs to. Separators become spaces, ordinal prefixes
// such as "02." or "01-" are dropped, and only the first letter is
// capitalized, e.g. "02.getting_started" becomes "Getting started".
//
// Any leading number of up to three digits is taken as an ordinal, so
// "3-body-problem" becomes "Body problem". Longer numbers such as years are
// kept: "2020-recap" becomes "2020 recap".
//
// The normalization is lossy, and it's also used to name the chapters that
// get created, so remote chapters created by lessonsync always match.
func ChapterName(folder string) string {
	name := separatorPattern.ReplaceAllString(folder, " ")
	name = strings.Join(strings.Fields(name), " ")
	name = ordinalPrefixPattern.ReplaceAllString(name, "")
	return capitalize(name)
}
