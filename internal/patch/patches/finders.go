package patches

import "github.com/eykd/bundlepatch/internal/patch"

// chalkCallRE matches a chained chalk style call such as `X.bold.rgb(`.
// Group 1 is the chalk instance.
var chalkCallRE = patch.MustCompile(`\b([$\w]+)(?:\.(?:cyan|gray|green|red|yellow|ansi256|bgAnsi256|bgHex|bgRgb|hex|rgb|bold|dim|inverse|italic|strikethrough|underline)\b)+\(`)

// findChalkInstance returns the bundle's chalk instance: the receiver that
// most often starts a chalk style chain.
func findChalkInstance(doc string) (string, bool, error) {
	return chalkCallRE.MostFrequent(doc, 1)
}

// boxComponent locates Ink's Box component, newest bundle layout first.
var boxComponent = patch.Locator{
	{
		// X.displayName="Box"
		Shape:   "display-name",
		Pattern: patch.MustCompile(`\b([$\w]+)\.displayName\s*=\s*["']Box["']`),
		Capture: captureGroups(1),
	},
	{
		// function X({children:a,flexWrap:b="nowrap",flexDirection:c="row",...
		Shape:   "default-props",
		Pattern: patch.MustCompile(`\bfunction ([$\w]+)\(\{children:[$\w]+,flexWrap:[$\w]+="nowrap",flexDirection:[$\w]+="row"`),
		Capture: captureGroups(1),
	},
}

// findBoxComponent returns the name of Ink's Box component. A timed-out
// scan is returned as the error.
func findBoxComponent(doc string) (string, bool, error) {
	loc, attempts, ok := boxComponent.Locate(doc)
	if !ok {
		for _, a := range attempts {
			if a.Stage == patch.StageTimeout {
				return "", false, a.Err
			}
		}
		return "", false, nil
	}
	return loc.Ident(0), true, nil
}
