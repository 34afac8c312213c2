package patches

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eykd/bundlepatch/internal/patch"
	"github.com/eykd/bundlepatch/internal/style"
)

// UserMessageParams styles the echo of a submitted user message. Colors
// accept "default", "none", "rgb(r,g,b)" or "#rrggbb"; Format uses "{}" for
// the message text.
type UserMessageParams struct {
	Format          string
	Foreground      string
	Background      string
	Bold            bool
	Italic          bool
	Underline       bool
	Strikethrough   bool
	Inverse         bool
	BorderStyle     string
	BorderColor     string
	PaddingX        int
	PaddingY        int
	FitBoxToContent bool
}

// Identifier positions captured by every user-message shape. The memoized
// shape also captures umOutput.
const (
	umReact = iota
	umText
	umMessage
	umChalk
	umBox
	umOutput
)

// UserMessageDisplay rebuilds the element tree that echoes a submitted user
// message: a Box with configurable border and padding around a Text whose
// content is the formatted message, optionally styled through chalk.
var UserMessageDisplay = &patch.Patch[UserMessageParams]{
	Name:    "user-message-display",
	Summary: "restyle how submitted user messages are displayed",
	Signatures: patch.Locator{
		{
			// O=R.createElement(T,{backgroundColor:"userMessageBackground"},X,R.createElement(T,{color:"text"},J)),
			// K[5]=J,K[6]=O;else O=K[6];return O
			// The cache bookkeeping after the element is left in place.
			Shape:   "memoized",
			Pattern: patch.MustCompile(`([$\w]+)=([$\w]+)\.createElement\(([$\w]+),\{backgroundColor:"userMessageBackground"\},([$\w]+),\2\.createElement\(\3,\{color:"text"\},([$\w]+)\)\)(,[$\w]+\[\d+\]=\5,[$\w]+\[\d+\]=\1;else \1=[$\w]+\[\d+\];return \1)`),
			Capture: func(doc string, m patch.Match) (patch.Location, bool, error) {
				loc, ok, err := captureUserMessage(doc, m, 2, 3, 5)
				out, tail := m.Sub(1), m.Sub(6)
				if err != nil || !ok || !tail.OK {
					return patch.Location{}, false, err
				}
				loc.End = tail.Start
				loc.Identifiers = append(loc.Identifiers, out.Text)
				return loc, true, nil
			},
		},
		{
			// return R.createElement(T,{backgroundColor:"userMessageBackground"},
			// R.createElement(T,{color:"subtle"},F.pointer," "),R.createElement(T,{color:"text"},V))
			Shape:   "pointer-icon",
			Pattern: patch.MustCompile(`return ([$\w]+)\.createElement\(([$\w]+),\{backgroundColor:"userMessageBackground"\},([$\w]+)\.createElement\([$\w]+,\{color:"subtle"\},([$\w]+)\.pointer," "\),[$\w]+\.createElement\([$\w]+,\{color:"text"\},([$\w]+)\)\)`),
			Capture: func(doc string, m patch.Match) (patch.Location, bool, error) {
				return captureUserMessage(doc, m, 1, 2, 5)
			},
		},
		{
			// return R.createElement(T,{backgroundColor:"userMessageBackground",color:"text"},"> ",Z+" ");
			Shape:   "inline-prompt",
			Pattern: patch.MustCompile(`return ([$\w]+)\.createElement\(([$\w]+),\{backgroundColor:"userMessageBackground",color:"text"\},"> ",([$\w]+)\+" "\);`),
			Capture: func(doc string, m patch.Match) (patch.Location, bool, error) {
				return captureUserMessage(doc, m, 1, 2, 3)
			},
		},
	},
	Synthesize: synthesizeUserMessage,
}

// captureUserMessage spans the whole match and captures the React namespace,
// Text component and message variable from the given groups, plus the chalk
// instance and Box component declared elsewhere in doc.
func captureUserMessage(doc string, m patch.Match, react, text, message int) (patch.Location, bool, error) {
	ids, ok := patch.Groups(m, react, text, message)
	if !ok {
		return patch.Location{}, false, nil
	}
	chalk, ok, err := findChalkInstance(doc)
	if err != nil || !ok {
		return patch.Location{}, false, err
	}
	box, ok, err := findBoxComponent(doc)
	if err != nil || !ok {
		return patch.Location{}, false, err
	}
	ids = append(ids, chalk, box)
	return patch.Location{Start: m.Start, End: m.End, Identifiers: ids}, true, nil
}

func synthesizeUserMessage(loc patch.Location, p UserMessageParams) (string, error) {
	if len(loc.Identifiers) < umBox+1 {
		return "", fmt.Errorf("user message element: %w", patch.ErrAmbiguousCapture)
	}
	id := loc.Ident

	fg, err := style.ParseColor(p.Foreground)
	if err != nil {
		return "", fmt.Errorf("foreground: %w", err)
	}
	bg, err := style.ParseColor(p.Background)
	if err != nil {
		return "", fmt.Errorf("background: %w", err)
	}
	border, err := style.ParseBorder(p.BorderStyle)
	if err != nil {
		return "", err
	}

	var textAttrs []string
	if fg.Kind == style.ColorDefault {
		textAttrs = append(textAttrs, `color:"text"`)
	}
	if bg.Kind == style.ColorDefault {
		textAttrs = append(textAttrs, `backgroundColor:"userMessageBackground"`)
	}

	var boxAttrs []string
	if border != style.BorderNone {
		boxAttrs = append(boxAttrs, "borderStyle:"+border.Literal())
		bc, err := style.ParseColor(p.BorderColor)
		if err != nil {
			return "", fmt.Errorf("border color: %w", err)
		}
		if bc.IsRGB() {
			boxAttrs = append(boxAttrs, `borderColor:"`+bc.CSS()+`"`)
		}
	}
	if p.PaddingX > 0 {
		boxAttrs = append(boxAttrs, "paddingX:"+strconv.Itoa(p.PaddingX))
	}
	if p.PaddingY > 0 {
		boxAttrs = append(boxAttrs, "paddingY:"+strconv.Itoa(p.PaddingY))
	}
	if p.FitBoxToContent {
		boxAttrs = append(boxAttrs, `alignSelf:"flex-start"`)
	}

	content := patch.StringConcat(p.Format, id(umMessage))
	if chain := chalkChain(id(umChalk), fg, bg, p); chain != "" {
		content = chain + "(" + content + ")"
	}

	react := id(umReact)
	element := react + ".createElement(" + id(umBox) + "," + object(boxAttrs) + "," +
		react + ".createElement(" + id(umText) + "," + object(textAttrs) + "," + content + "))"

	switch loc.Shape {
	case "memoized":
		out := id(umOutput)
		if out == "" {
			return "", fmt.Errorf("memoized output variable: %w", patch.ErrAmbiguousCapture)
		}
		return out + "=" + element, nil
	case "pointer-icon":
		return "return " + element, nil
	case "inline-prompt":
		return "return " + element + ";", nil
	}
	return "", fmt.Errorf("unknown user message shape %q", loc.Shape)
}

// chalkChain returns the chalk style chain for explicit colors and text
// styles, or "" when the theme's styling is kept unchanged.
func chalkChain(chalk string, fg, bg style.Color, p UserMessageParams) string {
	var b strings.Builder
	if fg.IsRGB() {
		b.WriteString(".rgb(" + fg.Args() + ")")
	}
	if bg.IsRGB() {
		b.WriteString(".bgRgb(" + bg.Args() + ")")
	}
	for _, s := range []struct {
		on   bool
		name string
	}{
		{p.Bold, "bold"},
		{p.Italic, "italic"},
		{p.Underline, "underline"},
		{p.Strikethrough, "strikethrough"},
		{p.Inverse, "inverse"},
	} {
		if s.on {
			b.WriteString("." + s.name)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return chalk + b.String()
}

func object(attrs []string) string {
	return "{" + strings.Join(attrs, ",") + "}"
}
