package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/webshim/internal/input/key"
)

var specialKeys = map[tcell.Key]key.Code{
	tcell.KeyEnter:      key.CodeEnter,
	tcell.KeyTab:        key.CodeTab,
	tcell.KeyBacktab:    key.CodeTab,
	tcell.KeyBackspace:  key.CodeBackspace,
	tcell.KeyBackspace2: key.CodeBackspace,
	tcell.KeyEscape:     key.CodeEscape,
	tcell.KeyUp:         key.CodeUp,
	tcell.KeyDown:       key.CodeDown,
	tcell.KeyLeft:       key.CodeLeft,
	tcell.KeyRight:      key.CodeRight,
	tcell.KeyHome:       key.CodeHome,
	tcell.KeyEnd:        key.CodeEnd,
	tcell.KeyPgUp:       key.CodePageUp,
	tcell.KeyPgDn:       key.CodePageDown,
	tcell.KeyInsert:     key.CodeInsert,
	tcell.KeyDelete:     key.CodeDelete,
	tcell.KeyF1:         key.CodeF1,
	tcell.KeyF2:         key.CodeF2,
	tcell.KeyF3:         key.CodeF3,
	tcell.KeyF4:         key.CodeF4,
	tcell.KeyF5:         key.CodeF5,
	tcell.KeyF6:         key.CodeF6,
	tcell.KeyF7:         key.CodeF7,
	tcell.KeyF8:         key.CodeF8,
	tcell.KeyF9:         key.CodeF9,
	tcell.KeyF10:        key.CodeF10,
	tcell.KeyF11:        key.CodeF11,
	tcell.KeyF12:        key.CodeF12,
}

// Symbols on a US layout, by unshifted and shifted character.
var runeKeys = map[rune]struct {
	code    key.Code
	shifted bool
}{
	' ': {key.CodeSpace, false},
	';': {key.CodeSemicolon, false}, ':': {key.CodeSemicolon, true},
	'=': {key.CodeEquals, false}, '+': {key.CodeEquals, true},
	',': {key.CodeComma, false}, '<': {key.CodeComma, true},
	'-': {key.CodeHyphenMinus, false}, '_': {key.CodeHyphenMinus, true},
	'.': {key.CodePeriod, false}, '>': {key.CodePeriod, true},
	'/': {key.CodeSlash, false}, '?': {key.CodeSlash, true},
	'`': {key.CodeBackQuote, false}, '~': {key.CodeBackQuote, true},
	'[': {key.CodeOpenBracket, false}, '{': {key.CodeOpenBracket, true},
	'\\': {key.CodeBackSlash, false}, '|': {key.CodeBackSlash, true},
	']': {key.CodeCloseBracket, false}, '}': {key.CodeCloseBracket, true},
	'\'': {key.CodeQuote, false}, '"': {key.CodeQuote, true},
	'!': {key.Code1, true}, '@': {key.Code2, true}, '#': {key.Code3, true},
	'$': {key.Code4, true}, '%': {key.Code5, true}, '^': {key.Code6, true},
	'&': {key.Code7, true}, '*': {key.Code8, true}, '(': {key.Code9, true},
	')': {key.Code0, true},
}

// KeyCode maps a tcell key event to a DOM key code. mods holds the
// modifiers the key itself implies, such as Shift for an upper-case letter.
func KeyCode(e *tcell.EventKey) (code key.Code, mods tcell.ModMask, ok bool) {
	k := e.Key()
	if c, found := specialKeys[k]; found {
		if k == tcell.KeyBacktab {
			mods = tcell.ModShift
		}
		return c, mods, true
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return key.CodeA + key.Code(k-tcell.KeyCtrlA), tcell.ModCtrl, true
	}
	if k != tcell.KeyRune {
		return 0, 0, false
	}

	r := e.Rune()
	switch {
	case r >= 'a' && r <= 'z':
		return key.CodeA + key.Code(r-'a'), 0, true
	case r >= 'A' && r <= 'Z':
		return key.CodeA + key.Code(r-'A'), tcell.ModShift, true
	case r >= '0' && r <= '9':
		return key.Code0 + key.Code(r-'0'), 0, true
	}
	if rk, found := runeKeys[r]; found {
		if rk.shifted {
			mods = tcell.ModShift
		}
		return rk.code, mods, true
	}
	return 0, 0, false
}
