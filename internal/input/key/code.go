package key

import (
	"strconv"
	"strings"
)

// Code is a DOM virtual key code as reported by KeyboardEvent.keyCode.
// Only codes in [0, NumCodes) are tracked by the input aggregator.
type Code int

// NumCodes is the size of the key state table.
const NumCodes = 256

// DOM virtual key codes.
const (
	CodeBackspace Code = 8
	CodeTab       Code = 9
	CodeEnter     Code = 13
	CodeShift     Code = 16
	CodeControl   Code = 17
	CodeAlt       Code = 18
	CodePause     Code = 19
	CodeCapsLock  Code = 20
	CodeEscape    Code = 27
	CodeSpace     Code = 32
	CodePageUp    Code = 33
	CodePageDown  Code = 34
	CodeEnd       Code = 35
	CodeHome      Code = 36
	CodeLeft      Code = 37
	CodeUp        Code = 38
	CodeRight     Code = 39
	CodeDown      Code = 40
	CodeInsert    Code = 45
	CodeDelete    Code = 46

	Code0 Code = 48
	Code1 Code = 49
	Code2 Code = 50
	Code3 Code = 51
	Code4 Code = 52
	Code5 Code = 53
	Code6 Code = 54
	Code7 Code = 55
	Code8 Code = 56
	Code9 Code = 57

	CodeSemicolon Code = 59
	CodeEquals    Code = 61

	CodeA Code = 65
	CodeB Code = 66
	CodeC Code = 67
	CodeD Code = 68
	CodeE Code = 69
	CodeF Code = 70
	CodeG Code = 71
	CodeH Code = 72
	CodeI Code = 73
	CodeJ Code = 74
	CodeK Code = 75
	CodeL Code = 76
	CodeM Code = 77
	CodeN Code = 78
	CodeO Code = 79
	CodeP Code = 80
	CodeQ Code = 81
	CodeR Code = 82
	CodeS Code = 83
	CodeT Code = 84
	CodeU Code = 85
	CodeV Code = 86
	CodeW Code = 87
	CodeX Code = 88
	CodeY Code = 89
	CodeZ Code = 90

	CodeNumpad0  Code = 96
	CodeNumpad1  Code = 97
	CodeNumpad2  Code = 98
	CodeNumpad3  Code = 99
	CodeNumpad4  Code = 100
	CodeNumpad5  Code = 101
	CodeNumpad6  Code = 102
	CodeNumpad7  Code = 103
	CodeNumpad8  Code = 104
	CodeNumpad9  Code = 105
	CodeMultiply Code = 106
	CodeAdd      Code = 107
	CodeSubtract Code = 109
	CodeDecimal  Code = 110
	CodeDivide   Code = 111

	CodeF1  Code = 112
	CodeF2  Code = 113
	CodeF3  Code = 114
	CodeF4  Code = 115
	CodeF5  Code = 116
	CodeF6  Code = 117
	CodeF7  Code = 118
	CodeF8  Code = 119
	CodeF9  Code = 120
	CodeF10 Code = 121
	CodeF11 Code = 122
	CodeF12 Code = 123
	CodeF13 Code = 124
	CodeF14 Code = 125
	CodeF15 Code = 126
	CodeF16 Code = 127
	CodeF17 Code = 128
	CodeF18 Code = 129
	CodeF19 Code = 130
	CodeF20 Code = 131
	CodeF21 Code = 132
	CodeF22 Code = 133
	CodeF23 Code = 134
	CodeF24 Code = 135

	CodeNumLock      Code = 144
	CodeScrollLock   Code = 145
	CodeHyphenMinus  Code = 173
	CodeComma        Code = 188
	CodePeriod       Code = 190
	CodeSlash        Code = 191
	CodeBackQuote    Code = 192
	CodeOpenBracket  Code = 219
	CodeBackSlash    Code = 220
	CodeCloseBracket Code = 221
	CodeQuote        Code = 222
	CodeMeta         Code = 224
)

// Valid reports whether c fits in the key state table.
func (c Code) Valid() bool {
	return c >= 0 && c < NumCodes
}

// String returns the input name of the code, or "Key <n>" for codes
// without a name.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Key " + strconv.Itoa(int(c))
}

// Named is a key exposed as a named input.
type Named struct {
	Code Code
	Name string
}

// named lists the keys exposed as inputs, in input index order.
var named = []Named{
	{Code1, "1"}, {Code2, "2"}, {Code3, "3"}, {Code4, "4"}, {Code5, "5"},
	{Code6, "6"}, {Code7, "7"}, {Code8, "8"}, {Code9, "9"}, {Code0, "0"},
	{CodeA, "A"}, {CodeB, "B"}, {CodeC, "C"}, {CodeD, "D"}, {CodeE, "E"},
	{CodeF, "F"}, {CodeG, "G"}, {CodeH, "H"}, {CodeI, "I"}, {CodeJ, "J"},
	{CodeK, "K"}, {CodeL, "L"}, {CodeM, "M"}, {CodeN, "N"}, {CodeO, "O"},
	{CodeP, "P"}, {CodeQ, "Q"}, {CodeR, "R"}, {CodeS, "S"}, {CodeT, "T"},
	{CodeU, "U"}, {CodeV, "V"}, {CodeW, "W"}, {CodeX, "X"}, {CodeY, "Y"},
	{CodeZ, "Z"},
	{CodeF1, "F1"}, {CodeF2, "F2"}, {CodeF3, "F3"}, {CodeF4, "F4"},
	{CodeF5, "F5"}, {CodeF6, "F6"}, {CodeF7, "F7"}, {CodeF8, "F8"},
	{CodeF9, "F9"}, {CodeF10, "F10"}, {CodeF11, "F11"}, {CodeF12, "F12"},
	{CodeF13, "F13"}, {CodeF14, "F14"}, {CodeF15, "F15"}, {CodeF16, "F16"},
	{CodeF17, "F17"}, {CodeF18, "F18"}, {CodeF19, "F19"}, {CodeF20, "F20"},
	{CodeF21, "F21"}, {CodeF22, "F22"}, {CodeF23, "F23"}, {CodeF24, "F24"},
	{CodeSpace, "Space"},
	{CodeTab, "Tab"},
	{CodeDivide, "Keypad /"},
	{CodeMultiply, "Keypad *"},
	{CodeSubtract, "Keypad -"},
	{CodeAdd, "Keypad +"},
	{CodeNumpad1, "Keypad 1"}, {CodeNumpad2, "Keypad 2"}, {CodeNumpad3, "Keypad 3"},
	{CodeNumpad4, "Keypad 4"}, {CodeNumpad5, "Keypad 5"}, {CodeNumpad6, "Keypad 6"},
	{CodeNumpad7, "Keypad 7"}, {CodeNumpad8, "Keypad 8"}, {CodeNumpad9, "Keypad 9"},
	{CodeNumpad0, "Keypad 0"},
	{CodeHome, "Home"},
	{CodeRight, "Right Arrow"},
	{CodeLeft, "Left Arrow"},
	{CodeDown, "Down Arrow"},
	{CodeUp, "Up Arrow"},
	{CodeSemicolon, ";"},
	{CodeComma, ","},
	{CodePeriod, "."},
	{CodeSlash, "/"},
	{CodeEscape, "Escape"},
	{CodeQuote, "'"},
	{CodeBackQuote, "Tilde"},
	{CodeBackSlash, "\\"},
	{CodeMeta, "Meta"},
	{CodeControl, "Left Control"},
	{CodeShift, "Left Shift"},
	{CodeAlt, "Left Alt"},
	{CodeCapsLock, "Caps Lock"},
}

// Extra names for codes that are tracked but not exposed as inputs.
var extraNames = map[Code]string{
	CodeBackspace:    "Backspace",
	CodeEnter:        "Enter",
	CodePause:        "Pause",
	CodePageUp:       "Page Up",
	CodePageDown:     "Page Down",
	CodeEnd:          "End",
	CodeInsert:       "Insert",
	CodeDelete:       "Delete",
	CodeEquals:       "=",
	CodeDecimal:      "Keypad .",
	CodeNumLock:      "Num Lock",
	CodeScrollLock:   "Scroll Lock",
	CodeHyphenMinus:  "-",
	CodeOpenBracket:  "[",
	CodeCloseBracket: "]",
}

var (
	codeNames map[Code]string
	nameCodes map[string]Code
)

func init() {
	codeNames = make(map[Code]string, len(named)+len(extraNames))
	nameCodes = make(map[string]Code, len(named)+len(extraNames))
	for _, n := range named {
		codeNames[n.Code] = n.Name
		nameCodes[strings.ToLower(n.Name)] = n.Code
	}
	for c, name := range extraNames {
		codeNames[c] = name
		nameCodes[strings.ToLower(name)] = c
	}
}

// NamedKeys returns the keys exposed as inputs, in input index order.
// The returned slice is a copy.
func NamedKeys() []Named {
	out := make([]Named, len(named))
	copy(out, named)
	return out
}

// Parse converts a key name to its code. Matching is case-insensitive.
// Returns the code and true if the name is known, or 0 and false otherwise.
func Parse(name string) (Code, bool) {
	c, ok := nameCodes[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}
