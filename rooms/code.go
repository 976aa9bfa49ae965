package rooms

import "github.com/samber/lo"

const CodeLength = 6

// base-36, upper case
var codeCharset = append(append([]rune{}, lo.UpperCaseLettersCharset...), lo.NumbersCharset...)

// AllocateCode returns a random room code. Codes are not checked against
// existing rooms.
func AllocateCode() string {
	return lo.RandomString(CodeLength, codeCharset)
}
