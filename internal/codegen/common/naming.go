package common

// LowerCamel lowercases the first rune of an identifier. It is used both for
// config template keys and for the unexported helper prefix derived from a
// world type name.
func LowerCamel(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] = r[0] + ('a' - 'A')
	}
	return string(r)
}
