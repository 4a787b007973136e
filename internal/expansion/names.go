package expansion

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitName breaks an ad group name into its base and numeric suffix.
// "Shoes_2" yields ("Shoes", 2); a name without a numeric suffix yields
// the whole name and 0.
func SplitName(name string) (base string, suffix int) {
	idx := strings.LastIndex(name, "_")
	if idx < 0 {
		return name, 0
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil || n < 0 {
		return name, 0
	}
	return name[:idx], n
}

// NextSiblingName returns the name of the next overflow group in the
// family: the base with the suffix after the source's. An unsuffixed
// source begets "_1".
func NextSiblingName(source string) string {
	base, suffix := SplitName(source)
	return fmt.Sprintf("%s_%d", base, suffix+1)
}
