package units

// Prefix is an SI (or binary) magnitude prefix applicable to a base unit symbol.
type Prefix struct {
	Symbol string
	Factor float64
}

// siPrefixes lists SI decimal prefixes; "da" comes before "d" so that
// expansion tries the two-letter prefix first.
var siPrefixes = []Prefix{
	{"Y", 1e24}, {"Z", 1e21}, {"E", 1e18}, {"P", 1e15}, {"T", 1e12},
	{"G", 1e9}, {"M", 1e6}, {"k", 1e3}, {"h", 1e2}, {"da", 1e1},
	{"d", 1e-1}, {"c", 1e-2}, {"m", 1e-3}, {"u", 1e-6}, {"µ", 1e-6},
	{"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15}, {"a", 1e-18}, {"z", 1e-21}, {"y", 1e-24},
}

// binaryPrefixes lists the IEC binary prefixes used for information units
// (bytes/bits), e.g. "Ki" = 1024.
var binaryPrefixes = []Prefix{
	{"Ki", 1 << 10}, {"Mi", 1 << 20}, {"Gi", 1 << 30}, {"Ti", 1 << 40},
	{"Pi", 1 << 50}, {"Ei", 1 << 60},
}

// PrefixesFor returns the prefix table applicable to the given unit category.
func PrefixesFor(category string) []Prefix {
	if category == "information" {
		return append(append([]Prefix{}, binaryPrefixes...), siPrefixes...)
	}
	return siPrefixes
}
