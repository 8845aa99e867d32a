package core

import "strings"

// Well-formed numbers people type as placeholders. Their check digits do
// not always fail, so they are rejected explicitly.
var placeholderCNPJs = map[string]struct{}{
	"00000000000000": {}, "11111111111111": {}, "22222222222222": {},
	"33333333333333": {}, "44444444444444": {}, "55555555555555": {},
	"66666666666666": {}, "77777777777777": {}, "88888888888888": {},
	"99999999999999": {}, "01234567890123": {}, "12345678901234": {},
	"12312312312312": {}, "32132132132132": {}, "45645645645645": {},
	"65465465465465": {}, "12345123451234": {}, "54321543215432": {},
	"12121212121212": {}, "21212121212121": {}, "11223344556677": {},
	"22334455667788": {}, "99887766554433": {}, "12131415161718": {},
}

// NormalizeCNPJ strips everything that is not a digit.
func NormalizeCNPJ(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ValidateCNPJ checks length, the placeholder list and both mod-11 check
// digits. Punctuation is ignored.
func ValidateCNPJ(s string) bool {
	cnpj := NormalizeCNPJ(s)
	if len(cnpj) != 14 {
		return false
	}
	if _, ok := placeholderCNPJs[cnpj]; ok {
		return false
	}
	return checkDigit(cnpj[:12]) == cnpj[12] && checkDigit(cnpj[:13]) == cnpj[13]
}

func checkDigit(base string) byte {
	sum := 0
	weight := len(base) - 7
	for i := 0; i < len(base); i++ {
		sum += int(base[i]-'0') * weight
		weight--
		if weight < 2 {
			weight = 9
		}
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

// FormatCNPJ renders 14 digits as 00.000.000/0000-00. Anything else is
// returned as given.
func FormatCNPJ(s string) string {
	d := NormalizeCNPJ(s)
	if len(d) != 14 {
		return s
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}
