package partner

import (
	"strconv"
	"strings"

	"github.com/pozinox/backend/internal/domain/shared"
)

// ErrInvalidRUT is returned when a Chilean tax id fails format or check digit validation
var ErrInvalidRUT = shared.NewDomainError("INVALID_RUT", "Invalid RUT")

// NormalizeRUT strips dots and spaces, upper-cases the check digit and
// validates the modulo 11 check digit. The result has the form "12345678-5".
func NormalizeRUT(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(".", "", " ", "").Replace(s)
	if !strings.Contains(s, "-") && len(s) > 1 {
		s = s[:len(s)-1] + "-" + s[len(s)-1:]
	}

	body, dv, ok := strings.Cut(s, "-")
	if !ok || len(body) < 7 || len(body) > 8 || len(dv) != 1 {
		return "", ErrInvalidRUT
	}
	if _, err := strconv.Atoi(body); err != nil {
		return "", ErrInvalidRUT
	}
	if rutCheckDigit(body) != dv {
		return "", ErrInvalidRUT
	}
	return body + "-" + dv, nil
}

func rutCheckDigit(body string) string {
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(r)
	}
}
