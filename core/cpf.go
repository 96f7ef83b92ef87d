package core

const cpfLen = 11

// IsValidCPF checks the two CPF check digits. Non-digit characters are ignored.
func IsValidCPF(cpf string) bool {
	digits := OnlyDigits(cpf)
	if len(digits) != cpfLen {
		return false
	}
	d1 := cpfCheckDigit(digits[:9], 10)
	d2 := cpfCheckDigit(digits[:10], 11)
	return int(digits[9]-'0') == d1 && int(digits[10]-'0') == d2
}

// cpfCheckDigit computes a weighted mod-11 check digit; a remainder of 10 becomes 0.
func cpfCheckDigit(digits string, factor int) int {
	var sum int
	for _, d := range digits {
		sum += int(d-'0') * factor
		factor--
	}
	rem := (sum * 10) % 11
	if rem == 10 {
		return 0
	}
	return rem
}
