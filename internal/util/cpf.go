package util

import "strings"

// Digits mantém apenas os dígitos da string.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// NormalizeCPF remove máscara e pontuação do CPF. Comparações de login são
// sempre feitas sobre o valor normalizado.
func NormalizeCPF(cpf string) string {
	return Digits(cpf)
}
