package util

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// ProtocolPrefix é o prefixo dos protocolos exibidos ao cidadão.
const ProtocolPrefix = "PREF-"

// NewID gera identificador interno (UUID v4).
func NewID() string {
	return uuid.NewString()
}

// NewProtocolID gera protocolo curto no formato PREF-#### (4 dígitos).
func NewProtocolID() string {
	return fmt.Sprintf("%s%04d", ProtocolPrefix, 1000+rand.Intn(9000))
}

// NewWideProtocolID gera protocolo com espaço numérico ampliado, usado quando
// o espaço curto esgota por colisões sucessivas.
func NewWideProtocolID() string {
	return fmt.Sprintf("%s%08d", ProtocolPrefix, rand.Intn(100_000_000))
}
