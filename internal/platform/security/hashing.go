package security

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher gera e confere hashes bcrypt das senhas dos eleitores.
type Hasher struct {
	Cost int
}

// NewHasher limita o custo ao intervalo aceito pelo bcrypt.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare devolve nil quando a senha confere com o hash gravado.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
