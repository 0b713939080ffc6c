// Pacote ids gera os identificadores opacos de eleições, candidatos, votos e usuários.
package ids

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator é seguro para uso concorrente e produz ULIDs monotônicos dentro do mesmo milissegundo.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator tira a entropia de crypto/rand; ids de voto e usuário saem na API.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy).String()
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

func DefaultGenerator() *Generator {
	defaultOnce.Do(func() {
		defaultGen = NewGenerator()
	})
	return defaultGen
}

func NewULID() string {
	return DefaultGenerator().New()
}

// Valid aceita apenas ULID de 26 caracteres; qualquer outra coisa é id malformado.
func Valid(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// Canonical devolve o id em maiúsculas, forma em que é gravado. O parser aceita
// minúsculas, então a busca precisa usar o id normalizado.
func Canonical(id string) (string, bool) {
	if !Valid(id) {
		return "", false
	}
	return strings.ToUpper(id), true
}
