package voting

import (
	"fmt"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// TurnoutKey é a chave do contador de comparecimento de uma eleição.
func TurnoutKey(id domain.ElectionID) string {
	return fmt.Sprintf("eleicao:%s:total", id)
}
