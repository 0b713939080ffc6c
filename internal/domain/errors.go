package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound            = errors.New("registro nao encontrado")
	ErrInvalidID           = errors.New("identificador invalido")
	ErrValidation          = errors.New("dados invalidos")
	ErrConflict            = errors.New("operacao conflita com o estado atual")
	ErrInvalidState        = errors.New("eleicao fora da fase exigida")
	ErrAlreadyVoted        = errors.New("eleitor ja votou nesta eleicao")
	ErrInvalidCandidate    = errors.New("candidato nao pertence a eleicao")
	ErrForbidden           = errors.New("acesso negado")
	ErrUnauthorized        = errors.New("nao autenticado")
	ErrInvalidCredentials  = errors.New("credenciais invalidas")
	ErrResultsNotAvailable = errors.New("resultados ainda nao disponiveis")
	ErrRateLimited         = errors.New("limite de tentativas atingido")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reúne todas as violações encontradas, não só a primeira.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StateError carrega as datas da eleição para que o chamador explique a recusa.
type StateError struct {
	Err       error
	Status    ElectionStatus
	StartDate time.Time
	EndDate   time.Time
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: status %s (inicio %s, fim %s)", e.Err, e.Status,
		e.StartDate.Format(time.RFC3339), e.EndDate.Format(time.RFC3339))
}

func (e *StateError) Unwrap() error { return e.Err }

type ResultsPendingError struct {
	EndDate time.Time
}

func (e *ResultsPendingError) Error() string {
	return fmt.Sprintf("%s: disponivel apos %s", ErrResultsNotAvailable, e.EndDate.Format(time.RFC3339))
}

func (e *ResultsPendingError) Unwrap() error { return ErrResultsNotAvailable }
