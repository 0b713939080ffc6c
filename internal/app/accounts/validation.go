package accounts

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/marcelojr/urna-digital/internal/domain"
)

const minPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

type fieldErrors []domain.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, domain.FieldError{Field: field, Message: message})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: f}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateProfile cobre os campos editáveis pelo próprio eleitor.
func validateProfile(u domain.User, errs *fieldErrors) {
	if u.FullName == "" {
		errs.add("fullName", "nome completo obrigatorio")
	}
	if u.Email == "" {
		errs.add("email", "e-mail obrigatorio")
	} else if !emailPattern.MatchString(u.Email) {
		errs.add("email", "e-mail invalido")
	}
	if u.Age < domain.MinVoterAge || u.Age > domain.MaxVoterAge {
		errs.add("age", fmt.Sprintf("idade deve estar entre %d e %d", domain.MinVoterAge, domain.MaxVoterAge))
	}
	if u.Phone != "" && !phonePattern.MatchString(u.Phone) {
		errs.add("phone", "telefone invalido")
	}
}

func validatePassword(password string, errs *fieldErrors) {
	if len(password) < minPasswordLength {
		errs.add("password", fmt.Sprintf("senha deve ter ao menos %d caracteres", minPasswordLength))
	}
}
