package voting

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
)

const minCandidates = 2

// Formatos aceitos para datas; o primeiro é o canônico das respostas.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ElectionInput aceita campos ausentes: na criação viram erro, na edição mantêm o valor gravado.
type ElectionInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	StartDate   *string          `json:"startDate"`
	EndDate     *string          `json:"endDate"`
	Candidates  []CandidateInput `json:"candidates"`
}

type CandidateInput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
	Bio   string `json:"bio"`
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

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

// mergeElection aplica o input sobre base e devolve todas as violações encontradas.
func (s *Service) mergeElection(in ElectionInput, base domain.Election) (domain.Election, error) {
	var errs fieldErrors

	if in.Title != nil {
		base.Title = strings.TrimSpace(*in.Title)
	}
	if base.Title == "" {
		errs.add("title", "titulo obrigatorio")
	}

	if in.Description != nil {
		base.Description = strings.TrimSpace(*in.Description)
	}
	if base.Description == "" {
		errs.add("description", "descricao obrigatoria")
	}

	datesOK := true
	if in.StartDate != nil {
		t, ok := parseDate(*in.StartDate)
		if !ok {
			errs.add("startDate", "data de inicio invalida")
			datesOK = false
		}
		base.StartDate = t
	}
	if base.StartDate.IsZero() && datesOK {
		errs.add("startDate", "data de inicio obrigatoria")
		datesOK = false
	}

	endOK := true
	if in.EndDate != nil {
		t, ok := parseDate(*in.EndDate)
		if !ok {
			errs.add("endDate", "data de fim invalida")
			endOK = false
		}
		base.EndDate = t
	}
	if base.EndDate.IsZero() && endOK {
		errs.add("endDate", "data de fim obrigatoria")
		endOK = false
	}

	if datesOK && endOK && !base.EndDate.After(base.StartDate) {
		errs.add("endDate", "data de fim deve ser posterior a data de inicio")
	}

	if in.Candidates != nil {
		base.Candidates = s.buildCandidates(in.Candidates, &errs)
	}
	if len(base.Candidates) < minCandidates {
		errs.add("candidates", fmt.Sprintf("minimo de %d candidatos", minCandidates))
	}

	if err := errs.err(); err != nil {
		return domain.Election{}, err
	}
	return base, nil
}

// buildCandidates preserva ids reenviados e gera ids para os novos.
func (s *Service) buildCandidates(in []CandidateInput, errs *fieldErrors) []domain.Candidate {
	seen := make(map[string]bool, len(in))
	out := make([]domain.Candidate, len(in))

	for i, c := range in {
		prefix := fmt.Sprintf("candidates[%d]", i)
		cand := domain.Candidate{
			Name:  strings.TrimSpace(c.Name),
			Party: strings.TrimSpace(c.Party),
			Bio:   strings.TrimSpace(c.Bio),
		}
		if cand.Name == "" {
			errs.add(prefix+".name", "nome obrigatorio")
		}
		if cand.Party == "" {
			errs.add(prefix+".party", "partido obrigatorio")
		}
		if cand.Bio == "" {
			errs.add(prefix+".bio", "biografia obrigatoria")
		}

		id := strings.TrimSpace(c.ID)
		if canonical, ok := ids.Canonical(id); ok {
			id = canonical
		}
		switch {
		case id == "":
			id = s.ids.New()
		case !ids.Valid(id):
			errs.add(prefix+".id", "identificador invalido")
		case seen[id]:
			errs.add(prefix+".id", "identificador repetido")
		}
		seen[id] = true
		cand.ID = domain.CandidateID(id)
		out[i] = cand
	}

	return out
}
