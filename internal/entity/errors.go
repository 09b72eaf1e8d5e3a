package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("registro não encontrado")
	ErrStorageUnavailable = errors.New("banco de dados indisponível")
)

// ConstraintKind é o tipo de restrição violada, informado pela camada de banco.
type ConstraintKind int

const (
	UniqueViolation ConstraintKind = iota + 1
	ForeignKeyViolation
)

func (k ConstraintKind) String() string {
	switch k {
	case UniqueViolation:
		return "UNIQUE_VIOLATION"
	case ForeignKeyViolation:
		return "FOREIGN_KEY_VIOLATION"
	default:
		return "UNKNOWN_CONSTRAINT"
	}
}

type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Constraint)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// IsConstraint reporta se err carrega uma violação do tipo kind.
func IsConstraint(err error, kind ConstraintKind) bool {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
