package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/ligue-funnel/internal/entity"
	"github.com/xavierca1/ligue-funnel/internal/infra/logger"
)

// AccountService é o UserService de produção: grava no UserRepository com senha em bcrypt.
type AccountService struct {
	Repo       entity.UserRepositoryInterface
	BcryptCost int
	Logger     *zap.Logger

	now func() time.Time
}

func NewAccountService(repo entity.UserRepositoryInterface, bcryptCost int, log *zap.Logger) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		Repo:       repo,
		BcryptCost: bcryptCost,
		Logger:     log,
		now:        time.Now,
	}
}

func (s *AccountService) Create(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	input.normalize()
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, errs
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := entity.NewUser(input.Name, input.Email, input.PhoneNumber, hash)
	if err != nil {
		return nil, ValidationErrors{{Field: "user", Message: err.Error()}}
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		if entity.IsConstraint(err, entity.UniqueViolation) {
			return nil, ErrDuplicateAccount
		}
		return nil, storageFailure(ctx, s.Logger, "user.create", err)
	}

	logger.Ctx(ctx, s.Logger).Info("conta criada", zap.Int64("user_id", user.ID))
	return user, nil
}

// Update aplica só os campos enviados.
func (s *AccountService) Update(ctx context.Context, id int64, input UpdateUserInput) (*entity.User, error) {
	input.normalize()
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageFailure(ctx, s.Logger, "user.find_by_id", err)
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	emailChanged := false
	if input.Email != nil {
		email := entity.NormalizeEmail(*input.Email)
		emailChanged = email != user.Email
		user.Email = email
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}
	if input.Password != nil {
		hash, err := s.hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, user); err != nil {
		switch {
		case entity.IsConstraint(err, entity.UniqueViolation) && emailChanged:
			return nil, ErrDuplicateEmail
		case entity.IsConstraint(err, entity.UniqueViolation):
			return nil, ErrDuplicateAccount
		case errors.Is(err, entity.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, storageFailure(ctx, s.Logger, "user.update", err)
	}

	return user, nil
}

func (s *AccountService) Delete(ctx context.Context, id int64) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storageFailure(ctx, s.Logger, "user.delete", err)
	}
	return nil
}

func (s *AccountService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		// só acontece com senha > 72 bytes, que a validação já barra
		return "", ValidationErrors{{Field: "password", Message: "is invalid"}}
	}
	return string(b), nil
}

// UserActions expõe o UserService no formato de resultado usado pelo site
// (Success + ErrorDetail), sem erros Go atravessando a borda.
type UserActions struct {
	Service UserService
}

func NewUserActions(service UserService) *UserActions {
	return &UserActions{Service: service}
}

func (a *UserActions) CreateUserAction(ctx context.Context, data CreateUserInput) CreateUserResult {
	user, err := a.Service.Create(ctx, data)
	if err != nil {
		return CreateUserResult{Error: DescribeError(err)}
	}
	return CreateUserResult{Success: true, User: user}
}

func (a *UserActions) UpdateUserAction(ctx context.Context, id int64, data UpdateUserInput) UpdateUserResult {
	user, err := a.Service.Update(ctx, id, data)
	if err != nil {
		return UpdateUserResult{Error: DescribeError(err)}
	}
	return UpdateUserResult{Success: true, User: user}
}
