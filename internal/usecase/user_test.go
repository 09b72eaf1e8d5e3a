package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

func validUser() CreateUserInput {
	return CreateUserInput{
		Name:        "Ana Souza",
		Email:       "Ana@Example.com",
		PhoneNumber: "+55 11 98765-4321",
		Password:    "Senha123",
	}
}

func TestAccountService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()

	user, err := f.accounts.Create(ctx, validUser())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, "Senha123", user.PasswordHash)

	_, err = f.accounts.Create(ctx, validUser())
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestAccountService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()
	user, err := f.accounts.Create(ctx, validUser())
	require.NoError(t, err)
	oldHash := user.PasswordHash

	name := "Ana Maria"
	password := "NovaSenha9"
	updated, err := f.accounts.Update(ctx, user.ID, UpdateUserInput{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "ana@example.com", updated.Email)
	assert.NotEqual(t, oldHash, updated.PasswordHash)

	_, err = f.accounts.Update(ctx, 999, UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	bad := "123"
	_, err = f.accounts.Update(ctx, user.ID, UpdateUserInput{PhoneNumber: &bad})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"phone_number"}, verrs.Fields())
}

func TestAccountService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()
	user, err := f.accounts.Create(ctx, validUser())
	require.NoError(t, err)

	require.NoError(t, f.accounts.Delete(ctx, user.ID))
	assert.ErrorIs(t, f.accounts.Delete(ctx, user.ID), ErrNotFound)
}

func TestUserActions(t *testing.T) {
	ctx := context.Background()

	t.Run("create sucesso", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Create", ctx, validUser()).Return(&entity.User{ID: 1, Name: "Ana Souza"}, nil)

		res := NewUserActions(svc).CreateUserAction(ctx, validUser())
		assert.True(t, res.Success)
		assert.Equal(t, int64(1), res.User.ID)
		assert.Nil(t, res.Error)
	})

	t.Run("create com conta duplicada", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Create", ctx, validUser()).Return(nil, ErrDuplicateAccount)

		res := NewUserActions(svc).CreateUserAction(ctx, validUser())
		assert.False(t, res.Success)
		require.NotNil(t, res.Error)
		assert.Equal(t, CodeDuplicateAccount, res.Error.Code)
	})

	t.Run("update com validação", func(t *testing.T) {
		svc := new(MockUserService)
		in := UpdateUserInput{}
		svc.On("Update", ctx, int64(3), in).Return(nil, ValidationErrors{{Field: "email", Message: "is invalid"}})

		res := NewUserActions(svc).UpdateUserAction(ctx, 3, in)
		assert.False(t, res.Success)
		assert.Equal(t, CodeValidation, res.Error.Code)
		assert.Len(t, res.Error.Fields, 1)
	})

	t.Run("storage fora não vaza detalhe", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Create", ctx, validUser()).Return(nil, &TechnicalError{Code: CodeStorageUnavailable, Message: ErrStorageUnavailable.Message})

		res := NewUserActions(svc).CreateUserAction(ctx, validUser())
		assert.Equal(t, CodeStorageUnavailable, res.Error.Code)
		assert.Equal(t, ErrStorageUnavailable.Message, res.Error.Message)
	})
}

func TestAccountService_UpdateEmailTakenByOtherAccount(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()
	_, err := f.accounts.Create(ctx, validUser())
	require.NoError(t, err)

	other := validUser()
	other.Email = "bia@example.com"
	bia, err := f.accounts.Create(ctx, other)
	require.NoError(t, err)

	taken := " ANA@example.com "
	_, err = f.accounts.Update(ctx, bia.ID, UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, CodeDuplicateEmail, DescribeError(err).Code)

	stored, err := f.store.Users().FindByID(ctx, bia.ID)
	require.NoError(t, err)
	assert.Equal(t, "bia@example.com", stored.Email)
}
