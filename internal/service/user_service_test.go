package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
)

func userFixture(id string) domain.User {
	return domain.User{
		ID:       id,
		Email:    id + "@example.com",
		Role:     domain.RoleCustomer,
		IsActive: true,
	}
}

func TestListUsersPaginationMath(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, nil, nil)

	users := []domain.User{userFixture("a"), userFixture("b"), userFixture("c")}
	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ListFilters) bool {
		return f.Offset == 3 && f.Limit == 3
	})).Return(users, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(7), nil)

	page, err := svc.ListUsers(context.Background(), 2, 3, repository.ListFilters{})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Limit)
	assert.Equal(t, int64(7), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
}

func TestListUsersClampsPageAndLimit(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, nil, nil)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ListFilters) bool {
		return f.Offset == 0 && f.Limit == 10
	})).Return([]domain.User{}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

	page, err := svc.ListUsers(context.Background(), 0, -5, repository.ListFilters{})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestGetUserNotFound(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, nil, nil)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, pgx.ErrNoRows)

	_, err := svc.GetUser(context.Background(), "missing")
	status, _ := domainStatus(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateUserPatchesOnlyProvidedFields(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, nil, nil)

	existing := userFixture("user-1")
	existing.FirstName = "Alice"
	existing.LastName = "Smith"

	repo.On("GetByID", mock.Anything, "user-1").Return(&existing, nil)
	repo.On("UpdateProfile", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	newName := "Alicia"
	role := domain.RoleAdmin
	updated, err := svc.UpdateUser(context.Background(), "user-1", UpdateUserInput{
		FirstName: &newName,
		Role:      &role,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestUpdateUserRejectsInvalidRole(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, nil, nil)

	existing := userFixture("user-1")
	repo.On("GetByID", mock.Anything, "user-1").Return(&existing, nil)

	bogus := domain.Role("overlord")
	_, err := svc.UpdateUser(context.Background(), "user-1", UpdateUserInput{Role: &bogus})
	status, message := domainStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid role", message)
	repo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

// Self-service edits are limited to name and phone; role and verification
// flags pass through unchanged.
func TestUpdateOwnProfileTouchesOnlyProfileFields(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, nil, nil)

	existing := userFixture("user-1")
	existing.FirstName = "Alice"
	existing.Role = domain.RoleAdmin
	existing.IsEmailVerified = true

	repo.On("GetByID", mock.Anything, "user-1").Return(&existing, nil)
	repo.On("UpdateProfile", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	newName := "Alicia"
	phone := "+15551234"
	updated, err := svc.UpdateOwnProfile(context.Background(), "user-1", ProfileInput{
		FirstName: &newName,
		Phone:     &phone,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "+15551234", updated.Phone)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.True(t, updated.IsEmailVerified)
}

func TestDeleteUserNotFound(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, nil, nil)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, pgx.ErrNoRows)

	err := svc.DeleteUser(context.Background(), "missing")
	status, _ := domainStatus(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSetUserActiveDeactivationPublishesEvent(t *testing.T) {
	repo := new(mockUserRepository)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewUserService(repo, dispatcher, nil)

	var published []events.Event
	dispatcher.Subscribe(events.EventUserDeactivated, func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	deactivated := userFixture("user-1")
	deactivated.IsActive = false
	repo.On("SetActive", mock.Anything, "user-1", false).Return(nil)
	repo.On("GetByID", mock.Anything, "user-1").Return(&deactivated, nil)

	user, err := svc.SetUserActive(context.Background(), "user-1", "admin-9", false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.UserDeactivatedPayload)
	require.True(t, ok)
	assert.Equal(t, "admin-9", payload.ActorID)
}

func TestSetUserActiveReactivationIsSilent(t *testing.T) {
	repo := new(mockUserRepository)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewUserService(repo, dispatcher, nil)

	var published []events.Event
	dispatcher.Subscribe(events.EventUserDeactivated, func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	reactivated := userFixture("user-1")
	repo.On("SetActive", mock.Anything, "user-1", true).Return(nil)
	repo.On("GetByID", mock.Anything, "user-1").Return(&reactivated, nil)

	user, err := svc.SetUserActive(context.Background(), "user-1", "admin-9", true)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Empty(t, published)
}

func TestSetUserActiveNotFound(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, nil, nil)

	repo.On("SetActive", mock.Anything, "missing", false).Return(pgx.ErrNoRows)

	_, err := svc.SetUserActive(context.Background(), "missing", "admin-9", false)
	status, _ := domainStatus(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}
