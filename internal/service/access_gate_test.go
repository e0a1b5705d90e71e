package service

import (
	"context"
	"errors"
	"testing"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessGate_Authorize(t *testing.T) {
	owner := newOwner()
	manager := newManagerUser(owner.ID)
	gym := newGym(owner, manager.ID)
	stranger := newOwner()
	inactive := newManagerUser(owner.ID)
	inactive.IsActive = false
	gym.Managers = append(gym.Managers, inactive.ID)

	closed := newGym(owner)
	closed.IsActive = false
	missing := primitive.NewObjectID()

	gyms := new(MockGymRepo)
	gyms.On("GetByID", mock.Anything, gym.ID).Return(gym, nil)
	gyms.On("GetByID", mock.Anything, closed.ID).Return(closed, nil)
	gyms.On("GetByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	gate := NewAccessGate(gyms)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   *domain.User
		gymID   primitive.ObjectID
		wantErr error
	}{
		{"owner", owner, gym.ID, nil},
		{"assigned manager", manager, gym.ID, nil},
		{"stranger", stranger, gym.ID, ErrAccessDenied},
		{"deactivated manager", inactive, gym.ID, ErrAccessDenied},
		{"nil actor", nil, gym.ID, ErrAccessDenied},
		{"missing gym", owner, missing, ErrGymNotFound},
		{"soft-deleted gym", owner, closed.ID, ErrGymNotFound},
		{"zero id", owner, primitive.NilObjectID, ErrGymNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gate.Authorize(ctx, tt.actor, tt.gymID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, gym.ID, got.ID)
		})
	}
}

func TestAccessGate_AuthorizeOwner(t *testing.T) {
	owner := newOwner()
	manager := newManagerUser(owner.ID)
	gym := newGym(owner, manager.ID)

	gyms := new(MockGymRepo)
	gyms.On("GetByID", mock.Anything, gym.ID).Return(gym, nil)
	gate := NewAccessGate(gyms)

	_, err := gate.AuthorizeOwner(context.Background(), owner, gym.ID)
	assert.NoError(t, err)

	_, err = gate.AuthorizeOwner(context.Background(), manager, gym.ID)
	assert.ErrorIs(t, err, ErrOwnerOnly)

	_, err = gate.AuthorizeOwner(context.Background(), newOwner(), gym.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAccessGate_RepositoryFailure(t *testing.T) {
	gyms := new(MockGymRepo)
	gyms.On("GetByID", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := NewAccessGate(gyms).Authorize(context.Background(), newOwner(), primitive.NewObjectID())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrGymNotFound)
	assert.NotErrorIs(t, err, ErrAccessDenied)
}
