package usecase

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/chatterbox-im/chatterbox/internal/models"
	"github.com/chatterbox-im/chatterbox/internal/repo/mongodb"
)

type userUsecase struct {
	userRepo    mongodb.UserRepository
	messageRepo mongodb.MessageRepository
}

func NewUserUsecase(
	userRepo mongodb.UserRepository,
	messageRepo mongodb.MessageRepository,
) UserUsecase {
	return &userUsecase{
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

// ListSidebarUsers returns everyone except the caller, each with the newest
// message of that conversation and the caller's unread count. No online
// filter: the client overlays presence from the realtime channel.
func (uc *userUsecase) ListSidebarUsers(ctx context.Context, callerID string) ([]*models.SidebarEntry, error) {
	users, err := uc.userRepo.ListExcept(ctx, callerID)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.SidebarEntry, len(users))
	group, ctx := errgroup.WithContext(ctx)
	for i, user := range users {
		i, user := i, user
		entries[i] = &models.SidebarEntry{User: *user}
		peerID := user.ID.Hex()

		group.Go(func() error {
			last, err := uc.messageRepo.LastBetween(ctx, callerID, peerID)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				return err
			}
			entries[i].LastMessage = last
			return nil
		})
		group.Go(func() error {
			unread, err := uc.messageRepo.CountUnread(ctx, callerID, peerID)
			if err != nil {
				return err
			}
			entries[i].Unread = unread
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (uc *userUsecase) UpdateProfilePic(ctx context.Context, userID, profilePic string) error {
	return uc.userRepo.UpdateProfilePic(ctx, userID, profilePic)
}
