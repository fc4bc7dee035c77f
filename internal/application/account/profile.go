package account

import (
	"context"
	"fmt"

	"github.com/xiebiao/library/internal/application/media"
	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/user"
)

type ProfileView struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	IsStaff   bool   `json:"is_staff"`
	Photo     string `json:"photo,omitempty"`
}

func toProfileView(p *user.Profile) *ProfileView {
	v := &ProfileView{UserID: p.UserID, Photo: p.PhotoURL}
	if p.User != nil {
		v.Username = p.User.Username
		v.Email = p.User.Email
		v.FirstName = p.User.FirstName
		v.LastName = p.User.LastName
		v.FullName = p.User.FullName()
		v.IsStaff = p.User.IsStaff
	}
	return v
}

// ProfileUseCase acts on the caller's own profile. No operation takes a
// user or profile id.
type ProfileUseCase struct {
	users  user.Service
	images *media.Replacer
}

func NewProfileUseCase(userService user.Service, images *media.Replacer) *ProfileUseCase {
	return &ProfileUseCase{
		users:  userService,
		images: images,
	}
}

func (uc *ProfileUseCase) Get(ctx context.Context, p access.Principal) (*ProfileView, error) {
	if err := p.Authorize(access.OpViewProfile); err != nil {
		return nil, err
	}

	profile, err := uc.users.GetProfile(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return toProfileView(profile), nil
}

func (uc *ProfileUseCase) Update(ctx context.Context, p access.Principal, in user.ProfileInput) (*ProfileView, error) {
	if err := p.Authorize(access.OpUpdateProfile); err != nil {
		return nil, err
	}

	profile, err := uc.users.UpdateProfile(ctx, p.UserID, in)
	if err != nil {
		return nil, err
	}
	return toProfileView(profile), nil
}

// UploadPhoto stores a new photo and drops the previous one.
func (uc *ProfileUseCase) UploadPhoto(ctx context.Context, p access.Principal, up media.Upload) (*ProfileView, error) {
	if err := p.Authorize(access.OpUpdateProfile); err != nil {
		return nil, err
	}

	current, err := uc.users.GetProfile(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	var updated *user.Profile
	_, err = uc.images.Replace(ctx, fmt.Sprintf("profiles/%d", p.UserID), up, current.PhotoURL,
		func(ctx context.Context, url string) error {
			profile, err := uc.users.SetPhoto(ctx, p.UserID, url)
			updated = profile
			return err
		})
	if err != nil {
		return nil, err
	}
	return toProfileView(updated), nil
}
