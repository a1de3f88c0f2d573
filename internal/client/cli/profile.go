package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gymsession/internal/client/models"
	"github.com/dmitrijs2005/gymsession/internal/common"
)

// Profile edits the signed-in profile. Empty answers keep the current value.
func (a *App) Profile(ctx context.Context) error {
	v := a.manager.Current()
	if !v.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return common.ErrNotAuthenticated
	}

	patch := &models.ProfilePatch{}
	fields := []struct {
		prompt  string
		current string
		dst     **string
	}{
		{"Name", v.Profile.Name, &patch.Name},
		{"Email", v.Profile.Email, &patch.Email},
		{"Avatar", v.Profile.AvatarOrDefault(), &patch.Avatar},
	}
	for _, f := range fields {
		answer, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s] (empty to keep)", f.prompt, f.current), a.out)
		if err != nil {
			return err
		}
		if answer != "" && answer != f.current {
			value := answer
			*f.dst = &value
		}
	}

	change, err := getConfirmation(a.reader, "Change password?", a.out)
	if err != nil {
		return err
	}
	if change {
		oldPassword, err := getPassword(a.out, "Current password")
		if err != nil {
			return err
		}
		newPassword, err := getPassword(a.out, "New password")
		if err != nil {
			common.WipeByteArray(oldPassword)
			return err
		}
		oldValue, newValue := string(oldPassword), string(newPassword)
		common.WipeByteArray(oldPassword)
		common.WipeByteArray(newPassword)
		patch.OldPassword, patch.Password = &oldValue, &newValue
	}

	if patch.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing to change")
		return nil
	}

	updated, err := a.manager.UpdateProfile(ctx, patch)
	if err != nil {
		fmt.Fprintf(a.out, "Profile update failed: %s\n", describeError(err))
		return err
	}

	fmt.Fprintln(a.out, "Profile updated")
	printProfile(a, updated)
	return nil
}
