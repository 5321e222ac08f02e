package cli

import (
	"bytes"
	"context"
	"errors"

	"github.com/dmitrijs2005/nodekeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords do not match")

// SetPassword prompts twice for the new password and stores it. When a
// password already exists the current one is asked for first.
func (a *App) SetPassword(ctx context.Context, _ []string) error {
	done, err := a.credentials.IsSetupComplete(ctx)
	if err != nil {
		return err
	}
	if done {
		current, err := getPassword("Current password", a.out)
		if err != nil {
			return err
		}
		ok, err := a.credentials.VerifyPassword(ctx, current)
		common.WipeByteArray(current)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("wrong password")
		}
	}

	password, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		return errPasswordMismatch
	}
	if len(password) == 0 {
		return errors.New("empty password")
	}

	if err := a.credentials.SetPassword(ctx, password); err != nil {
		return err
	}
	a.println("Password saved.")
	return nil
}

// VerifyPassword checks a typed password against the stored verifier.
func (a *App) VerifyPassword(ctx context.Context, _ []string) error {
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ok, err := a.credentials.VerifyPassword(ctx, password)
	if err != nil {
		return err
	}
	if ok {
		a.println("Password OK.")
	} else {
		a.println("Password does not match.")
	}
	return nil
}
