package cli

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/vibevault/vibevault/internal/common"
	"github.com/vibevault/vibevault/internal/cryptox"
)

func (a *App) register(ctx context.Context) {
	registered, err := a.session.Registered(ctx)
	if err != nil {
		a.fail(err)
		return
	}
	if registered {
		a.fail(common.ErrAlreadyRegistered)
		return
	}

	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	if username == "" {
		a.println("Username must not be empty.")
		return
	}

	pw, err := getPassword("Choose a master password: ", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	defer cryptox.ZeroBytes(pw)

	confirm, err := getPassword("Repeat it: ", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	defer cryptox.ZeroBytes(confirm)

	if !bytes.Equal(pw, confirm) {
		a.println("Passwords do not match.")
		return
	}
	if len(pw) == 0 {
		a.println("Password must not be empty.")
		return
	}

	if err := a.session.Register(ctx, username, pw); err != nil {
		a.fail(err)
		return
	}
	a.println("Master password set. Use 'unlock' to open the vault.")
}

func (a *App) unlock(ctx context.Context) {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	pw, err := getPassword("Master password: ", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	defer cryptox.ZeroBytes(pw)

	token, err := a.session.Unlock(ctx, username, pw)
	if err != nil {
		a.fail(err)
		return
	}
	a.token = token
	a.println("Vault unlocked.")
}

func (a *App) lock() {
	a.session.Lock()
	a.token = ""
	a.println("Vault locked.")
}

func (a *App) autoLock(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: autolock <seconds>")
		return
	}
	secs, err := strconv.Atoi(args[0])
	if err != nil || secs <= 0 {
		a.println("Usage: autolock <seconds>")
		return
	}
	if err := a.session.SetAutoLock(ctx, a.token, time.Duration(secs)*time.Second); err != nil {
		a.fail(err)
		return
	}
	a.printf("Auto-lock set to %ds.\n", secs)
}
