package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) status() string {
	if a.isUnlocked() {
		return "unlocked"
	}
	return "locked"
}

// Run starts the shell loop. It returns when the user exits or stdin is
// closed.
func (a *App) Run(ctx context.Context) {
	a.println("vibevault (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	a.loop(ctx, scanner)
}

func (a *App) loop(ctx context.Context, scanner *bufio.Scanner) {
	for {
		a.printf("vault (%s)> ", a.status())
		if !scanner.Scan() {
			return
		}
		// any keystroke counts as activity for the auto-lock clock
		a.session.TouchActivity()
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if !a.dispatch(ctx, parts[0], parts[1:]) {
			return
		}
	}
}

// dispatch runs one command; it returns false when the shell should exit.
func (a *App) dispatch(ctx context.Context, cmd string, args []string) bool {
	switch cmd {
	case "help":
		a.help()
	case "register":
		a.register(ctx)
	case "unlock":
		a.unlock(ctx)
	case "lock":
		a.lock()
	case "autolock":
		a.autoLock(ctx, args)
	case "list", "l":
		a.list(ctx)
	case "add":
		a.add(ctx)
	case "show":
		a.show(ctx, args)
	case "edit":
		a.edit(ctx, args)
	case "delete":
		a.delete(ctx, args)
	case "totp":
		a.totp(ctx, args)
	case "profiles":
		a.listProfiles(ctx)
	case "addprofile":
		a.addProfile(ctx, args)
	case "renameprofile":
		a.renameProfile(ctx, args)
	case "delprofile":
		a.deleteProfile(ctx, args)
	case "switch":
		a.switchProfile(ctx, args)
	case "devices":
		a.listDevices(ctx)
	case "forget":
		a.forgetDevice(ctx, args)
	case "pair":
		a.pair(ctx, args)
	case "sync":
		a.syncCmd(ctx, args)
	case "history":
		a.history(ctx)
	case "exit", "quit":
		a.println("Bye!")
		return false
	default:
		a.println("Unknown command:", cmd)
	}
	return true
}

func (a *App) help() {
	if a.isUnlocked() {
		fmt.Fprint(a.out, `Commands:
  (l)ist                        list records in the active profile
  add | show <id> | edit <id> | delete <id>
  totp <id>                     current one-time code for a record
  profiles | addprofile <name> | renameprofile <id> <name> | delprofile <id>
  switch <name>                 change the active profile
  pair host|join <addr>         pair with another device and sync
  sync host|join <addr> <name>  sync with an already paired device
  devices | forget <name>       manage paired devices
  history                       recent sync outcomes
  autolock <seconds>            change the inactivity timeout
  lock | exit
`)
	} else {
		a.println("Commands: register, unlock, exit")
	}
}
