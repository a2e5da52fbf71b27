package cli

import (
	"context"
	"strconv"
	"strings"
)

func (a *App) listProfiles(ctx context.Context) {
	list, err := a.profiles.List(ctx, a.token)
	if err != nil {
		a.fail(err)
		return
	}
	for _, p := range list {
		a.printf("%3d  %-24s %d record(s)\n", p.ID, p.Name, p.RecordCount)
	}
}

func (a *App) addProfile(ctx context.Context, args []string) {
	if len(args) == 0 {
		a.println("Usage: addprofile <name>")
		return
	}
	p, err := a.profiles.Create(ctx, a.token, strings.Join(args, " "))
	if err != nil {
		a.fail(err)
		return
	}
	a.printf("Profile %q created (id %d).\n", p.Name, p.ID)
}

func (a *App) renameProfile(ctx context.Context, args []string) {
	if len(args) < 2 {
		a.println("Usage: renameprofile <id> <name>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		a.println("Usage: renameprofile <id> <name>")
		return
	}
	if err := a.profiles.Rename(ctx, a.token, id, strings.Join(args[1:], " ")); err != nil {
		a.fail(err)
		return
	}
	a.println("Renamed.")
}

func (a *App) deleteProfile(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: delprofile <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		a.println("Usage: delprofile <id>")
		return
	}
	if err := a.profiles.Delete(ctx, a.token, id); err != nil {
		a.fail(err)
		return
	}
	a.println("Profile deleted.")
}

func (a *App) switchProfile(ctx context.Context, args []string) {
	if len(args) == 0 {
		a.println("Usage: switch <name>")
		return
	}
	name := strings.Join(args, " ")

	list, err := a.profiles.List(ctx, a.token)
	if err != nil {
		a.fail(err)
		return
	}
	for _, p := range list {
		if p.Name == name {
			if err := a.session.SetActiveProfile(ctx, a.token, p.ID); err != nil {
				a.fail(err)
				return
			}
			a.printf("Active profile: %s\n", name)
			return
		}
	}
	a.printf("No profile named %q.\n", name)
}
