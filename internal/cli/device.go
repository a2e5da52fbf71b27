package cli

import "context"

func (a *App) listDevices(ctx context.Context) {
	list, err := a.devices.List(ctx, a.token)
	if err != nil {
		a.fail(err)
		return
	}
	if len(list) == 0 {
		a.println("No paired devices.")
		return
	}
	for _, d := range list {
		last := "never"
		if !d.LastSyncAt.IsZero() {
			last = d.LastSyncAt.Format("2006-01-02 15:04:05")
		}
		a.printf("%-24s paired %s, last sync %s\n",
			d.Name, d.PairedAt.Format("2006-01-02"), last)
	}
}

func (a *App) forgetDevice(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: forget <name>")
		return
	}
	if err := a.devices.Forget(ctx, a.token, args[0]); err != nil {
		a.fail(err)
		return
	}
	a.println("Device forgotten.")
}
