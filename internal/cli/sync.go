package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibevault/vibevault/internal/models"
	"github.com/vibevault/vibevault/internal/netx"
	"github.com/vibevault/vibevault/internal/pairing"
	"github.com/vibevault/vibevault/internal/transport"
)

var errBadPairingFrame = errors.New("malformed pairing frame")

// pair runs the code-verified handshake with a peer over TCP and then does
// a full first sync. One side hosts, the other joins:
//
//	device A> pair host :7700
//	device B> pair join 192.168.1.10:7700
//
// The host displays a 6-digit code that must be typed on the joining device;
// a wrong code aborts before any vault data moves.
func (a *App) pair(ctx context.Context, args []string) {
	if !a.isUnlocked() {
		a.println("Unlock the vault first.")
		return
	}
	if len(args) != 2 || (args[0] != "host" && args[0] != "join") {
		a.println("Usage: pair host|join <addr>")
		return
	}
	hosting := args[0] == "host"

	sess, err := pairing.NewSession()
	if err != nil {
		a.fail(err)
		return
	}

	if hosting {
		a.printf("Pairing code: %s\n", sess.Code)
		a.println("Waiting for the other device...")
	} else {
		code, err := getSimpleText(a.reader, "Enter the pairing code shown on the other device", a.out)
		if err != nil {
			a.fail(err)
			return
		}
		sess.Code = code
	}

	ch, err := a.connect(ctx, hosting, args[1])
	if err != nil {
		a.fail(err)
		return
	}
	defer ch.Close()

	res, err := a.handshake(ctx, ch, sess, hosting)
	if err != nil {
		a.fail(err)
		return
	}
	defer res.Zero()

	name, err := getSimpleText(a.reader, "Name for the paired device", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	if err := a.devices.Remember(ctx, a.token, name, res); err != nil {
		a.fail(err)
		return
	}
	a.println("Paired. Starting first sync...")

	if err := a.exchange(ctx, ch, &res.SessionKey, name, "", hosting); err != nil {
		a.fail(err)
	}
}

// syncCmd replicates with an already paired device. Ordering mirrors pair:
// the host pushes first, the joiner pulls first.
func (a *App) syncCmd(ctx context.Context, args []string) {
	if len(args) != 3 || (args[0] != "host" && args[0] != "join") {
		a.println("Usage: sync host|join <addr> <device>")
		return
	}
	hosting := args[0] == "host"
	name := args[2]

	key, err := a.devices.SessionKeyFor(ctx, a.token, name)
	if err != nil {
		a.fail(err)
		return
	}

	since := ""
	devices, err := a.devices.List(ctx, a.token)
	if err != nil {
		a.fail(err)
		return
	}
	for _, d := range devices {
		if d.Name == name && !d.LastSyncAt.IsZero() {
			since = d.LastSyncAt.UTC().Format("2006-01-02T15:04:05Z")
		}
	}

	ch, err := a.connect(ctx, hosting, args[1])
	if err != nil {
		a.fail(err)
		return
	}
	defer ch.Close()

	if err := a.exchange(ctx, ch, &key, name, since, hosting); err != nil {
		a.fail(err)
	}
}

func (a *App) connect(ctx context.Context, hosting bool, addr string) (transport.Channel, error) {
	if hosting {
		return netx.Listen(ctx, addr)
	}
	return netx.Dial(ctx, addr)
}

// handshake swaps public keys and code MACs. The host sends first.
func (a *App) handshake(ctx context.Context, ch transport.Channel, sess *pairing.Session, hosting bool) (*pairing.Result, error) {
	own := append(sess.PublicKeyBytes(), sess.MAC()...)

	var peer []byte
	var err error
	if hosting {
		if err = transport.SendPayload(ctx, ch, own, a.config.MTU); err != nil {
			return nil, err
		}
		if peer, err = transport.ReceivePayload(ctx, ch); err != nil {
			return nil, err
		}
	} else {
		if peer, err = transport.ReceivePayload(ctx, ch); err != nil {
			return nil, err
		}
		if err = transport.SendPayload(ctx, ch, own, a.config.MTU); err != nil {
			return nil, err
		}
	}

	if len(peer) <= 32 {
		return nil, errBadPairingFrame
	}
	return sess.Complete(peer[:len(peer)-32], peer[len(peer)-32:])
}

// exchange pushes our changes and merges the peer's, in an order that
// cannot deadlock: the host sends first, the joiner receives first.
func (a *App) exchange(ctx context.Context, ch transport.Channel, key *[32]byte, name string, since string, hosting bool) error {
	bundle, err := a.sync.Export(ctx, a.token, since)
	if err != nil {
		return err
	}

	var incoming *models.ExportBundle
	if hosting {
		if err := a.sync.Push(ctx, ch, key, bundle); err != nil {
			return err
		}
		if incoming, err = a.sync.Pull(ctx, ch, key); err != nil {
			return err
		}
	} else {
		if incoming, err = a.sync.Pull(ctx, ch, key); err != nil {
			return err
		}
		if err := a.sync.Push(ctx, ch, key, bundle); err != nil {
			return err
		}
	}

	stats, err := a.sync.Merge(ctx, a.token, name, incoming)
	if err != nil {
		return err
	}
	a.println(formatStats(stats))
	return nil
}

func formatStats(s *models.MergeStats) string {
	return fmt.Sprintf("Sync complete: %d applied, %d skipped, %d deleted, %d conflict(s)",
		s.Applied, s.Skipped, s.Deleted, s.Conflicts)
}

func (a *App) history(ctx context.Context) {
	entries, err := a.sync.History(ctx, a.token, 20)
	if err != nil {
		a.fail(err)
		return
	}
	if len(entries) == 0 {
		a.println("No syncs yet.")
		return
	}
	for _, e := range entries {
		a.printf("%s  %-16s %-8s applied=%d skipped=%d deleted=%d conflicts=%d\n",
			e.SyncedAt.Format("2006-01-02 15:04:05"), e.DeviceName, e.Direction,
			e.Applied, e.Skipped, e.Deleted, e.Conflicts)
	}
}
