package cli

import (
	"context"

	"github.com/vibevault/vibevault/internal/models"
)

func (a *App) list(ctx context.Context) {
	entries, err := a.vault.List(ctx, a.token)
	if err != nil {
		a.fail(err)
		return
	}
	if len(entries) == 0 {
		a.println("No records.")
		return
	}
	for _, e := range entries {
		a.printf("%s  %-24s v%d  %s\n", e.UUID, e.Label, e.Version, e.UpdatedAt)
	}
}

// promptPayload collects the record fields interactively. Empty answers
// leave optional fields unset.
func (a *App) promptPayload() (*models.RecordPayload, error) {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return nil, err
	}
	password, err := getSimpleText(a.reader, "Password", a.out)
	if err != nil {
		return nil, err
	}
	url, err := getSimpleText(a.reader, "URL (optional)", a.out)
	if err != nil {
		return nil, err
	}
	notes, err := getSimpleText(a.reader, "Notes (optional)", a.out)
	if err != nil {
		return nil, err
	}
	secret, err := getSimpleText(a.reader, "Authenticator secret (optional)", a.out)
	if err != nil {
		return nil, err
	}
	return &models.RecordPayload{
		Username: username, Password: password,
		URL: url, Notes: notes, TOTPSecret: secret,
	}, nil
}

func (a *App) add(ctx context.Context) {
	label, err := getSimpleText(a.reader, "Label", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	payload, err := a.promptPayload()
	if err != nil {
		a.fail(err)
		return
	}
	id, err := a.vault.Save(ctx, a.token, label, payload)
	if err != nil {
		a.fail(err)
		return
	}
	a.println("Saved:", id)
}

func (a *App) show(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: show <id>")
		return
	}
	entry, err := a.vault.Get(ctx, a.token, args[0])
	if err != nil {
		a.fail(err)
		return
	}
	a.println("Label:   ", entry.Label)
	a.println("Username:", entry.Payload.Username)
	a.println("Password:", entry.Payload.Password)
	if entry.Payload.URL != "" {
		a.println("URL:     ", entry.Payload.URL)
	}
	if entry.Payload.Notes != "" {
		a.println("Notes:   ", entry.Payload.Notes)
	}
	if entry.Payload.TOTPSecret != "" {
		a.println("TOTP:    configured (use 'totp', the secret stays hidden)")
	}
}

func (a *App) edit(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: edit <id>")
		return
	}
	label, err := getSimpleText(a.reader, "New label", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	payload, err := a.promptPayload()
	if err != nil {
		a.fail(err)
		return
	}
	if err := a.vault.Update(ctx, a.token, args[0], label, payload); err != nil {
		a.fail(err)
		return
	}
	a.println("Updated.")
}

func (a *App) delete(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: delete <id>")
		return
	}
	if err := a.vault.Delete(ctx, a.token, args[0]); err != nil {
		a.fail(err)
		return
	}
	a.println("Deleted.")
}

func (a *App) totp(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: totp <id>")
		return
	}
	code, ttl, err := a.vault.TOTPCode(ctx, a.token, args[0])
	if err != nil {
		a.fail(err)
		return
	}
	a.printf("%s (valid %ds)\n", code, ttl)
}
