package cli

import (
	"fmt"

	"github.com/sshpanes/sshpanes/internal/config"
	"github.com/sshpanes/sshpanes/internal/events"
	"github.com/sshpanes/sshpanes/internal/identity"
	"github.com/sshpanes/sshpanes/internal/listing"
	"github.com/sshpanes/sshpanes/internal/logging"
	"github.com/sshpanes/sshpanes/internal/session"
)

// app wires the core services for one command invocation. Everything is
// explicitly constructed and injected; there are no ambient singletons.
type app struct {
	settings    *config.Store
	credentials config.CredentialStore
	target      session.Target
	executor    *session.Executor
	lister      *listing.Lister
	eventBus    *events.EventBus
	logger      *logging.Logger
}

// newApp loads settings, resolves the target from flags and settings, and
// builds the session stack.
func newApp() (*app, error) {
	log := GetLogger()

	settings, err := config.NewDefaultStore()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	snap := settings.Get()

	target := session.Target{
		Server:   firstNonEmpty(server, snap.ServerAddress),
		Username: firstNonEmpty(username, snap.Username),
	}
	if target.Server == "" || target.Username == "" {
		return nil, fmt.Errorf("no server/username configured; run 'sshpanes config set' or pass --server/--user")
	}

	credentials := config.NewDefaultCredentialStore()
	// A credential read failure degrades to an empty passphrase.
	passphrase, err := credentials.Get(config.Account(target.Username, target.Server))
	if err != nil {
		log.Warn().Err(err).Msg("Credential store read failed, continuing without passphrase")
	}
	target.Passphrase = passphrase

	resolver := &identity.Resolver{
		ConfiguredPath: firstNonEmpty(keyPath, snap.IdentityKeyPath),
		BookmarkToken:  snap.IdentityKeyBookmark,
		Bookmarks:      identity.PassthroughBookmarks{},
		CacheDir:       config.KeyCacheDir(),
		Logger:         logging.NewLogger("identity"),
	}

	executor := session.NewExecutor(session.ExecRunner{}, resolver, logging.NewLogger("session"))
	lister := listing.NewLister(executor, logging.NewLogger("listing"))

	return &app{
		settings:    settings,
		credentials: credentials,
		target:      target,
		executor:    executor,
		lister:      lister,
		eventBus:    events.NewEventBus(0),
		logger:      log,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
