package cli

import (
	"fmt"

	"github.com/authguard/authguard-terminal/pkg/models"
	"github.com/authguard/authguard-terminal/pkg/store"
)

// CommandContext manages data directory validation and common command context
type CommandContext struct {
	DataDir   string
	Config    *models.Config
	validated bool

	appState *store.AppStateStore
	services *store.ServiceStore
}

// NewCommandContext resolves the data directory from the --data-dir flag,
// the environment or the default location.
func NewCommandContext() (*CommandContext, error) {
	dir, err := store.ResolveDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		DataDir: dir,
	}, nil
}

// ValidateProject ensures the data directory is initialized
func (c *CommandContext) ValidateProject() error {
	if c.validated {
		return nil
	}

	if !store.Exists(c.DataDir) {
		return fmt.Errorf("no data directory found at %s. Run 'authguard init' first", c.DataDir)
	}

	c.validated = true
	return nil
}

// LoadConfigWithDefault loads config or returns the default if it cannot be read
func (c *CommandContext) LoadConfigWithDefault() *models.Config {
	if c.Config != nil {
		return c.Config
	}

	cfg, err := store.ReadConfig(c.DataDir)
	if err != nil {
		PrintWarning("Using default configuration: %v", err)
		cfg = models.DefaultConfig()
	}

	c.Config = cfg
	return cfg
}

// AppState opens the application state store
func (c *CommandContext) AppState() *store.AppStateStore {
	if c.appState == nil {
		c.appState = store.NewAppStateStore(c.DataDir)
	}
	return c.appState
}

// Services opens the service store
func (c *CommandContext) Services() (*store.ServiceStore, error) {
	if c.services != nil {
		return c.services, nil
	}
	s, err := store.NewServiceStore(c.DataDir)
	if err != nil {
		return nil, err
	}
	c.services = s
	return s, nil
}
