package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────
// Config — one explicit struct, constructed at process start and
// passed by reference into the pipeline components. No hidden
// cross-package state.
// ─────────────────────────────────────────────────────────────

// Sink kinds.
const (
	SinkSheet = "sheet"
	SinkMongo = "mongo"
)

var (
	errNoHost     = errors.New("missing sftp host")
	errNoUser     = errors.New("missing sftp user")
	errNoKey      = errors.New("missing sftp private key file")
	errNoEndpoint = errors.New("missing sheet endpoint URL")
	errNoMongoURI = errors.New("missing mongo URI")
	errNoTrigger  = errors.New("nothing to do: no schedule and run-at-start disabled")
)

// Config holds the full configuration surface of the daemon.
type Config struct {
	// File source. LocalDir, when set, replaces the SFTP source with a
	// local directory (development / manual replay).
	SFTPHost    string
	SFTPPort    int
	SFTPUser    string
	SFTPKeyFile string
	RemoteDir   string
	LocalDir    string

	// Destination.
	SinkKind        string // SinkSheet or SinkMongo
	SheetEndpoint   string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Triggering.
	Schedule   string // cron expression; empty disables the schedule
	Timezone   string // IANA name for schedule evaluation; empty means local
	RunAtStart bool

	// Policy.
	ExcludeGroups []string // groups dropped on the document-store path

	// Local state. Empty disables run history.
	StateDB string
}

// Validate checks for missing required credentials. Called before any
// run is attempted; a failure here terminates the process.
func (c *Config) Validate() error {
	if c.LocalDir == "" {
		if c.SFTPHost == "" {
			return errNoHost
		}
		if c.SFTPUser == "" {
			return errNoUser
		}
		if c.SFTPKeyFile == "" {
			return errNoKey
		}
	}

	switch c.SinkKind {
	case SinkSheet:
		if c.SheetEndpoint == "" {
			return errNoEndpoint
		}
	case SinkMongo:
		if c.MongoURI == "" {
			return errNoMongoURI
		}
	default:
		return fmt.Errorf("unknown sink kind %q", c.SinkKind)
	}

	if c.Schedule == "" && !c.RunAtStart {
		return errNoTrigger
	}
	return nil
}

// Location resolves the schedule timezone, defaulting to the process's
// local zone when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ParseGroups splits a comma-separated exclusion list, trimming each
// entry and dropping empties.
func ParseGroups(s string) []string {
	var groups []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}
