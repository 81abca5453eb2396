// Package matchctl parses matchctl flags and runs one match command.
package matchctl

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/louisbranch/matchpoint/internal/match/app"
	"github.com/louisbranch/matchpoint/internal/match/service"
	entrypoint "github.com/louisbranch/matchpoint/internal/platform/cmd"
)

// Config holds matchctl command configuration.
type Config struct {
	app.Config

	Actor   string `env:"MATCHPOINT_ACTOR" envDefault:"operator"`
	Display string `env:"MATCHPOINT_ACTOR_DISPLAY"`
	Guild   string `env:"MATCHPOINT_GUILD" envDefault:"local"`
	Channel string `env:"MATCHPOINT_CHANNEL" envDefault:"console"`
	Manage  bool   `env:"MATCHPOINT_MANAGE" envDefault:"true"`

	// Command is the raw sub-command assembled from positional arguments.
	Command string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the sqlite database")
	fs.StringVar(&cfg.Actor, "actor", cfg.Actor, "Acting user reference")
	fs.StringVar(&cfg.Display, "display", cfg.Display, "Acting user display name (defaults to the actor reference)")
	fs.StringVar(&cfg.Guild, "guild", cfg.Guild, "Guild reference the command runs in")
	fs.StringVar(&cfg.Channel, "channel", cfg.Channel, "Channel reference the command runs in")
	fs.BoolVar(&cfg.Manage, "manage", cfg.Manage, "Grant the manage capability to the actor")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	cfg.Command = shellquote.Join(fs.Args()...)
	if cfg.Display == "" {
		cfg.Display = cfg.Actor
	}
	return cfg, nil
}

// Run dispatches the configured command and writes the response as JSON.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMatchctl, func(ctx context.Context) error {
		application, err := app.New(cfg.Config)
		if err != nil {
			return err
		}
		defer application.Close()

		caller := service.Caller{
			Member:     service.Member{Ref: cfg.Actor, DisplayName: cfg.Display},
			GuildRef:   cfg.Guild,
			ChannelRef: cfg.Channel,
			CanManage:  cfg.Manage,
			// matchctl has no chat platform behind it; references resolve
			// to themselves so commands can be exercised end to end.
			ResolveMember: func(ref string) (service.Member, error) {
				ref = strings.TrimSpace(ref)
				if ref == "" {
					return service.Member{}, fmt.Errorf("empty member reference")
				}
				return service.Member{Ref: ref, DisplayName: ref}, nil
			},
			ResolveRoom: func(ref string) (service.Room, error) {
				return service.Room{Ref: ref, Name: ref, Postable: true}, nil
			},
		}

		response := application.Router.Dispatch(ctx, caller, cfg.Command)
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	})
}
