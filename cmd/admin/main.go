package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"yatube/internal/app"
	"yatube/internal/form"
	"yatube/internal/repository/rdb"
	"yatube/pkg/config"
	"yatube/pkg/logging"
)

const usage = `Usage: admin [--config FILE] <command> [flags]

Commands:
  create-group  --title T --slug S --description D
  delete-group  --slug S
  list-groups
  clear-cache   (redis only; an in-process cache is cleared by SIGHUP to the server)
  migrate

Group commands need a mysql or postgres database.
`

func main() {
	global := pflag.NewFlagSet("admin", pflag.ExitOnError)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", "", "path to a config file")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	if err := run(cfg, args[0], args[1:]); err != nil {
		logging.GetLogger().Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, command string, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch command {
	case "migrate":
		return migrate(cfg)
	case "clear-cache":
		if err := app.RequireSharedCache(cfg); err != nil {
			return err
		}
	case "create-group", "delete-group", "list-groups":
		if err := app.RequireSharedDatabase(cfg); err != nil {
			return err
		}
	}

	stores, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()
	services := app.NewServices(cfg, stores)

	switch command {
	case "create-group":
		var f form.GroupForm
		fs := pflag.NewFlagSet(command, pflag.ContinueOnError)
		fs.StringVar(&f.Title, "title", "", "group title")
		fs.StringVar(&f.Slug, "slug", "", "unique url slug")
		fs.StringVar(&f.Description, "description", "", "group description")
		if err := fs.Parse(args); err != nil {
			return err
		}
		g, errs, err := services.Groups.Create(ctx, &f)
		if err != nil {
			return err
		}
		if errs != nil {
			return errs
		}
		fmt.Printf("created group %d %s\n", g.ID, g.Slug)

	case "delete-group":
		fs := pflag.NewFlagSet(command, pflag.ContinueOnError)
		slug := fs.String("slug", "", "slug of the group to delete")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := services.Groups.Delete(ctx, *slug); err != nil {
			return err
		}
		fmt.Printf("deleted group %s\n", *slug)

	case "list-groups":
		groups, err := services.Groups.List(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Printf("%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
		}

	case "clear-cache":
		if err := stores.PageCache.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("page cache cleared")

	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func migrate(cfg *config.Config) error {
	if cfg.Database.Driver == "memory" {
		return fmt.Errorf("nothing to migrate for the memory driver")
	}
	db, err := rdb.Open(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer rdb.Close(db)
	if err := rdb.Migrate(db); err != nil {
		return err
	}
	fmt.Println("schema migrated")
	return nil
}
