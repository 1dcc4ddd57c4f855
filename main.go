package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/harrisonrobin/arrange/pkg/auth"
	"github.com/harrisonrobin/arrange/pkg/config"
	"github.com/harrisonrobin/arrange/pkg/google"
	"github.com/harrisonrobin/arrange/pkg/index"
	"github.com/harrisonrobin/arrange/pkg/store"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ", ") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	days       int
	add        string
	urgent     bool
	important  bool
	status     string
	categories listFlag
	checklist  listFlag
	remarks    string
	markdown   bool
	start      string
	end        string
	item       string
	move       string
	setStatus  string
	remove     bool
	export     string
	overdue    bool
}

// errUsage is returned by run when no command was given.
var errUsage = errors.New("no command given")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return
		case errors.Is(err, errUsage):
			os.Exit(2)
		}
		fatal(err)
	}
}

// run executes one command. Deferred cleanup has finished by the time it
// returns, so main can exit on its error.
func run(args []string, stdout io.Writer) error {
	// 1. Parse Flags
	fs := flag.NewFlagSet("arrange", flag.ContinueOnError)
	var opts options
	calendarName := fs.String("calendar", "", "Google Calendar name holding the items (overrides config)")
	setCalendar := fs.String("set-calendar", "", "Set the default Google Calendar name")
	configPath := fs.String("config", "", "Path to the YAML config file")
	doAuth := fs.Bool("auth", false, "Authenticate with Google Calendar")
	createCalendar := fs.Bool("create-calendar", false, "Create the calendar if it does not exist")
	list := fs.Bool("list", false, "List items grouped by quadrant")
	fs.IntVar(&opts.days, "days", 0, "Days around today covered by -list, -overdue and -export (overrides config)")
	fs.StringVar(&opts.add, "add", "", "Add an item with this subject")
	fs.BoolVar(&opts.urgent, "urgent", false, "Mark the new item urgent")
	fs.BoolVar(&opts.important, "important", false, "Mark the new item important")
	fs.StringVar(&opts.status, "status", "", "Status of the new item")
	fs.Var(&opts.categories, "category", "Category of the new item (repeatable)")
	fs.Var(&opts.checklist, "check", "Checklist line of the new item (repeatable)")
	fs.StringVar(&opts.remarks, "remarks", "", "Remarks of the new item")
	fs.BoolVar(&opts.markdown, "markdown", false, "Treat -remarks as markdown")
	fs.StringVar(&opts.start, "start", "", "Start of the new item (2006-01-02 15:04 or RFC3339)")
	fs.StringVar(&opts.end, "end", "", "Estimated completion of the new item")
	fs.StringVar(&opts.item, "item", "", "Item to act on: position from the last -list, or event id")
	fs.StringVar(&opts.move, "move", "", "Move -item to a quadrant (do-first, schedule, delegate, eliminate)")
	fs.StringVar(&opts.setStatus, "set-status", "", "Set the status of -item")
	fs.BoolVar(&opts.remove, "delete", false, "Delete -item")
	fs.StringVar(&opts.export, "export", "", "Write items to an iCalendar file ('-' for stdout)")
	fs.BoolVar(&opts.overdue, "overdue", false, "List open items past their estimated completion")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 2. Load Config (Priority: Flag > Config > Default)
	if *configPath == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("could not find path to configuration file: %w", err)
		}
		*configPath = p
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	// 3. Handle Set Calendar
	if *setCalendar != "" {
		cfg.Calendar = *setCalendar
		if err := config.Save(*configPath, cfg); err != nil {
			return fmt.Errorf("could not save config: %w", err)
		}
		fmt.Fprintf(stdout, "Default calendar set to: %s\n", *setCalendar)
		return nil
	}
	if *calendarName != "" {
		cfg.Calendar = *calendarName
	}
	if opts.days <= 0 {
		opts.days = cfg.HorizonDays
	}

	ctx := context.Background()

	// 4. Handle Authentication
	if *doAuth {
		if err := auth.RemoveToken(); err != nil {
			return fmt.Errorf("%w. Please delete it manually", err)
		}
		if _, err := auth.NewSupplier(ctx); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		log.Printf("Authentication successful! Token saved to %s", auth.TokenFile)
		return nil
	}

	if !opts.any() && !*list && !*createCalendar {
		fs.Usage()
		return errUsage
	}

	// 5. Connect
	tokens, err := auth.NewSupplier(ctx)
	if err != nil {
		return err
	}
	gClient, err := google.NewClient(ctx, tokens)
	if err != nil {
		return err
	}
	calendarID, err := gClient.ResolveCalendar(ctx, cfg.Calendar)
	if err != nil {
		if !*createCalendar || errors.Is(err, auth.ErrToken) {
			return err
		}
		if calendarID, err = gClient.CreateCalendar(ctx, cfg.Calendar); err != nil {
			return err
		}
		log.Printf("Created calendar '%s'", cfg.Calendar)
	}

	idx, err := index.Open(cfg.IndexPath)
	if err != nil {
		log.Printf("Warning: failed to open item index: %v", err)
	} else {
		defer idx.Close()
	}

	a := &app{
		cfg:   cfg,
		store: store.New(gClient, calendarID),
		index: idx,
		out:   stdout,
	}

	// 6. Run Command
	switch {
	case opts.add != "":
		return a.add(ctx, opts)
	case opts.move != "":
		return a.move(ctx, opts.item, opts.move)
	case opts.setStatus != "":
		return a.setStatus(ctx, opts.item, opts.setStatus)
	case opts.remove:
		return a.remove(ctx, opts.item)
	case opts.export != "":
		return a.export(ctx, opts.export, opts.days)
	case opts.overdue:
		return a.overdue(ctx, opts.days)
	case *list:
		return a.list(ctx, opts.days)
	}
	return nil
}

func (o options) any() bool {
	return o.add != "" || o.move != "" || o.setStatus != "" || o.remove || o.export != "" || o.overdue
}

func fatal(err error) {
	if errors.Is(err, auth.ErrToken) {
		log.Fatalf("%v\nRun with -auth to sign in again.", err)
	}
	log.Fatalf("Error: %v", err)
}
