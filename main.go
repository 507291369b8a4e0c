package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tasksync/internal/auth"
	"tasksync/internal/config"
	"tasksync/internal/database"
	"tasksync/internal/export"
	"tasksync/internal/gateway"
	"tasksync/internal/router"
	"tasksync/internal/session"
	"tasksync/internal/task"
	"tasksync/internal/util"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: tasksync <command> [flags]

commands:
  serve                     run the local development backend
  register                  create an account and log in
  login                     log in and persist the session
  logout                    clear the local session
  whoami                    show the current session user
  list                      list tasks (pending and done)
  add -title ... [-desc]    create a task
  edit -id ... [-title] [-desc]
  done -id ...              mark a task completed
  undone -id ...            mark a task pending
  rm -id ... [-y]           delete a task (asks for confirmation)
  export -out file [-format csv|xlsx]`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfgPath := os.Getenv("TSYNC_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "serve" {
		runServe(cfg)
		return
	}

	store := session.NewFileStore(cfg.Session.Path, cfg.Session.EncryptionKey)
	gw := gateway.New(cfg.Gateway.Endpoint, cfg.Gateway.AdminSecret, store)
	ctx := context.Background()

	switch cmd {
	case "register":
		runRegister(ctx, gw, store, cfg, args)
	case "login":
		runLogin(ctx, gw, store, cfg, args)
	case "logout":
		runLogout(store)
	case "whoami":
		runWhoami(store)
	case "list":
		runList(ctx, gw, store)
	case "add":
		runAdd(ctx, gw, store, args)
	case "edit":
		runEdit(ctx, gw, store, args)
	case "done", "undone":
		runToggle(ctx, gw, store, cmd == "done", args)
	case "rm":
		runDelete(ctx, gw, store, args)
	case "export":
		runExport(ctx, gw, store, args)
	default:
		usage()
	}
}

// ---------- serve ----------

func runServe(cfg *config.Config) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	if cfg.Gateway.AdminSecret == "" {
		secret, err := util.RandomString(32)
		if err != nil {
			log.Fatalf("generate admin secret: %v", err)
		}
		cfg.Gateway.AdminSecret = secret
		log.Printf("no admin secret configured, generated one: %s", secret)
	}

	r := router.SetupRouter(cfg, db)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("development backend listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

// ---------- auth commands ----------

func promptLine(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func runRegister(ctx context.Context, gw *gateway.Client, store session.Store, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	_ = fs.Parse(args)

	password := promptLine("password: ")
	confirm := promptLine("confirm password: ")

	ctl := auth.NewController(gw, store, cfg.Auth.Mode)
	res, err := ctl.Register(ctx, *name, *email, password, confirm)
	if err != nil {
		log.Fatalf("register: %s", auth.ErrorMessage(err))
	}
	fmt.Printf("account created, logged in as %s (%s)\n", res.User.Name, res.User.Email)
}

func runLogin(ctx context.Context, gw *gateway.Client, store session.Store, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	_ = fs.Parse(args)

	password := promptLine("password: ")

	ctl := auth.NewController(gw, store, cfg.Auth.Mode)
	res, err := ctl.Login(ctx, *email, password)
	if err != nil {
		log.Fatalf("login: %s", auth.ErrorMessage(err))
	}
	fmt.Printf("logged in as %s (%s)\n", res.User.Name, res.User.Email)
}

func runLogout(store session.Store) {
	ctl := task.NewController(nil, store)
	if _, err := ctl.Logout(); err != nil {
		log.Fatalf("logout: %v", err)
	}
	fmt.Println("logged out")
}

func runWhoami(store session.Store) {
	user := store.User()
	if !store.IsAuthenticated() || user == nil {
		fmt.Println("not logged in")
		os.Exit(1)
	}
	fmt.Printf("%s (%s)\n", user.Name, user.Email)
}

// ---------- task commands ----------

func mustLoad(ctx context.Context, gw *gateway.Client, store session.Store) *task.Controller {
	ctl := task.NewController(gw, store)
	if err := ctl.Load(ctx); err != nil {
		if err == task.ErrNotAuthenticated {
			log.Fatal("not logged in, run: tasksync login")
		}
		log.Fatalf("fetch tasks: %v", err)
	}
	return ctl
}

func printTasks(ctl *task.Controller) {
	pending, completed := ctl.Partition()

	fmt.Printf("TODO (%d)\n", len(pending))
	for _, t := range pending {
		fmt.Printf("  [ ] %s  %s\n", t.ID, t.Title)
	}
	fmt.Printf("DONE (%d)\n", len(completed))
	for _, t := range completed {
		fmt.Printf("  [x] %s  %s\n", t.ID, t.Title)
	}
}

func runList(ctx context.Context, gw *gateway.Client, store session.Store) {
	printTasks(mustLoad(ctx, gw, store))
}

func runAdd(ctx context.Context, gw *gateway.Client, store session.Store, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "task title")
	desc := fs.String("desc", "", "task description")
	_ = fs.Parse(args)

	ctl := mustLoad(ctx, gw, store)
	user := store.User()

	editor := task.NewEditor(gw)
	editor.OnSaved = ctl.Refresh
	editor.Open(nil)
	editor.Draft = task.Draft{Title: *title, Description: *desc}

	if _, err := editor.Submit(ctx, user.ID); err != nil {
		log.Fatalf("add: %v", err)
	}
	fmt.Println("task created")
	printTasks(ctl)
}

func runEdit(ctx context.Context, gw *gateway.Client, store session.Store, args []string) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "task id")
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description")
	_ = fs.Parse(args)

	ctl := mustLoad(ctx, gw, store)
	user := store.User()

	var existing *task.Task
	for _, t := range ctl.Tasks() {
		if t.ID == *id {
			existing = &t
			break
		}
	}
	if existing == nil {
		log.Fatalf("edit: no task with id %s", *id)
	}

	editor := task.NewEditor(gw)
	editor.OnSaved = ctl.Refresh
	editor.Open(existing)
	if *title != "" {
		editor.Draft.Title = *title
	}
	if *desc != "" {
		editor.Draft.Description = *desc
	}

	if _, err := editor.Submit(ctx, user.ID); err != nil {
		log.Fatalf("edit: %v", err)
	}
	fmt.Println("task updated")
	printTasks(ctl)
}

func runToggle(ctx context.Context, gw *gateway.Client, store session.Store, done bool, args []string) {
	fs := flag.NewFlagSet("toggle", flag.ExitOnError)
	id := fs.String("id", "", "task id")
	_ = fs.Parse(args)

	ctl := mustLoad(ctx, gw, store)
	if err := ctl.Toggle(ctx, *id, done); err != nil {
		log.Fatalf("toggle: %v", err)
	}
	printTasks(ctl)
}

func runDelete(ctx context.Context, gw *gateway.Client, store session.Store, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.String("id", "", "task id")
	yes := fs.Bool("y", false, "skip confirmation")
	_ = fs.Parse(args)

	ctl := mustLoad(ctx, gw, store)

	confirm := func() bool {
		if *yes {
			return true
		}
		answer := promptLine("delete this task? [y/N] ")
		return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	}

	err := ctl.Delete(ctx, *id, confirm)
	if err == task.ErrDeleteCancelled {
		fmt.Println("cancelled")
		return
	}
	if err != nil {
		log.Fatalf("rm: %v", err)
	}
	fmt.Println("task deleted")
	printTasks(ctl)
}

func runExport(ctx context.Context, gw *gateway.Client, store session.Store, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output file")
	format := fs.String("format", "csv", "csv or xlsx")
	_ = fs.Parse(args)

	if *out == "" {
		log.Fatal("export: -out is required")
	}

	ctl := mustLoad(ctx, gw, store)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	defer f.Close()

	switch *format {
	case "csv":
		err = export.WriteCSV(f, ctl.Tasks())
	case "xlsx":
		err = export.WriteXLSX(f, ctl.Tasks())
	default:
		log.Fatalf("export: unknown format %q", *format)
	}
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Printf("exported %d tasks to %s\n", len(ctl.Tasks()), *out)
}
