// Command forumcli is a thin terminal front end over the forum client SDK.
// It owns no state of its own: every intent is forwarded into the session
// store, auth service or forum synchronizer, and every screen is rendered
// from their current state.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/damiancxliew/web-forum/internal/core/ports"
	"github.com/damiancxliew/web-forum/internal/core/service"
	"github.com/damiancxliew/web-forum/internal/infrastructure/config"
	"github.com/damiancxliew/web-forum/internal/infrastructure/gateway"
	"github.com/damiancxliew/web-forum/internal/infrastructure/storage"
	"github.com/damiancxliew/web-forum/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogPretty, nil)

	store, err := newSessionStorage(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	session := service.NewSessionStore(store, logger.New("session"))
	gw := gateway.New(cfg.APIBaseURL, cfg.RequestTimeout, session.Token, logger.New("gateway"))
	auth := service.NewAuth(gw, session, logger.New("auth"))
	forum := service.NewForumSync(gw, session.IdentityID, logger.New("forum"))

	session.Rehydrate()
	if identity := session.Identity(); identity != nil {
		fmt.Printf("Welcome back, %s\n", identity.Username)
	}
	if msg := session.Err(); msg != "" {
		fmt.Println("Note:", msg)
	}

	log.Debug().Str("api", cfg.APIBaseURL).Str("storage", cfg.Storage.Backend).Msg("client ready")
	repl(ctx, session, auth, forum)
}

func newSessionStorage(ctx context.Context, cfg *config.Config) (ports.SessionStorage, error) {
	switch cfg.Storage.Backend {
	case "redis":
		client, err := storage.Connect(ctx, storage.RedisConfig{
			Addr: cfg.Storage.Redis.Addr,
			DB:   cfg.Storage.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewRedisStore(client), nil
	default:
		return storage.NewFileStore(cfg.Storage.StateDir)
	}
}

func repl(ctx context.Context, session *service.SessionStore, auth ports.AuthService, forum ports.ForumService) {
	in := bufio.NewScanner(os.Stdin)
	fmt.Println(`Commands: signup login logout whoami profile reqadmin refresh rmaccount`)
	fmt.Println(`          categories newcat cat <id> threads newthread open <id>`)
	fmt.Println(`          comments comment rmthread <id> rmcomment <id> quit`)

	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		var err error
		switch cmd {
		case "quit", "exit":
			return
		case "signup":
			err = doSignup(ctx, in, auth)
		case "login":
			err = doLogin(ctx, in, auth)
		case "logout":
			auth.Logout()
			fmt.Println("Logged out")
		case "whoami":
			printIdentity(session)
		case "categories":
			if err = forum.LoadCategories(ctx); err == nil {
				for _, c := range forum.Categories() {
					fmt.Printf("  [%d] %s\n", c.ID, c.Name)
				}
			}
		case "newcat":
			name := prompt(in, "Category name: ")
			_, err = forum.CreateCategory(ctx, name)
		case "cat":
			var id int64
			if id, err = parseID(args); err == nil {
				forum.SelectCategory(id)
				err = forum.LoadThreads(ctx)
			}
		case "threads":
			printThreads(forum)
		case "newthread":
			err = doNewThread(ctx, in, session, forum)
		case "open":
			var id int64
			if id, err = parseID(args); err == nil {
				forum.SelectThread(id)
				if err = forum.LoadComments(ctx); err == nil {
					err = forum.LoadUserDirectory(ctx)
				}
			}
		case "comments":
			printComments(forum)
		case "comment":
			err = doNewComment(ctx, in, session, forum)
		case "rmthread":
			var id int64
			if id, err = parseID(args); err == nil && confirm(in, "Delete this thread?") {
				err = forum.DeleteThread(ctx, id)
			}
		case "rmcomment":
			var id int64
			if id, err = parseID(args); err == nil && confirm(in, "Delete this comment?") {
				err = forum.DeleteComment(ctx, id)
			}
		case "profile":
			err = doUpdateProfile(ctx, in, auth)
		case "reqadmin":
			err = doAdminRequest(ctx, in, auth)
		case "refresh":
			err = auth.RefreshIdentity(ctx)
		case "rmaccount":
			if confirm(in, "Permanently delete your account?") {
				if err = auth.DeleteAccount(ctx); err == nil {
					fmt.Println("Account deleted")
				}
			}
		default:
			fmt.Println("Unknown command:", cmd)
		}

		if err != nil {
			fmt.Println("Error:", err)
		}
	}
}

func doSignup(ctx context.Context, in *bufio.Scanner, auth ports.AuthService) error {
	input := ports.SignUpInput{
		Username: prompt(in, "Username: "),
		Email:    prompt(in, "Email: "),
		Password: prompt(in, "Password: "),
	}
	if confirmPw := prompt(in, "Confirm password: "); confirmPw != input.Password {
		return fmt.Errorf("passwords do not match")
	}
	if err := auth.SignUp(ctx, input); err != nil {
		return err
	}
	fmt.Println("Registered. You can now log in.")
	return nil
}

func doLogin(ctx context.Context, in *bufio.Scanner, auth ports.AuthService) error {
	email := prompt(in, "Email: ")
	password := prompt(in, "Password: ")
	identity, err := auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", identity.Username)
	return nil
}

func doNewThread(ctx context.Context, in *bufio.Scanner, session *service.SessionStore, forum ports.ForumService) error {
	_, err := forum.CreateThread(ctx, ports.CreateThreadInput{
		Title:      prompt(in, "Title: "),
		Content:    prompt(in, "Content: "),
		CategoryID: forum.SelectedCategory(),
		AuthorID:   session.IdentityID(),
	})
	return err
}

func doNewComment(ctx context.Context, in *bufio.Scanner, session *service.SessionStore, forum ports.ForumService) error {
	_, err := forum.CreateComment(ctx, ports.CreateCommentInput{
		Content:  prompt(in, "Comment: "),
		ThreadID: forum.SelectedThread(),
		AuthorID: session.IdentityID(),
	})
	return err
}

func doUpdateProfile(ctx context.Context, in *bufio.Scanner, auth ports.AuthService) error {
	fmt.Println("Leave a field empty to keep its current value.")
	input := ports.UpdateProfileInput{
		Name:    prompt(in, "Name: "),
		Email:   prompt(in, "Email: "),
		Address: prompt(in, "Address: "),
	}
	if err := auth.UpdateProfile(ctx, input); err != nil {
		return err
	}
	fmt.Println("Profile updated")
	return nil
}

func doAdminRequest(ctx context.Context, in *bufio.Scanner, auth ports.AuthService) error {
	req, err := auth.SubmitAdminRequest(ctx, ports.AdminRequestInput{
		Name:         prompt(in, "Full name: "),
		Role:         prompt(in, "Requested role: "),
		MobileNumber: prompt(in, "Mobile number: "),
		Organisation: prompt(in, "Organisation: "),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Request submitted, status: %s\n", req.Status)
	return nil
}

func printIdentity(session *service.SessionStore) {
	identity := session.Identity()
	if identity == nil {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("%s <%s> admin=%t superadmin=%t\n",
		identity.Username, identity.Email, session.IsAdmin(), session.IsSuperAdmin())
	for _, req := range identity.AdminRequests {
		fmt.Printf("  admin request [%d] %s: %s\n", req.ID, req.Role, req.Status)
	}
}

func printThreads(forum ports.ForumService) {
	threads := forum.SelectedThreads()
	if threads == nil {
		fmt.Println("Select a category first (cat <id>)")
		return
	}
	for _, t := range threads {
		author := forum.AuthorName(t.AuthorID)
		fmt.Printf("  [%d] %s by %s (%s)\n", t.ID, t.Title, author, t.CreatedAt.Format("02 Jan 2006 15:04"))
	}
}

func printComments(forum ports.ForumService) {
	comments := forum.SelectedComments()
	if comments == nil {
		fmt.Println("Open a thread first (open <id>)")
		return
	}
	for _, c := range comments {
		fmt.Printf("  [%d] %s: %s\n", c.ID, forum.AuthorName(c.AuthorID), c.Content)
	}
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// confirm asks before destructive operations; deletes never run without it.
func confirm(in *bufio.Scanner, question string) bool {
	answer := prompt(in, question+" [y/N] ")
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one id argument")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
