// The launcher command is a CLI desktop client for the MLX launcher
// server: browse the catalog, manage a game library, and download,
// install and launch games.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/gosimple/slug"

	"github.com/mlx-launcher/mlx/client"
	"github.com/mlx-launcher/mlx/installer"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: launcher [-server URL] <command> [args]

Commands:
  register <username> <email> <password>   create an account
  login <username|email> <password>        log in and store the token
  games [query]                            list the game catalog
  library                                  list owned games
  add <game-id>                            add a game to the library
  install <game-id>                        download and install a game
  downloads                                list download records
  launch <game-id>                         run an installed game
  set-install-dir <dir>                    change the install directory
  health                                   check the server
`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)

	settings, err := loadSettings()
	if err != nil {
		log.Fatalln("Failed to load settings:", err)
	}

	server := flag.String("server", settings.ServerURL, "launcher server base URL")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	session := client.New(*server)
	session.Token = settings.Token

	// Cancel in-flight work on Ctrl-C.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, args, session, settings); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, args []string, session *client.Session, settings *Settings) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		if len(rest) != 3 {
			usage()
		}
		user, err := session.Register(ctx, rest[0], rest[1], rest[2])
		if err != nil {
			return err
		}
		fmt.Printf("Account created for %s <%s>\n", user.Username, user.Email)
		return nil

	case "login":
		if len(rest) != 2 {
			usage()
		}
		result, err := session.Login(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		settings.ServerURL = session.BaseURL
		settings.Token = result.Token
		if err := settings.save(); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", result.User.Username)
		return nil

	case "games":
		search := ""
		if len(rest) > 0 {
			search = rest[0]
		}
		games, err := session.Games(ctx, search)
		if err != nil {
			return err
		}
		for _, g := range games {
			fmt.Printf("%4d  %s %s  (%s, %d downloads)\n",
				g.ID, g.Emoji, g.Name, g.Size, g.Downloads)
		}
		return nil

	case "library":
		games, err := session.Library(ctx)
		if err != nil {
			return err
		}
		for _, g := range games {
			fmt.Printf("%4d  %s %s\n", g.ID, g.Emoji, g.Name)
		}
		return nil

	case "add":
		id, err := parseGameID(rest)
		if err != nil {
			return err
		}
		if _, err := session.AddToLibrary(ctx, id); err != nil {
			return err
		}
		fmt.Println("Added to library")
		return nil

	case "install":
		id, err := parseGameID(rest)
		if err != nil {
			return err
		}
		return install(ctx, session, settings, id)

	case "downloads":
		list, err := session.Downloads(ctx)
		if err != nil {
			return err
		}
		for _, d := range list {
			fmt.Printf("%s  %-12s %3d%%  %s\n", d.UUID, d.Status, d.Progress, d.GameName)
		}
		return nil

	case "launch":
		id, err := parseGameID(rest)
		if err != nil {
			return err
		}
		game, err := session.Game(ctx, id)
		if err != nil {
			return err
		}
		dir := filepath.Join(settings.InstallDir, slug.Make(game.Name))
		return installer.Launch(game.Executable, dir)

	case "set-install-dir":
		if len(rest) != 1 {
			usage()
		}
		settings.InstallDir = rest[0]
		if err := settings.save(); err != nil {
			return err
		}
		fmt.Println("Install directory set to", rest[0])
		return nil

	case "health":
		health, err := session.Health(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d games available\n", health.Status, health.GamesAvailable)
		return nil

	default:
		usage()
		return nil
	}
}

// install runs the full workflow for one game: create the download record,
// fetch the archive, extract it and report completion.
func install(ctx context.Context, session *client.Session, settings *Settings, gameID uint) error {
	game, err := session.Game(ctx, gameID)
	if err != nil {
		return err
	}

	download, err := session.CreateDownload(ctx, gameID)
	if err != nil {
		return err
	}

	installDir := filepath.Join(settings.InstallDir, slug.Make(game.Name))
	archive := filepath.Join(settings.InstallDir, download.FileName)
	if download.FileName == "" {
		archive = filepath.Join(settings.InstallDir, slug.Make(game.Name)+".zip")
	}

	fmt.Printf("Downloading %s...\n", game.Name)
	reportStatus(ctx, session, download.UUID, installer.StatusDownloading, 0)

	events := make(chan installer.Progress)
	done := make(chan struct{})
	go func() {
		defer close(done)
		last := -1
		for p := range events {
			if p.Percent != last {
				last = p.Percent
				fmt.Printf("\r%3d%% (%d bytes)", p.Percent, p.Downloaded)
				reportStatus(ctx, session, download.UUID, installer.StatusDownloading, p.Percent)
			}
		}
		fmt.Println()
	}()

	err = installer.Fetch(ctx, download.DownloadLink, archive, events)
	// Wait for the last progress report before changing status, so a late
	// "downloading" report cannot land after it.
	close(events)
	<-done
	if err != nil {
		reportStatus(ctx, session, download.UUID, installer.StatusFailed, 0)
		return err
	}
	reportStatus(ctx, session, download.UUID, installer.StatusDownloaded, 100)

	fmt.Printf("Extracting into %s...\n", installDir)
	reportStatus(ctx, session, download.UUID, installer.StatusExtracting, 100)
	if err := installer.Extract(ctx, archive, installDir); err != nil {
		reportStatus(ctx, session, download.UUID, installer.StatusFailed, 100)
		return err
	}

	task := installer.Task{
		DownloadID: download.UUID,
		GameName:   game.Name,
		Executable: game.Executable,
		InstallDir: installDir,
	}
	complete := func(ctx context.Context, downloadID, installPath string) error {
		_, err := session.CompleteDownload(ctx, downloadID, installPath)
		return err
	}
	if err := installer.Finalize(ctx, task, installer.NewShortcutCreator(), complete); err != nil {
		return err
	}

	fmt.Printf("%s installed.\n", game.Name)
	return nil
}

// reportStatus is a best-effort progress report; the install continues
// even when the server cannot be reached.
func reportStatus(ctx context.Context, session *client.Session, downloadID string, status installer.Status, progress int) {
	if _, err := session.UpdateDownloadStatus(ctx, downloadID, status.String(), progress); err != nil {
		log.Println("Could not report status:", err)
	}
}

func parseGameID(rest []string) (uint, error) {
	if len(rest) != 1 {
		usage()
	}
	id, err := strconv.ParseUint(rest[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid game id %q", rest[0])
	}
	return uint(id), nil
}
