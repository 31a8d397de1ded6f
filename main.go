package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"localboard/internal/board"
	"localboard/internal/config"
	"localboard/internal/export"
	"localboard/internal/logging"
	lbnet "localboard/internal/net"
	"localboard/internal/state"
	"localboard/internal/ui"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

type flags struct {
	config   string
	listen   string
	room     string
	peer     string
	redis    string
	headless bool
	discover bool
	inspect  string
	render   string
	out      string
}

func parseFlags() (flags, map[string]bool) {
	var f flags
	flag.StringVar(&f.config, "config", "", "path to a TOML config file")
	flag.StringVar(&f.listen, "listen", "", "address the relay listens on")
	flag.StringVar(&f.room, "room", "", "room to join")
	flag.StringVar(&f.peer, "peer", "", "peer id (random when empty)")
	flag.StringVar(&f.redis, "redis", "", "sync through Redis at this address instead of the relay")
	flag.BoolVar(&f.headless, "headless", false, "run only the relay, without a window")
	flag.BoolVar(&f.discover, "discover", false, "list boards advertised on the LAN and exit")
	flag.StringVar(&f.inspect, "inspect", "", "dump a saved board and exit")
	flag.StringVar(&f.render, "render", "", "render a saved board to -o and exit")
	flag.StringVar(&f.out, "o", "board.png", "output file for -render (.png, .pdf or .json)")
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set
}

func mainInner() error {
	f, set := parseFlags()

	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if set["listen"] {
		cfg.Listen = f.listen
	}
	if set["room"] {
		cfg.Room = f.room
	}
	if set["redis"] {
		cfg.Redis.Addr = f.redis
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logging.SetLogger(logger)

	switch {
	case f.inspect != "":
		actions, err := export.LoadFile(f.inspect)
		if err != nil {
			return err
		}
		fmt.Println(export.Dump(actions))
		return nil
	case f.render != "":
		actions, err := export.LoadFile(f.render)
		if err != nil {
			return err
		}
		if err := export.WriteFile(f.out, cfg.Width, cfg.Height, actions); err != nil {
			return err
		}
		slog.Info("rendered", "actions", len(actions), "path", f.out)
		return nil
	case f.discover:
		hosts, err := lbnet.Browse(cfg.Discovery.Timeout)
		if err != nil {
			return err
		}
		for _, h := range hosts {
			fmt.Printf("%s\t%s\n", h.Name, h.Link())
		}
		return nil
	}

	peer := f.peer
	if peer == "" {
		peer = state.NewPeerID()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-exit:
			slog.Info("Signal caught", "sig", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if link := flag.Arg(0); lbnet.IsShareLink(link) {
		return runClient(ctx, cfg, peer, link)
	}
	if cfg.Redis.Addr != "" {
		return runRedis(ctx, cfg, peer)
	}
	return runHost(ctx, cfg, peer, f.headless)
}

// runHost serves the relay for cfg.Room and, unless headless, joins it with
// a local window.
func runHost(ctx context.Context, cfg config.Config, peer string, headless bool) error {
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	hub := lbnet.NewHub()
	httpServer := &http.Server{Handler: hub.Handler()}

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server listen failed", "err", err)
		}
	}()
	defer func() {
		hub.Close()
		_ = httpServer.Close()
		wg.Wait()
	}()

	if cfg.Discovery.MDNS {
		if srv, err := lbnet.Advertise(port, cfg.Room); err != nil {
			slog.Warn("mdns advertisement failed", "err", err)
		} else {
			defer srv.Shutdown()
		}
	}

	ip, err := lbnet.GetOutgoingIP()
	if err != nil {
		slog.Warn("could not find a LAN address", "err", err)
		ip = "127.0.0.1"
	}
	link := lbnet.ShareLink(ip, port, cfg.Room)
	slog.Info("hosting", "room", cfg.Room, "port", port, "link", link)

	if headless {
		<-ctx.Done()
		return nil
	}

	local := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	ch, err := lbnet.Dial(ctx, lbnet.RoomURL(local, cfg.Room, peer), peer)
	if err != nil {
		return err
	}
	defer ch.Close()
	return runBoard(ctx, cfg, peer, ch, link)
}

func runClient(ctx context.Context, cfg config.Config, peer, link string) error {
	addr, room, err := lbnet.ParseShareLink(link)
	if err != nil {
		return err
	}
	cfg.Room = room
	ch, err := lbnet.Dial(ctx, lbnet.RoomURL(addr, room, peer), peer)
	if err != nil {
		return err
	}
	defer ch.Close()
	go func() {
		select {
		case <-ch.Done():
			slog.Warn("disconnected from host", "addr", addr, "room", room)
		case <-ctx.Done():
		}
	}()
	slog.Info("joined", "addr", addr, "room", room, "peer", peer)
	return runBoard(ctx, cfg, peer, ch, link)
}

func runRedis(ctx context.Context, cfg config.Config, peer string) error {
	ch, err := lbnet.NewRedisChannel(ctx, cfg.Redis.Addr, cfg.Room, peer)
	if err != nil {
		return err
	}
	defer ch.Close()
	go func() {
		select {
		case <-ch.Done():
			slog.Warn("disconnected from redis", "addr", cfg.Redis.Addr, "room", cfg.Room)
		case <-ctx.Done():
		}
	}()
	slog.Info("joined", "redis", cfg.Redis.Addr, "room", cfg.Room, "peer", peer)
	return runBoard(ctx, cfg, peer, ch, "")
}

// runBoard drives one session with a window until the window closes or ctx
// is done.
func runBoard(ctx context.Context, cfg config.Config, peer string, ch lbnet.Channel, link string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := board.NewSession(cfg.SessionConfig(peer), ch)
	loop := board.NewLoop(session)

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("board loop stopped", "err", err)
		}
	}()

	ui.RunApp(ctx, ui.Options{
		Title:     "LocalBoard: " + cfg.Room,
		ShareLink: link,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Params:    cfg.Params(),
	}, loop)

	cancel()
	wg.Wait()
	return nil
}
