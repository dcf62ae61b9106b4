package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"limbo/audio"
	"limbo/beep"
	"limbo/config"
	"limbo/dictation"
	"limbo/doctor"
	"limbo/hotkey"
	"limbo/inject"
	"limbo/log"
	"limbo/shutdown"
	"limbo/transcriber"
)

var version = "dev"

var shutdownOnce sync.Once

func gracefulShutdown(orch *dictation.Orchestrator) {
	shutdownOnce.Do(func() {
		if orch != nil {
			orch.Close()
		}
		log.Info("shutdown")
		log.Close()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		os.Exit(0)
	})
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func run() {
	configFlag := flag.String("config", "", "Path to YAML config file (default: user config dir)")
	modeFlag := flag.String("mode", "", "Transcription mode: batch or streaming")
	backendFlag := flag.String("backend", "", "Transcription backend: local or remote")
	langFlag := flag.String("lang", "", "Language code for transcription (e.g. en)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device interactively")
	hotkeyFlag := flag.String("hotkey", "", "Hotkey behavior: toggle, hold or hybrid")
	chordFlag := flag.String("chord", "", "Global shortcut, e.g. alt+space or ctrl+shift+space")
	autoPasteFlag := flag.Bool("autopaste", true, "Inject transcribed text into the focused window")
	noBeepFlag := flag.Bool("nobeep", false, "Disable audible start/stop cues")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven) with a WAV file argument")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("limbo %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	cfgPath, explicit := *configFlag, *configFlag != ""
	if !explicit {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *modeFlag
		case "backend":
			cfg.Backend = *backendFlag
		case "lang":
			cfg.Language = *langFlag
		case "device":
			cfg.Device = *deviceFlag
		case "hotkey":
			cfg.HotkeyMode = *hotkeyFlag
		case "chord":
			cfg.Hotkey = *chordFlag
		case "autopaste":
			cfg.AutoInject = *autoPasteFlag
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	chord, err := hotkey.ParseChord(cfg.Hotkey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfg))
	}
	if *noBeepFlag {
		beep.Disable()
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.Infof("limbo %s starting: mode=%s backend=%s", version, cfg.Mode, cfg.Backend)

	backend, err := transcriber.New(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if c, ok := backend.(transcriber.Checker); ok {
		if err := c.Check(); err != nil {
			// not fatal: the first session fails with the same message
			fmt.Printf("Warning: %v\n", err)
			log.Warnf("backend not ready: %v", err)
		}
	}

	opts, err := dictation.OptionsFromConfig(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: limbo -test <wav-file>")
			os.Exit(1)
		}
		runTestMode(args[0], cfg, opts, backend)
		return
	}

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer actx.Close()

	var device *audio.DeviceInfo
	if *setupFlag && cfg.Device == "" {
		device, err = audio.SelectDevice(actx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			device = nil
		}
	} else if device, err = audio.FindDevice(actx, cfg.Device); err != nil {
		fmt.Printf("Warning: %v, using system default\n", err)
		device = nil
	}
	opts.Device = device

	var injector inject.Injector
	if cfg.AutoInject {
		kb := inject.NewKeyboard(cfg.SettleDelay())
		if err := kb.Check(); err != nil {
			fmt.Printf("Warning: %v\n", err)
			fmt.Println("On Linux, fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
		injector = kb
	}

	var sink dictation.Events = consoleEvents{}
	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(cfg, deviceLineText(device))
		tuiMu.Unlock()
		sink = tuiEvents{}
	}
	events := multiEvents{cueEvents{}, sink}

	orch := dictation.New(opts, actx, backend, injector, events)

	if *tuiFlag {
		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			gracefulShutdown(orch)
		}()
	} else {
		fmt.Printf("limbo %s ready: %s, %s\n", version, deviceLineText(device), modeLineText(cfg))
	}

	ctx, stop := shutdown.Context(context.Background())
	defer stop()
	go func() {
		<-ctx.Done()
		gracefulShutdown(orch)
	}()

	hk := hotkey.New(chord)
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	mode, _ := hotkey.ParseMode(cfg.HotkeyMode)
	ctrl := hotkey.NewController(ctx, hk, mode, hotkey.DefaultLongPress)
	<-serveActions(ctrl.Actions(), func(action hotkey.Action) {
		log.Info("hotkey_" + action.String())
		handleAction(orch, action)
	})
	gracefulShutdown(orch)
}

// serveActions runs actions one at a time in arrival order on a single
// worker. A queue in front of it keeps the hotkey reader from blocking while
// a stop is transcribing. The returned channel closes after the last action.
func serveActions(in <-chan hotkey.Action, handle func(hotkey.Action)) <-chan struct{} {
	queue := make(chan hotkey.Action, 16)
	done := make(chan struct{})
	go func() {
		defer close(queue)
		for a := range in {
			queue <- a
		}
	}()
	go func() {
		defer close(done)
		for a := range queue {
			handle(a)
		}
	}()
	return done
}

// handleAction runs one hotkey request. Failures that end a session are
// already reported through the state event; the rest are only logged.
func handleAction(orch *dictation.Orchestrator, action hotkey.Action) {
	ctx := context.Background()
	var text string
	var err error
	switch action {
	case hotkey.ActionStart:
		_, err = orch.StartRecording()
	case hotkey.ActionStop:
		text, err = orch.StopRecording(ctx)
	default:
		text, err = orch.Toggle(ctx)
	}
	if err == nil {
		if text != "" && !orch.State().IsRecording() {
			tuiSend(TranscriptMsg{Text: text})
		}
		return
	}
	if dictation.KindOf(err) == dictation.StateError {
		log.Warnf("%s ignored: %v", action, err)
		return
	}
	log.Errorf("%s failed (%s): %v", action, dictation.KindOf(err), err)
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

func modeLineText(cfg config.Config) string {
	return fmt.Sprintf("[%s | %s (%s) | %s]", cfg.Mode, cfg.Backend, cfg.Language, cfg.HotkeyMode)
}
