package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"limbo/audio"
	"limbo/beep"
	"limbo/config"
	"limbo/dictation"
	"limbo/encoder"
	"limbo/hotkey"
	"limbo/inject"
	"limbo/log"
	"limbo/transcriber"
)

// runTestMode drives a headless session from stdin, replaying wavPath as
// the microphone. Commands are one per line:
//
//	START | STOP | TOGGLE       call the orchestrator directly
//	KEYDOWN | KEYUP             simulate the hotkey in the configured mode
//	WAIT                        block until the last stop has resolved
//	WAIT_AUDIO_DONE             block until the WAV has been fully played
//	SLEEP <ms>
//	QUIT
func runTestMode(wavPath string, cfg config.Config, opts dictation.Options, backend transcriber.Backend) {
	beep.Disable()
	defer log.Close()

	f, err := os.Open(wavPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}
	samples, rate, err := encoder.DecodeWAV(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}
	if rate != audio.SampleRate {
		fmt.Fprintf(os.Stderr, "Error: %s is %d Hz, want %d Hz\n", wavPath, rate, audio.SampleRate)
		os.Exit(1)
	}

	// streaming needs samples to arrive over time for chunks to form
	fakeCtx := audio.NewFakeContext(samples, opts.Streaming)

	var injector inject.Injector
	if cfg.AutoInject {
		injector = &inject.Fake{}
	}
	orch := dictation.New(opts, fakeCtx, backend, injector, consoleEvents{})
	defer orch.Close()

	// each resolved action is reported here; WAIT consumes stops only
	stopped := make(chan struct{}, 16)
	act := func(a hotkey.Action) {
		ctx := context.Background()
		var text string
		var err error
		switch a {
		case hotkey.ActionStart:
			text, err = orch.StartRecording()
		case hotkey.ActionStop:
			text, err = orch.StopRecording(ctx)
		default:
			text, err = orch.Toggle(ctx)
		}
		if err != nil {
			fmt.Printf("RESULT %s error kind=%s: %v\n", a, dictation.KindOf(err), err)
		} else {
			fmt.Printf("RESULT %s %q\n", a, text)
		}
		if !orch.State().IsRecording() {
			stopped <- struct{}{}
		}
	}

	mode, _ := hotkey.ParseMode(cfg.HotkeyMode)
	hk := hotkey.NewFake()
	ctrl := hotkey.NewController(context.Background(), hk, mode, hotkey.DefaultLongPress)
	serveActions(ctrl.Actions(), func(a hotkey.Action) {
		log.Info("hotkey_" + a.String())
		act(a)
	})

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "":
		case "START":
			act(hotkey.ActionStart)
		case "STOP":
			act(hotkey.ActionStop)
		case "TOGGLE":
			act(hotkey.ActionToggle)
		case "KEYDOWN":
			hk.SimKeydown()
		case "KEYUP":
			hk.SimKeyup()
		case "WAIT":
			<-stopped
		case "WAIT_AUDIO_DONE":
			<-fakeCtx.Played()
		case "QUIT":
			return
		default:
			if ms, ok := strings.CutPrefix(cmd, "SLEEP "); ok {
				if n, err := strconv.Atoi(ms); err == nil {
					time.Sleep(time.Duration(n) * time.Millisecond)
				}
				continue
			}
			fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		}
	}
}
