// Package doctor runs interactive checks of everything dictation depends on:
// the hotkey, the microphone, the transcription backend and text injection.
package doctor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"limbo/audio"
	"limbo/config"
	"limbo/encoder"
	"limbo/hotkey"
	"limbo/inject"
	"limbo/shutdown"
	"limbo/transcriber"
)

const recordFor = 3 * time.Second

// Run executes the checks in order and returns an exit code (0=all pass, 1=any fail).
func Run(cfg config.Config) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("limbo doctor - interactive system diagnostics")
	fmt.Println("=============================================")

	checks := []func(config.Config) bool{
		checkHotkey,
		checkMicAndTranscription,
		checkInjection,
	}
	allPass := true
	for _, check := range checks {
		if !check(cfg) {
			allPass = false
			break
		}
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkHotkey(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[1/3] Hotkey detection")
	chord, err := hotkey.ParseChord(cfg.Hotkey)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("Press %s...\n", chord)

	hk := hotkey.New(chord)
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

// timedGate stays open until its deadline passes.
type timedGate struct{ closed atomic.Bool }

func openFor(d time.Duration) *timedGate {
	g := &timedGate{}
	time.AfterFunc(d, func() { g.closed.Store(true) })
	return g
}

func (g *timedGate) Listening() bool { return !g.closed.Load() }

func checkMicAndTranscription(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[2/3] Microphone and transcription")

	backend, err := transcriber.New(cfg)
	if err != nil {
		fmt.Printf("  FAIL: backend: %v\n", err)
		return false
	}
	defer backend.Close()
	if c, ok := backend.(transcriber.Checker); ok {
		if err := c.Check(); err != nil {
			fmt.Printf("  FAIL: %s backend not ready: %v\n", backend.Name(), err)
			if errors.Is(err, transcriber.ErrCredentialMissing) {
				fmt.Printf("  Fix with: export %s=<your key>\n", cfg.Remote.APIKeyEnv)
			}
			return false
		}
	}
	fmt.Printf("  PASS: %s backend ready\n", backend.Name())

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	device, err := audio.FindDevice(actx, cfg.Device)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	name := "system default"
	if device != nil {
		name = device.Name
	}
	fmt.Printf("  Using device: %s\n", name)
	if device != nil && audio.IsBluetooth(device.Name) {
		fmt.Println("  Warning: bluetooth microphones record at reduced quality")
	}

	fmt.Print("Press Enter and speak for 3 seconds...")
	bufio.NewReader(os.Stdin).ReadString('\n')

	buf := audio.NewBuffer()
	capture, err := audio.Begin(actx, device, audio.DefaultCaptureConfig(), buf, openFor(recordFor))
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	fmt.Print("  Recording")
	for range int(recordFor / (500 * time.Millisecond)) {
		time.Sleep(500 * time.Millisecond)
		fmt.Print(".")
	}
	capture.Wait()
	fmt.Println(" done")

	samples := buf.Snapshot()
	if len(samples) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}
	fmt.Printf("  Recorded %.1fs, peak level %.2f\n", audio.Duration(len(samples)), peak(samples))

	format := encoder.FormatWAV32
	if s, ok := backend.(transcriber.Stager); ok {
		format = s.StagingFormat()
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("limbo_doctor_%d%s", os.Getpid(), format.Ext()))
	if err := encoder.WriteFile(path, samples, format); err != nil {
		fmt.Printf("  FAIL: staging audio: %v\n", err)
		return false
	}
	defer os.Remove(path)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.TranscribeTimeout())
	defer cancel()
	text, err := backend.Transcribe(ctx, transcriber.Clip{
		Samples:    samples,
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
		Path:       path,
	})
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("\n  Transcribed text: %s\n\n", text)

	if confirm("Is this correct?") {
		fmt.Println("  PASS: transcription verified by user")
		return true
	}
	fmt.Println("  FAIL: transcription not confirmed")
	return false
}

func checkInjection(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[3/3] Text injection")

	kb := inject.NewKeyboard(cfg.SettleDelay())
	if err := kb.Check(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		fmt.Println("  On Linux, fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		return false
	}

	fmt.Println("Focus on a text editor window...")
	for i := 5; i > 0; i-- {
		fmt.Printf("  %d...\n", i)
		time.Sleep(time.Second)
	}

	const testStr = "limbo-doctor-test"
	if err := kb.Inject(context.Background(), testStr); err != nil {
		fmt.Printf("  FAIL: injection failed: %v\n", err)
		return false
	}

	resetTerminal()
	fmt.Println()
	if !confirm(fmt.Sprintf("Did the text %q appear?", testStr)) {
		fmt.Println("  FAIL: injection not confirmed")
		return false
	}
	fmt.Println("  PASS: text injection verified by user")
	return true
}

func confirm(question string) bool {
	fmt.Printf("%s [y/n]: ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

func peak(samples []float32) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Abs(float64(s)))
	}
	return p
}

func setupInterruptHandler() {
	ctx, stop := shutdown.Context(context.Background())
	go func() {
		defer stop()
		<-ctx.Done()
		resetTerminal()
		fmt.Println("\nInterrupted")
		os.Exit(1)
	}()
}
