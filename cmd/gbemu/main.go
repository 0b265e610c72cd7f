package main

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pixeldivider/dmgcore/internal/emu"
	"github.com/pixeldivider/dmgcore/internal/ui"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gbemu",
		Short: "Sharp LR35902 / Game Boy DMG emulator core",
	}

	var title string
	var scale int

	runCmd := &cobra.Command{
		Use:   "run <rom>",
		Short: "Run a ROM in a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read ROM: %w", err)
			}

			sink := ui.NewSampleSink()
			m, err := emu.New(rom, sink.Push)
			if err != nil {
				return fmt.Errorf("load ROM: %w", err)
			}

			app := ui.NewApp(ui.Config{Title: title, Scale: scale}, m, sink)
			return app.Run()
		},
	}
	runCmd.Flags().StringVar(&title, "title", "gbemu", "window title")
	runCmd.Flags().IntVar(&scale, "scale", 3, "window scale")

	// `gbemu <rom>` runs the ROM in a window, like `gbemu run <rom>`.
	rootCmd.Args = cobra.ExactArgs(1)
	rootCmd.RunE = runCmd.RunE

	var frames int
	var pngOut string
	var expectCRC string

	headlessCmd := &cobra.Command{
		Use:   "headless <rom>",
		Short: "Run a ROM without a window and report a framebuffer checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read ROM: %w", err)
			}

			m, err := emu.New(rom, nil)
			if err != nil {
				return fmt.Errorf("load ROM: %w", err)
			}
			return runHeadless(m, frames, pngOut, expectCRC)
		},
	}
	headlessCmd.Flags().IntVar(&frames, "frames", 300, "frames to run")
	headlessCmd.Flags().StringVar(&pngOut, "outpng", "", "write the final framebuffer to a PNG at this path")
	headlessCmd.Flags().StringVar(&expectCRC, "expect", "", "assert the final framebuffer's CRC32 (hex)")

	rootCmd.AddCommand(runCmd, headlessCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runHeadless(m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	var fb []byte
	for i := 0; i < frames; i++ {
		fb = m.StepFrame()
	}
	dur := time.Since(start)

	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(fb, 160, 144, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

// saveFramePNG writes an RGB24 framebuffer (spec §4.5's 160x144 output) as a PNG.
func saveFramePNG(pix []byte, w, h int, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i+2 < len(pix); i, j = i+3, j+4 {
		img.Pix[j+0] = pix[i+0]
		img.Pix[j+1] = pix[i+1]
		img.Pix[j+2] = pix[i+2]
		img.Pix[j+3] = 0xFF
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
