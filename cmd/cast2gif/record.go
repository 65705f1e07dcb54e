package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/creack/pty"
	"github.com/google/uuid"
	"golang.org/x/term"
)

type recordConfig struct {
	width   int
	height  int
	title   string
	command string
	quiet   bool
	force   bool
}

func handleRecord() {
	var cfg recordConfig
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	fs.IntVar(&cfg.width, "width", 0, "terminal width in columns (0 = current terminal)")
	fs.IntVar(&cfg.height, "height", 0, "terminal height in rows (0 = current terminal)")
	fs.StringVar(&cfg.title, "title", "", "title stored in the recording header")
	fs.StringVar(&cfg.command, "command", "", "command to record via the shell (default $SHELL)")
	fs.BoolVar(&cfg.quiet, "quiet", false, "suppress log output")
	fs.BoolVar(&cfg.force, "force", false, "overwrite the output file if it exists")

	before, after := splitAtDoubleDash(os.Args[2:])
	fs.Parse(before)

	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "usage: cast2gif record [flags] [output.cast] [-- command args...]")
		os.Exit(1)
	}
	outPath := fs.Arg(0)
	if outPath == "" {
		path, err := defaultRecordingPath()
		if err != nil {
			log.Fatalf("Failed to pick a recording path: %v", err)
		}
		outPath = path
	}

	if err := runRecord(&cfg, outPath, recordCommand(&cfg, after)); err != nil {
		log.Fatalf("Failed to record: %v", err)
	}
}

// recordCommand decides what to run inside the PTY: an explicit command
// line after --, the -command string via the shell, or the shell itself.
func recordCommand(cfg *recordConfig, after []string) []string {
	if len(after) > 0 {
		return after
	}
	if cfg.command != "" {
		return []string{"/bin/sh", "-c", cfg.command}
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return []string{shell}
}

func runRecord(cfg *recordConfig, outPath string, command []string) error {
	if cfg.quiet {
		log.SetOutput(io.Discard)
	}

	cols, rows := cfg.width, cfg.height
	if cols == 0 || rows == 0 {
		w, h := currentTerminalSize()
		if cols == 0 {
			cols = w
		}
		if rows == 0 {
			rows = h
		}
	}

	if !cfg.force {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("%s already exists (use -force to overwrite)", outPath)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	header := CastHeader{
		Version:   2,
		Width:     cols,
		Height:    rows,
		Timestamp: time.Now().Unix(),
		Command:   strings.Join(command, " "),
		Title:     cfg.title,
		Env: map[string]string{
			"TERM":  "xterm-256color",
			"SHELL": os.Getenv("SHELL"),
		},
	}
	if err := writeCastHeader(out, header); err != nil {
		return err
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("starting %s: %w", command[0], err)
	}
	defer ptmx.Close()
	pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})

	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFd) {
		old, err := term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer term.Restore(stdinFd, old)
	}

	// Follow the surrounding terminal when the size was not forced.
	if cfg.width == 0 && cfg.height == 0 {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGWINCH)
		defer signal.Stop(sigCh)
		go func() {
			for range sigCh {
				w, h := currentTerminalSize()
				pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(h), Cols: uint16(w)})
			}
		}()
	}

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if _, werr := ptmx.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	// PTY output goes to the user's terminal unchanged and to the
	// recording in whole-rune chunks so no event splits a UTF-8
	// sequence.
	start := time.Now()
	buf := make([]byte, 4096)
	var carry []byte
	for {
		n, rerr := ptmx.Read(buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
			carry = append(carry, buf[:n]...)
			complete, rest := splitCompleteUTF8(carry)
			if len(complete) > 0 {
				if err := writeCastEvent(out, time.Since(start).Seconds(), "o", string(complete)); err != nil {
					return err
				}
			}
			carry = append(carry[:0], rest...)
		}
		if rerr != nil {
			// The read fails once the child exits and the PTY
			// closes; that is the normal end of a session.
			break
		}
	}
	if len(carry) > 0 {
		if err := writeCastEvent(out, time.Since(start).Seconds(), "o", string(carry)); err != nil {
			return err
		}
	}

	if err := cmd.Wait(); err != nil {
		log.Printf("command exited: %v", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	log.Printf("wrote %s (%.1fs)", outPath, time.Since(start).Seconds())
	return nil
}

// splitCompleteUTF8 splits p so that complete never ends mid-rune; rest
// holds the trailing bytes of an unfinished UTF-8 sequence, if any.
func splitCompleteUTF8(p []byte) (complete, rest []byte) {
	n := len(p)
	for i := 1; i <= utf8.UTFMax && i <= n; i++ {
		b := p[n-i]
		if b < 0x80 {
			return p, nil
		}
		if b&0xc0 == 0x80 {
			// Continuation byte, look further back for the lead.
			continue
		}
		want := 2
		switch {
		case b&0xf0 == 0xe0:
			want = 3
		case b&0xf8 == 0xf0:
			want = 4
		case b&0xe0 != 0xc0:
			// Not a valid lead byte; pass it through as-is.
			return p, nil
		}
		if i < want {
			return p[:n-i], p[n-i:]
		}
		return p, nil
	}
	return p, nil
}

func currentTerminalSize() (cols, rows int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return 80, 24
}

// recordingsDir returns $HOME/.cast2gif/recordings, creating it if needed.
func recordingsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %v", err)
	}
	dir := filepath.Join(homeDir, ".cast2gif", "recordings")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func defaultRecordingPath() (string, error) {
	dir, err := recordingsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, uuid.New().String()+".cast"), nil
}
