package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func handleServe() {
	var cfg renderConfig
	var addr string
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addRenderFlags(fs, &cfg)
	addAnimationFlags(fs, &cfg)
	fs.StringVar(&addr, "addr", ":8080", "listen address")
	fs.Parse(os.Args[2:])

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cast2gif serve [flags] <input.cast>")
		os.Exit(1)
	}
	if err := runServe(&cfg, addr, fs.Arg(0)); err != nil {
		log.Fatalf("Failed to serve: %v", err)
	}
}

// runServe renders the recording once up front, then replays the frames
// over a websocket to every connected browser.
func runServe(cfg *renderConfig, addr, inPath string) error {
	if cfg.quiet {
		log.SetOutput(io.Discard)
	}
	frames, renderer, err := buildFrames(cfg, inPath)
	if err != nil {
		return err
	}
	pngs, err := encodeFramePNGs(frames, renderer)
	if err != nil {
		return err
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(playerHTML))
	})
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handlePlayerSocket(w, r, frames, pngs)
	})

	log.Printf("serving %s (%d frames) on %s", inPath, len(frames), addr)
	return http.ListenAndServe(addr, nil)
}

func encodeFramePNGs(frames []Frame, r *Renderer) ([][]byte, error) {
	pngs := make([][]byte, len(frames))
	for i, frame := range frames {
		var buf bytes.Buffer
		if err := EncodePNG(&buf, frame, r); err != nil {
			return nil, err
		}
		pngs[i] = buf.Bytes()
	}
	return pngs, nil
}

// handlePlayerSocket streams the pre-rendered frames to one browser,
// sleeping each frame's duration between sends, looping until the
// connection drops.
func handlePlayerSocket(w http.ResponseWriter, r *http.Request, frames []Frame, pngs [][]byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade error: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.New().String()[:8]
	log.Printf("[%s] player connected from %s", connID, r.RemoteAddr)

	// Drain reads so close frames and pings are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		for i, png := range pngs {
			if err := conn.WriteMessage(websocket.BinaryMessage, png); err != nil {
				log.Printf("[%s] player disconnected", connID)
				return
			}
			select {
			case <-done:
				log.Printf("[%s] player disconnected", connID)
				return
			case <-time.After(time.Duration(frames[i].Duration * float64(time.Second))):
			}
		}
	}
}
