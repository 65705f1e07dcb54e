package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// CastHeader is the asciicast header. For v2 files it is the first line;
// for v1 files it is synthesized from the envelope object.
type CastHeader struct {
	Version       int               `json:"version"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	Timestamp     int64             `json:"timestamp,omitempty"`
	IdleTimeLimit float64           `json:"idle_time_limit,omitempty"`
	Command       string            `json:"command,omitempty"`
	Title         string            `json:"title,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
}

// CastEvent is one timestamped chunk of terminal data. Time is seconds
// since recording start; Stream is "o" for output, "i" for input. Only
// output events are rendered.
type CastEvent struct {
	Time   float64
	Stream string
	Data   string
}

// Cast is a fully decoded recording.
type Cast struct {
	Header CastHeader
	Events []CastEvent
}

// OutputEvents returns just the "o" events.
func (c *Cast) OutputEvents() []CastEvent {
	out := make([]CastEvent, 0, len(c.Events))
	for _, ev := range c.Events {
		if ev.Stream == "o" {
			out = append(out, ev)
		}
	}
	return out
}

// ReadCast decodes an asciicast recording. AsciiCast v2 is detected by
// its first-line header; anything else is tried as a v1 document, which
// may span multiple lines.
func ReadCast(r io.Reader) (*Cast, error) {
	br := bufio.NewReader(r)
	firstLine, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading asciicast header: %w", err)
	}
	trimmed := strings.TrimSpace(firstLine)
	if trimmed == "" && err == io.EOF {
		return nil, fmt.Errorf("empty asciicast input")
	}

	var header CastHeader
	if err := json.Unmarshal([]byte(trimmed), &header); err == nil && header.Version == 2 {
		return readCastV2(br, header)
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("reading asciicast: %w", err)
	}
	return readCastV1(append([]byte(firstLine), rest...))
}

func readCastV2(br *bufio.Reader, header CastHeader) (*Cast, error) {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	cast := &Cast{Header: header}
	lineNo := 1
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		ev, err := parseCastEvent(line)
		if err != nil {
			return nil, fmt.Errorf("asciicast line %d: %w", lineNo, err)
		}
		cast.Events = append(cast.Events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading asciicast events: %w", err)
	}
	return cast, nil
}

func parseCastEvent(line []byte) (CastEvent, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return CastEvent{}, fmt.Errorf("malformed event: %w", err)
	}
	if len(fields) < 3 {
		return CastEvent{}, fmt.Errorf("malformed event: want [time, stream, data], got %d fields", len(fields))
	}
	var ev CastEvent
	if err := json.Unmarshal(fields[0], &ev.Time); err != nil {
		return CastEvent{}, fmt.Errorf("malformed event time: %w", err)
	}
	if err := json.Unmarshal(fields[1], &ev.Stream); err != nil {
		return CastEvent{}, fmt.Errorf("malformed event stream: %w", err)
	}
	if err := json.Unmarshal(fields[2], &ev.Data); err != nil {
		return CastEvent{}, fmt.Errorf("malformed event data: %w", err)
	}
	return ev, nil
}

// castV1 is the asciicast v1 envelope: one JSON object whose stdout
// member lists [delay, data] pairs with relative delays.
type castV1 struct {
	Version  int                 `json:"version"`
	Width    int                 `json:"width"`
	Height   int                 `json:"height"`
	Duration float64             `json:"duration"`
	Command  string              `json:"command"`
	Title    string              `json:"title"`
	Stdout   [][]json.RawMessage `json:"stdout"`
}

func readCastV1(data []byte) (*Cast, error) {
	var v1 castV1
	if err := json.Unmarshal(data, &v1); err != nil {
		return nil, fmt.Errorf("parsing asciicast: %w", err)
	}
	if v1.Version != 1 {
		return nil, fmt.Errorf("unsupported asciicast version %d", v1.Version)
	}

	cast := &Cast{Header: CastHeader{
		Version: 1,
		Width:   v1.Width,
		Height:  v1.Height,
		Command: v1.Command,
		Title:   v1.Title,
	}}

	clock := 0.0
	for i, pair := range v1.Stdout {
		if len(pair) != 2 {
			return nil, fmt.Errorf("asciicast stdout entry %d: want [delay, data], got %d fields", i, len(pair))
		}
		var delay float64
		if err := json.Unmarshal(pair[0], &delay); err != nil {
			return nil, fmt.Errorf("asciicast stdout entry %d: malformed delay: %w", i, err)
		}
		var data string
		if err := json.Unmarshal(pair[1], &data); err != nil {
			return nil, fmt.Errorf("asciicast stdout entry %d: malformed data: %w", i, err)
		}
		if delay > 0 {
			clock += delay
		}
		cast.Events = append(cast.Events, CastEvent{Time: clock, Stream: "o", Data: data})
	}
	return cast, nil
}

// writeCastHeader writes the v2 first line.
func writeCastHeader(w io.Writer, header CastHeader) error {
	data, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encoding asciicast header: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// writeCastEvent writes one v2 event line.
func writeCastEvent(w io.Writer, t float64, stream, data string) error {
	line, err := json.Marshal([]any{t, stream, data})
	if err != nil {
		return fmt.Errorf("encoding asciicast event: %w", err)
	}
	_, err = w.Write(append(line, '\n'))
	return err
}
