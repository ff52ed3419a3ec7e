package detect

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// ReplayFrame is one recorded detector result.
type ReplayFrame struct {
	Hands []Hand
	Delay time.Duration // wait before delivering this frame; 0 = replay interval
}

// Replay plays back recorded detector results. The recording is JSON lines,
// one results message per line, with an optional "delay_ms" field.
type Replay struct {
	Frames   []ReplayFrame
	Interval time.Duration
	Loop     bool
}

// LoadReplay reads a JSONL recording from path.
func LoadReplay(path string, interval time.Duration) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening replay: %w", err)
	}
	defer f.Close()
	return ReadReplay(f, interval)
}

// ReadReplay parses a JSONL recording. Blank lines are skipped.
func ReadReplay(r io.Reader, interval time.Duration) (*Replay, error) {
	rp := &Replay{Interval: interval, Loop: true}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		data := sc.Bytes()
		if len(data) == 0 {
			continue
		}
		var res results
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("replay line %d: %w", line, err)
		}
		rp.Frames = append(rp.Frames, ReplayFrame{
			Hands: res.MultiHandLandmarks,
			Delay: time.Duration(res.DelayMS) * time.Millisecond,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading replay: %w", err)
	}
	if len(rp.Frames) == 0 {
		return nil, fmt.Errorf("replay has no frames")
	}
	return rp, nil
}

// At returns the hands of frame i, wrapping when the replay loops.
// Out-of-range frames of a non-looping replay report no hands.
func (rp *Replay) At(i int) []Hand {
	if rp.Loop {
		i %= len(rp.Frames)
	}
	if i < 0 || i >= len(rp.Frames) {
		return nil
	}
	return rp.Frames[i].Hands
}

// Run delivers frames to sink until the replay ends or ctx is cancelled.
func (rp *Replay) Run(ctx context.Context, sink Sink) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for i := 0; ; i++ {
		if i == len(rp.Frames) {
			if !rp.Loop {
				slog.Info("replay finished", "frames", len(rp.Frames))
				return nil
			}
			i = 0
		}
		fr := rp.Frames[i]

		wait := fr.Delay
		if wait <= 0 {
			wait = rp.Interval
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		sink.OnDetectionResult(fr.Hands)
	}
}
