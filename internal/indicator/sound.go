package indicator

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jfreymuth/pulse"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/config"
)

type cueKind int

const (
	cueStart cueKind = iota + 1
	cueStop
	cueComplete
	cueCancel
)

func (k cueKind) String() string {
	if spec, ok := cues[k]; ok {
		return spec.name
	}
	return "unknown"
}

const (
	cueSampleRate = 16000
	cueVolume     = 0.18
	cueGap        = 22 * time.Millisecond
	cueRamp       = 5 * time.Millisecond
)

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
}

// cueSpec ties a cue to its config override, the stock macOS alert, and the
// synthesized fallback.
type cueSpec struct {
	name       string
	configured func(config.IndicatorConfig) string
	system     string
	tones      []toneSpec
}

var cues = map[cueKind]cueSpec{
	cueStart: {
		name:       "start",
		configured: func(c config.IndicatorConfig) string { return c.SoundStartFile },
		system:     "/System/Library/Sounds/Tink.aiff",
		tones:      []toneSpec{{880, 70 * time.Millisecond}, {1175, 70 * time.Millisecond}},
	},
	cueStop: {
		name:       "stop",
		configured: func(c config.IndicatorConfig) string { return c.SoundStopFile },
		system:     "/System/Library/Sounds/Pop.aiff",
		tones:      []toneSpec{{620, 120 * time.Millisecond}},
	},
	cueComplete: {
		name:       "complete",
		configured: func(c config.IndicatorConfig) string { return c.SoundCompleteFile },
		system:     "/System/Library/Sounds/Glass.aiff",
		tones:      []toneSpec{{740, 65 * time.Millisecond}, {988, 90 * time.Millisecond}},
	},
	cueCancel: {
		name:       "cancel",
		configured: func(c config.IndicatorConfig) string { return c.SoundCancelFile },
		system:     "/System/Library/Sounds/Basso.aiff",
		tones:      []toneSpec{{480, 75 * time.Millisecond}, {360, 90 * time.Millisecond}},
	},
}

// emitCue plays the configured file, then the platform sound, then a
// synthesized tone, stopping at the first that works.
func emitCue(ctx context.Context, kind cueKind, cfg config.IndicatorConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	spec, ok := cues[kind]
	if !ok {
		return nil
	}

	if path := cuePath(kind, cfg); path != "" {
		if err := playCueFile(ctx, path); err == nil {
			return nil
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	samples := synthesizeCue(spec.tones)
	if len(samples) == 0 {
		return nil
	}
	if runtime.GOOS == "darwin" {
		path, err := cachedCueWAV(spec.name, samples)
		if err != nil {
			return err
		}
		return playCueFile(ctx, path)
	}
	return playPulseCue(samples)
}

func cuePath(kind cueKind, cfg config.IndicatorConfig) string {
	spec, ok := cues[kind]
	if !ok {
		return ""
	}
	if path := expandUserPath(spec.configured(cfg)); path != "" {
		return path
	}
	if runtime.GOOS == "darwin" {
		return spec.system
	}
	return ""
}

func expandUserPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "~" && !strings.HasPrefix(raw, "~/") {
		return raw
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return raw
	}
	return filepath.Join(home, strings.TrimPrefix(raw[1:], "/"))
}

// cuePlayerArgv returns the platform file player for path.
func cuePlayerArgv(goos string, path string) []string {
	if goos == "darwin" {
		return []string{"afplay", path}
	}
	return []string{"pw-play", "--media-role", "Notification", path}
}

func playCueFile(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat cue file %q: %w", path, err)
	}

	argv := cuePlayerArgv(runtime.GOOS, path)
	if err := exec.CommandContext(ctx, argv[0], argv[1:]...).Run(); err != nil {
		return fmt.Errorf("play cue file %q: %w", path, err)
	}
	return nil
}

// cachedCueWAV writes the synthesized cue once per user cache dir.
func cachedCueWAV(name string, samples []int16) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "alphavoice", "cues")
	path := filepath.Join(dir, name+".wav")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create cue cache: %w", err)
	}
	wav := audio.EncodeWAV(pcmBytes(samples), cueSampleRate, 1)
	if err := os.WriteFile(path, wav, 0o600); err != nil {
		return "", fmt.Errorf("write cue %q: %w", path, err)
	}
	return path, nil
}

func playPulseCue(samples []int16) error {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("alphavoice"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	remaining := samples
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		n := copy(buf, remaining)
		remaining = remaining[n:]
		if len(remaining) == 0 {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("alphavoice indicator cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue stream: %w", err)
	}
	return nil
}

// synthesizeCue joins tones with short silences.
func synthesizeCue(tones []toneSpec) []int16 {
	gap := make([]int16, samplesForDuration(cueGap))
	var pcm []int16
	for i, tone := range tones {
		if i > 0 {
			pcm = append(pcm, gap...)
		}
		pcm = append(pcm, synthesizeTone(tone)...)
	}
	return pcm
}

// synthesizeTone renders a sine with linear attack and release ramps.
func synthesizeTone(spec toneSpec) []int16 {
	n := samplesForDuration(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 {
		return nil
	}
	ramp := min(max(n/10, 1), samplesForDuration(cueRamp))

	pcm := make([]int16, n)
	for i := range pcm {
		envelope := min(1, float64(i)/float64(ramp), float64(n-1-i)/float64(ramp))
		phase := 2 * math.Pi * spec.frequencyHz * float64(i) / cueSampleRate
		pcm[i] = int16(math.Round(math.Sin(phase) * cueVolume * envelope * math.MaxInt16))
	}
	return pcm
}

func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}

func pcmBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
