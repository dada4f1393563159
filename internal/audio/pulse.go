package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/alphavoice/alphavoice/internal/config"
)

const (
	fragmentSizeBytes = 640 // 20ms @ 16kHz mono s16
	pulseAppName      = "alphavoice"
)

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Selection is the resolved capture source plus optional fallback warning context.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

// ListDevices returns available Pulse input sources with default/availability metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := newPulseClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}
	defaultID := defaultSource.ID()

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(sourceInfos))
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			State:       sourceStateString(source.State),
			Available:   sourceAvailable(source),
			Muted:       source.Mute,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices, nil
}

// SelectDevice resolves capture.input/capture.fallback preferences against live devices.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return selectDeviceFromList(devices, input, fallback)
}

func selectDeviceFromList(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio input devices found")
	}

	primary, err := lookupDevice(devices, input)
	if err != nil {
		return Selection{}, fmt.Errorf("capture.input: %w", err)
	}
	reason := unusableReason(primary)
	if reason == "" {
		return Selection{Device: primary}, nil
	}

	alternate, err := lookupDevice(devices, fallback)
	if err != nil {
		return Selection{}, fmt.Errorf("input %q is %s and capture.fallback failed: %w", primary.ID, reason, err)
	}
	if alternateReason := unusableReason(alternate); alternateReason != "" {
		return Selection{}, fmt.Errorf("input %q is %s and fallback %q is %s", primary.ID, reason, alternate.ID, alternateReason)
	}

	return Selection{
		Device:   alternate,
		Warning:  fmt.Sprintf("capture.input %q is %s; falling back to %q", primary.ID, reason, alternate.ID),
		Fallback: primary.ID != alternate.ID,
	}, nil
}

// lookupDevice resolves a capture term: a default alias picks the server
// default, anything else is a case-insensitive substring of ID or description.
func lookupDevice(devices []Device, term string) (Device, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	for _, dev := range devices {
		if isDefaultName(term) && dev.Default {
			return dev, nil
		}
		if !isDefaultName(term) && deviceMatches(dev, term) {
			return dev, nil
		}
	}
	if isDefaultName(term) {
		return Device{}, errors.New("default audio source is unavailable")
	}
	return Device{}, fmt.Errorf("%q did not match any device", term)
}

func unusableReason(dev Device) string {
	switch {
	case dev.Muted:
		return "muted"
	case !dev.Available:
		return "unavailable"
	default:
		return ""
	}
}

// ffmpeg-style device specs such as ":0" mean "the default source" to Pulse.
func isDefaultName(name string) bool {
	return name == "" || name == "default" || strings.HasPrefix(name, ":")
}

func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	id := strings.ToLower(device.ID)
	desc := strings.ToLower(device.Description)
	return strings.Contains(id, term) || strings.Contains(desc, term)
}

// PulseRecorder captures from a PulseAudio/PipeWire source and returns WAV clips.
type PulseRecorder struct {
	input      string
	fallback   string
	sampleRate int
	logger     *slog.Logger

	mu     sync.Mutex
	active *pulseStream
}

func NewPulseRecorder(cfg config.CaptureConfig, logger *slog.Logger) *PulseRecorder {
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &PulseRecorder{
		input:      cfg.Input,
		fallback:   cfg.Fallback,
		sampleRate: sampleRate,
		logger:     logger,
	}
}

func (r *PulseRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return ErrAlreadyRecording
	}

	selection, err := SelectDevice(ctx, r.input, r.fallback)
	if err != nil {
		return err
	}
	if selection.Warning != "" && r.logger != nil {
		r.logger.Warn(selection.Warning)
	}

	stream, err := startPulseStream(ctx, selection.Device, r.sampleRate)
	if err != nil {
		return err
	}
	r.active = stream
	return nil
}

func (r *PulseRecorder) Stop(_ context.Context) (Clip, error) {
	stream, err := r.take()
	if err != nil {
		return Clip{}, err
	}
	_ = stream.Stop()

	pcm := stream.RawPCM()
	if len(pcm) == 0 {
		return Clip{}, errors.New("no audio captured")
	}
	return Clip{
		Data:   EncodeWAV(pcm, r.sampleRate, 1),
		Format: "wav",
		Device: describeDevice(stream.device),
	}, nil
}

func (r *PulseRecorder) Cancel(_ context.Context) error {
	stream, err := r.take()
	if err != nil {
		return err
	}
	return stream.Stop()
}

func (r *PulseRecorder) take() (*pulseStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil, ErrNotRecording
	}
	stream := r.active
	r.active = nil
	return stream, nil
}

// pulseStream accumulates PCM from one selected Pulse source.
type pulseStream struct {
	device Device

	client *pulse.Client
	stream *pulse.RecordStream

	stopCh chan struct{}

	mu      sync.Mutex
	rawPCM  []byte
	stopped bool

	inflight sync.WaitGroup
	bytes    atomic.Int64
}

func startPulseStream(ctx context.Context, selected Device, sampleRate int) (*pulseStream, error) {
	client, err := newPulseClient()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	s := &pulseStream{
		device: selected,
		client: client,
		stopCh: make(chan struct{}),
	}

	writer := pulse.NewWriter(writerFunc(s.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(sampleRate),
		pulse.RecordBufferFragmentSize(fragmentSizeBytes),
		pulse.RecordMediaName("alphavoice dictation"),
	)
	if err != nil {
		_ = s.Stop()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	s.stream = stream
	stream.Start()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-s.stopCh:
		}
	}()

	return s, nil
}

// BytesCaptured reports total bytes accepted from Pulse.
func (s *pulseStream) BytesCaptured() int64 {
	return s.bytes.Load()
}

// RawPCM returns a snapshot of all captured raw PCM bytes.
func (s *pulseStream) RawPCM() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.rawPCM))
	copy(out, s.rawPCM)
	return out
}

// Stop halts the stream exactly once and waits for in-flight writes.
func (s *pulseStream) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
	}
	if s.client != nil {
		s.client.Close()
	}

	s.inflight.Wait()
	return nil
}

func (s *pulseStream) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	select {
	case <-s.stopCh:
		return 0, io.EOF
	default:
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, io.EOF
	}
	// Add under the same mutex as stopped so Stop's Wait cannot race it.
	s.inflight.Add(1)
	s.rawPCM = append(s.rawPCM, buffer...)
	s.mu.Unlock()
	defer s.inflight.Done()

	s.bytes.Add(int64(len(buffer)))
	return len(buffer), nil
}

func newPulseClient() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName(pulseAppName),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}

func describeDevice(device Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

func sourceStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	if len(source.Ports) == 0 {
		return true
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
